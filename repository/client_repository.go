// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/medops/core-engine/models"
	"github.com/medops/core-engine/utils"
	"gorm.io/gorm"
)

// ClientRepositoryImpl implements ClientRepository interface
type ClientRepositoryImpl struct {
	*BaseRepository[models.Client, models.ClientFilter]
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &ClientRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Client, models.ClientFilter](db),
	}
}

// ByClientID retrieves a client by its business identifier
func (r *ClientRepositoryImpl) ByClientID(ctx context.Context, clientID string) (*models.Client, error) {
	filter := models.ClientFilter{ClientID: &clientID}
	items, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ListActive retrieves all active clients ordered by name
func (r *ClientRepositoryImpl) ListActive(ctx context.Context) ([]*models.Client, error) {
	filter := models.ClientFilter{IsActive: utils.ToPtr(true)}
	return r.ByFilter(ctx, filter, "client_name ASC", 0, 0)
}

// applyFilter applies filter criteria to a GORM query
func (r *ClientRepositoryImpl) applyFilter(query *gorm.DB, filter models.ClientFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

// ByFilter retrieves clients matching the filter criteria
func (r *ClientRepositoryImpl) ByFilter(ctx context.Context, filter models.ClientFilter, orderBy string, limit, offset int) ([]*models.Client, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Client{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var clients []*models.Client
	if err := query.Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// Count returns the number of clients matching the filter
func (r *ClientRepositoryImpl) Count(ctx context.Context, filter models.ClientFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Client{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any client matching the filter exists
func (r *ClientRepositoryImpl) Exists(ctx context.Context, filter models.ClientFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
