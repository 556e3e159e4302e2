// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/medops/core-engine/models"
	"gorm.io/gorm"
)

// ContractRepositoryImpl implements ContractRepository interface
type ContractRepositoryImpl struct {
	*BaseRepository[models.Contract, models.ContractFilter]
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &ContractRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Contract, models.ContractFilter](db),
	}
}

// ByInternalID retrieves a contract by its internal identifier
func (r *ContractRepositoryImpl) ByInternalID(ctx context.Context, contractInternalID string) (*models.Contract, error) {
	filter := models.ContractFilter{ContractInternalID: &contractInternalID}
	items, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ListByClient retrieves all contracts of a client, newest effective first
func (r *ContractRepositoryImpl) ListByClient(ctx context.Context, clientID string) ([]*models.Contract, error) {
	filter := models.ContractFilter{ClientID: &clientID}
	return r.ByFilter(ctx, filter, "effective_date DESC", 0, 0)
}

// applyFilter applies filter criteria to a GORM query
func (r *ContractRepositoryImpl) applyFilter(query *gorm.DB, filter models.ContractFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.ContractInternalID != nil {
		query = query.Where("contract_internal_id = ?", *filter.ContractInternalID)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	return query
}

// ByFilter retrieves contracts matching the filter criteria
func (r *ContractRepositoryImpl) ByFilter(ctx context.Context, filter models.ContractFilter, orderBy string, limit, offset int) ([]*models.Contract, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Contract{})

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

	var contracts []*models.Contract
	if err := query.Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

// Count returns the number of contracts matching the filter
func (r *ContractRepositoryImpl) Count(ctx context.Context, filter models.ContractFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Contract{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any contract matching the filter exists
func (r *ContractRepositoryImpl) Exists(ctx context.Context, filter models.ContractFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
