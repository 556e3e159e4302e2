// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/medops/core-engine/models"
	"gorm.io/gorm"
)

// CAGRepositoryImpl implements CAGRepository interface
type CAGRepositoryImpl struct {
	*BaseRepository[models.CAG, models.CAGFilter]
}

// NewCAGRepository creates a new CAG catalog repository
func NewCAGRepository(db *gorm.DB) CAGRepository {
	return &CAGRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CAG, models.CAGFilter](db),
	}
}

// ByCAGID retrieves a catalog entity by its business identifier
func (r *CAGRepositoryImpl) ByCAGID(ctx context.Context, cagID string) (*models.CAG, error) {
	filter := models.CAGFilter{CAGID: &cagID}
	items, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ListByCAGIDs retrieves catalog entities for a set of identifiers
func (r *CAGRepositoryImpl) ListByCAGIDs(ctx context.Context, cagIDs []string) ([]*models.CAG, error) {
	if len(cagIDs) == 0 {
		return []*models.CAG{}, nil
	}

	db := r.getDB(ctx)
	var cags []*models.CAG
	if err := db.Where("cag_id IN ?", cagIDs).Find(&cags).Error; err != nil {
		return nil, err
	}
	return cags, nil
}

// Search retrieves catalog entities matching the (possibly empty) filter,
// ordered by carrier then account then group
func (r *CAGRepositoryImpl) Search(ctx context.Context, filter models.CAGFilter) ([]*models.CAG, error) {
	return r.ByFilter(ctx, filter, "carrier_id ASC, account_id ASC, group_id ASC", 0, 0)
}

// applyFilter applies filter criteria to a GORM query. Name fields match
// case-insensitive substrings; AssignmentLevel constrains which granularity
// columns must be present.
func (r *CAGRepositoryImpl) applyFilter(query *gorm.DB, filter models.CAGFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.CAGID != nil {
		query = query.Where("cag_id = ?", *filter.CAGID)
	}
	if filter.CarrierID != nil {
		query = query.Where("carrier_id = ?", *filter.CarrierID)
	}
	if filter.CarrierName != nil {
		query = query.Where("carrier_name ILIKE ?", "%"+*filter.CarrierName+"%")
	}
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.AccountName != nil {
		query = query.Where("account_name ILIKE ?", "%"+*filter.AccountName+"%")
	}
	if filter.GroupID != nil {
		query = query.Where("group_id = ?", *filter.GroupID)
	}
	if filter.GroupName != nil {
		query = query.Where("group_name ILIKE ?", "%"+*filter.GroupName+"%")
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}
	if filter.AssignmentLevel != nil {
		switch *filter.AssignmentLevel {
		case models.AssignmentLevelCarrier:
			query = query.Where("account_id = '' AND group_id = ''")
		case models.AssignmentLevelAccount:
			query = query.Where("account_id <> '' AND group_id = ''")
		case models.AssignmentLevelGroup:
			query = query.Where("group_id <> ''")
		}
	}
	if filter.NotAssignedToOU != nil {
		query = query.Where(
			"cag_id NOT IN (SELECT cag_id FROM operation_unit_cags WHERE operation_unit_internal_id = ?)",
			*filter.NotAssignedToOU,
		)
	}
	return query
}

// ByFilter retrieves catalog entities matching the filter criteria
func (r *CAGRepositoryImpl) ByFilter(ctx context.Context, filter models.CAGFilter, orderBy string, limit, offset int) ([]*models.CAG, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.CAG{})

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

	var cags []*models.CAG
	if err := query.Find(&cags).Error; err != nil {
		return nil, err
	}
	return cags, nil
}

// Count returns the number of catalog entities matching the filter
func (r *CAGRepositoryImpl) Count(ctx context.Context, filter models.CAGFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.CAG{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any catalog entity matching the filter exists
func (r *CAGRepositoryImpl) Exists(ctx context.Context, filter models.CAGFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
