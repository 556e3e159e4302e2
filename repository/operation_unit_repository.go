// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/medops/core-engine/models"
	"gorm.io/gorm"
)

// OperationUnitRepositoryImpl implements OperationUnitRepository interface
type OperationUnitRepositoryImpl struct {
	*BaseRepository[models.OperationUnit, models.OperationUnitFilter]
}

// NewOperationUnitRepository creates a new operation unit repository
func NewOperationUnitRepository(db *gorm.DB) OperationUnitRepository {
	return &OperationUnitRepositoryImpl{
		BaseRepository: NewBaseRepository[models.OperationUnit, models.OperationUnitFilter](db),
	}
}

// ByInternalID retrieves an operation unit by its internal identifier
func (r *OperationUnitRepositoryImpl) ByInternalID(ctx context.Context, operationUnitInternalID string) (*models.OperationUnit, error) {
	filter := models.OperationUnitFilter{OperationUnitInternalID: &operationUnitInternalID}
	items, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ListByContract retrieves all operation units under a contract ordered by name
func (r *OperationUnitRepositoryImpl) ListByContract(ctx context.Context, contractInternalID string) ([]*models.OperationUnit, error) {
	filter := models.OperationUnitFilter{ContractInternalID: &contractInternalID}
	return r.ByFilter(ctx, filter, "operation_unit_name ASC", 0, 0)
}

// applyFilter applies filter criteria to a GORM query
func (r *OperationUnitRepositoryImpl) applyFilter(query *gorm.DB, filter models.OperationUnitFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.OperationUnitInternalID != nil {
		query = query.Where("operation_unit_internal_id = ?", *filter.OperationUnitInternalID)
	}
	if filter.ContractInternalID != nil {
		query = query.Where("contract_internal_id = ?", *filter.ContractInternalID)
	}
	return query
}

// ByFilter retrieves operation units matching the filter criteria
func (r *OperationUnitRepositoryImpl) ByFilter(ctx context.Context, filter models.OperationUnitFilter, orderBy string, limit, offset int) ([]*models.OperationUnit, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.OperationUnit{})

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

	var units []*models.OperationUnit
	if err := query.Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// Count returns the number of operation units matching the filter
func (r *OperationUnitRepositoryImpl) Count(ctx context.Context, filter models.OperationUnitFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.OperationUnit{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any operation unit matching the filter exists
func (r *OperationUnitRepositoryImpl) Exists(ctx context.Context, filter models.OperationUnitFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
