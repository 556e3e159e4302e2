// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"

	"github.com/medops/core-engine/models"
	"github.com/medops/core-engine/utils"
	"gorm.io/gorm"
)

// OperationUnitCAGRepositoryImpl implements OperationUnitCAGRepository interface
type OperationUnitCAGRepositoryImpl struct {
	*BaseRepository[models.OperationUnitCAG, models.OperationUnitCAGFilter]
}

// NewOperationUnitCAGRepository creates a new assignment repository
func NewOperationUnitCAGRepository(db *gorm.DB) OperationUnitCAGRepository {
	return &OperationUnitCAGRepositoryImpl{
		BaseRepository: NewBaseRepository[models.OperationUnitCAG, models.OperationUnitCAGFilter](db),
	}
}

// PageByOperationUnit retrieves one 0-indexed page of assignments for an
// operation unit together with the total row count for that unit
func (r *OperationUnitCAGRepositoryImpl) PageByOperationUnit(ctx context.Context, operationUnitInternalID string, page, size int) ([]*models.OperationUnitCAG, int64, error) {
	if size <= 0 {
		size = utils.DefaultPageSize
	}
	if page < 0 {
		page = 0
	}

	filter := models.OperationUnitCAGFilter{OperationUnitInternalID: &operationUnitInternalID}
	total, err := r.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	db := r.getDB(ctx)
	var rows []*models.OperationUnitCAG
	err = db.Model(&models.OperationUnitCAG{}).
		Where("operation_unit_internal_id = ?", operationUnitInternalID).
		Order("carrier_id ASC, account_id ASC, group_id ASC").
		Limit(size).
		Offset(page * size).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// UpdateStatus bulk-updates assignment status by ouCagId and returns the
// number of rows touched
func (r *OperationUnitCAGRepositoryImpl) UpdateStatus(ctx context.Context, ouCagIDs []string, status models.AssignmentStatus) (int64, error) {
	if len(ouCagIDs) == 0 {
		return 0, nil
	}
	if !status.Valid() {
		return 0, errors.New("invalid assignment status")
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return 0, err
	}
	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	res := db.Model(&models.OperationUnitCAG{}).
		Where("ou_cag_id IN ?", ouCagIDs).
		Updates(map[string]any{
			"assignment_status": status,
			"updated_at":        utils.UTCNow(),
		})
	if res.Error != nil {
		err = res.Error
		return 0, err
	}

	return res.RowsAffected, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *OperationUnitCAGRepositoryImpl) applyFilter(query *gorm.DB, filter models.OperationUnitCAGFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.OUCAGID != nil {
		query = query.Where("ou_cag_id = ?", *filter.OUCAGID)
	}
	if len(filter.OUCAGIDs) > 0 {
		query = query.Where("ou_cag_id IN ?", filter.OUCAGIDs)
	}
	if filter.OperationUnitInternalID != nil {
		query = query.Where("operation_unit_internal_id = ?", *filter.OperationUnitInternalID)
	}
	if filter.CAGID != nil {
		query = query.Where("cag_id = ?", *filter.CAGID)
	}
	if filter.AssignmentStatus != nil {
		query = query.Where("assignment_status = ?", *filter.AssignmentStatus)
	}
	return query
}

// ByFilter retrieves assignments matching the filter criteria
func (r *OperationUnitCAGRepositoryImpl) ByFilter(ctx context.Context, filter models.OperationUnitCAGFilter, orderBy string, limit, offset int) ([]*models.OperationUnitCAG, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.OperationUnitCAG{})

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

	var rows []*models.OperationUnitCAG
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of assignments matching the filter
func (r *OperationUnitCAGRepositoryImpl) Count(ctx context.Context, filter models.OperationUnitCAGFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.OperationUnitCAG{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any assignment matching the filter exists
func (r *OperationUnitCAGRepositoryImpl) Exists(ctx context.Context, filter models.OperationUnitCAGFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
