package models

import (
	"time"

	"github.com/google/uuid"
)

// OperationUnit represents a sub-division of a contract to which CAGs are
// assigned. An operation unit belongs to exactly one contract.
// Table: operation_units
type OperationUnit struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_operation_units_uuid" json:"uuid"`

	OperationUnitInternalID string `gorm:"size:64;not null;uniqueIndex:uk_operation_units_internal_id" json:"operationUnitInternalId"`
	OperationUnitID         string `gorm:"size:64;not null" json:"operationUnitId"`
	OperationUnitName       string `gorm:"size:255;not null" json:"operationUnitName"`
	ContractInternalID      string `gorm:"size:64;not null;index:idx_operation_units_contract" json:"contractInternalId"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (OperationUnit) TableName() string {
	return "operation_units"
}

// OperationUnitFilter represents filter criteria for operation unit queries
type OperationUnitFilter struct {
	ID                      *uint
	UUID                    *uuid.UUID
	OperationUnitInternalID *string
	ContractInternalID      *string
}
