package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus represents the status of a CAG-to-operation-unit assignment
type AssignmentStatus string

const (
	AssignmentStatusActive   AssignmentStatus = "ACTIVE"
	AssignmentStatusInactive AssignmentStatus = "INACTIVE"
)

// String returns the string representation of the status
func (s AssignmentStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentStatusActive, AssignmentStatusInactive:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for AssignmentStatus
func (s *AssignmentStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = AssignmentStatus(v)
	case []byte:
		*s = AssignmentStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into AssignmentStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for AssignmentStatus
func (s AssignmentStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid AssignmentStatus: %s", s)
	}
	return string(s), nil
}

// OperationUnitCAG represents a persisted assignment of a CAG to an operation
// unit. Identity key is OUCAGID, distinct from the CAG's own CAGID: the same
// catalog entity assigned to two operation units yields two assignment rows.
// Carrier/account/group columns are denormalized from the catalog at
// assignment time so list pages need no join.
// Table: operation_unit_cags
type OperationUnitCAG struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_operation_unit_cags_uuid" json:"uuid"`

	OUCAGID                 string           `gorm:"column:ou_cag_id;size:64;not null;uniqueIndex:uk_operation_unit_cags_ou_cag_id" json:"ouCagId"`
	OperationUnitInternalID string           `gorm:"size:64;not null;index:idx_operation_unit_cags_ou" json:"operationUnitInternalId"`
	CAGID                   string           `gorm:"column:cag_id;size:64;not null;index:idx_operation_unit_cags_cag" json:"cagId"`
	EffectiveStartDate      time.Time        `gorm:"not null" json:"effectiveStartDate"`
	EffectiveEndDate        *time.Time       `json:"effectiveEndDate"`
	AssignmentStatus        AssignmentStatus `gorm:"size:16;not null;index:idx_operation_unit_cags_status" json:"assignmentStatus"`
	AssignmentLevel         AssignmentLevel  `gorm:"size:16;not null" json:"assignmentLevel"`

	CarrierID   string `gorm:"size:64;not null" json:"carrierId"`
	CarrierName string `gorm:"size:255;not null" json:"carrierName"`
	AccountID   string `gorm:"size:64" json:"accountId"`
	AccountName string `gorm:"size:255" json:"accountName"`
	GroupID     string `gorm:"size:64" json:"groupId"`
	GroupName   string `gorm:"size:255" json:"groupName"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (OperationUnitCAG) TableName() string {
	return "operation_unit_cags"
}

// OperationUnitCAGFilter represents filter criteria for assignment queries
type OperationUnitCAGFilter struct {
	ID                      *uint
	UUID                    *uuid.UUID
	OUCAGID                 *string
	OUCAGIDs                []string
	OperationUnitInternalID *string
	CAGID                   *string
	AssignmentStatus        *AssignmentStatus
}
