package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AssignmentLevel is the granularity at which a CAG assignment is scoped
type AssignmentLevel string

const (
	AssignmentLevelCarrier AssignmentLevel = "CARRIER"
	AssignmentLevelAccount AssignmentLevel = "ACCOUNT"
	AssignmentLevelGroup   AssignmentLevel = "GROUP"
)

// String returns the string representation of the level
func (l AssignmentLevel) String() string {
	return string(l)
}

// Valid checks if the level is valid
func (l AssignmentLevel) Valid() bool {
	switch l {
	case AssignmentLevelCarrier, AssignmentLevelAccount, AssignmentLevelGroup:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for AssignmentLevel
func (l *AssignmentLevel) Scan(value any) error {
	if value == nil {
		*l = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*l = AssignmentLevel(v)
	case []byte:
		*l = AssignmentLevel(string(v))
	default:
		return fmt.Errorf("cannot scan %T into AssignmentLevel", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for AssignmentLevel
func (l AssignmentLevel) Value() (driver.Value, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid AssignmentLevel: %s", l)
	}
	return string(l), nil
}

// CAG represents a Carrier-Account-Group entity in the catalog: a billing
// entity identified at carrier, carrier+account, or carrier+account+group
// granularity. Catalog rows are candidates for assignment to operation units.
// Table: cags
type CAG struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_cags_uuid" json:"uuid"`

	CAGID       string `gorm:"column:cag_id;size:64;not null;uniqueIndex:uk_cags_cag_id" json:"cagId"`
	CarrierID   string `gorm:"size:64;not null;index:idx_cags_carrier_id" json:"carrierId"`
	CarrierName string `gorm:"size:255;not null" json:"carrierName"`
	AccountID   string `gorm:"size:64" json:"accountId"`
	AccountName string `gorm:"size:255" json:"accountName"`
	GroupID     string `gorm:"size:64" json:"groupId"`
	GroupName   string `gorm:"size:255" json:"groupName"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (CAG) TableName() string {
	return "cags"
}

// CAGFilter represents filter criteria for CAG catalog searches.
// Name fields match case-insensitively as substrings; empty/nil fields are
// ignored so an empty filter returns the whole catalog.
type CAGFilter struct {
	ID              *uint
	UUID            *uuid.UUID
	CAGID           *string
	AssignmentLevel *AssignmentLevel
	CarrierID       *string
	CarrierName     *string
	AccountID       *string
	AccountName     *string
	GroupID         *string
	GroupName       *string
	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
	// NotAssignedToOU excludes CAGs already assigned to the given operation unit
	NotAssignedToOU *string
}
