package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/medops/core-engine/utils"
)

// Contract status values derived from effective/terminate dates
const (
	ContractStatusActive   = "Active"
	ContractStatusInactive = "Inactive"
)

// Contract represents a client contract. TerminateDate nil means open-ended.
// A contract belongs to exactly one client.
// Table: contracts
type Contract struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_contracts_uuid" json:"uuid"`

	ContractInternalID string     `gorm:"size:64;not null;uniqueIndex:uk_contracts_internal_id" json:"contractInternalId"`
	ContractID         string     `gorm:"size:64;not null" json:"contractId"`
	ClientID           string     `gorm:"size:64;not null;index:idx_contracts_client_id" json:"clientId"`
	EffectiveDate      time.Time  `gorm:"not null" json:"effectiveDate"`
	TerminateDate      *time.Time `json:"terminateDate"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Contract) TableName() string {
	return "contracts"
}

// StatusOn derives the contract status for a given day. Comparison is by
// calendar day with time-of-day stripped: not yet effective means Inactive,
// a nil terminate date means ongoing, and same-day termination is still Active.
func (c *Contract) StatusOn(today time.Time) string {
	day := utils.TruncateToDay(today)
	if day.Before(utils.TruncateToDay(c.EffectiveDate)) {
		return ContractStatusInactive
	}
	if c.TerminateDate == nil {
		return ContractStatusActive
	}
	if !day.After(utils.TruncateToDay(*c.TerminateDate)) {
		return ContractStatusActive
	}
	return ContractStatusInactive
}

// Status derives the contract status as of now
func (c *Contract) Status() string {
	return c.StatusOn(utils.UTCNow())
}

// ContractFilter represents filter criteria for contract queries
type ContractFilter struct {
	ID                 *uint
	UUID               *uuid.UUID
	ContractInternalID *string
	ClientID           *string
}
