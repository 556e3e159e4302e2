// Package models contains domain entities and business models for the operations engine
package models

import (
	"time"

	"github.com/google/uuid"
)

// Client represents a billing client (the top of the selection cascade).
// Reference data: fetched by the workspace flows, never mutated by them.
// Table: clients
type Client struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_clients_uuid" json:"uuid"`

	ClientID          string `gorm:"size:64;not null;uniqueIndex:uk_clients_client_id" json:"clientId"`
	ClientName        string `gorm:"size:255;not null" json:"clientName"`
	ClientReferenceID string `gorm:"size:64;not null" json:"clientReferenceId"`

	IsActive  *bool     `gorm:"default:true;index:idx_clients_is_active" json:"is_active"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}

// ClientFilter represents filter criteria for client queries
type ClientFilter struct {
	ID       *uint
	UUID     *uuid.UUID
	ClientID *string
	IsActive *bool
}
