// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/medops/core-engine/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// ClientRepository defines operations for billing clients
type ClientRepository interface {
	Repository[models.Client, models.ClientFilter]
	ByClientID(ctx context.Context, clientID string) (*models.Client, error)
	ListActive(ctx context.Context) ([]*models.Client, error)
}

// ContractRepository defines operations for contracts
type ContractRepository interface {
	Repository[models.Contract, models.ContractFilter]
	ByInternalID(ctx context.Context, contractInternalID string) (*models.Contract, error)
	ListByClient(ctx context.Context, clientID string) ([]*models.Contract, error)
}

// OperationUnitRepository defines operations for operation units
type OperationUnitRepository interface {
	Repository[models.OperationUnit, models.OperationUnitFilter]
	ByInternalID(ctx context.Context, operationUnitInternalID string) (*models.OperationUnit, error)
	ListByContract(ctx context.Context, contractInternalID string) ([]*models.OperationUnit, error)
}

// CAGRepository defines operations for the CAG catalog
type CAGRepository interface {
	Repository[models.CAG, models.CAGFilter]
	ByCAGID(ctx context.Context, cagID string) (*models.CAG, error)
	ListByCAGIDs(ctx context.Context, cagIDs []string) ([]*models.CAG, error)
	Search(ctx context.Context, filter models.CAGFilter) ([]*models.CAG, error)
}

// OperationUnitCAGRepository defines operations for CAG-to-operation-unit assignments
type OperationUnitCAGRepository interface {
	Repository[models.OperationUnitCAG, models.OperationUnitCAGFilter]
	PageByOperationUnit(ctx context.Context, operationUnitInternalID string, page, size int) ([]*models.OperationUnitCAG, int64, error)
	UpdateStatus(ctx context.Context, ouCagIDs []string, status models.AssignmentStatus) (int64, error)
}
