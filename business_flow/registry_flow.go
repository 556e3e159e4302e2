// Package businessflow contains the core business logic for the operations registry
package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medops/core-engine/app/dto"
	"github.com/medops/core-engine/models"
	"github.com/medops/core-engine/repository"
	"github.com/medops/core-engine/utils"
	"gorm.io/gorm"
)

// RegistryFlow defines the server-side operations behind the registry API:
// the reference-data reads the cascade consumes and the assignment mutations
// the workspace flows commit.
type RegistryFlow interface {
	ListActiveClients(ctx context.Context) (*dto.ClientListResponse, error)
	ListContracts(ctx context.Context, clientID string) (*dto.ContractListResponse, error)
	ListOperationUnits(ctx context.Context, contractInternalID string) (*dto.OperationUnitListResponse, error)
	PageAssignedCAGs(ctx context.Context, operationUnitInternalID string, page, size int) (*dto.AssignedCAGListResponse, error)
	SearchCatalog(ctx context.Context, params dto.CAGSearchParams) (*dto.CAGSearchResponse, error)
	AssignCAGs(ctx context.Context, req *dto.AssignCAGsRequest) (*dto.MessageResponse, error)
	UpdateStatus(ctx context.Context, req *dto.UpdateCAGStatusRequest) (*dto.MessageResponse, error)
}

// RegistryFlowImpl implements RegistryFlow
type RegistryFlowImpl struct {
	clientRepo   repository.ClientRepository
	contractRepo repository.ContractRepository
	unitRepo     repository.OperationUnitRepository
	cagRepo      repository.CAGRepository
	ouCagRepo    repository.OperationUnitCAGRepository
	db           *gorm.DB
}

// NewRegistryFlow constructs a RegistryFlow
func NewRegistryFlow(
	clientRepo repository.ClientRepository,
	contractRepo repository.ContractRepository,
	unitRepo repository.OperationUnitRepository,
	cagRepo repository.CAGRepository,
	ouCagRepo repository.OperationUnitCAGRepository,
	db *gorm.DB,
) RegistryFlow {
	return &RegistryFlowImpl{
		clientRepo:   clientRepo,
		contractRepo: contractRepo,
		unitRepo:     unitRepo,
		cagRepo:      cagRepo,
		ouCagRepo:    ouCagRepo,
		db:           db,
	}
}

// ListActiveClients returns every active client
func (f *RegistryFlowImpl) ListActiveClients(ctx context.Context) (*dto.ClientListResponse, error) {
	clients, err := f.clientRepo.ListActive(ctx)
	if err != nil {
		return nil, NewBusinessError("LIST_CLIENTS_FAILED", "Failed to list active clients", err)
	}

	items := make([]dto.ClientDTO, 0, len(clients))
	for _, c := range clients {
		items = append(items, ToClientDTO(c))
	}
	return &dto.ClientListResponse{ClientList: items}, nil
}

// ListContracts returns the contracts of one client with derived status
func (f *RegistryFlowImpl) ListContracts(ctx context.Context, clientID string) (*dto.ContractListResponse, error) {
	client, err := f.clientRepo.ByClientID(ctx, clientID)
	if err != nil {
		return nil, NewBusinessError("LIST_CONTRACTS_FAILED", "Failed to look up client", err)
	}
	if client == nil {
		return nil, ErrClientNotFound
	}

	contracts, err := f.contractRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, NewBusinessError("LIST_CONTRACTS_FAILED", "Failed to list contracts", err)
	}

	items := make([]dto.ContractDTO, 0, len(contracts))
	for _, c := range contracts {
		items = append(items, ToContractDTO(c))
	}
	return &dto.ContractListResponse{ContractList: items}, nil
}

// ListOperationUnits returns the operation units under one contract
func (f *RegistryFlowImpl) ListOperationUnits(ctx context.Context, contractInternalID string) (*dto.OperationUnitListResponse, error) {
	contract, err := f.contractRepo.ByInternalID(ctx, contractInternalID)
	if err != nil {
		return nil, NewBusinessError("LIST_OPERATION_UNITS_FAILED", "Failed to look up contract", err)
	}
	if contract == nil {
		return nil, ErrContractNotFound
	}

	units, err := f.unitRepo.ListByContract(ctx, contractInternalID)
	if err != nil {
		return nil, NewBusinessError("LIST_OPERATION_UNITS_FAILED", "Failed to list operation units", err)
	}

	items := make([]dto.OperationUnitDTO, 0, len(units))
	for _, u := range units {
		items = append(items, ToOperationUnitDTO(u))
	}
	return &dto.OperationUnitListResponse{OperationUnitList: items}, nil
}

// PageAssignedCAGs returns one 0-indexed page of assignments plus the total count
func (f *RegistryFlowImpl) PageAssignedCAGs(ctx context.Context, operationUnitInternalID string, page, size int) (*dto.AssignedCAGListResponse, error) {
	unit, err := f.unitRepo.ByInternalID(ctx, operationUnitInternalID)
	if err != nil {
		return nil, NewBusinessError("PAGE_ASSIGNED_CAGS_FAILED", "Failed to look up operation unit", err)
	}
	if unit == nil {
		return nil, ErrOperationUnitNotFound
	}

	rows, total, err := f.ouCagRepo.PageByOperationUnit(ctx, operationUnitInternalID, page, size)
	if err != nil {
		return nil, NewBusinessError("PAGE_ASSIGNED_CAGS_FAILED", "Failed to page assignments", err)
	}

	items := make([]dto.AssignedCAGDTO, 0, len(rows))
	for _, r := range rows {
		items = append(items, ToAssignedCAGDTO(r))
	}
	return &dto.AssignedCAGListResponse{OUCAGList: items, Count: total}, nil
}

// SearchCatalog runs a catalog search with the sparse filter bag. Empty
// params return the whole catalog.
func (f *RegistryFlowImpl) SearchCatalog(ctx context.Context, params dto.CAGSearchParams) (*dto.CAGSearchResponse, error) {
	filter, err := searchParamsToFilter(params)
	if err != nil {
		return nil, err
	}

	cags, err := f.cagRepo.Search(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("SEARCH_CAGS_FAILED", "Failed to search CAG catalog", err)
	}

	items := make([]dto.UnassignedCAGDTO, 0, len(cags))
	for _, c := range cags {
		items = append(items, ToUnassignedCAGDTO(c))
	}
	return &dto.CAGSearchResponse{Entities: items}, nil
}

// AssignCAGs creates assignment rows for the given catalog entities under one
// operation unit. All rows are created in one transaction: either the whole
// commit lands or none of it does.
func (f *RegistryFlowImpl) AssignCAGs(ctx context.Context, req *dto.AssignCAGsRequest) (*dto.MessageResponse, error) {
	if len(req.CAGIDs) == 0 {
		return nil, ErrNoCAGsProvided
	}

	level, err := AssignmentTypeToLevel(req.AssignmentType)
	if err != nil {
		return nil, err
	}

	unit, err := f.unitRepo.ByInternalID(ctx, req.OperationUnitInternalID)
	if err != nil {
		return nil, NewBusinessError("ASSIGN_CAGS_FAILED", "Failed to look up operation unit", err)
	}
	if unit == nil {
		return nil, ErrOperationUnitNotFound
	}

	cags, err := f.cagRepo.ListByCAGIDs(ctx, req.CAGIDs)
	if err != nil {
		return nil, NewBusinessError("ASSIGN_CAGS_FAILED", "Failed to look up catalog entities", err)
	}
	if len(cags) != len(req.CAGIDs) {
		return nil, ErrCAGNotFound
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		rows := make([]*models.OperationUnitCAG, 0, len(cags))
		for _, cag := range cags {
			exists, err := f.ouCagRepo.Exists(txCtx, models.OperationUnitCAGFilter{
				OperationUnitInternalID: &req.OperationUnitInternalID,
				CAGID:                   &cag.CAGID,
			})
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%w: %s", ErrCAGAlreadyAssigned, cag.CAGID)
			}

			id := uuid.New()
			rows = append(rows, &models.OperationUnitCAG{
				UUID:                    id,
				OUCAGID:                 "OUC-" + id.String(),
				OperationUnitInternalID: req.OperationUnitInternalID,
				CAGID:                   cag.CAGID,
				EffectiveStartDate:      utils.TruncateToDay(utils.UTCNow()),
				AssignmentStatus:        models.AssignmentStatusActive,
				AssignmentLevel:         level,
				CarrierID:               cag.CarrierID,
				CarrierName:             cag.CarrierName,
				AccountID:               cag.AccountID,
				AccountName:             cag.AccountName,
				GroupID:                 cag.GroupID,
				GroupName:               cag.GroupName,
				CreatedAt:               utils.UTCNow(),
				UpdatedAt:               utils.UTCNow(),
			})
		}
		return f.ouCagRepo.SaveBatch(txCtx, rows)
	})
	if err != nil {
		if IsCAGAlreadyAssigned(err) {
			return nil, err
		}
		return nil, NewBusinessError("ASSIGN_CAGS_FAILED", "Failed to assign CAGs", err)
	}

	return &dto.MessageResponse{Message: fmt.Sprintf("%d CAG(s) assigned successfully", len(cags))}, nil
}

// UpdateStatus bulk-updates assignment status by ouCagId
func (f *RegistryFlowImpl) UpdateStatus(ctx context.Context, req *dto.UpdateCAGStatusRequest) (*dto.MessageResponse, error) {
	if len(req.OUCAGIDs) == 0 {
		return nil, ErrNoCAGsProvided
	}

	status := models.AssignmentStatus(req.Status)
	if !status.Valid() {
		return nil, NewBusinessError("UPDATE_CAG_STATUS_VALIDATION_FAILED", "Status must be ACTIVE or INACTIVE", nil)
	}

	affected, err := f.ouCagRepo.UpdateStatus(ctx, req.OUCAGIDs, status)
	if err != nil {
		return nil, NewBusinessError("UPDATE_CAG_STATUS_FAILED", "Failed to update assignment status", err)
	}
	if affected == 0 {
		return nil, ErrAssignmentNotFound
	}

	return &dto.MessageResponse{Message: fmt.Sprintf("%d assignment(s) updated successfully", affected)}, nil
}

// searchParamsToFilter translates the wire filter bag into a repository
// filter, validating the date window
func searchParamsToFilter(params dto.CAGSearchParams) (models.CAGFilter, error) {
	var filter models.CAGFilter

	if params.AssignmentLevel != "" {
		level := models.AssignmentLevel(params.AssignmentLevel)
		if !level.Valid() {
			return filter, ErrInvalidAssignmentType
		}
		filter.AssignmentLevel = &level
	}
	if params.CarrierID != "" {
		filter.CarrierID = &params.CarrierID
	}
	if params.CarrierName != "" {
		filter.CarrierName = &params.CarrierName
	}
	if params.AccountID != "" {
		filter.AccountID = &params.AccountID
	}
	if params.AccountName != "" {
		filter.AccountName = &params.AccountName
	}
	if params.GroupID != "" {
		filter.GroupID = &params.GroupID
	}
	if params.GroupName != "" {
		filter.GroupName = &params.GroupName
	}
	if params.ExcludeOperationUnitID != "" {
		filter.NotAssignedToOU = &params.ExcludeOperationUnitID
	}

	if params.StartDate != "" {
		t, err := utils.ParseUSDate(params.StartDate)
		if err != nil {
			return filter, ErrInvalidDateFormat
		}
		filter.CreatedAfter = &t
	}
	if params.EndDate != "" {
		t, err := utils.ParseUSDate(params.EndDate)
		if err != nil {
			return filter, ErrInvalidDateFormat
		}
		// include the whole end day
		end := t.AddDate(0, 0, 1).Add(-time.Second)
		filter.CreatedBefore = &end
	}
	if filter.CreatedAfter != nil && filter.CreatedBefore != nil && filter.CreatedAfter.After(*filter.CreatedBefore) {
		return filter, ErrStartDateAfterEndDate
	}

	return filter, nil
}
