// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"

	"github.com/medops/core-engine/app/dto"
	"github.com/medops/core-engine/app/services"
	"github.com/medops/core-engine/models"
)

// WorkspaceFlow composes the three per-session flows. It owns no list or
// selection state of its own: it forwards the cascade's selected operation
// unit into the assigned-set flow, and after a successful assignment it
// triggers the assigned-set refresh. That caller-orchestrated trigger is the
// only coupling between the assigned-set and search flows — they never talk
// to each other.
type WorkspaceFlow struct {
	ID string

	Cascade  *CascadeFlow
	Assigned *AssignedCAGsFlow
	Search   *CAGSearchFlow
}

// NewWorkspaceFlow constructs one workspace session over the given registry boundary
func NewWorkspaceFlow(id string, registry services.RegistryAPI) *WorkspaceFlow {
	return &WorkspaceFlow{
		ID:       id,
		Cascade:  NewCascadeFlow(registry),
		Assigned: NewAssignedCAGsFlow(registry),
		Search:   NewCAGSearchFlow(registry),
	}
}

// Open initializes the session by loading the active-client list
func (w *WorkspaceFlow) Open(ctx context.Context) dto.CascadeStateDTO {
	return w.Cascade.Init(ctx)
}

// SelectClient forwards the client selection into the cascade and propagates
// the resulting operation unit invalidation into the assigned-set flow
func (w *WorkspaceFlow) SelectClient(ctx context.Context, clientID string) dto.CascadeStateDTO {
	state := w.Cascade.SelectClient(ctx, clientID)
	w.syncOperationUnit(ctx, state)
	return state
}

// SelectContract forwards the contract selection into the cascade and
// propagates the resulting operation unit invalidation into the assigned-set flow
func (w *WorkspaceFlow) SelectContract(ctx context.Context, contractInternalID string) dto.CascadeStateDTO {
	state := w.Cascade.SelectContract(ctx, contractInternalID)
	w.syncOperationUnit(ctx, state)
	return state
}

// SelectOperationUnit points both downstream flows at the chosen unit
func (w *WorkspaceFlow) SelectOperationUnit(ctx context.Context, operationUnitInternalID string) dto.CascadeStateDTO {
	state := w.Cascade.SelectOperationUnit(operationUnitInternalID)
	w.Assigned.SetOperationUnit(ctx, operationUnitInternalID)
	return state
}

// syncOperationUnit keeps the assigned-set flow's unit aligned with the
// cascade after a parent-selection change cascaded a clear
func (w *WorkspaceFlow) syncOperationUnit(ctx context.Context, state dto.CascadeStateDTO) {
	w.Assigned.SetOperationUnit(ctx, state.SelectedOperationUnit)
}

// UpdateAssignedStatus bulk-updates the assigned-set selection
func (w *WorkspaceFlow) UpdateAssignedStatus(ctx context.Context, status models.AssignmentStatus) bool {
	return w.Assigned.UpdateStatus(ctx, status)
}

// AssignSelected commits the search selection to the currently selected
// operation unit and, on success, refreshes the assigned list so the two
// views stay consistent
func (w *WorkspaceFlow) AssignSelected(ctx context.Context, assignmentType string) bool {
	ou := w.Cascade.State().SelectedOperationUnit
	if ou == "" {
		return false
	}
	ok := w.Search.AssignSelected(ctx, ou, assignmentType)
	if ok {
		w.Assigned.Refresh(ctx)
	}
	return ok
}

// State snapshots all three flows
func (w *WorkspaceFlow) State() dto.WorkspaceStateResponse {
	return dto.WorkspaceStateResponse{
		WorkspaceID: w.ID,
		Cascade:     w.Cascade.State(),
		Assigned:    w.Assigned.State(),
		Search:      w.Search.State(),
	}
}
