// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"sync"

	"github.com/medops/core-engine/app/dto"
	"github.com/medops/core-engine/app/services"
)

// CAGSearchFlow owns the unassigned-CAG search: the sparse filter bag, search
// execution, result selection, and the assignment commit. Selection entries
// are cagId values — a different id space from the assigned-set flow's
// ouCagIds, so the two selections can never be confused.
type CAGSearchFlow struct {
	registry services.RegistryAPI

	mu        sync.Mutex
	state     dto.SearchStateDTO
	searchSeq uint64
}

// NewCAGSearchFlow constructs a search flow with empty, non-nil collections
func NewCAGSearchFlow(registry services.RegistryAPI) *CAGSearchFlow {
	return &CAGSearchFlow{
		registry: registry,
		state: dto.SearchStateDTO{
			SearchResults: []dto.UnassignedCAGDTO{},
			SelectedCAGs:  []string{},
		},
	}
}

// State returns a snapshot of the search state
func (f *CAGSearchFlow) State() dto.SearchStateDTO {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// SetParams replaces the filter bag wholesale. Callers merge partial updates
// themselves before calling.
func (f *CAGSearchFlow) SetParams(params dto.CAGSearchParams) dto.SearchStateDTO {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.SearchParams = params
	return f.state
}

// Search executes a search with the committed filter bag. Taking the params
// under the lock means a SetParams immediately before Search can never be
// missed — there is no stale-snapshot window.
func (f *CAGSearchFlow) Search(ctx context.Context) dto.SearchStateDTO {
	f.mu.Lock()
	params := f.state.SearchParams
	f.mu.Unlock()
	return f.SearchWith(ctx, params)
}

// SearchWith commits the given params and executes the search with exactly
// them. An empty params value is a valid unfiltered search. The result list
// is replaced on success and cleared on failure; either way the selection is
// reset because its scope is gone.
func (f *CAGSearchFlow) SearchWith(ctx context.Context, params dto.CAGSearchParams) dto.SearchStateDTO {
	f.mu.Lock()
	f.state.SearchParams = params
	f.state.Error = nil
	f.state.IsSearching = true
	f.searchSeq++
	seq := f.searchSeq
	f.mu.Unlock()

	entities, err := f.registry.SearchCAGs(ctx, params)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.searchSeq {
		return f.state
	}
	f.state.IsSearching = false
	if ctx.Err() != nil {
		return f.state
	}
	f.state.SelectedCAGs = []string{}
	if err != nil {
		f.state.SearchResults = []dto.UnassignedCAGDTO{}
		msg := err.Error()
		f.state.Error = &msg
		return f.state
	}
	f.state.SearchResults = entities
	return f.state
}

// ClearSearch resets params, results, selection, and error. Idempotent; safe
// to call repeatedly.
func (f *CAGSearchFlow) ClearSearch() dto.SearchStateDTO {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.SearchParams = dto.CAGSearchParams{}
	f.state.SearchResults = []dto.UnassignedCAGDTO{}
	f.state.SelectedCAGs = []string{}
	f.state.Error = nil
	f.state.IsSearching = false
	f.searchSeq++
	return f.state
}

// SetSelected replaces the selection set wholesale. Entries are cagId values.
func (f *CAGSearchFlow) SetSelected(cagIDs []string) dto.SearchStateDTO {
	f.mu.Lock()
	defer f.mu.Unlock()
	selected := make([]string, len(cagIDs))
	copy(selected, cagIDs)
	f.state.SelectedCAGs = selected
	return f.state
}

// ToggleSelect adds or removes one cagId from the selection set. The
// selection is rebuilt rather than edited in place; state snapshots returned
// earlier alias the old backing array and must not change under the caller.
func (f *CAGSearchFlow) ToggleSelect(cagID string) dto.SearchStateDTO {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := make([]string, 0, len(f.state.SelectedCAGs)+1)
	found := false
	for _, id := range f.state.SelectedCAGs {
		if id == cagID {
			found = true
			continue
		}
		next = append(next, id)
	}
	if !found {
		next = append(next, cagID)
	}
	f.state.SelectedCAGs = next
	return f.state
}

// AssignSelected commits the selected search results to the given operation
// unit at the given granularity (Carrier/Account/Group). With nothing
// selected it returns false without touching the API. On failure the
// selection is preserved so the caller can retry the exact same commit. On
// success results and selection are cleared (the params survive so the user
// keeps their filter context); no list refetch happens here — the workspace
// composition triggers the assigned-set refresh.
func (f *CAGSearchFlow) AssignSelected(ctx context.Context, operationUnitInternalID, assignmentType string) bool {
	f.mu.Lock()
	if len(f.state.SelectedCAGs) == 0 {
		f.mu.Unlock()
		return false
	}
	f.state.Error = nil
	f.state.IsSearching = true
	ids := make([]string, len(f.state.SelectedCAGs))
	copy(ids, f.state.SelectedCAGs)
	f.mu.Unlock()

	_, err := f.registry.AssignCAGs(ctx, dto.AssignCAGsRequest{
		OperationUnitInternalID: operationUnitInternalID,
		AssignmentType:          assignmentType,
		CAGIDs:                  ids,
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.IsSearching = false
	if err != nil {
		msg := err.Error()
		f.state.Error = &msg
		return false
	}
	f.state.SearchResults = []dto.UnassignedCAGDTO{}
	f.state.SelectedCAGs = []string{}
	return true
}
