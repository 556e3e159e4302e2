// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"sync"

	"github.com/medops/core-engine/app/dto"
	"github.com/medops/core-engine/app/services"
)

// CascadeFlow owns the Client -> Contract -> Operation Unit dependent
// selection chain for one workspace session. Selecting a level fetches the
// options of the level below it; clearing a level (empty id) synchronously
// drops every descendant list and selection without touching the network.
//
// Fetches run outside the lock, tagged with a per-level sequence number.
// A response whose sequence is no longer current (a newer fetch started, or a
// clear invalidated the level) is discarded, so out-of-order responses and
// results arriving after teardown never overwrite fresher state.
type CascadeFlow struct {
	registry services.RegistryAPI

	mu    sync.Mutex
	state dto.CascadeStateDTO

	contractSeq uint64
	unitSeq     uint64
	clientSeq   uint64
}

// NewCascadeFlow constructs a cascade flow with empty, non-nil lists
func NewCascadeFlow(registry services.RegistryAPI) *CascadeFlow {
	return &CascadeFlow{
		registry: registry,
		state: dto.CascadeStateDTO{
			Clients:        []dto.ClientDTO{},
			Contracts:      []dto.ContractDTO{},
			OperationUnits: []dto.OperationUnitDTO{},
		},
	}
}

// State returns a snapshot of the cascade state
func (f *CascadeFlow) State() dto.CascadeStateDTO {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Init loads the full active-client list. Called once when the workspace
// opens; a repeat call reloads the list.
func (f *CascadeFlow) Init(ctx context.Context) dto.CascadeStateDTO {
	f.mu.Lock()
	f.state.Error = nil
	f.state.IsLoadingClients = true
	f.clientSeq++
	seq := f.clientSeq
	f.mu.Unlock()

	clients, err := f.registry.FetchActiveClients(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.clientSeq {
		return f.state
	}
	f.state.IsLoadingClients = false
	if ctx.Err() != nil {
		return f.state
	}
	if err != nil {
		f.state.Clients = []dto.ClientDTO{}
		msg := err.Error()
		f.state.Error = &msg
		return f.state
	}
	f.state.Clients = clients
	return f.state
}

// SelectClient changes the selected client. A non-empty id triggers the
// contract fetch for that client; the empty id clears contracts and the
// contract selection (and everything below) with no API call. Reselecting the
// current value is a no-op.
func (f *CascadeFlow) SelectClient(ctx context.Context, clientID string) dto.CascadeStateDTO {
	f.mu.Lock()
	if clientID == f.state.SelectedClient {
		defer f.mu.Unlock()
		return f.state
	}

	f.state.SelectedClient = clientID
	f.clearContractsLocked()
	f.clearOperationUnitsLocked()

	if clientID == "" {
		defer f.mu.Unlock()
		return f.state
	}

	f.state.Error = nil
	f.state.IsLoadingContracts = true
	f.contractSeq++
	seq := f.contractSeq
	f.mu.Unlock()

	contracts, err := f.registry.FetchContracts(ctx, clientID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.contractSeq {
		return f.state
	}
	f.state.IsLoadingContracts = false
	if ctx.Err() != nil {
		return f.state
	}
	if err != nil {
		f.state.Contracts = []dto.ContractDTO{}
		msg := err.Error()
		f.state.Error = &msg
		return f.state
	}
	f.state.Contracts = contracts
	return f.state
}

// SelectContract changes the selected contract. A non-empty id triggers the
// operation unit fetch for that contract; the empty id clears operation units
// and the operation unit selection with no API call. Reselecting the current
// value is a no-op.
func (f *CascadeFlow) SelectContract(ctx context.Context, contractInternalID string) dto.CascadeStateDTO {
	f.mu.Lock()
	if contractInternalID == f.state.SelectedContract {
		defer f.mu.Unlock()
		return f.state
	}

	f.state.SelectedContract = contractInternalID
	f.clearOperationUnitsLocked()

	if contractInternalID == "" {
		defer f.mu.Unlock()
		return f.state
	}

	f.state.Error = nil
	f.state.IsLoadingOperationUnits = true
	f.unitSeq++
	seq := f.unitSeq
	f.mu.Unlock()

	units, err := f.registry.FetchOperationUnits(ctx, contractInternalID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.unitSeq {
		return f.state
	}
	f.state.IsLoadingOperationUnits = false
	if ctx.Err() != nil {
		return f.state
	}
	if err != nil {
		f.state.OperationUnits = []dto.OperationUnitDTO{}
		msg := err.Error()
		f.state.Error = &msg
		return f.state
	}
	f.state.OperationUnits = units
	return f.state
}

// SelectOperationUnit changes the selected operation unit. Terminal in this
// flow; the assigned-set flow reacts to the value externally via the
// workspace composition.
func (f *CascadeFlow) SelectOperationUnit(operationUnitInternalID string) dto.CascadeStateDTO {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.SelectedOperationUnit = operationUnitInternalID
	return f.state
}

// clearContractsLocked drops the contract list and selection and invalidates
// any contract fetch still in flight. Caller holds the lock.
func (f *CascadeFlow) clearContractsLocked() {
	f.state.Contracts = []dto.ContractDTO{}
	f.state.SelectedContract = ""
	f.state.IsLoadingContracts = false
	f.contractSeq++
}

// clearOperationUnitsLocked drops the operation unit list and selection and
// invalidates any unit fetch still in flight. Caller holds the lock.
func (f *CascadeFlow) clearOperationUnitsLocked() {
	f.state.OperationUnits = []dto.OperationUnitDTO{}
	f.state.SelectedOperationUnit = ""
	f.state.IsLoadingOperationUnits = false
	f.unitSeq++
}
