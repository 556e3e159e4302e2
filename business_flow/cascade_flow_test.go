package businessflow

import (
	"context"
	"errors"
	"testing"

	"github.com/medops/core-engine/app/dto"
	"github.com/medops/core-engine/app/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCascadeMock() *services.MockRegistry {
	mock := services.NewMockRegistry()
	mock.ClientsResult = []dto.ClientDTO{
		{ClientID: "C001", ClientName: "Acme Health", ClientReferenceID: "REF-C001"},
		{ClientID: "C002", ClientName: "Globex Insurance", ClientReferenceID: "REF-C002"},
	}
	mock.ContractsResult = map[string][]dto.ContractDTO{
		"C001": {
			{ContractInternalID: "CT-1", ContractID: "CON-2024-01", EffectiveDate: "2024-01-01", Status: "Active"},
			{ContractInternalID: "CT-2", ContractID: "CON-2023-09", EffectiveDate: "2023-09-01", Status: "Inactive"},
		},
		"C002": {
			{ContractInternalID: "CT-9", ContractID: "CON-2024-07", EffectiveDate: "2024-07-01", Status: "Active"},
		},
	}
	mock.UnitsResult = map[string][]dto.OperationUnitDTO{
		"CT-1": {
			{OperationUnitInternalID: "OU-1", OperationUnitID: "OU-EAST", OperationUnitName: "East Region"},
			{OperationUnitInternalID: "OU-2", OperationUnitID: "OU-WEST", OperationUnitName: "West Region"},
		},
	}
	return mock
}

func TestCascadeFlowInit(t *testing.T) {
	mock := newCascadeMock()
	flow := NewCascadeFlow(mock)

	state := flow.Init(context.Background())

	require.Len(t, state.Clients, 2)
	assert.Equal(t, "C001", state.Clients[0].ClientID)
	assert.False(t, state.IsLoadingClients)
	assert.Nil(t, state.Error)
	assert.Equal(t, 1, mock.CallCount("FetchActiveClients"))
}

func TestCascadeFlowInitErrorThenRetry(t *testing.T) {
	mock := newCascadeMock()
	mock.ClientsErr = errors.New("Server error. Please try again later.")
	flow := NewCascadeFlow(mock)

	state := flow.Init(context.Background())

	assert.Empty(t, state.Clients)
	require.NotNil(t, state.Error)
	assert.Equal(t, "Server error. Please try again later.", *state.Error)
	assert.False(t, state.IsLoadingClients)

	// A repeat call reloads and clears the previous error
	mock.ClientsErr = nil
	state = flow.Init(context.Background())

	assert.Len(t, state.Clients, 2)
	assert.Nil(t, state.Error)
}

func TestCascadeFlowSelectClientFetchesContracts(t *testing.T) {
	mock := newCascadeMock()
	flow := NewCascadeFlow(mock)
	ctx := context.Background()
	flow.Init(ctx)

	state := flow.SelectClient(ctx, "C001")

	assert.Equal(t, "C001", state.SelectedClient)
	require.Len(t, state.Contracts, 2)
	assert.Equal(t, "CT-1", state.Contracts[0].ContractInternalID)
	assert.False(t, state.IsLoadingContracts)
	assert.Nil(t, state.Error)

	call, ok := mock.LastCall("FetchContracts")
	require.True(t, ok)
	assert.Equal(t, "C001", call.Args[0])
}

func TestCascadeFlowReselectSameClientIsNoOp(t *testing.T) {
	mock := newCascadeMock()
	flow := NewCascadeFlow(mock)
	ctx := context.Background()

	flow.SelectClient(ctx, "C001")
	flow.SelectContract(ctx, "CT-1")
	state := flow.SelectClient(ctx, "C001")

	// Selection and descendant lists must survive the repeat selection
	assert.Equal(t, "CT-1", state.SelectedContract)
	assert.Len(t, state.OperationUnits, 2)
	assert.Equal(t, 1, mock.CallCount("FetchContracts"))
}

func TestCascadeFlowClearClientDropsDescendants(t *testing.T) {
	mock := newCascadeMock()
	flow := NewCascadeFlow(mock)
	ctx := context.Background()

	flow.SelectClient(ctx, "C001")
	flow.SelectContract(ctx, "CT-1")
	flow.SelectOperationUnit("OU-1")
	mock.ClearCalls()

	state := flow.SelectClient(ctx, "")

	assert.Empty(t, state.SelectedClient)
	assert.Empty(t, state.SelectedContract)
	assert.Empty(t, state.SelectedOperationUnit)
	assert.Empty(t, state.Contracts)
	assert.Empty(t, state.OperationUnits)
	// Clearing is synchronous and never reaches the registry
	assert.Empty(t, mock.Calls())
}

func TestCascadeFlowSwitchClientReplacesContracts(t *testing.T) {
	mock := newCascadeMock()
	flow := NewCascadeFlow(mock)
	ctx := context.Background()

	flow.SelectClient(ctx, "C001")
	flow.SelectContract(ctx, "CT-1")
	state := flow.SelectClient(ctx, "C002")

	assert.Equal(t, "C002", state.SelectedClient)
	require.Len(t, state.Contracts, 1)
	assert.Equal(t, "CT-9", state.Contracts[0].ContractInternalID)
	assert.Empty(t, state.SelectedContract)
	assert.Empty(t, state.OperationUnits)
}

func TestCascadeFlowSelectContractFetchesUnits(t *testing.T) {
	mock := newCascadeMock()
	flow := NewCascadeFlow(mock)
	ctx := context.Background()

	flow.SelectClient(ctx, "C001")
	state := flow.SelectContract(ctx, "CT-1")

	assert.Equal(t, "CT-1", state.SelectedContract)
	require.Len(t, state.OperationUnits, 2)
	assert.Equal(t, "OU-EAST", state.OperationUnits[0].OperationUnitID)
}

func TestCascadeFlowClearContractDropsUnitsOnly(t *testing.T) {
	mock := newCascadeMock()
	flow := NewCascadeFlow(mock)
	ctx := context.Background()

	flow.SelectClient(ctx, "C001")
	flow.SelectContract(ctx, "CT-1")
	flow.SelectOperationUnit("OU-1")
	mock.ClearCalls()

	state := flow.SelectContract(ctx, "")

	assert.Equal(t, "C001", state.SelectedClient)
	assert.Len(t, state.Contracts, 2)
	assert.Empty(t, state.SelectedContract)
	assert.Empty(t, state.SelectedOperationUnit)
	assert.Empty(t, state.OperationUnits)
	assert.Empty(t, mock.Calls())
}

func TestCascadeFlowContractFetchError(t *testing.T) {
	mock := newCascadeMock()
	mock.ContractsErr = errors.New("Resource not found.")
	flow := NewCascadeFlow(mock)
	ctx := context.Background()

	state := flow.SelectClient(ctx, "C001")

	assert.Equal(t, "C001", state.SelectedClient)
	assert.Empty(t, state.Contracts)
	require.NotNil(t, state.Error)
	assert.Equal(t, "Resource not found.", *state.Error)
	assert.False(t, state.IsLoadingContracts)

	// A new selection clears the error and fetches fresh
	mock.ContractsErr = nil
	state = flow.SelectClient(ctx, "C002")
	assert.Nil(t, state.Error)
	assert.Len(t, state.Contracts, 1)
}

// gatedRegistry holds selected fetches open until released, so a test can
// overlap a state mutation with a request still in flight.
type gatedRegistry struct {
	*services.MockRegistry
	started chan struct{}
	release chan struct{}
}

func newGatedRegistry(inner *services.MockRegistry) *gatedRegistry {
	return &gatedRegistry{
		MockRegistry: inner,
		started:      make(chan struct{}, 1),
		release:      make(chan struct{}),
	}
}

func (g *gatedRegistry) FetchContracts(ctx context.Context, clientID string) ([]dto.ContractDTO, error) {
	g.started <- struct{}{}
	<-g.release
	return g.MockRegistry.FetchContracts(ctx, clientID)
}

func (g *gatedRegistry) FetchAssignedCAGs(ctx context.Context, operationUnitInternalID string, page, size int) (*dto.AssignedCAGListResponse, error) {
	g.started <- struct{}{}
	<-g.release
	return g.MockRegistry.FetchAssignedCAGs(ctx, operationUnitInternalID, page, size)
}

func (g *gatedRegistry) SearchCAGs(ctx context.Context, params dto.CAGSearchParams) ([]dto.UnassignedCAGDTO, error) {
	g.started <- struct{}{}
	<-g.release
	return g.MockRegistry.SearchCAGs(ctx, params)
}

func TestCascadeFlowDiscardsContractFetchSupersededByClear(t *testing.T) {
	gated := newGatedRegistry(newCascadeMock())
	flow := NewCascadeFlow(gated)
	ctx := context.Background()
	flow.Init(ctx)

	done := make(chan dto.CascadeStateDTO, 1)
	go func() { done <- flow.SelectClient(ctx, "C001") }()
	<-gated.started

	// Clearing the client invalidates the contract fetch still in flight
	flow.SelectClient(ctx, "")
	close(gated.release)
	late := <-done

	assert.Empty(t, late.Contracts)
	state := flow.State()
	assert.Empty(t, state.SelectedClient)
	assert.Empty(t, state.Contracts)
	assert.False(t, state.IsLoadingContracts)
}

func TestCascadeFlowDiscardsResultAfterContextCancel(t *testing.T) {
	mock := newCascadeMock()
	flow := NewCascadeFlow(mock)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := flow.Init(ctx)

	// The canceled fetch must not populate the client list
	assert.Empty(t, state.Clients)
	assert.False(t, state.IsLoadingClients)
}
