// Package services provides external service integrations for the application
package services

import (
	"context"
	"sync"

	"github.com/medops/core-engine/app/dto"
)

// MockRegistryCall records one method invocation on the mock registry
type MockRegistryCall struct {
	Method string
	Args   []any
}

// MockRegistry is an in-memory RegistryAPI for testing the workspace flows.
// Stub the per-method results and errors, then inspect the recorded calls.
type MockRegistry struct {
	mu    sync.Mutex
	calls []MockRegistryCall

	ClientsResult   []dto.ClientDTO
	ClientsErr      error
	ContractsResult map[string][]dto.ContractDTO
	ContractsErr    error
	UnitsResult     map[string][]dto.OperationUnitDTO
	UnitsErr        error

	AssignedResult *dto.AssignedCAGListResponse
	AssignedErr    error
	// AssignedFunc, when set, overrides AssignedResult/AssignedErr per call
	AssignedFunc func(operationUnitInternalID string, page, size int) (*dto.AssignedCAGListResponse, error)

	SearchResult []dto.UnassignedCAGDTO
	SearchErr    error

	AssignMessage string
	AssignErr     error
	UpdateMessage string
	UpdateErr     error
}

// NewMockRegistry creates a mock registry with empty stubbed results
func NewMockRegistry() *MockRegistry {
	return &MockRegistry{
		ClientsResult:   []dto.ClientDTO{},
		ContractsResult: map[string][]dto.ContractDTO{},
		UnitsResult:     map[string][]dto.OperationUnitDTO{},
		AssignedResult:  &dto.AssignedCAGListResponse{OUCAGList: []dto.AssignedCAGDTO{}},
		SearchResult:    []dto.UnassignedCAGDTO{},
	}
}

func (m *MockRegistry) record(method string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockRegistryCall{Method: method, Args: args})
}

// Calls returns a copy of every recorded call in order
func (m *MockRegistry) Calls() []MockRegistryCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockRegistryCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times the named method was invoked
func (m *MockRegistry) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// LastCall returns the most recent invocation of the named method
func (m *MockRegistry) LastCall(method string) (MockRegistryCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.calls) - 1; i >= 0; i-- {
		if m.calls[i].Method == method {
			return m.calls[i], true
		}
	}
	return MockRegistryCall{}, false
}

// ClearCalls drops the recorded call history
func (m *MockRegistry) ClearCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func (m *MockRegistry) FetchActiveClients(ctx context.Context) ([]dto.ClientDTO, error) {
	m.record("FetchActiveClients")
	if m.ClientsErr != nil {
		return nil, m.ClientsErr
	}
	return m.ClientsResult, nil
}

func (m *MockRegistry) FetchContracts(ctx context.Context, clientID string) ([]dto.ContractDTO, error) {
	m.record("FetchContracts", clientID)
	if m.ContractsErr != nil {
		return nil, m.ContractsErr
	}
	return m.ContractsResult[clientID], nil
}

func (m *MockRegistry) FetchOperationUnits(ctx context.Context, contractInternalID string) ([]dto.OperationUnitDTO, error) {
	m.record("FetchOperationUnits", contractInternalID)
	if m.UnitsErr != nil {
		return nil, m.UnitsErr
	}
	return m.UnitsResult[contractInternalID], nil
}

func (m *MockRegistry) FetchAssignedCAGs(ctx context.Context, operationUnitInternalID string, page, size int) (*dto.AssignedCAGListResponse, error) {
	m.record("FetchAssignedCAGs", operationUnitInternalID, page, size)
	if m.AssignedFunc != nil {
		return m.AssignedFunc(operationUnitInternalID, page, size)
	}
	if m.AssignedErr != nil {
		return nil, m.AssignedErr
	}
	return m.AssignedResult, nil
}

func (m *MockRegistry) SearchCAGs(ctx context.Context, params dto.CAGSearchParams) ([]dto.UnassignedCAGDTO, error) {
	m.record("SearchCAGs", params)
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.SearchResult, nil
}

func (m *MockRegistry) AssignCAGs(ctx context.Context, req dto.AssignCAGsRequest) (string, error) {
	m.record("AssignCAGs", req)
	if m.AssignErr != nil {
		return "", m.AssignErr
	}
	return m.AssignMessage, nil
}

func (m *MockRegistry) UpdateCAGStatus(ctx context.Context, req dto.UpdateCAGStatusRequest) (string, error) {
	m.record("UpdateCAGStatus", req)
	if m.UpdateErr != nil {
		return "", m.UpdateErr
	}
	return m.UpdateMessage, nil
}
