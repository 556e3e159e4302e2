package businessflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/medops/core-engine/app/dto"
	"github.com/medops/core-engine/app/services"
	"github.com/medops/core-engine/models"
	"github.com/medops/core-engine/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assignedPage(ids ...string) *dto.AssignedCAGListResponse {
	rows := make([]dto.AssignedCAGDTO, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, dto.AssignedCAGDTO{
			OUCAGID:            id,
			CAGID:              "CAG-" + id,
			AssignmentStatus:   "ACTIVE",
			AssignmentLevel:    "GROUP",
			EffectiveStartDate: "2024-06-01",
			CarrierID:          "CAR-1",
			CarrierName:        "Carrier One",
		})
	}
	return &dto.AssignedCAGListResponse{OUCAGList: rows, Count: int64(len(rows))}
}

func TestAssignedFlowSetOperationUnitFetches(t *testing.T) {
	mock := services.NewMockRegistry()
	mock.AssignedResult = assignedPage("OUC-1", "OUC-2")
	flow := NewAssignedCAGsFlow(mock)
	ctx := context.Background()

	state := flow.SetOperationUnit(ctx, "OU-1")

	require.Len(t, state.AssignedCAGs, 2)
	assert.Equal(t, int64(2), state.TotalCount)
	assert.False(t, state.IsLoading)

	call, ok := mock.LastCall("FetchAssignedCAGs")
	require.True(t, ok)
	assert.Equal(t, "OU-1", call.Args[0])
	assert.Equal(t, 0, call.Args[1])
	assert.Equal(t, utils.DefaultPageSize, call.Args[2])

	// Re-pointing at the current unit must not refetch
	flow.SetOperationUnit(ctx, "OU-1")
	assert.Equal(t, 1, mock.CallCount("FetchAssignedCAGs"))
}

func TestAssignedFlowClearOperationUnit(t *testing.T) {
	mock := services.NewMockRegistry()
	mock.AssignedResult = assignedPage("OUC-1")
	flow := NewAssignedCAGsFlow(mock)
	ctx := context.Background()

	flow.SetOperationUnit(ctx, "OU-1")
	flow.SetSelected([]string{"OUC-1"})
	mock.ClearCalls()

	state := flow.SetOperationUnit(ctx, "")

	assert.Empty(t, state.AssignedCAGs)
	assert.Zero(t, state.TotalCount)
	assert.Empty(t, state.SelectedCAGs)
	assert.False(t, state.IsLoading)
	assert.Empty(t, mock.Calls())
}

func TestAssignedFlowPagination(t *testing.T) {
	mock := services.NewMockRegistry()
	mock.AssignedResult = assignedPage("OUC-1")
	flow := NewAssignedCAGsFlow(mock)
	ctx := context.Background()
	flow.SetOperationUnit(ctx, "OU-1")

	state := flow.SetPage(ctx, 2)
	assert.Equal(t, 2, state.CurrentPage)
	call, _ := mock.LastCall("FetchAssignedCAGs")
	assert.Equal(t, 2, call.Args[1])

	// Negative pages clamp to the first page
	state = flow.SetPage(ctx, -5)
	assert.Equal(t, 0, state.CurrentPage)

	state = flow.SetPageSize(ctx, 25)
	assert.Equal(t, 25, state.PageSize)
	call, _ = mock.LastCall("FetchAssignedCAGs")
	assert.Equal(t, 25, call.Args[2])

	// Non-positive sizes fall back to the default
	state = flow.SetPageSize(ctx, 0)
	assert.Equal(t, utils.DefaultPageSize, state.PageSize)
}

func TestAssignedFlowSelection(t *testing.T) {
	mock := services.NewMockRegistry()
	flow := NewAssignedCAGsFlow(mock)

	state := flow.SetSelected([]string{"OUC-1", "OUC-2"})
	assert.Equal(t, []string{"OUC-1", "OUC-2"}, state.SelectedCAGs)

	state = flow.ToggleSelect("OUC-3")
	assert.Contains(t, state.SelectedCAGs, "OUC-3")

	state = flow.ToggleSelect("OUC-1")
	assert.NotContains(t, state.SelectedCAGs, "OUC-1")
	assert.Len(t, state.SelectedCAGs, 2)

	state = flow.SetSelected(nil)
	assert.NotNil(t, state.SelectedCAGs)
	assert.Empty(t, state.SelectedCAGs)
}

func TestAssignedFlowToggleSelectLeavesSnapshotsIntact(t *testing.T) {
	flow := NewAssignedCAGsFlow(services.NewMockRegistry())
	flow.SetSelected([]string{"OUC-1", "OUC-2", "OUC-3"})
	held := flow.State()

	flow.ToggleSelect("OUC-1")

	// A snapshot handed out earlier must not change under the caller
	assert.Equal(t, []string{"OUC-1", "OUC-2", "OUC-3"}, held.SelectedCAGs)
	assert.Equal(t, []string{"OUC-2", "OUC-3"}, flow.State().SelectedCAGs)
}

func TestAssignedFlowSetSelectedCopiesInput(t *testing.T) {
	flow := NewAssignedCAGsFlow(services.NewMockRegistry())
	input := []string{"OUC-1", "OUC-2"}
	flow.SetSelected(input)

	input[0] = "OUC-99"

	assert.Equal(t, []string{"OUC-1", "OUC-2"}, flow.State().SelectedCAGs)
}

func TestAssignedFlowDiscardsRefreshSupersededByClear(t *testing.T) {
	mock := services.NewMockRegistry()
	mock.AssignedResult = assignedPage("OUC-1", "OUC-2")
	gated := newGatedRegistry(mock)
	flow := NewAssignedCAGsFlow(gated)
	ctx := context.Background()

	done := make(chan dto.AssignedStateDTO, 1)
	go func() { done <- flow.SetOperationUnit(ctx, "OU-1") }()
	<-gated.started

	// Clearing the unit invalidates the page fetch still in flight
	flow.SetOperationUnit(ctx, "")
	close(gated.release)
	late := <-done

	assert.Empty(t, late.AssignedCAGs)
	state := flow.State()
	assert.Empty(t, state.AssignedCAGs)
	assert.Zero(t, state.TotalCount)
	assert.False(t, state.IsLoading)
}

func TestAssignedFlowRefreshClearsSelection(t *testing.T) {
	mock := services.NewMockRegistry()
	mock.AssignedResult = assignedPage("OUC-1", "OUC-2")
	flow := NewAssignedCAGsFlow(mock)
	ctx := context.Background()

	flow.SetOperationUnit(ctx, "OU-1")
	flow.SetSelected([]string{"OUC-1"})

	state := flow.Refresh(ctx)

	// Every list replacement invalidates the selection scope
	assert.Empty(t, state.SelectedCAGs)
	assert.Len(t, state.AssignedCAGs, 2)
}

func TestAssignedFlowRefreshError(t *testing.T) {
	mock := services.NewMockRegistry()
	mock.AssignedResult = assignedPage("OUC-1")
	flow := NewAssignedCAGsFlow(mock)
	ctx := context.Background()
	flow.SetOperationUnit(ctx, "OU-1")

	mock.AssignedErr = errors.New("Server error. Please try again later.")
	state := flow.Refresh(ctx)

	assert.Empty(t, state.AssignedCAGs)
	assert.Zero(t, state.TotalCount)
	require.NotNil(t, state.Error)
	assert.Equal(t, "Server error. Please try again later.", *state.Error)
	assert.False(t, state.IsLoading)
}

func TestAssignedFlowUpdateStatusEmptySelection(t *testing.T) {
	mock := services.NewMockRegistry()
	flow := NewAssignedCAGsFlow(mock)

	ok := flow.UpdateStatus(context.Background(), models.AssignmentStatusInactive)

	assert.False(t, ok)
	assert.Zero(t, mock.CallCount("UpdateCAGStatus"))
}

func TestAssignedFlowUpdateStatusFailurePreservesSelection(t *testing.T) {
	mock := services.NewMockRegistry()
	mock.AssignedResult = assignedPage("OUC-1", "OUC-2")
	mock.UpdateErr = errors.New("Server error. Please try again later.")
	flow := NewAssignedCAGsFlow(mock)
	ctx := context.Background()

	flow.SetOperationUnit(ctx, "OU-1")
	flow.SetSelected([]string{"OUC-1", "OUC-2"})

	ok := flow.UpdateStatus(ctx, models.AssignmentStatusInactive)

	assert.False(t, ok)
	state := flow.State()
	assert.Equal(t, []string{"OUC-1", "OUC-2"}, state.SelectedCAGs)
	require.NotNil(t, state.Error)
	assert.Equal(t, "Server error. Please try again later.", *state.Error)
	assert.False(t, state.IsLoading)
}

func TestAssignedFlowUpdateStatusSuccess(t *testing.T) {
	mock := services.NewMockRegistry()
	mock.AssignedResult = assignedPage("OUC-1", "OUC-2")
	flow := NewAssignedCAGsFlow(mock)
	ctx := context.Background()

	flow.SetOperationUnit(ctx, "OU-1")
	flow.SetSelected([]string{"OUC-1", "OUC-2"})
	fetchesBefore := mock.CallCount("FetchAssignedCAGs")

	ok := flow.UpdateStatus(ctx, models.AssignmentStatusInactive)

	assert.True(t, ok)
	call, found := mock.LastCall("UpdateCAGStatus")
	require.True(t, found)
	req := call.Args[0].(dto.UpdateCAGStatusRequest)
	assert.Equal(t, []string{"OUC-1", "OUC-2"}, req.OUCAGIDs)
	assert.Equal(t, "INACTIVE", req.Status)

	// The mutation awaits a refetch before reporting success
	assert.Equal(t, fetchesBefore+1, mock.CallCount("FetchAssignedCAGs"))
	state := flow.State()
	assert.Empty(t, state.SelectedCAGs)
	assert.False(t, state.IsLoading)
}

func TestAssignedFlowExportWithoutOperationUnit(t *testing.T) {
	mock := services.NewMockRegistry()
	flow := NewAssignedCAGsFlow(mock)

	_, _, err := flow.ExportXLSX(context.Background())

	require.Error(t, err)
	var bizErr *BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, "EXPORT_NO_OPERATION_UNIT", bizErr.Code)
	assert.True(t, IsOperationUnitNotFound(err))
	assert.Zero(t, mock.CallCount("FetchAssignedCAGs"))
}

func TestAssignedFlowExportPagesThroughRegistry(t *testing.T) {
	mock := services.NewMockRegistry()
	mock.AssignedFunc = func(ouID string, page, size int) (*dto.AssignedCAGListResponse, error) {
		if size != exportBatchSize {
			// The regular pagination fetch issued by SetOperationUnit
			return assignedPage("OUC-1"), nil
		}
		switch page {
		case 0:
			p := assignedPage("OUC-1", "OUC-2")
			p.Count = 3
			return p, nil
		default:
			p := assignedPage("OUC-3")
			p.Count = 3
			return p, nil
		}
	}
	flow := NewAssignedCAGsFlow(mock)
	ctx := context.Background()
	flow.SetOperationUnit(ctx, "OU-1")
	mock.ClearCalls()

	filename, data, err := flow.ExportXLSX(ctx)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "assigned_cags_OU-1_"))
	assert.True(t, strings.HasSuffix(filename, ".xlsx"))
	assert.NotEmpty(t, data)
	assert.Equal(t, 2, mock.CallCount("FetchAssignedCAGs"))
}

func TestAssignedFlowExportFetchFailure(t *testing.T) {
	mock := services.NewMockRegistry()
	mock.AssignedResult = assignedPage("OUC-1")
	flow := NewAssignedCAGsFlow(mock)
	ctx := context.Background()
	flow.SetOperationUnit(ctx, "OU-1")

	mock.AssignedErr = errors.New("Server error. Please try again later.")
	_, _, err := flow.ExportXLSX(ctx)

	require.Error(t, err)
	var bizErr *BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, "EXPORT_FETCH_FAILED", bizErr.Code)
}
