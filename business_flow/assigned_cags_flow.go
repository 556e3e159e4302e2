// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/medops/core-engine/app/dto"
	"github.com/medops/core-engine/app/services"
	"github.com/medops/core-engine/models"
	"github.com/medops/core-engine/utils"
	"github.com/xuri/excelize/v2"
)

// exportBatchSize bounds one registry page while streaming an Excel export
const exportBatchSize = 500

// AssignedCAGsFlow owns the paginated list of CAGs assigned to the currently
// selected operation unit, the selection set for bulk operations, and the
// bulk status mutation. CurrentPage is 0-indexed; HTTP boundaries translate.
//
// Selection entries are ouCagId values. The selection is replaced wholesale
// by the caller and cleared on every list-replacing fetch, so it can never
// outlive the result-set scope it was made in.
type AssignedCAGsFlow struct {
	registry services.RegistryAPI

	mu              sync.Mutex
	operationUnitID string
	state           dto.AssignedStateDTO
	fetchSeq        uint64
}

// NewAssignedCAGsFlow constructs an assigned-set flow with the default page size
func NewAssignedCAGsFlow(registry services.RegistryAPI) *AssignedCAGsFlow {
	return &AssignedCAGsFlow{
		registry: registry,
		state: dto.AssignedStateDTO{
			AssignedCAGs: []dto.AssignedCAGDTO{},
			PageSize:     utils.DefaultPageSize,
			SelectedCAGs: []string{},
		},
	}
}

// State returns a snapshot of the assigned-set state
func (f *AssignedCAGsFlow) State() dto.AssignedStateDTO {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// SetOperationUnit points the flow at a different operation unit and
// refetches. The empty id clears the list and total synchronously with no
// API call. Re-pointing at the current unit is a no-op.
func (f *AssignedCAGsFlow) SetOperationUnit(ctx context.Context, operationUnitInternalID string) dto.AssignedStateDTO {
	f.mu.Lock()
	if operationUnitInternalID == f.operationUnitID {
		defer f.mu.Unlock()
		return f.state
	}
	f.operationUnitID = operationUnitInternalID
	f.mu.Unlock()

	return f.Refresh(ctx)
}

// SetPage moves to a 0-indexed page and refetches at the new window
func (f *AssignedCAGsFlow) SetPage(ctx context.Context, page int) dto.AssignedStateDTO {
	f.mu.Lock()
	if page < 0 {
		page = 0
	}
	f.state.CurrentPage = page
	f.mu.Unlock()

	return f.Refresh(ctx)
}

// SetPageSize changes the page size and refetches at the new window
func (f *AssignedCAGsFlow) SetPageSize(ctx context.Context, size int) dto.AssignedStateDTO {
	f.mu.Lock()
	if size <= 0 {
		size = utils.DefaultPageSize
	}
	f.state.PageSize = size
	f.mu.Unlock()

	return f.Refresh(ctx)
}

// SetSelected replaces the selection set wholesale. Entries are ouCagId
// values; membership in the current page is not validated here.
func (f *AssignedCAGsFlow) SetSelected(ouCagIDs []string) dto.AssignedStateDTO {
	f.mu.Lock()
	defer f.mu.Unlock()
	selected := make([]string, len(ouCagIDs))
	copy(selected, ouCagIDs)
	f.state.SelectedCAGs = selected
	return f.state
}

// ToggleSelect adds or removes one ouCagId from the selection set. The
// selection is rebuilt rather than edited in place; state snapshots returned
// earlier alias the old backing array and must not change under the caller.
func (f *AssignedCAGsFlow) ToggleSelect(ouCagID string) dto.AssignedStateDTO {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := make([]string, 0, len(f.state.SelectedCAGs)+1)
	found := false
	for _, id := range f.state.SelectedCAGs {
		if id == ouCagID {
			found = true
			continue
		}
		next = append(next, id)
	}
	if !found {
		next = append(next, ouCagID)
	}
	f.state.SelectedCAGs = next
	return f.state
}

// Refresh reloads the current pagination window for the current operation
// unit. With no unit selected it clears the list and total synchronously.
// Every list replacement also clears the selection set.
func (f *AssignedCAGsFlow) Refresh(ctx context.Context) dto.AssignedStateDTO {
	f.mu.Lock()
	ouID := f.operationUnitID
	if ouID == "" {
		defer f.mu.Unlock()
		f.state.AssignedCAGs = []dto.AssignedCAGDTO{}
		f.state.TotalCount = 0
		f.state.SelectedCAGs = []string{}
		f.state.IsLoading = false
		f.fetchSeq++
		return f.state
	}

	f.state.Error = nil
	f.state.IsLoading = true
	page := f.state.CurrentPage
	size := f.state.PageSize
	f.fetchSeq++
	seq := f.fetchSeq
	f.mu.Unlock()

	result, err := f.registry.FetchAssignedCAGs(ctx, ouID, page, size)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.fetchSeq {
		return f.state
	}
	f.state.IsLoading = false
	if ctx.Err() != nil {
		return f.state
	}
	f.state.SelectedCAGs = []string{}
	if err != nil {
		f.state.AssignedCAGs = []dto.AssignedCAGDTO{}
		f.state.TotalCount = 0
		msg := err.Error()
		f.state.Error = &msg
		return f.state
	}
	f.state.AssignedCAGs = result.OUCAGList
	f.state.TotalCount = result.Count
	return f.state
}

// UpdateStatus bulk-updates the status of the currently selected assignments.
// With nothing selected it returns false without touching the API. On failure
// the selection is preserved so the caller can retry. On success the list is
// refetched (awaited) before returning true, so the state reflects the
// mutation by the time the caller sees the result.
func (f *AssignedCAGsFlow) UpdateStatus(ctx context.Context, status models.AssignmentStatus) bool {
	f.mu.Lock()
	if len(f.state.SelectedCAGs) == 0 {
		f.mu.Unlock()
		return false
	}
	f.state.Error = nil
	f.state.IsLoading = true
	ids := make([]string, len(f.state.SelectedCAGs))
	copy(ids, f.state.SelectedCAGs)
	f.mu.Unlock()

	_, err := f.registry.UpdateCAGStatus(ctx, dto.UpdateCAGStatusRequest{
		OUCAGIDs: ids,
		Status:   status.String(),
	})
	if err != nil {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.state.IsLoading = false
		msg := err.Error()
		f.state.Error = &msg
		return false
	}

	f.Refresh(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.SelectedCAGs = []string{}
	return true
}

// ExportXLSX renders every assignment of the current operation unit into an
// Excel workbook, paging through the registry in batches. Returns the
// suggested filename and the workbook bytes.
func (f *AssignedCAGsFlow) ExportXLSX(ctx context.Context) (string, []byte, error) {
	f.mu.Lock()
	ouID := f.operationUnitID
	f.mu.Unlock()

	if ouID == "" {
		return "", nil, NewBusinessError("EXPORT_NO_OPERATION_UNIT", "No operation unit selected", ErrOperationUnitNotFound)
	}

	var rows []dto.AssignedCAGDTO
	for page := 0; ; page++ {
		batch, err := f.registry.FetchAssignedCAGs(ctx, ouID, page, exportBatchSize)
		if err != nil {
			return "", nil, NewBusinessError("EXPORT_FETCH_FAILED", "Failed to fetch assignments for export", err)
		}
		rows = append(rows, batch.OUCAGList...)
		if int64(len(rows)) >= batch.Count || len(batch.OUCAGList) == 0 {
			break
		}
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := xl.GetSheetName(0)
	header := []string{"ou_cag_id", "cag_id", "assignment_level", "assignment_status", "effective_start_date", "effective_end_date", "carrier_id", "carrier_name", "account_id", "account_name", "group_id", "group_name"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for i, r := range rows {
		endDate := ""
		if r.EffectiveEndDate != nil {
			endDate = *r.EffectiveEndDate
		}
		record := []any{r.OUCAGID, r.CAGID, r.AssignmentLevel, r.AssignmentStatus, r.EffectiveStartDate, endDate, r.CarrierID, r.CarrierName, r.AccountID, r.AccountName, r.GroupID, r.GroupName}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = xl.SetSheetRow(sheet, cell, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_RENDER_FAILED", "Failed to render export workbook", err)
	}

	filename := fmt.Sprintf("assigned_cags_%s_%s.xlsx", ouID, utils.UTCNow().Format("20060102T150405"))
	return filename, buf.Bytes(), nil
}
