// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/medops/core-engine/app/dto"
	businessflow "github.com/medops/core-engine/business_flow"
	"github.com/medops/core-engine/models"
)

// WorkspaceHandlerInterface defines handler methods for workspace sessions.
// A workspace holds the three per-session flows (selection cascade, assigned
// set, catalog search) that drive the assignment screen.
type WorkspaceHandlerInterface interface {
	CreateWorkspace(c fiber.Ctx) error
	GetWorkspace(c fiber.Ctx) error
	DeleteWorkspace(c fiber.Ctx) error

	SelectClient(c fiber.Ctx) error
	SelectContract(c fiber.Ctx) error
	SelectOperationUnit(c fiber.Ctx) error

	SetAssignedPage(c fiber.Ctx) error
	RefreshAssigned(c fiber.Ctx) error
	SetAssignedSelection(c fiber.Ctx) error
	ToggleAssignedSelection(c fiber.Ctx) error
	UpdateAssignedStatus(c fiber.Ctx) error
	ExportAssigned(c fiber.Ctx) error

	SetSearchParams(c fiber.Ctx) error
	RunSearch(c fiber.Ctx) error
	ClearSearch(c fiber.Ctx) error
	SetSearchSelection(c fiber.Ctx) error
	ToggleSearchSelection(c fiber.Ctx) error
	AssignSelected(c fiber.Ctx) error
}

// WorkspaceHandler implements workspace endpoints
type WorkspaceHandler struct {
	store     *businessflow.WorkspaceStore
	validator *validator.Validate
}

func NewWorkspaceHandler(store *businessflow.WorkspaceStore) WorkspaceHandlerInterface {
	return &WorkspaceHandler{
		store:     store,
		validator: NewValidator(),
	}
}

func (h *WorkspaceHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *WorkspaceHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// CreateWorkspace opens a new workspace session and loads the client list
// @Summary Create Workspace
// @Description Open a new assignment workspace; the active client list is fetched on open
// @Tags Workspaces
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.WorkspaceStateResponse}
// @Router /api/v1/workspaces/ [post]
func (h *WorkspaceHandler) CreateWorkspace(c fiber.Ctx) error {
	ws := h.store.Create()
	ws.Open(h.createRequestContext(c))
	return h.SuccessResponse(c, fiber.StatusOK, "Workspace created", ws.State())
}

// GetWorkspace snapshots the full state of one workspace session
// @Summary Get Workspace
// @Tags Workspaces
// @Produce json
// @Param workspaceId path string true "Workspace ID"
// @Success 200 {object} dto.APIResponse{data=dto.WorkspaceStateResponse}
// @Failure 404 {object} dto.APIResponse "Workspace not found"
// @Router /api/v1/workspaces/{workspaceId} [get]
func (h *WorkspaceHandler) GetWorkspace(c fiber.Ctx) error {
	ws, err := h.workspace(c)
	if ws == nil {
		return err
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Workspace retrieved", ws.State())
}

// DeleteWorkspace discards a workspace session
// @Summary Delete Workspace
// @Tags Workspaces
// @Produce json
// @Param workspaceId path string true "Workspace ID"
// @Success 200 {object} dto.APIResponse
// @Router /api/v1/workspaces/{workspaceId} [delete]
func (h *WorkspaceHandler) DeleteWorkspace(c fiber.Ctx) error {
	h.store.Remove(c.Params("workspaceId"))
	return h.SuccessResponse(c, fiber.StatusOK, "Workspace deleted", nil)
}

// SelectClient changes the cascade's client selection; an empty id clears it
// @Summary Select Client
// @Description Select a client; contracts are fetched and everything below is cleared
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param workspaceId path string true "Workspace ID"
// @Param request body dto.SelectRequest true "Client id, empty to clear"
// @Success 200 {object} dto.APIResponse{data=dto.CascadeStateDTO}
// @Failure 404 {object} dto.APIResponse "Workspace not found"
// @Router /api/v1/workspaces/{workspaceId}/cascade/client [put]
func (h *WorkspaceHandler) SelectClient(c fiber.Ctx) error {
	ws, err := h.workspace(c)
	if ws == nil {
		return err
	}
	var req dto.SelectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	state := ws.SelectClient(h.createRequestContext(c), req.ID)
	return h.SuccessResponse(c, fiber.StatusOK, "Client selection updated", state)
}

// SelectContract changes the cascade's contract selection; an empty id clears it
// @Summary Select Contract
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param workspaceId path string true "Workspace ID"
// @Param request body dto.SelectRequest true "Contract internal id, empty to clear"
// @Success 200 {object} dto.APIResponse{data=dto.CascadeStateDTO}
// @Failure 404 {object} dto.APIResponse "Workspace not found"
// @Router /api/v1/workspaces/{workspaceId}/cascade/contract [put]
func (h *WorkspaceHandler) SelectContract(c fiber.Ctx) error {
	ws, err := h.workspace(c)
	if ws == nil {
		return err
	}
	var req dto.SelectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	state := ws.SelectContract(h.createRequestContext(c), req.ID)
	return h.SuccessResponse(c, fiber.StatusOK, "Contract selection updated", state)
}

// SelectOperationUnit changes the cascade's operation unit selection and
// repoints the assigned set at it
// @Summary Select Operation Unit
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param workspaceId path string true "Workspace ID"
// @Param request body dto.SelectRequest true "Operation unit internal id, empty to clear"
// @Success 200 {object} dto.APIResponse{data=dto.CascadeStateDTO}
// @Failure 404 {object} dto.APIResponse "Workspace not found"
// @Router /api/v1/workspaces/{workspaceId}/cascade/operation-unit [put]
func (h *WorkspaceHandler) SelectOperationUnit(c fiber.Ctx) error {
	ws, err := h.workspace(c)
	if ws == nil {
		return err
	}
	var req dto.SelectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	state := ws.SelectOperationUnit(h.createRequestContext(c), req.ID)
	return h.SuccessResponse(c, fiber.StatusOK, "Operation unit selection updated", state)
}

// SetAssignedPage moves the assigned-set pagination window; page is 1-indexed
// on the wire and 0-indexed in the flow state
// @Summary Set Assigned Page
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param workspaceId path string true "Workspace ID"
// @Param request body dto.PageRequest true "Page and/or page size"
// @Success 200 {object} dto.APIResponse{data=dto.AssignedStateDTO}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Workspace not found"
// @Router /api/v1/workspaces/{workspaceId}/assigned/page [put]
func (h *WorkspaceHandler) SetAssignedPage(c fiber.Ctx) error {
	ws, err := h.workspace(c)
	if ws == nil {
		return err
	}
	var req dto.PageRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	ctx := h.createRequestContext(c)
	state := ws.Assigned.State()
	if req.PageSize > 0 {
		state = ws.Assigned.SetPageSize(ctx, req.PageSize)
	}
	if req.Page > 0 {
		state = ws.Assigned.SetPage(ctx, req.Page-1)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Page updated", state)
}

// RefreshAssigned refetches the current assigned-set page
// @Summary Refresh Assigned CAGs
// @Tags Workspaces
// @Produce json
// @Param workspaceId path string true "Workspace ID"
// @Success 200 {object} dto.APIResponse{data=dto.AssignedStateDTO}
// @Failure 404 {object} dto.APIResponse "Workspace not found"
// @Router /api/v1/workspaces/{workspaceId}/assigned/refresh [post]
func (h *WorkspaceHandler) RefreshAssigned(c fiber.Ctx) error {
	ws, err := h.workspace(c)
	if ws == nil {
		return err
	}
	state := ws.Assigned.Refresh(h.createRequestContext(c))
	return h.SuccessResponse(c, fiber.StatusOK, "Assigned CAGs refreshed", state)
}

// SetAssignedSelection replaces the assigned-set selection wholesale
// @Summary Set Assigned Selection
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param workspaceId path string true "Workspace ID"
// @Param request body dto.SelectionRequest true "Selected ouCagIds"
// @Success 200 {object} dto.APIResponse{data=dto.AssignedStateDTO}
// @Failure 404 {object} dto.APIResponse "Workspace not found"
// @Router /api/v1/workspaces/{workspaceId}/assigned/selection [put]
func (h *WorkspaceHandler) SetAssignedSelection(c fiber.Ctx) error {
	ws, err := h.workspace(c)
	if ws == nil {
		return err
	}
	var req dto.SelectionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Selection updated", ws.Assigned.SetSelected(req.IDs))
}

// ToggleAssignedSelection flips one ouCagId in or out of the selection
// @Summary Toggle Assigned Selection
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param workspaceId path string true "Workspace ID"
// @Param request body dto.SelectRequest true "ouCagId to toggle"
// @Success 200 {object} dto.APIResponse{data=dto.AssignedStateDTO}
// @Failure 404 {object} dto.APIResponse "Workspace not found"
// @Router /api/v1/workspaces/{workspaceId}/assigned/selection/toggle [put]
func (h *WorkspaceHandler) ToggleAssignedSelection(c fiber.Ctx) error {
	ws, err := h.workspace(c)
	if ws == nil {
		return err
	}
	var req dto.SelectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Selection updated", ws.Assigned.ToggleSelect(req.ID))
}

// UpdateAssignedStatus bulk-updates the status of the selected assignments and
// refetches the current page on success
// @Summary Update Assigned Status
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param workspaceId path string true "Workspace ID"
// @Param request body dto.UpdateStatusRequest true "Target status"
// @Success 200 {object} dto.APIResponse{data=dto.MutationResultResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Workspace not found"
// @Router /api/v1/workspaces/{workspaceId}/assigned/status [put]
func (h *WorkspaceHandler) UpdateAssignedStatus(c fiber.Ctx) error {
	ws, err := h.workspace(c)
	if ws == nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	applied := ws.UpdateAssignedStatus(h.createRequestContext(c), models.AssignmentStatus(req.Status))
	res := dto.MutationResultResponse{Applied: applied, Error: ws.Assigned.State().Error}
	return h.SuccessResponse(c, fiber.StatusOK, "Status update processed", res)
}

// ExportAssigned streams the full assigned set of the current operation unit
// as an Excel workbook
// @Summary Export Assigned CAGs
// @Description Download every assignment of the selected operation unit as XLSX
// @Tags Workspaces
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param workspaceId path string true "Workspace ID"
// @Success 200 {file} binary
// @Failure 400 {object} dto.APIResponse "No operation unit selected"
// @Failure 404 {object} dto.APIResponse "Workspace not found"
// @Failure 500 {object} dto.APIResponse "Export failed"
// @Router /api/v1/workspaces/{workspaceId}/assigned/export [get]
func (h *WorkspaceHandler) ExportAssigned(c fiber.Ctx) error {
	ws, err := h.workspace(c)
	if ws == nil {
		return err
	}

	filename, data, err := ws.Assigned.ExportXLSX(h.createRequestContext(c))
	if err != nil {
		var be *businessflow.BusinessError
		if errors.As(err, &be) && be.Code == "EXPORT_NO_OPERATION_UNIT" {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "No operation unit selected", be.Code, nil)
		}
		log.Println("Export assigned CAGs failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Export failed", "EXPORT_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// SetSearchParams replaces the committed search filters without running a search
// @Summary Set Search Params
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param workspaceId path string true "Workspace ID"
// @Param request body dto.CAGSearchParams true "Search filters"
// @Success 200 {object} dto.APIResponse{data=dto.SearchStateDTO}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Workspace not found"
// @Router /api/v1/workspaces/{workspaceId}/search/params [put]
func (h *WorkspaceHandler) SetSearchParams(c fiber.Ctx) error {
	ws, err := h.workspace(c)
	if ws == nil {
		return err
	}
	var params dto.CAGSearchParams
	if err := c.Bind().JSON(&params); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&params); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Search params updated", ws.Search.SetParams(params))
}

// RunSearch runs a catalog search. With a request body the given filters are
// committed and used; with an empty body the previously committed filters run.
// @Summary Run CAG Search
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param workspaceId path string true "Workspace ID"
// @Param request body dto.CAGSearchParams false "Search filters; omit to reuse committed ones"
// @Success 200 {object} dto.APIResponse{data=dto.SearchStateDTO}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Workspace not found"
// @Router /api/v1/workspaces/{workspaceId}/search [post]
func (h *WorkspaceHandler) RunSearch(c fiber.Ctx) error {
	ws, err := h.workspace(c)
	if ws == nil {
		return err
	}

	ctx := h.createRequestContext(c)
	if len(c.Body()) == 0 {
		return h.SuccessResponse(c, fiber.StatusOK, "Search completed", ws.Search.Search(ctx))
	}

	var params dto.CAGSearchParams
	if err := c.Bind().JSON(&params); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&params); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Search completed", ws.Search.SearchWith(ctx, params))
}

// ClearSearch resets filters, results and selection in one step
// @Summary Clear CAG Search
// @Tags Workspaces
// @Produce json
// @Param workspaceId path string true "Workspace ID"
// @Success 200 {object} dto.APIResponse{data=dto.SearchStateDTO}
// @Failure 404 {object} dto.APIResponse "Workspace not found"
// @Router /api/v1/workspaces/{workspaceId}/search [delete]
func (h *WorkspaceHandler) ClearSearch(c fiber.Ctx) error {
	ws, err := h.workspace(c)
	if ws == nil {
		return err
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Search cleared", ws.Search.ClearSearch())
}

// SetSearchSelection replaces the search selection wholesale
// @Summary Set Search Selection
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param workspaceId path string true "Workspace ID"
// @Param request body dto.SelectionRequest true "Selected cagIds"
// @Success 200 {object} dto.APIResponse{data=dto.SearchStateDTO}
// @Failure 404 {object} dto.APIResponse "Workspace not found"
// @Router /api/v1/workspaces/{workspaceId}/search/selection [put]
func (h *WorkspaceHandler) SetSearchSelection(c fiber.Ctx) error {
	ws, err := h.workspace(c)
	if ws == nil {
		return err
	}
	var req dto.SelectionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Selection updated", ws.Search.SetSelected(req.IDs))
}

// ToggleSearchSelection flips one cagId in or out of the selection
// @Summary Toggle Search Selection
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param workspaceId path string true "Workspace ID"
// @Param request body dto.SelectRequest true "cagId to toggle"
// @Success 200 {object} dto.APIResponse{data=dto.SearchStateDTO}
// @Failure 404 {object} dto.APIResponse "Workspace not found"
// @Router /api/v1/workspaces/{workspaceId}/search/selection/toggle [put]
func (h *WorkspaceHandler) ToggleSearchSelection(c fiber.Ctx) error {
	ws, err := h.workspace(c)
	if ws == nil {
		return err
	}
	var req dto.SelectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Selection updated", ws.Search.ToggleSelect(req.ID))
}

// AssignSelected commits the current search selection to the selected
// operation unit; on success the assigned set is refetched
// @Summary Assign Selected CAGs
// @Tags Workspaces
// @Accept json
// @Produce json
// @Param workspaceId path string true "Workspace ID"
// @Param request body dto.AssignRequest true "Assignment granularity"
// @Success 200 {object} dto.APIResponse{data=dto.MutationResultResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Workspace not found"
// @Router /api/v1/workspaces/{workspaceId}/search/assign [post]
func (h *WorkspaceHandler) AssignSelected(c fiber.Ctx) error {
	ws, err := h.workspace(c)
	if ws == nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	applied := ws.AssignSelected(h.createRequestContext(c), req.AssignmentType)
	res := dto.MutationResultResponse{Applied: applied, Error: ws.Search.State().Error}
	return h.SuccessResponse(c, fiber.StatusOK, "Assignment processed", res)
}

// workspace resolves the session from the path, writing the 404 itself when
// the id is unknown or expired
func (h *WorkspaceHandler) workspace(c fiber.Ctx) (*businessflow.WorkspaceFlow, error) {
	ws, err := h.store.Get(c.Params("workspaceId"))
	if err != nil {
		return nil, h.ErrorResponse(c, fiber.StatusNotFound, "Workspace not found", "WORKSPACE_NOT_FOUND", nil)
	}
	return ws, nil
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *WorkspaceHandler) createRequestContext(c fiber.Ctx) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ctx = context.WithValue(ctx, businessflow.RequestIDKey, c.Get("X-Request-ID"))
	return context.WithValue(ctx, businessflow.CancelFuncKey, cancel)
}
