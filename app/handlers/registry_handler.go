// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/medops/core-engine/app/dto"
	businessflow "github.com/medops/core-engine/business_flow"
	"github.com/medops/core-engine/utils"
)

// RegistryHandlerInterface defines handler methods for the registry API,
// the server side of the reference-data and assignment endpoints
type RegistryHandlerInterface interface {
	ListClients(c fiber.Ctx) error
	ListContracts(c fiber.Ctx) error
	ListOperationUnits(c fiber.Ctx) error
	ListAssignedCAGs(c fiber.Ctx) error
	SearchCAGs(c fiber.Ctx) error
	AssignCAGs(c fiber.Ctx) error
	UpdateCAGStatus(c fiber.Ctx) error
}

// RegistryHandler implements registry endpoints
type RegistryHandler struct {
	flow      businessflow.RegistryFlow
	validator *validator.Validate
}

func NewRegistryHandler(flow businessflow.RegistryFlow) RegistryHandlerInterface {
	return &RegistryHandler{
		flow:      flow,
		validator: NewValidator(),
	}
}

func (h *RegistryHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *RegistryHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// ListClients returns all active billing clients
// @Summary List Active Clients
// @Description Retrieve every active client for the selection cascade
// @Tags Registry
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ClientListResponse}
// @Failure 500 {object} dto.APIResponse "List failed"
// @Router /api/v1/registry/clients [get]
func (h *RegistryHandler) ListClients(c fiber.Ctx) error {
	res, err := h.flow.ListActiveClients(h.createRequestContext(c))
	if err != nil {
		log.Println("List clients failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "List clients failed", "CLIENT_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Clients retrieved", res)
}

// ListContracts returns the contracts of one client with derived status
// @Summary List Contracts
// @Description Retrieve the contracts of one client; status is derived per calendar day
// @Tags Registry
// @Produce json
// @Param clientId path string true "Client ID"
// @Success 200 {object} dto.APIResponse{data=dto.ContractListResponse}
// @Failure 404 {object} dto.APIResponse "Client not found"
// @Failure 500 {object} dto.APIResponse "List failed"
// @Router /api/v1/registry/clients/{clientId}/contracts [get]
func (h *RegistryHandler) ListContracts(c fiber.Ctx) error {
	clientID := c.Params("clientId")
	res, err := h.flow.ListContracts(h.createRequestContext(c), clientID)
	if err != nil {
		if businessflow.IsClientNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Client not found", "CLIENT_NOT_FOUND", nil)
		}
		log.Println("List contracts failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "List contracts failed", "CONTRACT_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Contracts retrieved", res)
}

// ListOperationUnits returns the operation units under one contract
// @Summary List Operation Units
// @Description Retrieve the operation units of one contract
// @Tags Registry
// @Produce json
// @Param contractInternalId path string true "Contract internal ID"
// @Success 200 {object} dto.APIResponse{data=dto.OperationUnitListResponse}
// @Failure 404 {object} dto.APIResponse "Contract not found"
// @Failure 500 {object} dto.APIResponse "List failed"
// @Router /api/v1/registry/contracts/{contractInternalId}/operation-units [get]
func (h *RegistryHandler) ListOperationUnits(c fiber.Ctx) error {
	contractInternalID := c.Params("contractInternalId")
	res, err := h.flow.ListOperationUnits(h.createRequestContext(c), contractInternalID)
	if err != nil {
		if businessflow.IsContractNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Contract not found", "CONTRACT_NOT_FOUND", nil)
		}
		log.Println("List operation units failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "List operation units failed", "OPERATION_UNIT_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Operation units retrieved", res)
}

// ListAssignedCAGs returns one page of CAG assignments for an operation unit
// @Summary List Assigned CAGs
// @Description Retrieve one 0-indexed page of assignments plus the total count
// @Tags Registry
// @Produce json
// @Param operationUnitInternalId path string true "Operation unit internal ID"
// @Param page query int false "0-indexed page" default(0)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.AssignedCAGListResponse}
// @Failure 400 {object} dto.APIResponse "Invalid paging"
// @Failure 404 {object} dto.APIResponse "Operation unit not found"
// @Failure 500 {object} dto.APIResponse "List failed"
// @Router /api/v1/registry/operation-units/{operationUnitInternalId}/cags [get]
func (h *RegistryHandler) ListAssignedCAGs(c fiber.Ctx) error {
	operationUnitInternalID := c.Params("operationUnitInternalId")

	page, err := strconv.Atoi(c.Query("page", "0"))
	if err != nil || page < 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Page must be a non-negative integer", "INVALID_PAGE", nil)
	}
	size, err := strconv.Atoi(c.Query("size", strconv.Itoa(utils.DefaultPageSize)))
	if err != nil || size < 1 || size > utils.MaxPageSize {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Size must be between 1 and 100", "INVALID_PAGE_SIZE", nil)
	}

	res, err := h.flow.PageAssignedCAGs(h.createRequestContext(c), operationUnitInternalID, page, size)
	if err != nil {
		if businessflow.IsOperationUnitNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Operation unit not found", "OPERATION_UNIT_NOT_FOUND", nil)
		}
		log.Println("List assigned CAGs failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "List assigned CAGs failed", "ASSIGNED_CAG_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Assigned CAGs retrieved", res)
}

// SearchCAGs searches the CAG catalog with a sparse filter bag
// @Summary Search CAG Catalog
// @Description Search carrier/account/group entities; every filter field is optional
// @Tags Registry
// @Accept json
// @Produce json
// @Param request body dto.CAGSearchParams true "Search filters"
// @Success 200 {object} dto.APIResponse{data=dto.CAGSearchResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Search failed"
// @Router /api/v1/registry/cags/search [post]
func (h *RegistryHandler) SearchCAGs(c fiber.Ctx) error {
	var params dto.CAGSearchParams
	if err := c.Bind().JSON(&params); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&params); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	res, err := h.flow.SearchCatalog(h.createRequestContext(c), params)
	if err != nil {
		if businessflow.IsInvalidDateFormat(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Dates must be valid MM/DD/YYYY", "INVALID_DATE_FORMAT", nil)
		}
		if businessflow.IsStartDateAfterEndDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Start date cannot be after end date", "INVALID_DATE_RANGE", nil)
		}
		if businessflow.IsInvalidAssignmentType(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Assignment level must be CARRIER, ACCOUNT or GROUP", "INVALID_ASSIGNMENT_LEVEL", nil)
		}
		log.Println("CAG search failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "CAG search failed", "CAG_SEARCH_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "CAG search completed", res)
}

// AssignCAGs assigns selected catalog entities to an operation unit
// @Summary Assign CAGs
// @Description Create assignment rows for the given CAG IDs under one operation unit
// @Tags Registry
// @Accept json
// @Produce json
// @Param request body dto.AssignCAGsRequest true "Assignment payload"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 400 {object} dto.APIResponse "Validation error or duplicate assignment"
// @Failure 404 {object} dto.APIResponse "Operation unit or CAG not found"
// @Failure 500 {object} dto.APIResponse "Assignment failed"
// @Router /api/v1/registry/cags/assign [post]
func (h *RegistryHandler) AssignCAGs(c fiber.Ctx) error {
	var req dto.AssignCAGsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	res, err := h.flow.AssignCAGs(h.createRequestContext(c), &req)
	if err != nil {
		if businessflow.IsOperationUnitNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Operation unit not found", "OPERATION_UNIT_NOT_FOUND", nil)
		}
		if businessflow.IsCAGNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "One or more CAGs not found", "CAG_NOT_FOUND", nil)
		}
		if businessflow.IsCAGAlreadyAssigned(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "CAG is already assigned to this operation unit", "CAG_ALREADY_ASSIGNED", nil)
		}
		if businessflow.IsInvalidAssignmentType(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Assignment type must be Carrier, Account or Group", "INVALID_ASSIGNMENT_TYPE", nil)
		}
		log.Println("Assign CAGs failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Assign CAGs failed", "CAG_ASSIGN_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "CAGs assigned", res)
}

// UpdateCAGStatus bulk-updates the status of existing assignments
// @Summary Update CAG Assignment Status
// @Description Set the given assignments to ACTIVE or INACTIVE
// @Tags Registry
// @Accept json
// @Produce json
// @Param request body dto.UpdateCAGStatusRequest true "Status update payload"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "No matching assignments"
// @Failure 500 {object} dto.APIResponse "Update failed"
// @Router /api/v1/registry/cags/status [put]
func (h *RegistryHandler) UpdateCAGStatus(c fiber.Ctx) error {
	var req dto.UpdateCAGStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	res, err := h.flow.UpdateStatus(h.createRequestContext(c), &req)
	if err != nil {
		if businessflow.IsAssignmentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "No matching assignments found", "ASSIGNMENT_NOT_FOUND", nil)
		}
		log.Println("Update CAG status failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Update CAG status failed", "CAG_STATUS_UPDATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "CAG status updated", res)
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *RegistryHandler) createRequestContext(c fiber.Ctx) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ctx = context.WithValue(ctx, businessflow.RequestIDKey, c.Get("X-Request-ID"))
	return context.WithValue(ctx, businessflow.CancelFuncKey, cancel)
}
