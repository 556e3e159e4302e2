// Package services provides external service integrations for the application
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/medops/core-engine/app/dto"
)

// User-facing transport error messages. The workspace flows surface these
// verbatim, so the wording is part of the contract.
const (
	ErrMsgBadRequest = "Invalid request. Please check your input."
	ErrMsgNotFound   = "Resource not found."
	ErrMsgServer     = "Server error. Please try again later."
)

// RegistryAPI is the boundary the workspace flows talk through. Every method
// either returns the typed payload or an error whose message is ready for
// display; the flows never see HTTP details.
type RegistryAPI interface {
	FetchActiveClients(ctx context.Context) ([]dto.ClientDTO, error)
	FetchContracts(ctx context.Context, clientID string) ([]dto.ContractDTO, error)
	FetchOperationUnits(ctx context.Context, contractInternalID string) ([]dto.OperationUnitDTO, error)
	FetchAssignedCAGs(ctx context.Context, operationUnitInternalID string, page, size int) (*dto.AssignedCAGListResponse, error)
	SearchCAGs(ctx context.Context, params dto.CAGSearchParams) ([]dto.UnassignedCAGDTO, error)
	AssignCAGs(ctx context.Context, req dto.AssignCAGsRequest) (string, error)
	UpdateCAGStatus(ctx context.Context, req dto.UpdateCAGStatusRequest) (string, error)
}

// RegistryClient is the HTTP implementation of RegistryAPI
type RegistryClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewRegistryClient constructs a registry client against the given base URL
func NewRegistryClient(baseURL string, timeout time.Duration) *RegistryClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RegistryClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		Timeout:    timeout,
	}
}

func (c *RegistryClient) Name() string { return "registry" }

// FetchActiveClients retrieves the full active-client list
func (c *RegistryClient) FetchActiveClients(ctx context.Context) ([]dto.ClientDTO, error) {
	var out dto.ClientListResponse
	if err := c.getJSON(ctx, "/api/v1/registry/clients", &out); err != nil {
		return nil, err
	}
	return out.ClientList, nil
}

// FetchContracts retrieves the contracts of one client
func (c *RegistryClient) FetchContracts(ctx context.Context, clientID string) ([]dto.ContractDTO, error) {
	path := "/api/v1/registry/clients/" + url.PathEscape(clientID) + "/contracts"
	var out dto.ContractListResponse
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.ContractList, nil
}

// FetchOperationUnits retrieves the operation units under one contract
func (c *RegistryClient) FetchOperationUnits(ctx context.Context, contractInternalID string) ([]dto.OperationUnitDTO, error) {
	path := "/api/v1/registry/contracts/" + url.PathEscape(contractInternalID) + "/operation-units"
	var out dto.OperationUnitListResponse
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.OperationUnitList, nil
}

// FetchAssignedCAGs retrieves one 0-indexed page of assignments plus the total count
func (c *RegistryClient) FetchAssignedCAGs(ctx context.Context, operationUnitInternalID string, page, size int) (*dto.AssignedCAGListResponse, error) {
	path := "/api/v1/registry/operation-units/" + url.PathEscape(operationUnitInternalID) + "/cags" +
		"?page=" + strconv.Itoa(page) + "&size=" + strconv.Itoa(size)
	var out dto.AssignedCAGListResponse
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchCAGs runs a catalog search. Empty params are valid and fetch the
// catalog unfiltered; empty fields never reach the wire (omitempty).
func (c *RegistryClient) SearchCAGs(ctx context.Context, params dto.CAGSearchParams) ([]dto.UnassignedCAGDTO, error) {
	var out dto.CAGSearchResponse
	if err := c.postJSON(ctx, "/api/v1/registry/cags/search", params, &out); err != nil {
		return nil, err
	}
	return out.Entities, nil
}

// AssignCAGs commits catalog entities to an operation unit
func (c *RegistryClient) AssignCAGs(ctx context.Context, req dto.AssignCAGsRequest) (string, error) {
	var out dto.MessageResponse
	if err := c.postJSON(ctx, "/api/v1/registry/cags/assign", req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// UpdateCAGStatus bulk-updates assignment status
func (c *RegistryClient) UpdateCAGStatus(ctx context.Context, req dto.UpdateCAGStatusRequest) (string, error) {
	var out dto.MessageResponse
	if err := c.putJSON(ctx, "/api/v1/registry/cags/status", req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// HTTP helpers

type registryEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   any             `json:"error"`
}

func (c *RegistryClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *RegistryClient) postJSON(ctx context.Context, path string, payload any, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, payload, out)
}

func (c *RegistryClient) putJSON(ctx context.Context, path string, payload any, out any) error {
	return c.sendJSON(ctx, http.MethodPut, path, payload, out)
}

func (c *RegistryClient) sendJSON(ctx context.Context, method, path string, payload any, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *RegistryClient) do(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.New(mapStatus(resp.StatusCode))
	}
	if out == nil {
		return nil
	}

	var env registryEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return err
	}
	if len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// mapStatus translates an HTTP status into the display message the flows
// surface verbatim
func mapStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrMsgBadRequest
	case http.StatusNotFound:
		return ErrMsgNotFound
	case http.StatusInternalServerError:
		return ErrMsgServer
	default:
		return fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))
	}
}
