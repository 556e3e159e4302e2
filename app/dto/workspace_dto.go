package dto

// Wire types for the workspace API, which drives the per-session selection
// cascade, assigned-set, and search flows over HTTP.

// CreateWorkspaceResponse returns the id of a freshly created workspace session
type CreateWorkspaceResponse struct {
	WorkspaceID string `json:"workspaceId"`
}

// SelectRequest carries one selection change; an empty id clears the
// selection and everything below it in the cascade
type SelectRequest struct {
	ID string `json:"id"`
}

// PageRequest moves the assigned-set pagination window. Page is 1-indexed on
// the wire and translated to the flow's 0-indexed state at the boundary.
type PageRequest struct {
	Page     int `json:"page" validate:"omitempty,min=1"`
	PageSize int `json:"pageSize" validate:"omitempty,min=1,max=100"`
}

// SelectionRequest replaces a flow's selection set wholesale
type SelectionRequest struct {
	IDs []string `json:"ids"`
}

// UpdateStatusRequest bulk-updates the status of the currently selected assignments
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE INACTIVE"`
}

// AssignRequest commits the current search selection at the given granularity
type AssignRequest struct {
	AssignmentType string `json:"assignmentType" validate:"required,oneof=Carrier Account Group"`
}

// CascadeStateDTO mirrors the selection cascade flow state
type CascadeStateDTO struct {
	Clients                 []ClientDTO        `json:"clients"`
	Contracts               []ContractDTO      `json:"contracts"`
	OperationUnits          []OperationUnitDTO `json:"operationUnits"`
	SelectedClient          string             `json:"selectedClient"`
	SelectedContract        string             `json:"selectedContract"`
	SelectedOperationUnit   string             `json:"selectedOperationUnit"`
	IsLoadingClients        bool               `json:"isLoadingClients"`
	IsLoadingContracts      bool               `json:"isLoadingContracts"`
	IsLoadingOperationUnits bool               `json:"isLoadingOperationUnits"`
	Error                   *string            `json:"error"`
}

// AssignedStateDTO mirrors the assigned-set flow state; CurrentPage is 0-indexed
type AssignedStateDTO struct {
	AssignedCAGs []AssignedCAGDTO `json:"assignedCAGs"`
	TotalCount   int64            `json:"totalCount"`
	CurrentPage  int              `json:"currentPage"`
	PageSize     int              `json:"pageSize"`
	IsLoading    bool             `json:"isLoading"`
	Error        *string          `json:"error"`
	SelectedCAGs []string         `json:"selectedCAGs"`
}

// SearchStateDTO mirrors the unassigned-search flow state
type SearchStateDTO struct {
	SearchResults []UnassignedCAGDTO `json:"searchResults"`
	SearchParams  CAGSearchParams    `json:"searchParams"`
	IsSearching   bool               `json:"isSearching"`
	Error         *string            `json:"error"`
	SelectedCAGs  []string           `json:"selectedCAGs"`
}

// WorkspaceStateResponse snapshots all three flows of one workspace session
type WorkspaceStateResponse struct {
	WorkspaceID string           `json:"workspaceId"`
	Cascade     CascadeStateDTO  `json:"cascade"`
	Assigned    AssignedStateDTO `json:"assigned"`
	Search      SearchStateDTO   `json:"search"`
}

// MutationResultResponse reports whether a bulk mutation went through.
// Applied false with no error means the operation was a no-op (empty selection).
type MutationResultResponse struct {
	Applied bool    `json:"applied"`
	Error   *string `json:"error"`
}
