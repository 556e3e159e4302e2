package dto

// Wire types for the registry API. Dates travel as strings: contract and
// assignment dates in ISO form (2006-01-02), user-entered search filters in
// MM/DD/YYYY. An empty terminateDate/effectiveEndDate means open-ended.

// ClientDTO represents a billing client on the wire
type ClientDTO struct {
	ClientID          string `json:"clientId"`
	ClientName        string `json:"clientName"`
	ClientReferenceID string `json:"clientReferenceId"`
}

// ContractDTO represents a contract on the wire; Status is derived per calendar day
type ContractDTO struct {
	ContractInternalID string  `json:"contractInternalId"`
	ContractID         string  `json:"contractId"`
	EffectiveDate      string  `json:"effectiveDate"`
	TerminateDate      *string `json:"terminateDate"`
	Status             string  `json:"status,omitempty"`
}

// OperationUnitDTO represents an operation unit on the wire
type OperationUnitDTO struct {
	OperationUnitInternalID string `json:"operationUnitInternalId"`
	OperationUnitID         string `json:"operationUnitId"`
	OperationUnitName       string `json:"operationUnitName"`
}

// AssignedCAGDTO represents a persisted CAG assignment on the wire
type AssignedCAGDTO struct {
	OUCAGID                 string  `json:"ouCagId"`
	OperationUnitInternalID string  `json:"operationUnitInternalId"`
	CAGID                   string  `json:"cagId"`
	EffectiveStartDate      string  `json:"effectiveStartDate"`
	EffectiveEndDate        *string `json:"effectiveEndDate"`
	AssignmentStatus        string  `json:"assignmentStatus"`
	AssignmentLevel         string  `json:"assignmentLevel"`
	CarrierID               string  `json:"carrierId"`
	CarrierName             string  `json:"carrierName"`
	AccountID               string  `json:"accountId"`
	AccountName             string  `json:"accountName"`
	GroupID                 string  `json:"groupId"`
	GroupName               string  `json:"groupName"`
}

// UnassignedCAGDTO represents a catalog candidate not yet assigned to the
// operation unit in question; it carries no assignment metadata
type UnassignedCAGDTO struct {
	CAGID       string `json:"cagId"`
	CarrierID   string `json:"carrierId"`
	CarrierName string `json:"carrierName"`
	AccountID   string `json:"accountId"`
	AccountName string `json:"accountName"`
	GroupID     string `json:"groupId"`
	GroupName   string `json:"groupName"`
}

// ClientListResponse is the payload of the active-client list endpoint
type ClientListResponse struct {
	ClientList []ClientDTO `json:"clientList"`
}

// ContractListResponse is the payload of the per-client contract list endpoint
type ContractListResponse struct {
	ContractList []ContractDTO `json:"contractList"`
}

// OperationUnitListResponse is the payload of the per-contract operation unit list endpoint
type OperationUnitListResponse struct {
	OperationUnitList []OperationUnitDTO `json:"operationUnitList"`
}

// AssignedCAGListResponse is one page of assignments plus the total row count
type AssignedCAGListResponse struct {
	OUCAGList []AssignedCAGDTO `json:"ouCagList"`
	Count     int64            `json:"count"`
}

// CAGSearchParams is the sparse search filter bag. Every field is optional;
// empty values are omitted from the wire request entirely.
type CAGSearchParams struct {
	AssignmentLevel string `json:"assignmentLevel,omitempty"`
	CarrierID       string `json:"carrierId,omitempty"`
	CarrierName     string `json:"carrierName,omitempty"`
	AccountID       string `json:"accountId,omitempty"`
	AccountName     string `json:"accountName,omitempty"`
	GroupID         string `json:"groupId,omitempty"`
	GroupName       string `json:"groupName,omitempty"`
	StartDate       string `json:"startDate,omitempty" validate:"omitempty,usdate"`
	EndDate         string `json:"endDate,omitempty" validate:"omitempty,usdate"`
	// ExcludeOperationUnitID drops entities already assigned to the given
	// operation unit, so a caller can search only what is still assignable.
	ExcludeOperationUnitID string `json:"excludeOperationUnitId,omitempty"`
}

// IsZero reports whether no filter field is set (an unfiltered search)
func (p CAGSearchParams) IsZero() bool {
	return p == CAGSearchParams{}
}

// CAGSearchResponse is the payload of the catalog search endpoint
type CAGSearchResponse struct {
	Entities []UnassignedCAGDTO `json:"entities"`
}

// AssignCAGsRequest commits selected catalog entities to an operation unit
type AssignCAGsRequest struct {
	OperationUnitInternalID string   `json:"operationUnitInternalId" validate:"required"`
	AssignmentType          string   `json:"assignmentType" validate:"required,oneof=Carrier Account Group"`
	CAGIDs                  []string `json:"cagIds" validate:"required,min=1"`
}

// UpdateCAGStatusRequest bulk-updates the status of existing assignments
type UpdateCAGStatusRequest struct {
	OUCAGIDs []string `json:"ouCagIds" validate:"required,min=1"`
	Status   string   `json:"status" validate:"required,oneof=ACTIVE INACTIVE"`
}

// MessageResponse is the payload of mutation endpoints
type MessageResponse struct {
	Message string `json:"message"`
}
