// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/medops/core-engine/app/dto"
	"github.com/medops/core-engine/models"
	"github.com/medops/core-engine/utils"
)

type contextKey string

// Context keys for request-scoped values set at the HTTP boundary
const (
	RequestIDKey  contextKey = "request_id"
	CancelFuncKey contextKey = "cancel_func"
)

// wireDateLayout is the ISO form used for contract and assignment dates on the wire
const wireDateLayout = "2006-01-02"

// AssignmentTypeToLevel maps the wire assignment type (Carrier/Account/Group)
// to the persisted assignment level enum
func AssignmentTypeToLevel(assignmentType string) (models.AssignmentLevel, error) {
	switch assignmentType {
	case "Carrier":
		return models.AssignmentLevelCarrier, nil
	case "Account":
		return models.AssignmentLevelAccount, nil
	case "Group":
		return models.AssignmentLevelGroup, nil
	default:
		return "", ErrInvalidAssignmentType
	}
}

// ToClientDTO converts a client model to its wire representation
func ToClientDTO(client *models.Client) dto.ClientDTO {
	return dto.ClientDTO{
		ClientID:          client.ClientID,
		ClientName:        client.ClientName,
		ClientReferenceID: client.ClientReferenceID,
	}
}

// ToContractDTO converts a contract model to its wire representation,
// deriving the calendar-day status
func ToContractDTO(contract *models.Contract) dto.ContractDTO {
	out := dto.ContractDTO{
		ContractInternalID: contract.ContractInternalID,
		ContractID:         contract.ContractID,
		EffectiveDate:      contract.EffectiveDate.Format(wireDateLayout),
		Status:             contract.Status(),
	}
	if contract.TerminateDate != nil {
		out.TerminateDate = utils.ToPtr(contract.TerminateDate.Format(wireDateLayout))
	}
	return out
}

// ToOperationUnitDTO converts an operation unit model to its wire representation
func ToOperationUnitDTO(unit *models.OperationUnit) dto.OperationUnitDTO {
	return dto.OperationUnitDTO{
		OperationUnitInternalID: unit.OperationUnitInternalID,
		OperationUnitID:         unit.OperationUnitID,
		OperationUnitName:       unit.OperationUnitName,
	}
}

// ToAssignedCAGDTO converts an assignment model to its wire representation
func ToAssignedCAGDTO(row *models.OperationUnitCAG) dto.AssignedCAGDTO {
	out := dto.AssignedCAGDTO{
		OUCAGID:                 row.OUCAGID,
		OperationUnitInternalID: row.OperationUnitInternalID,
		CAGID:                   row.CAGID,
		EffectiveStartDate:      row.EffectiveStartDate.Format(wireDateLayout),
		AssignmentStatus:        row.AssignmentStatus.String(),
		AssignmentLevel:         row.AssignmentLevel.String(),
		CarrierID:               row.CarrierID,
		CarrierName:             row.CarrierName,
		AccountID:               row.AccountID,
		AccountName:             row.AccountName,
		GroupID:                 row.GroupID,
		GroupName:               row.GroupName,
	}
	if row.EffectiveEndDate != nil {
		out.EffectiveEndDate = utils.ToPtr(row.EffectiveEndDate.Format(wireDateLayout))
	}
	return out
}

// ToUnassignedCAGDTO converts a catalog model to its wire representation
func ToUnassignedCAGDTO(cag *models.CAG) dto.UnassignedCAGDTO {
	return dto.UnassignedCAGDTO{
		CAGID:       cag.CAGID,
		CarrierID:   cag.CarrierID,
		CarrierName: cag.CarrierName,
		AccountID:   cag.AccountID,
		AccountName: cag.AccountName,
		GroupID:     cag.GroupID,
		GroupName:   cag.GroupName,
	}
}

// parseWireDate parses an ISO wire date, tolerating full RFC3339 stamps
func parseWireDate(s string) (time.Time, error) {
	if t, err := time.Parse(wireDateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
