// Package businessflow contains the business logic for the application.
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Cascade lookup errors
	ErrClientNotFound        = errors.New("client not found")
	ErrContractNotFound      = errors.New("contract not found")
	ErrOperationUnitNotFound = errors.New("operation unit not found")

	// Catalog and assignment errors
	ErrCAGNotFound           = errors.New("CAG not found")
	ErrCAGAlreadyAssigned    = errors.New("CAG is already assigned to this operation unit")
	ErrAssignmentNotFound    = errors.New("assignment not found")
	ErrInvalidAssignmentType = errors.New("assignment type must be Carrier, Account or Group")
	ErrNoCAGsProvided        = errors.New("at least one CAG must be provided")

	// Filter errors
	ErrInvalidDateFormat     = errors.New("date must be a valid MM/DD/YYYY calendar date")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")

	// Workspace errors
	ErrWorkspaceNotFound = errors.New("workspace not found")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error classification helpers used by the HTTP layer

func IsClientNotFound(err error) bool        { return errors.Is(err, ErrClientNotFound) }
func IsContractNotFound(err error) bool      { return errors.Is(err, ErrContractNotFound) }
func IsOperationUnitNotFound(err error) bool { return errors.Is(err, ErrOperationUnitNotFound) }
func IsCAGNotFound(err error) bool           { return errors.Is(err, ErrCAGNotFound) }
func IsCAGAlreadyAssigned(err error) bool    { return errors.Is(err, ErrCAGAlreadyAssigned) }
func IsAssignmentNotFound(err error) bool    { return errors.Is(err, ErrAssignmentNotFound) }
func IsInvalidAssignmentType(err error) bool { return errors.Is(err, ErrInvalidAssignmentType) }
func IsInvalidDateFormat(err error) bool     { return errors.Is(err, ErrInvalidDateFormat) }
func IsStartDateAfterEndDate(err error) bool { return errors.Is(err, ErrStartDateAfterEndDate) }
func IsWorkspaceNotFound(err error) bool     { return errors.Is(err, ErrWorkspaceNotFound) }
