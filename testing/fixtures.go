// Package testing provides test utilities and database setup for testing the operations engine
package testing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/medops/core-engine/models"
	"github.com/medops/core-engine/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestClient creates an active billing client
func (tf *TestFixtures) CreateTestClient(clientID, name string) (*models.Client, error) {
	client := &models.Client{
		UUID:              uuid.New(),
		ClientID:          clientID,
		ClientName:        name,
		ClientReferenceID: "REF-" + clientID,
		IsActive:          utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(client).Error; err != nil {
		return nil, fmt.Errorf("failed to create test client: %w", err)
	}
	return client, nil
}

// CreateTestContract creates a contract under a client. A nil terminateDate
// makes the contract open-ended.
func (tf *TestFixtures) CreateTestContract(clientID, contractInternalID string, effectiveDate time.Time, terminateDate *time.Time) (*models.Contract, error) {
	contract := &models.Contract{
		UUID:               uuid.New(),
		ContractInternalID: contractInternalID,
		ContractID:         "C-" + contractInternalID,
		ClientID:           clientID,
		EffectiveDate:      effectiveDate,
		TerminateDate:      terminateDate,
	}

	if err := tf.DB.DB.Create(contract).Error; err != nil {
		return nil, fmt.Errorf("failed to create test contract: %w", err)
	}
	return contract, nil
}

// CreateTestOperationUnit creates an operation unit under a contract
func (tf *TestFixtures) CreateTestOperationUnit(contractInternalID, operationUnitInternalID, name string) (*models.OperationUnit, error) {
	unit := &models.OperationUnit{
		UUID:                    uuid.New(),
		OperationUnitInternalID: operationUnitInternalID,
		OperationUnitID:         "OU-" + operationUnitInternalID,
		OperationUnitName:       name,
		ContractInternalID:      contractInternalID,
	}

	if err := tf.DB.DB.Create(unit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test operation unit: %w", err)
	}
	return unit, nil
}

// CreateTestCAG creates a catalog entity. Empty accountID yields a
// carrier-level row, empty groupID an account-level row.
func (tf *TestFixtures) CreateTestCAG(cagID, carrierID, accountID, groupID string) (*models.CAG, error) {
	cag := &models.CAG{
		UUID:        uuid.New(),
		CAGID:       cagID,
		CarrierID:   carrierID,
		CarrierName: "Carrier " + carrierID,
	}
	if accountID != "" {
		cag.AccountID = accountID
		cag.AccountName = "Account " + accountID
	}
	if groupID != "" {
		cag.GroupID = groupID
		cag.GroupName = "Group " + groupID
	}

	if err := tf.DB.DB.Create(cag).Error; err != nil {
		return nil, fmt.Errorf("failed to create test CAG: %w", err)
	}
	return cag, nil
}

// CreateTestAssignment assigns a catalog entity to an operation unit
func (tf *TestFixtures) CreateTestAssignment(operationUnitInternalID string, cag *models.CAG, status models.AssignmentStatus, level models.AssignmentLevel) (*models.OperationUnitCAG, error) {
	id := uuid.New()
	row := &models.OperationUnitCAG{
		UUID:                    id,
		OUCAGID:                 "OUC-" + id.String(),
		OperationUnitInternalID: operationUnitInternalID,
		CAGID:                   cag.CAGID,
		EffectiveStartDate:      utils.TruncateToDay(utils.UTCNow()),
		AssignmentStatus:        status,
		AssignmentLevel:         level,
		CarrierID:               cag.CarrierID,
		CarrierName:             cag.CarrierName,
		AccountID:               cag.AccountID,
		AccountName:             cag.AccountName,
		GroupID:                 cag.GroupID,
		GroupName:               cag.GroupName,
	}

	if err := tf.DB.DB.Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create test assignment: %w", err)
	}
	return row, nil
}
