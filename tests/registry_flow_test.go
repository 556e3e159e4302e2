package tests

import (
	"testing"
	"time"

	"github.com/medops/core-engine/app/dto"
	businessflow "github.com/medops/core-engine/business_flow"
	"github.com/medops/core-engine/models"
	"github.com/medops/core-engine/repository"
	testingutil "github.com/medops/core-engine/testing"
	"github.com/medops/core-engine/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistryFlow(testDB *testingutil.TestDB) businessflow.RegistryFlow {
	return businessflow.NewRegistryFlow(
		repository.NewClientRepository(testDB.DB),
		repository.NewContractRepository(testDB.DB),
		repository.NewOperationUnitRepository(testDB.DB),
		repository.NewCAGRepository(testDB.DB),
		repository.NewOperationUnitCAGRepository(testDB.DB),
		testDB.DB,
	)
}

func TestRegistryFlowCascadeListing(t *testing.T) {
	requireTestDB(t)
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newRegistryFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		_, err := fixtures.CreateTestClient("C001", "Acme Health")
		require.NoError(t, err)

		effective := utils.TruncateToDay(utils.UTCNow()).AddDate(-1, 0, 0)
		_, err = fixtures.CreateTestContract("C001", "CT-1", effective, nil)
		require.NoError(t, err)
		terminated := utils.TruncateToDay(utils.UTCNow()).AddDate(0, 0, -10)
		_, err = fixtures.CreateTestContract("C001", "CT-2", effective, &terminated)
		require.NoError(t, err)

		_, err = fixtures.CreateTestOperationUnit("CT-1", "OU-1", "East Region")
		require.NoError(t, err)

		t.Run("ListActiveClients", func(t *testing.T) {
			resp, err := flow.ListActiveClients(ctx)
			require.NoError(t, err)
			require.Len(t, resp.ClientList, 1)
			assert.Equal(t, "C001", resp.ClientList[0].ClientID)
		})

		t.Run("ListContractsDerivesStatus", func(t *testing.T) {
			resp, err := flow.ListContracts(ctx, "C001")
			require.NoError(t, err)
			require.Len(t, resp.ContractList, 2)

			byID := map[string]dto.ContractDTO{}
			for _, c := range resp.ContractList {
				byID[c.ContractInternalID] = c
			}
			assert.Equal(t, "Active", byID["CT-1"].Status)
			assert.Equal(t, "Inactive", byID["CT-2"].Status)
			require.NotNil(t, byID["CT-2"].TerminateDate)
		})

		t.Run("ListContractsUnknownClient", func(t *testing.T) {
			_, err := flow.ListContracts(ctx, "C999")
			assert.True(t, businessflow.IsClientNotFound(err))
		})

		t.Run("ListOperationUnits", func(t *testing.T) {
			resp, err := flow.ListOperationUnits(ctx, "CT-1")
			require.NoError(t, err)
			require.Len(t, resp.OperationUnitList, 1)
			assert.Equal(t, "OU-1", resp.OperationUnitList[0].OperationUnitInternalID)
		})

		t.Run("ListOperationUnitsUnknownContract", func(t *testing.T) {
			_, err := flow.ListOperationUnits(ctx, "CT-999")
			assert.True(t, businessflow.IsContractNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRegistryFlowAssignAndPage(t *testing.T) {
	requireTestDB(t)
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newRegistryFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		_, err := fixtures.CreateTestClient("C001", "Acme Health")
		require.NoError(t, err)
		jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		_, err = fixtures.CreateTestContract("C001", "CT-1", jan, nil)
		require.NoError(t, err)
		_, err = fixtures.CreateTestOperationUnit("CT-1", "OU-1", "East Region")
		require.NoError(t, err)

		_, err = fixtures.CreateTestCAG("CAG-1", "CAR-1", "ACC-1", "GRP-1")
		require.NoError(t, err)
		_, err = fixtures.CreateTestCAG("CAG-2", "CAR-1", "ACC-1", "GRP-2")
		require.NoError(t, err)

		t.Run("AssignCreatesActiveRows", func(t *testing.T) {
			resp, err := flow.AssignCAGs(ctx, &dto.AssignCAGsRequest{
				OperationUnitInternalID: "OU-1",
				AssignmentType:          "Group",
				CAGIDs:                  []string{"CAG-1", "CAG-2"},
			})
			require.NoError(t, err)
			assert.Equal(t, "2 CAG(s) assigned successfully", resp.Message)

			page, err := flow.PageAssignedCAGs(ctx, "OU-1", 0, 10)
			require.NoError(t, err)
			assert.Equal(t, int64(2), page.Count)
			require.Len(t, page.OUCAGList, 2)
			for _, row := range page.OUCAGList {
				assert.Equal(t, "ACTIVE", row.AssignmentStatus)
				assert.Equal(t, "GROUP", row.AssignmentLevel)
				assert.Equal(t, "CAR-1", row.CarrierID)
				assert.NotEmpty(t, row.OUCAGID)
			}
		})

		t.Run("AssignDuplicateRollsBackWholeCommit", func(t *testing.T) {
			_, err := fixtures.CreateTestCAG("CAG-3", "CAR-2", "ACC-2", "GRP-3")
			require.NoError(t, err)

			// CAG-1 is assigned above; the fresh CAG-3 must not land either
			_, err = flow.AssignCAGs(ctx, &dto.AssignCAGsRequest{
				OperationUnitInternalID: "OU-1",
				AssignmentType:          "Group",
				CAGIDs:                  []string{"CAG-3", "CAG-1"},
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsCAGAlreadyAssigned(err))

			page, err := flow.PageAssignedCAGs(ctx, "OU-1", 0, 10)
			require.NoError(t, err)
			assert.Equal(t, int64(2), page.Count)
		})

		t.Run("AssignUnknownCAG", func(t *testing.T) {
			_, err := flow.AssignCAGs(ctx, &dto.AssignCAGsRequest{
				OperationUnitInternalID: "OU-1",
				AssignmentType:          "Carrier",
				CAGIDs:                  []string{"CAG-404"},
			})
			assert.True(t, businessflow.IsCAGNotFound(err))
		})

		t.Run("AssignUnknownOperationUnit", func(t *testing.T) {
			_, err := flow.AssignCAGs(ctx, &dto.AssignCAGsRequest{
				OperationUnitInternalID: "OU-404",
				AssignmentType:          "Carrier",
				CAGIDs:                  []string{"CAG-1"},
			})
			assert.True(t, businessflow.IsOperationUnitNotFound(err))
		})

		t.Run("AssignInvalidType", func(t *testing.T) {
			_, err := flow.AssignCAGs(ctx, &dto.AssignCAGsRequest{
				OperationUnitInternalID: "OU-1",
				AssignmentType:          "Region",
				CAGIDs:                  []string{"CAG-1"},
			})
			assert.True(t, businessflow.IsInvalidAssignmentType(err))
		})

		t.Run("UpdateStatus", func(t *testing.T) {
			page, err := flow.PageAssignedCAGs(ctx, "OU-1", 0, 10)
			require.NoError(t, err)
			require.Len(t, page.OUCAGList, 2)

			resp, err := flow.UpdateStatus(ctx, &dto.UpdateCAGStatusRequest{
				OUCAGIDs: []string{page.OUCAGList[0].OUCAGID},
				Status:   "INACTIVE",
			})
			require.NoError(t, err)
			assert.Equal(t, "1 assignment(s) updated successfully", resp.Message)

			_, err = flow.UpdateStatus(ctx, &dto.UpdateCAGStatusRequest{
				OUCAGIDs: []string{"OUC-404"},
				Status:   "INACTIVE",
			})
			assert.True(t, businessflow.IsAssignmentNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRegistryFlowSearchCatalog(t *testing.T) {
	requireTestDB(t)
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newRegistryFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		cag1, err := fixtures.CreateTestCAG("CAG-1", "CAR-1", "", "")
		require.NoError(t, err)
		_, err = fixtures.CreateTestCAG("CAG-2", "CAR-1", "ACC-1", "GRP-1")
		require.NoError(t, err)

		t.Run("EmptyParamsReturnWholeCatalog", func(t *testing.T) {
			resp, err := flow.SearchCatalog(ctx, dto.CAGSearchParams{})
			require.NoError(t, err)
			assert.Len(t, resp.Entities, 2)
		})

		t.Run("LevelFilter", func(t *testing.T) {
			resp, err := flow.SearchCatalog(ctx, dto.CAGSearchParams{AssignmentLevel: "CARRIER"})
			require.NoError(t, err)
			require.Len(t, resp.Entities, 1)
			assert.Equal(t, "CAG-1", resp.Entities[0].CAGID)
		})

		t.Run("ExcludeOperationUnitDropsAssigned", func(t *testing.T) {
			_, err := fixtures.CreateTestClient("C001", "Acme Health")
			require.NoError(t, err)
			jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
			_, err = fixtures.CreateTestContract("C001", "CT-1", jan, nil)
			require.NoError(t, err)
			_, err = fixtures.CreateTestOperationUnit("CT-1", "OU-1", "East Region")
			require.NoError(t, err)
			_, err = fixtures.CreateTestAssignment("OU-1", cag1, models.AssignmentStatusActive, models.AssignmentLevelCarrier)
			require.NoError(t, err)

			resp, err := flow.SearchCatalog(ctx, dto.CAGSearchParams{ExcludeOperationUnitID: "OU-1"})
			require.NoError(t, err)
			require.Len(t, resp.Entities, 1)
			assert.Equal(t, "CAG-2", resp.Entities[0].CAGID)

			// A unit with no assignments still sees the whole catalog
			resp, err = flow.SearchCatalog(ctx, dto.CAGSearchParams{ExcludeOperationUnitID: "OU-404"})
			require.NoError(t, err)
			assert.Len(t, resp.Entities, 2)
		})

		t.Run("InvalidLevelRejected", func(t *testing.T) {
			_, err := flow.SearchCatalog(ctx, dto.CAGSearchParams{AssignmentLevel: "Carrier"})
			assert.True(t, businessflow.IsInvalidAssignmentType(err))
		})

		t.Run("DateWindow", func(t *testing.T) {
			today := utils.UTCNow().Format(utils.DateLayoutUS)
			resp, err := flow.SearchCatalog(ctx, dto.CAGSearchParams{StartDate: today, EndDate: today})
			require.NoError(t, err)
			assert.Len(t, resp.Entities, 2)
		})

		t.Run("InvalidDateRejected", func(t *testing.T) {
			_, err := flow.SearchCatalog(ctx, dto.CAGSearchParams{StartDate: "02/30/2024"})
			assert.True(t, businessflow.IsInvalidDateFormat(err))
		})

		t.Run("StartAfterEndRejected", func(t *testing.T) {
			_, err := flow.SearchCatalog(ctx, dto.CAGSearchParams{
				StartDate: "06/15/2024",
				EndDate:   "06/14/2024",
			})
			assert.True(t, businessflow.IsStartDateAfterEndDate(err))
		})

		return nil
	})
	require.NoError(t, err)
}
