// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"
	"time"

	"github.com/medops/core-engine/models"
	"github.com/medops/core-engine/repository"
	testingutil "github.com/medops/core-engine/testing"
	"github.com/medops/core-engine/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireTestDB(t *testing.T) {
	t.Helper()
	if !testingutil.HasTestDB() {
		t.Skip("TEST_DB_HOST not set; skipping database tests")
	}
}

func TestClientRepository(t *testing.T) {
	requireTestDB(t)
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewClientRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		_, err := fixtures.CreateTestClient("C001", "Acme Health")
		require.NoError(t, err)
		_, err = fixtures.CreateTestClient("C002", "Globex Insurance")
		require.NoError(t, err)

		t.Run("ByClientID", func(t *testing.T) {
			client, err := repo.ByClientID(ctx, "C001")
			require.NoError(t, err)
			require.NotNil(t, client)
			assert.Equal(t, "Acme Health", client.ClientName)
			assert.Equal(t, "REF-C001", client.ClientReferenceID)
		})

		t.Run("ByClientIDNotFound", func(t *testing.T) {
			client, err := repo.ByClientID(ctx, "C999")
			assert.NoError(t, err)
			assert.Nil(t, client)
		})

		t.Run("ListActive", func(t *testing.T) {
			clients, err := repo.ListActive(ctx)
			require.NoError(t, err)
			assert.Len(t, clients, 2)
		})

		t.Run("Count", func(t *testing.T) {
			count, err := repo.Count(ctx, models.ClientFilter{})
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestContractRepository(t *testing.T) {
	requireTestDB(t)
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewContractRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		_, err := fixtures.CreateTestClient("C001", "Acme Health")
		require.NoError(t, err)

		jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		_, err = fixtures.CreateTestContract("C001", "CT-1", jan, nil)
		require.NoError(t, err)
		_, err = fixtures.CreateTestContract("C001", "CT-2", jan, utils.ToPtr(jan.AddDate(0, 3, 0)))
		require.NoError(t, err)

		t.Run("ByInternalID", func(t *testing.T) {
			contract, err := repo.ByInternalID(ctx, "CT-1")
			require.NoError(t, err)
			require.NotNil(t, contract)
			assert.Equal(t, "C-CT-1", contract.ContractID)
			assert.Nil(t, contract.TerminateDate)
		})

		t.Run("ListByClient", func(t *testing.T) {
			contracts, err := repo.ListByClient(ctx, "C001")
			require.NoError(t, err)
			assert.Len(t, contracts, 2)
		})

		t.Run("ListByClientUnknown", func(t *testing.T) {
			contracts, err := repo.ListByClient(ctx, "C999")
			require.NoError(t, err)
			assert.Empty(t, contracts)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestOperationUnitRepository(t *testing.T) {
	requireTestDB(t)
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewOperationUnitRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		_, err := fixtures.CreateTestClient("C001", "Acme Health")
		require.NoError(t, err)
		jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		_, err = fixtures.CreateTestContract("C001", "CT-1", jan, nil)
		require.NoError(t, err)
		_, err = fixtures.CreateTestOperationUnit("CT-1", "OU-1", "East Region")
		require.NoError(t, err)
		_, err = fixtures.CreateTestOperationUnit("CT-1", "OU-2", "West Region")
		require.NoError(t, err)

		t.Run("ByInternalID", func(t *testing.T) {
			unit, err := repo.ByInternalID(ctx, "OU-1")
			require.NoError(t, err)
			require.NotNil(t, unit)
			assert.Equal(t, "East Region", unit.OperationUnitName)
		})

		t.Run("ListByContract", func(t *testing.T) {
			units, err := repo.ListByContract(ctx, "CT-1")
			require.NoError(t, err)
			assert.Len(t, units, 2)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCAGRepositorySearch(t *testing.T) {
	requireTestDB(t)
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewCAGRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		// Carrier-level entity: carrier only
		carrierOnly, err := fixtures.CreateTestCAG("CAG-1", "CAR-1", "", "")
		require.NoError(t, err)
		// Account-level entity: carrier + account
		_, err = fixtures.CreateTestCAG("CAG-2", "CAR-1", "ACC-1", "")
		require.NoError(t, err)
		// Group-level entities: full triplet
		_, err = fixtures.CreateTestCAG("CAG-3", "CAR-1", "ACC-1", "GRP-1")
		require.NoError(t, err)
		_, err = fixtures.CreateTestCAG("CAG-4", "CAR-2", "ACC-2", "GRP-2")
		require.NoError(t, err)

		t.Run("EmptyFilterReturnsAll", func(t *testing.T) {
			cags, err := repo.Search(ctx, models.CAGFilter{})
			require.NoError(t, err)
			assert.Len(t, cags, 4)
		})

		t.Run("FilterByCarrierID", func(t *testing.T) {
			cags, err := repo.Search(ctx, models.CAGFilter{CarrierID: utils.ToPtr("CAR-1")})
			require.NoError(t, err)
			assert.Len(t, cags, 3)
		})

		t.Run("NameMatchesCaseInsensitiveSubstring", func(t *testing.T) {
			cags, err := repo.Search(ctx, models.CAGFilter{CarrierName: utils.ToPtr("carrier car-1")})
			require.NoError(t, err)
			assert.Len(t, cags, 3)
		})

		t.Run("FilterByAssignmentLevel", func(t *testing.T) {
			carrierLevel := models.AssignmentLevelCarrier
			cags, err := repo.Search(ctx, models.CAGFilter{AssignmentLevel: &carrierLevel})
			require.NoError(t, err)
			require.Len(t, cags, 1)
			assert.Equal(t, "CAG-1", cags[0].CAGID)

			accountLevel := models.AssignmentLevelAccount
			cags, err = repo.Search(ctx, models.CAGFilter{AssignmentLevel: &accountLevel})
			require.NoError(t, err)
			require.Len(t, cags, 1)
			assert.Equal(t, "CAG-2", cags[0].CAGID)

			groupLevel := models.AssignmentLevelGroup
			cags, err = repo.Search(ctx, models.CAGFilter{AssignmentLevel: &groupLevel})
			require.NoError(t, err)
			assert.Len(t, cags, 2)
		})

		t.Run("FilterByDateWindow", func(t *testing.T) {
			past := utils.UTCNow().Add(-time.Hour)
			future := utils.UTCNow().Add(time.Hour)

			cags, err := repo.Search(ctx, models.CAGFilter{CreatedAfter: &past, CreatedBefore: &future})
			require.NoError(t, err)
			assert.Len(t, cags, 4)

			cags, err = repo.Search(ctx, models.CAGFilter{CreatedAfter: &future})
			require.NoError(t, err)
			assert.Empty(t, cags)
		})

		t.Run("NotAssignedToOUExcludesAssigned", func(t *testing.T) {
			_, err := fixtures.CreateTestClient("C001", "Acme Health")
			require.NoError(t, err)
			jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
			_, err = fixtures.CreateTestContract("C001", "CT-1", jan, nil)
			require.NoError(t, err)
			_, err = fixtures.CreateTestOperationUnit("CT-1", "OU-1", "East Region")
			require.NoError(t, err)
			_, err = fixtures.CreateTestAssignment("OU-1", carrierOnly, models.AssignmentStatusActive, models.AssignmentLevelCarrier)
			require.NoError(t, err)

			cags, err := repo.Search(ctx, models.CAGFilter{NotAssignedToOU: utils.ToPtr("OU-1")})
			require.NoError(t, err)
			assert.Len(t, cags, 3)
			for _, cag := range cags {
				assert.NotEqual(t, "CAG-1", cag.CAGID)
			}

			// A different operation unit still sees the whole catalog
			cags, err = repo.Search(ctx, models.CAGFilter{NotAssignedToOU: utils.ToPtr("OU-2")})
			require.NoError(t, err)
			assert.Len(t, cags, 4)
		})

		t.Run("ListByCAGIDs", func(t *testing.T) {
			cags, err := repo.ListByCAGIDs(ctx, []string{"CAG-1", "CAG-3", "CAG-404"})
			require.NoError(t, err)
			assert.Len(t, cags, 2)

			cags, err = repo.ListByCAGIDs(ctx, nil)
			require.NoError(t, err)
			assert.Empty(t, cags)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestOperationUnitCAGRepository(t *testing.T) {
	requireTestDB(t)
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewOperationUnitCAGRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		_, err := fixtures.CreateTestClient("C001", "Acme Health")
		require.NoError(t, err)
		jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		_, err = fixtures.CreateTestContract("C001", "CT-1", jan, nil)
		require.NoError(t, err)
		_, err = fixtures.CreateTestOperationUnit("CT-1", "OU-1", "East Region")
		require.NoError(t, err)

		var assignments []*models.OperationUnitCAG
		for i := 0; i < 5; i++ {
			cag, err := fixtures.CreateTestCAG(
				"CAG-"+string(rune('A'+i)), "CAR-1", "ACC-1", "GRP-1")
			require.NoError(t, err)
			row, err := fixtures.CreateTestAssignment("OU-1", cag, models.AssignmentStatusActive, models.AssignmentLevelGroup)
			require.NoError(t, err)
			assignments = append(assignments, row)
		}

		t.Run("PageByOperationUnit", func(t *testing.T) {
			rows, total, err := repo.PageByOperationUnit(ctx, "OU-1", 0, 2)
			require.NoError(t, err)
			assert.Equal(t, int64(5), total)
			assert.Len(t, rows, 2)

			rows, total, err = repo.PageByOperationUnit(ctx, "OU-1", 2, 2)
			require.NoError(t, err)
			assert.Equal(t, int64(5), total)
			assert.Len(t, rows, 1)

			// A window past the end is empty, not an error
			rows, total, err = repo.PageByOperationUnit(ctx, "OU-1", 9, 2)
			require.NoError(t, err)
			assert.Equal(t, int64(5), total)
			assert.Empty(t, rows)
		})

		t.Run("PageByOperationUnitUnknown", func(t *testing.T) {
			rows, total, err := repo.PageByOperationUnit(ctx, "OU-404", 0, 10)
			require.NoError(t, err)
			assert.Zero(t, total)
			assert.Empty(t, rows)
		})

		t.Run("UpdateStatus", func(t *testing.T) {
			ids := []string{assignments[0].OUCAGID, assignments[1].OUCAGID}
			affected, err := repo.UpdateStatus(ctx, ids, models.AssignmentStatusInactive)
			require.NoError(t, err)
			assert.Equal(t, int64(2), affected)

			row, err := repo.ByFilter(ctx, models.OperationUnitCAGFilter{OUCAGID: &assignments[0].OUCAGID}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, row, 1)
			assert.Equal(t, models.AssignmentStatusInactive, row[0].AssignmentStatus)
		})

		t.Run("UpdateStatusUnknownIDs", func(t *testing.T) {
			affected, err := repo.UpdateStatus(ctx, []string{"OUC-404"}, models.AssignmentStatusInactive)
			require.NoError(t, err)
			assert.Zero(t, affected)
		})

		return nil
	})
	require.NoError(t, err)
}
