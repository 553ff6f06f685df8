package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promatch-inc/promatch-engine/pkg/testhelpers"
)

// TestSchema_MarketplaceTables verifies the migrations create the tables the
// lifecycle engine depends on.
func TestSchema_MarketplaceTables(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	ctx := context.Background()

	for _, table := range []string{"users", "projects", "proposals", "contracts"} {
		var exists bool
		err := testDB.DB.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_name = $1
			)
		`, table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "Table %s should exist", table)
	}
}

// TestSchema_ProposalUniqueIndexes verifies the partial unique indexes that
// back the duplicate-proposal and single-acceptance rules at the storage
// level, behind the service checks.
func TestSchema_ProposalUniqueIndexes(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	ctx := context.Background()

	indexes := map[string]string{
		"uq_proposals_active_per_business": "withdrawn",
		"uq_proposals_single_accepted":     "accepted",
	}

	for indexName, expectedSubstring := range indexes {
		var indexDef string
		err := testDB.DB.QueryRow(ctx, `
			SELECT indexdef
			FROM pg_indexes
			WHERE tablename = 'proposals'
			AND indexname = $1
		`, indexName).Scan(&indexDef)
		require.NoError(t, err, "Index %s should exist", indexName)
		assert.Contains(t, indexDef, "UNIQUE", "Index %s should be unique", indexName)
		assert.Contains(t, indexDef, expectedSubstring,
			"Index %s should be partial on proposal status", indexName)
	}
}

// TestSchema_ContractConstraints verifies one contract per proposal and at
// most one live contract per project.
func TestSchema_ContractConstraints(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	ctx := context.Background()

	var liveIndexDef string
	err := testDB.DB.QueryRow(ctx, `
		SELECT indexdef
		FROM pg_indexes
		WHERE tablename = 'contracts'
		AND indexname = 'uq_contracts_live_per_project'
	`).Scan(&liveIndexDef)
	require.NoError(t, err, "Live-contract index should exist")
	assert.Contains(t, liveIndexDef, "UNIQUE")

	var proposalUnique bool
	err = testDB.DB.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM pg_indexes
			WHERE tablename = 'contracts'
			AND indexdef LIKE '%UNIQUE%proposal_id%'
		)
	`).Scan(&proposalUnique)
	require.NoError(t, err)
	assert.True(t, proposalUnique, "proposal_id should be unique on contracts")
}

// TestSchema_StatusChecks verifies the status CHECK constraints reject values
// outside the state machines.
func TestSchema_StatusChecks(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	ctx := context.Background()

	checks := map[string][]string{
		"projects":  {"open", "in_progress", "completed", "cancelled"},
		"proposals": {"pending", "accepted", "rejected", "withdrawn"},
		"contracts": {"pending", "active", "completed", "cancelled"},
	}

	for table, statuses := range checks {
		var checkClause string
		err := testDB.DB.QueryRow(ctx, `
			SELECT pg_get_constraintdef(oid)
			FROM pg_constraint
			WHERE conrelid = $1::regclass
			AND contype = 'c'
			AND pg_get_constraintdef(oid) LIKE '%status%'
		`, table).Scan(&checkClause)
		require.NoError(t, err, "Table %s should have a status CHECK", table)
		for _, status := range statuses {
			assert.Contains(t, checkClause, status,
				"Table %s status CHECK should allow %s", table, status)
		}
	}
}

// TestSchema_BudgetRangeCheck verifies the budget constraint on projects.
func TestSchema_BudgetRangeCheck(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	ctx := context.Background()

	var exists bool
	err := testDB.DB.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM pg_constraint
			WHERE conrelid = 'projects'::regclass
			AND contype = 'c'
			AND pg_get_constraintdef(oid) LIKE '%budget%'
		)
	`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "projects should have a budget range CHECK")
}
