package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup wraps a migrated connection to the integration database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies the schema. Tests
// are skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn, database.PoolOptions{MaxConns: 20, MinConns: 1})
	require.NoError(t, err)

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, db.Migrate(context.Background()))
	require.NoError(t, setup.TruncateAllTables(context.Background()))

	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes all engine data but keeps the seeded policy.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"attendance_records",
		"holidays",
		"employees",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	_, err = tx.Exec(ctx, `DELETE FROM work_hours_policies WHERE id <> '0190a000-0000-7000-8000-000000000001'`)
	if err != nil {
		return fmt.Errorf("failed to reset policies: %w", err)
	}

	return tx.Commit(ctx)
}

// CreateEmployee inserts an employee row and returns its id.
func (t *TestDatabaseSetup) CreateEmployee(tb testing.TB, id, name, role, status string, dailyRate decimal.Decimal) string {
	tb.Helper()

	_, err := t.DB.Exec(context.Background(), `
		INSERT INTO employees (id, full_name, role, employment_status, daily_rate)
		VALUES ($1, $2, $3, $4, $5)
	`, id, name, role, status, dailyRate)
	require.NoError(tb, err)
	return id
}

func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
