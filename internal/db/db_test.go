package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yusufkecer/bmi-tracker/internal/config"
	"github.com/yusufkecer/bmi-tracker/internal/domain"
)

func openTempDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bmi.db")
	d, err := Connect(context.Background(), string(SQLite), config.SQLiteDSN(path))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestRebind(t *testing.T) {
	query := "SELECT id FROM bmi_records WHERE user_id = ? AND date > ?"

	pg := &DB{dialect: Postgres}
	assert.Equal(t, "SELECT id FROM bmi_records WHERE user_id = $1 AND date > $2", pg.Rebind(query))

	my := &DB{dialect: MySQL}
	assert.Equal(t, query, my.Rebind(query))
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(context.Background(), "oracle", "")
	require.Error(t, err)
}

func TestConnect_UnreachableStore(t *testing.T) {
	dsn := config.SQLiteDSN(filepath.Join(t.TempDir(), "missing", "dir", "bmi.db"))
	_, err := Connect(context.Background(), string(SQLite), dsn)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConnection)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	ctx := context.Background()
	d := openTempDB(t)

	require.NoError(t, RunMigrations(ctx, d))
	require.NoError(t, RunMigrations(ctx, d))

	var count int
	require.NoError(t, d.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, len(migrations), count)

	for _, table := range []string{"users", "bmi_records"} {
		var name string
		err := d.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestConstraintClassification(t *testing.T) {
	ctx := context.Background()
	d := openTempDB(t)
	require.NoError(t, RunMigrations(ctx, d))

	_, err := d.InsertID(ctx, "INSERT INTO users (email, name) VALUES (?, ?)", "a@example.com", "A")
	require.NoError(t, err)

	_, err = d.InsertID(ctx, "INSERT INTO users (email, name) VALUES (?, ?)", "a@example.com", "B")
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsForeignKeyViolation(err))

	_, err = d.InsertID(ctx,
		"INSERT INTO bmi_records (user_id, weight, height, bmi, category, date) VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)",
		999, 70.0, 175.0, 22.86, "Normal weight",
	)
	require.Error(t, err)
	assert.True(t, IsForeignKeyViolation(err))
	assert.False(t, IsUniqueViolation(err))
}
