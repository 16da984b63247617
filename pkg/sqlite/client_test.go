package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSchemaOnFile(t *testing.T) {
	ctx := context.Background()
	c, err := NewClient(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.InitSchema(ctx, []string{
		`CREATE TABLE IF NOT EXISTS t (k TEXT PRIMARY KEY, v INTEGER)`,
		`CREATE TABLE IF NOT EXISTS t (k TEXT PRIMARY KEY, v INTEGER)`,
	}))
	require.NoError(t, c.Health(ctx))

	_, err = c.DB().ExecContext(ctx, `INSERT INTO t (k, v) VALUES ('a', 1)`)
	require.NoError(t, err)
}

func TestInitSchemaRollsBack(t *testing.T) {
	ctx := context.Background()
	c, err := NewClient(MemoryPath)
	require.NoError(t, err)
	defer c.Close()

	err = c.InitSchema(ctx, []string{
		`CREATE TABLE ok_table (id INTEGER)`,
		`CREATE TABLE broken (`,
	})
	require.Error(t, err)

	var n int
	require.NoError(t, c.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE name = 'ok_table'`).Scan(&n))
	assert.Equal(t, 0, n)
}
