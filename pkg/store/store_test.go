package store

import (
	"context"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/voicelane/voicelane/pkg/database"
)

// setupDB opens an in-memory SQLite database with the full schema. A single
// connection keeps the in-memory database alive for the test's duration.
func setupDB(t *testing.T) *database.Client {
	t.Helper()

	pool := database.PoolConfig{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
	}
	db, err := database.Open("sqlite3", ":memory:", pool)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return db
}
