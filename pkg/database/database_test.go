package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("in-memory sqlite is pinned to one connection", func(t *testing.T) {
		db, err := New(WithMaxOpenConns(10))
		require.NoError(t, err)
		defer db.Close()

		assert.Equal(t, 1, db.Stats().MaxOpenConnections)
	})

	t.Run("bootstrap runs in order", func(t *testing.T) {
		var order []string
		db, err := New(
			WithBootstrap(func(ctx context.Context, db *sql.DB) error {
				order = append(order, "schema")
				_, err := db.ExecContext(ctx, `CREATE TABLE t (id INTEGER)`)
				return err
			}),
			WithBootstrap(func(ctx context.Context, db *sql.DB) error {
				order = append(order, "seed")
				_, err := db.ExecContext(ctx, `INSERT INTO t (id) VALUES (1)`)
				return err
			}),
		)
		require.NoError(t, err)
		defer db.Close()

		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n))
		assert.Equal(t, 1, n)
		assert.Equal(t, []string{"schema", "seed"}, order)
	})

	t.Run("bootstrap failure closes the pool", func(t *testing.T) {
		_, err := New(WithBootstrap(func(ctx context.Context, db *sql.DB) error {
			return errors.New("bad schema")
		}))
		assert.ErrorContains(t, err, "bad schema")
	})

	t.Run("empty options are rejected", func(t *testing.T) {
		_, err := New(WithDriver(""))
		assert.ErrorContains(t, err, "driver")

		_, err = New(WithDataSource(""))
		assert.ErrorContains(t, err, "data source")
	})

	t.Run("unknown driver exhausts retries", func(t *testing.T) {
		_, err := New(WithDriver("nope"), WithRetry(2, time.Millisecond))
		assert.ErrorContains(t, err, "after 2 attempts")
	})
}
