//go:build testutil
// +build testutil

// Package testdb starts a throwaway PostgreSQL with the SIAKAD schema for
// integration tests.
package testdb

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	appdb "github.com/Spok95/siakad/internal/db"
)

const image = "postgres:17-alpine"

type DBHandle struct {
	DB  *sqlx.DB
	pg  *postgres.PostgresContainer
	end context.CancelFunc
}

// Close drops the connection pool and terminates the container.
func (h *DBHandle) Close() {
	if h.DB != nil {
		_ = h.DB.Close()
	}
	if h.pg != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.pg.Terminate(ctx)
	}
	h.end()
}

// Start runs the container, waits for postgres to accept connections and
// applies the embedded goose migrations, the same way `siakad serve` does.
func Start(ctx context.Context) (_ *DBHandle, err error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	h := &DBHandle{end: cancel}
	defer func() {
		if err != nil {
			h.Close()
		}
	}()

	// postgres logs "ready" twice: once for the init run, once for the real server
	h.pg, err = postgres.RunContainer(ctx,
		tc.WithImage(image),
		postgres.WithDatabase("siakad"),
		postgres.WithUsername("siakad"),
		postgres.WithPassword("siakad"),
		tc.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute)),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres container: %w", err)
	}

	uri, err := h.pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, err
	}
	h.DB, err = sqlx.ConnectContext(ctx, "postgres", uri)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := appdb.Migrate(h.DB.DB); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return h, nil
}
