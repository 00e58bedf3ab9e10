// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dmitrijs2005/marketplace/internal/dbx"
	"github.com/dmitrijs2005/marketplace/internal/logging"
	"github.com/dmitrijs2005/marketplace/internal/server/migrations"
	"github.com/dmitrijs2005/marketplace/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// DriverName is the database/sql driver registered by pgx.
const DriverName = "pgx"

type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(DriverName); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

// pingDB is a seam for tests.
var pingDB = func(ctx context.Context, db *sql.DB) error {
	return db.PingContext(ctx)
}

// Open opens a pgx-backed *sql.DB and pings it, retrying with exponential
// backoff for up to maxWait so the server can start alongside its database.
func Open(ctx context.Context, dsn string, maxWait time.Duration, l logging.Logger) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = maxWait

	attempts := 0
	err = backoff.RetryNotify(func() error {
		attempts++
		return pingDB(ctx, db)
	}, backoff.WithContext(bo, ctx), func(err error, delay time.Duration) {
		l.Warn(ctx, "database not ready", "attempt", attempts, "retry_in", delay, "error", err)
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
