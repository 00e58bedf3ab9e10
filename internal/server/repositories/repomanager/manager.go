package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/marketplace/internal/dbx"
	"github.com/dmitrijs2005/marketplace/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
