// Package repomanager vends the repositories of the gateway server for a
// given backend and runs its schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/flklr-dev/SecureMVPLab/internal/dbx"
	"github.com/flklr-dev/SecureMVPLab/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
