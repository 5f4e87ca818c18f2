package repomanager

import (
	"context"
	"database/sql"

	"github.com/flklr-dev/SecureMVPLab/internal/dbx"
	"github.com/flklr-dev/SecureMVPLab/internal/server/repositories/users"
)

// InMemoryRepositoryManager serves one shared in-memory repository whatever
// DBTX it is given. Migrations are a no-op.
type InMemoryRepositoryManager struct {
	users *users.InMemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{users: users.NewInMemoryRepository()}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.users
}
