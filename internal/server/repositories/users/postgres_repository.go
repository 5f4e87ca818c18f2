package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/flklr-dev/SecureMVPLab/internal/dbx"
	"github.com/flklr-dev/SecureMVPLab/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (id, identity, salt, password_hash, hash_version)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at
		 `

	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Identity, user.Salt, user.PasswordHash, user.HashVersion).Scan(&user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByIdentity(ctx context.Context, identity string) (*models.User, error) {
	query :=
		`SELECT id, identity, salt, password_hash, hash_version, created_at FROM users
		 WHERE identity = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, identity).
		Scan(&user.ID, &user.Identity, &user.Salt, &user.PasswordHash, &user.HashVersion, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
