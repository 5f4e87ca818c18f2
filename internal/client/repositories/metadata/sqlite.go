package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/flklr-dev/SecureMVPLab/internal/client/models"
	"github.com/flklr-dev/SecureMVPLab/internal/dbx"
)

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) (*models.SealedRow, error) {
	row := &models.SealedRow{Key: key}
	err := r.db.QueryRowContext(ctx, `SELECT nonce, value FROM metadata WHERE key = ?`, key).
		Scan(&row.Nonce, &row.Ciphertext)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return row, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, row *models.SealedRow) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, nonce, value) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET nonce = excluded.nonce, value = excluded.value
	`, row.Key, row.Nonce, row.Ciphertext)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", row.Key, err)
	}
	return nil
}

// Delete is idempotent.
func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata`)
	if err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	return nil
}
