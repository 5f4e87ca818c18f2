package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/flklr-dev/SecureMVPLab/internal/client/models"
	"github.com/flklr-dev/SecureMVPLab/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, row *models.SealedRow) error {
	query := `INSERT INTO credentials (lookup_key, nonce, ciphertext) VALUES (?, ?, ?)
			ON CONFLICT(lookup_key) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, row.Key, row.Nonce, row.Ciphertext)
	if err != nil {
		return fmt.Errorf("failed to insert credential: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, lookupKey string) (*models.SealedRow, error) {
	query := `SELECT nonce, ciphertext FROM credentials WHERE lookup_key = ?`
	row := &models.SealedRow{Key: lookupKey}
	err := r.db.QueryRowContext(ctx, query, lookupKey).Scan(&row.Nonce, &row.Ciphertext)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return row, nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, lookupKey string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM credentials WHERE lookup_key = ?`, lookupKey).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check credential: %w", err)
	}
	return true, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, lookupKey string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE lookup_key = ?`, lookupKey)
	if err != nil {
		return false, fmt.Errorf("failed to delete credential: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra > 0, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count credentials: %w", err)
	}
	return n, nil
}
