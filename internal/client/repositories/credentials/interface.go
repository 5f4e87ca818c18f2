package credentials

import (
	"context"
	"errors"

	"github.com/flklr-dev/SecureMVPLab/internal/client/models"
)

var (
	ErrNotFound  = errors.New("credential not found")
	ErrDuplicate = errors.New("credential already exists")
)

// Repository describes storage operations on sealed credential rows.
type Repository interface {
	// Insert adds a row and fails with ErrDuplicate if the lookup key is
	// taken. An existing row is never overwritten.
	Insert(ctx context.Context, row *models.SealedRow) error

	// Get returns the row for lookupKey or ErrNotFound.
	Get(ctx context.Context, lookupKey string) (*models.SealedRow, error)

	Exists(ctx context.Context, lookupKey string) (bool, error)

	// Delete removes the row and reports whether one was there.
	Delete(ctx context.Context, lookupKey string) (bool, error)

	// Clear removes every row.
	Clear(ctx context.Context) error

	Count(ctx context.Context) (int, error)
}
