package metadata

import (
	"context"
	"errors"

	"github.com/flklr-dev/SecureMVPLab/internal/client/models"
)

var ErrNotFound = errors.New("metadata key not found")

// Repository stores sealed scalar entries such as the session pointer.
type Repository interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (*models.SealedRow, error)
	// Set inserts or replaces the row under row.Key.
	Set(ctx context.Context, row *models.SealedRow) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
