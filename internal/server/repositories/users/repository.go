// Package users stores gateway accounts.
package users

import (
	"context"
	"errors"

	"github.com/flklr-dev/SecureMVPLab/internal/server/models"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("user already exists")
)

type Repository interface {
	// Create inserts user and fills in its ID and CreatedAt. An existing
	// identity yields ErrDuplicate.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByIdentity(ctx context.Context, identity string) (*models.User, error)
}
