package users

import (
	"context"
	"sync"
	"time"

	"github.com/flklr-dev/SecureMVPLab/internal/server/models"
	"github.com/google/uuid"
)

// InMemoryRepository keeps users in a map. It is used when no database DSN
// is configured and in tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
	now   func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[string]models.User), now: time.Now}
}

func (r *InMemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Identity]; ok {
		return nil, ErrDuplicate
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = r.now().UTC()

	stored := *user
	stored.Salt = append([]byte(nil), user.Salt...)
	r.users[user.Identity] = stored

	return user, nil
}

func (r *InMemoryRepository) GetByIdentity(ctx context.Context, identity string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[identity]
	if !ok {
		return nil, ErrNotFound
	}
	u.Salt = append([]byte(nil), u.Salt...)
	return &u, nil
}
