// Package store is the encrypted credential store of the client.
//
// Records and the session pointer are sealed with AES-256-GCM under
// subkeys of the device key and kept in SQLite. Rows are addressed by a
// blind HMAC lookup key, so the database never holds an identity, hash or
// salt in clear. Writes for one identity are serialised and run in a
// single transaction.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/flklr-dev/SecureMVPLab/internal/client/models"
	"github.com/flklr-dev/SecureMVPLab/internal/client/repositories/credentials"
	"github.com/flklr-dev/SecureMVPLab/internal/client/repositories/metadata"
	"github.com/flklr-dev/SecureMVPLab/internal/cryptox"
	"github.com/flklr-dev/SecureMVPLab/internal/dbx"
	"github.com/flklr-dev/SecureMVPLab/internal/logging"
)

var (
	ErrAlreadyExists = errors.New("credential already exists")
	ErrNotFound      = errors.New("credential not found")
	// ErrCorrupted is returned when a row cannot be opened with the device
	// key or does not belong to the identity it is filed under.
	ErrCorrupted = errors.New("credential store data corrupted")
	ErrClosed    = errors.New("credential store closed")
)

const sessionKey = "current_session"

type sessionPointer struct {
	Identity string `json:"identity"`
}

// Store implements the credential store contract over SQLite.
// It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	keys   *cryptox.StoreKeys
	logger logging.Logger

	// wipe holds the exclusive side while every row is removed;
	// single-identity writes hold the shared side plus the identity lock.
	wipe  sync.RWMutex
	locks *keyedMutex

	closeOnce sync.Once
	closed    chan struct{}
}

// New wraps an initialised database (see client.InitDatabase). Only subkeys
// of deviceKey are kept; the caller should wipe deviceKey afterwards. The
// store takes ownership of db and closes it in Close.
func New(db *sql.DB, deviceKey []byte, logger logging.Logger) (*Store, error) {
	keys, err := cryptox.DeriveStoreKeys(deviceKey)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{
		db:     db,
		keys:   keys,
		logger: logger.With("component", "store"),
		locks:  newKeyedMutex(),
		closed: make(chan struct{}),
	}, nil
}

func (s *Store) lookupKey(identity string) string {
	return cryptox.LookupKey(s.keys.IndexKey, identity)
}

func (s *Store) check(ctx context.Context) error {
	select {
	case <-s.closed:
		return ErrClosed
	default:
	}
	return ctx.Err()
}

// Exists reports whether a record is filed under identity.
func (s *Store) Exists(ctx context.Context, identity string) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}
	s.wipe.RLock()
	defer s.wipe.RUnlock()
	return credentials.NewSQLiteRepository(s.db).Exists(ctx, s.lookupKey(identity))
}

// Put stores a new record. It never overwrites: an existing identity
// yields ErrAlreadyExists and leaves the stored record untouched.
func (s *Store) Put(ctx context.Context, rec *models.CredentialRecord) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	lk := s.lookupKey(rec.Identity)
	ciphertext, nonce, err := cryptox.EncryptEntry(rec, s.keys.RecordKey, []byte(lk))
	if err != nil {
		return fmt.Errorf("failed to seal credential: %w", err)
	}

	s.wipe.RLock()
	defer s.wipe.RUnlock()
	unlock := s.locks.Lock(lk)
	defer unlock()

	err = dbx.WithTxRetry(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return credentials.NewSQLiteRepository(tx).Insert(ctx, &models.SealedRow{Key: lk, Nonce: nonce, Ciphertext: ciphertext})
	})
	if errors.Is(err, credentials.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if err != nil {
		return err
	}

	s.logger.Debug(ctx, "credential stored", "identity", rec.Identity)
	return nil
}

// Get returns the record filed under identity or ErrNotFound.
func (s *Store) Get(ctx context.Context, identity string) (*models.CredentialRecord, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	s.wipe.RLock()
	defer s.wipe.RUnlock()

	lk := s.lookupKey(identity)
	row, err := credentials.NewSQLiteRepository(s.db).Get(ctx, lk)
	if errors.Is(err, credentials.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec models.CredentialRecord
	if err := cryptox.DecryptEntry(row.Ciphertext, row.Nonce, s.keys.RecordKey, []byte(lk), &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	if rec.Identity != identity {
		return nil, fmt.Errorf("%w: identity mismatch", ErrCorrupted)
	}
	return &rec, nil
}

// Remove deletes the record of identity and, in the same transaction,
// clears the session pointer if it names identity. ErrNotFound is
// returned when there was nothing to remove.
func (s *Store) Remove(ctx context.Context, identity string) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	lk := s.lookupKey(identity)

	s.wipe.RLock()
	defer s.wipe.RUnlock()
	unlock := s.locks.Lock(lk)
	defer unlock()

	var removed bool
	err := dbx.WithTxRetry(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		removed, err = credentials.NewSQLiteRepository(tx).Delete(ctx, lk)
		if err != nil || !removed {
			return err
		}

		current, err := s.readSession(ctx, tx)
		if err != nil && !errors.Is(err, ErrCorrupted) {
			return err
		}
		if current == identity || errors.Is(err, ErrCorrupted) {
			return metadata.NewSQLiteRepository(tx).Delete(ctx, sessionKey)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}

	s.logger.Debug(ctx, "credential removed", "identity", identity)
	return nil
}

// SetSession points the session at identity.
func (s *Store) SetSession(ctx context.Context, identity string) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	ciphertext, nonce, err := cryptox.EncryptEntry(sessionPointer{Identity: identity}, s.keys.RecordKey, []byte(sessionKey))
	if err != nil {
		return fmt.Errorf("failed to seal session: %w", err)
	}

	s.wipe.RLock()
	defer s.wipe.RUnlock()

	return dbx.WithTxRetry(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Set(ctx, &models.SealedRow{Key: sessionKey, Nonce: nonce, Ciphertext: ciphertext})
	})
}

// ClearSession removes the session pointer; records are kept.
func (s *Store) ClearSession(ctx context.Context) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	s.wipe.RLock()
	defer s.wipe.RUnlock()

	return dbx.WithTxRetry(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx, sessionKey)
	})
}

// CurrentSession returns the identity of the session pointer, or "" when
// no session is set.
func (s *Store) CurrentSession(ctx context.Context) (string, error) {
	if err := s.check(ctx); err != nil {
		return "", err
	}
	s.wipe.RLock()
	defer s.wipe.RUnlock()
	return s.readSession(ctx, s.db)
}

func (s *Store) readSession(ctx context.Context, db dbx.DBTX) (string, error) {
	row, err := metadata.NewSQLiteRepository(db).Get(ctx, sessionKey)
	if errors.Is(err, metadata.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	var p sessionPointer
	if err := cryptox.DecryptEntry(row.Ciphertext, row.Nonce, s.keys.RecordKey, []byte(sessionKey), &p); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	return p.Identity, nil
}

// WipeAll removes every record and the session pointer in one transaction.
func (s *Store) WipeAll(ctx context.Context) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	s.wipe.Lock()
	defer s.wipe.Unlock()

	err := dbx.WithTxRetry(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := credentials.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		return metadata.NewSQLiteRepository(tx).Clear(ctx)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "credential store wiped")
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	s.wipe.RLock()
	defer s.wipe.RUnlock()
	return credentials.NewSQLiteRepository(s.db).Count(ctx)
}

// Close wipes the subkeys from memory and closes the database. Calls after
// the first are no-ops.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		s.wipe.Lock()
		defer s.wipe.Unlock()
		s.keys.Wipe()
		err = s.db.Close()
	})
	return err
}
