// Package services contains server-side business logic. This file implements
// UserService, which handles registration and login and mints access tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/flklr-dev/SecureMVPLab/internal/autherr"
	"github.com/flklr-dev/SecureMVPLab/internal/common"
	"github.com/flklr-dev/SecureMVPLab/internal/cryptox"
	"github.com/flklr-dev/SecureMVPLab/internal/logging"
	"github.com/flklr-dev/SecureMVPLab/internal/server/auth"
	"github.com/flklr-dev/SecureMVPLab/internal/server/config"
	"github.com/flklr-dev/SecureMVPLab/internal/server/models"
	"github.com/flklr-dev/SecureMVPLab/internal/server/repositories/repomanager"
	"github.com/flklr-dev/SecureMVPLab/internal/server/repositories/users"
	"github.com/flklr-dev/SecureMVPLab/internal/validation"
)

// LoginResult is a successful login.
type LoginResult struct {
	UserID      string
	Identity    string
	AccessToken string
}

// UserService provides authentication-related operations:
// - Register: validate and create users
// - Login: verify credentials and mint an access token
//
// Errors are *autherr.Error values: KindInvalidInput, KindAlreadyExists,
// KindAccountNotFound and KindInvalidCredentials are answers for the
// caller, anything else is an internal failure.
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	hasher                      *cryptox.Hasher
	validator                   *validation.Validator
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	logger                      logging.Logger

	// dummy credentials verified for unknown identities so that both
	// outcomes cost one key derivation.
	dummySalt []byte
	dummyHash string
}

// NewUserService constructs a UserService using repositories and server config.
// db may be nil with an in-memory RepositoryManager.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher *cryptox.Hasher,
	validator *validation.Validator, cfg *config.Config, logger logging.Logger) (*UserService, error) {

	if logger == nil {
		logger = logging.Nop()
	}

	salt, err := hasher.GenerateSalt()
	if err != nil {
		return nil, err
	}
	hash, err := hasher.Hash(common.GenerateRandByteArray(16), salt)
	if err != nil {
		return nil, err
	}

	return &UserService{
		db:                          db,
		repomanager:                 m,
		hasher:                      hasher,
		validator:                   validator,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		logger:                      logger.With("module", "user_service"),
		dummySalt:                   salt,
		dummyHash:                   hash,
	}, nil
}

func (s *UserService) users() users.Repository {
	return s.repomanager.Users(s.db)
}

func (s *UserService) normalize(identity string) (string, error) {
	id := s.validator.Normalize(identity)
	if id == "" {
		return "", autherr.InvalidInput("Identity cannot be empty")
	}
	if !s.validator.IsValidIdentity(id) {
		return "", autherr.InvalidInput(fmt.Sprintf("Invalid %s format", s.validator.Scheme().Label()))
	}
	return s.validator.Sanitize(id), nil
}

// Register creates a user after applying the same identity and password
// rules as the client.
func (s *UserService) Register(ctx context.Context, identity string, password []byte) (*models.User, error) {
	id, err := s.normalize(identity)
	if err != nil {
		return nil, err
	}
	if !s.validator.PasswordMeetsPolicy(password) {
		return nil, autherr.InvalidInput("Password does not meet the requirements", s.validator.PolicyFeedback(password)...)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, autherr.Wrap(autherr.KindNetworkOrStorageFailure, "internal error", err)
	}
	hash, err := s.hasher.Hash(password, salt)
	if err != nil {
		return nil, autherr.Wrap(autherr.KindConfigurationError, "internal error", err)
	}

	user, err := s.users().Create(ctx, &models.User{
		Identity:     id,
		Salt:         salt,
		PasswordHash: hash,
		HashVersion:  s.hasher.Version(),
	})
	if err != nil {
		if errors.Is(err, users.ErrDuplicate) {
			return nil, autherr.New(autherr.KindAlreadyExists, "An account with this identity already exists")
		}
		return nil, autherr.Wrap(autherr.KindNetworkOrStorageFailure, "internal error", fmt.Errorf("error creating user: %w", err))
	}

	s.logger.Info(ctx, "user registered", "identity", id, "user_id", user.ID)
	return user, nil
}

// Login verifies identity and password and mints an access token.
func (s *UserService) Login(ctx context.Context, identity string, password []byte) (*LoginResult, error) {
	id, err := s.normalize(identity)
	if err != nil {
		return nil, err
	}

	user, err := s.users().GetByIdentity(ctx, id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			_, _ = s.hasher.Verify(password, s.dummySalt, s.dummyHash, s.hasher.Version())
			return nil, autherr.New(autherr.KindAccountNotFound, "No account found for this identity")
		}
		return nil, autherr.Wrap(autherr.KindNetworkOrStorageFailure, "internal error", err)
	}

	ok, err := s.hasher.Verify(password, user.Salt, user.PasswordHash, user.HashVersion)
	if err != nil {
		return nil, autherr.Wrap(autherr.KindConfigurationError, "internal error", err)
	}
	if !ok {
		s.logger.Info(ctx, "login rejected", "identity", id)
		return nil, autherr.New(autherr.KindInvalidCredentials, "Invalid credentials")
	}

	token, err := auth.GenerateToken(user.ID, user.Identity, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, autherr.Wrap(autherr.KindNetworkOrStorageFailure, "internal error", err)
	}

	return &LoginResult{UserID: user.ID, Identity: user.Identity, AccessToken: token}, nil
}

// Subject returns the identity carried by a valid access token.
func (s *UserService) Subject(accessToken string) (string, error) {
	claims, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		return "", err
	}
	return claims.Identity, nil
}
