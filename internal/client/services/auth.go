// Package services contains the application services of the client.
// This file defines the authentication service: local-first login with
// remote fallback, registration, password strength feedback, and session
// housekeeping.
package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flklr-dev/SecureMVPLab/internal/autherr"
	"github.com/flklr-dev/SecureMVPLab/internal/client/client"
	"github.com/flklr-dev/SecureMVPLab/internal/client/models"
	"github.com/flklr-dev/SecureMVPLab/internal/client/store"
	"github.com/flklr-dev/SecureMVPLab/internal/common"
	"github.com/flklr-dev/SecureMVPLab/internal/logging"
	"github.com/flklr-dev/SecureMVPLab/internal/validation"
	"github.com/google/uuid"
)

// AuthService defines the authentication operations of the client.
//
// Contract:
//   - Login: verify against the local record, or ask the gateway when there
//     is none and cache the result locally.
//   - Register: validate, register remotely when a gateway is configured,
//     then persist the record and open the session.
//   - CheckPasswordStrength: pure policy query for live feedback.
//   - Logout: clear the session pointer; records are kept.
//   - Wipe: remove every record and the session pointer.
//   - DeleteAccount: verify the password and remove that identity's record.
//   - CurrentIdentity: restore the persisted session pointer.
//   - Ping / Close: gateway liveness and resource release.
//
// Every error returned is an *autherr.Error. Login and Register return the
// normalised identity on success.
type AuthService interface {
	Login(ctx context.Context, identity string, password []byte) (string, error)
	Register(ctx context.Context, identity string, password, confirm []byte) (string, error)
	CheckPasswordStrength(password []byte) Strength
	Logout(ctx context.Context) error
	Wipe(ctx context.Context) error
	DeleteAccount(ctx context.Context, identity string, password []byte) error
	CurrentIdentity(ctx context.Context) (string, error)
	Session() *Session
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// CredentialStore is the storage contract the service depends on; it is
// implemented by *store.Store.
type CredentialStore interface {
	Exists(ctx context.Context, identity string) (bool, error)
	Put(ctx context.Context, rec *models.CredentialRecord) error
	Get(ctx context.Context, identity string) (*models.CredentialRecord, error)
	Remove(ctx context.Context, identity string) error
	SetSession(ctx context.Context, identity string) error
	ClearSession(ctx context.Context) error
	CurrentSession(ctx context.Context) (string, error)
	WipeAll(ctx context.Context) error
	Close() error
}

// PasswordHasher is implemented by *cryptox.Hasher.
type PasswordHasher interface {
	GenerateSalt() ([]byte, error)
	Hash(password, salt []byte) (string, error)
	Verify(password, salt []byte, expected string, version int) (bool, error)
	Version() int
}

// InputValidator is implemented by *validation.Validator.
type InputValidator interface {
	Scheme() validation.IdentityScheme
	IsValidIdentity(s string) bool
	Normalize(s string) string
	Sanitize(s string) string
	PasswordMeetsPolicy(p []byte) bool
	PolicyFeedback(p []byte) []string
	PasswordsMatch(p, confirm []byte) bool
}

// Options tune the policy decisions of the service.
type Options struct {
	// AllowOfflineRegistrationFallback registers locally when the gateway
	// cannot be reached. The account then exists without a server-side
	// duplicate check.
	AllowOfflineRegistrationFallback bool
	// LoginMinPasswordLength rejects shorter login passwords before any
	// lookup. Zero means 1.
	LoginMinPasswordLength int
	// OnStateChange, if set, observes every session state transition.
	OnStateChange func(from, to State)
	// Now is the clock used for record timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Strength is the result of CheckPasswordStrength.
type Strength struct {
	Strong   bool
	Feedback []string
}

const (
	msgPasswordEmpty    = "Password cannot be empty"
	msgPasswordMismatch = "Passwords do not match"
	msgPasswordWeak     = "Password does not meet the requirements"
	msgIncorrect        = "Incorrect password"
	msgInProgress       = "Another authentication attempt is in progress"
	msgCancelled        = "Request was cancelled"
	msgStorage          = "Local storage error, please try again"
	msgNetwork          = "Network error, please try again"
	msgNoGateway        = "Remote server is not configured"
)

// authService is the concrete AuthService.
type authService struct {
	store     CredentialStore
	hasher    PasswordHasher
	validator InputValidator
	gateway   client.Gateway
	opts      Options
	session   *Session
	logger    logging.Logger
}

// NewAuthService wires the service. gateway may be nil for local-only mode.
func NewAuthService(
	store CredentialStore,
	hasher PasswordHasher,
	validator InputValidator,
	gateway client.Gateway,
	opts Options,
	logger logging.Logger,
) (AuthService, error) {
	if store == nil || hasher == nil || validator == nil {
		return nil, autherr.New(autherr.KindConfigurationError, "auth service requires a store, a hasher and a validator")
	}
	if opts.LoginMinPasswordLength < 0 {
		return nil, autherr.Newf(autherr.KindConfigurationError, "invalid login minimum password length %d", opts.LoginMinPasswordLength)
	}
	if opts.LoginMinPasswordLength == 0 {
		opts.LoginMinPasswordLength = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &authService{
		store:     store,
		hasher:    hasher,
		validator: validator,
		gateway:   gateway,
		opts:      opts,
		session:   newSession(opts.OnStateChange),
		logger:    logger.With("component", "auth"),
	}, nil
}

func (a *authService) Session() *Session {
	return a.session
}

func (a *authService) label() string {
	return a.validator.Scheme().Label()
}

func (a *authService) labelTitle() string {
	l := a.label()
	return strings.ToUpper(l[:1]) + l[1:]
}

// Login authenticates identity with password.
func (a *authService) Login(ctx context.Context, identity string, password []byte) (id string, err error) {
	if !a.session.begin() {
		return "", autherr.New(autherr.KindInProgress, msgInProgress)
	}
	defer func() { a.session.finish(err == nil) }()

	id, err = a.validateLogin(identity, password)
	if err != nil {
		return "", err
	}

	a.session.authenticate()

	rec, err := a.store.Get(ctx, id)
	switch {
	case err == nil:
		return a.loginLocal(ctx, rec, password)
	case errors.Is(err, store.ErrNotFound):
		return a.loginRemote(ctx, id, password)
	default:
		return "", a.storageFailure(ctx, "lookup credential", err)
	}
}

func (a *authService) validateLogin(identity string, password []byte) (string, error) {
	id := a.validator.Normalize(identity)
	if id == "" {
		return "", autherr.InvalidInput(a.labelTitle() + " cannot be empty")
	}
	if !a.validator.IsValidIdentity(id) {
		return "", autherr.InvalidInput(fmt.Sprintf("Invalid %s format", a.label()))
	}
	if len(password) == 0 {
		return "", autherr.InvalidInput(msgPasswordEmpty)
	}
	if len([]rune(string(password))) < a.opts.LoginMinPasswordLength {
		return "", autherr.InvalidInput(fmt.Sprintf("Password must be at least %d characters long", a.opts.LoginMinPasswordLength))
	}
	return a.validator.Sanitize(id), nil
}

func (a *authService) loginLocal(ctx context.Context, rec *models.CredentialRecord, password []byte) (string, error) {
	ok, err := a.verify(rec, password)
	if err != nil {
		return "", err
	}
	if !ok {
		a.logger.Info(ctx, "login rejected", "identity", rec.Identity, "path", "local")
		return "", autherr.New(autherr.KindIncorrectPassword, msgIncorrect)
	}

	if err := a.openSession(ctx, rec.Identity, ""); err != nil {
		return "", err
	}
	a.logger.Info(ctx, "login succeeded", "identity", rec.Identity, "path", "local")
	return rec.Identity, nil
}

func (a *authService) verify(rec *models.CredentialRecord, password []byte) (bool, error) {
	salt, err := base64.StdEncoding.DecodeString(rec.Salt)
	if err != nil {
		return false, autherr.Wrap(autherr.KindNetworkOrStorageFailure, msgStorage, fmt.Errorf("%w: salt: %v", store.ErrCorrupted, err))
	}
	ok, err := a.hasher.Verify(password, salt, rec.PasswordHash, rec.HashVersion)
	if err != nil {
		return false, a.hasherFailure(err)
	}
	return ok, nil
}

func (a *authService) loginRemote(ctx context.Context, id string, password []byte) (string, error) {
	if a.gateway == nil {
		a.logger.Info(ctx, "login rejected", "identity", id, "path", "local", "reason", "not_found")
		return "", autherr.Newf(autherr.KindAccountNotFound, "No account found for this %s", a.label())
	}

	res, err := a.gateway.Login(ctx, id, password)
	if err != nil {
		return "", a.remoteFailure(ctx, "remote login", err)
	}
	if !res.Success {
		a.logger.Info(ctx, "login rejected", "identity", id, "path", "remote", "reason", string(res.Reason))
		return "", a.loginRejection(res)
	}

	// A cancelled attempt must not leave a record behind.
	if err := ctx.Err(); err != nil {
		return "", autherr.Wrap(autherr.KindNetworkOrStorageFailure, msgCancelled, err)
	}

	rec, err := a.newRecord(id, password)
	if err != nil {
		return "", err
	}
	if err := a.store.Put(ctx, rec); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return "", autherr.Wrap(autherr.KindNetworkOrStorageFailure, "Account changed during login, please try again", err)
		}
		return "", a.storageFailure(ctx, "cache remote credential", err)
	}

	if err := a.openSession(ctx, id, res.AccessToken); err != nil {
		return "", err
	}
	a.logger.Info(ctx, "login succeeded", "identity", id, "path", "remote")
	return id, nil
}

func (a *authService) loginRejection(res *client.LoginResult) error {
	msg := res.Message
	switch res.Reason {
	case client.ReasonAccountNotFound:
		if msg == "" {
			msg = fmt.Sprintf("No account found for this %s", a.label())
		}
		return autherr.New(autherr.KindAccountNotFound, msg)
	case client.ReasonInvalidInput:
		if msg == "" {
			msg = fmt.Sprintf("Invalid %s or password", a.label())
		}
		return autherr.InvalidInput(msg)
	default:
		if msg == "" {
			msg = "Invalid credentials"
		}
		return autherr.New(autherr.KindInvalidCredentials, msg)
	}
}

// Register creates an account for identity.
func (a *authService) Register(ctx context.Context, identity string, password, confirm []byte) (id string, err error) {
	if !a.session.begin() {
		return "", autherr.New(autherr.KindInProgress, msgInProgress)
	}
	defer func() { a.session.finish(err == nil) }()

	id, err = a.validateRegister(identity, password, confirm)
	if err != nil {
		return "", err
	}

	a.session.authenticate()

	exists, err := a.store.Exists(ctx, id)
	if err != nil {
		return "", a.storageFailure(ctx, "check credential", err)
	}
	if exists {
		return "", a.alreadyExists("")
	}

	if a.gateway != nil {
		if err := a.registerRemote(ctx, id, password); err != nil {
			return "", err
		}
	}

	if err := ctx.Err(); err != nil {
		return "", autherr.Wrap(autherr.KindNetworkOrStorageFailure, msgCancelled, err)
	}

	rec, err := a.newRecord(id, password)
	if err != nil {
		return "", err
	}
	if err := a.store.Put(ctx, rec); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return "", a.alreadyExists("")
		}
		return "", a.storageFailure(ctx, "store credential", err)
	}

	if err := a.openSession(ctx, id, ""); err != nil {
		return "", err
	}
	a.logger.Info(ctx, "registration succeeded", "identity", id)
	return id, nil
}

func (a *authService) validateRegister(identity string, password, confirm []byte) (string, error) {
	id := a.validator.Normalize(identity)
	if id == "" {
		return "", autherr.InvalidInput(a.labelTitle() + " cannot be empty")
	}
	if !a.validator.IsValidIdentity(id) {
		return "", autherr.InvalidInput(a.invalidIdentityMessage())
	}
	if len(password) == 0 {
		return "", autherr.InvalidInput(msgPasswordEmpty)
	}
	if !a.validator.PasswordMeetsPolicy(password) {
		return "", autherr.InvalidInput(msgPasswordWeak, a.validator.PolicyFeedback(password)...)
	}
	if !a.validator.PasswordsMatch(password, confirm) {
		return "", autherr.InvalidInput(msgPasswordMismatch)
	}
	return a.validator.Sanitize(id), nil
}

func (a *authService) invalidIdentityMessage() string {
	if a.validator.Scheme() == validation.SchemeUsername {
		return "Username must be 4 to 20 characters: letters, digits, '.', '_' or '-'"
	}
	return "Invalid email format"
}

func (a *authService) registerRemote(ctx context.Context, id string, password []byte) error {
	res, err := a.gateway.Register(ctx, id, password)
	if err != nil {
		if ctx.Err() == nil && a.opts.AllowOfflineRegistrationFallback {
			a.logger.Warn(ctx, "gateway unreachable, registering locally only",
				"identity", id, "error", err)
			return nil
		}
		return a.remoteFailure(ctx, "remote registration", err)
	}
	if res.Success {
		return nil
	}

	a.logger.Info(ctx, "registration rejected", "identity", id, "reason", string(res.Reason))
	switch res.Reason {
	case client.ReasonAlreadyExists:
		return a.alreadyExists(res.Message)
	default:
		msg := res.Message
		if msg == "" {
			msg = "Registration was rejected by the server"
		}
		return autherr.InvalidInput(msg)
	}
}

func (a *authService) alreadyExists(msg string) error {
	if msg == "" {
		msg = fmt.Sprintf("An account with this %s already exists", a.label())
	}
	return autherr.New(autherr.KindAlreadyExists, msg)
}

func (a *authService) newRecord(id string, password []byte) (*models.CredentialRecord, error) {
	salt, err := a.hasher.GenerateSalt()
	if err != nil {
		return nil, autherr.Wrap(autherr.KindNetworkOrStorageFailure, msgStorage, err)
	}
	defer common.WipeByteArray(salt)

	hash, err := a.hasher.Hash(password, salt)
	if err != nil {
		return nil, a.hasherFailure(err)
	}

	return &models.CredentialRecord{
		ID:           uuid.NewString(),
		Identity:     id,
		PasswordHash: hash,
		Salt:         base64.StdEncoding.EncodeToString(salt),
		HashVersion:  a.hasher.Version(),
		CreatedAt:    a.opts.Now().UTC(),
	}, nil
}

func (a *authService) openSession(ctx context.Context, id, accessToken string) error {
	if err := a.store.SetSession(ctx, id); err != nil {
		return a.storageFailure(ctx, "set session", err)
	}
	a.session.set(id, accessToken)
	return nil
}

// CheckPasswordStrength reports policy feedback without touching state.
func (a *authService) CheckPasswordStrength(password []byte) Strength {
	if len(password) == 0 {
		return Strength{Strong: false, Feedback: []string{msgPasswordEmpty}}
	}
	feedback := a.validator.PolicyFeedback(password)
	return Strength{Strong: len(feedback) == 0, Feedback: feedback}
}

// Logout clears the session pointer. Records stay in the store.
func (a *authService) Logout(ctx context.Context) error {
	return a.housekeeping(ctx, "logout", func() error {
		if err := a.store.ClearSession(ctx); err != nil {
			return a.storageFailure(ctx, "clear session", err)
		}
		a.session.clear()
		return nil
	})
}

// Wipe removes every record and the session pointer.
func (a *authService) Wipe(ctx context.Context) error {
	return a.housekeeping(ctx, "wipe", func() error {
		if err := a.store.WipeAll(ctx); err != nil {
			return a.storageFailure(ctx, "wipe store", err)
		}
		a.session.clear()
		return nil
	})
}

// housekeeping runs fn while no authentication attempt is in flight.
func (a *authService) housekeeping(ctx context.Context, op string, fn func() error) error {
	if !a.session.transition(StateIdle, StateAuthenticating) {
		return autherr.New(autherr.KindInProgress, msgInProgress)
	}
	defer a.session.transition(StateAuthenticating, StateIdle)

	if err := fn(); err != nil {
		return err
	}
	a.logger.Info(ctx, op+" completed")
	return nil
}

// DeleteAccount removes the local record of identity after verifying the
// password. The session is cleared if it pointed at that identity.
func (a *authService) DeleteAccount(ctx context.Context, identity string, password []byte) (err error) {
	if !a.session.begin() {
		return autherr.New(autherr.KindInProgress, msgInProgress)
	}
	defer func() { a.session.finish(err == nil) }()

	id, err := a.validateLogin(identity, password)
	if err != nil {
		return err
	}

	a.session.authenticate()

	rec, err := a.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return autherr.Newf(autherr.KindAccountNotFound, "No account found for this %s", a.label())
	}
	if err != nil {
		return a.storageFailure(ctx, "lookup credential", err)
	}

	ok, err := a.verify(rec, password)
	if err != nil {
		return err
	}
	if !ok {
		return autherr.New(autherr.KindIncorrectPassword, msgIncorrect)
	}

	if err := a.store.Remove(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return a.storageFailure(ctx, "remove credential", err)
	}
	if a.session.Identity() == id {
		a.session.clear()
	}

	a.logger.Info(ctx, "account deleted", "identity", id)
	return nil
}

// CurrentIdentity loads the persisted session pointer into the Session.
func (a *authService) CurrentIdentity(ctx context.Context) (string, error) {
	id, err := a.store.CurrentSession(ctx)
	if err != nil {
		return "", a.storageFailure(ctx, "read session", err)
	}
	if a.session.Identity() != id {
		a.session.set(id, "")
	}
	return id, nil
}

// Ping proxies a liveness check to the gateway.
func (a *authService) Ping(ctx context.Context) error {
	if a.gateway == nil {
		return autherr.Wrap(autherr.KindNetworkOrStorageFailure, msgNoGateway, client.ErrNotConfigured)
	}
	if err := a.gateway.Ping(ctx); err != nil {
		return a.remoteFailure(ctx, "ping", err)
	}
	return nil
}

// Close releases the gateway connection and the store.
func (a *authService) Close(ctx context.Context) error {
	var errs []error
	if a.gateway != nil {
		errs = append(errs, a.gateway.Close())
	}
	errs = append(errs, a.store.Close())
	if err := errors.Join(errs...); err != nil {
		return autherr.Wrap(autherr.KindNetworkOrStorageFailure, "Failed to release resources", err)
	}
	return nil
}

func (a *authService) storageFailure(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return autherr.Wrap(autherr.KindNetworkOrStorageFailure, msgCancelled, ctxErr)
	}
	a.logger.Error(ctx, "storage failure", "op", op, "error", err)
	return autherr.Wrap(autherr.KindNetworkOrStorageFailure, msgStorage, fmt.Errorf("%s: %w", op, err))
}

func (a *authService) remoteFailure(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return autherr.Wrap(autherr.KindNetworkOrStorageFailure, msgCancelled, ctxErr)
	}
	if errors.Is(err, context.Canceled) {
		return autherr.Wrap(autherr.KindNetworkOrStorageFailure, msgCancelled, err)
	}
	a.logger.Warn(ctx, "gateway failure", "op", op, "error", err)
	return autherr.Wrap(autherr.KindNetworkOrStorageFailure, msgNetwork, fmt.Errorf("%s: %w", op, err))
}

func (a *authService) hasherFailure(err error) error {
	if errors.Is(err, autherr.ErrConfiguration) {
		return autherr.Wrap(autherr.KindConfigurationError, "Password hashing is misconfigured", err)
	}
	return autherr.Wrap(autherr.KindNetworkOrStorageFailure, msgStorage, err)
}
