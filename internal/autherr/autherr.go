// Package autherr defines the closed set of failure kinds the authentication
// core reports to its callers.
//
// Every error leaving services.AuthService is an *Error. Callers match with
// errors.Is against the Err* sentinels, or switch on KindOf(err).
package autherr

import (
	"errors"
	"fmt"
)

// Kind classifies an authentication failure.
type Kind int

const (
	// KindUnknown is never produced by the core; KindOf returns it for
	// errors that did not come from this package.
	KindUnknown Kind = iota
	KindInvalidInput
	KindAlreadyExists
	KindAccountNotFound
	KindIncorrectPassword
	KindInvalidCredentials
	KindInProgress
	KindNetworkOrStorageFailure
	KindConfigurationError
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindAlreadyExists:
		return "AlreadyExists"
	case KindAccountNotFound:
		return "AccountNotFound"
	case KindIncorrectPassword:
		return "IncorrectPassword"
	case KindInvalidCredentials:
		return "InvalidCredentials"
	case KindInProgress:
		return "InProgress"
	case KindNetworkOrStorageFailure:
		return "NetworkOrStorageFailure"
	case KindConfigurationError:
		return "ConfigurationError"
	default:
		return "Unknown"
	}
}

// Retryable reports whether repeating the same request may succeed
// without the user changing anything.
func (k Kind) Retryable() bool {
	return k == KindNetworkOrStorageFailure || k == KindInProgress
}

var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrAlreadyExists           = errors.New("already exists")
	ErrAccountNotFound         = errors.New("account not found")
	ErrIncorrectPassword       = errors.New("incorrect password")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInProgress              = errors.New("authentication in progress")
	ErrNetworkOrStorageFailure = errors.New("network or storage failure")
	ErrConfiguration           = errors.New("configuration error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindAlreadyExists:
		return ErrAlreadyExists
	case KindAccountNotFound:
		return ErrAccountNotFound
	case KindIncorrectPassword:
		return ErrIncorrectPassword
	case KindInvalidCredentials:
		return ErrInvalidCredentials
	case KindInProgress:
		return ErrInProgress
	case KindNetworkOrStorageFailure:
		return ErrNetworkOrStorageFailure
	case KindConfigurationError:
		return ErrConfiguration
	default:
		return nil
	}
}

// Error is the structured failure returned by the authentication core.
type Error struct {
	Kind Kind
	// Message is safe to show to the user.
	Message string
	// Feedback lists every unmet password rule for policy violations.
	Feedback []string
	// Err is the underlying cause, kept for logs only.
	Err error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// New builds an *Error with a user-facing message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with fmt formatting.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error that keeps cause for diagnostics.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// InvalidInput builds a validation failure, optionally with policy feedback.
func InvalidInput(message string, feedback ...string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message, Feedback: feedback}
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// FeedbackOf returns the password feedback carried by err, if any.
func FeedbackOf(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Feedback
	}
	return nil
}
