package client

import (
	"context"
)

// RejectReason is the gateway's structured classification of a refused
// login or registration.
type RejectReason string

const (
	ReasonNone               RejectReason = ""
	ReasonAccountNotFound    RejectReason = "account_not_found"
	ReasonInvalidCredentials RejectReason = "invalid_credentials"
	ReasonAlreadyExists      RejectReason = "already_exists"
	ReasonInvalidInput       RejectReason = "invalid_input"
)

// LoginResult is the gateway's answer to a login. A refusal is a result
// with Success false and a Reason, not an error.
type LoginResult struct {
	Success     bool
	Message     string
	Identity    string
	AccessToken string
	Reason      RejectReason
}

type RegisterResult struct {
	Success bool
	Message string
	Reason  RejectReason
}

// Gateway is the remote auth service consulted when local data is not
// enough. Transport failures are returned as errors mapped to
// ErrUnavailable, ErrUnauthorized or a wrapped rpc error.
type Gateway interface {
	Login(ctx context.Context, identity string, password []byte) (*LoginResult, error)
	Register(ctx context.Context, identity string, password []byte) (*RegisterResult, error)
	Ping(ctx context.Context) error
	Close() error
}
