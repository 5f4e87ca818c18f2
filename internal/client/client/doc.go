// Package client contains the client-side building blocks that talk to the
// outside world.
//
// # Overview
//
// The package provides:
//  1. The Gateway contract the auth service uses to reach the remote auth
//     gateway: Login, Register, Ping and Close, with refusals reported as
//     structured results (LoginResult, RegisterResult) carrying a
//     RejectReason.
//  2. A gRPC implementation (GRPCClient) that manages the connection,
//     attaches the access token from the last remote login via an
//     interceptor, bounds each call with a timeout and maps gRPC status
//     codes to sentinel errors.
//  3. Local database bootstrap (InitDatabase, RunMigrations) that opens the
//     SQLite file and applies the embedded goose migrations.
//
// # Error Handling
//
// Transport conditions are exposed as sentinel errors that callers match
// with errors.Is: ErrUnavailable, ErrUnauthorized. A cancelled call wraps
// context.Canceled. Status messages are never inspected.
//
// See Also
//
//   - Interface:  Gateway
//   - gRPC impl:  GRPCClient
//   - DB helpers: InitDatabase, RunMigrations
package client
