package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/flklr-dev/SecureMVPLab/internal/autherr"
	"github.com/flklr-dev/SecureMVPLab/internal/client/client"
	"github.com/flklr-dev/SecureMVPLab/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var confirm = Confirm

func (a *App) identityPrompt() string {
	if a.config != nil && a.config.IdentityScheme == "username" {
		return "Enter username"
	}
	return "Enter email"
}

// Register prompts for an identity, a password and its confirmation, then
// creates the account. Both password buffers are wiped before returning.
func (a *App) Register(ctx context.Context) error {
	identity, err := getSimpleText(a.reader, a.identityPrompt(), a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	repeat, err := getPassword(a.out, "Confirm password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(repeat)

	id, err := a.authService.Register(ctx, identity, password, repeat)
	if err != nil {
		a.report(ctx, err)
		return err
	}

	fmt.Fprintf(a.out, "Account created, logged in as %s\n", id)
	return nil
}

// Login prompts for credentials and authenticates. A successful remote
// round trip switches the app to online mode.
func (a *App) Login(ctx context.Context) error {
	identity, err := getSimpleText(a.reader, a.identityPrompt(), a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	id, err := a.authService.Login(ctx, identity, password)
	if err != nil {
		a.report(ctx, err)
		return err
	}

	if a.authService.Session().AccessToken() != "" {
		a.setMode(ctx, ModeOnline)
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", id)
	return nil
}

// Logout clears the session. Local accounts are kept.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		a.report(ctx, err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Strength reads a password and prints the policy feedback for it.
func (a *App) Strength(ctx context.Context) error {
	password, err := getPassword(a.out, "Enter password to check")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s := a.authService.CheckPasswordStrength(password)
	if s.Strong {
		fmt.Fprintln(a.out, "Password meets all requirements")
		return nil
	}
	for _, f := range s.Feedback {
		fmt.Fprintf(a.out, "  - %s\n", f)
	}
	return nil
}

// Status prints the session identity, the connectivity mode and the state
// of the authentication state machine.
func (a *App) Status(ctx context.Context) error {
	s := a.authService.Session()
	identity := s.Identity()
	if identity == "" {
		identity = "(not logged in)"
	}
	fmt.Fprintf(a.out, "identity: %s\nmode: %s\nstate: %s\n", identity, a.Mode(), s.State())
	return nil
}

// report prints err for the user. Every error kind has its own rendering.
func (a *App) report(ctx context.Context, err error) {
	var ae *autherr.Error
	msg := err.Error()
	if errors.As(err, &ae) {
		msg = ae.Message
	}

	switch autherr.KindOf(err) {
	case autherr.KindInvalidInput:
		fmt.Fprintln(a.out, msg)
		for _, f := range autherr.FeedbackOf(err) {
			fmt.Fprintf(a.out, "  - %s\n", f)
		}
	case autherr.KindAlreadyExists,
		autherr.KindAccountNotFound,
		autherr.KindIncorrectPassword,
		autherr.KindInvalidCredentials,
		autherr.KindInProgress:
		fmt.Fprintln(a.out, msg)
	case autherr.KindNetworkOrStorageFailure:
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ctx, ModeOffline)
		}
		fmt.Fprintf(a.out, "%s (you can try again)\n", msg)
		a.logger.Warn(ctx, "operation failed", "error", err)
	case autherr.KindConfigurationError:
		fmt.Fprintf(a.out, "Configuration error: %s\n", msg)
		a.logger.Error(ctx, "configuration error", "error", err)
	default:
		fmt.Fprintf(a.out, "Error: %s\n", msg)
	}
}
