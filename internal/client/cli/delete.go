package cli

import (
	"context"
	"fmt"

	"github.com/flklr-dev/SecureMVPLab/internal/common"
)

// DeleteAccount removes one local account after re-entering its password.
func (a *App) DeleteAccount(ctx context.Context) error {
	identity, err := getSimpleText(a.reader, a.identityPrompt()+" of the account to delete", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.DeleteAccount(ctx, identity, password); err != nil {
		a.report(ctx, err)
		return err
	}

	fmt.Fprintln(a.out, "Account deleted")
	return nil
}

// Wipe removes every local account after confirmation.
func (a *App) Wipe(ctx context.Context) error {
	ok, err := confirm(a.reader, "Remove all local accounts and log out?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.authService.Wipe(ctx); err != nil {
		a.report(ctx, err)
		return err
	}

	fmt.Fprintln(a.out, "Local data removed")
	return nil
}
