package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	s := a.authService.Session().Identity()
	if m := a.Mode(); m != "" {
		if s != "" {
			s += " "
		}
		s += string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root restores the previous session, starts the connectivity watcher when
// a gateway is configured, and runs the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to SecureMVP (type 'help' for commands)")

	if id, err := a.authService.CurrentIdentity(ctx); err != nil {
		a.report(ctx, err)
	} else if id != "" {
		fmt.Fprintf(a.out, "Restored session for %s\n", id)
	}

	if a.Mode() != ModeLocal {
		wctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go a.StartOnlineStatusWatcher(wctx, a.config.OnlineCheckInterval)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
