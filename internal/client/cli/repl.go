package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Strength(ctx context.Context) error
	Status(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	Wipe(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the SecureMVP client.
//
// It reads a line from reader, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on EOF, when ctx is done, or when
// the user types "exit" or "quit".
//
// Commands
//
//	Not logged in:
//	  - help          : show available commands
//	  - register      : create an account
//	  - login         : authenticate
//	  - strength      : check a password against the policy
//	  - status        : show identity, mode and state
//	  - delete        : delete a local account
//	  - wipe          : remove all local accounts
//	  - exit | quit   : leave the program
//
//	Logged in: the same, plus
//	  - logout        : end the session
//
// Errors returned by command handlers are ignored here; handlers report
// them to the user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("smvp %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: logout, strength, status, delete, wipe, exit")
			} else {
				printlnFn("Available commands: register, login, strength, status, delete, wipe, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			if !a.isLoggedIn() {
				printlnFn("Not logged in")
				continue
			}
			_ = a.Logout(ctx)

		case "strength":
			_ = a.Strength(ctx)

		case "status":
			_ = a.Status(ctx)

		case "delete":
			_ = a.DeleteAccount(ctx)

		case "wipe":
			_ = a.Wipe(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
