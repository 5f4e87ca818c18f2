// Package cli provides the interactive SecureMVP terminal client.
//
// It wires configuration, the device key, the encrypted credential store,
// the optional gateway client and the auth service, then runs a REPL.
// When a gateway is configured a background watcher probes it and the
// prompt shows whether the client is online or offline.
//
// Commands: help, register, login, logout, strength, status, delete, wipe, exit.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
