// Package cli provides the interactive userauth command-line client.
//
// It wires configuration and the gRPC client into a small REPL. Commands:
// register, login, me, reset, logout, help and exit. Passwords are read
// without echo and wiped after use; the session token lives only in memory.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits
// or stdin is closed.
package cli
