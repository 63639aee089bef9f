// Package cli provides the interactive SecurePass command-line client.
//
// It wires configuration, the HTTP API client and an interactive REPL.
// Passwords are read from the terminal without echo and wiped after use;
// the session token lives in memory only.
//
// Commands:
//   - register / login / logout
//   - list, add, delete <id>
//   - backup (also saves the encrypted snapshot under ./backups)
//   - help, exit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
