// Package cli provides the interactive portal command-line client.
//
// It wires configuration, local storage, the REST client, the notification
// bus and the portal services into a REPL. Typical flow: restore the
// persisted stores, refresh an expired session once, then execute user
// commands until exit.
//
// Key features:
//   - Register with an emailed OTP, Login / Logout / Refresh
//   - Create, update and delete the matrimonial profile
//   - Matches and candidate search
//   - Membership application and help-desk form
//   - Admin login and membership dashboard
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
