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
	Verify(ctx context.Context, args []string) error
	Complete(ctx context.Context, args []string) error
	Abandon(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	Status(ctx context.Context) error
	Profile(ctx context.Context, args []string) error
	Matches(ctx context.Context) error
	Search(ctx context.Context, args []string) error
	Member(ctx context.Context) error
	Helpdesk(ctx context.Context) error
	Admin(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: register, verify [code], complete [code], abandon, login, " +
		"member, helpdesk, admin login|logout|dashboard, status, exit"
	helpMember = "Available commands: profile create|update|delete, matches, search [key=value...], " +
		"member, helpdesk, refresh, status, logout, admin login|logout|dashboard, exit"
)

// runREPL starts a simple read–eval–print loop for the portal CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command and the rest as its arguments, and dispatches to methods on 'a'.
// Unknown commands are reported back to the user. The loop exits on scanner
// EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Always:
//	  - help                          - show available commands
//	  - status                        - show session, registration and form state
//	  - member                        - fill in and submit the membership form
//	  - helpdesk                      - fill in and submit a help-desk ticket
//	  - admin login|logout|dashboard  - admin session and membership list
//	  - exit | quit                   - leave the program
//
//	Not logged in:
//	  - register                      - start a signup, an OTP is emailed
//	  - verify [code]                 - verify the emailed OTP
//	  - complete [code]               - create the account and log in
//	  - abandon                       - discard an unfinished signup
//	  - login                         - authenticate
//
//	Logged in:
//	  - profile create|update|delete  - manage the matrimonial profile
//	  - matches                       - list matches for the profile
//	  - search [key=value ...]        - filter candidates by gender, age, language
//	  - refresh                       - refresh the session token
//	  - logout                        - log out
//
// Any errors returned by command handlers are ignored here; handlers report
// to the user themselves. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("portal %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpMember)
			} else {
				printlnFn(helpAnonymous)
			}

		case "register":
			_ = a.Register(ctx)

		case "verify":
			_ = a.Verify(ctx, args)

		case "complete":
			_ = a.Complete(ctx, args)

		case "abandon":
			_ = a.Abandon(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "status":
			_ = a.Status(ctx)

		case "profile":
			_ = a.Profile(ctx, args)

		case "matches":
			_ = a.Matches(ctx)

		case "search":
			_ = a.Search(ctx, args)

		case "member":
			_ = a.Member(ctx)

		case "helpdesk":
			_ = a.Helpdesk(ctx)

		case "admin":
			_ = a.Admin(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
