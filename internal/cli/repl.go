package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// cmdIface is the minimal command surface the REPL needs. App satisfies
// it; tests can provide a stub.
type cmdIface interface {
	isUnlocked() bool
	Unlock(ctx context.Context) error
	Lock(ctx context.Context) error
	List(ctx context.Context) error
	Add(ctx context.Context) error
	Show(ctx context.Context, arg string) error
	Delete(ctx context.Context, arg string) error
	Share(ctx context.Context, arg string) error
	Shares(ctx context.Context) error
	Revoke(ctx context.Context, id string) error
	Access(ctx context.Context, id string) error
	Backup(ctx context.Context) error
}

// runREPL reads a line, dispatches on the first token, and loops until
// EOF or "exit". Command handlers report their own errors; the loop stays
// resilient and only does I/O.
func runREPL(ctx context.Context, a cmdIface, scanner *bufio.Scanner) {
	for {
		status := "locked"
		if a.isUnlocked() {
			status = "unlocked"
		}
		printlnFn(fmt.Sprintf("securepass (%s) > ", status))

		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		switch cmd {
		case "help":
			if a.isUnlocked() {
				printlnFn("Commands: list, add, show N, delete N, share N, shares, revoke ID, access ID, backup, lock, exit")
			} else {
				printlnFn("Commands: unlock, access ID, exit")
			}
		case "exit", "quit":
			_ = a.Lock(ctx)
			return
		case "access":
			if arg == "" {
				printlnFn("Usage: access <share-id>")
				continue
			}
			_ = a.Access(ctx, arg)
		case "unlock":
			_ = a.Unlock(ctx)
		default:
			if !a.isUnlocked() {
				printlnFn("Unknown command. Type 'help'.")
				continue
			}
			switch cmd {
			case "list":
				_ = a.List(ctx)
			case "add":
				_ = a.Add(ctx)
			case "show":
				_ = a.Show(ctx, arg)
			case "delete":
				_ = a.Delete(ctx, arg)
			case "share":
				_ = a.Share(ctx, arg)
			case "shares":
				_ = a.Shares(ctx)
			case "revoke":
				_ = a.Revoke(ctx, arg)
			case "backup":
				_ = a.Backup(ctx)
			case "lock":
				_ = a.Lock(ctx)
			default:
				printlnFn("Unknown command. Type 'help'.")
			}
		}
	}
}

// Run starts the REPL over stdin.
func (a *App) Run(ctx context.Context, scanner *bufio.Scanner) {
	runREPL(ctx, a, scanner)
}
