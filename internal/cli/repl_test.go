package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeCmd struct {
	unlocked bool

	calls []string
	args  []string
}

func (f *fakeCmd) isUnlocked() bool { return f.unlocked }
func (f *fakeCmd) Unlock(ctx context.Context) error {
	f.calls = append(f.calls, "unlock")
	f.unlocked = true
	return nil
}
func (f *fakeCmd) Lock(ctx context.Context) error {
	f.calls = append(f.calls, "lock")
	f.unlocked = false
	return nil
}
func (f *fakeCmd) List(ctx context.Context) error { f.calls = append(f.calls, "list"); return nil }
func (f *fakeCmd) Add(ctx context.Context) error  { f.calls = append(f.calls, "add"); return nil }
func (f *fakeCmd) Show(ctx context.Context, arg string) error {
	f.calls = append(f.calls, "show")
	f.args = append(f.args, arg)
	return nil
}
func (f *fakeCmd) Delete(ctx context.Context, arg string) error {
	f.calls = append(f.calls, "delete")
	f.args = append(f.args, arg)
	return nil
}
func (f *fakeCmd) Share(ctx context.Context, arg string) error {
	f.calls = append(f.calls, "share")
	f.args = append(f.args, arg)
	return nil
}
func (f *fakeCmd) Shares(ctx context.Context) error { f.calls = append(f.calls, "shares"); return nil }
func (f *fakeCmd) Revoke(ctx context.Context, id string) error {
	f.calls = append(f.calls, "revoke")
	f.args = append(f.args, id)
	return nil
}
func (f *fakeCmd) Access(ctx context.Context, id string) error {
	f.calls = append(f.calls, "access")
	f.args = append(f.args, id)
	return nil
}
func (f *fakeCmd) Backup(ctx context.Context) error { f.calls = append(f.calls, "backup"); return nil }

func quietPrintln(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}

func TestRunREPL_UnlockFlowAndCommands(t *testing.T) {
	quietPrintln(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"list", // locked, ignored
		"unlock",
		"help",
		"add",
		"list",
		"show 2",
		"share 2",
		"shares",
		"revoke abc",
		"delete 2",
		"backup",
		"foobar",
		"exit",
	}, "\n"))

	f := &fakeCmd{}
	runREPL(context.Background(), f, bufio.NewScanner(input))

	wantOrder := []string{"unlock", "add", "list", "show", "share", "shares", "revoke", "delete", "backup", "lock"}
	idx := 0
	for _, c := range f.calls {
		if idx < len(wantOrder) && c == wantOrder[idx] {
			idx++
		}
	}
	if idx != len(wantOrder) {
		t.Fatalf("commands order mismatch: got %v, want subseq %v", f.calls, wantOrder)
	}
}

func TestRunREPL_LockedRejectsVaultCommands(t *testing.T) {
	quietPrintln(t)

	input := strings.NewReader("list\nadd\nshow 1\nexit\n")
	f := &fakeCmd{}
	runREPL(context.Background(), f, bufio.NewScanner(input))

	for _, c := range f.calls {
		if c != "lock" {
			t.Fatalf("locked repl ran %q: %v", c, f.calls)
		}
	}
}

func TestRunREPL_AccessWithoutUnlock(t *testing.T) {
	quietPrintln(t)

	input := strings.NewReader("access tkt-1\naccess\nexit\n")
	f := &fakeCmd{}
	runREPL(context.Background(), f, bufio.NewScanner(input))

	if len(f.args) != 1 || f.args[0] != "tkt-1" {
		t.Fatalf("unexpected access args: %v", f.args)
	}
}

func TestRunREPL_ExitLocksFirst(t *testing.T) {
	quietPrintln(t)

	input := strings.NewReader("unlock\nexit\n")
	f := &fakeCmd{}
	runREPL(context.Background(), f, bufio.NewScanner(input))

	if f.unlocked {
		t.Fatal("exit must lock the vault")
	}
}

func TestRunREPL_EOFStops(t *testing.T) {
	quietPrintln(t)

	f := &fakeCmd{}
	runREPL(context.Background(), f, bufio.NewScanner(strings.NewReader("")))

	if len(f.calls) != 0 {
		t.Fatalf("unexpected calls: %v", f.calls)
	}
}
