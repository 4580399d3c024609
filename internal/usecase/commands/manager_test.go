package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"wordhord/internal/domain"
)

type fakeCmd struct {
	name    string
	execErr error
	undoErr error
	execs   int
	undos   int
}

func (f *fakeCmd) Execute(ctx context.Context) error {
	f.execs++
	return f.execErr
}

func (f *fakeCmd) Undo(ctx context.Context) error {
	f.undos++
	return f.undoErr
}

func (f *fakeCmd) Description() string { return f.name }

func TestManagerUndoRedoRoundTrip(t *testing.T) {
	m := NewManager(0, zerolog.Nop())
	ctx := context.Background()
	c := &fakeCmd{name: "edit"}

	if m.CanUndo() || m.CanRedo() {
		t.Fatal("fresh manager should have empty stacks")
	}
	if err := m.Execute(ctx, c); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !m.CanUndo() || m.UndoLabel() != "edit" {
		t.Fatal("command not recorded")
	}
	if err := m.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if m.CanUndo() || !m.CanRedo() || m.RedoLabel() != "edit" {
		t.Fatal("undo did not move the command to the redo stack")
	}
	if err := m.Redo(ctx); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if c.execs != 2 || c.undos != 1 {
		t.Fatalf("execs=%d undos=%d, want 2/1", c.execs, c.undos)
	}
}

func TestManagerEmptyStacks(t *testing.T) {
	m := NewManager(0, zerolog.Nop())
	ctx := context.Background()
	if err := m.Undo(ctx); !errors.Is(err, domain.ErrNothingToUndo) {
		t.Fatalf("undo on empty: %v", err)
	}
	if err := m.Redo(ctx); !errors.Is(err, domain.ErrNothingToRedo) {
		t.Fatalf("redo on empty: %v", err)
	}
}

func TestManagerFailedExecuteLeavesStacksAlone(t *testing.T) {
	m := NewManager(0, zerolog.Nop())
	ctx := context.Background()
	if err := m.Execute(ctx, &fakeCmd{name: "ok"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if err := m.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	// A failing new command must not clear the redo branch.
	boom := errors.New("boom")
	if err := m.Execute(ctx, &fakeCmd{name: "bad", execErr: boom}); !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if !m.CanRedo() {
		t.Fatal("failed execute cleared the redo stack")
	}
}

func TestManagerExecuteClearsRedo(t *testing.T) {
	m := NewManager(0, zerolog.Nop())
	ctx := context.Background()
	if err := m.Execute(ctx, &fakeCmd{name: "a"}); err != nil {
		t.Fatalf("execute a: %v", err)
	}
	if err := m.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if err := m.Execute(ctx, &fakeCmd{name: "b"}); err != nil {
		t.Fatalf("execute b: %v", err)
	}
	if m.CanRedo() {
		t.Fatal("new command must clear the redo branch")
	}
}

func TestManagerFailedUndoKeepsCommand(t *testing.T) {
	m := NewManager(0, zerolog.Nop())
	ctx := context.Background()
	c := &fakeCmd{name: "sticky", undoErr: errors.New("locked")}
	if err := m.Execute(ctx, c); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if err := m.Undo(ctx); err == nil {
		t.Fatal("undo should fail")
	}
	if !m.CanUndo() {
		t.Fatal("failed undo lost the command")
	}
	c.undoErr = nil
	if err := m.Undo(ctx); err != nil {
		t.Fatalf("retry undo: %v", err)
	}
	if c.undos != 2 {
		t.Fatalf("undos = %d, want 2", c.undos)
	}
}

func TestManagerEvictsOldestSilently(t *testing.T) {
	m := NewManager(0, zerolog.Nop())
	ctx := context.Background()
	first := &fakeCmd{name: "first"}
	if err := m.Execute(ctx, first); err != nil {
		t.Fatalf("execute first: %v", err)
	}
	for i := 1; i <= DefaultLimit; i++ {
		if err := m.Execute(ctx, &fakeCmd{name: "later"}); err != nil {
			t.Fatalf("execute %d: %v", i, err)
		}
	}
	// 51 executed, depth 50: the first command fell off the bottom.
	if !m.CanUndo() {
		t.Fatal("undo stack should be full, not empty")
	}
	for i := 0; i < DefaultLimit; i++ {
		if err := m.Undo(ctx); err != nil {
			t.Fatalf("undo %d: %v", i, err)
		}
	}
	if err := m.Undo(ctx); !errors.Is(err, domain.ErrNothingToUndo) {
		t.Fatalf("depth exceeded the limit: %v", err)
	}
	if first.undos != 0 {
		t.Fatal("evicted command was undone")
	}
}

// reentrantCmd tries to run another command from inside its own Execute.
type reentrantCmd struct {
	m     *Manager
	inner Command
	got   error
}

func (r *reentrantCmd) Execute(ctx context.Context) error {
	r.got = r.m.Execute(ctx, r.inner)
	return nil
}

func (r *reentrantCmd) Undo(ctx context.Context) error { return nil }
func (r *reentrantCmd) Description() string            { return "reentrant" }

func TestManagerRejectsReentrantExecute(t *testing.T) {
	m := NewManager(0, zerolog.Nop())
	inner := &fakeCmd{name: "inner"}
	r := &reentrantCmd{m: m, inner: inner}
	if err := m.Execute(context.Background(), r); err != nil {
		t.Fatalf("outer execute: %v", err)
	}
	if !errors.Is(r.got, domain.ErrBusy) {
		t.Fatalf("nested execute: got %v, want ErrBusy", r.got)
	}
	if inner.execs != 0 {
		t.Fatal("nested command ran anyway")
	}
}

type exclusiveProbe struct {
	m   *Manager
	got error
}

func (p *exclusiveProbe) Execute(ctx context.Context) error {
	p.got = p.m.RunExclusive(func() error { return nil })
	return nil
}

func (p *exclusiveProbe) Undo(ctx context.Context) error { return nil }
func (p *exclusiveProbe) Description() string            { return "probe" }

func TestManagerRunExclusiveSharesGuard(t *testing.T) {
	m := NewManager(0, zerolog.Nop())

	ran := false
	if err := m.RunExclusive(func() error { ran = true; return nil }); err != nil {
		t.Fatalf("exclusive: %v", err)
	}
	if !ran {
		t.Fatal("fn did not run")
	}

	// A flush attempted while a command is in flight must be turned away.
	p := &exclusiveProbe{m: m}
	if err := m.Execute(context.Background(), p); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !errors.Is(p.got, domain.ErrBusy) {
		t.Fatalf("exclusive during command: got %v, want ErrBusy", p.got)
	}
}
