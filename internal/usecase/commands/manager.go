package commands

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"wordhord/internal/domain"
)

// DefaultLimit is the undo depth when none is configured.
const DefaultLimit = 50

// Manager keeps two bounded command stacks. When a stack is full the oldest
// entry is evicted silently; that only costs undo depth, it is not an error.
// A single in-flight guard rejects overlapping calls with ErrBusy, because
// commands mutate shared persisted state and stack bookkeeping.
type Manager struct {
	Log zerolog.Logger

	mu        sync.Mutex
	limit     int
	done      []Command
	undone    []Command
	executing bool
}

func NewManager(limit int, log zerolog.Logger) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{limit: limit, Log: log}
}

// Execute runs cmd and records it for undo. Any new action invalidates the
// redo branch. On failure the stacks are left untouched.
func (m *Manager) Execute(ctx context.Context, cmd Command) error {
	if !m.begin() {
		return domain.ErrBusy
	}
	defer m.end()

	if err := cmd.Execute(ctx); err != nil {
		m.Log.Warn().Err(err).Str("command", cmd.Description()).Msg("command failed")
		return err
	}
	m.mu.Lock()
	m.push(&m.done, cmd)
	m.undone = nil
	m.mu.Unlock()
	m.Log.Debug().Str("command", cmd.Description()).Msg("executed")
	return nil
}

// Undo reverts the most recent command. A failed undo pushes the command
// back so it is never lost.
func (m *Manager) Undo(ctx context.Context) error {
	if !m.begin() {
		return domain.ErrBusy
	}
	defer m.end()

	m.mu.Lock()
	if len(m.done) == 0 {
		m.mu.Unlock()
		return domain.ErrNothingToUndo
	}
	cmd := m.done[len(m.done)-1]
	m.done = m.done[:len(m.done)-1]
	m.mu.Unlock()

	if err := cmd.Undo(ctx); err != nil {
		m.mu.Lock()
		m.done = append(m.done, cmd)
		m.mu.Unlock()
		m.Log.Warn().Err(err).Str("command", cmd.Description()).Msg("undo failed")
		return err
	}
	m.mu.Lock()
	m.push(&m.undone, cmd)
	m.mu.Unlock()
	m.Log.Debug().Str("command", cmd.Description()).Msg("undone")
	return nil
}

// Redo re-executes the most recently undone command.
func (m *Manager) Redo(ctx context.Context) error {
	if !m.begin() {
		return domain.ErrBusy
	}
	defer m.end()

	m.mu.Lock()
	if len(m.undone) == 0 {
		m.mu.Unlock()
		return domain.ErrNothingToRedo
	}
	cmd := m.undone[len(m.undone)-1]
	m.undone = m.undone[:len(m.undone)-1]
	m.mu.Unlock()

	if err := cmd.Execute(ctx); err != nil {
		m.mu.Lock()
		m.undone = append(m.undone, cmd)
		m.mu.Unlock()
		m.Log.Warn().Err(err).Str("command", cmd.Description()).Msg("redo failed")
		return err
	}
	m.mu.Lock()
	m.push(&m.done, cmd)
	m.mu.Unlock()
	m.Log.Debug().Str("command", cmd.Description()).Msg("redone")
	return nil
}

// RunExclusive runs fn under the same in-flight guard the commands use, so
// a timer-driven flush can never interleave with an edit.
func (m *Manager) RunExclusive(fn func() error) error {
	if !m.begin() {
		return domain.ErrBusy
	}
	defer m.end()
	return fn()
}

// Clear drops both stacks. Called when a project is deleted or swapped out,
// since recorded commands would refer to rows that no longer exist.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.done = nil
	m.undone = nil
	m.mu.Unlock()
}

// Depths reports the stack sizes, for status displays and metrics.
func (m *Manager) Depths() (done, undone int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.done), len(m.undone)
}

func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.done) > 0
}

func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undone) > 0
}

// UndoLabel names the command Undo would revert, or "" when there is none.
func (m *Manager) UndoLabel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.done) == 0 {
		return ""
	}
	return m.done[len(m.done)-1].Description()
}

func (m *Manager) RedoLabel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.undone) == 0 {
		return ""
	}
	return m.undone[len(m.undone)-1].Description()
}

func (m *Manager) begin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.executing {
		return false
	}
	m.executing = true
	return true
}

func (m *Manager) end() {
	m.mu.Lock()
	m.executing = false
	m.mu.Unlock()
}

// push appends with silent oldest-first eviction at the depth limit.
func (m *Manager) push(stack *[]Command, cmd Command) {
	s := *stack
	if len(s) >= m.limit {
		copy(s, s[1:])
		s = s[:len(s)-1]
	}
	*stack = append(s, cmd)
}
