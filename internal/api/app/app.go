// Package app holds the facades a front end calls. Every mutation of
// annotated text flows through the shared command manager so undo, redo,
// autosave marking and metrics stay consistent no matter which facade the
// call came in on.
package app

import (
	"context"

	"wordhord/internal/metrics"
	"wordhord/internal/usecase/commands"
)

// EventEmitter pushes a named event with a JSON-friendly payload to
// whatever front end is attached.
type EventEmitter interface {
	Emit(name string, payload any)
}

// Hooks carries the cross-cutting callbacks the mutating facades share.
// Every field is optional; nil members are skipped.
type Hooks struct {
	Dirty   func() // called after each successful mutation
	Metrics *metrics.Metrics
	Events  EventEmitter
}

func (h Hooks) markDirty() {
	if h.Dirty != nil {
		h.Dirty()
	}
}

func (h Hooks) emit(name string, payload any) {
	if h.Events != nil {
		h.Events.Emit(name, payload)
	}
}

// Commander runs undoable commands and owns the bookkeeping around them:
// command metrics, the dirty mark for the autosaver, and the change event
// the front end uses to refresh its undo/redo controls.
type Commander struct {
	Mgr   *commands.Manager
	Hooks Hooks
}

func NewCommander(mgr *commands.Manager, hooks Hooks) *Commander {
	return &Commander{Mgr: mgr, Hooks: hooks}
}

func (c *Commander) Run(ctx context.Context, action string, cmd commands.Command) error {
	err := c.Mgr.Execute(ctx, cmd)
	c.after(action, err)
	return err
}

// after records one command outcome. It runs for undo and redo as well, so
// the stack-depth gauges track every path that moves the stacks.
func (c *Commander) after(action string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	done, undone := c.Mgr.Depths()
	if c.Hooks.Metrics != nil {
		c.Hooks.Metrics.RecordCommand(action, status, done, undone)
	}
	if err != nil {
		return
	}
	c.Hooks.markDirty()
	c.Hooks.emit("history.changed", c.Status())
}

// Status snapshots the history stacks for the front end's controls.
func (c *Commander) Status() HistoryStatus {
	done, undone := c.Mgr.Depths()
	return HistoryStatus{
		CanUndo:   c.Mgr.CanUndo(),
		CanRedo:   c.Mgr.CanRedo(),
		UndoLabel: c.Mgr.UndoLabel(),
		RedoLabel: c.Mgr.RedoLabel(),
		UndoDepth: done,
		RedoDepth: undone,
	}
}

// Reset drops the history stacks and tells the front end. Project deletion
// and workspace switches go through here.
func (c *Commander) Reset() {
	c.Mgr.Clear()
	c.Hooks.emit("history.changed", HistoryStatus{})
}

// HistoryStatus mirrors the undo/redo controls of the front end.
type HistoryStatus struct {
	CanUndo   bool   `json:"can_undo"`
	CanRedo   bool   `json:"can_redo"`
	UndoLabel string `json:"undo_label"`
	RedoLabel string `json:"redo_label"`
	UndoDepth int    `json:"undo_depth"`
	RedoDepth int    `json:"redo_depth"`
}
