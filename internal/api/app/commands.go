package app

import "context"

// CommandAPI exposes the history stacks: undo, redo and the state the
// toolbar needs to enable its buttons.
type CommandAPI struct {
	run *Commander
}

func NewCommandAPI(run *Commander) *CommandAPI { return &CommandAPI{run: run} }

// UndoResult names the command that was taken back plus the stack state
// afterwards.
type UndoResult struct {
	Undone string        `json:"undone,omitempty"`
	Redone string        `json:"redone,omitempty"`
	Status HistoryStatus `json:"status"`
}

func (a *CommandAPI) Undo() (*UndoResult, error) {
	ctx := context.Background()
	label := a.run.Mgr.UndoLabel()
	err := a.run.Mgr.Undo(ctx)
	a.run.after("undo", err)
	if err != nil {
		return nil, err
	}
	return &UndoResult{Undone: label, Status: a.run.Status()}, nil
}

func (a *CommandAPI) Redo() (*UndoResult, error) {
	ctx := context.Background()
	label := a.run.Mgr.RedoLabel()
	err := a.run.Mgr.Redo(ctx)
	a.run.after("redo", err)
	if err != nil {
		return nil, err
	}
	return &UndoResult{Redone: label, Status: a.run.Status()}, nil
}

func (a *CommandAPI) Status() HistoryStatus { return a.run.Status() }
