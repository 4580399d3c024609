package domain

import "errors"

var (
	// ErrNotFound indicates a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrBusy is returned when a command-layer call arrives while another
	// command is still executing.
	ErrBusy = errors.New("another command is executing")
	// ErrNothingToUndo / ErrNothingToRedo report empty history stacks.
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	// ErrInvalidSpan indicates an idiom or note range whose endpoints do not
	// form a coherent span (different sentences, or start after end).
	ErrInvalidSpan = errors.New("invalid token span")
)
