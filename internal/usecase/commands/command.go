// Package commands implements undo/redo as reversible command objects over
// the annotation store. Commands capture whatever before-state their undo
// needs on first execution.
package commands

import "context"

// Command is one reversible user action.
type Command interface {
	Execute(ctx context.Context) error
	Undo(ctx context.Context) error
	Description() string
}
