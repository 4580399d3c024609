package commands

import (
	"context"

	"wordhord/internal/domain"
	"wordhord/internal/ports"
)

// SetNote creates a note (Note.ID zero) or rewrites an existing one. The
// token span is optional; nil endpoints make a sentence-level note.
type SetNote struct {
	Notes ports.NoteRepository
	Note  domain.Note

	before  *domain.Note
	created bool
}

func (c *SetNote) Execute(ctx context.Context) error {
	if c.Note.ID == 0 || c.created {
		// First run assigns the ID; a redo recreates the row under it.
		c.created = true
		return c.Notes.Create(ctx, &c.Note)
	}
	if c.before == nil {
		prev, err := c.Notes.Get(ctx, c.Note.ID)
		if err != nil {
			return err
		}
		c.before = prev
	}
	return c.Notes.Update(ctx, &c.Note)
}

func (c *SetNote) Undo(ctx context.Context) error {
	if c.created {
		return c.Notes.Delete(ctx, c.Note.ID)
	}
	restored := *c.before
	return c.Notes.Update(ctx, &restored)
}

func (c *SetNote) Description() string { return "Edit note" }

// DeleteNote removes a note; undo recreates it under its original ID. The
// undo fails if an intervening edit deleted one of the note's endpoint
// tokens, and the command is then kept on the stack.
type DeleteNote struct {
	Notes  ports.NoteRepository
	NoteID int64

	note     *domain.Note
	captured bool
}

func (c *DeleteNote) Execute(ctx context.Context) error {
	if !c.captured {
		n, err := c.Notes.Get(ctx, c.NoteID)
		if err != nil {
			return err
		}
		c.note = n
		c.captured = true
	}
	return c.Notes.Delete(ctx, c.NoteID)
}

func (c *DeleteNote) Undo(ctx context.Context) error {
	restored := *c.note
	return c.Notes.Create(ctx, &restored)
}

func (c *DeleteNote) Description() string { return "Delete note" }
