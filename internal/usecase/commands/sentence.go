package commands

import (
	"context"

	"wordhord/internal/ports"
)

// ToggleParagraphBreak flips whether the sentence starts a new paragraph.
// The toggle is its own inverse.
type ToggleParagraphBreak struct {
	Sentences  ports.SentenceRepository
	SentenceID int64
}

func (c *ToggleParagraphBreak) toggle(ctx context.Context) error {
	s, err := c.Sentences.Get(ctx, c.SentenceID)
	if err != nil {
		return err
	}
	s.ParagraphBreak = !s.ParagraphBreak
	return c.Sentences.Update(ctx, s)
}

func (c *ToggleParagraphBreak) Execute(ctx context.Context) error { return c.toggle(ctx) }
func (c *ToggleParagraphBreak) Undo(ctx context.Context) error    { return c.toggle(ctx) }
func (c *ToggleParagraphBreak) Description() string               { return "Toggle paragraph break" }

// SetTranslation rewrites the sentence's modern-English rendering.
type SetTranslation struct {
	Sentences   ports.SentenceRepository
	SentenceID  int64
	Translation string

	before   string
	captured bool
}

func (c *SetTranslation) Execute(ctx context.Context) error {
	s, err := c.Sentences.Get(ctx, c.SentenceID)
	if err != nil {
		return err
	}
	if !c.captured {
		c.before = s.Translation
		c.captured = true
	}
	s.Translation = c.Translation
	return c.Sentences.Update(ctx, s)
}

func (c *SetTranslation) Undo(ctx context.Context) error {
	s, err := c.Sentences.Get(ctx, c.SentenceID)
	if err != nil {
		return err
	}
	s.Translation = c.before
	return c.Sentences.Update(ctx, s)
}

func (c *SetTranslation) Description() string { return "Edit translation" }
