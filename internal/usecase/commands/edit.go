package commands

import (
	"context"

	"wordhord/internal/ports"
	"wordhord/internal/usecase/reconciler"
)

// EditSentenceText rewrites a sentence's text, running reconciliation so
// surviving words keep their annotations.
//
// Undo is state-based: it reconciles back against the captured old text
// with the same matching policy, re-deriving token identity from whatever
// the tokens look like when undo runs. It does not restore the exact
// pre-edit token IDs, and annotations destroyed by the forward edit stay
// gone.
type EditSentenceText struct {
	Rec        *reconciler.Service
	Sentences  ports.SentenceRepository
	SentenceID int64
	NewText    string

	oldText  string
	captured bool
	messages []string
}

func (c *EditSentenceText) Execute(ctx context.Context) error {
	if !c.captured {
		s, err := c.Sentences.Get(ctx, c.SentenceID)
		if err != nil {
			return err
		}
		c.oldText = s.Text
		c.captured = true
	}
	msgs, err := c.Rec.Reconcile(ctx, c.SentenceID, c.NewText)
	if err != nil {
		return err
	}
	c.messages = msgs
	return nil
}

func (c *EditSentenceText) Undo(ctx context.Context) error {
	msgs, err := c.Rec.Reconcile(ctx, c.SentenceID, c.oldText)
	if err != nil {
		return err
	}
	c.messages = msgs
	return nil
}

func (c *EditSentenceText) Description() string { return "Edit sentence text" }

// Messages returns the advisory notices (idiom deletions) from the most
// recent Execute or Undo.
func (c *EditSentenceText) Messages() []string { return c.messages }
