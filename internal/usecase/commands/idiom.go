package commands

import (
	"context"
	"errors"
	"fmt"

	"wordhord/internal/domain"
	"wordhord/internal/ports"
)

// CreateIdiom marks a contiguous token span as an idiom. Endpoints must be
// tokens of the given sentence in display order.
type CreateIdiom struct {
	Idioms       ports.IdiomRepository
	Tokens       ports.TokenRepository
	SentenceID   int64
	StartTokenID int64
	EndTokenID   int64
	Label        string

	idiom *domain.Idiom
}

func (c *CreateIdiom) Execute(ctx context.Context) error {
	start, err := c.Tokens.Get(ctx, c.StartTokenID)
	if err != nil {
		return err
	}
	end, err := c.Tokens.Get(ctx, c.EndTokenID)
	if err != nil {
		return err
	}
	if start.SentenceID != c.SentenceID || end.SentenceID != c.SentenceID {
		return fmt.Errorf("%w: tokens belong to another sentence", domain.ErrInvalidSpan)
	}
	if start.Position > end.Position {
		return fmt.Errorf("%w: start after end", domain.ErrInvalidSpan)
	}
	if c.idiom == nil {
		c.idiom = &domain.Idiom{
			SentenceID:   c.SentenceID,
			StartTokenID: c.StartTokenID,
			EndTokenID:   c.EndTokenID,
			Label:        c.Label,
		}
	}
	// A redo recreates the idiom under the ID of the first execution.
	return c.Idioms.Create(ctx, c.idiom)
}

func (c *CreateIdiom) Undo(ctx context.Context) error {
	return c.Idioms.Delete(ctx, c.idiom.ID)
}

func (c *CreateIdiom) Description() string { return "Mark idiom" }

// IdiomID reports the created idiom's ID after Execute.
func (c *CreateIdiom) IdiomID() int64 {
	if c.idiom == nil {
		return 0
	}
	return c.idiom.ID
}

// DeleteIdiom removes an idiom and its annotation in one transaction; undo
// restores both under their original IDs.
type DeleteIdiom struct {
	Idioms      ports.IdiomRepository
	Annotations ports.AnnotationRepository
	Store       ports.TxRunner
	IdiomID     int64

	idiom      *domain.Idiom
	annotation *domain.Annotation
	captured   bool
}

func (c *DeleteIdiom) Execute(ctx context.Context) error {
	if !c.captured {
		idm, err := c.Idioms.Get(ctx, c.IdiomID)
		if err != nil {
			return err
		}
		ann, err := c.Annotations.GetByIdiom(ctx, c.IdiomID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		c.idiom = idm
		c.annotation = ann
		c.captured = true
	}
	return c.Store.WithStore(ctx, func(st ports.SentenceStore) error {
		if err := st.DeleteAnnotationByIdiom(ctx, c.IdiomID); err != nil {
			return err
		}
		return st.DeleteIdiom(ctx, c.IdiomID)
	})
}

func (c *DeleteIdiom) Undo(ctx context.Context) error {
	return c.Store.WithStore(ctx, func(st ports.SentenceStore) error {
		restored := *c.idiom
		if err := st.InsertIdiom(ctx, &restored); err != nil {
			return err
		}
		if c.annotation != nil {
			ann := *c.annotation
			if err := st.InsertAnnotation(ctx, &ann); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *DeleteIdiom) Description() string { return "Delete idiom" }
