package commands

import (
	"context"
	"errors"

	"wordhord/internal/domain"
	"wordhord/internal/ports"
)

// AnnotateToken writes the grammatical annotation of one token. Undo
// restores the previous annotation, or removes it when the token was
// previously bare.
type AnnotateToken struct {
	Annotations ports.AnnotationRepository
	TokenID     int64
	Values      domain.Annotation

	before   *domain.Annotation
	captured bool
}

func (c *AnnotateToken) Execute(ctx context.Context) error {
	if !c.captured {
		prev, err := c.Annotations.GetByToken(ctx, c.TokenID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		c.before = prev
		c.captured = true
	}
	a := c.Values
	a.ID = 0
	a.TokenID = &c.TokenID
	a.IdiomID = nil
	return c.Annotations.UpsertForToken(ctx, &a)
}

func (c *AnnotateToken) Undo(ctx context.Context) error {
	if c.before == nil {
		return c.Annotations.DeleteByToken(ctx, c.TokenID)
	}
	restored := *c.before
	return c.Annotations.UpsertForToken(ctx, &restored)
}

func (c *AnnotateToken) Description() string { return "Annotate word" }

// ClearTokenAnnotation removes a token's annotation outright. Executing
// against a bare token fails with ErrNotFound so the stack never records a
// no-op.
type ClearTokenAnnotation struct {
	Annotations ports.AnnotationRepository
	TokenID     int64

	before *domain.Annotation
}

func (c *ClearTokenAnnotation) Execute(ctx context.Context) error {
	if c.before == nil {
		prev, err := c.Annotations.GetByToken(ctx, c.TokenID)
		if err != nil {
			return err
		}
		c.before = prev
	}
	return c.Annotations.DeleteByToken(ctx, c.TokenID)
}

func (c *ClearTokenAnnotation) Undo(ctx context.Context) error {
	restored := *c.before
	return c.Annotations.UpsertForToken(ctx, &restored)
}

func (c *ClearTokenAnnotation) Description() string { return "Clear annotation" }

// AnnotateIdiom is the idiom-owned counterpart of AnnotateToken.
type AnnotateIdiom struct {
	Annotations ports.AnnotationRepository
	IdiomID     int64
	Values      domain.Annotation

	before   *domain.Annotation
	captured bool
}

func (c *AnnotateIdiom) Execute(ctx context.Context) error {
	if !c.captured {
		prev, err := c.Annotations.GetByIdiom(ctx, c.IdiomID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		c.before = prev
		c.captured = true
	}
	a := c.Values
	a.ID = 0
	a.IdiomID = &c.IdiomID
	a.TokenID = nil
	return c.Annotations.UpsertForIdiom(ctx, &a)
}

func (c *AnnotateIdiom) Undo(ctx context.Context) error {
	if c.before == nil {
		return c.Annotations.DeleteByIdiom(ctx, c.IdiomID)
	}
	restored := *c.before
	return c.Annotations.UpsertForIdiom(ctx, &restored)
}

func (c *AnnotateIdiom) Description() string { return "Annotate idiom" }
