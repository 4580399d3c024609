package app

import (
	"context"
	"errors"

	"wordhord/internal/domain"
	"wordhord/internal/ports"
	"wordhord/internal/usecase/commands"
)

type AnnotationAPI struct {
	repo ports.AnnotationRepository
	run  *Commander
}

func NewAnnotationAPI(repo ports.AnnotationRepository, run *Commander) *AnnotationAPI {
	return &AnnotationAPI{repo: repo, run: run}
}

// AnnotateTokenRequest carries the full field set; empty strings clear the
// corresponding fields, matching how the annotation panel submits.
type AnnotateTokenRequest struct {
	TokenID int64             `json:"token_id"`
	Values  domain.Annotation `json:"values"`
}

func (a *AnnotationAPI) AnnotateToken(req AnnotateTokenRequest) (*domain.Annotation, error) {
	ctx := context.Background()
	cmd := &commands.AnnotateToken{Annotations: a.repo, TokenID: req.TokenID, Values: req.Values}
	if err := a.run.Run(ctx, "annotate_token", cmd); err != nil {
		return nil, err
	}
	return a.repo.GetByToken(ctx, req.TokenID)
}

type AnnotateIdiomRequest struct {
	IdiomID int64             `json:"idiom_id"`
	Values  domain.Annotation `json:"values"`
}

func (a *AnnotationAPI) AnnotateIdiom(req AnnotateIdiomRequest) (*domain.Annotation, error) {
	ctx := context.Background()
	cmd := &commands.AnnotateIdiom{Annotations: a.repo, IdiomID: req.IdiomID, Values: req.Values}
	if err := a.run.Run(ctx, "annotate_idiom", cmd); err != nil {
		return nil, err
	}
	return a.repo.GetByIdiom(ctx, req.IdiomID)
}

// ClearToken removes a token's annotation. Clearing a bare token reports
// false without touching the history, so spamming the shortcut does not
// pollute the undo stack.
func (a *AnnotationAPI) ClearToken(tokenID int64) (bool, error) {
	ctx := context.Background()
	if _, err := a.repo.GetByToken(ctx, tokenID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	cmd := &commands.ClearTokenAnnotation{Annotations: a.repo, TokenID: tokenID}
	if err := a.run.Run(ctx, "clear_annotation", cmd); err != nil {
		return false, err
	}
	return true, nil
}

// GetToken returns nil without error when the token has no annotation yet,
// so the panel can open empty.
func (a *AnnotationAPI) GetToken(tokenID int64) (*domain.Annotation, error) {
	ctx := context.Background()
	an, err := a.repo.GetByToken(ctx, tokenID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return an, err
}

func (a *AnnotationAPI) GetIdiom(idiomID int64) (*domain.Annotation, error) {
	ctx := context.Background()
	an, err := a.repo.GetByIdiom(ctx, idiomID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return an, err
}
