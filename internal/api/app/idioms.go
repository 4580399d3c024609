package app

import (
	"context"

	"wordhord/internal/domain"
	"wordhord/internal/ports"
	"wordhord/internal/usecase/commands"
)

type IdiomAPI struct {
	idioms      ports.IdiomRepository
	tokens      ports.TokenRepository
	annotations ports.AnnotationRepository
	store       ports.TxRunner
	run         *Commander
}

func NewIdiomAPI(idioms ports.IdiomRepository, tokens ports.TokenRepository,
	annotations ports.AnnotationRepository, store ports.TxRunner, run *Commander) *IdiomAPI {
	return &IdiomAPI{idioms: idioms, tokens: tokens, annotations: annotations, store: store, run: run}
}

type CreateIdiomRequest struct {
	SentenceID   int64  `json:"sentence_id"`
	StartTokenID int64  `json:"start_token_id"`
	EndTokenID   int64  `json:"end_token_id"`
	Label        string `json:"label"`
}

func (a *IdiomAPI) Create(req CreateIdiomRequest) (*domain.Idiom, error) {
	ctx := context.Background()
	cmd := &commands.CreateIdiom{
		Idioms:       a.idioms,
		Tokens:       a.tokens,
		SentenceID:   req.SentenceID,
		StartTokenID: req.StartTokenID,
		EndTokenID:   req.EndTokenID,
		Label:        req.Label,
	}
	if err := a.run.Run(ctx, "create_idiom", cmd); err != nil {
		return nil, err
	}
	return a.idioms.Get(ctx, cmd.IdiomID())
}

func (a *IdiomAPI) ListBySentence(sentenceID int64) ([]*domain.Idiom, error) {
	ctx := context.Background()
	return a.idioms.ListBySentence(ctx, sentenceID)
}

// Delete removes the idiom together with its annotation. Undo brings both
// back.
func (a *IdiomAPI) Delete(id int64) (bool, error) {
	ctx := context.Background()
	cmd := &commands.DeleteIdiom{
		Idioms:      a.idioms,
		Annotations: a.annotations,
		Store:       a.store,
		IdiomID:     id,
	}
	if err := a.run.Run(ctx, "delete_idiom", cmd); err != nil {
		return false, err
	}
	return true, nil
}
