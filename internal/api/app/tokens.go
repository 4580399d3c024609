package app

import (
	"context"

	"wordhord/internal/domain"
	"wordhord/internal/ports"
)

type TokenAPI struct {
	repo ports.TokenRepository
}

func NewTokenAPI(repo ports.TokenRepository) *TokenAPI { return &TokenAPI{repo: repo} }

func (a *TokenAPI) Get(id int64) (*domain.Token, error) {
	ctx := context.Background()
	return a.repo.Get(ctx, id)
}

func (a *TokenAPI) ListBySentence(sentenceID int64) ([]*domain.Token, error) {
	ctx := context.Background()
	return a.repo.ListBySentence(ctx, sentenceID)
}
