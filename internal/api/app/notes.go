package app

import (
	"context"

	"wordhord/internal/domain"
	"wordhord/internal/ports"
	"wordhord/internal/usecase/commands"
)

type NoteAPI struct {
	repo ports.NoteRepository
	run  *Commander
}

func NewNoteAPI(repo ports.NoteRepository, run *Commander) *NoteAPI {
	return &NoteAPI{repo: repo, run: run}
}

// SetNoteRequest creates a note when ID is zero and updates it otherwise.
// Token IDs are optional; both nil means the note hangs on the sentence.
type SetNoteRequest struct {
	ID           int64  `json:"id"`
	SentenceID   int64  `json:"sentence_id"`
	StartTokenID *int64 `json:"start_token_id"`
	EndTokenID   *int64 `json:"end_token_id"`
	Text         string `json:"text"`
}

func (a *NoteAPI) Set(req SetNoteRequest) (*domain.Note, error) {
	ctx := context.Background()
	cmd := &commands.SetNote{
		Notes: a.repo,
		Note: domain.Note{
			ID:           req.ID,
			SentenceID:   req.SentenceID,
			StartTokenID: req.StartTokenID,
			EndTokenID:   req.EndTokenID,
			Text:         req.Text,
		},
	}
	if err := a.run.Run(ctx, "set_note", cmd); err != nil {
		return nil, err
	}
	return a.repo.Get(ctx, cmd.Note.ID)
}

func (a *NoteAPI) ListBySentence(sentenceID int64) ([]*domain.Note, error) {
	ctx := context.Background()
	return a.repo.ListBySentence(ctx, sentenceID)
}

func (a *NoteAPI) Delete(id int64) (bool, error) {
	ctx := context.Background()
	cmd := &commands.DeleteNote{Notes: a.repo, NoteID: id}
	if err := a.run.Run(ctx, "delete_note", cmd); err != nil {
		return false, err
	}
	return true, nil
}
