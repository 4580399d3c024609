package app

import (
	"context"
	"time"

	"wordhord/internal/domain"
	"wordhord/internal/ports"
	"wordhord/internal/usecase/commands"
	"wordhord/internal/usecase/reconciler"
)

type SentenceAPI struct {
	sentences   ports.SentenceRepository
	tokens      ports.TokenRepository
	annotations ports.AnnotationRepository
	idioms      ports.IdiomRepository
	notes       ports.NoteRepository
	rec         *reconciler.Service
	run         *Commander
}

func NewSentenceAPI(sentences ports.SentenceRepository, tokens ports.TokenRepository,
	annotations ports.AnnotationRepository, idioms ports.IdiomRepository,
	notes ports.NoteRepository, rec *reconciler.Service, run *Commander) *SentenceAPI {
	return &SentenceAPI{
		sentences:   sentences,
		tokens:      tokens,
		annotations: annotations,
		idioms:      idioms,
		notes:       notes,
		rec:         rec,
		run:         run,
	}
}

// TokenView is one token with its annotation resolved, nil when bare.
type TokenView struct {
	*domain.Token
	Annotation *domain.Annotation `json:"annotation,omitempty"`
}

// IdiomView resolves the endpoint token IDs to display positions so the
// front end can paint the span without a second lookup.
type IdiomView struct {
	*domain.Idiom
	Annotation *domain.Annotation `json:"annotation,omitempty"`
	StartPos   int                `json:"start_pos"`
	EndPos     int                `json:"end_pos"`
}

// SentenceView is everything the editor pane renders for one sentence.
type SentenceView struct {
	Sentence *domain.Sentence `json:"sentence"`
	Tokens   []*TokenView     `json:"tokens"`
	Idioms   []*IdiomView     `json:"idioms"`
	Notes    []*domain.Note   `json:"notes"`
}

func (a *SentenceAPI) List(projectID int64) ([]*domain.Sentence, error) {
	ctx := context.Background()
	return a.sentences.ListByProject(ctx, projectID)
}

func (a *SentenceAPI) Get(id int64) (*SentenceView, error) {
	ctx := context.Background()
	return a.view(ctx, id)
}

// EditTextResult carries the reloaded sentence plus the advisory messages
// reconciliation produced, e.g. a cascaded idiom deletion.
type EditTextResult struct {
	View     *SentenceView `json:"view"`
	Messages []string      `json:"messages,omitempty"`
}

// EditText replaces a sentence's text and reconciles tokens, annotations,
// idioms and notes against the new form. Undoable.
func (a *SentenceAPI) EditText(id int64, text string) (*EditTextResult, error) {
	ctx := context.Background()
	cmd := &commands.EditSentenceText{
		Rec:        a.rec,
		Sentences:  a.sentences,
		SentenceID: id,
		NewText:    text,
	}
	start := time.Now()
	if err := a.run.Run(ctx, "edit_text", cmd); err != nil {
		return nil, err
	}
	if m := a.run.Hooks.Metrics; m != nil {
		m.RecordReconcile(time.Since(start))
	}
	msgs := cmd.Messages()
	a.run.Hooks.emit("sentence.reconciled", map[string]any{
		"sentence_id": id,
		"messages":    msgs,
	})
	view, err := a.view(ctx, id)
	if err != nil {
		return nil, err
	}
	return &EditTextResult{View: view, Messages: msgs}, nil
}

func (a *SentenceAPI) SetTranslation(id int64, translation string) (*domain.Sentence, error) {
	ctx := context.Background()
	cmd := &commands.SetTranslation{Sentences: a.sentences, SentenceID: id, Translation: translation}
	if err := a.run.Run(ctx, "set_translation", cmd); err != nil {
		return nil, err
	}
	return a.sentences.Get(ctx, id)
}

func (a *SentenceAPI) ToggleParagraphBreak(id int64) (*domain.Sentence, error) {
	ctx := context.Background()
	cmd := &commands.ToggleParagraphBreak{Sentences: a.sentences, SentenceID: id}
	if err := a.run.Run(ctx, "toggle_paragraph", cmd); err != nil {
		return nil, err
	}
	return a.sentences.Get(ctx, id)
}

func (a *SentenceAPI) view(ctx context.Context, id int64) (*SentenceView, error) {
	sent, err := a.sentences.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tokens, err := a.tokens.ListBySentence(ctx, id)
	if err != nil {
		return nil, err
	}
	anns, err := a.annotations.ListBySentence(ctx, id)
	if err != nil {
		return nil, err
	}
	byToken := map[int64]*domain.Annotation{}
	byIdiom := map[int64]*domain.Annotation{}
	for _, an := range anns {
		if an.TokenID != nil {
			byToken[*an.TokenID] = an
		}
		if an.IdiomID != nil {
			byIdiom[*an.IdiomID] = an
		}
	}
	posByToken := map[int64]int{}
	view := &SentenceView{Sentence: sent}
	for _, t := range tokens {
		posByToken[t.ID] = t.Position
		view.Tokens = append(view.Tokens, &TokenView{Token: t, Annotation: byToken[t.ID]})
	}
	idioms, err := a.idioms.ListBySentence(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, i := range idioms {
		view.Idioms = append(view.Idioms, &IdiomView{
			Idiom:      i,
			Annotation: byIdiom[i.ID],
			StartPos:   posByToken[i.StartTokenID],
			EndPos:     posByToken[i.EndTokenID],
		})
	}
	if view.Notes, err = a.notes.ListBySentence(ctx, id); err != nil {
		return nil, err
	}
	return view, nil
}
