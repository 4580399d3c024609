package reconciler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"wordhord/internal/domain"
	"wordhord/internal/ports"
	"wordhord/internal/text"
)

type Service struct {
	Store ports.TxRunner
	Log   zerolog.Logger
}

func New(store ports.TxRunner, log zerolog.Logger) *Service {
	return &Service{Store: store, Log: log}
}

// Reconcile re-tokenizes newText and rewrites the sentence's token rows so
// surviving words keep their identity. It runs in one transaction: on any
// error nothing is committed, because a partial renumbering would detach
// annotations from the wrong tokens. The returned messages are advisory
// notices about idioms the edit destroyed; they do not make the edit fail.
func (s *Service) Reconcile(ctx context.Context, sentenceID int64, newText string) ([]string, error) {
	surfaces := text.Tokenize(newText)
	var messages []string
	err := s.Store.WithStore(ctx, func(st ports.SentenceStore) error {
		var err error
		messages, err = s.apply(ctx, st, sentenceID, newText, surfaces)
		return err
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *Service) apply(ctx context.Context, st ports.SentenceStore, sentenceID int64, newText string, surfaces []string) ([]string, error) {
	if _, err := st.Sentence(ctx, sentenceID); err != nil {
		return nil, err
	}
	old, err := st.TokensBySentence(ctx, sentenceID)
	if err != nil {
		return nil, err
	}
	plan := BuildPlan(old, surfaces)

	oldPos := make(map[int64]int, len(old))
	for _, t := range old {
		oldPos[t.ID] = t.Position
	}
	newPos := make(map[int64]int, len(plan.Kept))
	for _, b := range plan.Kept {
		newPos[b.Token.ID] = b.Position
	}
	deletedPos := make(map[int]bool, len(plan.Deleted))
	deletedIDs := make(map[int64]bool, len(plan.Deleted))
	for _, t := range plan.Deleted {
		deletedPos[t.Position] = true
		deletedIDs[t.ID] = true
	}

	messages, err := s.cascadeIdioms(ctx, st, sentenceID, oldPos, newPos, deletedPos)
	if err != nil {
		return nil, err
	}

	if len(plan.Deleted) > 0 {
		if err := s.degradeNotes(ctx, st, sentenceID, deletedIDs); err != nil {
			return nil, err
		}
		for _, t := range plan.Deleted {
			if err := st.DeleteAnnotationByToken(ctx, t.ID); err != nil {
				return nil, err
			}
			if err := st.DeleteToken(ctx, t.ID); err != nil {
				return nil, err
			}
		}
	}

	// Two-phase renumbering: park everything at scratch positions, then
	// write the final 0..N-1 layout.
	if err := st.ParkTokenPositions(ctx, sentenceID); err != nil {
		return nil, err
	}
	for _, b := range plan.Kept {
		t := *b.Token
		t.Position = b.Position
		t.Surface = b.Surface
		if err := st.UpdateToken(ctx, &t); err != nil {
			return nil, err
		}
	}
	for _, c := range plan.Created {
		t := &domain.Token{SentenceID: sentenceID, Position: c.Position, Surface: c.Surface}
		if err := st.InsertToken(ctx, t); err != nil {
			return nil, err
		}
	}
	if err := st.SetSentenceText(ctx, sentenceID, newText); err != nil {
		return nil, err
	}

	s.Log.Debug().
		Int64("sentence_id", sentenceID).
		Int("kept", len(plan.Kept)).
		Int("created", len(plan.Created)).
		Int("deleted", len(plan.Deleted)).
		Msg("reconciled sentence")
	return messages, nil
}

// cascadeIdioms deletes every idiom the edit breaks: any pre-edit position
// inside its span was removed, or its endpoints survive but end up out of
// order. Each deletion yields one advisory message.
func (s *Service) cascadeIdioms(ctx context.Context, st ports.SentenceStore, sentenceID int64, oldPos, newPos map[int64]int, deletedPos map[int]bool) ([]string, error) {
	idioms, err := st.IdiomsBySentence(ctx, sentenceID)
	if err != nil {
		return nil, err
	}
	var messages []string
	for _, idm := range idioms {
		start, okS := oldPos[idm.StartTokenID]
		end, okE := oldPos[idm.EndTokenID]
		doomed := !okS || !okE
		if !doomed {
			for p := start; p <= end; p++ {
				if deletedPos[p] {
					doomed = true
					break
				}
			}
		}
		if !doomed {
			ns, okNS := newPos[idm.StartTokenID]
			ne, okNE := newPos[idm.EndTokenID]
			doomed = !okNS || !okNE || ns > ne
		}
		if !doomed {
			continue
		}
		if err := st.DeleteAnnotationByIdiom(ctx, idm.ID); err != nil {
			return nil, err
		}
		if err := st.DeleteIdiom(ctx, idm.ID); err != nil {
			return nil, err
		}
		messages = append(messages, idiomMessage(idm))
		s.Log.Info().
			Int64("sentence_id", sentenceID).
			Int64("idiom_id", idm.ID).
			Str("label", idm.Label).
			Msg("idiom deleted by edit")
	}
	return messages, nil
}

// degradeNotes nulls note endpoints that reference deleted tokens. Notes
// themselves always survive a text edit.
func (s *Service) degradeNotes(ctx context.Context, st ports.SentenceStore, sentenceID int64, deletedIDs map[int64]bool) error {
	notes, err := st.NotesBySentence(ctx, sentenceID)
	if err != nil {
		return err
	}
	for _, n := range notes {
		start, end := n.StartTokenID, n.EndTokenID
		changed := false
		if start != nil && deletedIDs[*start] {
			start = nil
			changed = true
		}
		if end != nil && deletedIDs[*end] {
			end = nil
			changed = true
		}
		if !changed {
			continue
		}
		if err := st.SetNoteSpan(ctx, n.ID, start, end); err != nil {
			return err
		}
	}
	return nil
}

func idiomMessage(i *domain.Idiom) string {
	if i.Label != "" {
		return fmt.Sprintf("Idiom annotation deleted: %s", i.Label)
	}
	return "Idiom annotation deleted"
}
