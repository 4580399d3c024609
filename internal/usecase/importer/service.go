// Package importer turns source files into annotated-ready projects: format
// adapters yield paragraphs, the splitter and tokenizer derive rows, and
// everything lands in one transaction.
package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	projjson "wordhord/internal/adapters/exporter/json"
	"wordhord/internal/adapters/importer/registry"
	"wordhord/internal/domain"
	"wordhord/internal/ports"
	"wordhord/internal/text"
)

type Service struct {
	Projects ports.ProjectRepository
	Store    ports.TxRunner
	Registry *registry.Registry
	Log      zerolog.Logger
}

func New(projects ports.ProjectRepository, store ports.TxRunner, reg *registry.Registry, log zerolog.Logger) *Service {
	return &Service{Projects: projects, Store: store, Registry: reg, Log: log}
}

type ImportArgs struct {
	ProjectName string // overrides the title found in the source
	Source      string // provenance, e.g. edition or URL
	Format      string
	Content     []byte
}

type ImportResult struct {
	ProjectID int64
	Sentences int
	Tokens    int
}

// Import parses the source, segments it and persists a new project. The
// first sentence of every paragraph after the first carries the paragraph
// flag.
func (s *Service) Import(ctx context.Context, in ImportArgs) (ImportResult, error) {
	imp, ok := s.Registry.Get(in.Format)
	if !ok {
		return ImportResult{}, errors.New("unsupported format: " + in.Format)
	}
	pr, err := imp.Parse(in.Content)
	if err != nil {
		return ImportResult{}, fmt.Errorf("parse %s: %w", in.Format, err)
	}

	name := in.ProjectName
	if name == "" {
		name = pr.Title
	}
	if name == "" {
		name = "Untitled"
	}
	p := &domain.Project{Name: name, Source: in.Source}
	if err := s.Projects.Create(ctx, p); err != nil {
		return ImportResult{}, err
	}

	res := ImportResult{ProjectID: p.ID}
	err = s.Store.WithStore(ctx, func(st ports.SentenceStore) error {
		pos := 0
		for pi, para := range pr.Paragraphs {
			for si, sentText := range text.SplitSentences(para) {
				sent := &domain.Sentence{
					ProjectID:      p.ID,
					Position:       pos,
					Text:           sentText,
					ParagraphBreak: si == 0 && pi > 0,
				}
				if err := st.InsertSentence(ctx, sent); err != nil {
					return err
				}
				for ti, surface := range text.Tokenize(sentText) {
					tok := &domain.Token{SentenceID: sent.ID, Position: ti, Surface: surface}
					if err := st.InsertToken(ctx, tok); err != nil {
						return err
					}
					res.Tokens++
				}
				pos++
				res.Sentences++
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	s.Log.Info().Int64("project_id", p.ID).Str("format", in.Format).
		Int("sentences", res.Sentences).Int("tokens", res.Tokens).Msg("import finished")
	return res, nil
}

// ImportProject restores a project from the interchange JSON written by the
// json exporter, rebuilding token identity from positions.
func (s *Service) ImportProject(ctx context.Context, data []byte) (ImportResult, error) {
	doc, err := projjson.Decode(data)
	if err != nil {
		return ImportResult{}, err
	}
	name := doc.Title
	if name == "" {
		name = "Untitled"
	}
	p := &domain.Project{Name: name, Source: doc.Source}
	if err := s.Projects.Create(ctx, p); err != nil {
		return ImportResult{}, err
	}

	res := ImportResult{ProjectID: p.ID}
	err = s.Store.WithStore(ctx, func(st ports.SentenceStore) error {
		for pos, sd := range doc.Sentences {
			// Positions are renumbered on the way in; the document order
			// is authoritative, stored positions are not trusted.
			sent := &domain.Sentence{
				ProjectID:      p.ID,
				Position:       pos,
				Text:           sd.Text,
				Translation:    sd.Translation,
				ParagraphBreak: sd.ParagraphBreak,
			}
			if err := st.InsertSentence(ctx, sent); err != nil {
				return err
			}
			res.Sentences++

			byPos := make(map[int]*domain.Token, len(sd.Tokens))
			for _, td := range sd.Tokens {
				tok := &domain.Token{SentenceID: sent.ID, Position: td.Position, Surface: td.Surface}
				if err := st.InsertToken(ctx, tok); err != nil {
					return err
				}
				byPos[td.Position] = tok
				res.Tokens++
				if td.Annotation == nil {
					continue
				}
				ann := td.Annotation.Values()
				ann.TokenID = &tok.ID
				if err := st.InsertAnnotation(ctx, &ann); err != nil {
					return err
				}
			}
			for _, id := range sd.Idioms {
				start, okS := byPos[id.Start]
				end, okE := byPos[id.End]
				if !okS || !okE {
					s.Log.Warn().Int("start", id.Start).Int("end", id.End).
						Msg("idiom span points outside the sentence, skipped")
					continue
				}
				idiom := &domain.Idiom{
					SentenceID:   sent.ID,
					StartTokenID: start.ID,
					EndTokenID:   end.ID,
					Label:        id.Label,
				}
				if err := st.InsertIdiom(ctx, idiom); err != nil {
					return err
				}
				if id.Annotation != nil {
					ann := id.Annotation.Values()
					ann.IdiomID = &idiom.ID
					if err := st.InsertAnnotation(ctx, &ann); err != nil {
						return err
					}
				}
			}
			for _, nd := range sd.Notes {
				note := &domain.Note{SentenceID: sent.ID, Text: nd.Text}
				if nd.Start != nil {
					if tk, ok := byPos[*nd.Start]; ok {
						note.StartTokenID = &tk.ID
					}
				}
				if nd.End != nil {
					if tk, ok := byPos[*nd.End]; ok {
						note.EndTokenID = &tk.ID
					}
				}
				if err := st.InsertNote(ctx, note); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	s.Log.Info().Int64("project_id", p.ID).Int("sentences", res.Sentences).Msg("project restored from interchange")
	return res, nil
}
