// Package exporter assembles the fully loaded view of a project and hands
// it to a format adapter.
package exporter

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"wordhord/internal/adapters/exporter/registry"
	"wordhord/internal/domain"
	"wordhord/internal/ports"
)

type Service struct {
	Projects    ports.ProjectRepository
	Sentences   ports.SentenceRepository
	Tokens      ports.TokenRepository
	Annotations ports.AnnotationRepository
	Idioms      ports.IdiomRepository
	Notes       ports.NoteRepository
	Reg         *registry.Registry
	Log         zerolog.Logger
}

func New(projects ports.ProjectRepository, sentences ports.SentenceRepository,
	tokens ports.TokenRepository, annotations ports.AnnotationRepository,
	idioms ports.IdiomRepository, notes ports.NoteRepository,
	reg *registry.Registry, log zerolog.Logger) *Service {
	return &Service{
		Projects:    projects,
		Sentences:   sentences,
		Tokens:      tokens,
		Annotations: annotations,
		Idioms:      idioms,
		Notes:       notes,
		Reg:         reg,
		Log:         log,
	}
}

type ExportArgs struct {
	ProjectID int64
	Format    string
	Range     string // optional 1-based selection, e.g. "1,4-9"; empty means all
}

type ExportResult struct {
	Filename  string
	Content   []byte
	Sentences int
}

func (s *Service) Export(ctx context.Context, in ExportArgs) (ExportResult, error) {
	p, err := s.Projects.Get(ctx, in.ProjectID)
	if err != nil {
		return ExportResult{}, err
	}
	exp, ok := s.Reg.Get(in.Format)
	if !ok {
		return ExportResult{}, errors.New("no exporter for format: " + in.Format)
	}
	var sel *Selection
	if in.Range != "" {
		if sel, err = ParseSelection(in.Range); err != nil {
			return ExportResult{}, err
		}
	}

	sentences, err := s.Sentences.ListByProject(ctx, p.ID)
	if err != nil {
		return ExportResult{}, err
	}
	doc := &ports.ExportDocument{Project: p}
	for _, sent := range sentences {
		if sel != nil && !sel.Contains(sent.Position+1) {
			continue
		}
		es, err := s.loadSentence(ctx, sent)
		if err != nil {
			return ExportResult{}, err
		}
		doc.Sentences = append(doc.Sentences, es)
	}

	content, err := exp.Export(doc)
	if err != nil {
		return ExportResult{}, err
	}
	s.Log.Info().Int64("project_id", p.ID).Str("format", in.Format).
		Int("sentences", len(doc.Sentences)).Msg("export finished")
	return ExportResult{
		Filename:  fileName(p.Name, in.Format),
		Content:   content,
		Sentences: len(doc.Sentences),
	}, nil
}

func (s *Service) loadSentence(ctx context.Context, sent *domain.Sentence) (*ports.ExportSentence, error) {
	tokens, err := s.Tokens.ListBySentence(ctx, sent.ID)
	if err != nil {
		return nil, err
	}
	anns, err := s.Annotations.ListBySentence(ctx, sent.ID)
	if err != nil {
		return nil, err
	}
	byToken := map[int64]*domain.Annotation{}
	byIdiom := map[int64]*domain.Annotation{}
	for _, a := range anns {
		if a.TokenID != nil {
			byToken[*a.TokenID] = a
		}
		if a.IdiomID != nil {
			byIdiom[*a.IdiomID] = a
		}
	}
	idioms, err := s.Idioms.ListBySentence(ctx, sent.ID)
	if err != nil {
		return nil, err
	}
	notes, err := s.Notes.ListBySentence(ctx, sent.ID)
	if err != nil {
		return nil, err
	}

	es := &ports.ExportSentence{Sentence: sent, Notes: notes}
	for _, tk := range tokens {
		es.Tokens = append(es.Tokens, &ports.ExportToken{Token: tk, Annotation: byToken[tk.ID]})
	}
	for _, idm := range idioms {
		es.Idioms = append(es.Idioms, &ports.ExportIdiom{Idiom: idm, Annotation: byIdiom[idm.ID]})
	}
	return es, nil
}

// fileName derives a filesystem-safe name from the project title.
func fileName(title, format string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, title)
	if safe == "" {
		safe = "project"
	}
	return safe + "." + format
}
