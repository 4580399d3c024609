package ports

import "wordhord/internal/domain"

// ExportDocument is the fully loaded view of one project handed to format
// exporters: sentences in display order, each with tokens, annotations,
// idioms and notes.
type ExportDocument struct {
	Project   *domain.Project
	Sentences []*ExportSentence
}

type ExportSentence struct {
	Sentence *domain.Sentence
	Tokens   []*ExportToken
	Idioms   []*ExportIdiom
	Notes    []*domain.Note
}

type ExportToken struct {
	Token      *domain.Token
	Annotation *domain.Annotation // nil when unannotated
}

type ExportIdiom struct {
	Idiom      *domain.Idiom
	Annotation *domain.Annotation
}

type Exporter interface {
	Format() string
	Export(doc *ExportDocument) ([]byte, error)
}
