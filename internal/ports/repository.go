package ports

import (
	"context"
	"wordhord/internal/domain"
)

type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	Get(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id int64) error
}

type SentenceRepository interface {
	Create(ctx context.Context, s *domain.Sentence) error
	Get(ctx context.Context, id int64) (*domain.Sentence, error)
	ListByProject(ctx context.Context, projectID int64) ([]*domain.Sentence, error)
	Update(ctx context.Context, s *domain.Sentence) error
	Delete(ctx context.Context, id int64) error
	// ShiftPositions moves every sentence of the project at or after fromPos
	// by delta, opening or closing a gap in the display order.
	ShiftPositions(ctx context.Context, projectID int64, fromPos, delta int) error
	CountByProject(ctx context.Context, projectID int64) (int, error)
}

type TokenRepository interface {
	Get(ctx context.Context, id int64) (*domain.Token, error)
	ListBySentence(ctx context.Context, sentenceID int64) ([]*domain.Token, error)
}

type AnnotationRepository interface {
	UpsertForToken(ctx context.Context, a *domain.Annotation) error
	UpsertForIdiom(ctx context.Context, a *domain.Annotation) error
	GetByToken(ctx context.Context, tokenID int64) (*domain.Annotation, error)
	GetByIdiom(ctx context.Context, idiomID int64) (*domain.Annotation, error)
	ListBySentence(ctx context.Context, sentenceID int64) ([]*domain.Annotation, error)
	DeleteByToken(ctx context.Context, tokenID int64) error
	DeleteByIdiom(ctx context.Context, idiomID int64) error
}

type IdiomRepository interface {
	Create(ctx context.Context, i *domain.Idiom) error
	Get(ctx context.Context, id int64) (*domain.Idiom, error)
	ListBySentence(ctx context.Context, sentenceID int64) ([]*domain.Idiom, error)
	Delete(ctx context.Context, id int64) error
}

type NoteRepository interface {
	Create(ctx context.Context, n *domain.Note) error
	Get(ctx context.Context, id int64) (*domain.Note, error)
	ListBySentence(ctx context.Context, sentenceID int64) ([]*domain.Note, error)
	Update(ctx context.Context, n *domain.Note) error
	Delete(ctx context.Context, id int64) error
}

type PresetRepository interface {
	Upsert(ctx context.Context, p *domain.Preset) error
	Get(ctx context.Context, id int64) (*domain.Preset, error)
	List(ctx context.Context) ([]*domain.Preset, error)
	Delete(ctx context.Context, id int64) error
}

type JobRepository interface {
	Create(ctx context.Context, j *domain.Job) (int64, error)
	UpdateProgress(ctx context.Context, jobID int64, done, total int, status string) error
	SetError(ctx context.Context, jobID int64, errMsg string) error
	AddLog(ctx context.Context, jl *domain.JobLog) error
	Get(ctx context.Context, jobID int64) (*domain.Job, error)
	List(ctx context.Context, limit int) ([]*domain.Job, error)
	ListLogs(ctx context.Context, jobID int64, limit int) ([]*domain.JobLog, error)
	Delete(ctx context.Context, jobID int64) error
}

type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) ([]*domain.Setting, error)
}
