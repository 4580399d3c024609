package app

import (
	"context"

	"wordhord/internal/domain"
	"wordhord/internal/ports"
)

type ProjectAPI struct {
	repo      ports.ProjectRepository
	sentences ports.SentenceRepository
	run       *Commander
}

func NewProjectAPI(repo ports.ProjectRepository, sentences ports.SentenceRepository, run *Commander) *ProjectAPI {
	return &ProjectAPI{repo: repo, sentences: sentences, run: run}
}

func (a *ProjectAPI) Create(name, source string) (*domain.Project, error) {
	ctx := context.Background()
	p := &domain.Project{Name: name, Source: source}
	if err := a.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	a.run.Hooks.markDirty()
	return p, nil
}

func (a *ProjectAPI) Get(id int64) (*domain.Project, error) {
	ctx := context.Background()
	return a.repo.Get(ctx, id)
}

// ProjectSummary is the list row shown in the project picker.
type ProjectSummary struct {
	*domain.Project
	Sentences int `json:"sentences"`
}

func (a *ProjectAPI) List() ([]*ProjectSummary, error) {
	ctx := context.Background()
	ps, err := a.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*ProjectSummary, 0, len(ps))
	for _, p := range ps {
		n, err := a.sentences.CountByProject(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, &ProjectSummary{Project: p, Sentences: n})
	}
	return out, nil
}

func (a *ProjectAPI) Update(id int64, name, source string) (*domain.Project, error) {
	ctx := context.Background()
	p, err := a.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = name
	p.Source = source
	if err := a.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	a.run.Hooks.markDirty()
	return p, nil
}

// Delete removes a project and everything under it, and clears the history
// stacks: recorded commands would otherwise point at the deleted rows.
func (a *ProjectAPI) Delete(id int64) (bool, error) {
	ctx := context.Background()
	if err := a.repo.Delete(ctx, id); err != nil {
		return false, err
	}
	a.run.Reset()
	a.run.Hooks.markDirty()
	return true, nil
}
