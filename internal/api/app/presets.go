package app

import (
	"context"

	"wordhord/internal/domain"
	"wordhord/internal/ports"
	"wordhord/internal/usecase/commands"
)

// PresetAPI manages saved annotation bundles. Preset CRUD is configuration,
// not text state, so it bypasses the undo stack; applying one is a regular
// annotate command and undoes like any other.
type PresetAPI struct {
	repo        ports.PresetRepository
	annotations ports.AnnotationRepository
	run         *Commander
}

func NewPresetAPI(repo ports.PresetRepository, annotations ports.AnnotationRepository, run *Commander) *PresetAPI {
	return &PresetAPI{repo: repo, annotations: annotations, run: run}
}

type UpsertPresetRequest struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	Values    domain.Annotation `json:"values"`
	SortOrder int               `json:"sort_order"`
}

func (a *PresetAPI) Upsert(req UpsertPresetRequest) (*domain.Preset, error) {
	ctx := context.Background()
	p := &domain.Preset{ID: req.ID, Name: req.Name, SortOrder: req.SortOrder}
	if err := p.SetValues(req.Values); err != nil {
		return nil, err
	}
	if err := a.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	a.run.Hooks.markDirty()
	return p, nil
}

func (a *PresetAPI) List() ([]*domain.Preset, error) {
	ctx := context.Background()
	return a.repo.List(ctx)
}

func (a *PresetAPI) Delete(id int64) (bool, error) {
	ctx := context.Background()
	if err := a.repo.Delete(ctx, id); err != nil {
		return false, err
	}
	a.run.Hooks.markDirty()
	return true, nil
}

// Apply stamps a preset's field bundle onto a token.
func (a *PresetAPI) Apply(presetID, tokenID int64) (*domain.Annotation, error) {
	ctx := context.Background()
	p, err := a.repo.Get(ctx, presetID)
	if err != nil {
		return nil, err
	}
	values, err := p.Values()
	if err != nil {
		return nil, err
	}
	cmd := &commands.AnnotateToken{Annotations: a.annotations, TokenID: tokenID, Values: values}
	if err := a.run.Run(ctx, "apply_preset", cmd); err != nil {
		return nil, err
	}
	return a.annotations.GetByToken(ctx, tokenID)
}
