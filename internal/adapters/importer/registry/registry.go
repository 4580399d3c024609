package registry

import "wordhord/internal/ports"

type Registry struct {
	byFormat map[string]ports.Importer
}

func New() *Registry { return &Registry{byFormat: map[string]ports.Importer{}} }

func (r *Registry) Register(i ports.Importer) { r.byFormat[i.Format()] = i }

func (r *Registry) Get(format string) (ports.Importer, bool) {
	i, ok := r.byFormat[format]
	return i, ok
}

func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.byFormat))
	for f := range r.byFormat {
		out = append(out, f)
	}
	return out
}
