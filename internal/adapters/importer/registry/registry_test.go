package registry

import (
	"testing"

	"wordhord/internal/adapters/importer/plaintext"
	"wordhord/internal/adapters/importer/teixml"
)

func TestRegistry(t *testing.T) {
	r := New()
	r.Register(plaintext.New())
	r.Register(teixml.New())

	if _, ok := r.Get("plaintext"); !ok {
		t.Error("plaintext not found")
	}
	if _, ok := r.Get("docx"); ok {
		t.Error("unregistered format found")
	}
	if got := len(r.Formats()); got != 2 {
		t.Errorf("formats: %d", got)
	}
}
