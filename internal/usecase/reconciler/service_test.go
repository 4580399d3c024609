package reconciler

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"wordhord/internal/adapters/db/sqlite"
	"wordhord/internal/domain"
	"wordhord/internal/ports"
)

type fixture struct {
	db       *sql.DB
	svc      *Service
	sentence *domain.Sentence
	tokens   []*domain.Token
}

// newFixture seeds one project with one sentence and its tokens.
func newFixture(t *testing.T, text string, surfaces ...string) *fixture {
	t.Helper()
	db, err := sqlite.Init(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()

	p := &domain.Project{Name: "test"}
	if err := sqlite.NewProjectRepo(db).Create(ctx, p); err != nil {
		t.Fatalf("project: %v", err)
	}
	s := &domain.Sentence{ProjectID: p.ID, Position: 0, Text: text}
	if err := sqlite.NewSentenceRepo(db).Create(ctx, s); err != nil {
		t.Fatalf("sentence: %v", err)
	}
	tokRepo := sqlite.NewTokenRepo(db)
	var toks []*domain.Token
	for i, sf := range surfaces {
		tk := &domain.Token{SentenceID: s.ID, Position: i, Surface: sf}
		if err := tokRepo.Insert(ctx, tk); err != nil {
			t.Fatalf("token %q: %v", sf, err)
		}
		toks = append(toks, tk)
	}
	svc := New(sqlite.NewStore(db), zerolog.Nop())
	return &fixture{db: db, svc: svc, sentence: s, tokens: toks}
}

func (f *fixture) reload(t *testing.T) []*domain.Token {
	t.Helper()
	toks, err := sqlite.NewTokenRepo(f.db).ListBySentence(context.Background(), f.sentence.ID)
	if err != nil {
		t.Fatalf("list tokens: %v", err)
	}
	return toks
}

// checkLayout verifies the contiguous 0..N-1 position invariant and the
// surface sequence.
func checkLayout(t *testing.T, toks []*domain.Token, surfaces ...string) {
	t.Helper()
	if len(toks) != len(surfaces) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(surfaces))
	}
	for i, tk := range toks {
		if tk.Position != i {
			t.Errorf("token %d at position %d, want %d", tk.ID, tk.Position, i)
		}
		if tk.Surface != surfaces[i] {
			t.Errorf("position %d surface %q, want %q", i, tk.Surface, surfaces[i])
		}
	}
}

func TestReconcileIdenticalTextKeepsIDs(t *testing.T) {
	f := newFixture(t, "Se cyning", "Se", "cyning")
	msgs, err := f.svc.Reconcile(context.Background(), f.sentence.ID, "Se cyning")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("unexpected messages: %v", msgs)
	}
	got := f.reload(t)
	checkLayout(t, got, "Se", "cyning")
	if got[0].ID != f.tokens[0].ID || got[1].ID != f.tokens[1].ID {
		t.Fatal("token identity changed on identical text")
	}
}

func TestReconcileReorderKeepsIDs(t *testing.T) {
	f := newFixture(t, "Se cyning", "Se", "cyning")
	if _, err := f.svc.Reconcile(context.Background(), f.sentence.ID, "cyning Se"); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	got := f.reload(t)
	checkLayout(t, got, "cyning", "Se")
	if got[0].ID != f.tokens[1].ID {
		t.Fatalf("cyning should keep id %d, got %d", f.tokens[1].ID, got[0].ID)
	}
	if got[1].ID != f.tokens[0].ID {
		t.Fatalf("Se should keep id %d, got %d", f.tokens[0].ID, got[1].ID)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	f := newFixture(t, "Se cyning rād", "Se", "cyning", "rād")
	ctx := context.Background()
	if _, err := f.svc.Reconcile(ctx, f.sentence.ID, "Se cyning rād"); err != nil {
		t.Fatalf("first: %v", err)
	}
	first := f.reload(t)
	if _, err := f.svc.Reconcile(ctx, f.sentence.ID, "Se cyning rād"); err != nil {
		t.Fatalf("second: %v", err)
	}
	second := f.reload(t)
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Position != second[i].Position {
			t.Fatalf("token set drifted between identical reconciles: %+v vs %+v", first[i], second[i])
		}
	}
}

func TestReconcileMiddleRemovalCascadesIdiom(t *testing.T) {
	f := newFixture(t, "swā hwæt swā", "swā", "hwæt", "swā")
	ctx := context.Background()

	idiom := &domain.Idiom{
		SentenceID:   f.sentence.ID,
		StartTokenID: f.tokens[0].ID,
		EndTokenID:   f.tokens[2].ID,
		Label:        "swā hwæt swā",
	}
	if err := sqlite.NewIdiomRepo(f.db).Create(ctx, idiom); err != nil {
		t.Fatalf("idiom: %v", err)
	}
	annRepo := sqlite.NewAnnotationRepo(f.db)
	if err := annRepo.UpsertForIdiom(ctx, &domain.Annotation{IdiomID: &idiom.ID, Meaning: "whatsoever"}); err != nil {
		t.Fatalf("annotation: %v", err)
	}

	msgs, err := f.svc.Reconcile(ctx, f.sentence.ID, "swā swā")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("want exactly one notice, got %v", msgs)
	}
	if !strings.Contains(msgs[0], "Idiom annotation deleted") {
		t.Fatalf("notice does not mention idiom deletion: %q", msgs[0])
	}

	got := f.reload(t)
	checkLayout(t, got, "swā", "swā")
	if got[0].ID != f.tokens[0].ID || got[1].ID != f.tokens[2].ID {
		t.Fatal("outer swā tokens should keep their identity")
	}
	if _, err := sqlite.NewIdiomRepo(f.db).Get(ctx, idiom.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("idiom should be gone: %v", err)
	}
	if _, err := annRepo.GetByIdiom(ctx, idiom.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("idiom annotation should be gone: %v", err)
	}
}

func TestReconcileReorderedEndpointsCascadeIdiom(t *testing.T) {
	f := newFixture(t, "eald enta geweorc", "eald", "enta", "geweorc")
	ctx := context.Background()
	idiom := &domain.Idiom{
		SentenceID:   f.sentence.ID,
		StartTokenID: f.tokens[0].ID,
		EndTokenID:   f.tokens[2].ID,
	}
	if err := sqlite.NewIdiomRepo(f.db).Create(ctx, idiom); err != nil {
		t.Fatalf("idiom: %v", err)
	}

	// Both endpoints survive but finish out of order.
	msgs, err := f.svc.Reconcile(ctx, f.sentence.ID, "geweorc enta eald")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("want one notice, got %v", msgs)
	}
	if _, err := sqlite.NewIdiomRepo(f.db).Get(ctx, idiom.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("inverted idiom should be deleted: %v", err)
	}
}

func TestReconcileUntouchedIdiomSurvives(t *testing.T) {
	f := newFixture(t, "swā hwæt swā hē dyde", "swā", "hwæt", "swā", "hē", "dyde")
	ctx := context.Background()
	idiom := &domain.Idiom{
		SentenceID:   f.sentence.ID,
		StartTokenID: f.tokens[0].ID,
		EndTokenID:   f.tokens[2].ID,
	}
	if err := sqlite.NewIdiomRepo(f.db).Create(ctx, idiom); err != nil {
		t.Fatalf("idiom: %v", err)
	}

	// Editing outside the span must not disturb the idiom.
	msgs, err := f.svc.Reconcile(ctx, f.sentence.ID, "swā hwæt swā hē sang")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("unexpected notices: %v", msgs)
	}
	if _, err := sqlite.NewIdiomRepo(f.db).Get(ctx, idiom.ID); err != nil {
		t.Fatalf("idiom should survive: %v", err)
	}
}

func TestReconcileDegradesNotes(t *testing.T) {
	f := newFixture(t, "Se cyning rād", "Se", "cyning", "rād")
	ctx := context.Background()
	noteRepo := sqlite.NewNoteRepo(f.db)
	n := &domain.Note{
		SentenceID:   f.sentence.ID,
		StartTokenID: &f.tokens[1].ID,
		EndTokenID:   &f.tokens[2].ID,
		Text:         "manuscript damaged here",
	}
	if err := noteRepo.Create(ctx, n); err != nil {
		t.Fatalf("note: %v", err)
	}

	if _, err := f.svc.Reconcile(ctx, f.sentence.ID, "Se rād"); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	got, err := noteRepo.Get(ctx, n.ID)
	if err != nil {
		t.Fatalf("note must survive: %v", err)
	}
	if got.StartTokenID != nil {
		t.Fatal("start endpoint should be nulled")
	}
	if got.EndTokenID == nil || *got.EndTokenID != f.tokens[2].ID {
		t.Fatal("end endpoint should still reference rād")
	}
	if got.Text != "manuscript damaged here" {
		t.Fatalf("note text changed: %q", got.Text)
	}
}

func TestReconcileRespellKeepsAnnotation(t *testing.T) {
	f := newFixture(t, "Se kyning", "Se", "kyning")
	ctx := context.Background()
	annRepo := sqlite.NewAnnotationRepo(f.db)
	a := &domain.Annotation{TokenID: &f.tokens[1].ID, PartOfSpeech: "noun", Meaning: "king"}
	if err := annRepo.UpsertForToken(ctx, a); err != nil {
		t.Fatalf("annotate: %v", err)
	}

	if _, err := f.svc.Reconcile(ctx, f.sentence.ID, "Se cyning"); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	got := f.reload(t)
	checkLayout(t, got, "Se", "cyning")
	if got[1].ID != f.tokens[1].ID {
		t.Fatal("respelled token lost its identity")
	}
	keptAnn, err := annRepo.GetByToken(ctx, f.tokens[1].ID)
	if err != nil {
		t.Fatalf("annotation should survive respelling: %v", err)
	}
	if keptAnn.Meaning != "king" {
		t.Fatalf("annotation content changed: %+v", keptAnn)
	}
}

func TestReconcileEmptyTextDeletesAllTokens(t *testing.T) {
	f := newFixture(t, "Se cyning", "Se", "cyning")
	if _, err := f.svc.Reconcile(context.Background(), f.sentence.ID, ""); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got := f.reload(t); len(got) != 0 {
		t.Fatalf("want no tokens, got %d", len(got))
	}
	s, err := sqlite.NewSentenceRepo(f.db).Get(context.Background(), f.sentence.ID)
	if err != nil {
		t.Fatalf("sentence: %v", err)
	}
	if s.Text != "" {
		t.Fatalf("text not updated: %q", s.Text)
	}
}

func TestReconcileMissingSentence(t *testing.T) {
	f := newFixture(t, "Se", "Se")
	_, err := f.svc.Reconcile(context.Background(), f.sentence.ID+999, "Se")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

// failingRunner wraps the real store and fails one operation, to prove a
// mid-transaction error leaves nothing behind.
type failingRunner struct {
	inner ports.TxRunner
}

func (f *failingRunner) WithStore(ctx context.Context, fn func(ports.SentenceStore) error) error {
	return f.inner.WithStore(ctx, func(st ports.SentenceStore) error {
		return fn(&failingStore{SentenceStore: st})
	})
}

type failingStore struct {
	ports.SentenceStore
}

func (f *failingStore) InsertToken(ctx context.Context, tk *domain.Token) error {
	return errors.New("disk failure")
}

func TestReconcileRollsBackOnStorageError(t *testing.T) {
	f := newFixture(t, "Se cyning", "Se", "cyning")
	broken := New(&failingRunner{inner: sqlite.NewStore(f.db)}, zerolog.Nop())

	if _, err := broken.Reconcile(context.Background(), f.sentence.ID, "Se cyning eald"); err == nil {
		t.Fatal("want error from failing insert")
	}

	// The original two tokens and the original text must be intact.
	got := f.reload(t)
	checkLayout(t, got, "Se", "cyning")
	if got[0].ID != f.tokens[0].ID || got[1].ID != f.tokens[1].ID {
		t.Fatal("token identity disturbed by rolled-back edit")
	}
	s, err := sqlite.NewSentenceRepo(f.db).Get(context.Background(), f.sentence.ID)
	if err != nil {
		t.Fatalf("sentence: %v", err)
	}
	if s.Text != "Se cyning" {
		t.Fatalf("text leaked from rolled-back edit: %q", s.Text)
	}
}

func TestReconcileSequenceHoldsInvariant(t *testing.T) {
	f := newFixture(t, "Hwæt wē Gārdena", "Hwæt", "wē", "Gārdena")
	ctx := context.Background()
	edits := []string{
		"Hwæt wē Gārdena in gēardagum",
		"wē Gārdena",
		"Gārdena wē Gārdena",
		"Hwæt",
		"",
		"Hwæt wē",
	}
	for _, edit := range edits {
		if _, err := f.svc.Reconcile(ctx, f.sentence.ID, edit); err != nil {
			t.Fatalf("reconcile %q: %v", edit, err)
		}
		toks := f.reload(t)
		for i, tk := range toks {
			if tk.Position != i {
				t.Fatalf("after %q: position %d holds %d", edit, i, tk.Position)
			}
		}
	}
}
