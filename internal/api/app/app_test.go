package app

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"wordhord/internal/adapters/db/sqlite"
	"wordhord/internal/domain"
	"wordhord/internal/metrics"
	"wordhord/internal/usecase/commands"
	"wordhord/internal/usecase/reconciler"
)

type captureEmitter struct {
	mu    sync.Mutex
	names []string
}

func (e *captureEmitter) Emit(name string, payload any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.names = append(e.names, name)
}

func (e *captureEmitter) saw(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, n := range e.names {
		if n == name {
			return true
		}
	}
	return false
}

type fixture struct {
	db        *sql.DB
	run       *Commander
	projects  *ProjectAPI
	sentences *SentenceAPI
	tokens    *TokenAPI
	annots    *AnnotationAPI
	idioms    *IdiomAPI
	notes     *NoteAPI
	presets   *PresetAPI
	history   *CommandAPI
	events    *captureEmitter
	dirty     atomic.Int64

	project  *domain.Project
	sentence *domain.Sentence
	toks     []*domain.Token
}

func newFixture(t *testing.T, text string, surfaces ...string) *fixture {
	t.Helper()
	db, err := sqlite.Init(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()

	f := &fixture{db: db, events: &captureEmitter{}}

	projRepo := sqlite.NewProjectRepo(db)
	sentRepo := sqlite.NewSentenceRepo(db)
	tokRepo := sqlite.NewTokenRepo(db)
	annRepo := sqlite.NewAnnotationRepo(db)
	idiomRepo := sqlite.NewIdiomRepo(db)
	noteRepo := sqlite.NewNoteRepo(db)
	presetRepo := sqlite.NewPresetRepo(db)
	store := sqlite.NewStore(db)

	f.project = &domain.Project{Name: "Widsith"}
	if err := projRepo.Create(ctx, f.project); err != nil {
		t.Fatalf("project: %v", err)
	}
	f.sentence = &domain.Sentence{ProjectID: f.project.ID, Position: 0, Text: text}
	if err := sentRepo.Create(ctx, f.sentence); err != nil {
		t.Fatalf("sentence: %v", err)
	}
	for i, sf := range surfaces {
		tk := &domain.Token{SentenceID: f.sentence.ID, Position: i, Surface: sf}
		if err := tokRepo.Insert(ctx, tk); err != nil {
			t.Fatalf("token %q: %v", sf, err)
		}
		f.toks = append(f.toks, tk)
	}

	hooks := Hooks{
		Dirty:   func() { f.dirty.Add(1) },
		Metrics: metrics.New(prometheus.NewRegistry()),
		Events:  f.events,
	}
	f.run = NewCommander(commands.NewManager(0, zerolog.Nop()), hooks)
	rec := reconciler.New(store, zerolog.Nop())

	f.projects = NewProjectAPI(projRepo, sentRepo, f.run)
	f.sentences = NewSentenceAPI(sentRepo, tokRepo, annRepo, idiomRepo, noteRepo, rec, f.run)
	f.tokens = NewTokenAPI(tokRepo)
	f.annots = NewAnnotationAPI(annRepo, f.run)
	f.idioms = NewIdiomAPI(idiomRepo, tokRepo, annRepo, store, f.run)
	f.notes = NewNoteAPI(noteRepo, f.run)
	f.presets = NewPresetAPI(presetRepo, annRepo, f.run)
	f.history = NewCommandAPI(f.run)
	return f
}

func TestAnnotateClearUndoRedo(t *testing.T) {
	f := newFixture(t, "Se cyning wæs god", "Se", "cyning", "wæs", "god")

	if toks, err := f.tokens.ListBySentence(f.sentence.ID); err != nil || len(toks) != 4 {
		t.Fatalf("tokens: %v %v", toks, err)
	}

	ann, err := f.annots.AnnotateToken(AnnotateTokenRequest{
		TokenID: f.toks[1].ID,
		Values:  domain.Annotation{PartOfSpeech: "noun", Case: "nom", Meaning: "king"},
	})
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if ann == nil || ann.Meaning != "king" {
		t.Fatalf("unexpected annotation: %+v", ann)
	}
	st := f.history.Status()
	if !st.CanUndo || st.UndoLabel != "Annotate word" || st.UndoDepth != 1 {
		t.Fatalf("unexpected status after annotate: %+v", st)
	}

	removed, err := f.annots.ClearToken(f.toks[1].ID)
	if err != nil || !removed {
		t.Fatalf("clear: removed=%v err=%v", removed, err)
	}
	if got, err := f.annots.GetToken(f.toks[1].ID); err != nil || got != nil {
		t.Fatalf("annotation should be gone, got %+v err %v", got, err)
	}

	// Clearing a bare token is a polite no-op that records nothing.
	removed, err = f.annots.ClearToken(f.toks[1].ID)
	if err != nil || removed {
		t.Fatalf("second clear: removed=%v err=%v", removed, err)
	}
	if st := f.history.Status(); st.UndoDepth != 2 {
		t.Fatalf("no-op clear changed the stack: %+v", st)
	}

	res, err := f.history.Undo()
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if res.Undone != "Clear annotation" {
		t.Fatalf("undone label = %q", res.Undone)
	}
	if got, _ := f.annots.GetToken(f.toks[1].ID); got == nil || got.Meaning != "king" {
		t.Fatalf("undo did not restore: %+v", got)
	}

	res, err = f.history.Redo()
	if err != nil {
		t.Fatalf("redo: %v", err)
	}
	if res.Redone != "Clear annotation" {
		t.Fatalf("redone label = %q", res.Redone)
	}
	if got, _ := f.annots.GetToken(f.toks[1].ID); got != nil {
		t.Fatalf("redo did not clear: %+v", got)
	}

	if f.dirty.Load() == 0 {
		t.Fatal("mutations never marked the workspace dirty")
	}
	if !f.events.saw("history.changed") {
		t.Fatal("no history.changed event emitted")
	}
}

func TestUndoOnEmptyStack(t *testing.T) {
	f := newFixture(t, "Wyrd bið ful aræd", "Wyrd", "bið", "ful", "aræd")
	if _, err := f.history.Undo(); !errors.Is(err, domain.ErrNothingToUndo) {
		t.Fatalf("err = %v", err)
	}
	if _, err := f.history.Redo(); !errors.Is(err, domain.ErrNothingToRedo) {
		t.Fatalf("err = %v", err)
	}
}

func TestEditTextReportsCascade(t *testing.T) {
	f := newFixture(t, "þa com of more under misthleoþum",
		"þa", "com", "of", "more", "under", "misthleoþum")

	if _, err := f.idioms.Create(CreateIdiomRequest{
		SentenceID:   f.sentence.ID,
		StartTokenID: f.toks[2].ID,
		EndTokenID:   f.toks[3].ID,
		Label:        "of more",
	}); err != nil {
		t.Fatalf("create idiom: %v", err)
	}

	// Dropping "more" breaks the idiom span.
	res, err := f.sentences.EditText(f.sentence.ID, "þa com of under misthleoþum")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if len(res.Messages) == 0 {
		t.Fatal("expected an idiom-deletion message")
	}
	if len(res.View.Idioms) != 0 {
		t.Fatalf("idiom survived the edit: %+v", res.View.Idioms)
	}
	if len(res.View.Tokens) != 5 {
		t.Fatalf("token count = %d", len(res.View.Tokens))
	}
	if !f.events.saw("sentence.reconciled") {
		t.Fatal("no sentence.reconciled event emitted")
	}
}

func TestIdiomCreateAnnotateDelete(t *testing.T) {
	f := newFixture(t, "ofer hronrade", "ofer", "hronrade")

	idm, err := f.idioms.Create(CreateIdiomRequest{
		SentenceID:   f.sentence.ID,
		StartTokenID: f.toks[0].ID,
		EndTokenID:   f.toks[1].ID,
		Label:        "whale-road",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.annots.AnnotateIdiom(AnnotateIdiomRequest{
		IdiomID: idm.ID,
		Values:  domain.Annotation{Meaning: "over the sea"},
	}); err != nil {
		t.Fatalf("annotate idiom: %v", err)
	}

	view, err := f.sentences.Get(f.sentence.ID)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(view.Idioms) != 1 {
		t.Fatalf("idioms in view = %d", len(view.Idioms))
	}
	iv := view.Idioms[0]
	if iv.StartPos != 0 || iv.EndPos != 1 {
		t.Fatalf("span positions = %d..%d", iv.StartPos, iv.EndPos)
	}
	if iv.Annotation == nil || iv.Annotation.Meaning != "over the sea" {
		t.Fatalf("idiom annotation missing: %+v", iv.Annotation)
	}

	if ok, err := f.idioms.Delete(idm.ID); err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	if got, _ := f.annots.GetIdiom(idm.ID); got != nil {
		t.Fatalf("idiom annotation should cascade away: %+v", got)
	}

	// Undoing the delete brings back the idiom and its annotation together.
	if _, err := f.history.Undo(); err != nil {
		t.Fatalf("undo delete: %v", err)
	}
	list, err := f.idioms.ListBySentence(f.sentence.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("idiom not restored: %v %v", list, err)
	}
	if got, _ := f.annots.GetIdiom(idm.ID); got == nil || got.Meaning != "over the sea" {
		t.Fatalf("idiom annotation not restored: %+v", got)
	}
}

func TestNoteLifecycle(t *testing.T) {
	f := newFixture(t, "Deor is min nama", "Deor", "is", "min", "nama")

	n, err := f.notes.Set(SetNoteRequest{
		SentenceID:   f.sentence.ID,
		StartTokenID: &f.toks[0].ID,
		EndTokenID:   &f.toks[0].ID,
		Text:         "the scop names himself",
	})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	if n.ID == 0 {
		t.Fatal("note got no ID")
	}

	updated, err := f.notes.Set(SetNoteRequest{
		ID:         n.ID,
		SentenceID: f.sentence.ID,
		Text:       "reworked reading",
	})
	if err != nil {
		t.Fatalf("update note: %v", err)
	}
	if updated.Text != "reworked reading" || updated.StartTokenID != nil {
		t.Fatalf("update not applied: %+v", updated)
	}

	if _, err := f.history.Undo(); err != nil {
		t.Fatalf("undo update: %v", err)
	}
	back, err := f.notes.ListBySentence(f.sentence.ID)
	if err != nil || len(back) != 1 {
		t.Fatalf("list after undo: %v %v", back, err)
	}
	if back[0].Text != "the scop names himself" || back[0].StartTokenID == nil {
		t.Fatalf("undo lost the original note: %+v", back[0])
	}

	if ok, err := f.notes.Delete(n.ID); err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	if rest, _ := f.notes.ListBySentence(f.sentence.ID); len(rest) != 0 {
		t.Fatalf("note still present: %+v", rest)
	}
}

func TestPresetApply(t *testing.T) {
	f := newFixture(t, "guma gilphlæden", "guma", "gilphlæden")

	p, err := f.presets.Upsert(UpsertPresetRequest{
		Name:   "masc nom sg",
		Values: domain.Annotation{PartOfSpeech: "noun", Gender: "m", Case: "nom", Number: "sg"},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	ann, err := f.presets.Apply(p.ID, f.toks[0].ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if ann.PartOfSpeech != "noun" || ann.Case != "nom" || ann.Number != "sg" {
		t.Fatalf("preset values not applied: %+v", ann)
	}
	if ann.TokenID == nil || *ann.TokenID != f.toks[0].ID {
		t.Fatalf("annotation owner wrong: %+v", ann)
	}

	// Applying a preset is a normal annotate command.
	if _, err := f.history.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if got, _ := f.annots.GetToken(f.toks[0].ID); got != nil {
		t.Fatalf("undo should remove the applied preset: %+v", got)
	}

	list, err := f.presets.List()
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %v", list, err)
	}
	if ok, err := f.presets.Delete(p.ID); err != nil || !ok {
		t.Fatalf("delete: %v", err)
	}
}

func TestProjectListAndDelete(t *testing.T) {
	f := newFixture(t, "Hwæt", "Hwæt")

	sums, err := f.projects.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sums) != 1 || sums[0].Sentences != 1 {
		t.Fatalf("unexpected summaries: %+v", sums)
	}

	// Leave something on the stack, then make sure Delete clears it.
	if _, err := f.annots.AnnotateToken(AnnotateTokenRequest{
		TokenID: f.toks[0].ID,
		Values:  domain.Annotation{PartOfSpeech: "interj"},
	}); err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if ok, err := f.projects.Delete(f.project.ID); err != nil || !ok {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.projects.Get(f.project.ID); err == nil {
		t.Fatal("project should be gone")
	}
	if st := f.history.Status(); st.CanUndo || st.CanRedo {
		t.Fatalf("history not cleared: %+v", st)
	}
}
