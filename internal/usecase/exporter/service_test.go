package exporter

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"wordhord/internal/adapters/db/sqlite"
	csvexport "wordhord/internal/adapters/exporter/csv"
	"wordhord/internal/adapters/exporter/docx"
	projjson "wordhord/internal/adapters/exporter/json"
	"wordhord/internal/adapters/exporter/registry"
	importreg "wordhord/internal/adapters/importer/registry"
	"wordhord/internal/domain"
	"wordhord/internal/usecase/importer"
)

func newService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()
	db, err := sqlite.Init(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	reg := registry.New()
	reg.Register(projjson.New())
	reg.Register(csvexport.New())
	reg.Register(docx.New())
	svc := New(
		sqlite.NewProjectRepo(db),
		sqlite.NewSentenceRepo(db),
		sqlite.NewTokenRepo(db),
		sqlite.NewAnnotationRepo(db),
		sqlite.NewIdiomRepo(db),
		sqlite.NewNoteRepo(db),
		reg, zerolog.Nop(),
	)
	return svc, db
}

// seedProject persists a small annotated project: three sentences, one
// annotated token, one labeled idiom, one note.
func seedProject(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	ctx := context.Background()
	p := &domain.Project{Name: "Maxims II", Source: "Cotton Tiberius"}
	if err := sqlite.NewProjectRepo(db).Create(ctx, p); err != nil {
		t.Fatalf("project: %v", err)
	}
	sentRepo := sqlite.NewSentenceRepo(db)
	tokRepo := sqlite.NewTokenRepo(db)
	texts := []string{"Cyning sceal rīce healdan", "Wind byð swiftust", "Þunar byð hlūdast"}
	var firstTokens []*domain.Token
	for i, txt := range texts {
		s := &domain.Sentence{ProjectID: p.ID, Position: i, Text: txt, ParagraphBreak: i == 2}
		if err := sentRepo.Create(ctx, s); err != nil {
			t.Fatalf("sentence: %v", err)
		}
		for j, surface := range splitWords(txt) {
			tk := &domain.Token{SentenceID: s.ID, Position: j, Surface: surface}
			if err := tokRepo.Insert(ctx, tk); err != nil {
				t.Fatalf("token: %v", err)
			}
			if i == 0 {
				firstTokens = append(firstTokens, tk)
			}
		}
		if i == 0 {
			s.Translation = "A king must hold a kingdom"
			if err := sentRepo.Update(ctx, s); err != nil {
				t.Fatalf("translation: %v", err)
			}
			annRepo := sqlite.NewAnnotationRepo(db)
			if err := annRepo.UpsertForToken(ctx, &domain.Annotation{
				TokenID: &firstTokens[0].ID, PartOfSpeech: "noun", Case: "nom", Meaning: "king",
			}); err != nil {
				t.Fatalf("annotation: %v", err)
			}
			idiom := &domain.Idiom{
				SentenceID:   s.ID,
				StartTokenID: firstTokens[2].ID,
				EndTokenID:   firstTokens[3].ID,
				Label:        "rīce healdan",
			}
			if err := sqlite.NewIdiomRepo(db).Create(ctx, idiom); err != nil {
				t.Fatalf("idiom: %v", err)
			}
			if err := annRepo.UpsertForIdiom(ctx, &domain.Annotation{
				IdiomID: &idiom.ID, Meaning: "hold the kingdom",
			}); err != nil {
				t.Fatalf("idiom annotation: %v", err)
			}
			if err := sqlite.NewNoteRepo(db).Create(ctx, &domain.Note{
				SentenceID: s.ID, StartTokenID: &firstTokens[0].ID, EndTokenID: &firstTokens[0].ID,
				Text: "gnomic sceal",
			}); err != nil {
				t.Fatalf("note: %v", err)
			}
		}
	}
	return p.ID
}

func splitWords(s string) []string {
	var out []string
	word := ""
	for _, r := range s {
		if r == ' ' {
			if word != "" {
				out = append(out, word)
				word = ""
			}
			continue
		}
		word += string(r)
	}
	if word != "" {
		out = append(out, word)
	}
	return out
}

func TestExportJSON(t *testing.T) {
	svc, db := newService(t)
	projectID := seedProject(t, db)

	res, err := svc.Export(context.Background(), ExportArgs{ProjectID: projectID, Format: "json"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if res.Filename != "Maxims_II.json" {
		t.Errorf("filename %q", res.Filename)
	}
	if res.Sentences != 3 {
		t.Errorf("sentences: %d", res.Sentences)
	}
	doc, err := projjson.Decode(res.Content)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Title != "Maxims II" || len(doc.Sentences) != 3 {
		t.Fatalf("document: %+v", doc)
	}
	first := doc.Sentences[0]
	if first.Tokens[0].Annotation == nil || first.Tokens[0].Annotation.Meaning != "king" {
		t.Errorf("token annotation: %+v", first.Tokens[0])
	}
	if len(first.Idioms) != 1 || first.Idioms[0].Start != 2 || first.Idioms[0].End != 3 {
		t.Errorf("idiom span: %+v", first.Idioms)
	}
	if len(first.Notes) != 1 || first.Notes[0].Start == nil || *first.Notes[0].Start != 0 {
		t.Errorf("note: %+v", first.Notes)
	}
}

func TestExportRangeSelection(t *testing.T) {
	svc, db := newService(t)
	projectID := seedProject(t, db)

	res, err := svc.Export(context.Background(), ExportArgs{ProjectID: projectID, Format: "json", Range: "1,3"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	doc, err := projjson.Decode(res.Content)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Sentences) != 2 {
		t.Fatalf("selected %d sentences", len(doc.Sentences))
	}
	if doc.Sentences[0].Text != "Cyning sceal rīce healdan" || doc.Sentences[1].Text != "Þunar byð hlūdast" {
		t.Errorf("wrong selection: %q %q", doc.Sentences[0].Text, doc.Sentences[1].Text)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	svc, db := newService(t)
	projectID := seedProject(t, db)
	if _, err := svc.Export(context.Background(), ExportArgs{ProjectID: projectID, Format: "runes"}); err == nil {
		t.Fatal("unknown format accepted")
	}
}

func TestExportBadRange(t *testing.T) {
	svc, db := newService(t)
	projectID := seedProject(t, db)
	if _, err := svc.Export(context.Background(), ExportArgs{ProjectID: projectID, Format: "json", Range: "9-4"}); err == nil {
		t.Fatal("descending range accepted")
	}
}

// The interchange export must survive a full out-and-back: export, import
// into a fresh project, export again, and the two documents agree.
func TestExportImportRoundTrip(t *testing.T) {
	svc, db := newService(t)
	projectID := seedProject(t, db)
	ctx := context.Background()

	out1, err := svc.Export(ctx, ExportArgs{ProjectID: projectID, Format: "json"})
	if err != nil {
		t.Fatalf("first export: %v", err)
	}

	impSvc := importer.New(sqlite.NewProjectRepo(db), sqlite.NewStore(db), importreg.New(), zerolog.Nop())
	restored, err := impSvc.ImportProject(ctx, out1.Content)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.ProjectID == projectID {
		t.Fatal("restore must create a new project")
	}

	out2, err := svc.Export(ctx, ExportArgs{ProjectID: restored.ProjectID, Format: "json"})
	if err != nil {
		t.Fatalf("second export: %v", err)
	}
	doc1, err := projjson.Decode(out1.Content)
	if err != nil {
		t.Fatalf("decode first: %v", err)
	}
	doc2, err := projjson.Decode(out2.Content)
	if err != nil {
		t.Fatalf("decode second: %v", err)
	}
	if !reflect.DeepEqual(doc1.Sentences, doc2.Sentences) {
		t.Fatalf("round trip drifted\nfirst:  %+v\nsecond: %+v", doc1.Sentences, doc2.Sentences)
	}
}

func TestExportDocxAndCSV(t *testing.T) {
	svc, db := newService(t)
	projectID := seedProject(t, db)
	ctx := context.Background()

	for _, format := range []string{"docx", "csv"} {
		res, err := svc.Export(ctx, ExportArgs{ProjectID: projectID, Format: format})
		if err != nil {
			t.Fatalf("export %s: %v", format, err)
		}
		if len(res.Content) == 0 {
			t.Errorf("%s produced no bytes", format)
		}
	}
}
