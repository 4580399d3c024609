package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"wordhord/internal/domain"
)

type AnnotationRepo struct{ *Repo }

func NewAnnotationRepo(db Execer) *AnnotationRepo { return &AnnotationRepo{NewRepo(db)} }

const annotationCols = `id, token_id, idiom_id, part_of_speech, gram_case, gender, number, person,
	tense, mood, degree, verb_class, meaning, root, uncertain, confidence, alternatives_json,
	created_at, updated_at`

const annotationValueSet = `part_of_speech = excluded.part_of_speech, gram_case = excluded.gram_case,
	gender = excluded.gender, number = excluded.number, person = excluded.person,
	tense = excluded.tense, mood = excluded.mood, degree = excluded.degree,
	verb_class = excluded.verb_class, meaning = excluded.meaning, root = excluded.root,
	uncertain = excluded.uncertain, confidence = excluded.confidence,
	alternatives_json = excluded.alternatives_json, updated_at = excluded.updated_at`

func (r *AnnotationRepo) UpsertForToken(ctx context.Context, a *domain.Annotation) error {
	if a.TokenID == nil {
		return fmt.Errorf("annotation upsert: token id not set")
	}
	return r.upsert(ctx, a, "token_id")
}

func (r *AnnotationRepo) UpsertForIdiom(ctx context.Context, a *domain.Annotation) error {
	if a.IdiomID == nil {
		return fmt.Errorf("annotation upsert: idiom id not set")
	}
	return r.upsert(ctx, a, "idiom_id")
}

func (r *AnnotationRepo) upsert(ctx context.Context, a *domain.Annotation, conflictCol string) error {
	now := time.Now().UTC()
	if a.AlternativesRaw == "" {
		a.AlternativesRaw = "[]"
	}
	q := r.SQ.Insert("annotations").
		Columns("token_id", "idiom_id", "part_of_speech", "gram_case", "gender", "number", "person",
			"tense", "mood", "degree", "verb_class", "meaning", "root", "uncertain", "confidence",
			"alternatives_json", "created_at", "updated_at").
		Values(a.TokenID, a.IdiomID, a.PartOfSpeech, a.Case, a.Gender, a.Number, a.Person,
			a.Tense, a.Mood, a.Degree, a.VerbClass, a.Meaning, a.Root, a.Uncertain, a.Confidence,
			a.AlternativesRaw, now.Format(time.RFC3339), now.Format(time.RFC3339)).
		Suffix(`ON CONFLICT(` + conflictCol + `) DO UPDATE SET ` + annotationValueSet)
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if a.ID == 0 {
		// On conflict LastInsertId is not the row's id, so look it up.
		if id, err := res.LastInsertId(); err == nil {
			a.ID = id
		}
		var stored domain.Annotation
		var lookupErr error
		if conflictCol == "token_id" {
			lookupErr = r.getBy(ctx, "token_id", *a.TokenID, &stored)
		} else {
			lookupErr = r.getBy(ctx, "idiom_id", *a.IdiomID, &stored)
		}
		if lookupErr == nil {
			a.ID = stored.ID
			a.CreatedAt = stored.CreatedAt
		}
	}
	a.UpdatedAt = now
	return nil
}

func (r *AnnotationRepo) GetByToken(ctx context.Context, tokenID int64) (*domain.Annotation, error) {
	var a domain.Annotation
	if err := r.getBy(ctx, "token_id", tokenID, &a); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *AnnotationRepo) GetByIdiom(ctx context.Context, idiomID int64) (*domain.Annotation, error) {
	var a domain.Annotation
	if err := r.getBy(ctx, "idiom_id", idiomID, &a); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *AnnotationRepo) getBy(ctx context.Context, col string, id int64, a *domain.Annotation) error {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+annotationCols+` FROM annotations WHERE `+col+` = ?`, id)
	return scanAnnotation(row, a)
}

func (r *AnnotationRepo) ListBySentence(ctx context.Context, sentenceID int64) ([]*domain.Annotation, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+prefixCols("a", annotationCols)+`
		FROM annotations a
		LEFT JOIN tokens t ON a.token_id = t.id
		LEFT JOIN idioms i ON a.idiom_id = i.id
		WHERE t.sentence_id = ? OR i.sentence_id = ?
		ORDER BY a.id`, sentenceID, sentenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Annotation
	for rows.Next() {
		var a domain.Annotation
		if err := scanAnnotation(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *AnnotationRepo) DeleteByToken(ctx context.Context, tokenID int64) error {
	q := r.SQ.Delete("annotations").Where(sq.Eq{"token_id": tokenID})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *AnnotationRepo) DeleteByIdiom(ctx context.Context, idiomID int64) error {
	q := r.SQ.Delete("annotations").Where(sq.Eq{"idiom_id": idiomID})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

// Insert writes a full annotation row, keeping a.ID when it is set. Undo
// restores cascade-deleted annotations through this.
func (r *AnnotationRepo) Insert(ctx context.Context, a *domain.Annotation) error {
	now := time.Now().UTC()
	if a.AlternativesRaw == "" {
		a.AlternativesRaw = "[]"
	}
	created := a.CreatedAt
	if created.IsZero() {
		created = now
	}
	cols := []string{"token_id", "idiom_id", "part_of_speech", "gram_case", "gender", "number",
		"person", "tense", "mood", "degree", "verb_class", "meaning", "root", "uncertain",
		"confidence", "alternatives_json", "created_at", "updated_at"}
	vals := []any{a.TokenID, a.IdiomID, a.PartOfSpeech, a.Case, a.Gender, a.Number,
		a.Person, a.Tense, a.Mood, a.Degree, a.VerbClass, a.Meaning, a.Root, a.Uncertain,
		a.Confidence, a.AlternativesRaw, created.Format(time.RFC3339), now.Format(time.RFC3339)}
	if a.ID != 0 {
		cols = append([]string{"id"}, cols...)
		vals = append([]any{a.ID}, vals...)
	}
	q := r.SQ.Insert("annotations").Columns(cols...).Values(vals...)
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if a.ID == 0 {
		id, _ := res.LastInsertId()
		a.ID = id
	}
	a.CreatedAt = created
	a.UpdatedAt = now
	return nil
}

func scanAnnotation(row rowScanner, a *domain.Annotation) error {
	var tokenID, idiomID sql.NullInt64
	var created, updated string
	if err := row.Scan(&a.ID, &tokenID, &idiomID, &a.PartOfSpeech, &a.Case, &a.Gender,
		&a.Number, &a.Person, &a.Tense, &a.Mood, &a.Degree, &a.VerbClass, &a.Meaning,
		&a.Root, &a.Uncertain, &a.Confidence, &a.AlternativesRaw, &created, &updated); err != nil {
		return err
	}
	if tokenID.Valid {
		v := tokenID.Int64
		a.TokenID = &v
	}
	if idiomID.Valid {
		v := idiomID.Int64
		a.IdiomID = &v
	}
	a.CreatedAt = parseRFC3339(created)
	a.UpdatedAt = parseRFC3339(updated)
	return nil
}
