package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"wordhord/internal/domain"
)

// Execer is the slice of database/sql that *sql.DB and *sql.Tx share, so the
// same repository code runs standalone or inside WithTx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repo provides a base for Squirrel-based repositories.
type Repo struct {
	DB Execer
	SQ sq.StatementBuilderType
}

func NewRepo(db Execer) *Repo {
	return &Repo{DB: db, SQ: sq.StatementBuilder}
}

// Timestamps are stored as RFC3339 TEXT.
func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseRFC3339(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// notFound maps the driver's empty-result error to the domain sentinel.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// prefixCols qualifies every column in a comma-separated list with a table
// alias, for joined selects.
func prefixCols(alias, cols string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
