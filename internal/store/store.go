package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/examgen/internal/question"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const templatesTable = "templates"

var columns = []string{
	"id", "subject", "topic", "body", "program", "program_kind", "format",
	"difficulty", "unit", "allow_negative", "alternative_count",
	"auto_alternatives", "group_name", "alternatives", "correct_letter",
	"image", "image_width", "active",
}

const schema = `CREATE TABLE IF NOT EXISTS templates (
	id INTEGER PRIMARY KEY,
	subject TEXT NOT NULL DEFAULT '',
	topic TEXT NOT NULL DEFAULT '',
	body TEXT NOT NULL,
	program TEXT NOT NULL DEFAULT '',
	program_kind TEXT NOT NULL DEFAULT '',
	format TEXT NOT NULL,
	difficulty TEXT NOT NULL DEFAULT '',
	unit TEXT NOT NULL DEFAULT '',
	allow_negative BOOLEAN NOT NULL DEFAULT 0,
	alternative_count INTEGER NOT NULL DEFAULT 0,
	auto_alternatives BOOLEAN NOT NULL DEFAULT 0,
	group_name TEXT NOT NULL DEFAULT '',
	alternatives TEXT NOT NULL DEFAULT '[]',
	correct_letter TEXT NOT NULL DEFAULT '',
	image TEXT NOT NULL DEFAULT '',
	image_width INTEGER NOT NULL DEFAULT 0,
	active BOOLEAN NOT NULL DEFAULT 1
)`

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS templates_subject_group ON templates (subject, group_name)",
	"CREATE INDEX IF NOT EXISTS templates_selection ON templates (format, difficulty, topic)",
}

// Store is the SQLite template bank.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
}

// Open connects to the SQLite database at dsn, applies recommended
// pragmas and creates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	s := &Store{db: db, drv: entsql.OpenDB(dialect.SQLite, db)}
	if err := s.migrate(context.Background()); err != nil {
		s.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range append([]string{schema}, indexes...) {
		if err := s.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return err
		}
	}
	return nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// Put inserts or replaces one template.
func (s *Store) Put(ctx context.Context, t question.Template) error {
	return s.Import(ctx, []question.Template{t})
}

// Import inserts or replaces templates in one transaction.
func (s *Store) Import(ctx context.Context, templates []question.Template) error {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	for _, t := range templates {
		query, args, err := upsert(t)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("template %d: %w", t.ID, err)
		}
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			tx.Rollback()
			return fmt.Errorf("save template %d: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

func upsert(t question.Template) (string, []any, error) {
	alts, err := json.Marshal(t.Alternatives)
	if err != nil {
		return "", nil, err
	}
	if t.Alternatives == nil {
		alts = []byte("[]")
	}
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(templatesTable).
		Columns(columns...).
		Values(
			t.ID, t.Subject, t.Topic, t.Body, t.Program, string(t.ProgramKind), string(t.Format),
			t.Difficulty, t.Unit, t.AllowNegative, t.AlternativeCount,
			t.AutoAlternatives, t.GroupKey(), string(alts), t.CorrectLetter,
			t.Image, t.ImageWidthPercent, t.Active,
		).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	return query, args, nil
}

// Delete removes a template.
func (s *Store) Delete(ctx context.Context, id int64) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(templatesTable).
		Where(entsql.EQ("id", id)).
		Query()
	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("delete template %d: %w", id, err)
	}
	return nil
}

func (s *Store) ByIDs(ctx context.Context, ids []int64) ([]question.Template, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	in := make([]any, len(ids))
	for i, id := range ids {
		in[i] = id
	}
	found, err := s.query(ctx, entsql.In("id", in...))
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]question.Template, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	var out []question.Template
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) ByGroup(ctx context.Context, subject, group string) ([]question.Template, error) {
	if group == "" {
		return nil, nil
	}
	return s.List(ctx, Filter{Subject: subject, Group: group})
}

func (s *Store) List(ctx context.Context, f Filter) ([]question.Template, error) {
	var preds []*entsql.Predicate
	if f.Subject != "" {
		preds = append(preds, entsql.EQ("subject", f.Subject))
	}
	if f.Topic != "" && f.Topic != TopicAll {
		preds = append(preds, entsql.EQ("topic", f.Topic))
	}
	if f.Format != "" {
		preds = append(preds, entsql.EQ("format", string(f.Format)))
	}
	if f.Difficulty != "" {
		preds = append(preds, entsql.EQ("difficulty", f.Difficulty))
	}
	if f.Group != "" {
		preds = append(preds, entsql.EQ("group_name", f.Group))
	}
	return s.query(ctx, preds...)
}

// query selects active templates matching every predicate, ordered by id.
func (s *Store) query(ctx context.Context, preds ...*entsql.Predicate) ([]question.Template, error) {
	preds = append(preds, entsql.EQ("active", true))
	query, args := entsql.Dialect(dialect.SQLite).
		Select(columns...).
		From(entsql.Table(templatesTable)).
		Where(entsql.And(preds...)).
		OrderBy("id").
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	var out []question.Template
	for rows.Next() {
		t, err := scanTemplate(&rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	return out, nil
}

func scanTemplate(rows *entsql.Rows) (question.Template, error) {
	var (
		t           question.Template
		kind, fmtID string
		alts        string
	)
	err := rows.Scan(
		&t.ID, &t.Subject, &t.Topic, &t.Body, &t.Program, &kind, &fmtID,
		&t.Difficulty, &t.Unit, &t.AllowNegative, &t.AlternativeCount,
		&t.AutoAlternatives, &t.Group, &alts, &t.CorrectLetter,
		&t.Image, &t.ImageWidthPercent, &t.Active,
	)
	if err != nil {
		return t, fmt.Errorf("scan template: %w", err)
	}
	t.ProgramKind = question.ProgramKind(kind)
	t.Format = question.Format(fmtID)
	if err := json.Unmarshal([]byte(alts), &t.Alternatives); err != nil {
		return t, fmt.Errorf("template %d: decode alternatives: %w", t.ID, err)
	}
	if len(t.Alternatives) == 0 {
		t.Alternatives = nil
	}
	return t, nil
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. EXAMGEN_DB environment variable
// 2. $XDG_DATA_HOME/examgen/examgen.db
// 3. ~/.local/share/examgen/examgen.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("EXAMGEN_DB"); p != "" {
		return p, ensureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "examgen", "examgen.db")
	return p, ensureDir(p)
}

// ensureDir creates the parent directory of path if it doesn't exist.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
