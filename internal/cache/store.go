// Package cache persists completed translations in SQLite so identical
// requests skip the backend.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/nadzzz/codeswitch/internal/errors"
	"github.com/nadzzz/codeswitch/internal/language"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Entry is one cached translation.
type Entry struct {
	Key            string
	SourceLanguage language.Language
	TargetLanguage language.Language
	Backend        string
	Model          string
	TranslatedCode string
	Hits           int
	CreatedAt      time.Time
}

// Stats summarises cache contents.
type Stats struct {
	Entries int `json:"entries"`
	Hits    int `json:"hits"`
}

// Store is a SQLite-backed translation cache. Safe for concurrent use.
type Store struct {
	db *sql.DB
	sq sq.StatementBuilderType
}

// Open opens (creating if needed) the database at dbPath and applies migrations.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, errors.Wrap(err, "make db dir")
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	if dbPath == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, errors.Wrapf(err, "pragma %q", p)
		}
	}
	if err := applyMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, sq: sq.StatementBuilder}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key derives the cache key for a translation request.
func Key(code string, from, to language.Language, backend, model string) string {
	h := sha256.New()
	for _, part := range []string{string(from), string(to), backend, model, code} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the entry for key, or nil when absent. A hit bumps the counter.
func (s *Store) Get(ctx context.Context, key string) (*Entry, error) {
	q := s.sq.Select(
		"cache_key",
		"source_language",
		"target_language",
		"backend",
		"model",
		"translated_code",
		"hits",
		"created_at",
	).
		From("translations").
		Where(sq.Eq{"cache_key": key}).
		Limit(1)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building cache query")
	}

	var e Entry
	var from, to, created string
	err = s.db.QueryRowContext(ctx, sqlStr, args...).Scan(
		&e.Key,
		&from,
		&to,
		&e.Backend,
		&e.Model,
		&e.TranslatedCode,
		&e.Hits,
		&created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading cache entry")
	}
	e.SourceLanguage = language.Language(from)
	e.TargetLanguage = language.Language(to)
	e.CreatedAt, _ = time.Parse(time.RFC3339, created)

	upd, uargs, err := s.sq.Update("translations").
		Set("hits", sq.Expr("hits + 1")).
		Set("last_used_at", now()).
		Where(sq.Eq{"cache_key": key}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building cache update")
	}
	if _, err := s.db.ExecContext(ctx, upd, uargs...); err != nil {
		return nil, errors.Wrap(err, "updating cache hits")
	}
	e.Hits++
	return &e, nil
}

// Put stores or replaces an entry.
func (s *Store) Put(ctx context.Context, e Entry) error {
	ts := now()
	q := s.sq.
		Insert("translations").
		Columns(
			"cache_key",
			"source_language",
			"target_language",
			"backend",
			"model",
			"translated_code",
			"created_at",
			"last_used_at",
		).
		Values(
			e.Key,
			string(e.SourceLanguage),
			string(e.TargetLanguage),
			e.Backend,
			e.Model,
			e.TranslatedCode,
			ts,
			ts,
		).
		Suffix("ON CONFLICT(cache_key) DO UPDATE SET translated_code=excluded.translated_code, last_used_at=excluded.last_used_at")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return errors.Wrap(err, "building cache insert")
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return errors.Wrap(err, "writing cache entry")
	}
	return nil
}

// Stats counts entries and total hits.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	sqlStr, args, err := s.sq.Select("COUNT(*)", "COALESCE(SUM(hits), 0)").From("translations").ToSql()
	if err != nil {
		return Stats{}, errors.Wrap(err, "building stats query")
	}
	var st Stats
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&st.Entries, &st.Hits); err != nil {
		return Stats{}, errors.Wrap(err, "reading cache stats")
	}
	return st, nil
}

// Prune deletes entries not used since before.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	sqlStr, args, err := s.sq.Delete("translations").
		Where(sq.Lt{"last_used_at": before.UTC().Format(time.RFC3339)}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building prune query")
	}
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, errors.Wrap(err, "pruning cache")
	}
	return res.RowsAffected()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
        name TEXT PRIMARY KEY,
        applied_at TEXT NOT NULL
    )`); err != nil {
		return errors.Wrap(err, "create schema_migrations")
	}
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return errors.Wrap(err, "read migrations")
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	for _, name := range files {
		var n int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE name = ?`, name).Scan(&n)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return errors.Wrapf(err, "check migration %s", name)
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", name))
		if err != nil {
			return errors.Wrapf(err, "read migration %s", name)
		}
		if _, err := db.Exec(string(b)); err != nil {
			return errors.Wrapf(err, "apply migration %s", name)
		}
		if _, err := db.Exec(`INSERT INTO schema_migrations(name, applied_at) VALUES (?, ?)`, name, now()); err != nil {
			return errors.Wrapf(err, "record migration %s", name)
		}
	}
	return nil
}
