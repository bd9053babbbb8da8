package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"gutencorpus/internal/config"
	"gutencorpus/internal/etext"
	"gutencorpus/internal/logging"
)

// ErrNotFound is returned when a requested e-text is not stored.
var ErrNotFound = errors.New("etext not found")

// Store manages corpus persistence over database/sql.
type Store struct {
	db       *sql.DB
	driver   string
	location string
	logger   *slog.Logger

	tx     *sql.Tx
	staged int
}

// Open connects to the configured database and ensures schema exists.
// Connection and schema failures are returned unwrapped of any retry.
func Open(ctx context.Context, cfg *config.Config, schema Schema, logger *slog.Logger) (*Store, error) {
	driver, dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	location := dsn
	if driver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	} else {
		location = redact(cfg.Database)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", cfg.Database.Driver, err)
	}

	if driver == "sqlite" {
		// One connection keeps the staged transaction and reads consistent.
		db.SetMaxOpenConns(1)
		pragmas := []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA busy_timeout = 5000",
		}
		for _, pragma := range pragmas {
			if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
				_ = db.Close()
				return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
			}
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to %s: %w", location, err)
	}

	s := &Store{
		db:       db,
		driver:   driver,
		location: location,
		logger:   logging.NewComponentLogger(logger, "store"),
	}
	if err := s.initSchema(ctx, schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Location describes the database for logs; credentials are never included.
func (s *Store) Location() string {
	return s.location
}

// Close discards staged inserts and closes the connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if s.tx != nil {
		_ = s.tx.Rollback()
		s.tx = nil
		s.staged = 0
	}
	db := s.db
	s.db = nil
	return db.Close()
}

// AllIdentifiers returns every stored e-text number in one query.
func (s *Store) AllIdentifiers(ctx context.Context) (map[int]struct{}, error) {
	rows, err := s.query(ctx, "SELECT etextno FROM etexts")
	if err != nil {
		return nil, fmt.Errorf("list identifiers: %w", err)
	}
	defer rows.Close()

	ids := make(map[int]struct{})
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan identifier: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list identifiers: %w", err)
	}
	return ids, nil
}

// Insert stages rec. It becomes durable on the next Commit. The bool reports
// whether a row was written; an identifier that is already stored is skipped
// and reported as false.
func (s *Store) Insert(ctx context.Context, rec etext.Record) (bool, error) {
	// Cancelling ctx must not roll back inserts that are already staged.
	ctx = context.WithoutCancel(ctx)
	if s.tx == nil {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return false, fmt.Errorf("begin insert tx: %w", err)
		}
		s.tx = tx
	}
	res, err := s.tx.ExecContext(ctx,
		s.rebind("INSERT INTO etexts (etextno, author, title, fulltext) VALUES (?, ?, ?, ?) ON CONFLICT (etextno) DO NOTHING"),
		rec.ID, nullString(rec.Author), nullString(rec.Title), rec.FullText)
	if err != nil {
		return false, fmt.Errorf("insert etext %d: %w", rec.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert etext %d: %w", rec.ID, err)
	}
	if affected == 0 {
		s.logger.Debug("etext already stored", logging.Int(logging.FieldEtextID, rec.ID))
		return false, nil
	}
	s.staged++
	return true, nil
}

// Commit makes all staged inserts durable. It is a no-op when nothing is staged.
func (s *Store) Commit(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	tx, staged := s.tx, s.staged
	s.tx, s.staged = nil, 0
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %d etexts: %w", staged, err)
	}
	s.logger.Debug("committed etexts", logging.Int("count", staged))
	return nil
}

// Staged reports how many inserts are waiting for Commit.
func (s *Store) Staged() int {
	return s.staged
}

// Get returns the stored record for id.
func (s *Store) Get(ctx context.Context, id int) (etext.Record, error) {
	var author, title sql.NullString
	rec := etext.Record{ID: id}
	err := s.queryRow(ctx, "SELECT author, title, fulltext FROM etexts WHERE etextno = ?", id).
		Scan(&author, &title, &rec.FullText)
	if errors.Is(err, sql.ErrNoRows) {
		return etext.Record{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return etext.Record{}, fmt.Errorf("get etext %d: %w", id, err)
	}
	rec.Author = author.String
	rec.Title = title.String
	return rec, nil
}

// Summary is a record without its full text.
type Summary struct {
	ID       int    `json:"id"`
	Author   string `json:"author,omitempty"`
	Title    string `json:"title,omitempty"`
	TextSize int    `json:"text_size"`
}

// List returns summaries ordered by identifier.
func (s *Store) List(ctx context.Context, offset, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.query(ctx,
		"SELECT etextno, author, title, LENGTH(fulltext) FROM etexts ORDER BY etextno LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list etexts: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum           Summary
			author, title sql.NullString
		)
		if err := rows.Scan(&sum.ID, &author, &title, &sum.TextSize); err != nil {
			return nil, fmt.Errorf("scan etext: %w", err)
		}
		sum.Author = author.String
		sum.Title = title.String
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list etexts: %w", err)
	}
	return out, nil
}

// Stats summarizes the stored corpus.
type Stats struct {
	Total         int `json:"total"`
	MissingAuthor int `json:"missing_author"`
	MissingTitle  int `json:"missing_title"`
}

// Stats counts stored records and missing metadata fields.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.queryRow(ctx,
		"SELECT COUNT(*), COUNT(*) - COUNT(author), COUNT(*) - COUNT(title) FROM etexts").
		Scan(&st.Total, &st.MissingAuthor, &st.MissingTitle)
	if err != nil {
		return Stats{}, fmt.Errorf("count etexts: %w", err)
	}
	return st, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.queryRow(ctx, "SELECT COUNT(*) FROM etexts").Scan(&n); err != nil {
		return 0, fmt.Errorf("count etexts: %w", err)
	}
	return n, nil
}

// Reads go through the staged transaction when one is open so callers see
// their own uncommitted inserts.
func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if s.tx != nil {
		return s.tx.QueryContext(ctx, s.rebind(query), args...)
	}
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	if s.tx != nil {
		return s.tx.QueryRowContext(ctx, s.rebind(query), args...)
	}
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != "pgx" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func redact(db config.Database) string {
	host := db.Host
	if host == "" {
		host = "localhost"
	}
	if db.Port > 0 {
		host += ":" + strconv.Itoa(db.Port)
	}
	return db.Driver + "://" + host + "/" + db.Database
}
