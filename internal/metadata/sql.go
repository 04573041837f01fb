package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	_ "github.com/mattn/go-sqlite3"
)

// Dialect captures the placeholder syntax of a SQL driver.
type Dialect struct {
	Name        string
	placeholder func(n int) string
}

var (
	Postgres = Dialect{Name: "postgres", placeholder: func(n int) string { return fmt.Sprintf("$%d", n) }}
	SQLite   = Dialect{Name: "sqlite3", placeholder: func(int) string { return "?" }}
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLStore reads URLs from a two-column table:
//
//	CREATE TABLE documents (
//	    doc_id INTEGER PRIMARY KEY,
//	    url    TEXT NOT NULL
//	);
type SQLStore struct {
	db          *sql.DB
	table       string
	dialect     Dialect
	closeDB     bool
	lookupQuery string
	upsertQuery string
}

// NewSQLStore uses db without taking ownership of it.
func NewSQLStore(db *sql.DB, dialect Dialect, table string) (*SQLStore, error) {
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &SQLStore{
		db:      db,
		table:   table,
		dialect: dialect,
		lookupQuery: fmt.Sprintf(`SELECT url FROM %s WHERE doc_id = %s`,
			table, dialect.placeholder(1)),
		upsertQuery: fmt.Sprintf(`INSERT INTO %s (doc_id, url) VALUES (%s, %s)
			ON CONFLICT (doc_id) DO UPDATE SET url = excluded.url`,
			table, dialect.placeholder(1), dialect.placeholder(2)),
	}, nil
}

// OpenSQLite opens (creating if needed) a SQLite database file. The store
// owns the connection and closes it on Close.
func OpenSQLite(ctx context.Context, path string, table string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite database %s: %w", path, err)
	}
	store, err := NewSQLStore(db, SQLite, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	store.closeDB = true
	return store, nil
}

// EnsureSchema creates the documents table if it does not exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			doc_id INTEGER PRIMARY KEY,
			url    TEXT NOT NULL
		)`, s.table))
	if err != nil {
		return fmt.Errorf("creating table %s: %w", s.table, err)
	}
	return nil
}

func (s *SQLStore) Lookup(ctx context.Context, docID int) (string, bool, error) {
	var url string
	err := s.db.QueryRowContext(ctx, s.lookupQuery, docID).Scan(&url)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%s lookup doc %d: %w", s.dialect.Name, docID, err)
	}
	if url == "" {
		return "", false, nil
	}
	return url, true, nil
}

func (s *SQLStore) Put(ctx context.Context, docID int, url string) error {
	if _, err := s.db.ExecContext(ctx, s.upsertQuery, docID, url); err != nil {
		return fmt.Errorf("%s upsert doc %d: %w", s.dialect.Name, docID, err)
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	if s.closeDB {
		return s.db.Close()
	}
	return nil
}
