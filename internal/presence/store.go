package presence

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/gob"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

var (
	ErrBadName  = errors.New("bad name for store")
	ErrNotFound = errors.New("entry not found")
)

// Store is the shared state the registry reads and writes. Implementations
// need not be linearizable: the registry only ever overwrites whole entries.
type Store interface {
	Get(ctx context.Context, token string) (Entry, error)
	Set(ctx context.Context, e Entry) error
	Delete(ctx context.Context, token string) error
	All(ctx context.Context) ([]Entry, error)
}

// MemoryStore keeps entries in process. Used by single-instance deployments
// and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Get(_ context.Context, token string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[token]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e.clone(), nil
}

func (s *MemoryStore) Set(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.Token] = e.clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
	return nil
}

func (s *MemoryStore) All(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]Entry, 0, len(s.entries))
	for _, token := range slices.Sorted(maps.Keys(s.entries)) {
		entries = append(entries, s.entries[token].clone())
	}
	return entries, nil
}

func isLetter(c rune) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
}

func isLetters(s string) bool {
	for _, c := range s {
		if !isLetter(c) {
			return false
		}
	}
	return s != ""
}

// SQLStore keeps gob-encoded entries in a two-column table. It works with
// any driver accepting $N placeholders (pgx through database/sql, sqlite).
type SQLStore struct {
	mu   sync.Mutex
	name string
	db   *sql.DB
}

// Creates a new [SQLStore] backed by table name, creating the table if it
// does not exist. name may only contain Latin letters and underscores.
func NewSQLStore(ctx context.Context, db *sql.DB, name string) (*SQLStore, error) {
	if !isLetters(name) {
		return nil, ErrBadName
	}

	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS `+name+` (
	token	TEXT PRIMARY KEY,
	entry	BYTEA NOT NULL
);`)
	if err != nil {
		return nil, fmt.Errorf("unable to create table %s: %w", name, err)
	}
	return &SQLStore{name: name, db: db}, nil
}

func decodeEntry(v []byte) (Entry, error) {
	var e Entry
	err := gob.NewDecoder(bytes.NewReader(v)).Decode(&e)
	return e, err
}

func (s *SQLStore) Get(ctx context.Context, token string) (Entry, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT entry FROM `+s.name+` WHERE token = $1;`, token,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	} else if err != nil {
		return Entry{}, err
	}
	return decodeEntry(v)
}

// Inserts a new entry or replaces an existing one.
func (s *SQLStore) Set(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO `+s.name+` (token, entry)
VALUES ($1, $2)
ON CONFLICT (token)
DO UPDATE SET entry = excluded.entry;`,
		e.Token, buf.Bytes())
	return err
}

// Deletes token from store without checking if it existed.
func (s *SQLStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM `+s.name+` WHERE token = $1;`, token)
	return err
}

func (s *SQLStore) All(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT entry FROM `+s.name+` ORDER BY token;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var v []byte
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		e, err := decodeEntry(v)
		if err != nil {
			return nil, fmt.Errorf("corrupt entry in %s: %w", s.name, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
