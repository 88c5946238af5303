// Package history journals conversation transcripts.
// The SQLite journal opens its database lazily and creates it on first use.
// If opening the DB or executing queries fails, it falls back to in-memory storage.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/comigor/notesai/internal/logger"
)

// Memory is an in-memory Journal.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
	nextID  int64
}

// NewMemory returns an empty in-memory journal.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Save(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == 0 {
		m.nextID++
		e.ID = m.nextID
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *Memory) List(_ context.Context, sessionID string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entry
	for _, e := range m.entries {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }

// SQLite is a Journal backed by a SQLite file. Every entry is also kept in
// memory so List keeps working if the database goes away.
type SQLite struct {
	path string
	log  *slog.Logger

	once    sync.Once
	db      *sql.DB
	initErr error

	mem *Memory
}

// Open returns a journal for the database at path. Nothing touches the disk
// until the first Save or List.
func Open(path string) *SQLite {
	return &SQLite{
		path: path,
		log:  logger.L.With(slog.String("component", "history")),
		mem:  NewMemory(),
	}
}

// init lazily opens the SQLite database and creates the messages table if it doesn't exist.
func (s *SQLite) init() {
	if s.path == "" {
		s.initErr = errors.New("empty database path")
		s.log.Warn("no history db configured; using in-memory history")
		return
	}
	db, err := sql.Open("sqlite", "file:"+s.path+"?_pragma=busy_timeout(10000)")
	if err != nil {
		s.initErr = err
		s.log.Warn("sqlite open failed; using in-memory history", "error", err)
		return
	}
	if _, err = db.Exec(`CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		role TEXT,
		content TEXT,
		created_at TEXT
	);`); err != nil {
		_ = db.Close()
		s.initErr = err
		s.log.Warn("sqlite table creation failed; using in-memory history", "error", err)
		return
	}
	s.db = db
	s.log.Info("sqlite history DB initialized", "path", s.path)
}

func (s *SQLite) ready() bool {
	s.once.Do(s.init)
	return s.initErr == nil && s.db != nil
}

// Fallback reports whether the journal is running on memory only.
func (s *SQLite) Fallback() bool {
	return !s.ready()
}

// Save persists e to the database when available and always keeps an in-memory copy.
func (s *SQLite) Save(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if s.ready() {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO messages (session_id, role, content, created_at) VALUES (?,?,?,?);`,
			e.SessionID, e.Role, e.Content, e.CreatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			s.log.Error("failed to store message in sqlite; falling back to memory", "error", err)
		} else if id, err := res.LastInsertId(); err == nil {
			e.ID = id
		}
	}
	return s.mem.Save(ctx, e)
}

// List returns all entries of a session in chronological order.
func (s *SQLite) List(ctx context.Context, sessionID string) ([]Entry, error) {
	if s.ready() {
		out, err := s.query(ctx, sessionID)
		if err == nil {
			return out, nil
		}
		s.log.Error("failed to read history from sqlite; using memory", "error", err)
	}
	return s.mem.List(ctx, sessionID)
}

func (s *SQLite) query(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, created_at FROM messages WHERE session_id = ? ORDER BY id ASC;`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			created string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Role, &e.Content, &created); err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the database, if it was ever opened.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
