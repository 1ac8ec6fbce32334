package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/thywilljoshua/studyaid/internal/study"
)

// timeLayout sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore keeps session state in a SQLite file so a session outlives the
// process that created it. Live sessions are cached in memory.
type SQLiteStore struct {
	db    *sql.DB
	cache *MemoryStore
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &SQLiteStore{db: db, cache: NewMemoryStore()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		state      TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at DESC);
	`)
	return err
}

func (s *SQLiteStore) Create(ctx context.Context) (*study.Session, error) {
	sess := study.NewSession(newID())
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*study.Session, error) {
	if sess, ok := s.cache.cached(id); ok {
		return sess, nil
	}
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM sessions WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	var st study.State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	sess := study.Restore(id, st)
	s.cache.put(sess)
	return sess, nil
}

func (s *SQLiteStore) Save(ctx context.Context, sess *study.Session) error {
	st := sess.Snapshot()
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	now := time.Now().UTC().Format(timeLayout)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, state, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		sess.ID, string(b), now, now)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	s.cache.put(sess)
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	s.cache.Delete(ctx, id)
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Prune deletes sessions untouched since before cutoff and returns how many went.
func (s *SQLiteStore) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	ids, err := s.staleIDs(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
			return 0, err
		}
	}
	return len(ids), nil
}

func (s *SQLiteStore) staleIDs(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions WHERE updated_at < ?`, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
