package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
    id          TEXT PRIMARY KEY,
    text        TEXT NOT NULL,
    completed   INTEGER NOT NULL DEFAULT 0,
    created_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_created
    ON tasks(created_at DESC);
`

// Store is a SQLite-backed Service.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the task database at dbPath. A leading "~/" is expanded to the user home
// directory. The special path ":memory:" opens a private in-memory database.
func Open(dbPath string) (*Store, error) {
	resolved, err := resolvePath(dbPath)
	if err != nil {
		return nil, err
	}
	if resolved != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func resolvePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", errors.New("db path is required")
	}
	if p == ":memory:" {
		return p, nil
	}
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home dir: %w", err)
		}
		p = filepath.Join(home, p[2:])
	}
	return filepath.Clean(p), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) List(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, completed, created_at FROM tasks
		ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) Create(ctx context.Context, text string) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, ErrEmptyText
	}

	t := Task{
		ID:        uuid.NewString(),
		Text:      text,
		Completed: false,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, text, completed, created_at) VALUES (?, ?, 0, ?)`,
		t.ID, t.Text, t.CreatedAt.UnixMilli())
	if err != nil {
		return Task{}, err
	}
	return t, nil
}

func (s *Store) Toggle(ctx context.Context, id string) (Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Task{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, `UPDATE tasks SET completed = 1 - completed WHERE id = ?`, id)
	if err != nil {
		return Task{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Task{}, err
	}
	if n == 0 {
		return Task{}, ErrNotFound
	}

	t, err := scanTask(tx.QueryRowContext(ctx,
		`SELECT id, text, completed, created_at FROM tasks WHERE id = ?`, id))
	if err != nil {
		return Task{}, err
	}
	return t, tx.Commit()
}

func (s *Store) Remove(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (Task, error) {
	var (
		t         Task
		completed int
		createdAt int64
	)
	if err := row.Scan(&t.ID, &t.Text, &completed, &createdAt); err != nil {
		return Task{}, err
	}
	t.Completed = completed != 0
	t.CreatedAt = time.UnixMilli(createdAt).UTC()
	return t, nil
}
