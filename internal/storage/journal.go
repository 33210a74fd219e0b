package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultKeep is how many journal rows are kept per data file.
const DefaultKeep = 10

// Entry describes one save. It never holds record content.
type Entry struct {
	ID        int64
	Path      string
	SavedAt   time.Time
	Size      int
	Passwords int
	TOTPs     int
	Encrypted bool
}

// Journal records saves in a sqlite database.
type Journal struct {
	db   *sql.DB
	keep int
}

func OpenJournal(dbPath string, keep int) (*Journal, error) {
	if dbPath == "" {
		return nil, errors.New("journal path is empty")
	}
	if keep <= 0 {
		keep = DefaultKeep
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	j := &Journal{db: db, keep: keep}
	if err := j.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS saves (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT NOT NULL,
	saved_at TEXT NOT NULL,
	size INTEGER NOT NULL,
	passwords INTEGER NOT NULL,
	totp INTEGER NOT NULL,
	encrypted INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS saves_path ON saves (path, id);`
	_, err := j.db.Exec(ddl)
	return err
}

// Append stores e (ID and SavedAt are filled in) and prunes old rows of the
// same path.
func (j *Journal) Append(ctx context.Context, e Entry) error {
	key := journalKey(e.Path)
	savedAt := time.Now().UTC()
	if !e.SavedAt.IsZero() {
		savedAt = e.SavedAt.UTC()
	}
	_, err := j.db.ExecContext(ctx, `
INSERT INTO saves (path, saved_at, size, passwords, totp, encrypted)
VALUES (?, ?, ?, ?, ?, ?);`,
		key, savedAt.Format(time.RFC3339Nano), e.Size, e.Passwords, e.TOTPs, boolToInt(e.Encrypted))
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	_, err = j.db.ExecContext(ctx, `
DELETE FROM saves WHERE path = ? AND id NOT IN (
	SELECT id FROM saves WHERE path = ? ORDER BY id DESC LIMIT ?
);`, key, key, j.keep)
	if err != nil {
		return fmt.Errorf("prune journal: %w", err)
	}
	return nil
}

// List returns the entries for path, newest first.
func (j *Journal) List(ctx context.Context, path string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
SELECT id, path, saved_at, size, passwords, totp, encrypted
FROM saves WHERE path = ? ORDER BY id DESC;`, journalKey(path))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			savedAt   string
			encrypted int
		)
		if err := rows.Scan(&e.ID, &e.Path, &savedAt, &e.Size, &e.Passwords, &e.TOTPs, &encrypted); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, savedAt); err == nil {
			e.SavedAt = t
		}
		e.Encrypted = encrypted != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func journalKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
