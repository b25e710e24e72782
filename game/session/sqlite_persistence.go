package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/wricardo/power-2048/game/service"
)

// SQLitePersistence implements SessionPersistence on a SQLite database
type SQLitePersistence struct {
	db *sql.DB
}

// OpenSQLitePersistence creates or opens the database at dbPath and runs migrations
func OpenSQLitePersistence(dbPath string) (*SQLitePersistence, error) {
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("sqlite: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: cannot open database: %w", err)
	}

	// A single writer avoids SQLITE_BUSY between concurrent saves
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: cannot connect to database: %w", err)
	}

	p := &SQLitePersistence{db: db}
	if err := p.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migration failed: %w", err)
	}

	return p, nil
}

func (p *SQLitePersistence) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			rules_name TEXT NOT NULL,
			state_json TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			last_accessed_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_last_accessed ON sessions(last_accessed_at);
	`

	_, err := p.db.Exec(schema)
	return err
}

// Close closes the database connection
func (p *SQLitePersistence) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// Save upserts a session row
func (p *SQLitePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	data := newPersistedData(session)
	stateJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sqlite: cannot marshal session: %w", err)
	}

	_, err = p.db.Exec(
		`INSERT INTO sessions (id, rules_name, state_json, created_at, last_accessed_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			rules_name = excluded.rules_name,
			state_json = excluded.state_json,
			last_accessed_at = excluded.last_accessed_at`,
		data.ID, data.Rules.Name, string(stateJSON),
		data.CreatedAt.UnixNano(), data.LastAccessedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: cannot save session %s: %w", session.ID, err)
	}

	return nil
}

// Load reads a session row and rebuilds the session
func (p *SQLitePersistence) Load(id string) (*service.Session, error) {
	var stateJSON string
	err := p.db.QueryRow("SELECT state_json FROM sessions WHERE id = ?", id).Scan(&stateJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: cannot load session %s: %w", id, err)
	}

	return decodeSession([]byte(stateJSON))
}

// Delete removes a session row
func (p *SQLitePersistence) Delete(id string) error {
	result, err := p.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("sqlite: cannot delete session %s: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: cannot get affected rows: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// ListAll returns all stored session IDs, most recently used first
func (p *SQLitePersistence) ListAll() ([]string, error) {
	rows, err := p.db.Query("SELECT id FROM sessions ORDER BY last_accessed_at DESC")
	if err != nil {
		return nil, fmt.Errorf("sqlite: cannot list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: cannot scan row: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: row iteration error: %w", err)
	}

	return ids, nil
}

// Exists checks if a session row exists
func (p *SQLitePersistence) Exists(id string) bool {
	var one int
	err := p.db.QueryRow("SELECT 1 FROM sessions WHERE id = ?", id).Scan(&one)
	return err == nil
}
