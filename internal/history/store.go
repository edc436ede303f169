// Package history persists the chat transcript and a materials cache in a
// local SQLite database so past sessions survive restarts and can be
// exported without a round trip to the server.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/edurag/tutorcli/internal/model"
)

// Store wraps the SQLite connection.
type Store struct {
	conn *sql.DB
}

// Open opens or creates the database at path, creating parent directories
// as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// WAL keeps reads cheap while a chat session is appending.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		query_log_id TEXT DEFAULT '',
		response_ms INTEGER DEFAULT 0,
		sources TEXT DEFAULT '',
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS materials (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		subject TEXT DEFAULT '',
		grade_level INTEGER DEFAULT 0,
		file_name TEXT DEFAULT '',
		status TEXT NOT NULL,
		uploaded_at DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_messages_created ON messages(created_at);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Append stores one transcript message.
func (s *Store) Append(msg model.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	var sources string
	if len(msg.Sources) > 0 {
		data, err := json.Marshal(msg.Sources)
		if err != nil {
			return fmt.Errorf("marshal sources: %w", err)
		}
		sources = string(data)
	}
	_, err := s.conn.Exec(`
		INSERT INTO messages (id, role, content, query_log_id, response_ms, sources, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, string(msg.Role), msg.Content, msg.QueryLogID, msg.ResponseTimeMs, sources, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// Recent returns up to n messages, oldest first. n <= 0 returns everything.
// Same-timestamp rows are broken by insertion order (rowid), so rapid
// exchanges come back exactly as they were appended.
func (s *Store) Recent(n int) ([]model.Message, error) {
	query := `
		SELECT id, role, content, query_log_id, response_ms, sources, created_at
		FROM messages ORDER BY created_at DESC, rowid DESC`
	args := []interface{}{}
	if n > 0 {
		query += " LIMIT ?"
		args = append(args, n)
	}
	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		var (
			msg     model.Message
			role    string
			sources string
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &msg.QueryLogID,
			&msg.ResponseTimeMs, &sources, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Role = model.Role(role)
		if sources != "" {
			if err := json.Unmarshal([]byte(sources), &msg.Sources); err != nil {
				return nil, fmt.Errorf("decode sources: %w", err)
			}
		}
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Reverse into chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Clear removes the whole local transcript.
func (s *Store) Clear() error {
	_, err := s.conn.Exec("DELETE FROM messages")
	if err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	return nil
}

// Export writes the full transcript as indented JSON.
func (s *Store) Export(w io.Writer) error {
	messages, err := s.Recent(0)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(messages)
}

// CacheMaterials replaces the local materials snapshot.
func (s *Store) CacheMaterials(materials []model.Material) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.Exec("DELETE FROM materials"); err != nil {
		return fmt.Errorf("clear materials: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO materials (id, title, subject, grade_level, file_name, status, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, m := range materials {
		if _, err := stmt.Exec(m.ID, m.Title, m.Subject.Name, m.Grade.Level,
			m.FileName, string(m.Status), m.UploadedAt); err != nil {
			return fmt.Errorf("insert material %s: %w", m.ID, err)
		}
	}
	return tx.Commit()
}

// CachedMaterials returns the last snapshot, newest upload first.
func (s *Store) CachedMaterials() ([]model.Material, error) {
	rows, err := s.conn.Query(`
		SELECT id, title, subject, grade_level, file_name, status, uploaded_at
		FROM materials ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select materials: %w", err)
	}
	defer rows.Close()

	var out []model.Material
	for rows.Next() {
		var (
			m        model.Material
			status   string
			uploaded sql.NullTime
		)
		if err := rows.Scan(&m.ID, &m.Title, &m.Subject.Name, &m.Grade.Level,
			&m.FileName, &status, &uploaded); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		m.Status = model.Status(status)
		if uploaded.Valid {
			m.UploadedAt = uploaded.Time
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
