// Package chatlog records chat requests to a local SQLite database for the
// admin/debug surface. It is observability only; quota enforcement never
// reads from it.
package chatlog

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Manager stores chat request records in SQLite.
type Manager struct {
	db     *sql.DB
	dbPath string
}

// NewManager opens (or creates) the chat log database.
func NewManager(dbPath string) (*Manager, error) {
	if dbPath == "" {
		dbPath = ".config/chat_logs.db"
	}

	// _busy_timeout=5000 - wait up to 5 seconds when the database is locked
	// _txlock=immediate - acquire the write lock immediately in transactions
	connStr := dbPath + "?_busy_timeout=5000&_txlock=immediate"
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple write connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		log.Printf("⚠️ Failed to enable WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		log.Printf("⚠️ Failed to set busy timeout: %v", err)
	}

	m := &Manager{
		db:     db,
		dbPath: dbPath,
	}

	if err := m.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Printf("📊 Chat log manager initialized: %s", dbPath)
	return m, nil
}

// initSchema creates the chat_logs table and indexes.
func (m *Manager) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chat_logs (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		identity TEXT NOT NULL,
		conversation_id TEXT NOT NULL,
		verdict TEXT NOT NULL,
		reason TEXT,
		model TEXT,
		http_status INTEGER DEFAULT 0,
		duration_ms INTEGER DEFAULT 0,
		input_tokens INTEGER DEFAULT 0,
		output_tokens INTEGER DEFAULT 0,
		stream BOOLEAN NOT NULL DEFAULT 0,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_chat_logs_created_at ON chat_logs(created_at);
	CREATE INDEX IF NOT EXISTS idx_chat_logs_identity ON chat_logs(identity);
	CREATE INDEX IF NOT EXISTS idx_chat_logs_conversation ON chat_logs(conversation_id);
	`

	_, err := m.db.Exec(schema)
	return err
}

// Record inserts one chat request record. A missing ID or timestamp is
// filled in.
func (m *Manager) Record(e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := m.db.Exec(`
		INSERT INTO chat_logs (
			id, created_at, identity, conversation_id, verdict, reason,
			model, http_status, duration_ms, input_tokens, output_tokens, stream, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt.UTC(), e.Identity, e.ConversationID, e.Verdict, e.Reason,
		e.Model, e.HTTPStatus, e.DurationMs, e.InputTokens, e.OutputTokens, e.Stream, e.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat log: %w", err)
	}
	return nil
}

// Recent returns the newest records, capped at limit.
func (m *Manager) Recent(limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := m.db.Query(`
		SELECT id, created_at, identity, conversation_id, verdict,
		       COALESCE(reason, ''), COALESCE(model, ''), http_status,
		       duration_ms, input_tokens, output_tokens, stream, COALESCE(error, '')
		FROM chat_logs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat logs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.CreatedAt, &e.Identity, &e.ConversationID, &e.Verdict,
			&e.Reason, &e.Model, &e.HTTPStatus,
			&e.DurationMs, &e.InputTokens, &e.OutputTokens, &e.Stream, &e.Error,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chat log row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Cleanup deletes records older than the retention window.
func (m *Manager) Cleanup(retainedDays int) (int64, error) {
	if retainedDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -retainedDays).UTC()
	res, err := m.db.Exec(`DELETE FROM chat_logs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up chat logs: %w", err)
	}
	return res.RowsAffected()
}

// StartCleanupLoop deletes expired records hourly until stop is closed.
func (m *Manager) StartCleanupLoop(retainedDays int, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if deleted, err := m.Cleanup(retainedDays); err != nil {
					log.Printf("⚠️ Chat log cleanup failed: %v", err)
				} else if deleted > 0 {
					log.Printf("🗑️ Cleaned up %d expired chat log record(s)", deleted)
				}
			case <-stop:
				return
			}
		}
	}()
}

// Close closes the underlying database.
func (m *Manager) Close() error {
	return m.db.Close()
}
