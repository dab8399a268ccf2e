// Package history stores conversation turns durably in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/config"

	"github.com/elliotchance/pie/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/samber/do"
)

var _ do.Shutdownable = (*Service)(nil)

type Service struct {
	db *sql.DB
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	if dir := filepath.Dir(cfg.History.Path); dir != "." {
		_ = os.MkdirAll(dir, 0755)
	}

	return Open(cfg.History.Path)
}

// Open creates a turn store at the given DSN. ":memory:" is supported for
// tests.
func Open(dsn string) (*Service, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection so the schema survives across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	s := &Service{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *Service) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS turns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			conversation_id TEXT NOT NULL,
			role TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_conversation ON turns(conversation_id, id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// AppendTurn records one utterance at the end of a conversation.
func (s *Service) AppendTurn(ctx context.Context, conversationID string, turn Turn) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (conversation_id, role, text, created_at) VALUES (?, ?, ?, ?)`,
		conversationID, turn.Role, turn.Text, turn.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}

	return nil
}

// GetContext returns up to limit most recent turns of a conversation in
// chronological order. An unknown conversation yields an empty slice.
func (s *Service) GetContext(ctx context.Context, conversationID string, limit int) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, text, created_at FROM turns
		 WHERE conversation_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		conversationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	turns := make([]Turn, 0, limit)
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Role, &t.Text, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read turns: %w", err)
	}

	return pie.Reverse(turns), nil
}

func (s *Service) Shutdown() error {
	return s.db.Close()
}
