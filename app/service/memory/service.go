// Package memory keeps long-lived patient facts per conversation, persisted
// as JSON lines.
package memory

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/config"

	"github.com/samber/do"
)

type Service struct {
	path string
	mu   sync.RWMutex
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return Open(cfg.Memory.Path)
}

func Open(path string) (*Service, error) {
	if dir := filepath.Dir(path); dir != "." {
		_ = os.MkdirAll(dir, 0755)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory file: %w", err)
	}
	defer file.Close()

	return &Service{path: path}, nil
}

func (s *Service) load() ([]*record, error) {
	file, err := os.OpenFile(s.path, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open memory file: %w", err)
	}
	defer file.Close()

	var records []*record

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var item record
		if err = json.Unmarshal([]byte(line), &item); err != nil {
			return nil, fmt.Errorf("failed to parse JSON line: %w", err)
		}

		records = append(records, &item)
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading memory file: %w", err)
	}

	return records, nil
}

func (s *Service) save(records []*record) error {
	file, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create/open memory file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		if _, err = writer.WriteString(string(data) + "\n"); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	if err = writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}

	return nil
}

// AddFacts appends new facts for a conversation, dropping exact duplicates.
func (s *Service) AddFacts(conversationID string, facts []string) error {
	if len(facts) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}

	var existing *record
	for _, r := range records {
		if r.ConversationID == conversationID {
			existing = r
			break
		}
	}

	if existing == nil {
		existing = &record{ConversationID: conversationID}
		records = append(records, existing)
	}

	known := make(map[string]bool, len(existing.Facts))
	for _, f := range existing.Facts {
		known[f] = true
	}

	for _, f := range facts {
		if known[f] {
			continue
		}
		known[f] = true
		existing.Facts = append(existing.Facts, f)
	}

	return s.save(records)
}

// Facts returns everything known about a conversation's patient.
func (s *Service) Facts(conversationID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, r := range records {
		if r.ConversationID == conversationID {
			return r.Facts, nil
		}
	}

	return nil, nil
}

// Format renders the known facts as a prompt context block. Returns an empty
// string when nothing is known.
func (s *Service) Format(conversationID string) (string, error) {
	facts, err := s.Facts(conversationID)
	if err != nil {
		return "", err
	}

	if len(facts) == 0 {
		return "", nil
	}

	var builder strings.Builder
	for _, f := range facts {
		builder.WriteString("- ")
		builder.WriteString(f)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}
