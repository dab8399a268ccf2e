// Package audit writes one decision record per processed message, so every
// answer the service gives can be traced afterwards.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/config"

	"github.com/google/uuid"
	"github.com/samber/do"
)

const bufferSize = 64

var _ do.Shutdownable = (*Service)(nil)

// Record captures the outcome of a single message workflow run.
type Record struct {
	DecisionID     string    `json:"decision_id"`
	ConversationID string    `json:"conversation_id"`
	Input          string    `json:"input"`
	Output         string    `json:"output,omitempty"`
	ErrorKind      string    `json:"error_kind,omitempty"`
	DurationMs     int64     `json:"duration_ms"`
	Timestamp      time.Time `json:"timestamp"`
}

type Service struct {
	path  string
	queue chan Record
	done  chan struct{}
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return Open(cfg.Audit.Path)
}

func Open(path string) (*Service, error) {
	if dir := filepath.Dir(path); dir != "." {
		_ = os.MkdirAll(dir, 0755)
	}

	return &Service{
		path:  path,
		queue: make(chan Record, bufferSize),
		done:  make(chan struct{}),
	}, nil
}

// Record enqueues a decision record without blocking the request path. A
// full queue drops the record with a warning; auditing never delays or fails
// a response.
func (s *Service) Record(rec Record) {
	defer func() {
		if r := recover(); r != nil {

		}
	}()

	select {
	case s.queue <- rec:
	default:
		slog.Warn("audit queue is full, dropping record",
			"decision_id", rec.DecisionID)
	}
}

// Run consumes the queue and appends JSON lines until the context is
// cancelled or the queue is closed.
func (s *Service) Run(ctx context.Context) {
	defer close(s.done)

	file, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		slog.Error("Failed to open audit log", "error", err)
		return
	}
	defer file.Close()

	encoder := json.NewEncoder(file)

	for {
		select {
		case <-ctx.Done():
			return
		case rec, ok := <-s.queue:
			if !ok {
				return
			}

			if err := encoder.Encode(rec); err != nil {
				slog.Error("Failed to write audit record",
					"decision_id", rec.DecisionID,
					"error", err)
			}
		}
	}
}

// Done is closed once Run has drained and exited.
func (s *Service) Done() <-chan struct{} {
	return s.done
}

func (s *Service) Shutdown() error {
	close(s.queue)

	return nil
}

// NewDecisionID mints an identifier for a record.
func NewDecisionID() string {
	return "dec_" + uuid.NewString()
}
