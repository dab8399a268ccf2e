// Package chat runs the conversation workflow: analyze the message, generate
// a validated response, persist the turn. It is an explicit finite-state
// dispatch over State.NextStep; node failures are converted into the error
// branch and never propagate out of the router.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/client/llm"
	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/config"
	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/service/audit"
	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/service/history"
	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/service/memory"
	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/service/safety"
	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/service/terms"

	"github.com/samber/do"
)

type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type HistoryStore interface {
	GetContext(ctx context.Context, conversationID string, limit int) ([]history.Turn, error)
	AppendTurn(ctx context.Context, conversationID string, turn history.Turn) error
}

type FactStore interface {
	AddFacts(conversationID string, facts []string) error
	Format(conversationID string) (string, error)
}

type AuditSink interface {
	Record(rec audit.Record)
}

type Service struct {
	llm        LLMClient
	historySvc HistoryStore
	memorySvc  FactStore
	auditSvc   AuditSink

	detector  *terms.Detector
	validator *safety.Validator

	historyLimit     int
	maxMessageLength int
	llmTimeout       time.Duration
	persist          bool
}

type Options struct {
	LLM     LLMClient
	History HistoryStore
	Memory  FactStore
	Audit   AuditSink

	Detector  *terms.Detector
	Validator *safety.Validator

	HistoryLimit     int
	MaxMessageLength int
	LLMTimeout       time.Duration
	// DisablePersistence skips the store node's writes entirely
	DisablePersistence bool
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	detector, err := terms.NewDetector(cfg.Terms.Patterns)
	if err != nil {
		return nil, fmt.Errorf("terms.NewDetector: %w", err)
	}

	validator, err := safety.NewValidator(cfg.Safety)
	if err != nil {
		return nil, fmt.Errorf("safety.NewValidator: %w", err)
	}

	return NewService(Options{
		LLM:                do.MustInvoke[llm.Client](di),
		History:            do.MustInvoke[*history.Service](di),
		Memory:             do.MustInvoke[*memory.Service](di),
		Audit:              do.MustInvoke[*audit.Service](di),
		Detector:           detector,
		Validator:          validator,
		HistoryLimit:       cfg.Chat.HistoryLimit,
		MaxMessageLength:   cfg.Chat.MaxMessageLength,
		LLMTimeout:         time.Duration(cfg.Chat.LLMTimeoutSeconds) * time.Second,
		DisablePersistence: cfg.Chat.DisablePersistence,
	})
}

func NewService(opts Options) (*Service, error) {
	if opts.LLM == nil {
		return nil, errors.New("chat: llm client must not be nil")
	}
	if opts.History == nil {
		return nil, errors.New("chat: history store must not be nil")
	}
	if opts.Memory == nil {
		return nil, errors.New("chat: fact store must not be nil")
	}
	if opts.Detector == nil {
		return nil, errors.New("chat: detector must not be nil")
	}
	if opts.Validator == nil {
		return nil, errors.New("chat: validator must not be nil")
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 10
	}
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = 4000
	}
	if opts.LLMTimeout <= 0 {
		opts.LLMTimeout = 30 * time.Second
	}

	return &Service{
		llm:              opts.LLM,
		historySvc:       opts.History,
		memorySvc:        opts.Memory,
		auditSvc:         opts.Audit,
		detector:         opts.Detector,
		validator:        opts.Validator,
		historyLimit:     opts.HistoryLimit,
		maxMessageLength: opts.MaxMessageLength,
		llmTimeout:       opts.LLMTimeout,
		persist:          !opts.DisablePersistence,
	}, nil
}

// ProcessMessage runs one message through the workflow. All failures are
// recovered into a safe ErrorMessage; the result never carries both a
// response and an error.
func (s *Service) ProcessMessage(ctx context.Context, conversationID, message string) *Result {
	start := time.Now()

	state := &State{
		ConversationID: conversationID,
		InputMessage:   message,
		NextStep:       StepAnalyze,
		Metrics:        map[string]any{},
	}

	if err := s.checkInput(message); err != nil {
		state.Err = err
		state.NextStep = StepError
	}

	for state.NextStep != StepEnd {
		switch state.NextStep {
		case StepAnalyze:
			s.runNode(ctx, "analyze", state, s.analyze)
		case StepRespond:
			s.runNode(ctx, "respond", state, s.respond)
		case StepStore:
			s.runNode(ctx, "store", state, s.store)
		case StepError:
			s.fail(state)
		default:
			state.Err = &NodeError{
				Kind: KindInternal,
				Err:  fmt.Errorf("unknown step %q", state.NextStep),
			}
			state.NextStep = StepError
		}
	}

	state.Metrics["total_ms"] = time.Since(start).Milliseconds()

	return s.finalize(state)
}

// runNode executes one node, treating a panic exactly like a node-reported
// failure: caught at the node boundary, converted to the error branch.
func (s *Service) runNode(ctx context.Context, name string, state *State, node func(context.Context, *State)) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Workflow node panicked",
				"node", name,
				"conversation_id", state.ConversationID,
				"panic", r)

			state.Err = &NodeError{
				Kind: KindInternal,
				Err:  fmt.Errorf("node %s panicked: %v", name, r),
			}
			state.NextStep = StepError
		}
	}()

	nodeStart := time.Now()
	node(ctx, state)
	state.Metrics[name+"_ms"] = time.Since(nodeStart).Milliseconds()
}

func (s *Service) finalize(state *State) *Result {
	result := &Result{
		ConversationID: state.ConversationID,
		DetectedTerms:  state.DetectedTerms,
		Metrics:        state.Metrics,
	}

	rec := audit.Record{
		DecisionID:     audit.NewDecisionID(),
		ConversationID: state.ConversationID,
		Input:          state.InputMessage,
		Timestamp:      time.Now().UTC(),
	}
	if ms, ok := state.Metrics["total_ms"].(int64); ok {
		rec.DurationMs = ms
	}

	if state.Err != nil {
		result.ErrorKind = state.Err.Kind
		result.ErrorMessage = state.Err.UserMessage()
		rec.ErrorKind = string(state.Err.Kind)
	} else {
		result.Response = state.GeneratedResponse
		rec.Output = state.GeneratedResponse
	}

	if s.auditSvc != nil {
		s.auditSvc.Record(rec)
	}

	return result
}
