package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/service/history"
)

func (s *Service) checkInput(message string) *NodeError {
	trimmed := strings.TrimSpace(message)

	if trimmed == "" {
		return &NodeError{Kind: KindMalformedInput, Err: errors.New("empty message")}
	}
	if len(message) > s.maxMessageLength {
		return &NodeError{
			Kind: KindMalformedInput,
			Err:  fmt.Errorf("message too long (%d > %d)", len(message), s.maxMessageLength),
		}
	}

	return nil
}

// analyze detects medical terms and loads the conversation's prior turns and
// known facts.
func (s *Service) analyze(ctx context.Context, state *State) {
	state.DetectedTerms = s.detector.Detect(state.InputMessage)

	total := 0
	for _, matched := range state.DetectedTerms {
		total += len(matched)
	}
	state.Metrics["terms_detected"] = total

	turns, err := s.historySvc.GetContext(ctx, state.ConversationID, s.historyLimit)
	if err != nil {
		state.Err = &NodeError{
			Kind: KindStoreUnavailable,
			Err:  fmt.Errorf("historySvc.GetContext: %w", err),
		}
		state.NextStep = StepError
		return
	}
	state.RetrievedContext = turns

	facts, err := s.memorySvc.Format(state.ConversationID)
	if err != nil {
		state.Err = &NodeError{
			Kind: KindStoreUnavailable,
			Err:  fmt.Errorf("memorySvc.Format: %w", err),
		}
		state.NextStep = StepError
		return
	}
	state.KnownFacts = facts

	state.NextStep = StepRespond
}

// respond calls the model under a timeout and validates the generated text.
func (s *Service) respond(ctx context.Context, state *State) {
	prompt := buildPrompt(state)

	ctx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()

	text, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		state.Err = &NodeError{
			Kind: KindProvider,
			Err:  fmt.Errorf("llm.Generate: %w", err),
		}
		state.NextStep = StepError
		return
	}

	verdict := s.validator.Check(text)
	if !verdict.Accepted {
		state.Err = &NodeError{
			Kind: KindUnsafeContent,
			Err:  errors.New("generated response rejected by safety validator"),
		}
		state.NextStep = StepError
		return
	}

	state.GeneratedResponse = verdict.Text
	state.Metrics["response_length"] = len(verdict.Text)
	state.NextStep = StepStore
}

// store persists the turn and promotes detected terms to patient facts.
// Storage failures are logged and swallowed; the user already has a
// response, so this node always routes to end.
func (s *Service) store(ctx context.Context, state *State) {
	state.NextStep = StepEnd

	if !s.persist {
		return
	}

	now := time.Now().UTC()

	if err := s.historySvc.AppendTurn(ctx, state.ConversationID, history.Turn{
		Role:      history.RoleUser,
		Text:      state.InputMessage,
		Timestamp: now,
	}); err != nil {
		slog.Error("Failed to store user turn",
			"conversation_id", state.ConversationID,
			"error", err)
		return
	}

	if err := s.historySvc.AppendTurn(ctx, state.ConversationID, history.Turn{
		Role:      history.RoleAssistant,
		Text:      state.GeneratedResponse,
		Timestamp: now,
	}); err != nil {
		slog.Error("Failed to store assistant turn",
			"conversation_id", state.ConversationID,
			"error", err)
		return
	}

	if err := s.memorySvc.AddFacts(state.ConversationID, flattenTerms(state.DetectedTerms)); err != nil {
		slog.Error("Failed to store patient facts",
			"conversation_id", state.ConversationID,
			"error", err)
	}
}

// fail formats the terminal error branch. GeneratedResponse is cleared so
// exactly one of response or error survives to the end state.
func (s *Service) fail(state *State) {
	if state.Err == nil {
		state.Err = &NodeError{
			Kind: KindInternal,
			Err:  errors.New("error branch reached without an error set"),
		}
	}

	slog.Error("Workflow routed to error branch",
		"conversation_id", state.ConversationID,
		"kind", state.Err.Kind,
		"error", state.Err.Err)

	state.GeneratedResponse = ""
	state.NextStep = StepEnd
}

func flattenTerms(detected map[string][]string) []string {
	if len(detected) == 0 {
		return nil
	}

	categories := make([]string, 0, len(detected))
	for category := range detected {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var facts []string
	for _, category := range categories {
		for _, term := range detected[category] {
			facts = append(facts, category+": "+term)
		}
	}

	return facts
}
