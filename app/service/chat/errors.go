package chat

import "fmt"

// Kind classifies node failures. The router converts every failure into the
// error branch; raw errors never reach the caller.
type Kind string

const (
	KindProvider         Kind = "provider_error"
	KindStoreUnavailable Kind = "store_unavailable"
	KindUnsafeContent    Kind = "unsafe_content"
	KindMalformedInput   Kind = "malformed_input"
	KindInternal         Kind = "internal_error"
)

type NodeError struct {
	Kind Kind
	Err  error
}

func (e *NodeError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}

	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// UserMessage maps a failure to safe, generic user-facing text. Provider and
// internal details are never exposed.
func (e *NodeError) UserMessage() string {
	switch e.Kind {
	case KindMalformedInput:
		return "Your message could not be processed. Please send a short, non-empty message."
	case KindUnsafeContent:
		return "I'm sorry, I cannot provide an answer to that request. " +
			"Please consult with your healthcare provider."
	default:
		return "I'm sorry, I cannot process your query at this time. " +
			"Please consult with your healthcare provider."
	}
}
