package chat

import "github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/service/history"

// Step tags the node the router dispatches to next. Every node sets it
// before returning; nothing else drives control flow.
type Step string

const (
	StepAnalyze Step = "analyze"
	StepRespond Step = "respond"
	StepStore   Step = "store"
	StepError   Step = "error"
	StepEnd     Step = "end"
)

// State is the single shared object a workflow run threads node to node.
// It is created fresh per request and discarded at the terminal step; nodes
// only ever add to it, never rely on fields a later node fills in.
type State struct {
	ConversationID string
	InputMessage   string

	DetectedTerms    map[string][]string
	RetrievedContext []history.Turn
	KnownFacts       string

	GeneratedResponse string
	Err               *NodeError

	NextStep Step

	// observability only, never inspected for routing
	Metrics map[string]any
}

// Result is what the caller gets back: either a response or a safe
// user-facing error message, never both.
type Result struct {
	ConversationID string
	Response       string
	ErrorMessage   string
	ErrorKind      Kind
	DetectedTerms  map[string][]string
	Metrics        map[string]any
}
