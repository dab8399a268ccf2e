package memory

// record is one JSON line in the facts file: everything known about a single
// conversation's patient.
type record struct {
	ConversationID string   `json:"conversation_id"`
	Facts          []string `json:"facts,omitempty"`
}
