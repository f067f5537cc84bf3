package domain

// Conversation roles as they appear on the wire and in prompts.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single conversation turn. A conversation history is an
// ordered slice of these, oldest first, owned by the caller; the relay only
// reads it and appends to a copy.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
