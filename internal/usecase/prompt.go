package usecase

import (
	"strings"

	"github.com/yusukek05/simplechat/internal/domain"
)

// promptHeader labels the history block for the generation backend.
const promptHeader = "## Conversation History"

// buildPrompt flattens the conversation into the single prompt string the
// generation endpoint expects: a header line, one "{role}: {content}" line
// per prior turn, the latest user message, and a trailing "assistant: "
// cue with no newline after it. Pure function of its inputs.
func buildPrompt(history []domain.ChatMessage, latestMessage string) string {
	lines := make([]string, 0, len(history)+3)
	lines = append(lines, promptHeader)
	for _, m := range history {
		lines = append(lines, m.Role+": "+m.Content)
	}
	lines = append(lines, domain.RoleUser+": "+latestMessage)
	lines = append(lines, domain.RoleAssistant+": ")
	return strings.Join(lines, "\n")
}
