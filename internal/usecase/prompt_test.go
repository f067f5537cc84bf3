package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yusukek05/simplechat/internal/domain"
)

func TestBuildPrompt_EmptyHistory(t *testing.T) {
	got := buildPrompt(nil, "Hi")
	require.Equal(t, "## Conversation History\nuser: Hi\nassistant: ", got)
}

func TestBuildPrompt_WithHistory(t *testing.T) {
	history := []domain.ChatMessage{
		{Role: "user", Content: "Hello"},
		{Role: "assistant", Content: "Hi there"},
	}

	got := buildPrompt(history, "How are you?")
	want := "## Conversation History\n" +
		"user: Hello\n" +
		"assistant: Hi there\n" +
		"user: How are you?\n" +
		"assistant: "
	require.Equal(t, want, got)
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	history := []domain.ChatMessage{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "second"},
	}

	first := buildPrompt(history, "again")
	second := buildPrompt(history, "again")
	require.Equal(t, first, second)
}

func TestBuildPrompt_NoTrailingNewline(t *testing.T) {
	got := buildPrompt(nil, "Hi")
	require.Equal(t, "assistant: ", got[len(got)-len("assistant: "):])
}

func TestBuildPrompt_PreservesMessageContent(t *testing.T) {
	// Content passes through untouched, including whitespace and newlines.
	history := []domain.ChatMessage{{Role: "user", Content: "  spaced  "}}
	got := buildPrompt(history, "line1\nline2")
	require.Contains(t, got, "user:   spaced  \n")
	require.Contains(t, got, "user: line1\nline2\n")
}
