package usecase

import (
	"context"
	"errors"

	"github.com/yusukek05/simplechat/internal/domain"
)

// Generator is the single capability a generation backend must provide.
// The HTTP relay client and the Bedrock client both implement it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// ChatService relays one chat turn: it builds a prompt from the history and
// latest message, calls the generation backend, and returns the reply with
// the updated history.
type ChatService struct {
	generator Generator
}

type ChatInput struct {
	Message string
	History []domain.ChatMessage
}

type ChatOutput struct {
	Reply   string
	History []domain.ChatMessage
}

func NewChatService(g Generator) (*ChatService, error) {
	if g == nil {
		return nil, errors.New("usecase: generator must not be nil")
	}
	return &ChatService{generator: g}, nil
}

// Chat performs one relay round trip. The input history slice is never
// mutated; the returned history is a fresh slice with the user message and
// the assistant reply appended, in that order.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	prompt := buildPrompt(in.History, in.Message)

	reply, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return ChatOutput{}, newError(ErrorUpstream, "llm_backend_error", err)
	}

	history := make([]domain.ChatMessage, 0, len(in.History)+2)
	history = append(history, in.History...)
	history = append(history,
		domain.ChatMessage{Role: domain.RoleUser, Content: in.Message},
		domain.ChatMessage{Role: domain.RoleAssistant, Content: reply},
	)

	return ChatOutput{Reply: reply, History: history}, nil
}

// UpstreamStatusCode reports the HTTP status attached to an upstream
// failure, when the generation endpoint answered with a non-2xx response.
// Transport-level failures carry no status.
func UpstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
