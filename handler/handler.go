package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/yusukek05/simplechat/internal/domain"
	"github.com/yusukek05/simplechat/internal/usecase"
)

const (
	headerContentType  = "application/json"
	headerAllowOrigin  = "*"
	headerAllowHeaders = "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With"
	headerAllowMethods = "POST, OPTIONS, GET"

	correlationIDHeader = "X-Correlation-Id"
)

// useCase is the relay capability consumed by the handler.
type useCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

// Response is the API-Gateway-shaped outbound envelope.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// invokeEvent covers both invocation styles: an API Gateway proxy event
// carrying the request as a JSON-encoded string under "body", and a direct
// invocation where the raw payload is the request itself.
type invokeEvent struct {
	HTTPMethod string            `json:"httpMethod"`
	Headers    map[string]string `json:"headers"`
	Body       json.RawMessage   `json:"body"`
}

// chatRequest is the inbound request body. Message is a pointer so a
// missing key can be told apart from an empty string.
type chatRequest struct {
	Message             *string              `json:"message"`
	ConversationHistory []domain.ChatMessage `json:"conversationHistory"`
}

type chatResponse struct {
	Success             bool                 `json:"success"`
	Response            string               `json:"response"`
	ConversationHistory []domain.ChatMessage `json:"conversationHistory"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type Handler struct {
	chat useCase
}

func NewHandler(chat useCase) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	return &Handler{chat: chat}, nil
}

// Handle processes one invocation. Every response, including failures and
// preflight, carries the full CORS header set so browser callers never see
// a transport-level CORS rejection.
func (h *Handler) Handle(ctx context.Context, raw json.RawMessage) (Response, error) {
	slog.Info("received event", "event", string(raw))

	var event invokeEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		slog.Error("malformed invocation payload", "err", err)
		return badRequestResponse(newCorrelationID()), nil
	}
	correlationID := resolveCorrelationID(event.Headers)

	if strings.EqualFold(event.HTTPMethod, http.MethodOptions) {
		return Response{
			StatusCode: http.StatusNoContent,
			Headers:    responseHeaders(correlationID),
		}, nil
	}

	req, err := parseChatRequest(raw, event.Body)
	if err != nil {
		slog.Error("bad request format", "err", err)
		return badRequestResponse(correlationID), nil
	}

	out, err := h.chat.Chat(ctx, usecase.ChatInput{
		Message: *req.Message,
		History: req.ConversationHistory,
	})
	if err != nil {
		return errorToResponse(err, correlationID), nil
	}

	return jsonResponse(http.StatusOK, correlationID, chatResponse{
		Success:             true,
		Response:            out.Reply,
		ConversationHistory: out.History,
	}), nil
}

// parseChatRequest extracts the chat request from either invocation style.
// An absent "body" field means the raw payload is the request itself; a
// string "body" is a JSON-encoded request, an object "body" is the request.
func parseChatRequest(raw, body json.RawMessage) (chatRequest, error) {
	payload := raw
	if len(body) > 0 && string(body) != "null" {
		payload = body
		var encoded string
		if err := json.Unmarshal(body, &encoded); err == nil {
			payload = json.RawMessage(encoded)
		}
	}

	var req chatRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return chatRequest{}, fmt.Errorf("handler: decode request body: %w", err)
	}
	if req.Message == nil {
		return chatRequest{}, errors.New("handler: message is required")
	}
	return req, nil
}

func errorToResponse(err error, correlationID string) Response {
	var usecaseErr *usecase.Error
	if !errors.As(err, &usecaseErr) {
		slog.Error("unexpected error", "err", err)
		return jsonResponse(http.StatusInternalServerError, correlationID, errorResponse{Error: "internal error"})
	}

	switch usecaseErr.Code {
	case usecase.ErrorBadRequest:
		return badRequestResponse(correlationID)
	case usecase.ErrorUpstream:
		slog.Error("llm backend failure", "reason", usecaseErr.Reason, "err", usecaseErr.Unwrap())
		return jsonResponse(http.StatusBadGateway, correlationID, errorResponse{
			Error: "LLM backend error: " + upstreamDetail(usecaseErr),
		})
	default:
		slog.Error("internal failure", "reason", usecaseErr.Reason, "err", usecaseErr.Unwrap())
		return jsonResponse(http.StatusInternalServerError, correlationID, errorResponse{Error: "internal error"})
	}
}

// upstreamDetail keeps the wrapped cause when there is one; for an
// HTTP-level upstream failure that includes the status and body snippet.
func upstreamDetail(err *usecase.Error) string {
	if cause := err.Unwrap(); cause != nil {
		return cause.Error()
	}
	return err.Reason
}

func badRequestResponse(correlationID string) Response {
	return jsonResponse(http.StatusBadRequest, correlationID, errorResponse{Error: "bad request"})
}

func jsonResponse(status int, correlationID string, body any) Response {
	encoded, err := json.Marshal(body)
	if err != nil {
		slog.Error("marshal response body", "err", err)
		encoded = []byte(`{"success":false,"error":"internal error"}`)
		status = http.StatusInternalServerError
	}
	return Response{
		StatusCode: status,
		Headers:    responseHeaders(correlationID),
		Body:       string(encoded),
	}
}

func responseHeaders(correlationID string) map[string]string {
	return map[string]string{
		"Content-Type":                 headerContentType,
		"Access-Control-Allow-Origin":  headerAllowOrigin,
		"Access-Control-Allow-Headers": headerAllowHeaders,
		"Access-Control-Allow-Methods": headerAllowMethods,
		correlationIDHeader:            correlationID,
	}
}

func resolveCorrelationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationIDHeader) && v != "" {
			return v
		}
	}
	return newCorrelationID()
}

var newCorrelationID = func() string {
	return uuid.NewString()
}
