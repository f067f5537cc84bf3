package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yusukek05/simplechat/internal/domain"
	"github.com/yusukek05/simplechat/internal/usecase"
)

const (
	EndPointChat   = "/chat"
	EndPointHealth = "/health"
)

// relay is the chat capability consumed by the HTTP server.
type relay interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

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

// ChatHandler serves the relay over plain HTTP for non-Lambda deployments.
type ChatHandler struct {
	chat relay
}

func NewChatHandler(chat relay) (*ChatHandler, error) {
	if chat == nil {
		return nil, errors.New("server: relay must not be nil")
	}
	return &ChatHandler{chat: chat}, nil
}

// NewRouter builds the gin router with the relay endpoints and the same
// permissive CORS policy the Lambda path answers with.
func NewRouter(h *ChatHandler) *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"POST", "OPTIONS", "GET"},
		AllowHeaders: []string{
			"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token",
			"Authorization", "accept", "origin", "Cache-Control", "X-Requested-With",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET(EndPointHealth, Health)
	router.POST(EndPointChat, h.Chat)
	return router
}

// Health reports service liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "simplechat-relay",
		"version": "1.0.0",
	})
}

// Chat handles one relay round trip over HTTP.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Errorf("Bad request format: %v", err)
		c.JSON(http.StatusBadRequest, errorResponse{Error: "bad request"})
		return
	}
	if req.Message == nil {
		log.Error("Bad request format: message is required")
		c.JSON(http.StatusBadRequest, errorResponse{Error: "bad request"})
		return
	}

	out, err := h.chat.Chat(c.Request.Context(), usecase.ChatInput{
		Message: *req.Message,
		History: req.ConversationHistory,
	})
	if err != nil {
		status, msg := errorToStatus(err)
		c.JSON(status, errorResponse{Error: msg})
		return
	}

	c.JSON(http.StatusOK, chatResponse{
		Success:             true,
		Response:            out.Reply,
		ConversationHistory: out.History,
	})
}

func errorToStatus(err error) (int, string) {
	var usecaseErr *usecase.Error
	if !errors.As(err, &usecaseErr) {
		log.Errorf("Unexpected error: %v", err)
		return http.StatusInternalServerError, "internal error"
	}

	switch usecaseErr.Code {
	case usecase.ErrorBadRequest:
		return http.StatusBadRequest, "bad request"
	case usecase.ErrorUpstream:
		log.Errorf("LLM backend failure (%s): %v", usecaseErr.Reason, usecaseErr.Unwrap())
		detail := usecaseErr.Reason
		if cause := usecaseErr.Unwrap(); cause != nil {
			detail = cause.Error()
		}
		return http.StatusBadGateway, "LLM backend error: " + detail
	default:
		log.Errorf("Internal failure (%s): %v", usecaseErr.Reason, usecaseErr.Unwrap())
		return http.StatusInternalServerError, "internal error"
	}
}
