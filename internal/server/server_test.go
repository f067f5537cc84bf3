package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yusukek05/simplechat/internal/domain"
	"github.com/yusukek05/simplechat/internal/usecase"
)

type stubRelay struct {
	out    usecase.ChatOutput
	err    error
	in     usecase.ChatInput
	called bool
}

func (s *stubRelay) Chat(_ context.Context, in usecase.ChatInput) (usecase.ChatOutput, error) {
	s.called = true
	s.in = in
	return s.out, s.err
}

func newTestRouter(t *testing.T, relay *stubRelay) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h, err := NewChatHandler(relay)
	require.NoError(t, err)
	return NewRouter(h)
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func TestNewChatHandler_ValidatesDependency(t *testing.T) {
	_, err := NewChatHandler(nil)
	require.Error(t, err)
}

func TestHealth(t *testing.T) {
	w := doRequest(newTestRouter(t, &stubRelay{}), http.MethodGet, EndPointHealth, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "healthy", body["status"])
	require.Equal(t, "simplechat-relay", body["service"])
}

func TestChat_HappyPath(t *testing.T) {
	relay := &stubRelay{out: usecase.ChatOutput{
		Reply: "Hello!",
		History: []domain.ChatMessage{
			{Role: "user", Content: "Hi"},
			{Role: "assistant", Content: "Hello!"},
		},
	}}
	router := newTestRouter(t, relay)

	w := doRequest(router, http.MethodPost, EndPointChat, `{"message":"Hi","conversationHistory":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Hi", relay.in.Message)

	var body chatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, "Hello!", body.Response)
	require.Len(t, body.ConversationHistory, 2)
}

func TestChat_MissingMessage(t *testing.T) {
	relay := &stubRelay{}
	router := newTestRouter(t, relay)

	w := doRequest(router, http.MethodPost, EndPointChat, `{"conversationHistory":[]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.False(t, relay.called)

	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.Equal(t, "bad request", body.Error)
}

func TestChat_MalformedBody(t *testing.T) {
	relay := &stubRelay{}
	router := newTestRouter(t, relay)

	w := doRequest(router, http.MethodPost, EndPointChat, `not-json`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.False(t, relay.called)
}

func TestChat_UpstreamError(t *testing.T) {
	relay := &stubRelay{err: &usecase.Error{
		Code:   usecase.ErrorUpstream,
		Reason: "llm_backend_error",
		Err:    errors.New("llmapi: unexpected status 500 from http://llm/generate: boom"),
	}}
	router := newTestRouter(t, relay)

	w := doRequest(router, http.MethodPost, EndPointChat, `{"message":"Hi"}`)
	require.Equal(t, http.StatusBadGateway, w.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Contains(t, body.Error, "LLM backend error:")
	require.Contains(t, body.Error, "500")
}

func TestChat_CORSHeaderOnErrorResponses(t *testing.T) {
	relay := &stubRelay{err: &usecase.Error{Code: usecase.ErrorUpstream, Reason: "llm_backend_error"}}
	router := newTestRouter(t, relay)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, EndPointChat, strings.NewReader(`{"message":"Hi"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://example.com")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestChat_Preflight(t *testing.T) {
	relay := &stubRelay{}
	router := newTestRouter(t, relay)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, EndPointChat, nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.False(t, relay.called)
}
