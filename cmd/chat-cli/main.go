// Interactive terminal client for a running chat relay server. Keeps the
// conversation history client-side and carries the returned history into
// the next turn.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Message             string        `json:"message"`
	ConversationHistory []chatMessage `json:"conversationHistory"`
}

type chatResponse struct {
	Success             bool          `json:"success"`
	Response            string        `json:"response"`
	Error               string        `json:"error"`
	ConversationHistory []chatMessage `json:"conversationHistory"`
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080/chat", "Chat relay endpoint.")
	timeout := flag.Duration("timeout", 90*time.Second, "Per-request timeout.")
	flag.Parse()

	client := &http.Client{Timeout: *timeout}
	history := []chatMessage{}

	fmt.Println("Chat relay CLI. Type a message and press enter; empty line or Ctrl-D quits.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			break
		}

		resp, err := sendMessage(client, *serverURL, message, history)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if !resp.Success {
			fmt.Fprintf(os.Stderr, "relay error: %s\n", resp.Error)
			continue
		}

		fmt.Printf("assistant> %s\n", resp.Response)
		history = resp.ConversationHistory
	}
}

func sendMessage(client *http.Client, url, message string, history []chatMessage) (chatResponse, error) {
	body, err := json.Marshal(chatRequest{Message: message, ConversationHistory: history})
	if err != nil {
		return chatResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return chatResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return chatResponse{}, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return chatResponse{}, fmt.Errorf("read response: %w", err)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return chatResponse{}, fmt.Errorf("decode response (status %d): %w", res.StatusCode, err)
	}
	return out, nil
}
