package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/pitchroast/api/internal/config"
)

// Assistant run terminal states. Anything else means the run is still moving.
const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
	RunStatusExpired   = "expired"
)

// Orchestration failure variants. Timeout is deliberately distinct from an
// upstream failure so callers can tell a slow assistant from a broken one.
var (
	ErrRunFailed           = errors.New("assistant run failed")
	ErrRunExpired          = errors.New("assistant run expired")
	ErrRunTimedOut         = errors.New("assistant run timed out")
	ErrNoAssistantMessage  = errors.New("no assistant message in thread")
	ErrEmptyMessageContent = errors.New("assistant message has no text content")
)

// AssistantClient defines the conversation-thread operations the roast
// pipeline needs from the AI service.
type AssistantClient interface {
	CreateThread(ctx context.Context) (string, error)
	CreateMessage(ctx context.Context, threadID, content string) error
	CreateRun(ctx context.Context, threadID string) (*Run, error)
	PollRun(ctx context.Context, threadID, runID string) (*Run, error)
	LatestAssistantMessage(ctx context.Context, threadID string) (string, error)
}

// ChatCompleter is the single-shot completion operation used by the
// per-page deck analysis stage.
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, system, user string) (string, error)
}

// OpenAIClient implements AssistantClient and ChatCompleter against the
// OpenAI API.
type OpenAIClient struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	assistantID  string
	model        string
	pollInterval time.Duration
	maxAttempts  int
}

// Run is one execution of the assistant against a thread.
type Run struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type thread struct {
	ID string `json:"id"`
}

type messageList struct {
	Data []struct {
		ID      string `json:"id"`
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text struct {
				Value string `json:"value"`
			} `json:"text"`
		} `json:"content"`
	} `json:"data"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewOpenAIClient creates a new OpenAI API client.
func NewOpenAIClient(cfg *config.OpenAIConfig) *OpenAIClient {
	interval := time.Duration(cfg.PollInterval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	attempts := cfg.PollAttempts
	if attempts <= 0 {
		attempts = 60
	}

	return &OpenAIClient{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		assistantID:  cfg.AssistantID,
		model:        cfg.Model,
		pollInterval: interval,
		maxAttempts:  attempts,
	}
}

// CreateThread opens a new empty conversation thread.
func (c *OpenAIClient) CreateThread(ctx context.Context) (string, error) {
	var t thread
	if err := c.post(ctx, "/threads", map[string]interface{}{}, &t); err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}
	return t.ID, nil
}

// CreateMessage posts a user message to the thread.
func (c *OpenAIClient) CreateMessage(ctx context.Context, threadID, content string) error {
	body := map[string]string{
		"role":    "user",
		"content": content,
	}
	var ignored json.RawMessage
	if err := c.post(ctx, fmt.Sprintf("/threads/%s/messages", threadID), body, &ignored); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// CreateRun starts the configured assistant against the thread.
func (c *OpenAIClient) CreateRun(ctx context.Context, threadID string) (*Run, error) {
	body := map[string]string{"assistant_id": c.assistantID}
	var run Run
	if err := c.post(ctx, fmt.Sprintf("/threads/%s/runs", threadID), body, &run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return &run, nil
}

// GetRun fetches the current status of a run.
func (c *OpenAIClient) GetRun(ctx context.Context, threadID, runID string) (*Run, error) {
	var run Run
	if err := c.get(ctx, fmt.Sprintf("/threads/%s/runs/%s", threadID, runID), &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// PollRun checks run status on a fixed interval until the run reaches a
// terminal state or the attempt budget is exhausted. A failed status check
// is logged and counted against the budget rather than aborting the poll.
// Total wall-clock time is bounded by maxAttempts * pollInterval.
func (c *OpenAIClient) PollRun(ctx context.Context, threadID, runID string) (*Run, error) {
	lastStatus := "unknown"

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			log.Printf("[OpenAI] Poll run (run=%s) — context cancelled", runID)
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}

		run, err := c.GetRun(ctx, threadID, runID)
		if err != nil {
			log.Printf("[OpenAI] Poll run #%d (run=%s) — status check error: %v", attempt, runID, err)
			continue
		}

		lastStatus = run.Status
		log.Printf("[OpenAI] Poll run #%d (run=%s) — status: %s", attempt, runID, run.Status)

		switch run.Status {
		case RunStatusCompleted:
			return run, nil
		case RunStatusFailed:
			return nil, fmt.Errorf("%w (status %s)", ErrRunFailed, run.Status)
		case RunStatusExpired:
			return nil, fmt.Errorf("%w (status %s)", ErrRunExpired, run.Status)
		}
	}

	return nil, fmt.Errorf("%w after %d attempts (last status %s)", ErrRunTimedOut, c.maxAttempts, lastStatus)
}

// LatestAssistantMessage returns the text of the most recent
// assistant-authored message in the thread.
func (c *OpenAIClient) LatestAssistantMessage(ctx context.Context, threadID string) (string, error) {
	var list messageList
	if err := c.get(ctx, fmt.Sprintf("/threads/%s/messages", threadID), &list); err != nil {
		return "", fmt.Errorf("failed to list messages: %w", err)
	}

	// Messages come back newest first.
	for _, msg := range list.Data {
		if msg.Role != "assistant" {
			continue
		}
		for _, part := range msg.Content {
			if part.Type == "text" && part.Text.Value != "" {
				return part.Text.Value, nil
			}
		}
		return "", ErrEmptyMessageContent
	}

	return "", ErrNoAssistantMessage
}

// ChatCompletion sends a single chat completion request.
func (c *OpenAIClient) ChatCompletion(ctx context.Context, system, user string) (string, error) {
	body := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"temperature": 0.7,
		"max_tokens":  512,
	}

	var resp chatCompletionResponse
	if err := c.post(ctx, "/chat/completions", body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// post sends a POST request with JSON body
func (c *OpenAIClient) post(ctx context.Context, endpoint string, body interface{}, result interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req, result)
}

// get sends a GET request and parses JSON response
func (c *OpenAIClient) get(ctx context.Context, endpoint string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req, result)
}

// doRequest executes an HTTP request and parses the response
func (c *OpenAIClient) doRequest(req *http.Request, result interface{}) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", "assistants=v1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[OpenAI] ✗ %s %s — request failed: %v", req.Method, req.URL.String(), err)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[OpenAI] ✗ %s %s — failed to read response: %v", req.Method, req.URL.String(), err)
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[OpenAI] ← %d %s %s — %s", resp.StatusCode, req.Method, req.URL.String(), string(respBody))
		return fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

// IsConfigured returns true if the client has an API key.
func (c *OpenAIClient) IsConfigured() bool {
	return c.apiKey != ""
}

// AssistantConfigured returns true if an assistant identity is set.
func (c *OpenAIClient) AssistantConfigured() bool {
	return c.apiKey != "" && c.assistantID != ""
}
