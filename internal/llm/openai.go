package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the OpenAI API base.
const DefaultBaseURL = "https://api.openai.com/v1"

// DefaultTimeout bounds a single completion call.
const DefaultTimeout = 60 * time.Second

// maxResponseBytes caps how much of a completion response is read.
const maxResponseBytes = 4 << 20

// OpenAIConfig configures the OpenAI-backed client.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string        // Defaults to DefaultBaseURL
	Timeout    time.Duration // Defaults to DefaultTimeout
	HTTPClient *http.Client  // Overrides Timeout when set
}

// OpenAIClient implements Client against the OpenAI chat-completions API.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOpenAIClient creates an OpenAI completion client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	return &OpenAIClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		client:  cfg.HTTPClient,
	}
}

// chatRequest is the chat-completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the chat-completions response body.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *apiErrorBody `json:"error,omitempty"`
}

// apiErrorBody is the provider's structured error payload.
type apiErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// Complete submits one chat-completions call.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	if !IsValidModel(req.Model) {
		return "", fmt.Errorf("%w: %q (valid: %s)", ErrInvalidModel, req.Model, strings.Join(ValidModelNames(), ", "))
	}

	messages := []chatMessage{
		{Role: "system", Content: req.Instructions},
		{Role: "user", Content: req.Content},
	}

	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", &APIError{Message: "marshal request: " + err.Error()}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &APIError{Message: "build request: " + err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// Includes client timeouts; treated as transient by callers.
		return "", &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &APIError{Message: "read response: " + err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyHTTPError(resp.StatusCode, respBody)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &APIError{Message: "parse response: " + err.Error()}
	}
	if parsed.Error != nil {
		return "", classifyErrorBody(resp.StatusCode, parsed.Error)
	}
	if len(parsed.Choices) == 0 {
		return "", &APIError{StatusCode: resp.StatusCode, Message: "response contained no choices"}
	}

	return parsed.Choices[0].Message.Content, nil
}

// classifyHTTPError maps a non-200 response to the error taxonomy.
func classifyHTTPError(status int, body []byte) error {
	var parsed struct {
		Error *apiErrorBody `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		return classifyErrorBody(status, parsed.Error)
	}

	if status == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	return &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
}

// classifyErrorBody maps the provider's structured error to the taxonomy.
func classifyErrorBody(status int, body *apiErrorBody) error {
	switch {
	case body.Code == "context_length_exceeded":
		return fmt.Errorf("%w: %s", ErrTokenLimit, body.Message)
	case status == http.StatusTooManyRequests || body.Type == "rate_limit_error":
		return fmt.Errorf("%w: %s", ErrRateLimited, body.Message)
	default:
		return &APIError{StatusCode: status, Message: body.Message}
	}
}
