package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	apierrors "github.com/diogo/routerchat/internal/errors"
	"github.com/diogo/routerchat/internal/models"
)

const (
	contentPath      = "choices.0.message.content"
	errorMessagePath = "error.message"
	maxErrorBody     = 4096
)

// Complete sends prompt as a single-turn chat and returns the reply text
func (c *Client) Complete(apiKey, prompt string) (string, error) {
	completion, err := c.CreateCompletion(apiKey, prompt)
	if err != nil {
		return "", err
	}
	return completion.Content, nil
}

// CreateCompletion sends prompt as a single-turn chat and returns the parsed completion
func (c *Client) CreateCompletion(apiKey, prompt string) (*models.Completion, error) {
	if prompt == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}
	if apiKey == "" {
		return nil, apierrors.NewAuthError(0, "API key is empty")
	}
	if c.IsClosed() {
		return nil, fmt.Errorf("client is closed")
	}

	model := c.GetModel()
	payload, err := json.Marshal(models.NewSingleTurnRequest(model, prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
	req.Header.Set("Authorization", models.AuthorizationHeader(apiKey))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		timedOut := isTimeout(err)
		c.logger.Debug("chat completion transport failure",
			zap.String("model", model),
			zap.Bool("timeout", timedOut),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		if timedOut {
			return nil, apierrors.NewTimeoutError("chat completion", c.endpoint, err)
		}
		return nil, apierrors.NewNetworkError("chat completion", c.endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.NewNetworkError("read completion response", c.endpoint, err)
	}

	c.logger.Debug("chat completion response",
		zap.String("model", model),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, c.endpoint, body)
	}

	completion, err := parseCompletion(body, c.endpoint)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("chat completion usage",
		zap.String("id", completion.ID),
		zap.String("model", completion.Model),
		zap.Int64("prompt_tokens", completion.Usage.PromptTokens),
		zap.Int64("completion_tokens", completion.Usage.CompletionTokens),
	)

	return completion, nil
}

// parseCompletion extracts choices[0].message.content from a 2xx body.
// A body without that string is a ParseError; content is never guessed.
func parseCompletion(body []byte, endpoint string) (*models.Completion, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response is not valid JSON", "")
	}

	content := gjson.GetBytes(body, contentPath)
	if !content.Exists() {
		// OpenRouter reports some upstream failures with a 200 and an error object
		if msg := gjson.GetBytes(body, errorMessagePath); msg.Exists() {
			code := int(gjson.GetBytes(body, "error.code").Int())
			return nil, apierrors.NewAPIErrorWithBody(code, endpoint, msg.String(), truncate(string(body), maxErrorBody))
		}
		return nil, apierrors.NewParseError("missing completion content", contentPath)
	}
	if content.Type != gjson.String {
		return nil, apierrors.NewParseError("completion content is not a string", contentPath)
	}

	usage := gjson.GetBytes(body, "usage")
	return &models.Completion{
		ID:      gjson.GetBytes(body, "id").String(),
		Model:   gjson.GetBytes(body, "model").String(),
		Content: content.String(),
		Usage: models.Usage{
			PromptTokens:     usage.Get("prompt_tokens").Int(),
			CompletionTokens: usage.Get("completion_tokens").Int(),
			TotalTokens:      usage.Get("total_tokens").Int(),
		},
	}, nil
}

// statusError maps a non-2xx response to a typed error
func statusError(status int, endpoint string, body []byte) error {
	message := http.StatusText(status)
	if msg := gjson.GetBytes(body, errorMessagePath); msg.Exists() && msg.String() != "" {
		message = msg.String()
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apierrors.NewAuthError(status, message)
	case http.StatusTooManyRequests:
		return apierrors.NewUsageLimitError(message)
	default:
		return apierrors.NewAPIErrorWithBody(status, endpoint, message, truncate(string(body), maxErrorBody))
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded)
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
