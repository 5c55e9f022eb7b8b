// internal/common/genai/client.go

// Package genai is the gateway to the external text-generation service. The
// engines depend only on the TextGenerator interface so tests can inject a
// deterministic fake.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"claims-workers/internal/common/logger"
)

var (
	ErrGenerationTimeout = errors.New("GENAI_TIMEOUT")
	ErrGenerationFailed  = errors.New("GENAI_GENERATION_FAILED")
)

// TextGenerator produces prose from a structured prompt. The caller owns the
// full structured payload; the service owns only the wording.
type TextGenerator interface {
	Generate(ctx context.Context, systemInstruction, userPayload string) (string, error)
}

type Config struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// HTTPGenerator talks to the GenAI gateway over HTTP.
type HTTPGenerator struct {
	config Config
	client *http.Client
	logger logger.Logger
}

func NewHTTPGenerator(cfg Config, log logger.Logger) *HTTPGenerator {
	return &HTTPGenerator{
		config: cfg,
		// No client timeout; the request context carries the deadline.
		client: &http.Client{},
		logger: log.WithFields(map[string]interface{}{"component": "genai-client"}),
	}
}

func (g *HTTPGenerator) Generate(ctx context.Context, systemInstruction, userPayload string) (string, error) {
	requestBody := map[string]interface{}{
		"system":      systemInstruction,
		"prompt":      userPayload,
		"max_tokens":  g.config.MaxTokens,
		"temperature": g.config.Temperature,
	}

	body, _ := json.Marshal(requestBody)

	var lastErr error
	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ErrGenerationTimeout
			}
		}

		text, err := g.doRequest(ctx, body)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ErrGenerationTimeout
		}
		lastErr = err
	}

	return "", fmt.Errorf("%w: %v", ErrGenerationFailed, lastErr)
}

func (g *HTTPGenerator) doRequest(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.BaseURL+"/api/ai/generate", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.config.APIKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var apiResponse struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return apiResponse.Text, nil
}
