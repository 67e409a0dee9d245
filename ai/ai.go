package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"querydraft/cache"
	"querydraft/models"
	"querydraft/session"
)

const defaultDashScopeURL = "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation"

type Options struct {
	APIKey            string
	Model             string
	BaseURL           string
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int
	Timeout           time.Duration
	// RetryBaseDelay is the first backoff after a 429; it doubles per attempt.
	RetryBaseDelay time.Duration
}

// AIService generates drafts with a DashScope text-generation model.
type AIService struct {
	draftGenerator
	apiKey         string
	modelName      string
	apiURL         string
	httpClient     *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
}

type DashScopeRequest struct {
	Model string `json:"model"`
	Input struct {
		Messages []Message `json:"messages"`
	} `json:"input"`
}

type DashScopeResponse struct {
	Output struct {
		Choices []struct {
			Message Message `json:"message"`
		} `json:"choices"`
	} `json:"output"`
	RequestID string `json:"request_id,omitempty"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
}

func New(opts Options, c *cache.Cache, files SQLFileSource) (*AIService, error) {
	if opts.APIKey == "" {
		return nil, errors.New("DashScope API key is required")
	}
	if opts.Model == "" {
		opts.Model = "qwen3-max"
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultDashScopeURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = 2 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	return &AIService{
		draftGenerator: draftGenerator{provider: "dashscope", cache: c, files: files},
		apiKey:         opts.APIKey,
		modelName:      opts.Model,
		apiURL:         opts.BaseURL,
		httpClient:     &http.Client{Timeout: opts.Timeout},
		limiter:        newLimiter(opts.RequestsPerSecond, opts.Burst),
		maxRetries:     opts.MaxRetries,
		retryBaseDelay: opts.RetryBaseDelay,
	}, nil
}

func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func (a *AIService) Close() error {
	a.httpClient.CloseIdleConnections()
	return nil
}

// Generate implements session.Generator.
func (a *AIService) Generate(ctx context.Context, req session.GenerateRequest) (*models.Draft, error) {
	return a.generate(ctx, req, a.callDashScopeAPI)
}

type dashScopeError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func apiError(status int, body []byte) error {
	var e dashScopeError
	if err := json.Unmarshal(body, &e); err == nil && e.Code != "" {
		return fmt.Errorf("API error (status %d): %s - %s (request_id: %s)", status, e.Code, e.Message, e.RequestID)
	}
	return fmt.Errorf("API returned status %d: %s", status, string(body))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *AIService) callDashScopeAPI(ctx context.Context, messages []Message) (string, error) {
	reqBody := DashScopeRequest{Model: a.modelName}
	reqBody.Input.Messages = messages

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		if attempt > 0 {
			delay := a.retryBaseDelay * time.Duration(1<<uint(attempt-1))
			log.Warn().Err(lastErr).Str("component", "ai").Dur("delay", delay).
				Int("attempt", attempt).Int("max_retries", a.maxRetries).Msg("retrying DashScope request")
			if err := sleepCtx(ctx, delay); err != nil {
				return "", err
			}
		}
		if err := a.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiURL, bytes.NewReader(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := a.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to send request: %w", err)
			if ctx.Err() != nil {
				return "", lastErr
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		log.Debug().Str("component", "ai").Int("status", resp.StatusCode).Str("model", a.modelName).Msg("DashScope response")

		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
			lastErr = apiError(resp.StatusCode, body)
			continue
		case resp.StatusCode != http.StatusOK:
			return "", apiError(resp.StatusCode, body)
		}

		var dashScopeResp DashScopeResponse
		if err := json.Unmarshal(body, &dashScopeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal response: %w", err)
		}
		if dashScopeResp.Code != "" && dashScopeResp.Code != "Success" {
			return "", fmt.Errorf("API error: %s - %s", dashScopeResp.Code, dashScopeResp.Message)
		}
		if len(dashScopeResp.Output.Choices) == 0 {
			return "", fmt.Errorf("no response from AI model")
		}
		return dashScopeResp.Output.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}
