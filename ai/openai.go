package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"querydraft/cache"
	"querydraft/models"
	"querydraft/session"
)

// OpenAIGenerator generates drafts through any OpenAI-compatible chat
// completions endpoint.
type OpenAIGenerator struct {
	draftGenerator
	client  *openai.Client
	model   string
	limiter *rate.Limiter
}

func NewOpenAIGenerator(opts Options, c *cache.Cache, files SQLFileSource) (*OpenAIGenerator, error) {
	if opts.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
		log.Warn().Str("component", "ai").Msg("generator model not set, defaulting to gpt-4o-mini")
	}

	clientCfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		clientCfg.BaseURL = opts.BaseURL
	}

	log.Info().Str("component", "ai").Str("model", opts.Model).Msg("initializing OpenAI client")
	return &OpenAIGenerator{
		draftGenerator: draftGenerator{provider: "openai", cache: c, files: files},
		client:         openai.NewClientWithConfig(clientCfg),
		model:          opts.Model,
		limiter:        newLimiter(opts.RequestsPerSecond, opts.Burst),
	}, nil
}

// Generate implements session.Generator.
func (o *OpenAIGenerator) Generate(ctx context.Context, req session.GenerateRequest) (*models.Draft, error) {
	return o.generate(ctx, req, o.complete)
}

func (o *OpenAIGenerator) complete(ctx context.Context, messages []Message) (string, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	req := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case roleSystem:
			role = openai.ChatMessageRoleSystem
		case roleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no choices")
	}
	log.Debug().Str("component", "ai").Str("finish_reason", string(resp.Choices[0].FinishReason)).
		Msg("received response from OpenAI")
	return resp.Choices[0].Message.Content, nil
}
