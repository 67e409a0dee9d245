package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"querydraft/cache"
	"querydraft/models"
	"querydraft/session"
	"querydraft/validation"
)

// SQLFileSource supplies reference SQL files for prompts.
type SQLFileSource interface {
	GetSQLFiles() ([]models.SQLFile, error)
}

type completeFunc func(ctx context.Context, messages []Message) (string, error)

// draftGenerator holds what every upstream-backed generator shares: prompt
// screening, reference files, the draft cache and reply parsing.
type draftGenerator struct {
	provider string
	cache    *cache.Cache
	files    SQLFileSource
}

func (g *draftGenerator) generate(ctx context.Context, req session.GenerateRequest, complete completeFunc) (*models.Draft, error) {
	if err := validation.CheckPrompt(req.Text); err != nil {
		return nil, err
	}

	key := cache.DraftKey(g.provider, req.Dialect, req.Text)
	cacheable := g.cache != nil && len(req.Transcript) == 0
	if cacheable && !req.Regenerate {
		if d, ok := g.cache.GetDraft(key); ok {
			log.Debug().Str("component", "ai").Str("provider", g.provider).Msg("draft cache hit")
			return d, nil
		}
	}

	var sqlFiles []models.SQLFile
	if g.files != nil {
		files, err := g.files.GetSQLFiles()
		if err != nil {
			log.Warn().Err(err).Str("component", "ai").Msg("failed to load reference SQL files")
		} else {
			sqlFiles = files
		}
	}

	start := time.Now()
	reply, err := complete(ctx, BuildMessages(req, sqlFiles))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	draft, err := ParseDraft(reply)
	if err != nil {
		return nil, err
	}
	log.Info().Str("component", "ai").Str("provider", g.provider).Str("dialect", string(req.Dialect)).
		Bool("regenerate", req.Regenerate).Dur("elapsed", time.Since(start)).Msg("draft generated")

	if cacheable {
		g.cache.SetDraft(key, draft)
	}
	return draft, nil
}
