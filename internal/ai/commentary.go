// Package ai adds an optional LLM-generated one-line commentary to swap
// notifications. The whole package is best-effort: any failure means the
// notification simply goes out without commentary.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/models"
)

// CommentatorConfig holds LLM settings.
type CommentatorConfig struct {
	// OpenRouterAPIKey enables the commentator; empty means disabled.
	OpenRouterAPIKey string
	// Model name as understood by OpenRouter, e.g. "openai/gpt-4.1-mini".
	Model  string
	Logger *logrus.Logger
}

// Commentator turns a parsed swap into a single-sentence human note.
type Commentator struct {
	llm    llms.Model
	logger *logrus.Logger
}

// NewCommentator creates a Commentator backed by OpenRouter's
// OpenAI-compatible API.
func NewCommentator(cfg CommentatorConfig) (*Commentator, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.OpenRouterAPIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is required")
	}
	if cfg.Model == "" {
		cfg.Model = "openai/gpt-4.1-mini"
	}

	llm, err := openai.New(
		openai.WithToken(cfg.OpenRouterAPIKey),
		openai.WithBaseURL("https://openrouter.ai/api/v1"),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenRouter LLM: %w", err)
	}

	cfg.Logger.WithField("model", cfg.Model).Info("initialized swap commentator")
	return &Commentator{llm: llm, logger: cfg.Logger}, nil
}

// Comment returns a one-sentence observation about the swap, or an empty
// string when generation fails.
func (c *Commentator) Comment(ctx context.Context, swap *models.ParsedSwap) string {
	prompt := fmt.Sprintf(`You are a crypto trading observer. Given one classified
Solana DEX transaction, write exactly one short plain sentence a trader
would find useful. No emoji, no markdown, no price predictions.

Transaction:
%s`, swap.Format())

	resp, err := llms.GenerateFromSinglePrompt(
		ctx,
		c.llm,
		prompt,
		llms.WithMaxTokens(64),
	)
	if err != nil {
		c.logger.WithError(err).Debug("commentary generation failed")
		return ""
	}

	line := strings.TrimSpace(resp)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	return line
}
