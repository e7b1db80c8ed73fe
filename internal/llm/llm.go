// Package llm builds the configured chat model provider.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"pdfchat/internal/config"
	"pdfchat/internal/domain"
	"pdfchat/internal/llm/claude"
	"pdfchat/internal/llm/gemini"
	"pdfchat/internal/llm/openai"
)

// NewChatModel switches on cfg.Provider.
func NewChatModel(ctx context.Context, cfg config.LLMConfig, logger arbor.ILogger) (domain.ChatModel, error) {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second

	var (
		model domain.ChatModel
		err   error
	)
	switch cfg.Provider {
	case "openai", "":
		model, err = openai.NewClient(openai.Config{
			BaseURL:     cfg.BaseURL,
			APIKeyEnv:   cfg.APIKeyEnv,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     timeout,
		})
	case "claude":
		model, err = claude.NewClient(claude.Config{
			APIKeyEnv:   cfg.APIKeyEnv,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     timeout,
		})
	case "gemini":
		model, err = gemini.NewClient(ctx, gemini.Config{
			APIKeyEnv:   cfg.APIKeyEnv,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     timeout,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("provider", cfg.Provider).
		Str("model", model.Name()).
		Float64("temperature", float64(cfg.Temperature)).
		Msg("Chat model ready")
	return model, nil
}
