// Package claude answers prompts with the Anthropic Messages API.
package claude

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"pdfchat/internal/domain"
	"pdfchat/internal/prompt"
)

type Config struct {
	APIKeyEnv   string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

type Client struct {
	client      anthropic.Client
	model       string
	temperature float32
	maxTokens   int64
}

func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-20250514"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{
		client:      anthropic.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   int64(cfg.MaxTokens),
	}, nil
}

func (c *Client) Name() string { return "claude:" + c.model }

func (c *Client) Generate(ctx context.Context, p domain.Prompt) (string, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(p.Blocks))
	for _, b := range p.Blocks {
		switch b.Type {
		case domain.BlockText:
			blocks = append(blocks, anthropic.NewTextBlock(b.Text))
		case domain.BlockImage:
			mediaType, data, ok := prompt.PayloadFromDataURI(b.ImageURL)
			if !ok {
				return "", fmt.Errorf("unsupported image reference: %.32s", b.ImageURL)
			}
			blocks = append(blocks, anthropic.NewImageBlockBase64(mediaType, data))
		}
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
		Temperature: anthropic.Float(float64(c.temperature)),
	})
	if err != nil {
		return "", fmt.Errorf("claude API call failed: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("no response generated from Claude API")
	}
	return out.String(), nil
}
