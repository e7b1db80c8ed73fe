// Package gemini answers prompts with the Gemini GenerateContent API.
package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"google.golang.org/genai"

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
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: cfg.BaseURL,
			Timeout: &timeout,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}
	return &Client{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   int32(cfg.MaxTokens),
	}, nil
}

func (c *Client) Name() string { return "gemini:" + c.model }

func (c *Client) Generate(ctx context.Context, p domain.Prompt) (string, error) {
	parts := make([]*genai.Part, 0, len(p.Blocks))
	for _, b := range p.Blocks {
		switch b.Type {
		case domain.BlockText:
			parts = append(parts, genai.NewPartFromText(b.Text))
		case domain.BlockImage:
			mimeType, payload, ok := prompt.PayloadFromDataURI(b.ImageURL)
			if !ok {
				return "", fmt.Errorf("unsupported image reference: %.32s", b.ImageURL)
			}
			data, err := base64.StdEncoding.DecodeString(payload)
			if err != nil {
				return "", fmt.Errorf("decode image: %w", err)
			}
			parts = append(parts, genai.NewPartFromBytes(data, mimeType))
		}
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if c.maxTokens > 0 {
		config.MaxOutputTokens = c.maxTokens
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, []*genai.Content{
		{Role: genai.RoleUser, Parts: parts},
	}, config)
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no response generated from Gemini API")
	}
	return text, nil
}
