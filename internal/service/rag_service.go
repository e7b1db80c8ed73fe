// Package service composes retrieval, parsing, prompt building and generation
// into the question answering chain.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"pdfchat/internal/domain"
	"pdfchat/internal/parser"
	"pdfchat/internal/prompt"
)

// Resources hands out the shared handles. loader.Loader satisfies it.
type Resources interface {
	Retriever(ctx context.Context) (domain.Retriever, error)
	ChatModel(ctx context.Context) (domain.ChatModel, error)
}

// Answer is a generated answer together with the context it was built from.
type Answer struct {
	Text      string               `json:"answer"`
	Context   domain.ParsedContext `json:"context"`
	Retrieval time.Duration        `json:"-"`
	Latency   time.Duration        `json:"-"`
}

// ChainManager is stateless per call: every question runs retrieval and
// generation again, and nothing is retried.
type ChainManager struct {
	resources Resources
	parser    *parser.Parser
	builder   *prompt.Builder
	logger    arbor.ILogger
}

func NewChainManager(resources Resources, p *parser.Parser, b *prompt.Builder, logger arbor.ILogger) *ChainManager {
	return &ChainManager{resources: resources, parser: p, builder: b, logger: logger}
}

// Invoke answers question.
func (m *ChainManager) Invoke(ctx context.Context, question string) (string, error) {
	ans, err := m.Ask(ctx, question)
	if err != nil {
		return "", err
	}
	return ans.Text, nil
}

// RetrieveDocuments runs retrieval and parsing only.
func (m *ChainManager) RetrieveDocuments(ctx context.Context, question string) (domain.ParsedContext, error) {
	items, err := m.retrieve(ctx, question)
	if err != nil {
		return domain.ParsedContext{}, err
	}
	return m.parser.Parse(items), nil
}

// Ask runs the full chain once and returns the answer with its context.
func (m *ChainManager) Ask(ctx context.Context, question string) (Answer, error) {
	start := time.Now()
	items, err := m.retrieve(ctx, question)
	if err != nil {
		return Answer{}, err
	}
	pc := m.parser.Parse(items)
	retrieval := time.Since(start)

	p, err := m.builder.Build(pc, question)
	if err != nil {
		return Answer{}, fmt.Errorf("build prompt: %w", err)
	}

	model, err := m.resources.ChatModel(ctx)
	if err != nil {
		return Answer{}, fmt.Errorf("generate: %w", err)
	}
	text, err := model.Generate(ctx, p)
	if err != nil {
		return Answer{}, fmt.Errorf("generate: %w", err)
	}

	ans := Answer{Text: text, Context: pc, Retrieval: retrieval, Latency: time.Since(start)}
	m.logger.Info().
		Int("texts", len(pc.Texts)).
		Int("images", len(pc.Images)).
		Dur("retrieval", ans.Retrieval).
		Dur("latency", ans.Latency).
		Msg("Question answered")
	return ans, nil
}

func (m *ChainManager) retrieve(ctx context.Context, question string) ([]domain.RetrievedItem, error) {
	r, err := m.resources.Retriever(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	items, err := r.Retrieve(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	return items, nil
}
