package main

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/domain"
	"pdfchat/internal/logging"
	"pdfchat/internal/service"
)

type stubChain struct {
	answer service.Answer
	pc     domain.ParsedContext
	err    error
	asked  []string
}

func (s *stubChain) Ask(_ context.Context, q string) (service.Answer, error) {
	s.asked = append(s.asked, q)
	return s.answer, s.err
}

func (s *stubChain) RetrieveDocuments(_ context.Context, q string) (domain.ParsedContext, error) {
	s.asked = append(s.asked, q)
	return s.pc, s.err
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, c mcp.Content) string {
	t.Helper()
	tc, ok := c.(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", c)
	return tc.Text
}

func sampleContext() domain.ParsedContext {
	return domain.ParsedContext{
		Texts:  []domain.Document{{Content: "Linear models are parametric."}},
		Images: []string{"aGVsbG8="},
	}
}

func TestAskDocument(t *testing.T) {
	chain := &stubChain{answer: service.Answer{Text: "They are parametric.", Context: sampleContext()}}
	h := handleAskDocument(chain, logging.Discard())

	res, err := h(context.Background(), callRequest("ask_document", map[string]any{"question": "  Explain Linear models. "}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "They are parametric.", textOf(t, res.Content[0]))
	assert.Equal(t, []string{"Explain Linear models."}, chain.asked)
}

func TestAskDocumentWithContext(t *testing.T) {
	chain := &stubChain{answer: service.Answer{Text: "answer", Context: sampleContext()}}
	res, err := handleAskDocument(chain, logging.Discard())(context.Background(),
		callRequest("ask_document", map[string]any{"question": "q", "include_context": true}))
	require.NoError(t, err)
	require.Len(t, res.Content, 2)
	ctxText := textOf(t, res.Content[1])
	assert.Contains(t, ctxText, "1 text passages, 1 images")
	assert.Contains(t, ctxText, "Linear models are parametric.")
}

func TestAskDocumentRequiresQuestion(t *testing.T) {
	chain := &stubChain{}
	res, err := handleAskDocument(chain, logging.Discard())(context.Background(), callRequest("ask_document", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Empty(t, chain.asked)
}

func TestAskDocumentChainError(t *testing.T) {
	chain := &stubChain{err: errors.New("generate: upstream down")}
	res, err := handleAskDocument(chain, logging.Discard())(context.Background(), callRequest("ask_document", map[string]any{"question": "q"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res.Content[0]), "upstream down")
}

func TestRetrieveContextAttachesImages(t *testing.T) {
	chain := &stubChain{pc: sampleContext()}
	res, err := handleRetrieveContext(chain, logging.Discard())(context.Background(), callRequest("retrieve_context", map[string]any{"question": "q"}))
	require.NoError(t, err)
	require.Len(t, res.Content, 2)
	img, ok := res.Content[1].(mcp.ImageContent)
	require.True(t, ok)
	assert.Equal(t, "aGVsbG8=", img.Data)
	assert.Equal(t, "image/jpeg", img.MIMEType)
}

func TestRetrieveContextWithoutImages(t *testing.T) {
	chain := &stubChain{pc: sampleContext()}
	res, err := handleRetrieveContext(chain, logging.Discard())(context.Background(),
		callRequest("retrieve_context", map[string]any{"question": "q", "include_images": false}))
	require.NoError(t, err)
	assert.Len(t, res.Content, 1)
}

func TestFormatContextEmpty(t *testing.T) {
	assert.Equal(t, "# Retrieved Context\n\n0 text passages, 0 images\n", formatContext(domain.EmptyContext()))
}
