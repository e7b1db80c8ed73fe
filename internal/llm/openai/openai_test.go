package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/domain"
)

func newClient(t *testing.T, url string) *Client {
	t.Helper()
	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	c, err := NewClient(Config{BaseURL: url, APIKeyEnv: "TEST_OPENAI_KEY", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	return c
}

func TestGenerateSendsMultimodalMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req["model"])
		temp, hasTemp := req["temperature"].(float64)
		assert.True(t, hasTemp, "zero temperature must still be sent")
		assert.Less(t, temp, 1e-6)
		_, hasMax := req["max_tokens"]
		assert.False(t, hasMax)

		msgs := req["messages"].([]any)
		require.Len(t, msgs, 1)
		msg := msgs[0].(map[string]any)
		assert.Equal(t, "user", msg["role"])
		content := msg["content"].([]any)
		require.Len(t, content, 2)
		assert.Equal(t, "text", content[0].(map[string]any)["type"])
		img := content[1].(map[string]any)
		assert.Equal(t, "image_url", img["type"])
		assert.Equal(t, "data:image/jpeg;base64,aGk=", img["image_url"].(map[string]any)["url"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"Machine learning is..."}}]}`))
	}))
	defer srv.Close()

	out, err := newClient(t, srv.URL).Generate(context.Background(), domain.Prompt{Blocks: []domain.ContentBlock{
		{Type: domain.BlockText, Text: "Question: What is machine learning?"},
		{Type: domain.BlockImage, ImageURL: "data:image/jpeg;base64,aGk="},
	}})
	require.NoError(t, err)
	assert.Equal(t, "Machine learning is...", out)
}

func TestGenerateTrailingSlashBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	out, err := newClient(t, srv.URL+"/v1/").Generate(context.Background(), domain.Prompt{Blocks: []domain.ContentBlock{
		{Type: domain.BlockText, Text: "q"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestGenerateAPIErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).Generate(context.Background(), domain.Prompt{Blocks: []domain.ContentBlock{
		{Type: domain.BlockText, Text: "q"},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key provided")

	var apiErr *openai.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).Generate(context.Background(), domain.Prompt{Blocks: []domain.ContentBlock{
		{Type: domain.BlockText, Text: "q"},
	}})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestRequestTemperature(t *testing.T) {
	assert.Equal(t, float32(0.7), requestTemperature(0.7))
	assert.Greater(t, requestTemperature(0), float32(0))
}

func TestNewClientMissingKey(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY_UNSET", "")
	_, err := NewClient(Config{APIKeyEnv: "TEST_OPENAI_KEY_UNSET"})
	assert.Error(t, err)
}
