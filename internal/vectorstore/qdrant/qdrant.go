// Package qdrant searches a Qdrant collection over its REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pdfchat/internal/domain"
)

// Index is a read-only client for a collection whose points carry
// page_content and metadata payload fields.
type Index struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewIndex(cfg Config) *Index {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Index{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Ping checks that the collection exists.
func (s *Index) Ping(ctx context.Context) error {
	return s.doJSON(ctx, http.MethodGet, fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil, nil)
}

func (s *Index) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchHit, error) {
	if topK <= 0 {
		return []domain.SearchHit{}, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			ID      any     `json:"id"`
			Score   float64 `json:"score"`
			Payload struct {
				PageContent string         `json:"page_content"`
				Metadata    map[string]any `json:"metadata"`
			} `json:"payload"`
		} `json:"result"`
	}
	if err := s.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.SearchHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		doc := domain.Document{
			ID:       fmt.Sprint(r.ID),
			Content:  r.Payload.PageContent,
			Metadata: make(map[string]string, len(r.Payload.Metadata)),
		}
		for k, v := range r.Payload.Metadata {
			if str, ok := v.(string); ok {
				doc.Metadata[k] = str
			} else {
				doc.Metadata[k] = fmt.Sprint(v)
			}
		}
		results = append(results, domain.SearchHit{Document: doc, Score: r.Score})
	}
	return results, nil
}

func (s *Index) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *Index) doJSON(ctx context.Context, method, url string, body any, out any) error {
	var rd *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
