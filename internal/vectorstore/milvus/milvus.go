// Package milvus searches a Milvus collection built by the indexing pipeline.
package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	"pdfchat/internal/domain"
)

// Field names of the collection schema.
const (
	FieldID        = "chunk_id"
	FieldContent   = "page_content"
	FieldEmbedding = "embedding"
)

type Config struct {
	Address    string
	Username   string
	Password   string
	Database   string
	Collection string
	// IDKey is the varchar field holding the parent record id.
	IDKey   string
	Timeout time.Duration
}

// Index is a read-only view over one loaded collection.
type Index struct {
	client     *milvusclient.Client
	collection string
	idKey      string
}

// Open connects and loads the collection into memory on the Milvus side.
func Open(ctx context.Context, cfg Config) (*Index, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus: %w", err)
	}

	loadTask, err := c.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(cfg.Collection))
	if err != nil {
		_ = c.Close(context.Background())
		return nil, fmt.Errorf("failed to load collection %s: %w", cfg.Collection, err)
	}
	if err := loadTask.Await(ctx); err != nil {
		_ = c.Close(context.Background())
		return nil, fmt.Errorf("failed to wait for collection loading: %w", err)
	}

	idKey := cfg.IDKey
	if idKey == "" {
		idKey = "doc_id"
	}
	return &Index{client: c, collection: cfg.Collection, idKey: idKey}, nil
}

func (s *Index) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchHit, error) {
	if topK <= 0 {
		return []domain.SearchHit{}, nil
	}
	results, err := s.client.Search(ctx, milvusclient.NewSearchOption(
		s.collection,
		topK,
		[]entity.Vector{entity.FloatVector(toFloat32(vector))},
	).WithANNSField(FieldEmbedding).
		WithOutputFields(FieldID, FieldContent, s.idKey))
	if err != nil {
		return nil, fmt.Errorf("milvus search: %w", err)
	}
	if len(results) == 0 {
		return []domain.SearchHit{}, nil
	}

	rs := results[0]
	hits := make([]domain.SearchHit, 0, rs.ResultCount)
	for i := 0; i < rs.ResultCount; i++ {
		doc := domain.Document{Metadata: map[string]string{}}
		for _, field := range rs.Fields {
			col, ok := field.(*column.ColumnVarChar)
			if !ok {
				continue
			}
			switch col.Name() {
			case FieldID:
				doc.ID = col.Data()[i]
			case FieldContent:
				doc.Content = col.Data()[i]
			case s.idKey:
				doc.Metadata[s.idKey] = col.Data()[i]
			}
		}
		hits = append(hits, domain.SearchHit{Document: doc, Score: float64(rs.Scores[i])})
	}
	return hits, nil
}

func (s *Index) Close() error {
	return s.client.Close(context.Background())
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
