// Package loader builds the long-lived retrieval and generation resources once
// and hands out shared read-only handles.
package loader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"pdfchat/internal/config"
	"pdfchat/internal/docstore"
	"pdfchat/internal/domain"
	"pdfchat/internal/embedding/openai"
	"pdfchat/internal/llm"
	"pdfchat/internal/retriever"
	"pdfchat/internal/vectorstore/local"
	"pdfchat/internal/vectorstore/milvus"
	"pdfchat/internal/vectorstore/qdrant"
)

// Loader is safe for concurrent use. The first successful LoadAll wins;
// a failed LoadAll leaves nothing behind and may be retried.
type Loader struct {
	cfg    *config.AppConfig
	logger arbor.ILogger

	mu        sync.Mutex
	loaded    bool
	index     domain.VectorIndex
	retriever domain.Retriever
	model     domain.ChatModel
}

func New(cfg *config.AppConfig, logger arbor.ILogger) *Loader {
	return &Loader{cfg: cfg, logger: logger}
}

// LoadAll validates the configuration and builds every resource in order:
// embedder, vector index, document store, retriever, chat model.
func (l *Loader) LoadAll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loaded {
		return nil
	}

	start := time.Now()
	if err := l.cfg.Validate(); err != nil {
		return err
	}

	embedder, err := openai.NewClient(openai.Config{
		BaseURL:   l.cfg.Embedder.BaseURL,
		APIKeyEnv: l.cfg.Embedder.APIKeyEnv,
		Model:     l.cfg.Embedder.Model,
		Timeout:   time.Duration(l.cfg.Embedder.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("embedder: %w", err)
	}
	l.logger.Info().Str("embedder", embedder.Name()).Msg("Embedding model loaded")

	index, err := l.openIndex(ctx)
	if err != nil {
		return err
	}

	docs, err := docstore.Load(l.cfg.Paths.Docstore)
	if err != nil {
		_ = index.Close()
		return err
	}
	l.logger.Info().Str("path", l.cfg.Paths.Docstore).Int("records", docs.Len()).Msg("Document store loaded")

	ret := retriever.NewMultiVector(embedder, index, docs, retriever.Options{
		K:     l.cfg.Retriever.K,
		IDKey: l.cfg.Retriever.IDKey,
	}, l.logger)
	l.logger.Info().Int("k", l.cfg.Retriever.K).Str("id_key", l.cfg.Retriever.IDKey).Msg("Retriever ready")

	model, err := llm.NewChatModel(ctx, l.cfg.LLM, l.logger)
	if err != nil {
		_ = index.Close()
		return fmt.Errorf("chat model: %w", err)
	}

	l.index, l.retriever, l.model = index, ret, model
	l.loaded = true
	l.logger.Info().Dur("elapsed", time.Since(start)).Msg("All resources loaded")
	return nil
}

// Retriever returns the shared retriever, loading resources on first use.
func (l *Loader) Retriever(ctx context.Context) (domain.Retriever, error) {
	if err := l.LoadAll(ctx); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.retriever, nil
}

// ChatModel returns the shared chat model, loading resources on first use.
func (l *Loader) ChatModel(ctx context.Context) (domain.ChatModel, error) {
	if err := l.LoadAll(ctx); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.model, nil
}

// Close releases the index. The loader can be loaded again afterwards.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.loaded {
		return nil
	}
	err := l.index.Close()
	l.index, l.retriever, l.model = nil, nil, nil
	l.loaded = false
	return err
}

func (l *Loader) openIndex(ctx context.Context) (domain.VectorIndex, error) {
	rc := l.cfg.Retriever
	switch rc.Backend {
	case "local", "":
		idx, err := local.Open(l.cfg.Paths.IndexDir)
		if err != nil {
			return nil, err
		}
		l.logger.Info().
			Str("path", l.cfg.Paths.IndexDir).
			Int("entries", idx.Len()).
			Int("dimension", idx.Dimension()).
			Msg("Vector index loaded")
		return idx, nil
	case "qdrant":
		idx := qdrant.NewIndex(qdrant.Config{
			URL:        rc.Qdrant.URL,
			APIKey:     rc.Qdrant.APIKey,
			Collection: rc.Qdrant.Collection,
			Timeout:    time.Duration(rc.Qdrant.TimeoutSecs) * time.Second,
		})
		if err := idx.Ping(ctx); err != nil {
			return nil, fmt.Errorf("qdrant collection %s: %w", rc.Qdrant.Collection, err)
		}
		l.logger.Info().Str("url", rc.Qdrant.URL).Str("collection", rc.Qdrant.Collection).Msg("Vector index connected")
		return idx, nil
	case "milvus":
		idx, err := milvus.Open(ctx, milvus.Config{
			Address:    rc.Milvus.Address,
			Username:   rc.Milvus.Username,
			Password:   rc.Milvus.Password,
			Database:   rc.Milvus.Database,
			Collection: rc.Milvus.Collection,
			IDKey:      rc.IDKey,
			Timeout:    time.Duration(rc.Milvus.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		l.logger.Info().Str("address", rc.Milvus.Address).Str("collection", rc.Milvus.Collection).Msg("Vector index connected")
		return idx, nil
	}
	return nil, fmt.Errorf("unknown retriever backend: %s", rc.Backend)
}
