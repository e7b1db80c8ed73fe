// Package retriever maps a question to parent records through a child index.
package retriever

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"pdfchat/internal/domain"
)

// DefaultIDKey is the metadata key linking index entries to parent records.
const DefaultIDKey = "doc_id"

// MultiVector searches child summaries and returns the parent records they
// reference, in first-hit order without duplicates.
type MultiVector struct {
	embedder domain.Embedder
	index    domain.VectorIndex
	docs     domain.DocStore
	k        int
	idKey    string
	logger   arbor.ILogger
}

type Options struct {
	K     int
	IDKey string
}

func NewMultiVector(embedder domain.Embedder, index domain.VectorIndex, docs domain.DocStore, opts Options, logger arbor.ILogger) *MultiVector {
	if opts.K <= 0 {
		opts.K = 10
	}
	if opts.IDKey == "" {
		opts.IDKey = DefaultIDKey
	}
	return &MultiVector{
		embedder: embedder,
		index:    index,
		docs:     docs,
		k:        opts.K,
		idKey:    opts.IDKey,
		logger:   logger,
	}
}

// Retrieve embeds the question, searches k children and resolves their parents.
// Children without an id key and ids missing from the store are skipped.
func (r *MultiVector) Retrieve(ctx context.Context, question string) ([]domain.RetrievedItem, error) {
	vec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	hits, err := r.index.Search(ctx, vec, r.k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	ids := make([]string, 0, len(hits))
	seen := make(map[string]struct{}, len(hits))
	for _, h := range hits {
		id, ok := h.Document.Metadata[r.idKey]
		if !ok || id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	found := r.docs.MGet(ids)
	out := make([]domain.RetrievedItem, 0, len(found))
	for i, item := range found {
		if item == nil {
			r.logger.Debug().Str("id", ids[i]).Msg("Parent record not in document store")
			continue
		}
		out = append(out, *item)
	}
	r.logger.Debug().Int("hits", len(hits)).Int("parents", len(out)).Msg("Retrieved context")
	return out, nil
}
