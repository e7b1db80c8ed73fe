// Package local loads a pre-built vector index from a Badger directory.
package local

import (
	"fmt"
	"os"

	"github.com/timshannon/badgerhold/v4"

	"pdfchat/internal/domain"
	"pdfchat/internal/vectorstore/memory"
)

// Entry is one stored child chunk: its embedding plus the text and metadata
// that link it to a parent record in the document store.
type Entry struct {
	ID       string
	Vector   []float64
	Content  string
	Metadata map[string]string
}

// Open reads every entry under dir into an in-memory index. The directory is
// opened read-only and closed before returning.
func Open(dir string) (*memory.Index, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("open vector index %s: %w", dir, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil
	options.ReadOnly = true

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open vector index %s: %w", dir, err)
	}
	defer store.Close()

	var entries []Entry
	if err := store.Find(&entries, badgerhold.Where("ID").Ne("")); err != nil {
		return nil, fmt.Errorf("read vector index %s: %w", dir, err)
	}

	idx := memory.NewIndex()
	for _, e := range entries {
		doc := domain.Document{ID: e.ID, Content: e.Content, Metadata: e.Metadata}
		if err := idx.Add(doc, e.Vector); err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
	}
	return idx, nil
}

// Write stores entries under dir, creating it when needed. Index construction
// happens outside this application; Write exists for fixtures and tooling.
func Write(dir string, entries []Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return fmt.Errorf("open vector index %s: %w", dir, err)
	}
	defer store.Close()

	for _, e := range entries {
		if err := store.Upsert(e.ID, e); err != nil {
			return fmt.Errorf("write entry %s: %w", e.ID, err)
		}
	}
	return nil
}
