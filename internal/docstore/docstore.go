// Package docstore holds the parent records that index entries point to.
package docstore

import (
	"encoding/json"
	"fmt"
	"os"

	"pdfchat/internal/domain"
)

// Record types stored in the JSON file.
const (
	TypeDocument = "document"
	TypeString   = "string"
	TypeValue    = "value"
)

// Record is the on-disk form of one parent item.
type Record struct {
	Type        string            `json:"type"`
	PageContent string            `json:"page_content,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Value       json.RawMessage   `json:"value,omitempty"`
}

// Store is an immutable id -> item map.
type Store struct {
	items map[string]domain.RetrievedItem
}

// Load reads a JSON object of id -> Record.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read docstore %s: %w", path, err)
	}
	var raw map[string]Record
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode docstore %s: %w", path, err)
	}
	s := &Store{items: make(map[string]domain.RetrievedItem, len(raw))}
	for id, rec := range raw {
		item, err := rec.item(id)
		if err != nil {
			return nil, fmt.Errorf("docstore %s: %w", path, err)
		}
		s.items[id] = item
	}
	return s, nil
}

// New builds a store from items already in memory.
func New(items map[string]domain.RetrievedItem) *Store {
	cp := make(map[string]domain.RetrievedItem, len(items))
	for k, v := range items {
		cp[k] = v
	}
	return &Store{items: cp}
}

// MGet returns one entry per id, nil where the id is unknown.
func (s *Store) MGet(ids []string) []*domain.RetrievedItem {
	out := make([]*domain.RetrievedItem, len(ids))
	for i, id := range ids {
		if item, ok := s.items[id]; ok {
			it := item
			out[i] = &it
		}
	}
	return out
}

func (s *Store) Len() int { return len(s.items) }

// Save writes items in the format Load reads. Ids come out sorted.
func Save(path string, items map[string]domain.RetrievedItem) error {
	out := make(map[string]Record, len(items))
	for id, item := range items {
		rec, err := toRecord(item)
		if err != nil {
			return fmt.Errorf("record %s: %w", id, err)
		}
		out[id] = rec
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (r Record) item(id string) (domain.RetrievedItem, error) {
	switch r.Type {
	case TypeDocument:
		return domain.DocumentItem(domain.Document{ID: id, Content: r.PageContent, Metadata: r.Metadata}), nil
	case TypeString:
		var s string
		if err := json.Unmarshal(r.Value, &s); err != nil {
			return domain.RetrievedItem{}, fmt.Errorf("record %s: string value: %w", id, err)
		}
		return domain.RawItem(s), nil
	case TypeValue:
		var v any
		if len(r.Value) > 0 {
			if err := json.Unmarshal(r.Value, &v); err != nil {
				return domain.RetrievedItem{}, fmt.Errorf("record %s: value: %w", id, err)
			}
		}
		return domain.OtherItem(v), nil
	}
	return domain.RetrievedItem{}, fmt.Errorf("record %s: unknown type %q", id, r.Type)
}

func toRecord(item domain.RetrievedItem) (Record, error) {
	switch item.Kind {
	case domain.KindDocument:
		return Record{Type: TypeDocument, PageContent: item.Doc.Content, Metadata: item.Doc.Metadata}, nil
	case domain.KindRawString:
		b, err := json.Marshal(item.Raw)
		return Record{Type: TypeString, Value: b}, err
	default:
		b, err := json.Marshal(item.Value)
		return Record{Type: TypeValue, Value: b}, err
	}
}
