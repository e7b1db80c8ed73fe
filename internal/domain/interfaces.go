package domain

import "context"

// Document is a text unit read from the index or the document store.
// Metadata carries the id key that links an index entry to its parent record.
type Document struct {
	ID       string            `json:"id,omitempty"`
	Content  string            `json:"page_content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ItemKind tags the variant held by a RetrievedItem.
type ItemKind int

const (
	// KindRawString is a bare string, either a base64 image or plain text.
	KindRawString ItemKind = iota
	// KindDocument is a structured Document.
	KindDocument
	// KindOther is any other value that must be coerced to text.
	KindOther
)

func (k ItemKind) String() string {
	switch k {
	case KindRawString:
		return "string"
	case KindDocument:
		return "document"
	case KindOther:
		return "other"
	}
	return "unknown"
}

// RetrievedItem is one result of a retrieval call. Exactly one payload is set,
// matching Kind.
type RetrievedItem struct {
	Kind  ItemKind
	Raw   string
	Doc   Document
	Value any
}

// RawItem wraps a bare string.
func RawItem(s string) RetrievedItem { return RetrievedItem{Kind: KindRawString, Raw: s} }

// DocumentItem wraps a structured document.
func DocumentItem(d Document) RetrievedItem { return RetrievedItem{Kind: KindDocument, Doc: d} }

// OtherItem wraps an arbitrary value.
func OtherItem(v any) RetrievedItem { return RetrievedItem{Kind: KindOther, Value: v} }

// ParsedContext is the retrieval output split into images and texts.
type ParsedContext struct {
	Images []string   `json:"images"`
	Texts  []Document `json:"texts"`
}

// EmptyContext returns a ParsedContext with non-nil empty slices.
func EmptyContext() ParsedContext {
	return ParsedContext{Images: []string{}, Texts: []Document{}}
}

// TextContents returns the content of every text document in order.
func (pc ParsedContext) TextContents() []string {
	out := make([]string, 0, len(pc.Texts))
	for _, t := range pc.Texts {
		out = append(out, t.Content)
	}
	return out
}

// Block types of a multimodal prompt.
const (
	BlockText  = "text"
	BlockImage = "image_url"
)

// ContentBlock is one part of a multimodal prompt.
type ContentBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// Prompt is a single user message made of ordered content blocks.
type Prompt struct {
	Blocks []ContentBlock `json:"content"`
}

// Text returns the first text block, or an empty string.
func (p Prompt) Text() string {
	for _, b := range p.Blocks {
		if b.Type == BlockText {
			return b.Text
		}
	}
	return ""
}

// Images returns the image blocks in order.
func (p Prompt) Images() []ContentBlock {
	var out []ContentBlock
	for _, b := range p.Blocks {
		if b.Type == BlockImage {
			out = append(out, b)
		}
	}
	return out
}

// Role of a chat message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of a session's history.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SearchHit is a vector index match with a relevance score.
type SearchHit struct {
	Document Document
	Score    float64
}

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorIndex runs similarity search over a pre-built index.
type VectorIndex interface {
	Search(ctx context.Context, vector []float64, topK int) ([]SearchHit, error)
	Close() error
}

// DocStore maps parent ids to their full records.
type DocStore interface {
	MGet(ids []string) []*RetrievedItem
}

// Retriever returns the context items relevant to a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]RetrievedItem, error)
}

// ChatModel generates a text answer for a multimodal prompt.
type ChatModel interface {
	Name() string
	Generate(ctx context.Context, prompt Prompt) (string, error)
}
