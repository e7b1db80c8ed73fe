package parser

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/domain"
	"pdfchat/internal/logging"
)

type badMarshaler struct{}

func (badMarshaler) MarshalText() ([]byte, error) { return nil, errors.New("boom") }

type page struct{ n int }

func (p page) String() string { return "page body" }

func newParser() *Parser { return New(logging.Discard()) }

func TestParseEmpty(t *testing.T) {
	pc := newParser().Parse(nil)
	assert.NotNil(t, pc.Images)
	assert.NotNil(t, pc.Texts)
	assert.Empty(t, pc.Images)
	assert.Empty(t, pc.Texts)
}

func TestParseClassifiesAndKeepsOrder(t *testing.T) {
	img1 := base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff, 0xe0, 0x01})
	img2 := base64.StdEncoding.EncodeToString([]byte("second image payload"))
	items := []domain.RetrievedItem{
		domain.RawItem("Machine learning is fun."),
		domain.RawItem(img1),
		domain.DocumentItem(domain.Document{Content: "doc one", Metadata: map[string]string{"doc_id": "a"}}),
		domain.OtherItem(42),
		domain.RawItem(img2),
		domain.OtherItem(page{n: 3}),
	}

	pc := newParser().Parse(items)

	assert.Equal(t, []string{img1, img2}, pc.Images)
	require.Len(t, pc.Texts, 4)
	assert.Equal(t, "Machine learning is fun.", pc.Texts[0].Content)
	assert.Equal(t, "doc one", pc.Texts[1].Content)
	assert.Equal(t, "a", pc.Texts[1].Metadata["doc_id"])
	assert.Equal(t, "42", pc.Texts[2].Content)
	assert.Equal(t, "page body", pc.Texts[3].Content)
}

func TestParseDropsUncoercibleItems(t *testing.T) {
	items := []domain.RetrievedItem{
		domain.OtherItem(nil),
		domain.OtherItem(badMarshaler{}),
		domain.RawItem("kept text!"),
	}
	pc := newParser().Parse(items)
	assert.Empty(t, pc.Images)
	require.Len(t, pc.Texts, 1)
	assert.Equal(t, "kept text!", pc.Texts[0].Content)
	assert.Equal(t, 1, len(pc.Images)+len(pc.Texts))
}

func TestParseCountsMatchClassifiedItems(t *testing.T) {
	items := []domain.RetrievedItem{
		domain.RawItem("aGVsbG8="),
		domain.RawItem("not base64 at all"),
		domain.OtherItem(nil),
		domain.OtherItem(3.5),
		domain.DocumentItem(domain.Document{Content: "x"}),
	}
	pc := newParser().Parse(items)
	assert.Equal(t, 4, len(pc.Images)+len(pc.Texts))
}

func TestIsBase64(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"padded", "aGVsbG8=", true},
		{"double pad", "aGk=", true},
		{"no pad needed", "aGVsbG8h", true},
		{"missing padding", "aGVsbG8", false},
		{"bad character", "aGVs*G8=", false},
		{"space", "aGVs bG8=", false},
		{"newline", "aGVs\nbG8=", false},
		{"too much padding", "aGk===", false},
		{"padding in middle", "aG=sbG8=", false},
		{"sentence", "What is machine learning?", false},
		{"url safe alphabet", "aGVsbG8-", false},
		// Known limitation: short words made of base64 characters decode.
		{"plain word", "test", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBase64(tt.in))
		})
	}
}

func TestParseMisclassifiesBase64LookingText(t *testing.T) {
	pc := newParser().Parse([]domain.RetrievedItem{domain.RawItem("abcd")})
	assert.Equal(t, []string{"abcd"}, pc.Images)
	assert.Empty(t, pc.Texts)
}
