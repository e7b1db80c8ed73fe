// Package parser splits retrieved items into base64 images and text documents.
package parser

import (
	"encoding"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"

	"github.com/ternarybob/arbor"

	"pdfchat/internal/domain"
)

// base64Alphabet accepts only the standard alphabet with at most two trailing
// pad characters; whitespace and line breaks are rejected.
var base64Alphabet = regexp.MustCompile(`^[A-Za-z0-9+/]*={0,2}$`)

var errNilValue = errors.New("nil value")

// Parser classifies retrieved items. It holds no state besides its logger.
type Parser struct {
	logger arbor.ILogger
}

// New creates a parser that reports skipped items to logger.
func New(logger arbor.ILogger) *Parser {
	return &Parser{logger: logger}
}

// Parse partitions items into images and texts, preserving input order in
// each group. A raw string is an image iff it is valid base64; anything that
// cannot be turned into text is skipped with a warning.
//
// Plain text that happens to be valid base64 ("abcd", "test") is classified
// as an image. Callers relying on short raw strings should store them as
// documents instead.
func (p *Parser) Parse(items []domain.RetrievedItem) domain.ParsedContext {
	out := domain.EmptyContext()
	for i, item := range items {
		switch item.Kind {
		case domain.KindRawString:
			if IsBase64(item.Raw) {
				out.Images = append(out.Images, item.Raw)
			} else {
				out.Texts = append(out.Texts, domain.Document{Content: item.Raw})
			}
		case domain.KindDocument:
			out.Texts = append(out.Texts, item.Doc)
		default:
			content, err := coerce(item.Value)
			if err != nil {
				p.logger.Warn().
					Int("index", i).
					Str("type", fmt.Sprintf("%T", item.Value)).
					Err(err).
					Msg("Could not parse retrieved item, skipping")
				continue
			}
			out.Texts = append(out.Texts, domain.Document{Content: content})
		}
	}
	return out
}

// IsBase64 reports whether s decodes as strictly validated standard base64.
func IsBase64(s string) bool {
	if !base64Alphabet.MatchString(s) {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(s)
	return err == nil
}

func coerce(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", errNilValue
	case fmt.Stringer:
		return val.String(), nil
	case encoding.TextMarshaler:
		b, err := val.MarshalText()
		if err != nil {
			return "", err
		}
		return string(b), nil
	case error:
		return val.Error(), nil
	default:
		return fmt.Sprint(val), nil
	}
}
