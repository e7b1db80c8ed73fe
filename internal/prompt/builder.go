// Package prompt renders the instruction template and assembles the
// multimodal prompt sent to the chat model.
package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"pdfchat/internal/domain"
)

// ImageMIMEType is the media type declared for every retrieved image.
const ImageMIMEType = "image/jpeg"

// Builder turns parsed context and a question into a Prompt.
type Builder struct {
	tmpl *template.Template
}

// NewBuilder creates a builder for the named template.
func NewBuilder(name string) (*Builder, error) {
	var src string
	switch name {
	case TemplateDefault, "":
		src = generationTemplate
		name = TemplateDefault
	case TemplateReasoning:
		src = reasoningTemplate
	default:
		return nil, fmt.Errorf("unknown prompt template: %s", name)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return &Builder{tmpl: tmpl}, nil
}

// Build renders the template with the concatenated text context and appends
// one image block per image, text block first.
func (b *Builder) Build(pc domain.ParsedContext, question string) (domain.Prompt, error) {
	var sb strings.Builder
	err := b.tmpl.Execute(&sb, struct {
		Context  string
		Question string
	}{
		Context:  ContextText(pc.Texts),
		Question: question,
	})
	if err != nil {
		return domain.Prompt{}, fmt.Errorf("render prompt: %w", err)
	}

	blocks := make([]domain.ContentBlock, 0, 1+len(pc.Images))
	blocks = append(blocks, domain.ContentBlock{Type: domain.BlockText, Text: sb.String()})
	for _, img := range pc.Images {
		blocks = append(blocks, domain.ContentBlock{Type: domain.BlockImage, ImageURL: DataURI(img)})
	}
	return domain.Prompt{Blocks: blocks}, nil
}

// ContextText joins document contents separated by blank lines.
func ContextText(texts []domain.Document) string {
	var sb strings.Builder
	for _, t := range texts {
		sb.WriteString(t.Content)
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}

// DataURI wraps a base64 payload as an inline image reference.
func DataURI(b64 string) string {
	return "data:" + ImageMIMEType + ";base64," + b64
}

// PayloadFromDataURI strips the data-URI prefix written by DataURI and
// reports the media type.
func PayloadFromDataURI(uri string) (mimeType, payload string, ok bool) {
	rest, found := strings.CutPrefix(uri, "data:")
	if !found {
		return "", "", false
	}
	mimeType, payload, found = strings.Cut(rest, ";base64,")
	if !found {
		return "", "", false
	}
	return mimeType, payload, true
}
