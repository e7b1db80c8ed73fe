package tui

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"pdfchat/internal/domain"
	"pdfchat/internal/summarizer"
)

// maxSidebarText bounds how much of one retrieved text the sidebar shows.
const maxSidebarText = 10000

var (
	sectionStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	captionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	previewStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

func renderSidebar(pc domain.ParsedContext, question string, sum *summarizer.FrequencySummarizer, width int) string {
	if len(pc.Texts) == 0 && len(pc.Images) == 0 {
		return helpStyle.Render("Retrieved context will appear here after a question.")
	}
	wrap := lipgloss.NewStyle().Width(max(10, width))
	var sb strings.Builder
	sb.WriteString(sectionStyle.Render("Retrieved Context"))
	sb.WriteString("\n")

	if len(pc.Texts) > 0 {
		sb.WriteString("\n")
		sb.WriteString(sectionStyle.Render(fmt.Sprintf("Texts (%d)", len(pc.Texts))))
		sb.WriteString("\n")
		for i, t := range pc.Texts {
			body := summarizer.Truncate(t.Content, maxSidebarText)
			sb.WriteString(captionStyle.Render(fmt.Sprintf("Text %d", i+1)))
			sb.WriteString("\n")
			sb.WriteString(previewStyle.Render(sum.Preview(body, max(10, width))))
			sb.WriteString("\n")
			sb.WriteString(wrap.Render(highlightBestSentence(body, question)))
			sb.WriteString("\n\n")
		}
	}

	if len(pc.Images) > 0 {
		sb.WriteString("\n")
		sb.WriteString(sectionStyle.Render(fmt.Sprintf("Images (%d)", len(pc.Images))))
		sb.WriteString("\n")
		for i, img := range pc.Images {
			sb.WriteString(imageCaption(i, img))
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// imageCaption labels an image; the terminal cannot draw it.
func imageCaption(i int, b64 string) string {
	size := base64.StdEncoding.DecodedLen(len(b64)) - strings.Count(b64, "=")
	return captionStyle.Render(fmt.Sprintf("Image %d", i+1)) + fmt.Sprintf("  image/jpeg, %s", humanBytes(size))
}

func humanBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

// highlightBestSentence returns text unchanged except for the sentence that
// shares the most words with query, which is styled.
func highlightBestSentence(text, query string) string {
	qTokens := toTokenSet(query)
	if strings.TrimSpace(text) == "" || len(qTokens) == 0 {
		return text
	}
	pieces := splitSentences(text)
	bestIdx := 0
	bestScore := 0
	for i, s := range pieces {
		if score := tokenOverlapScore(qTokens, s); score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestScore > 0 {
		p := pieces[bestIdx]
		core := strings.TrimSpace(p)
		lead := p[:strings.Index(p, core)]
		pieces[bestIdx] = lead + highlightStyle.Render(core) + p[len(lead)+len(core):]
	}
	return strings.Join(pieces, "")
}

// splitSentences cuts text after each sentence terminator. The pieces
// concatenate back to text, including an unterminated tail.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceRe.FindAllStringIndex(text, -1) {
		out = append(out, text[start:loc[1]])
		start = loc[1]
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(sentence), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
