package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"

	"pdfchat/internal/domain"
)

var scoreRe = regexp.MustCompile(`[01](?:\.\d+)?`)

// Judge scores answers by asking a chat model.
type Judge struct {
	model  domain.ChatModel
	logger arbor.ILogger
}

func NewJudge(model domain.ChatModel, logger arbor.ILogger) *Judge {
	return &Judge{model: model, logger: logger}
}

// Correctness rates how well actual matches expected, from 0 to 1.
func (j *Judge) Correctness(ctx context.Context, actual, expected string) (float64, error) {
	prompt := fmt.Sprintf(`You are grading an answer against a reference.

Steps:
- Examine the actual output and the expected output.
- Determine if the actual output is factually consistent with the expected output.
- Assess whether the actual output omits critical information from, or introduces inaccuracies not present in, the expected output.

Expected output:
%s

Actual output:
%s

Reply with a single number between 0 and 1 for the degree of factual alignment and completeness. Reply with the number only.`, expected, actual)

	resp, err := j.ask(ctx, prompt)
	if err != nil {
		return 0, err
	}
	return parseScore(resp)
}

// Faithfulness is the share of claims in answer supported by contexts.
// An empty answer or no contexts scores 0 without a model call. A non-empty
// answer from which no claims are extracted scores 1.
func (j *Judge) Faithfulness(ctx context.Context, answer string, contexts []string) (float64, error) {
	if answer == "" || len(contexts) == 0 {
		return 0, nil
	}
	claims, err := j.extractClaims(ctx, answer)
	if err != nil {
		return 0, fmt.Errorf("extract claims: %w", err)
	}
	if len(claims) == 0 {
		return 1, nil
	}

	combined := strings.Join(contexts, "\n\n")
	supported := 0
	for _, claim := range claims {
		ok, err := j.yesNo(ctx, fmt.Sprintf(`Is the following claim supported by, or derivable from, the context?

Claim: %s

Context:
%s

Answer "yes" or "no" only.`, claim, combined))
		if err != nil {
			j.logger.Warn().Err(err).Msg("Claim verification failed")
			continue
		}
		if ok {
			supported++
		}
	}
	return float64(supported) / float64(len(claims)), nil
}

// ContextualRelevancy is the share of contexts relevant to question.
func (j *Judge) ContextualRelevancy(ctx context.Context, question string, contexts []string) (float64, error) {
	if len(contexts) == 0 {
		return 0, nil
	}
	relevant := 0
	for _, c := range contexts {
		ok, err := j.yesNo(ctx, fmt.Sprintf(`Does the following context contain information needed to answer the question?

Question: %s

Context:
%s

Answer "yes" or "no" only.`, question, c))
		if err != nil {
			j.logger.Warn().Err(err).Msg("Context relevancy check failed")
			continue
		}
		if ok {
			relevant++
		}
	}
	return float64(relevant) / float64(len(contexts)), nil
}

func (j *Judge) extractClaims(ctx context.Context, text string) ([]string, error) {
	resp, err := j.ask(ctx, fmt.Sprintf(`Extract every factual claim from the text below. Each claim must be self-contained and verifiable.

Text:
%s

Return a JSON array of strings, for example ["claim 1", "claim 2"]. Return the JSON array only.`, text))
	if err != nil {
		return nil, err
	}
	return parseList(resp), nil
}

func (j *Judge) yesNo(ctx context.Context, prompt string) (bool, error) {
	resp, err := j.ask(ctx, prompt)
	if err != nil {
		return false, err
	}
	resp = strings.ToLower(strings.TrimSpace(resp))
	return strings.HasPrefix(resp, "yes") || strings.HasPrefix(resp, "true"), nil
}

func (j *Judge) ask(ctx context.Context, prompt string) (string, error) {
	return j.model.Generate(ctx, domain.Prompt{Blocks: []domain.ContentBlock{{Type: domain.BlockText, Text: prompt}}})
}

func parseScore(resp string) (float64, error) {
	m := scoreRe.FindString(resp)
	if m == "" {
		return 0, fmt.Errorf("no score in judge reply %q", resp)
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// parseList reads a JSON array, falling back to one item per non-empty line.
func parseList(resp string) []string {
	s := strings.TrimSpace(resp)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	var items []string
	if err := json.Unmarshal([]byte(s), &items); err == nil {
		return items
	}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*0123456789."))
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}
