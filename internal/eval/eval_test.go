package eval

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/domain"
	"pdfchat/internal/logging"
	"pdfchat/internal/service"
)

// scriptedModel answers judge prompts by matching on their wording.
type scriptedModel struct {
	reply func(prompt string) (string, error)
	calls int
}

func (s *scriptedModel) Name() string { return "scripted" }

func (s *scriptedModel) Generate(_ context.Context, p domain.Prompt) (string, error) {
	s.calls++
	return s.reply(p.Text())
}

type stubChain struct {
	answers map[string]service.Answer
	err     error
}

func (s stubChain) Ask(_ context.Context, q string) (service.Answer, error) {
	if s.err != nil {
		return service.Answer{}, s.err
	}
	return s.answers[q], nil
}

func TestLoadDataset(t *testing.T) {
	ds, err := LoadDataset("testdata/golden.yaml")
	require.NoError(t, err)
	require.Len(t, ds.Cases, 2)
	assert.Equal(t, "What is machine learning according to the document?", ds.Cases[0].Input)
	assert.Contains(t, ds.Cases[1].ExpectedOutput, "Probabilistic models")
}

func TestLoadDatasetRejectsIncompleteCase(t *testing.T) {
	_, err := LoadDataset("testdata/invalid.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid dataset")
}

func TestDefaultDataset(t *testing.T) {
	ds := DefaultDataset()
	require.Len(t, ds.Cases, 6)
	for _, c := range ds.Cases {
		assert.NotEmpty(t, c.Input)
		assert.NotEmpty(t, c.ExpectedOutput)
	}
}

func TestLexicalOverlap(t *testing.T) {
	assert.InDelta(t, 1.0, LexicalOverlap("Linear models", "linear MODELS"), 1e-9)
	assert.Zero(t, LexicalOverlap("", "anything"))
	assert.Zero(t, LexicalOverlap("alpha beta", "gamma delta"))
	// {a, b} vs {b, c}: 1 / sqrt(2*2)
	assert.InDelta(t, 0.5, LexicalOverlap("a b", "b c"), 1e-9)
}

func TestTFIDFSimilarity(t *testing.T) {
	tf := FitTFIDF([]string{
		"Linear models are parametric models.",
		"Geometric models use distance.",
		"Probabilistic models use distributions.",
	})
	same := tf.Similarity("linear parametric", "Linear models are parametric")
	rare := tf.Similarity("linear", "linear models")
	common := tf.Similarity("models", "linear models")

	assert.Greater(t, same, 0.9)
	assert.Greater(t, rare, common)
	assert.Zero(t, tf.Similarity("unknown words", "linear models"))
	assert.Zero(t, tf.Similarity("", ""))
}

func TestJudgeCorrectness(t *testing.T) {
	m := &scriptedModel{reply: func(string) (string, error) { return "Score: 0.85", nil }}
	got, err := NewJudge(m, logging.Discard()).Correctness(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.InDelta(t, 0.85, got, 1e-9)

	m.reply = func(string) (string, error) { return "no idea", nil }
	_, err = NewJudge(m, logging.Discard()).Correctness(context.Background(), "a", "b")
	assert.Error(t, err)
}

func TestJudgeFaithfulness(t *testing.T) {
	m := &scriptedModel{reply: func(p string) (string, error) {
		switch {
		case strings.HasPrefix(p, "Extract every factual claim"):
			return "```json\n[\"ML learns from data\", \"ML was invented in 1492\"]\n```", nil
		case strings.Contains(p, "1492"):
			return "No", nil
		default:
			return "Yes", nil
		}
	}}
	j := NewJudge(m, logging.Discard())

	got, err := j.Faithfulness(context.Background(), "answer", []string{"ctx"})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-9)
	assert.Equal(t, 3, m.calls)

	got, err = j.Faithfulness(context.Background(), "answer", nil)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestJudgeFaithfulnessWithoutClaims(t *testing.T) {
	m := &scriptedModel{reply: func(string) (string, error) { return "[]", nil }}
	got, err := NewJudge(m, logging.Discard()).Faithfulness(context.Background(), "ok", []string{"ctx"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestJudgeFaithfulnessEmptyAnswer(t *testing.T) {
	m := &scriptedModel{reply: func(string) (string, error) { return "[]", nil }}
	got, err := NewJudge(m, logging.Discard()).Faithfulness(context.Background(), "", []string{"ctx"})
	require.NoError(t, err)
	assert.Zero(t, got)
	assert.Zero(t, m.calls)
}

func TestJudgeContextualRelevancy(t *testing.T) {
	m := &scriptedModel{reply: func(p string) (string, error) {
		if strings.Contains(p, "geometry") {
			return "yes", nil
		}
		return "no", nil
	}}
	got, err := NewJudge(m, logging.Discard()).ContextualRelevancy(context.Background(), "q",
		[]string{"geometry of the instance space", "unrelated", "also unrelated", "geometry again"})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-9)
}

func TestParseListFallsBackToLines(t *testing.T) {
	assert.Equal(t, []string{"first claim", "second claim"}, parseList("1. first claim\n- second claim\n"))
}

func TestRunnerScoresCases(t *testing.T) {
	ds := &Dataset{Cases: []Case{{Input: "q1", ExpectedOutput: "linear models fit data"}}}
	chain := stubChain{answers: map[string]service.Answer{
		"q1": {
			Text:    "linear models fit data",
			Context: domain.ParsedContext{Texts: []domain.Document{{Content: "linear models"}}, Images: []string{"aGk="}},
		},
	}}
	judge := NewJudge(&scriptedModel{reply: func(p string) (string, error) {
		switch {
		case strings.HasPrefix(p, "You are grading"):
			return "0.9", nil
		case strings.HasPrefix(p, "Extract every factual claim"):
			return `["linear models fit data"]`, nil
		default:
			return "yes", nil
		}
	}}, logging.Discard())

	r := NewRunner(chain, judge, 0, logging.Discard())
	assert.Equal(t, DefaultThreshold, r.Threshold())

	results := r.Run(context.Background(), ds)
	require.Len(t, results, 1)
	res := results[0]
	assert.False(t, res.Failed)
	assert.Equal(t, []string{"linear models"}, res.Contexts)
	assert.Equal(t, 1, res.Images)
	assert.InDelta(t, 1.0, res.Lexical, 1e-9)
	assert.InDelta(t, 1.0, res.TFIDF, 1e-9)
	assert.InDelta(t, 0.9, res.Correctness, 1e-9)
	assert.Equal(t, 1.0, res.Faithfulness)
	assert.Equal(t, 1.0, res.Relevancy)
	assert.True(t, res.Passed(r.Threshold()))
}

func TestRunnerRecordsGenerationFailure(t *testing.T) {
	ds := &Dataset{Cases: []Case{{Input: "q", ExpectedOutput: "e"}}}
	judge := &scriptedModel{reply: func(string) (string, error) { return "yes", nil }}
	r := NewRunner(stubChain{err: errors.New("generate: boom")}, NewJudge(judge, logging.Discard()), 0.7, logging.Discard())

	results := r.Run(context.Background(), ds)
	require.Len(t, results, 1)
	assert.True(t, results[0].Failed)
	assert.Equal(t, "Error during generation: generate: boom", results[0].ActualOutput)
	assert.Empty(t, results[0].Contexts)
	assert.False(t, results[0].Passed(0.7))
	assert.Zero(t, judge.calls)
}

func TestRunnerWithoutJudge(t *testing.T) {
	ds := &Dataset{Cases: []Case{{Input: "q", ExpectedOutput: "e"}}}
	chain := stubChain{answers: map[string]service.Answer{"q": {Text: "e"}}}
	results := NewRunner(chain, nil, 0.7, logging.Discard()).Run(context.Background(), ds)
	require.Len(t, results, 1)
	assert.False(t, results[0].Judged)
	assert.False(t, results[0].Passed(0.7))
}

func TestWriteReport(t *testing.T) {
	results := []Result{
		{Case: Case{Input: "What is machine learning?"}, Latency: 1500 * time.Millisecond, Judged: true, Correctness: 0.9, Faithfulness: 0.8, Relevancy: 1, Lexical: 0.4},
		{Case: Case{Input: "Explain Linear models."}, Latency: 500 * time.Millisecond, Failed: true},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, results, 0.7))

	out := buf.String()
	assert.Contains(t, out, "CORRECTNESS")
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "2 cases, 1 passed, 1 failed generation, mean latency 1s")
}
