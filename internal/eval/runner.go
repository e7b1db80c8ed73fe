// Package eval scores the chain against a golden dataset of questions and
// reference answers.
package eval

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ternarybob/arbor"

	"pdfchat/internal/service"
)

// DefaultThreshold is the minimum passing score for every judged metric.
const DefaultThreshold = 0.7

// Chain is the part of the chain manager the runner drives.
type Chain interface {
	Ask(ctx context.Context, question string) (service.Answer, error)
}

// Result is the outcome of a single case.
type Result struct {
	Case         Case
	ActualOutput string
	Contexts     []string
	Images       int
	Latency      time.Duration
	Failed       bool

	Lexical      float64
	TFIDF        float64
	Correctness  float64
	Faithfulness float64
	Relevancy    float64
	Judged       bool
	JudgeErr     error
}

// Passed reports whether every judged metric meets threshold.
func (r Result) Passed(threshold float64) bool {
	if r.Failed || !r.Judged || r.JudgeErr != nil {
		return false
	}
	return r.Correctness >= threshold && r.Faithfulness >= threshold && r.Relevancy >= threshold
}

type Runner struct {
	chain     Chain
	judge     *Judge
	threshold float64
	logger    arbor.ILogger
}

// NewRunner creates a runner. A nil judge limits scoring to lexical overlap.
func NewRunner(chain Chain, judge *Judge, threshold float64, logger arbor.ILogger) *Runner {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Runner{chain: chain, judge: judge, threshold: threshold, logger: logger}
}

func (r *Runner) Threshold() float64 { return r.threshold }

// Run answers and scores every case in order. A failed question is recorded
// with an error answer and no context rather than aborting the run.
func (r *Runner) Run(ctx context.Context, ds *Dataset) []Result {
	refs := make([]string, len(ds.Cases))
	for i, c := range ds.Cases {
		refs[i] = c.ExpectedOutput
	}
	tf := FitTFIDF(refs)

	results := make([]Result, 0, len(ds.Cases))
	for i, c := range ds.Cases {
		if ctx.Err() != nil {
			break
		}
		res := r.runCase(ctx, c, tf)
		r.logger.Info().
			Int("case", i+1).
			Str("question", c.Input).
			Dur("latency", res.Latency).
			Bool("failed", res.Failed).
			Msg("Evaluation case finished")
		results = append(results, res)
	}
	return results
}

func (r *Runner) runCase(ctx context.Context, c Case, tf *TFIDF) Result {
	res := Result{Case: c, Contexts: []string{}}

	start := time.Now()
	ans, err := r.chain.Ask(ctx, c.Input)
	res.Latency = time.Since(start)
	if err != nil {
		res.Failed = true
		res.ActualOutput = fmt.Sprintf("Error during generation: %v", err)
		return res
	}
	res.ActualOutput = ans.Text
	res.Images = len(ans.Context.Images)
	res.Contexts = ans.Context.TextContents()
	res.Lexical = LexicalOverlap(res.ActualOutput, c.ExpectedOutput)
	res.TFIDF = tf.Similarity(res.ActualOutput, c.ExpectedOutput)

	if r.judge == nil {
		return res
	}
	res.Judged = true
	if res.Correctness, err = r.judge.Correctness(ctx, res.ActualOutput, c.ExpectedOutput); err != nil {
		res.JudgeErr = fmt.Errorf("correctness: %w", err)
		return res
	}
	if res.Faithfulness, err = r.judge.Faithfulness(ctx, res.ActualOutput, res.Contexts); err != nil {
		res.JudgeErr = fmt.Errorf("faithfulness: %w", err)
		return res
	}
	if res.Relevancy, err = r.judge.ContextualRelevancy(ctx, c.Input, res.Contexts); err != nil {
		res.JudgeErr = fmt.Errorf("contextual relevancy: %w", err)
	}
	return res
}

// Summary aggregates a run.
type Summary struct {
	Cases       int
	Passed      int
	Failed      int
	MeanLatency time.Duration
	MeanLexical float64
	MeanTFIDF   float64
}

func Summarize(results []Result, threshold float64) Summary {
	s := Summary{Cases: len(results)}
	if len(results) == 0 {
		return s
	}
	var total time.Duration
	for _, r := range results {
		total += r.Latency
		s.MeanLexical += r.Lexical
		s.MeanTFIDF += r.TFIDF
		if r.Failed {
			s.Failed++
		}
		if r.Passed(threshold) {
			s.Passed++
		}
	}
	s.MeanLatency = total / time.Duration(len(results))
	s.MeanLexical /= float64(len(results))
	s.MeanTFIDF /= float64(len(results))
	return s
}

// WriteReport prints one row per case followed by the run summary.
func WriteReport(w io.Writer, results []Result, threshold float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tQUESTION\tLATENCY\tLEXICAL\tTFIDF\tCORRECTNESS\tFAITHFULNESS\tRELEVANCY\tRESULT")
	for i, r := range results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%.2f\t%s\t%s\t%s\t%s\n",
			i+1,
			shorten(r.Case.Input, 48),
			r.Latency.Round(time.Millisecond),
			r.Lexical,
			r.TFIDF,
			metric(r, r.Correctness),
			metric(r, r.Faithfulness),
			metric(r, r.Relevancy),
			verdict(r, threshold),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := Summarize(results, threshold)
	_, err := fmt.Fprintf(w, "\n%d cases, %d passed, %d failed generation, mean latency %s, mean lexical overlap %.2f, mean tf-idf similarity %.2f\n",
		s.Cases, s.Passed, s.Failed, s.MeanLatency.Round(time.Millisecond), s.MeanLexical, s.MeanTFIDF)
	if err != nil {
		return err
	}
	for i, r := range results {
		if r.JudgeErr != nil {
			if _, err := fmt.Fprintf(w, "case %d: judge error: %v\n", i+1, r.JudgeErr); err != nil {
				return err
			}
		}
	}
	return nil
}

func metric(r Result, v float64) string {
	if r.Failed || !r.Judged {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

func verdict(r Result, threshold float64) string {
	switch {
	case r.Failed:
		return "ERROR"
	case !r.Judged:
		return "-"
	case r.Passed(threshold):
		return "PASS"
	default:
		return "FAIL"
	}
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
