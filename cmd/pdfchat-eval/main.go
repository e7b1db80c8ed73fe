package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"pdfchat/internal/app"
	"pdfchat/internal/config"
	"pdfchat/internal/domain"
	"pdfchat/internal/eval"
	"pdfchat/internal/llm"
	"pdfchat/internal/logging"
)

var errCasesFailed = errors.New("not every case passed")

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "", "Path to YAML config file")
	datasetPath := flag.String("dataset", "", "Golden dataset YAML (built-in questions when empty)")
	judgeModel := flag.String("judge-model", "", "Model used as judge (defaults to the chat model)")
	threshold := flag.Float64("threshold", eval.DefaultThreshold, "Minimum passing score per metric")
	noJudge := flag.Bool("no-judge", false, "Score lexical overlap only")
	strict := flag.Bool("strict", false, "Exit with status 2 unless every case passes")
	flag.Parse()

	cfg, err := config.LoadFrom(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Initialization Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging)

	ds := eval.DefaultDataset()
	if *datasetPath != "" {
		if ds, err = eval.LoadDataset(*datasetPath); err != nil {
			fmt.Fprintf(os.Stderr, "Initialization Error: %v\n", err)
			os.Exit(1)
		}
	}

	err = app.Run(context.Background(), cfg, logger, func(ctx context.Context, a *app.App) error {
		var judge *eval.Judge
		if !*noJudge {
			var model domain.ChatModel
			var err error
			if *judgeModel != "" {
				jcfg := cfg.LLM
				jcfg.Model = *judgeModel
				jcfg.Temperature = 0
				model, err = llm.NewChatModel(ctx, jcfg, logger)
			} else {
				model, err = a.ChatModel(ctx)
			}
			if err != nil {
				return fmt.Errorf("%w: judge: %w", app.ErrInit, err)
			}
			judge = eval.NewJudge(model, logger)
		}

		runner := eval.NewRunner(a.Chain, judge, *threshold, logger)
		results := runner.Run(ctx, ds)
		if err := eval.WriteReport(os.Stdout, results, runner.Threshold()); err != nil {
			return err
		}
		if s := eval.Summarize(results, runner.Threshold()); *strict && s.Passed < s.Cases {
			return errCasesFailed
		}
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, errCasesFailed):
		os.Exit(2)
	case errors.Is(err, app.ErrInit):
		fmt.Fprintf(os.Stderr, "Initialization Error: %v\n", err)
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
