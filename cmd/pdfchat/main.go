package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"pdfchat/internal/app"
	"pdfchat/internal/config"
	"pdfchat/internal/logging"
	"pdfchat/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var timeout time.Duration
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ./config.yaml or ~/.config/pdfchat/config.yaml if not provided)")
	flag.DurationVar(&timeout, "timeout", 3*time.Minute, "Upper bound for answering one question (0 disables)")
	flag.Parse()

	cfg, err := config.LoadFrom(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Initialization Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	// The terminal UI owns stdout.
	if cfg.Logging.File == "" {
		cfg.Logging.File = "logs/pdfchat.log"
	}
	logger := logging.New(cfg.Logging)

	err = app.Run(context.Background(), cfg, logger, func(_ context.Context, a *app.App) error {
		m := tui.New(a.Chain, "Multimodal RAG Chat with PDF", timeout)
		_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	})
	if err != nil {
		logger.Error().Err(err).Msg("pdfchat stopped with error")
		if errors.Is(err, app.ErrInit) {
			fmt.Fprintf(os.Stderr, "Initialization Error: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
