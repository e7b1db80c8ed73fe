// Package app wires configuration, resources and the chain manager for the
// command-line entry points.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"

	"pdfchat/internal/config"
	"pdfchat/internal/domain"
	"pdfchat/internal/loader"
	"pdfchat/internal/parser"
	"pdfchat/internal/prompt"
	"pdfchat/internal/service"
)

// ErrInit marks failures to build the app, as opposed to failures while it runs.
var ErrInit = errors.New("initialization failed")

// App owns the loaded resources and the chain manager built on them.
type App struct {
	Config *config.AppConfig
	Chain  *service.ChainManager
	loader *loader.Loader
	closed bool
}

// Build loads every resource eagerly so that configuration and artefact
// problems surface before any question is asked.
func Build(ctx context.Context, cfg *config.AppConfig, logger arbor.ILogger) (*App, error) {
	builder, err := prompt.NewBuilder(cfg.Prompt.Template)
	if err != nil {
		return nil, err
	}
	l := loader.New(cfg, logger)
	if err := l.LoadAll(ctx); err != nil {
		return nil, err
	}
	chain := service.NewChainManager(l, parser.New(logger), builder, logger)
	return &App{Config: cfg, Chain: chain, loader: l}, nil
}

// ChatModel exposes the loaded chat model, used as the default judge.
func (a *App) ChatModel(ctx context.Context) (domain.ChatModel, error) {
	m, err := a.loader.ChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("chat model: %w", err)
	}
	return m, nil
}

func (a *App) Close() error {
	a.closed = true
	return a.loader.Close()
}

// Run builds the app, calls fn and closes the app before returning, whatever
// fn returns. Commands exit only after Run has returned.
func Run(ctx context.Context, cfg *config.AppConfig, logger arbor.ILogger, fn func(context.Context, *App) error) (err error) {
	a, err := Build(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInit, err)
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("Closing resources failed")
			if err == nil {
				err = cerr
			}
		}
	}()
	return fn(ctx, a)
}
