package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pdfchat/internal/app"
	"pdfchat/internal/config"
	"pdfchat/internal/logging"
	"pdfchat/internal/server"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", "", "Listen address, overrides server.addr")
	flag.Parse()

	cfg, err := config.LoadFrom(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Initialization Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	logger := logging.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = app.Run(ctx, cfg, logger, func(ctx context.Context, a *app.App) error {
		return server.New(a.Chain, cfg.Server, version, logger).Run(ctx)
	})
	stop()
	if err != nil {
		logger.Error().Err(err).Msg("Server stopped with error")
		os.Exit(1)
	}
}
