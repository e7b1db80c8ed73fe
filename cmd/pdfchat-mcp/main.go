package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"pdfchat/internal/app"
	"pdfchat/internal/config"
	"pdfchat/internal/logging"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", os.Getenv("PDFCHAT_CONFIG"), "Path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadFrom(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	// stdout carries the MCP protocol.
	if cfg.Logging.File == "" {
		cfg.Logging.File = "logs/pdfchat-mcp.log"
	}
	logger := logging.New(cfg.Logging)

	err = app.Run(context.Background(), cfg, logger, func(_ context.Context, a *app.App) error {
		mcpServer := server.NewMCPServer(
			"pdfchat",
			version,
			server.WithToolCapabilities(true),
		)
		mcpServer.AddTool(askDocumentTool(), handleAskDocument(a.Chain, logger))
		mcpServer.AddTool(retrieveContextTool(), handleRetrieveContext(a.Chain, logger))
		return server.ServeStdio(mcpServer)
	})
	if err != nil {
		logger.Error().Err(err).Msg("MCP server failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
