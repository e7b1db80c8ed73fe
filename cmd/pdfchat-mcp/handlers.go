package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"pdfchat/internal/domain"
	"pdfchat/internal/prompt"
	"pdfchat/internal/service"
)

// Chain is what the tools need from the chain manager.
type Chain interface {
	Ask(ctx context.Context, question string) (service.Answer, error)
	RetrieveDocuments(ctx context.Context, question string) (domain.ParsedContext, error)
}

func handleAskDocument(chain Chain, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil || strings.TrimSpace(question) == "" {
			return toolError("Error: question parameter is required"), nil
		}

		ans, err := chain.Ask(ctx, strings.TrimSpace(question))
		if err != nil {
			logger.Error().Err(err).Str("question", question).Msg("ask_document failed")
			return toolError(fmt.Sprintf("Error: %v", err)), nil
		}

		content := []mcp.Content{mcp.NewTextContent(ans.Text)}
		if request.GetBool("include_context", false) {
			content = append(content, mcp.NewTextContent(formatContext(ans.Context)))
		}
		return &mcp.CallToolResult{Content: content}, nil
	}
}

func handleRetrieveContext(chain Chain, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil || strings.TrimSpace(question) == "" {
			return toolError("Error: question parameter is required"), nil
		}

		pc, err := chain.RetrieveDocuments(ctx, strings.TrimSpace(question))
		if err != nil {
			logger.Error().Err(err).Str("question", question).Msg("retrieve_context failed")
			return toolError(fmt.Sprintf("Error: %v", err)), nil
		}

		content := []mcp.Content{mcp.NewTextContent(formatContext(pc))}
		if request.GetBool("include_images", true) {
			for _, img := range pc.Images {
				content = append(content, mcp.NewImageContent(img, prompt.ImageMIMEType))
			}
		}
		return &mcp.CallToolResult{Content: content}, nil
	}
}

func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(msg)},
		IsError: true,
	}
}

// formatContext renders retrieved passages as markdown.
func formatContext(pc domain.ParsedContext) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Retrieved Context\n\n%d text passages, %d images\n", len(pc.Texts), len(pc.Images))
	for i, d := range pc.Texts {
		fmt.Fprintf(&sb, "\n## Text %d\n\n%s\n", i+1, strings.TrimSpace(d.Content))
	}
	return sb.String()
}
