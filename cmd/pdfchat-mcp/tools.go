package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func askDocumentTool() mcp.Tool {
	return mcp.NewTool("ask_document",
		mcp.WithDescription("Answer a question about the indexed PDF using its text and images as context"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Question about the document"),
		),
		mcp.WithBoolean("include_context",
			mcp.Description("Also return the retrieved text passages (default: false)"),
		),
	)
}

func retrieveContextTool() mcp.Tool {
	return mcp.NewTool("retrieve_context",
		mcp.WithDescription("Return the text passages and images retrieved for a question, without generating an answer"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Question used as the retrieval query"),
		),
		mcp.WithBoolean("include_images",
			mcp.Description("Attach retrieved images as image content (default: true)"),
		),
	)
}
