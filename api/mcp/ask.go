package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

var (
	askToolName    = "ask"
	askDescription = "Ask a question against the document knowledge base. Returns an answer grounded in the stored documents with the source chunks used, or states that no relevant documents were found."
)

// AskInput represents the input arguments for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the stored documents"`
}

// AskOutput represents the output of the ask tool.
type AskOutput struct {
	Question string         `json:"question"`
	Answer   string         `json:"answer"`
	Grounded bool           `json:"grounded"`
	Sources  []SearchResult `json:"sources,omitempty"`
}

// handleAsk processes an ask request.
func (s *Server) handleAsk(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	logger := s.config.Logger

	logger.Debug("MCP ask request",
		zap.String("question", input.Question),
	)

	record, err := s.config.Asker.Ask(ctx, input.Question)
	if err != nil {
		logger.Error("failed to answer question", zap.Error(err))
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to answer question: %v", err)},
			},
		}, AskOutput{}, nil
	}

	sources := make([]SearchResult, 0, len(record.Sources))
	for _, r := range record.Sources {
		sources = append(sources, buildSearchResult(r))
	}

	output := AskOutput{
		Question: record.Question,
		Answer:   record.Answer,
		Grounded: record.Grounded,
		Sources:  sources,
	}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal ask output", zap.Error(err))
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize answer: %v", err)},
			},
		}, AskOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
