package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/innocurve/inoclone/internal/pipeline"
	"github.com/innocurve/inoclone/internal/retrieval"
	"github.com/innocurve/inoclone/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store   *storage.Store
	Chat    ChatService
	OwnerID int64
}

// NewMCPServer creates an MCP server exposing the clone over stdio: ask it a
// question, search its knowledge pool, or read the owner profile directly.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"inoclone",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("inoclone — digital business card backend: chat with the owner's AI clone and query their profile and knowledge base."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("ask_clone",
			mcp.WithDescription("Ask the owner's AI clone a question and get its answer."),
			mcp.WithString("question", mcp.Description("Question for the clone"), mcp.Required()),
		),
		mcpAskClone(deps),
	)

	s.AddTool(
		mcp.NewTool("search_knowledge",
			mcp.WithDescription("Keyword-search the knowledge pool and return scored chunks."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 5)")),
		),
		mcpSearchKnowledge(deps),
	)

	s.AddTool(
		mcp.NewTool("get_profile",
			mcp.WithDescription("Return the owner's profile, experiences and projects as JSON."),
		),
		mcpGetProfile(deps),
	)

	return s
}

func mcpAskClone(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcpError("question is required"), nil
		}

		turns := []pipeline.Turn{{Role: "user", Content: question}}
		reply, _, err := deps.Chat.Chat(ctx, deps.OwnerID, turns)
		if err != nil {
			return mcpError(fmt.Sprintf("chat failed: %v", err)), nil
		}
		return mcpText(reply), nil
	}
}

func mcpSearchKnowledge(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		limit := req.GetInt("limit", 5)
		if limit <= 0 {
			limit = 5
		}
		if limit > 50 {
			limit = 50
		}

		tokens := retrieval.Tokenize(query)
		if len(tokens) == 0 {
			return mcpText("[]"), nil
		}

		chunks, err := deps.Store.SearchChunks(tokens)
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}

		scored := retrieval.Score(chunks, tokens)
		if len(scored) > limit {
			scored = scored[:limit]
		}

		type chunkResult struct {
			ID       string   `json:"id"`
			Content  string   `json:"content"`
			Keywords []string `json:"keywords,omitempty"`
			Source   string   `json:"source,omitempty"`
			Score    int      `json:"score"`
		}
		results := make([]chunkResult, len(scored))
		for i, sc := range scored {
			results[i] = chunkResult{
				ID:       sc.Chunk.ID,
				Content:  sc.Chunk.Content,
				Keywords: sc.Chunk.Keywords,
				Source:   sc.Chunk.Source,
				Score:    sc.Score,
			}
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetProfile(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		owner, err := deps.Store.GetOwner(deps.OwnerID)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load owner: %v", err)), nil
		}
		experiences, err := deps.Store.ListExperiences(deps.OwnerID)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load experiences: %v", err)), nil
		}
		projects, err := deps.Store.ListProjects(deps.OwnerID)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load projects: %v", err)), nil
		}

		profile := map[string]any{
			"owner":       owner,
			"experiences": experiences,
			"projects":    projects,
		}
		b, err := json.Marshal(profile)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal profile: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
