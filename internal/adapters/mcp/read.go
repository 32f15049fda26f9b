package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"cortexmap/internal/application"
	"cortexmap/internal/application/commands"
	"cortexmap/internal/domain"
	"cortexmap/internal/ports"
)

// RegisterReadTools adds the tools that never change the graph or history.
func RegisterReadTools(s *server.MCPServer, graph ports.GraphStore, versioner ports.Versioner) {
	s.AddTool(readGraphTool(), readGraphHandler(graph))
	s.AddTool(listCommitsTool(), listCommitsHandler(versioner))
	s.AddTool(peekCommitTool(), peekCommitHandler(versioner))
}

// --- read_graph ---

func readGraphTool() mcp.Tool {
	return mcp.NewTool("read_graph",
		mcp.WithDescription("Read the live reasoning graph. Returns JSON with nodes (id, text, role, metadata, parent_id) and edges (id, source, target, edge_type, metadata)."),
	)
}

func readGraphHandler(graph ports.GraphStore) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewReadStateCommand(graph).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return stateResult(result.State)
	}
}

// --- list_commits ---

func listCommitsTool() mcp.Tool {
	return mcp.NewTool("list_commits",
		mcp.WithDescription("List the commit history, newest first. Each line shows the commit ID, timestamp, agent and message."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of commits to return. Omit for all."),
		),
	)
}

func listCommitsHandler(versioner ports.Versioner) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 0)

		commits, err := commands.NewListCommitsCommand(versioner).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		if len(commits) == 0 {
			return mcp.NewToolResultText("No commits yet."), nil
		}
		if limit > 0 && limit < len(commits) {
			commits = commits[:limit]
		}

		var sb strings.Builder
		for _, c := range commits {
			sb.WriteString(formatCommit(c))
			sb.WriteByte('\n')
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- peek_commit ---

func peekCommitTool() mcp.Tool {
	return mcp.NewTool("peek_commit",
		mcp.WithDescription("Read the graph as it was at a commit, without changing the live graph."),
		mcp.WithString("commit_id",
			mcp.Description("ID of the commit to inspect"),
			mcp.Required(),
		),
	)
}

func peekCommitHandler(versioner ports.Versioner) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		commitID := req.GetString("commit_id", "")

		result, err := commands.NewPeekCommitCommand(versioner, commitID).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return stateResult(result.State)
	}
}

// --- helpers ---

// toolError reports err as a tool-level failure prefixed with its category,
// so agents can tell a missing commit from an unavailable database
func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %s", application.Category(err), err.Error())), nil
}

func stateResult(state domain.GraphState) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return toolError(err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func formatCommit(c domain.Commit) string {
	return fmt.Sprintf("%s  %s  %s  %s", c.ID, c.Timestamp.Local().Format(time.DateTime), c.AgentID, c.Message)
}
