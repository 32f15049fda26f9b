package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"cortexmap/internal/application"
	"cortexmap/internal/application/commands"
	"cortexmap/internal/domain"
	"cortexmap/internal/ports"
)

// DefaultAgentID is recorded on commits made through MCP without an agent_id
const DefaultAgentID = "mcp-agent"

// RegisterWriteTools adds the tools that change the graph or history.
func RegisterWriteTools(s *server.MCPServer, graph ports.GraphStore, versioner ports.Versioner) {
	s.AddTool(saveGraphTool(), saveGraphHandler(graph))
	s.AddTool(commitTool(), commitHandler(versioner))
	s.AddTool(restoreCommitTool(), restoreCommitHandler(versioner))
}

// --- save_graph ---

func saveGraphTool() mcp.Tool {
	return mcp.NewTool("save_graph",
		mcp.WithDescription("Replace the whole live graph. The state is a JSON object {\"nodes\": [...], \"edges\": [...]}; node roles are plan, execution, memory, evidence or reflection. Nothing is written if any node or edge is invalid."),
		mcp.WithString("state",
			mcp.Description("Complete graph state as JSON"),
			mcp.Required(),
		),
	)
}

func saveGraphHandler(graph ports.GraphStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw := req.GetString("state", "")

		var state domain.GraphState
		if err := json.Unmarshal([]byte(raw), &state); err != nil {
			return toolError(&application.ValidationError{Field: "state", Message: "invalid graph JSON: " + err.Error()})
		}

		result, err := commands.NewSaveStateCommand(graph, state).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- commit ---

func commitTool() mcp.Tool {
	return mcp.NewTool("commit",
		mcp.WithDescription("Record the current live graph in history. Returns the new commit ID."),
		mcp.WithString("message",
			mcp.Description("What changed since the last commit"),
			mcp.Required(),
		),
		mcp.WithString("agent_id",
			mcp.Description("Identifier of the agent making the commit. Defaults to "+DefaultAgentID+"."),
		),
	)
}

func commitHandler(versioner ports.Versioner) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := req.RequireString("message")
		if err != nil {
			return toolError(&application.ValidationError{Field: "message", Message: err.Error()})
		}
		agentID := req.GetString("agent_id", DefaultAgentID)

		result, err := commands.NewCreateCommitCommand(versioner, agentID, message).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.CommitID), nil
	}
}

// --- restore_commit ---

func restoreCommitTool() mcp.Tool {
	return mcp.NewTool("restore_commit",
		mcp.WithDescription("Replace the live graph with the state recorded at a commit. History is not changed; commit afterwards to record the restored state."),
		mcp.WithString("commit_id",
			mcp.Description("ID of the commit to restore"),
			mcp.Required(),
		),
	)
}

func restoreCommitHandler(versioner ports.Versioner) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		commitID := req.GetString("commit_id", "")

		result, err := commands.NewRestoreCommitCommand(versioner, commitID).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}
