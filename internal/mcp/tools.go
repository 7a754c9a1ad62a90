package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/anthropics/devac/internal/devac/hub"
)

// --- devac_query ---

func (s *Server) registerQueryTool() error {
	tool := mcp.NewTool("devac_query",
		mcp.WithDescription("Run a SQL query against the federation hub's unqualified nodes/edges/external_refs/effects view across every registered, active package."),
		mcp.WithString("sql",
			mcp.Required(),
			mcp.Description("SQL query text"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleQuery)
	return nil
}

func (s *Server) handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	sqlText, ok := args["sql"].(string)
	if !ok || sqlText == "" {
		return mcp.NewToolResultError("sql parameter is required"), nil
	}

	result, err := s.executeQuery(sqlText)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) executeQuery(sqlText string) (string, error) {
	result, err := s.hub.Query(sqlText)
	if err != nil {
		return "", err
	}
	return toJSON(result)
}

// --- devac_affected ---

func (s *Server) registerAffectedTool() error {
	tool := mcp.NewTool("devac_affected",
		mcp.WithDescription("Return the active registered repos (the entities' own included) whose seeds hold an edge pointing directly at one of a set of entity IDs; external references and transitive dependents are not traced."),
		mcp.WithString("entity_ids",
			mcp.Required(),
			mcp.Description("Comma-separated entity IDs"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleAffected)
	return nil
}

func (s *Server) handleAffected(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	entityIDs, ok := args["entity_ids"].(string)
	if !ok || entityIDs == "" {
		return mcp.NewToolResultError("entity_ids parameter is required"), nil
	}

	result, err := s.executeAffected(entityIDs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) executeAffected(entityIDs string) (string, error) {
	ids := splitTrim(entityIDs)
	result, err := s.hub.GetAffectedRepos(ids)
	if err != nil {
		return "", err
	}
	return toJSON(result)
}

// --- devac_diagnostics ---

func (s *Server) registerDiagnosticsTool() error {
	tool := mcp.NewTool("devac_diagnostics",
		mcp.WithDescription("List unified diagnostics pushed to the hub, optionally filtered by repo, source, or severity."),
		mcp.WithString("repo_id",
			mcp.Description("Filter to one repo ID"),
		),
		mcp.WithString("source",
			mcp.Description("Filter to one diagnostic source"),
		),
		mcp.WithString("severity",
			mcp.Description("Filter to one severity: critical, error, warning, note, suggestion"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleDiagnostics)
	return nil
}

func (s *Server) handleDiagnostics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	repoID, _ := args["repo_id"].(string)
	source, _ := args["source"].(string)
	severity, _ := args["severity"].(string)

	result, err := s.executeDiagnostics(repoID, source, severity)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) executeDiagnostics(repoID, source, severity string) (string, error) {
	diags, err := s.hub.GetValidationErrors(hub.DiagnosticFilter{
		RepoID:   repoID,
		Source:   source,
		Severity: hub.Severity(severity),
	})
	if err != nil {
		return "", err
	}
	return toJSON(map[string]interface{}{
		"count":       len(diags),
		"diagnostics": diags,
	})
}

func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
