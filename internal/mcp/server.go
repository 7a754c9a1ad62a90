// Package mcp provides an MCP (Model Context Protocol) server for devac.
// This allows AI agents to run federation-hub queries through MCP tools
// instead of the devac CLI.
package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/anthropics/devac/internal/config"
	"github.com/anthropics/devac/internal/devac/hub"
)

const hubFileName = "hub.db"

// Server wraps the MCP server with devac-specific functionality.
type Server struct {
	mcpServer    *server.MCPServer
	hub          *hub.Hub
	devacDir     string
	projectRoot  string
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration.
type Config struct {
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
}

// DefaultTools is the default set of tools to expose.
var DefaultTools = []string{"devac_query", "devac_affected", "devac_diagnostics"}

// AllTools lists all available tools.
var AllTools = DefaultTools

// New creates a new MCP server backed by the federation hub at
// <workspace>/.devac/hub.db, registering the repo rooted at projectRoot if
// it isn't already known to the hub.
func New(cfg Config) (*Server, error) {
	devacDir, err := config.FindConfigDir(".")
	if err != nil {
		return nil, fmt.Errorf("devac not initialized: run 'devac init && devac sync' first")
	}
	projectRoot := filepath.Dir(devacDir)

	h, err := hub.Open(filepath.Join(devacDir, hubFileName), hub.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open hub: %w", err)
	}
	if _, err := h.RegisterRepo(projectRoot); err != nil {
		h.Close()
		return nil, fmt.Errorf("failed to register repo with hub: %w", err)
	}

	mcpServer := server.NewMCPServer(
		"devac",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		hub:          h,
		devacDir:     devacDir,
		projectRoot:  projectRoot,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = DefaultTools
	}

	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			h.Close()
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

func (s *Server) registerTool(name string) error {
	switch name {
	case "devac_query":
		return s.registerQueryTool()
	case "devac_affected":
		return s.registerAffectedTool()
	case "devac_diagnostics":
		return s.registerDiagnosticsTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// ServeStdio starts the server using stdio transport.
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			fmt.Fprintf(os.Stderr, "devac serve: timeout after %v of inactivity\n", s.timeout)
			os.Exit(0)
		}
	}
}

func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// Close closes the server and its resources.
func (s *Server) Close() error {
	if s.hub != nil {
		return s.hub.Close()
	}
	return nil
}

// ListTools returns the list of registered tools.
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// toolSchemaRegistry holds the schema definitions for all tools. These
// mirror the mcp.NewTool() definitions in the register*Tool() functions.
var toolSchemaRegistry = map[string]ToolSchema{
	"devac_query": {
		Name:        "devac_query",
		Description: "Run a SQL query against the federation hub's unqualified nodes/edges/external_refs/effects view across every registered, active package.",
		Parameters: []ParameterSchema{
			{Name: "sql", Type: "string", Description: "SQL query text", Required: true},
		},
	},
	"devac_affected": {
		Name:        "devac_affected",
		Description: "Return the active registered repos (the entities' own included) whose seeds hold an edge pointing directly at one of a set of entity IDs; external references and transitive dependents are not traced.",
		Parameters: []ParameterSchema{
			{Name: "entity_ids", Type: "string", Description: "Comma-separated entity IDs", Required: true},
		},
	},
	"devac_diagnostics": {
		Name:        "devac_diagnostics",
		Description: "List unified diagnostics pushed to the hub, optionally filtered by repo, source, or severity.",
		Parameters: []ParameterSchema{
			{Name: "repo_id", Type: "string", Description: "Filter to one repo ID"},
			{Name: "source", Type: "string", Description: "Filter to one diagnostic source"},
			{Name: "severity", Type: "string", Description: "Filter to one severity: critical, error, warning, note, suggestion"},
		},
	},
}

// GetToolSchemas returns schemas for all registered tools.
func (s *Server) GetToolSchemas() []ToolSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schemas := make([]ToolSchema, 0, len(s.tools))
	for name := range s.tools {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments. Returns
// the JSON result string or an error.
func (s *Server) CallTool(name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s (run 'devac serve --list-tools' to see available tools)", name)
	}

	switch name {
	case "devac_query":
		sqlText, _ := args["sql"].(string)
		if sqlText == "" {
			return "", fmt.Errorf("sql parameter is required")
		}
		return s.executeQuery(sqlText)

	case "devac_affected":
		entityIDs, _ := args["entity_ids"].(string)
		if entityIDs == "" {
			return "", fmt.Errorf("entity_ids parameter is required")
		}
		return s.executeAffected(entityIDs)

	case "devac_diagnostics":
		repoID, _ := args["repo_id"].(string)
		source, _ := args["source"].(string)
		severity, _ := args["severity"].(string)
		return s.executeDiagnostics(repoID, source, severity)

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

func toJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshaling result: %w", err)
	}
	return string(b), nil
}
