package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/anthropics/devac/internal/config"
	"github.com/anthropics/devac/internal/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing the federation hub over stdio",
	Long: `serve starts an MCP (Model Context Protocol) server so an AI agent can run
hub queries, affected-repo traces, and diagnostics listings as tool calls
instead of spawning 'devac query' once per question.

Available Tools:
  devac_query        Run a SQL query across every registered package
  devac_affected      Trace incoming edges into a set of entity IDs
  devac_diagnostics   List unified diagnostics

Examples:
  devac serve --mcp
  devac serve --mcp --tools query,affected
  devac serve --mcp --timeout 30m
  devac serve --status
  devac serve --stop
  devac serve --list-tools`,
	RunE: runServe,
}

var (
	serveMCP       bool
	serveTools     string
	serveTimeout   string
	serveStatus    bool
	serveStop      bool
	serveListTools bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "Start MCP server (stdio transport)")
	serveCmd.Flags().StringVar(&serveTools, "tools", "", "Comma-separated list of tools to expose (default: query,affected,diagnostics)")
	serveCmd.Flags().StringVar(&serveTimeout, "timeout", "30m", "Inactivity timeout (0 for no timeout)")
	serveCmd.Flags().BoolVar(&serveStatus, "status", false, "Check if server is running")
	serveCmd.Flags().BoolVar(&serveStop, "stop", false, "Stop running server")
	serveCmd.Flags().BoolVar(&serveListTools, "list-tools", false, "List available tools")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveListTools {
		fmt.Fprintln(cmd.OutOrStdout(), "Available MCP tools:")
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), "  devac_query        Run a SQL query across every registered package")
		fmt.Fprintln(cmd.OutOrStdout(), "  devac_affected     Trace incoming edges into a set of entity IDs")
		fmt.Fprintln(cmd.OutOrStdout(), "  devac_diagnostics  List unified diagnostics")
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), "Default set: query, affected, diagnostics")
		return nil
	}

	if serveStatus {
		return checkServerStatus(cmd)
	}

	if serveStop {
		return stopServer(cmd)
	}

	if !serveMCP {
		return fmt.Errorf("use --mcp to start the MCP server, or --help for usage")
	}

	timeout, err := parseDuration(serveTimeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	var tools []string
	if serveTools != "" {
		for _, t := range strings.Split(serveTools, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				if !strings.HasPrefix(t, "devac_") {
					t = "devac_" + t
				}
				tools = append(tools, t)
			}
		}
	}

	cfg := mcp.Config{
		Tools:   tools,
		Timeout: timeout,
	}

	srv, err := mcp.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer srv.Close()

	if err := writePIDFile(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not write PID file: %v\n", err)
	}
	defer removePIDFile()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintf(cmd.ErrOrStderr(), "\ndevac serve: shutting down\n")
		srv.Close()
		removePIDFile()
		os.Exit(0)
	}()

	fmt.Fprintf(cmd.ErrOrStderr(), "devac serve: starting MCP server\n")
	fmt.Fprintf(cmd.ErrOrStderr(), "devac serve: tools: %v\n", srv.ListTools())
	if timeout > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "devac serve: timeout: %v\n", timeout)
	}

	return srv.ServeStdio()
}

func parseDuration(s string) (time.Duration, error) {
	if s == "0" || s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func getPIDFilePath() (string, error) {
	devacDir, err := config.FindConfigDir(".")
	if err != nil {
		return "", err
	}
	return filepath.Join(devacDir, "serve.pid"), nil
}

func writePIDFile() error {
	pidPath, err := getPIDFilePath()
	if err != nil {
		return err
	}
	return os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func removePIDFile() {
	pidPath, err := getPIDFilePath()
	if err != nil {
		return
	}
	os.Remove(pidPath)
}

func checkServerStatus(cmd *cobra.Command) error {
	pidPath, err := getPIDFilePath()
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Status: not running (devac not initialized)")
		return nil
	}

	data, err := os.ReadFile(pidPath)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Status: not running")
		return nil
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Status: not running (invalid PID file)")
		return nil
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Status: not running")
		removePIDFile()
		return nil
	}

	err = process.Signal(syscall.Signal(0))
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Status: not running (stale PID file)")
		removePIDFile()
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Status: running (PID %d)\n", pid)
	return nil
}

func stopServer(cmd *cobra.Command) error {
	pidPath, err := getPIDFilePath()
	if err != nil {
		return fmt.Errorf("devac not initialized")
	}

	data, err := os.ReadFile(pidPath)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No server running")
		return nil
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		removePIDFile()
		return fmt.Errorf("invalid PID file")
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		removePIDFile()
		fmt.Fprintln(cmd.OutOrStdout(), "No server running")
		return nil
	}

	err = process.Signal(syscall.SIGTERM)
	if err != nil {
		removePIDFile()
		fmt.Fprintln(cmd.OutOrStdout(), "Server already stopped")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Stopped server (PID %d)\n", pid)
	return nil
}
