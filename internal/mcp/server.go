// Package mcp exposes command verification as MCP tools over stdio, so
// agents that speak the protocol can verify, gate, and register
// commands without shelling out to the CLI.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/cmdwatch/internal/audit"
	"github.com/ppiankov/cmdwatch/internal/history"
	"github.com/ppiankov/cmdwatch/internal/registry"
)

// Config holds MCP server configuration.
type Config struct {
	RegistryPath string
	AuditLogPath string
	HistoryPath  string
}

// Server wraps the MCP SDK server around the verification pipeline.
// The registry is served from a hot-reloading cache, so entries added
// while the server runs are picked up without a restart.
type Server struct {
	mcpServer    *mcpsdk.Server
	cache        *registry.Cache
	auditLog     *audit.Log
	store        *history.Store
	registryPath string
}

// New creates an MCP server with the registry cache and tools wired up.
func New(cfg Config) (*Server, error) {
	cache := registry.NewCache(cfg.RegistryPath)

	var auditLog *audit.Log
	if cfg.AuditLogPath != "" {
		var err error
		auditLog, err = audit.Open(cfg.AuditLogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
	}

	var store *history.Store
	if cfg.HistoryPath != "" {
		var err error
		store, err = history.Open(cfg.HistoryPath)
		if err != nil {
			if auditLog != nil {
				auditLog.Close()
			}
			return nil, fmt.Errorf("failed to open history store: %w", err)
		}
	}

	s := &Server{
		cache:        cache,
		auditLog:     auditLog,
		store:        store,
		registryPath: cache.Path(),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "cmdwatch",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport and the registry file
// watcher beside it. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.cache.Watch(watchCtx)

	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close closes the audit log and history store if configured.
func (s *Server) Close() error {
	var firstErr error
	if s.auditLog != nil {
		firstErr = s.auditLog.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// registerTools adds all cmdwatch tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "cmdwatch_verify",
		Description: "Verify a shell command line against the command registry. Returns the full per-command analysis without recording a decision.",
	}, s.handleVerify)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "cmdwatch_decide",
		Description: "Decide whether a shell command line may auto-execute (allow/ask/deny). The decision is recorded in the audit log and history.",
	}, s.handleDecide)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "cmdwatch_add",
		Description: "Add a command to the registry with a permission and a risk assessment. Fails when the command is already registered.",
	}, s.handleAdd)
}
