package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	cmdwatchmcp "github.com/ppiankov/cmdwatch/internal/mcp"
)

var mcpRegistry string

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpRegistry, "registry", "", "Path to registry JSON (overrides config)")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long: "Runs cmdwatch as an MCP (Model Context Protocol) server over stdio.\n" +
		"Exposes the tools: cmdwatch_verify, cmdwatch_decide, cmdwatch_add.\n" +
		"The registry is hot-reloaded when the backing file changes.",
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registryPath := mcpRegistry
	if registryPath == "" {
		registryPath = cfg.RegistryPath
	}

	srv, err := cmdwatchmcp.New(cmdwatchmcp.Config{
		RegistryPath: registryPath,
		AuditLogPath: cfg.AuditLogPath,
		HistoryPath:  cfg.HistoryDBPath,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	fmt.Fprintln(os.Stderr, "cmdwatch MCP server running on stdio")
	fmt.Fprintf(os.Stderr, "Registry: %s\n\n", registryPath)

	return srv.Run(ctx)
}
