package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/reshape/internal/config"
	"github.com/dusk-indust/reshape/internal/mcptools"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server exposing the refactoring tools",
	Long: `Starts a streamable HTTP MCP server with the apply_refactorings,
find_symbol, and list_references tools, rooted at --project-root.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8137", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(projectRoot)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := mcptools.NewRefactorService(projectRoot, cfg.ExcludeDirs, cfg.ReportDir, logger)
	fmt.Printf("reshape MCP server listening on %s (project root %s)\n", serveAddr, projectRoot)
	return mcptools.RunMCPServer(ctx, svc, serveAddr)
}
