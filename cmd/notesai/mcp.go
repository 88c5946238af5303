package main

import (
	"github.com/spf13/cobra"

	"github.com/comigor/notesai/internal/logger"
	"github.com/comigor/notesai/internal/mcpserver"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the AI tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.L.Info("serving MCP on stdio", "baseURL", a.cfg.BaseURL)
			return mcpserver.New(a.client, version).ServeStdio()
		},
	}
}
