package main

import (
	"github.com/spf13/cobra"

	"github.com/kingrea/promptlayers/internal/mcpserver"
)

func newServeMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve compose, list and validate as MCP tools on stdio",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace()
			if err != nil {
				return err
			}
			mcpserver.Version = version
			ws.Logger.Info("serving mcp on stdio")
			return mcpserver.RunStdio(cmd.Context(), mcpserver.NewServer(ws))
		},
	}
}
