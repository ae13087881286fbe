package main

import (
	"github.com/spf13/cobra"

	"github.com/cognicore/hitflop/internal/mcp"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the dashboard queries as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := a.dashboard(cmd.Context())
			if err != nil {
				return err
			}
			defer dash.Close()

			a.logger.Info().Str("data_dir", a.dataDir).Msg("serving MCP on stdio")
			return mcp.ServeStdio(mcp.NewServer(mcp.ServerConfig{Dashboard: dash, Version: version}))
		},
	}
}
