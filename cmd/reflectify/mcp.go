package main

import (
	"github.com/spf13/cobra"

	"github.com/reflectify/reflectify/internal/mcp"
	"github.com/reflectify/reflectify/internal/services"
)

func newMCPCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the analyze_reflection tool over MCP stdio",
		Long: `Run an MCP server on stdin/stdout exposing the analyze_reflection tool.

Logs go to stderr so the protocol stream stays clean. Register the command in
an MCP client, for example:

  {"command": "reflectify", "args": ["mcp"]}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			reg, err := services.Build(cmd.Context(), services.Options{Config: cfg, Logger: logger})
			if err != nil {
				return err
			}
			defer reg.Close()

			srv, err := mcp.NewServer(&mcp.Config{
				Name:    "reflectify",
				Version: version,
				Logger:  logger.Named("mcp"),
			}, reg.Engine())
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}
}
