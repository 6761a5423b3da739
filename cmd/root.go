// Package cmd provides the snowmcp CLI commands.
//
// Commands:
//   - serve: MCP server on stdio transport (also the default command)
//   - databases: list accessible databases, a quick connectivity smoke test
//   - test-connection: probe the Snowflake connection and exit
//   - version: show version information
//
// All commands resolve configuration the same way: SNOWFLAKE_* and
// SNOWMCP_* environment variables over an optional config.yaml.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "snowmcp",
	Short: "MCP server exposing Snowflake data and Cortex AI services",
	Long: `snowmcp serves Snowflake warehouse metadata, validated SQL execution
and Cortex AI services (Complete, Search, Analyst) over the Model
Context Protocol.

Running snowmcp without a subcommand starts the MCP server on stdio.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
