package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	mcpSdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/datapeak/snowmcp/internal/config"
	"github.com/datapeak/snowmcp/internal/log"
	"github.com/datapeak/snowmcp/internal/mcp"
	"github.com/datapeak/snowmcp/internal/registry"
	"github.com/datapeak/snowmcp/internal/snowflake"
)

const serverName = "snowmcp"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio transport",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// runServe starts the MCP server. A failed client construction is not
// fatal: the server still runs and reports the configuration problem on
// every call that needs the warehouse.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(log.Config{
		Level: log.ParseLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting MCP server", "name", serverName, "version", Version)

	serverCfg := mcp.Config{
		Name:     serverName,
		Version:  Version,
		Logger:   logger,
		Registry: registry.Load(cfg.ServiceConfigPath, logger),
	}

	client, err := snowflake.New(cfg.ClientConfig(), logger)
	if err != nil {
		logger.Error("snowflake client initialization failed", "error", err)
	} else {
		defer func() {
			if closeErr := client.Close(); closeErr != nil {
				logger.Warn("closing snowflake client", "error", closeErr)
			}
		}()
		serverCfg.Warehouse = client

		if client.TestConnection(ctx) {
			logger.Info("snowflake connection verified")
		} else {
			logger.Warn("snowflake connection probe failed, queries will be retried per call")
		}
	}

	server, err := mcp.NewServer(serverCfg)
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	logger.Info("MCP server ready", "transport", "stdio")

	if err := server.Run(ctx, &mcpSdk.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server error: %w", err)
	}

	logger.Info("MCP server shut down")
	return nil
}
