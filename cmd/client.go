package cmd

import (
	"fmt"

	"github.com/datapeak/snowmcp/internal/config"
	"github.com/datapeak/snowmcp/internal/log"
	"github.com/datapeak/snowmcp/internal/snowflake"
)

// buildClient constructs a Snowflake client for the one-shot commands.
// Unlike the server, these commands fail fast on bad configuration.
func buildClient() (*snowflake.Client, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(log.Config{
		Level: log.ParseLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})

	client, err := snowflake.New(cfg.ClientConfig(), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing snowflake client: %w", err)
	}

	cleanup := func() {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("closing snowflake client", "error", closeErr)
		}
	}
	return client, cleanup, nil
}
