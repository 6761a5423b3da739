package mcp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/datapeak/snowmcp/internal/log"
	"github.com/datapeak/snowmcp/internal/registry"
	"github.com/datapeak/snowmcp/internal/snowflake"
)

// Warehouse is the slice of the Snowflake client the server uses.
// *snowflake.Client implements it; tests substitute a stub.
type Warehouse interface {
	Execute(ctx context.Context, query string, params map[string]any) ([]map[string]any, []string, error)
	ListDatabases(ctx context.Context) ([]map[string]any, error)
	ListSchemas(ctx context.Context, database string) ([]map[string]any, error)
	ListTables(ctx context.Context, database, schema string) ([]map[string]any, error)
	Columns(ctx context.Context, table, database, schema string) ([]map[string]any, error)
	ListWarehouses(ctx context.Context) ([]map[string]any, error)
	ListRoles(ctx context.Context) ([]map[string]any, error)
	TestConnection(ctx context.Context) bool
	Complete(ctx context.Context, model, prompt string, opts []snowflake.Option) (string, error)
	Search(ctx context.Context, database, schema, serviceName, query string, limit int, opts []snowflake.Option) ([]map[string]any, error)
	Analyst(ctx context.Context, semanticModel, question string, opts []snowflake.Option) (map[string]any, error)
}

var _ Warehouse = (*snowflake.Client)(nil)

// Config holds the server dependencies.
type Config struct {
	Name    string
	Version string
	Logger  log.Logger

	// Warehouse may be nil when client construction failed at startup;
	// calls then report a configuration error instead of crashing.
	Warehouse Warehouse

	// Registry must not be nil; use registry.Empty() when no service
	// configuration exists.
	Registry *registry.Registry
}

// Server wraps the MCP SDK server together with the warehouse client
// and the Cortex service registry.
type Server struct {
	mcpServer *mcp.Server
	warehouse Warehouse
	registry  *registry.Registry
	logger    log.Logger
}

// NewServer creates the MCP server and registers all tools and
// resources.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("server version is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("service registry is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}

	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		warehouse: cfg.Warehouse,
		registry:  cfg.Registry,
		logger:    cfg.Logger,
	}

	if err := s.registerQueryTools(); err != nil {
		return nil, fmt.Errorf("registering query tools: %w", err)
	}
	if err := s.registerMetadataTools(); err != nil {
		return nil, fmt.Errorf("registering metadata tools: %w", err)
	}
	if err := s.registerCortexTools(); err != nil {
		return nil, fmt.Errorf("registering cortex tools: %w", err)
	}
	s.registerResources()

	return s, nil
}

// Run serves MCP on the given transport. Blocks until the context is
// cancelled or the transport closes.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

// callLogger returns a logger scoped to one tool invocation.
func (s *Server) callLogger(tool string) log.Logger {
	logger := s.logger.With("tool", tool, "invocation_id", uuid.NewString())
	logger.Debug("tool call")
	return logger
}
