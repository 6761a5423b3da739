package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/datapeak/snowmcp/internal/log"
	"github.com/datapeak/snowmcp/internal/registry"
	"github.com/datapeak/snowmcp/internal/snowflake"
)

// warehouseCall records one method invocation on the fake warehouse.
type warehouseCall struct {
	method string
	args   []any
}

// fakeWarehouse is a scripted Warehouse. Each method returns the
// configured payload or err, and records the call.
type fakeWarehouse struct {
	rows    []map[string]any
	columns []string
	err     error

	connected bool

	completeResponse string
	searchResults    []map[string]any
	analystResult    map[string]any

	calls []warehouseCall
}

func (f *fakeWarehouse) record(method string, args ...any) {
	f.calls = append(f.calls, warehouseCall{method: method, args: args})
}

func (f *fakeWarehouse) lastCall() warehouseCall {
	if len(f.calls) == 0 {
		return warehouseCall{}
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeWarehouse) Execute(ctx context.Context, query string, params map[string]any) ([]map[string]any, []string, error) {
	f.record("Execute", query, params)
	return f.rows, f.columns, f.err
}

func (f *fakeWarehouse) ListDatabases(ctx context.Context) ([]map[string]any, error) {
	f.record("ListDatabases")
	return f.rows, f.err
}

func (f *fakeWarehouse) ListSchemas(ctx context.Context, database string) ([]map[string]any, error) {
	f.record("ListSchemas", database)
	return f.rows, f.err
}

func (f *fakeWarehouse) ListTables(ctx context.Context, database, schema string) ([]map[string]any, error) {
	f.record("ListTables", database, schema)
	return f.rows, f.err
}

func (f *fakeWarehouse) Columns(ctx context.Context, table, database, schema string) ([]map[string]any, error) {
	f.record("Columns", table, database, schema)
	return f.rows, f.err
}

func (f *fakeWarehouse) ListWarehouses(ctx context.Context) ([]map[string]any, error) {
	f.record("ListWarehouses")
	return f.rows, f.err
}

func (f *fakeWarehouse) ListRoles(ctx context.Context) ([]map[string]any, error) {
	f.record("ListRoles")
	return f.rows, f.err
}

func (f *fakeWarehouse) TestConnection(ctx context.Context) bool {
	f.record("TestConnection")
	return f.connected
}

func (f *fakeWarehouse) Complete(ctx context.Context, model, prompt string, opts []snowflake.Option) (string, error) {
	f.record("Complete", model, prompt, opts)
	return f.completeResponse, f.err
}

func (f *fakeWarehouse) Search(ctx context.Context, database, schema, serviceName, query string, limit int, opts []snowflake.Option) ([]map[string]any, error) {
	f.record("Search", database, schema, serviceName, query, limit, opts)
	return f.searchResults, f.err
}

func (f *fakeWarehouse) Analyst(ctx context.Context, semanticModel, question string, opts []snowflake.Option) (map[string]any, error) {
	f.record("Analyst", semanticModel, question, opts)
	return f.analystResult, f.err
}

const testServiceYAML = `search_services:
  - service_name: product_search
    database_name: SALES
    schema_name: PUBLIC
    description: Product catalog search
analyst_services:
  - service_name: revenue_analyst
    semantic_model: '@SALES.PUBLIC.MODELS/revenue.yaml'
    description: Revenue questions
cortex_complete:
  default_model: snowflake-llama-3.1-8b
`

// loadTestRegistry writes the standard test service configuration to a
// temp file and loads it.
func loadTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "service_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testServiceYAML), 0o600))
	return registry.Load(path, log.NewNop())
}

// newTestServer builds a server around the given warehouse (nil is
// allowed) and the standard test registry.
func newTestServer(t *testing.T, wh Warehouse) *Server {
	t.Helper()
	cfg := Config{
		Name:     "snowmcp-test",
		Version:  "0.0.1",
		Logger:   log.NewNop(),
		Registry: loadTestRegistry(t),
	}
	if wh != nil {
		cfg.Warehouse = wh
	}
	s, err := NewServer(cfg)
	require.NoError(t, err)
	return s
}

// connectServer wires the server to an SDK client over in-memory
// transports and returns the client session. Both sessions close via
// t.Cleanup.
func connectServer(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()

	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serverSession, err := s.mcpServer.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = clientSession.Close() })

	return clientSession
}

// resultText extracts the single text content of a tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content[0] type = %T, want *mcp.TextContent", result.Content[0])
	return text.Text
}
