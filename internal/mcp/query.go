package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// maxDisplayRows caps how many rows execute_query renders in its text
// result; the full row count is still reported.
const maxDisplayRows = 10

// ExecuteQueryInput is the execute_query tool input.
type ExecuteQueryInput struct {
	Query  string         `json:"query" jsonschema:"SQL query to execute"`
	Params map[string]any `json:"params,omitempty" jsonschema:"Optional named query parameters"`
}

// TestConnectionInput is the test_connection tool input (none).
type TestConnectionInput struct{}

func (s *Server) registerQueryTools() error {
	executeSchema, err := jsonschema.For[ExecuteQueryInput](nil)
	if err != nil {
		return fmt.Errorf("schema for execute_query: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "execute_query",
		Description: "Execute a SQL query on the Snowflake database.",
		InputSchema: executeSchema,
	}, s.ExecuteQuery)

	testSchema, err := jsonschema.For[TestConnectionInput](nil)
	if err != nil {
		return fmt.Errorf("schema for test_connection: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "test_connection",
		Description: "Test the Snowflake database connection.",
		InputSchema: testSchema,
	}, s.TestConnection)

	return nil
}

// ExecuteQuery handles the execute_query tool call.
func (s *Server) ExecuteQuery(ctx context.Context, req *mcp.CallToolRequest, in ExecuteQueryInput) (*mcp.CallToolResult, any, error) {
	logger := s.callLogger("execute_query")

	if in.Query == "" {
		return errorText("Error: Query is required"), nil, nil
	}

	wh, err := s.getWarehouse()
	if err != nil {
		return errorResult(err), nil, nil
	}

	rows, columns, err := wh.Execute(ctx, in.Query, in.Params)
	if err != nil {
		logger.Error("query failed", "error", err)
		return errorResult(err), nil, nil
	}

	return textResult(formatQueryResults(rows, columns)), nil, nil
}

// formatQueryResults renders rows as readable text: column header, row
// count, then the first maxDisplayRows rows as JSON objects.
func formatQueryResults(rows []map[string]any, columns []string) string {
	if len(rows) == 0 {
		return "Query executed successfully. No results returned."
	}

	var sb strings.Builder
	sb.WriteString("Query Results:\n\n")
	sb.WriteString("Columns: " + strings.Join(columns, ", ") + "\n\n")
	fmt.Fprintf(&sb, "Rows: %d\n\n", len(rows))

	display := rows
	if len(display) > maxDisplayRows {
		display = display[:maxDisplayRows]
	}
	for i, row := range display {
		// json.Marshal sorts map keys, so output is deterministic.
		b, err := json.Marshal(row)
		if err != nil {
			b = []byte(fmt.Sprintf("%v", row))
		}
		fmt.Fprintf(&sb, "Row %d: %s\n", i+1, b)
	}

	if len(rows) > maxDisplayRows {
		fmt.Fprintf(&sb, "\n... and %d more rows", len(rows)-maxDisplayRows)
	}

	return sb.String()
}

// TestConnection handles the test_connection tool call. Never fails:
// the probe result is reported as text either way.
func (s *Server) TestConnection(ctx context.Context, req *mcp.CallToolRequest, in TestConnectionInput) (*mcp.CallToolResult, any, error) {
	s.callLogger("test_connection")

	wh, err := s.getWarehouse()
	if err != nil {
		return errorResult(err), nil, nil
	}

	if wh.TestConnection(ctx) {
		return textResult("Connection test successful"), nil, nil
	}
	return errorText("Connection test failed"), nil, nil
}
