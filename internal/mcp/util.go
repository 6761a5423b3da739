package mcp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/datapeak/snowmcp/internal/registry"
	"github.com/datapeak/snowmcp/internal/snowflake"
	"github.com/datapeak/snowmcp/internal/validate"
)

// errNotInitialized is reported per call when the warehouse client
// could not be constructed at startup.
var errNotInitialized = fmt.Errorf(
	"%w: Snowflake client is not initialized, check the connection configuration", snowflake.ErrConfiguration)

// textResult wraps plain text in a successful tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errorText wraps an error message in a failed tool result without
// going through the taxonomy mapping. Used for the fixed argument
// checks ("Error: Query is required").
func errorText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

// errorResult translates an error from the client, the validators or
// the registry into a prefixed text result. This is the single place
// the error taxonomy becomes display text; nothing propagates to the
// transport.
func errorResult(err error) *mcp.CallToolResult {
	prefix := "Unexpected Error"
	switch {
	// Cortex kinds first: they wrap query/validation errors.
	case errors.Is(err, snowflake.ErrModelNotSupported):
		prefix = "Cortex Model Not Supported"
	case errors.Is(err, registry.ErrServiceNotFound):
		prefix = "Cortex Service Not Found"
	case errors.Is(err, snowflake.ErrCortexComplete):
		prefix = "Cortex Complete Error"
	case errors.Is(err, snowflake.ErrCortexSearch):
		prefix = "Cortex Search Error"
	case errors.Is(err, snowflake.ErrCortexAnalyst):
		prefix = "Cortex Analyst Error"
	case errors.Is(err, validate.ErrValidation):
		prefix = "Validation Error"
	case errors.Is(err, registry.ErrConfiguration), errors.Is(err, snowflake.ErrConfiguration):
		prefix = "Configuration Error"
	case errors.Is(err, snowflake.ErrAuthentication):
		prefix = "Authentication Error"
	case errors.Is(err, snowflake.ErrConnection):
		prefix = "Connection Error"
	case errors.Is(err, snowflake.ErrQuery):
		prefix = "Query Error"
	}
	return errorText(prefix + ": " + err.Error())
}

// getWarehouse returns the injected client or errNotInitialized.
func (s *Server) getWarehouse() (Warehouse, error) {
	if s.warehouse == nil {
		return nil, errNotInitialized
	}
	return s.warehouse, nil
}

// rowValue reads a SHOW/DESCRIBE output column by its lower-case name,
// tolerating drivers that report upper-case column names.
func rowValue(row map[string]any, key string) string {
	for _, k := range []string{key, strings.ToUpper(key)} {
		if v, ok := row[k]; ok && v != nil {
			return fmt.Sprintf("%v", v)
		}
	}
	return "Unknown"
}
