package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Inputs for the metadata tools.
type (
	// GetDatabasesInput is the get_databases tool input (none).
	GetDatabasesInput struct{}

	// GetSchemasInput is the get_schemas tool input.
	GetSchemasInput struct {
		Database string `json:"database,omitempty" jsonschema:"Database name (optional)"`
	}

	// GetTablesInput is the get_tables tool input.
	GetTablesInput struct {
		Database string `json:"database,omitempty" jsonschema:"Database name (optional)"`
		Schema   string `json:"schema,omitempty" jsonschema:"Schema name (optional)"`
	}

	// GetColumnsInput is the get_columns tool input.
	GetColumnsInput struct {
		Table    string `json:"table" jsonschema:"Table name"`
		Database string `json:"database,omitempty" jsonschema:"Database name (optional)"`
		Schema   string `json:"schema,omitempty" jsonschema:"Schema name (optional)"`
	}

	// GetWarehousesInput is the get_warehouses tool input (none).
	GetWarehousesInput struct{}

	// GetRolesInput is the get_roles tool input (none).
	GetRolesInput struct{}
)

func (s *Server) registerMetadataTools() error {
	databasesSchema, err := jsonschema.For[GetDatabasesInput](nil)
	if err != nil {
		return fmt.Errorf("schema for get_databases: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_databases",
		Description: "Get list of available databases.",
		InputSchema: databasesSchema,
	}, s.GetDatabases)

	schemasSchema, err := jsonschema.For[GetSchemasInput](nil)
	if err != nil {
		return fmt.Errorf("schema for get_schemas: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_schemas",
		Description: "Get list of schemas in a database.",
		InputSchema: schemasSchema,
	}, s.GetSchemas)

	tablesSchema, err := jsonschema.For[GetTablesInput](nil)
	if err != nil {
		return fmt.Errorf("schema for get_tables: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_tables",
		Description: "Get list of tables in a database/schema.",
		InputSchema: tablesSchema,
	}, s.GetTables)

	columnsSchema, err := jsonschema.For[GetColumnsInput](nil)
	if err != nil {
		return fmt.Errorf("schema for get_columns: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_columns",
		Description: "Get column information for a table.",
		InputSchema: columnsSchema,
	}, s.GetColumns)

	warehousesSchema, err := jsonschema.For[GetWarehousesInput](nil)
	if err != nil {
		return fmt.Errorf("schema for get_warehouses: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_warehouses",
		Description: "Get list of available warehouses.",
		InputSchema: warehousesSchema,
	}, s.GetWarehouses)

	rolesSchema, err := jsonschema.For[GetRolesInput](nil)
	if err != nil {
		return fmt.Errorf("schema for get_roles: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_roles",
		Description: "Get list of available roles.",
		InputSchema: rolesSchema,
	}, s.GetRoles)

	return nil
}

// formatNameListing renders "- name" lines under a header.
func formatNameListing(header string, rows []map[string]any) string {
	var sb strings.Builder
	sb.WriteString(header + ":\n\n")
	for _, row := range rows {
		sb.WriteString("- " + rowValue(row, "name") + "\n")
	}
	return sb.String()
}

// GetDatabases handles the get_databases tool call.
func (s *Server) GetDatabases(ctx context.Context, req *mcp.CallToolRequest, in GetDatabasesInput) (*mcp.CallToolResult, any, error) {
	logger := s.callLogger("get_databases")

	wh, err := s.getWarehouse()
	if err != nil {
		return errorResult(err), nil, nil
	}

	rows, err := wh.ListDatabases(ctx)
	if err != nil {
		logger.Error("listing databases failed", "error", err)
		return errorResult(err), nil, nil
	}
	return textResult(formatNameListing("Available Databases", rows)), nil, nil
}

// GetSchemas handles the get_schemas tool call.
func (s *Server) GetSchemas(ctx context.Context, req *mcp.CallToolRequest, in GetSchemasInput) (*mcp.CallToolResult, any, error) {
	logger := s.callLogger("get_schemas")

	wh, err := s.getWarehouse()
	if err != nil {
		return errorResult(err), nil, nil
	}

	rows, err := wh.ListSchemas(ctx, in.Database)
	if err != nil {
		logger.Error("listing schemas failed", "error", err)
		return errorResult(err), nil, nil
	}

	header := "Available Schemas"
	if in.Database != "" {
		header += " in " + in.Database
	}
	return textResult(formatNameListing(header, rows)), nil, nil
}

// GetTables handles the get_tables tool call.
func (s *Server) GetTables(ctx context.Context, req *mcp.CallToolRequest, in GetTablesInput) (*mcp.CallToolResult, any, error) {
	logger := s.callLogger("get_tables")

	wh, err := s.getWarehouse()
	if err != nil {
		return errorResult(err), nil, nil
	}

	rows, err := wh.ListTables(ctx, in.Database, in.Schema)
	if err != nil {
		logger.Error("listing tables failed", "error", err)
		return errorResult(err), nil, nil
	}

	header := "Available Tables"
	switch {
	case in.Database != "" && in.Schema != "":
		header += " in " + in.Database + "." + in.Schema
	case in.Database != "":
		header += " in " + in.Database
	case in.Schema != "":
		header += " in " + in.Schema
	}
	return textResult(formatNameListing(header, rows)), nil, nil
}

// GetColumns handles the get_columns tool call.
func (s *Server) GetColumns(ctx context.Context, req *mcp.CallToolRequest, in GetColumnsInput) (*mcp.CallToolResult, any, error) {
	logger := s.callLogger("get_columns")

	if in.Table == "" {
		return errorText("Error: Table name is required"), nil, nil
	}

	wh, err := s.getWarehouse()
	if err != nil {
		return errorResult(err), nil, nil
	}

	rows, err := wh.Columns(ctx, in.Table, in.Database, in.Schema)
	if err != nil {
		logger.Error("describing table failed", "table", in.Table, "error", err)
		return errorResult(err), nil, nil
	}

	target := in.Table
	if in.Database != "" && in.Schema != "" {
		target = in.Database + "." + in.Schema + "." + in.Table
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Columns in %s:\n\n", target)
	for _, row := range rows {
		fmt.Fprintf(&sb, "- %s (%s)\n", rowValue(row, "name"), rowValue(row, "type"))
	}
	return textResult(sb.String()), nil, nil
}

// GetWarehouses handles the get_warehouses tool call.
func (s *Server) GetWarehouses(ctx context.Context, req *mcp.CallToolRequest, in GetWarehousesInput) (*mcp.CallToolResult, any, error) {
	logger := s.callLogger("get_warehouses")

	wh, err := s.getWarehouse()
	if err != nil {
		return errorResult(err), nil, nil
	}

	rows, err := wh.ListWarehouses(ctx)
	if err != nil {
		logger.Error("listing warehouses failed", "error", err)
		return errorResult(err), nil, nil
	}
	return textResult(formatNameListing("Available Warehouses", rows)), nil, nil
}

// GetRoles handles the get_roles tool call.
func (s *Server) GetRoles(ctx context.Context, req *mcp.CallToolRequest, in GetRolesInput) (*mcp.CallToolResult, any, error) {
	logger := s.callLogger("get_roles")

	wh, err := s.getWarehouse()
	if err != nil {
		return errorResult(err), nil, nil
	}

	rows, err := wh.ListRoles(ctx)
	if err != nil {
		logger.Error("listing roles failed", "error", err)
		return errorResult(err), nil, nil
	}
	return textResult(formatNameListing("Available Roles", rows)), nil, nil
}
