package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// warehouseLister is a metadata listing bound to a resource URI.
type warehouseLister func(ctx context.Context, wh Warehouse) (any, error)

func (s *Server) registerResources() {
	s.addListingResource(
		"snowflake://databases", "databases", "List of available databases",
		func(ctx context.Context, wh Warehouse) (any, error) { return wh.ListDatabases(ctx) })
	s.addListingResource(
		"snowflake://schemas", "schemas", "List of schemas in the current database",
		func(ctx context.Context, wh Warehouse) (any, error) { return wh.ListSchemas(ctx, "") })
	s.addListingResource(
		"snowflake://tables", "tables", "List of tables in the current schema",
		func(ctx context.Context, wh Warehouse) (any, error) { return wh.ListTables(ctx, "", "") })
	s.addListingResource(
		"snowflake://warehouses", "warehouses", "List of available warehouses",
		func(ctx context.Context, wh Warehouse) (any, error) { return wh.ListWarehouses(ctx) })
	s.addListingResource(
		"snowflake://roles", "roles", "List of available roles",
		func(ctx context.Context, wh Warehouse) (any, error) { return wh.ListRoles(ctx) })

	s.addRegistryResource(
		"snowflake://cortex/search_services", "cortex_search_services",
		"Configured Cortex Search services",
		func() any { return s.registry.SearchServices() })
	s.addRegistryResource(
		"snowflake://cortex/analyst_services", "cortex_analyst_services",
		"Configured Cortex Analyst services",
		func() any { return s.registry.AnalystServices() })
	s.addRegistryResource(
		"snowflake://cortex/complete_config", "cortex_complete_config",
		"Cortex Complete configuration",
		func() any {
			return map[string]string{"default_model": s.registry.DefaultModel()}
		})
}

// addListingResource registers a resource backed by a warehouse
// listing. A missing client or a failed listing is reported inside the
// JSON body rather than as a protocol error so resource reads always
// succeed at the transport level.
func (s *Server) addListingResource(uri, name, description string, list warehouseLister) {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         uri,
		Name:        name,
		Description: description,
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		payload := func() any {
			wh, err := s.getWarehouse()
			if err != nil {
				return map[string]string{"error": err.Error()}
			}
			rows, err := list(ctx, wh)
			if err != nil {
				s.logger.Error("resource read failed", "uri", uri, "error", err)
				return map[string]string{"error": err.Error()}
			}
			return rows
		}()
		return resourceJSON(uri, payload)
	})
}

// addRegistryResource registers a resource backed by the Cortex service
// registry only; no warehouse connection is needed to read it.
func (s *Server) addRegistryResource(uri, name, description string, value func() any) {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         uri,
		Name:        name,
		Description: description,
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return resourceJSON(uri, value())
	})
}

func resourceJSON(uri string, v any) (*mcp.ReadResourceResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding resource %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(b),
		}},
	}, nil
}
