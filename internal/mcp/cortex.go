package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/datapeak/snowmcp/internal/snowflake"
	"github.com/datapeak/snowmcp/internal/validate"
)

// DefaultSearchLimit is used when cortex_search is called without a
// limit.
const DefaultSearchLimit = 10

// CortexCompleteInput is the cortex_complete tool input.
type CortexCompleteInput struct {
	Prompt      string   `json:"prompt" jsonschema:"The input prompt for completion"`
	Model       string   `json:"model,omitempty" jsonschema:"Optional model name (defaults to the configured model)"`
	Temperature *float64 `json:"temperature,omitempty" jsonschema:"Temperature for response generation (0.0 to 1.0)"`
	MaxTokens   *int     `json:"max_tokens,omitempty" jsonschema:"Maximum number of tokens to generate (1 to 4000)"`
}

// CortexSearchInput is the cortex_search tool input.
type CortexSearchInput struct {
	ServiceName string `json:"service_name" jsonschema:"Name of the search service to use"`
	Query       string `json:"query" jsonschema:"Search query"`
	Limit       *int   `json:"limit,omitempty" jsonschema:"Maximum number of results to return (1 to 100, default 10)"`
	Filter      string `json:"filter,omitempty" jsonschema:"Optional filter expression for search results"`
}

// CortexAnalystInput is the cortex_analyst tool input.
type CortexAnalystInput struct {
	ServiceName string `json:"service_name" jsonschema:"Name of the analyst service to use"`
	Question    string `json:"question" jsonschema:"Natural language question about the data"`
	IncludeSQL  *bool  `json:"include_sql,omitempty" jsonschema:"Whether to include the generated SQL in the response (default true)"`
	IncludeData *bool  `json:"include_data,omitempty" jsonschema:"Whether to include the query results in the response (default true)"`
}

// ListCortexServicesInput is the list_cortex_services tool input.
type ListCortexServicesInput struct {
	ServiceType string `json:"service_type,omitempty" jsonschema:"Type of services to list: search, analyst, complete or all (default all)"`
}

func (s *Server) registerCortexTools() error {
	completeSchema, err := jsonschema.For[CortexCompleteInput](nil)
	if err != nil {
		return fmt.Errorf("schema for cortex_complete: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "cortex_complete",
		Description: "Use Cortex Complete for chat completion with large language models.",
		InputSchema: completeSchema,
	}, s.CortexComplete)

	searchSchema, err := jsonschema.For[CortexSearchInput](nil)
	if err != nil {
		return fmt.Errorf("schema for cortex_search: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "cortex_search",
		Description: "Use a Cortex Search service for semantic search over text data.",
		InputSchema: searchSchema,
	}, s.CortexSearch)

	analystSchema, err := jsonschema.For[CortexAnalystInput](nil)
	if err != nil {
		return fmt.Errorf("schema for cortex_analyst: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "cortex_analyst",
		Description: "Use Cortex Analyst for natural language querying over structured data.",
		InputSchema: analystSchema,
	}, s.CortexAnalyst)

	listSchema, err := jsonschema.For[ListCortexServicesInput](nil)
	if err != nil {
		return fmt.Errorf("schema for list_cortex_services: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_cortex_services",
		Description: "List available Cortex services (Search and Analyst).",
		InputSchema: listSchema,
	}, s.ListCortexServices)

	return nil
}

// CortexComplete handles the cortex_complete tool call.
func (s *Server) CortexComplete(ctx context.Context, req *mcp.CallToolRequest, in CortexCompleteInput) (*mcp.CallToolResult, any, error) {
	logger := s.callLogger("cortex_complete")

	if in.Prompt == "" {
		return errorText("Error: Prompt is required"), nil, nil
	}
	if err := validate.CompleteParams(in.Prompt, in.Temperature, in.MaxTokens); err != nil {
		return errorResult(err), nil, nil
	}

	model := in.Model
	if model == "" {
		model = s.registry.DefaultModel()
	}
	if err := snowflake.ValidateModel(model); err != nil {
		return errorResult(err), nil, nil
	}

	wh, err := s.getWarehouse()
	if err != nil {
		return errorResult(err), nil, nil
	}

	var opts []snowflake.Option
	if in.Temperature != nil {
		opts = append(opts, snowflake.Option{Key: "temperature", Value: *in.Temperature})
	}
	if in.MaxTokens != nil {
		opts = append(opts, snowflake.Option{Key: "max_tokens", Value: *in.MaxTokens})
	}

	response, err := wh.Complete(ctx, model, in.Prompt, opts)
	if err != nil {
		logger.Error("cortex complete failed", "error", err)
		return errorResult(err), nil, nil
	}

	return textResult("Cortex Complete Response:\n\n" + response), nil, nil
}

// CortexSearch handles the cortex_search tool call.
func (s *Server) CortexSearch(ctx context.Context, req *mcp.CallToolRequest, in CortexSearchInput) (*mcp.CallToolResult, any, error) {
	logger := s.callLogger("cortex_search")

	if in.ServiceName == "" || in.Query == "" {
		return errorText("Error: Service name and query are required"), nil, nil
	}

	limit := DefaultSearchLimit
	if in.Limit != nil {
		limit = *in.Limit
	}

	if err := validate.SearchParams(in.ServiceName, in.Query, limit, in.Filter); err != nil {
		return errorResult(err), nil, nil
	}

	svc, err := s.registry.FindSearch(in.ServiceName)
	if err != nil {
		logger.Error("search service lookup failed", "service", in.ServiceName, "error", err)
		return errorResult(err), nil, nil
	}

	wh, err := s.getWarehouse()
	if err != nil {
		return errorResult(err), nil, nil
	}

	var opts []snowflake.Option
	if in.Filter != "" {
		opts = append(opts, snowflake.Option{Key: "filter", Value: in.Filter})
	}

	results, err := wh.Search(ctx, svc.DatabaseName, svc.SchemaName, svc.ServiceName, in.Query, limit, opts)
	if err != nil {
		logger.Error("cortex search failed", "service", in.ServiceName, "error", err)
		return errorResult(err), nil, nil
	}

	return textResult(formatSearchResults(in.Query, results)), nil, nil
}

func formatSearchResults(query string, results []map[string]any) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Cortex Search Results for '%s':\n\n", query)

	if len(results) == 0 {
		sb.WriteString("No results found.")
		return sb.String()
	}

	for i, result := range results {
		fmt.Fprintf(&sb, "Result %d:\n", i+1)
		for _, key := range sortedKeys(result) {
			fmt.Fprintf(&sb, "  %s: %v\n", key, result[key])
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// CortexAnalyst handles the cortex_analyst tool call.
func (s *Server) CortexAnalyst(ctx context.Context, req *mcp.CallToolRequest, in CortexAnalystInput) (*mcp.CallToolResult, any, error) {
	logger := s.callLogger("cortex_analyst")

	if in.ServiceName == "" || in.Question == "" {
		return errorText("Error: Service name and question are required"), nil, nil
	}
	if err := validate.AnalystParams(in.ServiceName, in.Question); err != nil {
		return errorResult(err), nil, nil
	}

	includeSQL := in.IncludeSQL == nil || *in.IncludeSQL
	includeData := in.IncludeData == nil || *in.IncludeData

	svc, err := s.registry.FindAnalyst(in.ServiceName)
	if err != nil {
		logger.Error("analyst service lookup failed", "service", in.ServiceName, "error", err)
		return errorResult(err), nil, nil
	}

	wh, err := s.getWarehouse()
	if err != nil {
		return errorResult(err), nil, nil
	}

	// Only non-default flags are forwarded to the Cortex call.
	var opts []snowflake.Option
	if !includeSQL {
		opts = append(opts, snowflake.Option{Key: "include_sql", Value: false})
	}
	if !includeData {
		opts = append(opts, snowflake.Option{Key: "include_data", Value: false})
	}

	result, err := wh.Analyst(ctx, svc.SemanticModel, in.Question, opts)
	if err != nil {
		logger.Error("cortex analyst failed", "service", in.ServiceName, "error", err)
		return errorResult(err), nil, nil
	}

	return textResult(formatAnalystResult(in.Question, result, includeSQL, includeData)), nil, nil
}

func formatAnalystResult(question string, result map[string]any, includeSQL, includeData bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Cortex Analyst Response for '%s':\n\n", question)

	if errMsg, ok := result["error"]; ok {
		fmt.Fprintf(&sb, "Error: %v", errMsg)
		return sb.String()
	}

	if sql, ok := result["sql"]; ok && includeSQL {
		fmt.Fprintf(&sb, "Generated SQL:\n%v\n\n", sql)
	}
	if data, ok := result["data"]; ok && includeData {
		fmt.Fprintf(&sb, "Query Results:\n%v\n\n", data)
	}
	if explanation, ok := result["explanation"]; ok {
		fmt.Fprintf(&sb, "Explanation:\n%v\n\n", explanation)
	}

	for _, key := range sortedKeys(result) {
		switch key {
		case "sql", "data", "explanation":
			continue
		}
		fmt.Fprintf(&sb, "%s: %v\n", key, result[key])
	}

	return sb.String()
}

// ListCortexServices handles the list_cortex_services tool call. Reads
// only the registry; never touches the warehouse.
func (s *Server) ListCortexServices(ctx context.Context, req *mcp.CallToolRequest, in ListCortexServicesInput) (*mcp.CallToolResult, any, error) {
	s.callLogger("list_cortex_services")

	serviceType := in.ServiceType
	if serviceType == "" {
		serviceType = "all"
	}
	switch serviceType {
	case "search", "analyst", "complete", "all":
	default:
		return errorResult(fmt.Errorf("%w: unknown service type: %s", validate.ErrValidation, serviceType)), nil, nil
	}

	var sb strings.Builder
	sb.WriteString("Available Cortex Services:\n\n")

	if serviceType == "search" || serviceType == "all" {
		sb.WriteString("Search Services:\n")
		services := s.registry.SearchServices()
		if len(services) == 0 {
			sb.WriteString("  No search services configured\n")
		}
		for _, svc := range services {
			fmt.Fprintf(&sb, "  - %s: %s\n", svc.ServiceName, orDefault(svc.Description, "No description"))
		}
		sb.WriteString("\n")
	}

	if serviceType == "analyst" || serviceType == "all" {
		sb.WriteString("Analyst Services:\n")
		services := s.registry.AnalystServices()
		if len(services) == 0 {
			sb.WriteString("  No analyst services configured\n")
		}
		for _, svc := range services {
			fmt.Fprintf(&sb, "  - %s: %s\n", svc.ServiceName, orDefault(svc.Description, "No description"))
		}
		sb.WriteString("\n")
	}

	if serviceType == "complete" || serviceType == "all" {
		sb.WriteString("Complete Configuration:\n")
		fmt.Fprintf(&sb, "  - Default Model: %s\n", s.registry.DefaultModel())
	}

	return textResult(sb.String()), nil, nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
