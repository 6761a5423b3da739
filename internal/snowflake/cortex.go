package snowflake

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/datapeak/snowmcp/internal/validate"
)

// Option is an extra `'key' => value` argument appended to a Cortex
// function call. Options are rendered in slice order so the generated
// SQL is deterministic.
type Option struct {
	Key   string
	Value any
}

// quoteLiteral wraps s in single quotes, doubling any embedded quote.
// Cortex function arguments are passed as SQL string literals rather
// than bind parameters.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// renderOptions appends `, 'key' => value` for each option.
func renderOptions(sb *strings.Builder, opts []Option) {
	for _, opt := range opts {
		sb.WriteString(", ")
		sb.WriteString(quoteLiteral(opt.Key))
		sb.WriteString(" => ")
		switch v := opt.Value.(type) {
		case string:
			sb.WriteString(quoteLiteral(v))
		case bool:
			sb.WriteString(strconv.FormatBool(v))
		default:
			fmt.Fprintf(sb, "%v", v)
		}
	}
}

// Complete calls SNOWFLAKE.CORTEX.COMPLETE with the given model and
// prompt. The model is checked against the supported set before any
// SQL is built. An empty result yields the documented default text.
func (c *Client) Complete(ctx context.Context, model, prompt string, opts []Option) (string, error) {
	if err := ValidateModel(model); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("SELECT SNOWFLAKE.CORTEX.COMPLETE(")
	sb.WriteString(quoteLiteral(model))
	sb.WriteString(", ")
	sb.WriteString(quoteLiteral(prompt))
	renderOptions(&sb, opts)
	sb.WriteString(") AS RESPONSE")

	rows, _, err := c.Execute(ctx, sb.String(), nil)
	if err != nil {
		c.logger.Error("cortex complete failed", "model", model, "error", err)
		return "", fmt.Errorf("%w: %w", ErrCortexComplete, err)
	}
	if len(rows) == 0 {
		return "No response generated", nil
	}

	return stringColumn(rows[0], "RESPONSE"), nil
}

// Search calls SNOWFLAKE.CORTEX.SEARCH against the fully qualified
// service (database.schema.service) and parses the JSON result column.
// An empty result yields an empty slice.
func (c *Client) Search(ctx context.Context, database, schema, serviceName, query string, limit int, opts []Option) ([]map[string]any, error) {
	for _, id := range []struct{ value, kind string }{
		{database, "database name"},
		{schema, "schema name"},
		{serviceName, "service name"},
	} {
		if err := validate.Identifier(id.value, id.kind); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCortexSearch, err)
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT SNOWFLAKE.CORTEX.SEARCH(")
	sb.WriteString(quoteLiteral(fmt.Sprintf("%s.%s.%s", database, schema, serviceName)))
	sb.WriteString(", ")
	sb.WriteString(quoteLiteral(query))
	fmt.Fprintf(&sb, ", %d", limit)
	renderOptions(&sb, opts)
	sb.WriteString(") AS SEARCH_RESULTS")

	rows, _, err := c.Execute(ctx, sb.String(), nil)
	if err != nil {
		c.logger.Error("cortex search failed", "service", serviceName, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrCortexSearch, err)
	}
	if len(rows) == 0 {
		return []map[string]any{}, nil
	}

	var results []map[string]any
	raw := stringColumn(rows[0], "SEARCH_RESULTS")
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return nil, fmt.Errorf("%w: parsing search results: %v", ErrCortexSearch, err)
	}
	return results, nil
}

// Analyst calls SNOWFLAKE.CORTEX.ANALYST with the semantic model backing
// the configured service and parses the JSON analysis result. An empty
// result yields the documented error payload.
func (c *Client) Analyst(ctx context.Context, semanticModel, question string, opts []Option) (map[string]any, error) {
	var sb strings.Builder
	sb.WriteString("SELECT SNOWFLAKE.CORTEX.ANALYST(")
	sb.WriteString(quoteLiteral(semanticModel))
	sb.WriteString(", ")
	sb.WriteString(quoteLiteral(question))
	renderOptions(&sb, opts)
	sb.WriteString(") AS ANALYSIS_RESULT")

	rows, _, err := c.Execute(ctx, sb.String(), nil)
	if err != nil {
		c.logger.Error("cortex analyst failed", "semantic_model", semanticModel, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrCortexAnalyst, err)
	}
	if len(rows) == 0 {
		return map[string]any{"error": "No analysis result generated"}, nil
	}

	var result map[string]any
	raw := stringColumn(rows[0], "ANALYSIS_RESULT")
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("%w: parsing analysis result: %v", ErrCortexAnalyst, err)
	}
	return result, nil
}

// stringColumn reads a column that may arrive as string or raw bytes.
func stringColumn(row map[string]any, name string) string {
	switch v := row[name].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
