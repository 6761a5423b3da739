// Package snowflake implements the warehouse client: validated SQL
// execution, metadata listings and the Cortex AI calls, all over a
// single gosnowflake connection taken per operation.
package snowflake

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/snowflakedb/gosnowflake"

	"github.com/datapeak/snowmcp/internal/log"
	"github.com/datapeak/snowmcp/internal/validate"
)

// Config holds the Snowflake connection parameters. Populated once at
// startup from the environment and immutable afterwards.
type Config struct {
	Account       string
	User          string
	Password      string
	Database      string
	Schema        string
	Warehouse     string
	Role          string
	Region        string
	Authenticator string
	KeepAlive     bool
}

// Validate checks the required fields and their character sets.
func (c Config) Validate() error {
	required := []struct{ name, value string }{
		{"user", c.User},
		{"password", c.Password},
		{"account", c.Account},
		{"database", c.Database},
		{"warehouse", c.Warehouse},
	}
	for _, p := range required {
		if p.value == "" {
			return fmt.Errorf("%w: missing required parameter: %s", validate.ErrValidation, p.name)
		}
	}
	if err := validate.Account(c.Account); err != nil {
		return err
	}
	return validate.User(c.User)
}

// Client executes operations against Snowflake. A dedicated connection
// is taken from the pool for every operation and released on all exit
// paths; the client itself is immutable after construction and safe for
// concurrent use.
type Client struct {
	db     *sqlx.DB
	logger log.Logger
}

// New builds a client from the connection configuration. The DSN is
// assembled by gosnowflake; no network traffic happens here, the first
// operation dials.
func New(cfg Config, logger log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid connection configuration: %v", ErrConfiguration, err)
	}

	sfCfg := &gosnowflake.Config{
		Account:          cfg.Account,
		User:             cfg.User,
		Password:         cfg.Password,
		Database:         cfg.Database,
		Schema:           cfg.Schema,
		Warehouse:        cfg.Warehouse,
		Role:             cfg.Role,
		Region:           cfg.Region,
		Application:      "snowmcp",
		KeepSessionAlive: cfg.KeepAlive,
	}

	switch strings.ToLower(cfg.Authenticator) {
	case "", "snowflake":
		sfCfg.Authenticator = gosnowflake.AuthTypeSnowflake
	case "externalbrowser":
		sfCfg.Authenticator = gosnowflake.AuthTypeExternalBrowser
	case "oauth":
		sfCfg.Authenticator = gosnowflake.AuthTypeOAuth
	default:
		return nil, fmt.Errorf("%w: unsupported authenticator: %s", ErrConfiguration, cfg.Authenticator)
	}

	dsn, err := gosnowflake.DSN(sfCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: building DSN: %v", ErrConfiguration, err)
	}

	db, err := sqlx.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database handle: %v", ErrConfiguration, err)
	}

	return &Client{db: db, logger: logger}, nil
}

// NewWithDB wraps an existing database handle. Used by tests and by
// callers that manage the handle themselves.
func NewWithDB(db *sqlx.DB, logger log.Logger) *Client {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Client{db: db, logger: logger}
}

// Close releases the underlying handle.
func (c *Client) Close() error {
	return c.db.Close()
}

// withConn acquires a connection, runs fn, and releases the connection
// on every exit path. Dial failures are mapped into the error taxonomy.
func (c *Client) withConn(ctx context.Context, fn func(*sqlx.Conn) error) error {
	conn, err := c.db.Connx(ctx)
	if err != nil {
		c.logger.Error("snowflake connection failed", "error", err)
		return mapConnectError(err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			c.logger.Warn("closing connection", "error", closeErr)
		}
	}()

	return fn(conn)
}

// mapConnectError translates driver dial failures. Snowflake login
// errors carry codes in the 390xxx range; everything else is a plain
// connection failure.
func mapConnectError(err error) error {
	var sfErr *gosnowflake.SnowflakeError
	if errors.As(err, &sfErr) {
		if sfErr.Number >= 390100 && sfErr.Number < 390200 {
			return fmt.Errorf("%w: authentication failed: %v", ErrAuthentication, err)
		}
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "authentication failed") || strings.Contains(msg, "incorrect username or password") {
		return fmt.Errorf("%w: authentication failed: %v", ErrAuthentication, err)
	}
	return fmt.Errorf("%w: failed to connect to Snowflake: %v", ErrConnection, err)
}

// Execute validates and runs a SQL statement, returning all rows as
// column-name keyed maps plus the column names in driver order.
// Validation errors are returned untranslated so the caller can
// distinguish them from execution failures.
func (c *Client) Execute(ctx context.Context, query string, params map[string]any) ([]map[string]any, []string, error) {
	return c.execute(ctx, query, params, false)
}

func (c *Client) execute(ctx context.Context, query string, params map[string]any, allowDDL bool) ([]map[string]any, []string, error) {
	if err := validate.Query(query, allowDDL); err != nil {
		return nil, nil, err
	}
	validated, err := validate.Params(params)
	if err != nil {
		return nil, nil, err
	}

	var (
		results []map[string]any
		columns []string
	)

	err = c.withConn(ctx, func(conn *sqlx.Conn) error {
		args := make([]any, 0, len(validated))
		for key, value := range validated {
			args = append(args, sql.Named(key, value))
		}

		rows, err := conn.QueryxContext(ctx, query, args...)
		if err != nil {
			c.logger.Error("query execution failed", "error", err)
			return fmt.Errorf("%w: query execution failed: %v", ErrQuery, err)
		}
		defer rows.Close()

		columns, err = rows.Columns()
		if err != nil {
			return fmt.Errorf("%w: reading columns: %v", ErrQuery, err)
		}

		for rows.Next() {
			row := map[string]any{}
			if err := rows.MapScan(row); err != nil {
				return fmt.Errorf("%w: scanning row: %v", ErrQuery, err)
			}
			results = append(results, normalizeRow(row))
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("%w: reading rows: %v", ErrQuery, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return results, columns, nil
}

// normalizeRow converts raw driver byte slices to strings so results
// serialize cleanly as JSON.
func normalizeRow(row map[string]any) map[string]any {
	for key, value := range row {
		if b, ok := value.([]byte); ok {
			row[key] = string(b)
		}
	}
	return row
}

// ListDatabases returns the SHOW DATABASES listing.
func (c *Client) ListDatabases(ctx context.Context) ([]map[string]any, error) {
	rows, _, err := c.Execute(ctx, "SHOW DATABASES", nil)
	return rows, err
}

// ListSchemas returns the schema listing, optionally scoped to a
// database. The database name is validated before interpolation.
func (c *Client) ListSchemas(ctx context.Context, database string) ([]map[string]any, error) {
	query := "SHOW SCHEMAS"
	if database != "" {
		if err := validate.Identifier(database, "database name"); err != nil {
			return nil, err
		}
		query = "SHOW SCHEMAS IN DATABASE " + database
	}
	rows, _, err := c.Execute(ctx, query, nil)
	return rows, err
}

// ListTables returns the table listing, optionally scoped to a database
// and schema.
func (c *Client) ListTables(ctx context.Context, database, schema string) ([]map[string]any, error) {
	if database != "" {
		if err := validate.Identifier(database, "database name"); err != nil {
			return nil, err
		}
	}
	if schema != "" {
		if err := validate.Identifier(schema, "schema name"); err != nil {
			return nil, err
		}
	}

	var query string
	switch {
	case database != "" && schema != "":
		query = fmt.Sprintf("SHOW TABLES IN %s.%s", database, schema)
	case database != "":
		query = "SHOW TABLES IN DATABASE " + database
	default:
		query = "SHOW TABLES"
	}
	rows, _, err := c.Execute(ctx, query, nil)
	return rows, err
}

// Columns returns DESCRIBE TABLE output for a table, optionally
// qualified by database and schema.
func (c *Client) Columns(ctx context.Context, table, database, schema string) ([]map[string]any, error) {
	if err := validate.Identifier(table, "table name"); err != nil {
		return nil, err
	}
	if database != "" {
		if err := validate.Identifier(database, "database name"); err != nil {
			return nil, err
		}
	}
	if schema != "" {
		if err := validate.Identifier(schema, "schema name"); err != nil {
			return nil, err
		}
	}

	var query string
	switch {
	case database != "" && schema != "":
		query = fmt.Sprintf("DESCRIBE TABLE %s.%s.%s", database, schema, table)
	case database != "":
		// Double dot uses the session schema within the named database.
		query = fmt.Sprintf("DESCRIBE TABLE %s..%s", database, table)
	default:
		query = "DESCRIBE TABLE " + table
	}
	rows, _, err := c.Execute(ctx, query, nil)
	return rows, err
}

// ListWarehouses returns the SHOW WAREHOUSES listing.
func (c *Client) ListWarehouses(ctx context.Context) ([]map[string]any, error) {
	rows, _, err := c.Execute(ctx, "SHOW WAREHOUSES", nil)
	return rows, err
}

// ListRoles returns the SHOW ROLES listing.
func (c *Client) ListRoles(ctx context.Context) ([]map[string]any, error) {
	rows, _, err := c.Execute(ctx, "SHOW ROLES", nil)
	return rows, err
}

// TestConnection probes the warehouse with SELECT 1. Returns true only
// when the probe yields the scalar 1; every failure yields false and is
// logged, never propagated.
func (c *Client) TestConnection(ctx context.Context) bool {
	var result int
	err := c.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.QueryRowxContext(ctx, "SELECT 1").Scan(&result)
	})
	if err != nil {
		c.logger.Error("connection test failed", "error", err)
		return false
	}
	return result == 1
}
