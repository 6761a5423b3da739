package snowflake

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/snowflakedb/gosnowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datapeak/snowmcp/internal/log"
	"github.com/datapeak/snowmcp/internal/validate"
)

func validConfig() Config {
	return Config{
		Account:   "myorg-account1",
		User:      "svc_mcp",
		Password:  "secret",
		Database:  "ANALYTICS",
		Warehouse: "COMPUTE_WH",
		Schema:    "PUBLIC",
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	for _, field := range []string{"user", "password", "account", "database", "warehouse"} {
		t.Run("missing "+field, func(t *testing.T) {
			cfg := validConfig()
			switch field {
			case "user":
				cfg.User = ""
			case "password":
				cfg.Password = ""
			case "account":
				cfg.Account = ""
			case "database":
				cfg.Database = ""
			case "warehouse":
				cfg.Warehouse = ""
			}
			err := cfg.Validate()
			require.ErrorIs(t, err, validate.ErrValidation)
			assert.Contains(t, err.Error(), field)
		})
	}

	t.Run("bad account charset", func(t *testing.T) {
		cfg := validConfig()
		cfg.Account = "acc.ount"
		assert.ErrorIs(t, cfg.Validate(), validate.ErrValidation)
	})

	t.Run("bad user charset", func(t *testing.T) {
		cfg := validConfig()
		cfg.User = "user name"
		assert.ErrorIs(t, cfg.Validate(), validate.ErrValidation)
	})
}

func TestNew(t *testing.T) {
	t.Run("invalid config", func(t *testing.T) {
		_, err := New(Config{}, log.NewNop())
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("valid config builds without dialing", func(t *testing.T) {
		c, err := New(validConfig(), log.NewNop())
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.NoError(t, c.Close())
	})

	t.Run("unsupported authenticator", func(t *testing.T) {
		cfg := validConfig()
		cfg.Authenticator = "kerberos"
		_, err := New(cfg, log.NewNop())
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("external browser authenticator accepted", func(t *testing.T) {
		cfg := validConfig()
		cfg.Authenticator = "externalbrowser"
		c, err := New(cfg, log.NewNop())
		require.NoError(t, err)
		assert.NoError(t, c.Close())
	})
}

func TestExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("returns rows and columns", func(t *testing.T) {
		c, conn := newTestClient(script{
			cols: []string{"ID", "NAME"},
			rows: [][]driver.Value{{int64(1), "alice"}, {int64(2), "bob"}},
		})
		defer c.Close()

		rows, cols, err := c.Execute(ctx, "SELECT id, name FROM users", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"ID", "NAME"}, cols)
		require.Len(t, rows, 2)
		assert.Equal(t, map[string]any{"ID": int64(1), "NAME": "alice"}, rows[0])
		require.Len(t, conn.calls, 1)
		assert.Equal(t, "SELECT id, name FROM users", conn.calls[0].query)
	})

	t.Run("byte slices normalized to strings", func(t *testing.T) {
		c, _ := newTestClient(script{
			cols: []string{"NAME"},
			rows: [][]driver.Value{{[]byte("raw")}},
		})
		defer c.Close()

		rows, _, err := c.Execute(ctx, "SELECT name FROM t", nil)
		require.NoError(t, err)
		assert.Equal(t, "raw", rows[0]["NAME"])
	})

	t.Run("named parameters forwarded", func(t *testing.T) {
		c, conn := newTestClient(script{cols: []string{"ID"}})
		defer c.Close()

		_, _, err := c.Execute(ctx, "SELECT id FROM users WHERE id = :id", map[string]any{"id": 7})
		require.NoError(t, err)
		require.Len(t, conn.calls, 1)
		require.Len(t, conn.calls[0].args, 1)
		assert.Equal(t, "id", conn.calls[0].args[0].Name)
	})

	t.Run("empty query rejected before any connection", func(t *testing.T) {
		c, conn := newTestClient()
		defer c.Close()

		_, _, err := c.Execute(ctx, "", nil)
		assert.ErrorIs(t, err, validate.ErrValidation)
		assert.Empty(t, conn.calls)
	})

	t.Run("dangerous query rejected", func(t *testing.T) {
		c, conn := newTestClient()
		defer c.Close()

		_, _, err := c.Execute(ctx, "DROP TABLE users", nil)
		assert.ErrorIs(t, err, validate.ErrValidation)
		assert.Empty(t, conn.calls)
	})

	t.Run("invalid params rejected", func(t *testing.T) {
		c, conn := newTestClient()
		defer c.Close()

		_, _, err := c.Execute(ctx, "SELECT 1", map[string]any{"a;b": 1})
		assert.ErrorIs(t, err, validate.ErrValidation)
		assert.Empty(t, conn.calls)
	})

	t.Run("execution failure maps to query error", func(t *testing.T) {
		c, _ := newTestClient(script{err: errors.New("SQL compilation error")})
		defer c.Close()

		_, _, err := c.Execute(ctx, "SELECT broken", nil)
		require.ErrorIs(t, err, ErrQuery)
		assert.Contains(t, err.Error(), "SQL compilation error")
	})

	t.Run("connect failure maps to connection error", func(t *testing.T) {
		c := newFailingClient(errors.New("dial tcp: no route to host"))
		defer c.Close()

		_, _, err := c.Execute(ctx, "SELECT 1", nil)
		assert.ErrorIs(t, err, ErrConnection)
	})

	t.Run("login failure maps to authentication error", func(t *testing.T) {
		c := newFailingClient(&gosnowflake.SnowflakeError{
			Number:  390100,
			Message: "Incorrect username or password was specified.",
		})
		defer c.Close()

		_, _, err := c.Execute(ctx, "SELECT 1", nil)
		assert.ErrorIs(t, err, ErrAuthentication)
	})
}

func TestMetadataListings(t *testing.T) {
	ctx := context.Background()

	nameRows := script{
		cols: []string{"name"},
		rows: [][]driver.Value{{"A"}, {"B"}},
	}

	t.Run("databases", func(t *testing.T) {
		c, conn := newTestClient(nameRows)
		defer c.Close()

		rows, err := c.ListDatabases(ctx)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
		assert.Equal(t, "SHOW DATABASES", conn.calls[0].query)
	})

	t.Run("schemas unscoped", func(t *testing.T) {
		c, conn := newTestClient(nameRows)
		defer c.Close()

		_, err := c.ListSchemas(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, "SHOW SCHEMAS", conn.calls[0].query)
	})

	t.Run("schemas scoped to database", func(t *testing.T) {
		c, conn := newTestClient(nameRows)
		defer c.Close()

		_, err := c.ListSchemas(ctx, "ANALYTICS")
		require.NoError(t, err)
		assert.Equal(t, "SHOW SCHEMAS IN DATABASE ANALYTICS", conn.calls[0].query)
	})

	t.Run("schemas rejects invalid database name", func(t *testing.T) {
		c, conn := newTestClient()
		defer c.Close()

		_, err := c.ListSchemas(ctx, "bad;name")
		assert.ErrorIs(t, err, validate.ErrValidation)
		assert.Empty(t, conn.calls)
	})

	t.Run("tables fully scoped", func(t *testing.T) {
		c, conn := newTestClient(nameRows)
		defer c.Close()

		_, err := c.ListTables(ctx, "DB1", "PUBLIC")
		require.NoError(t, err)
		assert.Equal(t, "SHOW TABLES IN DB1.PUBLIC", conn.calls[0].query)
	})

	t.Run("tables database only", func(t *testing.T) {
		c, conn := newTestClient(nameRows)
		defer c.Close()

		_, err := c.ListTables(ctx, "DB1", "")
		require.NoError(t, err)
		assert.Equal(t, "SHOW TABLES IN DATABASE DB1", conn.calls[0].query)
	})

	t.Run("columns fully qualified", func(t *testing.T) {
		c, conn := newTestClient(nameRows)
		defer c.Close()

		_, err := c.Columns(ctx, "USERS", "DB1", "PUBLIC")
		require.NoError(t, err)
		assert.Equal(t, "DESCRIBE TABLE DB1.PUBLIC.USERS", conn.calls[0].query)
	})

	t.Run("columns database only uses session schema", func(t *testing.T) {
		c, conn := newTestClient(nameRows)
		defer c.Close()

		_, err := c.Columns(ctx, "USERS", "DB1", "")
		require.NoError(t, err)
		assert.Equal(t, "DESCRIBE TABLE DB1..USERS", conn.calls[0].query)
	})

	t.Run("columns requires table", func(t *testing.T) {
		c, conn := newTestClient()
		defer c.Close()

		_, err := c.Columns(ctx, "", "", "")
		assert.ErrorIs(t, err, validate.ErrValidation)
		assert.Empty(t, conn.calls)
	})

	t.Run("warehouses and roles", func(t *testing.T) {
		c, conn := newTestClient(nameRows, nameRows)
		defer c.Close()

		_, err := c.ListWarehouses(ctx)
		require.NoError(t, err)
		_, err = c.ListRoles(ctx)
		require.NoError(t, err)
		assert.Equal(t, "SHOW WAREHOUSES", conn.calls[0].query)
		assert.Equal(t, "SHOW ROLES", conn.calls[1].query)
	})
}

func TestTestConnection(t *testing.T) {
	ctx := context.Background()

	t.Run("true on scalar 1", func(t *testing.T) {
		c, _ := newTestClient(script{cols: []string{"1"}, rows: [][]driver.Value{{int64(1)}}})
		defer c.Close()

		assert.True(t, c.TestConnection(ctx))
	})

	t.Run("false on unexpected value", func(t *testing.T) {
		c, _ := newTestClient(script{cols: []string{"1"}, rows: [][]driver.Value{{int64(0)}}})
		defer c.Close()

		assert.False(t, c.TestConnection(ctx))
	})

	t.Run("false on query error", func(t *testing.T) {
		c, _ := newTestClient(script{err: errors.New("boom")})
		defer c.Close()

		assert.False(t, c.TestConnection(ctx))
	})

	t.Run("false on connect error", func(t *testing.T) {
		c := newFailingClient(errors.New("no route"))
		defer c.Close()

		assert.False(t, c.TestConnection(ctx))
	})
}
