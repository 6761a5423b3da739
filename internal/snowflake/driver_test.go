package snowflake

// A minimal scripted database/sql driver. The gosnowflake driver cannot
// run against a test fixture, so client tests inject a handle built on
// this connector via NewWithDB. Each scripted step answers one query in
// order; the SQL text and bind arguments are recorded for assertions.

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"

	"github.com/jmoiron/sqlx"

	"github.com/datapeak/snowmcp/internal/log"
)

type script struct {
	cols []string
	rows [][]driver.Value
	err  error
}

type recordedCall struct {
	query string
	args  []driver.NamedValue
}

type fakeConn struct {
	scripts []script
	step    int
	calls   []recordedCall
}

var _ driver.QueryerContext = (*fakeConn)(nil)

func (c *fakeConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("prepare not scripted") }
func (c *fakeConn) Close() error                        { return nil }
func (c *fakeConn) Begin() (driver.Tx, error)           { return nil, errors.New("transactions not scripted") }

func (c *fakeConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.calls = append(c.calls, recordedCall{query: query, args: args})
	if c.step >= len(c.scripts) {
		return nil, errors.New("unscripted query: " + query)
	}
	s := c.scripts[c.step]
	c.step++
	if s.err != nil {
		return nil, s.err
	}
	return &fakeRows{cols: s.cols, rows: s.rows}, nil
}

type fakeRows struct {
	cols []string
	rows [][]driver.Value
	pos  int
}

func (r *fakeRows) Columns() []string { return r.cols }
func (r *fakeRows) Close() error      { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}

type fakeConnector struct {
	conn       *fakeConn
	connectErr error
}

func (c *fakeConnector) Connect(context.Context) (driver.Conn, error) {
	if c.connectErr != nil {
		return nil, c.connectErr
	}
	return c.conn, nil
}

func (c *fakeConnector) Driver() driver.Driver { return nil }

// newTestClient builds a client over a scripted connection.
func newTestClient(scripts ...script) (*Client, *fakeConn) {
	conn := &fakeConn{scripts: scripts}
	db := sqlx.NewDb(sql.OpenDB(&fakeConnector{conn: conn}), "snowflake")
	return NewWithDB(db, log.NewNop()), conn
}

// newFailingClient builds a client whose connection attempts fail.
func newFailingClient(connectErr error) *Client {
	db := sqlx.NewDb(sql.OpenDB(&fakeConnector{connectErr: connectErr}), "snowflake")
	return NewWithDB(db, log.NewNop())
}
