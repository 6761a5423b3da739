// Package mcp implements the Model Context Protocol server for
// Snowflake.
//
// The server exposes the warehouse as MCP tools (validated SQL
// execution, metadata listings, Cortex AI calls) and resources (JSON
// snapshots of the listings and the Cortex service configuration) so
// that MCP clients such as Claude Desktop or the MCP inspector can
// work against Snowflake over stdio.
//
// # Architecture
//
//	MCP client
//	     |  (MCP protocol over stdio)
//	     v
//	Server (official go-sdk)
//	     +-- tool handlers    query.go, metadata.go, cortex.go
//	     +-- resource handlers resources.go
//	     |
//	     v
//	snowflake.Client / registry.Registry
//
// Dependencies are injected once at construction: the server never
// builds a warehouse client lazily, so there is no init race and a
// misconfigured client simply makes every call report a configuration
// error.
//
// # Error handling
//
// Tool handlers never return protocol-level errors for warehouse or
// validation failures. Every error kind from the client, the validators
// and the registry is translated in one place (errorResult in util.go)
// into a prefixed text result with IsError set, so clients always get a
// readable message and the transport never sees a Go error.
package mcp
