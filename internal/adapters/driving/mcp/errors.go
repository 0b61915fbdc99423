// Package mcp provides an MCP (Model Context Protocol) server adapter for OmniTicket.
// It lets AI assistants trigger a receipt sync, normalise product names and
// read the ticket history.
package mcp

import "errors"

// ErrMissingSyncService is returned when the sync orchestrator is not provided.
var ErrMissingSyncService = errors.New("mcp: sync service is required")
