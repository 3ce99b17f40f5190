// Package driving defines the interfaces through which external actors
// (CLI, HTTP API, MCP server, filesystem watcher) drive the application.
// The retrieval service implements all of them; adapters depend on the
// narrowest interface they need.
package driving
