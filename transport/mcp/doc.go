// Package mcp exposes Mean Bean to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool calls the REST API and renders
// the answer as text an agent can read. Tools:
//   - create_session, list_sessions, get_session
//   - board_state: well, falling pair, next pair and score
//   - move, rotate, drop, pause, resume
//   - list_configs, game_instructions
//
// The same MCP server is served over stdio (the mcp command) and as a
// JSON-RPC endpoint at /mcp on the HTTP server.
package mcp
