// Package mcp exposes the 2048 REST API as Model Context Protocol tools.
//
// The Client holds no game state. Every tool call becomes one HTTP request
// against a running server, so an agent sees exactly what browsers and the
// WebSocket stream see.
//
// Tools:
//   - create_session, list_sessions, get_session: session management
//   - game_state: board, score and legal moves
//   - move, bulk_move: play; both take an intent string the agent uses to
//     explain its reasoning
//   - suggest_move: the lookahead planner's choice with per-direction results
//   - auto_play: let the planner play up to a number of moves
//   - reset_game, list_configs, game_instructions
//
// Transport modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer()) for local MCP clients
//   - HTTP: the server mounts /mcp and forwards JSON-RPC bodies to
//     GetMCPServer().HandleMessage
package mcp
