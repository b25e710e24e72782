// Package mcp exposes the 2048 game to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, and the JSON answer is rendered as plain text with the board
// drawn as a numbered grid.
//
// MCP Tools:
//   - new_game: Start a game, optionally with a named rule set
//   - game_state: Board, score, max tile and remaining power-ups
//   - move: Slide the board in one direction
//   - undo, swap_tiles, delete_tiles: Power-ups
//   - move_history: Snapshots that undo can restore
//   - list_games, delete_game: Game management
//   - list_rules: Available rule sets
//   - game_instructions: Rules and strategy notes
//
// Rejected power-ups are returned as ordinary results that start with "✗";
// transport and lookup failures are returned as tool errors.
//
// Transport Modes:
//
//	// Stdio mode, for local MCP clients
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode, mounted on the game server at POST /mcp
//	client.GetMCPServer().HandleMessage(ctx, rawJSON)
package mcp
