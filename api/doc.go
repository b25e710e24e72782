// Package api provides the HTTP REST API for the 2048 game server.
//
// Endpoints:
//
// Game Operations:
//   - POST /api/new-game - Start a game, optionally with {"rules": "<name>"}
//   - POST /api/move - Slide the board: {"game_id": "...", "direction": "left|right|up|down"}
//   - POST /api/undo - Restore the previous board: {"game_id": "..."}
//   - POST /api/swap - Swap two cells: {"game_id": "...", "pos1": [r, c], "pos2": [r, c]}
//   - POST /api/delete - Remove every tile of a value: {"game_id": "...", "number": 8}
//
// Game Lookup:
//   - GET /api/games - List active games
//   - GET /api/game/{id} - Get the current state of a game
//   - DELETE /api/game/{id} - Remove a game
//   - GET /api/game/{id}/history - List undo snapshots
//
// Rules:
//   - GET /api/rules - List available rule sets
//   - GET /api/rules/{name} - Get one rule set
//
// WebSocket:
//   - GET /ws?game_id=<id> - Subscribe to state updates of a game
//
// Move responses carry the full state plus "moved" and "score_delta". An
// unknown direction is answered with moved=false, not an error.
//
// Power-up responses carry the full state plus "success" and "message".
// A rejected power-up (none left, nothing to undo, bad position, value not
// on the board) is still HTTP 200 with success=false and an "error_kind".
//
// Errors are returned as JSON:
//
//	{"error": "Game not found"}
//
// with 400 for malformed bodies and 404 for unknown games or rule sets.
//
// Usage:
//
//	server := api.NewServer(gameService, hub, logger)
//	http.ListenAndServe(":8080", server)
package api
