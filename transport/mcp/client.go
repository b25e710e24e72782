package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/wricardo/power-2048/game/engine"
	"github.com/wricardo/power-2048/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
	logger     *zap.Logger
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: zap.NewNop(),
	}

	c.initMCPServer()
	return c
}

// WithLogger sets the logger used for tool calls
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Power 2048",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Power 2048 - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Slide numbered tiles on a 4x4 board. Equal tiles merge into their sum. Reach 2048.

AVAILABLE TOOLS:
- new_game: Start a game and get its game_id
- game_state: Get the board, score and remaining power-ups
- move: Slide the board (left/right/up/down) - requires intent explanation
- undo: Restore the previous board (power-up)
- swap_tiles: Swap the contents of two cells (power-up)
- delete_tiles: Remove every tile with a given number (power-up)
- move_history: View the snapshots undo can restore
- list_games: List active games
- delete_game: Remove a game
- list_rules: List available rule sets
- game_instructions: Get the full rules and strategy notes

NOTE: The 'intent' parameter on move serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func gameIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Game ID returned by new_game",
	}
}

func positionProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "integer", "minimum": 0, "maximum": engine.BoardSize - 1},
		"minItems":    2,
		"maxItems":    2,
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Game lifecycle
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Start a new 2048 game with optional rule set selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"rules": map[string]interface{}{
					"type":        "string",
					"description": "Name of the rule set to use (optional, see list_rules)",
				},
			},
		},
	}, c.handleNewGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List all active games",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListGames)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_game",
		Description: "Delete a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
			},
			Required: []string{"game_id"},
		},
	}, c.handleDeleteGame)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, score and remaining power-ups",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
			},
			Required: []string{"game_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Slide all tiles in a direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to slide",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"game_id", "direction"},
		},
	}, c.handleMove)

	// Power-ups
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "undo",
		Description: "Restore the board and score from before the last move. Uses one undo power-up.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
			},
			Required: []string{"game_id"},
		},
	}, c.handleUndo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "swap_tiles",
		Description: "Swap the contents of two cells. Uses one swap power-up.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"pos1":    positionProperty("First cell as [row, col], 0-based"),
				"pos2":    positionProperty("Second cell as [row, col], 0-based"),
			},
			Required: []string{"game_id", "pos1", "pos2"},
		},
	}, c.handleSwap)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_tiles",
		Description: "Remove every tile showing a number. Uses one delete power-up.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
				"number": map[string]interface{}{
					"type":        "integer",
					"description": "Tile value to remove, e.g. 2 or 8",
				},
			},
			Required: []string{"game_id", "number"},
		},
	}, c.handleDeleteTiles)

	// History
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "List the recorded snapshots that undo can restore, oldest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": gameIDProperty(),
			},
			Required: []string{"game_id"},
		},
	}, c.handleMoveHistory)

	// Rules and help
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rules",
		Description: "List available rule sets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRules)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, name string) (int, bool) {
	switch v := args[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

// positionArg reads a [row, col] argument. Malformed values are passed on
// as-is so the server answers with invalid_position.
func positionArg(args map[string]interface{}, name string) []int {
	raw, _ := args[name].([]interface{})
	pos := make([]int, 0, len(raw))
	for _, v := range raw {
		n, ok := v.(float64)
		if !ok {
			return nil
		}
		pos = append(pos, int(n))
	}
	return pos
}

// Tool handlers

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	rules, _ := args["rules"].(string)

	body := map[string]string{}
	if rules != "" {
		body["rules"] = rules
	}

	var view service.GameView
	if err := c.apiCall(ctx, "POST", "/api/new-game", body, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created game: %s\nRules: %s\n\n%s", view.GameID, view.Rules, formatGameView(&view))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int                   `json:"count"`
		Games []service.SessionInfo `json:"games"`
	}

	if err := c.apiCall(ctx, "GET", "/api/games", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Games (%d):\n\n", response.Count)
	for _, g := range response.Games {
		status := ""
		if g.GameOver {
			status = ", game over"
		}
		result += fmt.Sprintf("- %s (Rules: %s, Score: %d, Max tile: %d%s, Last used: %s)\n",
			g.ID, g.Rules, g.Score, g.MaxTile, status, g.LastAccessedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleDeleteGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, _ := arguments(request)["game_id"].(string)

	var response struct {
		Message string `json:"message"`
	}
	if err := c.apiCall(ctx, "DELETE", "/api/game/"+url.PathEscape(gameID), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response.Message), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, _ := arguments(request)["game_id"].(string)

	var view service.GameView
	if err := c.apiCall(ctx, "GET", "/api/game/"+url.PathEscape(gameID), nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameView(&view)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, _ := args["game_id"].(string)
	direction, _ := args["direction"].(string)

	// intent is not forwarded to the API
	if intent, _ := args["intent"].(string); intent != "" {
		c.logger.Debug("move intent",
			zap.String("game_id", gameID),
			zap.String("direction", direction),
			zap.String("intent", intent))
	}

	body := map[string]string{
		"game_id":   gameID,
		"direction": direction,
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", "/api/move", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleUndo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, _ := arguments(request)["game_id"].(string)
	return c.powerUp(ctx, "/api/undo", map[string]interface{}{"game_id": gameID})
}

func (c *Client) handleSwap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, _ := args["game_id"].(string)

	return c.powerUp(ctx, "/api/swap", map[string]interface{}{
		"game_id": gameID,
		"pos1":    positionArg(args, "pos1"),
		"pos2":    positionArg(args, "pos2"),
	})
}

func (c *Client) handleDeleteTiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	gameID, _ := args["game_id"].(string)

	number, ok := intArg(args, "number")
	if !ok {
		return mcp.NewToolResultError("number must be an integer"), nil
	}

	return c.powerUp(ctx, "/api/delete", map[string]interface{}{
		"game_id": gameID,
		"number":  number,
	})
}

// powerUp posts a power-up request. A rejected power-up is reported as a
// normal result so the agent can read the reason.
func (c *Client) powerUp(ctx context.Context, path string, body map[string]interface{}) (*mcp.CallToolResult, error) {
	var result service.PowerUpResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatPowerUpResult(&result)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	gameID, _ := arguments(request)["game_id"].(string)

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", "/api/game/"+url.PathEscape(gameID)+"/history", nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var rules []service.RulesInfo
	if err := c.apiCall(ctx, "GET", "/api/rules", nil, &rules); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Rule Sets:\n\n"
	for _, r := range rules {
		result += fmt.Sprintf("• %s (id: %s)\n  %s\n  Power-ups: undo %d, swap %d, delete %d. History: %d. Chance of 4: %.0f%%\n\n",
			r.Name, r.RulesID, r.Description,
			r.PowerUps.Undo, r.PowerUps.Swap, r.PowerUps.Delete,
			r.HistoryLimit, r.FourProbability*100)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🎮 Power 2048 - Complete Instructions

GAME OBJECTIVE:
Combine tiles on a 4x4 board until a tile reaches 2048. You can keep playing after that.

GAME MECHANICS:
• Move: Every tile slides as far as it can in the chosen direction
• Merge: Two equal tiles that meet merge into one tile with their sum
• Each tile merges at most once per move: [2,2,2,2] moving left becomes [4,4,_,_]
• Score: Every merge adds the merged value to the score
• Spawn: After a move that changed the board, a new tile appears in a random empty cell (2, or sometimes 4)
• A move that changes nothing does not spawn a tile and does not count

BOARD COORDINATES:
• Rows and columns are 0-based, [0, 0] is the top-left cell
• Empty cells are shown as "."

POWER-UPS (limited uses per game, see game_state):
• undo: Restore the board and score from before the last move
  - Needs at least one move in the history ("No moves to undo" otherwise)
  - Power-up counts are not restored by undo
• swap_tiles: Swap two cells, e.g. pos1 [0,0] and pos2 [3,3]
  - Both positions must be on the board
  - Swapping two empty cells still uses the power-up
• delete_tiles: Remove every tile with a number, e.g. 2
  - Fails if no tile shows that number
• A rejected power-up does not use a charge and does not change the board
• When no charges are left the power-up reports "No <name> power-ups left"

GAME OVER:
• The game is over when the board is full and no two neighbouring tiles are equal
• Power-ups still work after game over, so undo or delete can rescue a lost game

🤖 STRATEGY NOTES FOR AI AGENTS:
- Keep your largest tile in a corner and build a descending chain along one edge
- Prefer two or three directions; use the fourth only when forced
- Read the board row by row before each move and predict the merge result
- Save delete_tiles for clogged boards full of small tiles
- Use swap_tiles to line up two equal tiles that are otherwise stuck apart
- Explain each move in the intent field before you make it

RULE SETS:
- list_rules shows the available variants (power-up counts, undo depth, chance of a 4)
- Pass a rule set name to new_game to use it

Good luck reaching 2048! 🧩`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

// formatBoard renders a board as a fixed-width grid with row and column numbers
func formatBoard(board engine.Board) string {
	var sb strings.Builder
	sb.WriteString("     ")
	for col := 0; col < engine.BoardSize; col++ {
		fmt.Fprintf(&sb, "%5d", col)
	}
	sb.WriteString("\n")

	for row := 0; row < engine.BoardSize; row++ {
		fmt.Fprintf(&sb, "%5d", row)
		for col := 0; col < engine.BoardSize; col++ {
			if v := board[row][col]; v == 0 {
				fmt.Fprintf(&sb, "%5s", ".")
			} else {
				fmt.Fprintf(&sb, "%5d", v)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatPowerUps(p engine.PowerUps) string {
	return fmt.Sprintf("Power-ups: undo %d, swap %d, delete %d", p.Undo, p.Swap, p.Delete)
}

func formatGameView(view *service.GameView) string {
	var sb strings.Builder

	if view.GameOver {
		sb.WriteString("💀 GAME OVER\n\n")
	} else if view.MaxTile >= 2048 {
		sb.WriteString("🎉 2048 REACHED!\n\n")
	}

	fmt.Fprintf(&sb, "Game: %s\n", view.GameID)
	fmt.Fprintf(&sb, "Score: %d\n", view.Score)
	fmt.Fprintf(&sb, "Max tile: %d\n", view.MaxTile)
	fmt.Fprintf(&sb, "Moves: %d\n", view.Moves)
	sb.WriteString(formatPowerUps(view.PowerUps) + "\n\n")
	sb.WriteString(formatBoard(view.Board))

	return sb.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var sb strings.Builder

	if result.Moved {
		fmt.Fprintf(&sb, "✓ Moved %s", result.Direction)
		if result.ScoreDelta > 0 {
			fmt.Fprintf(&sb, " (+%d)", result.ScoreDelta)
		}
		sb.WriteString("\n\n")
	} else {
		fmt.Fprintf(&sb, "✗ Move %s changed nothing\n\n", result.Direction)
	}

	sb.WriteString(formatGameView(&result.GameView))
	return sb.String()
}

func formatPowerUpResult(result *service.PowerUpResult) string {
	var sb strings.Builder

	if result.Success {
		fmt.Fprintf(&sb, "✓ %s\n\n", result.Message)
	} else {
		fmt.Fprintf(&sb, "✗ %s", result.Message)
		if result.ErrorKind != "" {
			fmt.Fprintf(&sb, " (%s)", result.ErrorKind)
		}
		sb.WriteString("\n\n")
	}

	sb.WriteString(formatGameView(&result.GameView))
	return sb.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "History for %s: %d/%d snapshots (oldest first)\n", history.GameID, history.Count, history.Limit)

	for i, snap := range history.Snapshots {
		label := ""
		if i == len(history.Snapshots)-1 {
			label = " (current)"
		}
		fmt.Fprintf(&sb, "\n#%d score %d%s\n", i, snap.Score, label)
		sb.WriteString(formatBoard(snap.Board))
	}

	return sb.String()
}
