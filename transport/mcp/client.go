package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/game2048/game/engine"
	"github.com/wricardo/game2048/game/service"
)

// Version is reported to MCP clients
const Version = "1.0.0"

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			// auto_play can run thousands of planner turns
			Timeout: 2 * time.Minute,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"2048",
		Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`2048 - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Slide the tiles of a 4x4 board; equal tiles merge into their sum. Reach the
target tile (2048 by default) and keep going for a higher score.

AVAILABLE TOOLS:
- create_session: Create new game session
- list_sessions: List all active sessions
- get_session: Get session details
- game_state: Get current board and score
- move: Single move (left/right/up/down) - requires intent explanation
- bulk_move: Multiple moves at once - requires intent explanation
- suggest_move: Ask the lookahead planner for the best move
- auto_play: Let the planner play a number of moves
- reset_game: Start over
- list_configs: List available presets
- game_instructions: Rules and strategy tips

NOTE: The 'intent' parameter on move/bulk_move serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional preset selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"config_id": map[string]any{
					"type":        "string",
					"description": "Preset to use, e.g. classic, quick, deep, seeded (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, score and legal moves",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Slide all tiles in a direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
				"direction": map[string]any{
					"type":        "string",
					"enum":        []string{"left", "right", "up", "down"},
					"description": "Direction to slide",
				},
				"intent": map[string]any{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]any{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: fmt.Sprintf("Execute up to %d moves in sequence; stops at the first move that changes nothing", engine.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
				"moves": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "string",
						"enum": []string{"left", "right", "up", "down"},
					},
					"description": "Array of moves",
				},
				"intent": map[string]any{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]any{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	// Planner
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "suggest_move",
		Description: "Ask the lookahead planner which direction to play, with its per-direction analysis",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleSuggest)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "auto_play",
		Description: "Let the planner play several moves on its own",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionIDProperty(),
				"max_moves": map[string]any{
					"type":        "integer",
					"description": fmt.Sprintf("Moves to play (default and maximum %d)", engine.MaxAutoPlayMoves),
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleAutoPlay)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to a fresh board",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of 2048 and tips for playing it well",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
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
		var errResp struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]any {
	args, _ := request.Params.Arguments.(map[string]any)
	if args == nil {
		return map[string]any{}
	}
	return args
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		info.ID, info.ConfigName, formatGameState(info.GameState))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		score, maxTile := 0, 0
		if s.GameState != nil {
			score, maxTile = s.GameState.Score, s.GameState.MaxTile
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Score: %d, Max tile: %d, Created: %s)\n",
			s.ID, s.ConfigName, score, maxTile, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+sessionID, nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)
	reset, _ := args["reset"].(bool)

	// The intent argument is for the caller's benefit only

	body := map[string]any{
		"direction": direction,
		"reset":     reset,
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/move", sessionID), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	movesRaw, _ := args["moves"].([]any)
	reset, _ := args["reset"].(bool)

	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}

	body := map[string]any{
		"moves": moves,
		"reset": reset,
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/bulk-move", sessionID), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) handleSuggest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var result service.SuggestResult
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/suggest", sessionID), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSuggestion(&result.Suggestion) + "\n" + formatGameState(result.GameState)), nil
}

func (c *Client) handleAutoPlay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	body := map[string]int{}
	// JSON numbers arrive as float64
	if n, ok := args["max_moves"].(float64); ok {
		body["max_moves"] = int(n)
	}

	var result service.AutoPlayResult
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/autoplay", sessionID), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatAutoPlayResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Target: %d, Planner depth: %d, Four chance: %.0f%%",
			cfg.ConfigID, cfg.Name, cfg.Description, cfg.Target, cfg.SearchDepth, cfg.FourProbability*100)
		if cfg.Seeded {
			b.WriteString(", fixed seed")
		}
		b.WriteString("\n\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `2048 - Complete Instructions

GAME OBJECTIVE:
Merge tiles on a 4x4 board to build the target tile (2048 in the classic
preset). Reaching it wins the game, but you may keep playing for score.

GAME MECHANICS:
• A move slides every tile as far as it goes in one direction
• Two equal tiles that meet merge into one tile of double value
• A tile merges at most once per move: [2,2,2,2] left becomes [4,4,_,_]
• Each merge adds the new tile's value to your score
• A move that changes nothing is not a move: no tile appears
• After every real move a new tile appears on a random empty cell
  (a 2 most of the time, sometimes a 4)
• The game ends when the board is full and no neighbours are equal

BOARD NOTATION:
Rows are printed top to bottom, "." marks an empty cell.
Positions are (row,col) counted from 0 at the top left.

STRATEGY:
• Keep the largest tile in a corner and build a chain of decreasing
  tiles along one edge
• Prefer moves that keep many cells empty
• Keep rows and columns monotonic (increasing or decreasing)
• Avoid the direction that pulls your big tile out of its corner
• When unsure, call suggest_move: the planner looks several moves ahead,
  assuming the new tile lands where it hurts you most

TOOLS:
• create_session → game_state → move / bulk_move
• suggest_move shows the planner's choice and the quality of every option
• auto_play lets the planner take over for a while

TIPS FOR AGENTS:
• Read possible_moves in the state before moving; other directions are blocked
• bulk_move stops at the first blocked move, so plan short sequences
• Explain your reasoning in the intent argument`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(info *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		info.ID, info.ConfigName,
		info.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(info.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Score: %d | Moves: %d | Max tile: %d\n\n", state.Score, state.Moves, state.MaxTile)
	b.WriteString(state.Grid.String())
	b.WriteString("\n")

	if len(state.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "\nPossible moves: %s", strings.Join(state.PossibleMoves, ", "))
	}
	if state.LastSpawn != nil {
		fmt.Fprintf(&b, "\nNew tile: %d at (%d,%d)", state.LastSpawn.Value, state.LastSpawn.Position.Row, state.LastSpawn.Position.Col)
	}

	if state.Won {
		b.WriteString("\n🎉 TARGET REACHED")
	}
	if state.GameOver {
		b.WriteString("\n💀 GAME OVER")
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}

	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Move successful\n")
	} else {
		b.WriteString("✗ Move changed nothing\n")
	}

	if s := result.Step; s != nil && s.Success {
		fmt.Fprintf(&b, "Step: %s +%d points, %d merge(s)\n", s.Dir, s.ScoreDelta, s.Merges)
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session %s: executed %d of %d moves", sessionID, result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, " (truncated to %d)", result.Limit)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Score: %d → %d (+%d)\n", result.StartScore, result.EndScore, result.ScoreDelta)

	for _, s := range result.Steps {
		fmt.Fprintf(&b, "  %d. %s +%d", s.Idx, s.Dir, s.ScoreDelta)
		if s.Spawn != nil {
			fmt.Fprintf(&b, " (new %d at %d,%d)", s.Spawn.Value, s.Spawn.Position.Row, s.Spawn.Position.Col)
		}
		b.WriteString("\n")
	}

	if result.StopReasonCode != "" {
		fmt.Fprintf(&b, "Stopped: %s", result.StopReasonCode)
		if result.StoppedOnMove > 0 {
			fmt.Fprintf(&b, " at move %d", result.StoppedOnMove)
		}
		if result.StoppedReason != "" {
			fmt.Fprintf(&b, " (%s)", result.StoppedReason)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatSuggestion(s *engine.Suggestion) string {
	if !s.Legal {
		return "No legal move: the game is over.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Suggested move: %s (depth %d, current quality %.0f)\n", s.Move, s.Depth, s.OriginalQuality)
	b.WriteString("Analysis (quality loss, worst-case quality, chance):\n")

	for i, d := range engine.Directions {
		r := s.Results[i]
		if r == nil {
			fmt.Fprintf(&b, "  %-5s blocked\n", d)
			continue
		}
		marker := " "
		if d.String() == s.Move {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %-5s loss %.1f, quality %.0f, p %.3f\n", marker, d, r.QualityLoss, r.Quality, r.Probability)
	}
	return b.String()
}

func formatAutoPlayResult(result *service.AutoPlayResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Planner played %d of %d moves in %s, stopped: %s\n",
		result.MovesExecuted, result.MovesRequested, result.Duration.Round(time.Millisecond), result.StopReasonCode)
	fmt.Fprintf(&b, "Score: %d → %d (+%d)\n", result.StartScore, result.EndScore, result.ScoreDelta)

	if n := len(result.Directions); n > 0 {
		tail := result.Directions
		if n > 20 {
			tail = tail[n-20:]
			fmt.Fprintf(&b, "Last 20 moves: %s\n", strings.Join(tail, " "))
		} else {
			fmt.Fprintf(&b, "Moves: %s\n", strings.Join(tail, " "))
		}
	}

	for _, ev := range result.Events {
		if ev.Type == service.EventWon || ev.Type == service.EventGameOver {
			fmt.Fprintf(&b, "%s: %s\n", ev.Type, ev.Message)
		}
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}
