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
	"github.com/wricardo/snake-game/game/engine"
	"github.com/wricardo/snake-game/game/render"
	"github.com/wricardo/snake-game/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Snake Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Snake Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Steer the snake (H head, o body) to the food (F). Each food grows the snake by one
and adds the configured reward. Hitting a wall or any body cell ends the game.
Fill the whole board to win.

AVAILABLE TOOLS:
- create_session: Create new game session (manual ticking by default)
- list_sessions: List all active sessions
- get_session: Get session details
- game_state: Get current board and score
- set_direction: Buffer a turn, optionally followed by ticks
- tick: Advance a manual session by N ticks
- reset_game: Restart the game
- list_configs: List available configurations
- game_instructions: Get comprehensive game instructions and rules
- describe_cell: Get what occupies a specific grid cell

NOTE: The 'intent' parameter on set_direction serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use, see list_configs (optional, defaults to classic)",
				},
				"realtime": map[string]interface{}{
					"type":        "boolean",
					"description": "Tick on a timer like a human game instead of waiting for the tick tool (default false)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, score and phase",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_direction",
		Description: "Turn the snake. The turn applies on the next tick; turns along the current axis are ignored. The first turn starts the game.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "New heading",
				},
				"ticks": map[string]interface{}{
					"type":        "integer",
					"description": "Ticks to advance after turning (optional, manual sessions)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this turn (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleSetDirection)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tick",
		Description: "Advance a running game by a number of ticks, stopping early on game over",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"steps": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Ticks to execute (default 1, max %d)", service.MaxTickSteps),
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleTick)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to a fresh board; it starts running immediately",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe what occupies a specific cell: head, body, food, empty or off the board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column, 0-based, grows to the right)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row, 0-based, grows downwards)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)
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

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads a JSON number argument; ok is false when it is absent
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)
	realtime, _ := args["realtime"].(bool)

	body := map[string]interface{}{"manual": !realtime}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\nMode: %s\n", session.ID, session.ConfigName, session.Mode)
	if session.State != nil {
		result += "\n" + formatSnapshot(session.State)
	}
	return mcp.NewToolResultText(result), nil
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
		phase, score := engine.NotStarted, 0
		if s.State != nil {
			phase, score = s.State.Phase, s.State.Score
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Mode: %s, Phase: %s, Score: %d, Created: %s)\n",
			s.ID, s.ConfigName, s.Mode, phase, score, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var snap engine.Snapshot
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSnapshot(&snap)), nil
}

func (c *Client) handleSetDirection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)
	ticks, _ := intArg(args, "ticks")

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = args["intent"]

	var turn service.DirectionResult
	body := map[string]string{"direction": direction}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/direction"), body, &turn); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatDirectionResult(&turn)
	if ticks <= 0 {
		return mcp.NewToolResultText(result + "\n" + formatSnapshot(&turn.State)), nil
	}

	var tick service.TickResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/tick"), map[string]int{"steps": ticks}, &tick); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result + "\n" + formatTickResult(&tick)), nil
}

func (c *Client) handleTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	steps, ok := intArg(args, "steps")
	if !ok {
		steps = 1
	}

	var tick service.TickResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/tick"), map[string]int{"steps": steps}, &tick); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatTickResult(&tick)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string          `json:"message"`
		State   engine.Snapshot `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatSnapshot(&response.State))), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "- %s: %s (%dx%d, %dms per tick, %d points per food)\n",
			cfg.ConfigID, cfg.Name, cfg.GridSize, cfg.GridSize, cfg.TickIntervalMs, cfg.FoodReward)
		if cfg.Description != "" {
			fmt.Fprintf(&b, "  %s\n", cfg.Description)
		}
	}
	b.WriteString("\nUse create_session with config_id to start a game with a specific configuration.")
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `# Snake Game Instructions

## Objective
Eat as much food as possible without crashing. The game is won when the snake fills the board.

## Board
- Coordinates are (x,y) with (0,0) in the top-left corner
- x grows to the right, y grows downwards
- up is y-1, down is y+1, left is x-1, right is x+1

## Symbols
- H: Snake head
- o: Snake body
- F: Food
- .: Empty cell

## Rules
1. The snake moves one cell per tick in its current heading
2. A turn is buffered and applied on the next tick; only the last turn before a tick counts
3. Turns along the current axis (including reversing) are ignored
4. Eating food grows the snake by one and adds the configured reward
5. Moving off the board ends the game (cause: wall)
6. Moving onto any body cell ends the game (cause: self); the tail counts even though it is about to move
7. New food appears on a random free cell; when none is left the game is won

## Phases
- not_started: waiting for the first turn (or the start endpoint)
- running: ticking
- over: crashed, use reset_game to play again
- won: board filled

## Agent Workflow
1. create_session (manual by default, so the snake only moves when you call tick)
2. game_state to see the board and the safe moves
3. set_direction with an optional ticks count to turn and advance in one call
4. tick to keep moving straight
5. reset_game after a game over

## Tips
- Check "Safe moves" in game_state before every turn
- A manual session never moves while you think
- Count ticks to the food: |dx| + |dy| from the head`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}

	var snap engine.Snapshot
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(describeCell(&snap, engine.Cell{X: x, Y: y})), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", session.ID)
	fmt.Fprintf(&b, "Config: %s\n", session.ConfigName)
	fmt.Fprintf(&b, "Mode: %s\n", session.Mode)
	fmt.Fprintf(&b, "Created: %s\n", session.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Last Accessed: %s\n", session.LastAccessedAt.Format(time.RFC3339))
	if session.GameConfig != nil {
		fmt.Fprintf(&b, "Board: %dx%d, %dms per tick, %d points per food\n",
			session.GameConfig.GridSize, session.GameConfig.GridSize,
			session.GameConfig.TickIntervalMs, session.GameConfig.FoodReward)
	}
	if session.State != nil {
		b.WriteString("\n" + formatSnapshot(session.State))
	}
	return b.String()
}

func formatSnapshot(snap *engine.Snapshot) string {
	var b strings.Builder
	b.WriteString(render.Text(*snap))
	b.WriteString("\n")

	fmt.Fprintf(&b, "Head: (%d,%d)\n", snap.Head.X, snap.Head.Y)
	if snap.HasFood {
		fmt.Fprintf(&b, "Food: (%d,%d), %d ticks away\n", snap.Food.X, snap.Food.Y, manhattan(snap.Head, snap.Food))
	}

	switch snap.Phase {
	case engine.Over:
		fmt.Fprintf(&b, "GAME OVER (%s collision)\n", snap.Cause)
	case engine.Won:
		b.WriteString("VICTORY! The board is full\n")
	case engine.NotStarted:
		b.WriteString("Waiting for the first turn\n")
		fallthrough
	default:
		moves := safeMoves(snap)
		if len(moves) == 0 {
			b.WriteString("Safe moves: none\n")
		} else {
			fmt.Fprintf(&b, "Safe moves: %s\n", strings.Join(moves, ", "))
		}
	}
	return b.String()
}

func formatDirectionResult(result *service.DirectionResult) string {
	if result.Accepted {
		return fmt.Sprintf("✓ Turn %s buffered for the next tick\n", result.Direction)
	}
	msg := fmt.Sprintf("✗ Turn %s ignored", result.Direction)
	if result.Message != "" {
		msg += ": " + result.Message
	}
	return msg + "\n"
}

func formatTickResult(result *service.TickResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticks: %d/%d executed", result.TicksExecuted, result.RequestedTicks)
	if result.Truncated {
		fmt.Fprintf(&b, " (capped at %d)", result.Limit)
	}
	b.WriteString("\n")
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s\n", result.StoppedReason)
	}
	fmt.Fprintf(&b, "Food eaten: %d (+%d points)\n", result.FoodEaten, result.ScoreDelta)

	for _, event := range result.Events {
		fmt.Fprintf(&b, "  tick %d: %s at (%d,%d)\n", event.Tick, event.Message, event.Position.X, event.Position.Y)
	}

	b.WriteString("\n" + formatSnapshot(&result.State))
	return b.String()
}

// safeMoves lists the headings whose next cell is on the board and not part of the snake
func safeMoves(snap *engine.Snapshot) []string {
	if len(snap.Snake) == 0 {
		return nil
	}
	heading, _ := engine.ParseDirection(snap.Direction)

	var moves []string
	for _, d := range engine.Directions {
		if d != heading && d.Parallel(heading) {
			continue
		}
		next := snap.Head.Add(d)
		if !engine.InBounds(next, snap.GridSize) || snap.Occupied(next) {
			continue
		}
		moves = append(moves, d.String())
	}
	return moves
}

func describeCell(snap *engine.Snapshot, c engine.Cell) string {
	if !engine.InBounds(c, snap.GridSize) {
		return fmt.Sprintf("Cell (%d,%d) is off the %dx%d board: moving there is a wall collision", c.X, c.Y, snap.GridSize, snap.GridSize)
	}

	what := "empty"
	switch {
	case len(snap.Snake) > 0 && c == snap.Head:
		what = "the snake head (H)"
	case snap.Occupied(c):
		for i, seg := range snap.Snake {
			if seg == c {
				what = fmt.Sprintf("snake body (o), segment %d of %d", i, len(snap.Snake)-1)
				break
			}
		}
	case snap.HasFood && c == snap.Food:
		what = "food (F)"
	}

	return fmt.Sprintf("Cell (%d,%d): %s\nDistance from head: %d", c.X, c.Y, what, manhattan(snap.Head, c))
}

func manhattan(a, b engine.Cell) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ServeHTTP handles single JSON-RPC messages posted to the /mcp endpoint
func (c *Client) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	response := c.mcpServer.HandleMessage(r.Context(), body)

	responseData, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(responseData)
}
