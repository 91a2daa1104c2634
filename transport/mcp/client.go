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

	"github.com/wricardo/meanbean/game/arena"
	"github.com/wricardo/meanbean/game/engine"
	"github.com/wricardo/meanbean/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
	handlers   map[string]server.ToolHandlerFunc
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		handlers: make(map[string]server.ToolHandlerFunc),
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Mean Bean",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Mean Bean - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Pairs of colored beans fall into a 6x12 well. Connect 4 or more beans of
one color to clear them; beans above fall and may set off chains. The game
ends when the drop column is blocked.

AVAILABLE TOOLS:
- create_session: Create and start a new game session
- list_sessions / get_session: Inspect sessions
- board_state: Get the current board as text
- move: Shift the falling pair left, right or down
- rotate: Turn the falling pair clockwise (cw) or counterclockwise (ccw)
- drop: Drop the falling pair to the floor
- pause / resume: Stop or restart gravity
- list_configs: List available rule sets
- game_instructions: Full rules and strategy notes

NOTE: Sessions run in real time. Gravity keeps pulling the pair down
between your calls, so read the board right before acting.`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func sessionOnly(name, description string) mcp.Tool {
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.addTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create and start a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Rule set to use (optional, see list_configs)",
				},
			},
		},
	}, c.handleCreateSession)

	c.addTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.addTool(sessionOnly("get_session", "Get details of a specific session"), c.handleGetSession)
	c.addTool(sessionOnly("board_state", "Get the current board, falling pair, next pair and score"), c.handleBoardState)

	// Player commands
	c.addTool(mcp.Tool{
		Name:        "move",
		Description: "Shift the falling pair one cell. Moving down into a blocked cell lands the pair.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"left", "right", "down"},
					"description": "Direction to move",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.addTool(mcp.Tool{
		Name:        "rotate",
		Description: "Rotate the second bean of the falling pair around the first, kicking off walls and the floor when needed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"spin": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"cw", "ccw"},
					"description": "cw for clockwise, ccw for counterclockwise",
				},
			},
			Required: []string{"session_id", "spin"},
		},
	}, c.handleRotate)

	c.addTool(sessionOnly("drop", "Drop the falling pair straight down until it lands"), c.handleCommand("drop"))
	c.addTool(sessionOnly("pause", "Pause gravity"), c.handleCommand("pause"))
	c.addTool(sessionOnly("resume", "Resume a paused game"), c.handleCommand("resume"))

	// Configuration
	c.addTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available rule sets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.addTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete rules, controls and board notation",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

func (c *Client) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	c.handlers[tool.Name] = handler
	c.mcpServer.AddTool(tool, handler)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
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

// stringArg returns a string argument, or "" when missing.
func stringArg(request mcp.CallToolRequest, key string) string {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return ""
	}
	v, _ := args[key].(string)
	return v
}

func requireSession(request mcp.CallToolRequest) (string, error) {
	id := stringArg(request, "session_id")
	if id == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return id, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if configID := stringArg(request, "config_id"); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatSessionInfo(&session)
	if session.Board != nil {
		result += "\n" + formatBoard(session.Board)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(resp.Sessions) == 0 {
		return mcp.NewToolResultText("No active sessions"), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Active sessions (%d):\n", len(resp.Sessions))
	for _, s := range resp.Sessions {
		state, score := "unknown", 0
		if s.Board != nil {
			state, score = s.Board.State.String(), s.Board.Score.Points
		}
		if s.Faulted != "" {
			state = "faulted"
		}
		fmt.Fprintf(&sb, "- %s config=%s state=%s score=%d\n", s.ID, s.ConfigName, state, score)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requireSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+sessionID, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleBoardState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requireSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var board arena.Snapshot
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+sessionID+"/board", nil, &board); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatBoard(&board)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requireSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	direction := stringArg(request, "direction")
	return c.command(ctx, sessionID, "move", map[string]string{"direction": direction})
}

func (c *Client) handleRotate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requireSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	spin := stringArg(request, "spin")
	return c.command(ctx, sessionID, "rotate", map[string]string{"spin": spin})
}

// handleCommand builds a handler for a command without arguments
func (c *Client) handleCommand(action string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := requireSession(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return c.command(ctx, sessionID, action, nil)
	}
}

func (c *Client) command(ctx context.Context, sessionID, action string, body interface{}) (*mcp.CallToolResult, error) {
	var result service.CommandResult
	path := fmt.Sprintf("/api/sessions/%s/%s", sessionID, action)
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []*service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	sb.WriteString("Available configurations:\n")
	for _, cfg := range configs {
		fmt.Fprintf(&sb, "- %s: %s (difficulty %d, gravity every %dms)", cfg.ConfigID, cfg.Name, cfg.Difficulty, cfg.GravityIntervalMS)
		if cfg.Description != "" {
			fmt.Fprintf(&sb, " - %s", cfg.Description)
		}
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Mean Bean - Complete Instructions

GAME OBJECTIVE:
Survive as long as possible and score by clearing beans. Beans arrive in
pairs at the top of column 2. Four or more beans of the same color that
touch horizontally or vertically form a group and are cleared.

THE WELL:
- 6 columns (0-5) and 12 visible rows (0-11, row 11 is the floor).
- Rows -2 and -1 are hidden spawn rows above the well.
- A new pair spawns with its first bean at row -1 and its second at row -2.

BOARD NOTATION:
Each row is printed left to right, one letter per cell:
  R=red Y=yellow G=green V=violet B=blue D=dark .=empty
The falling pair is drawn in the grid as well and described under
CURRENT PAIR.

MOVEMENT COMMANDS:
- move left / right: shift the pair one column if both target cells are free
- move down: drop one row; if blocked the pair lands
- rotate cw / ccw: swing the second bean around the first. Against a wall
  or the floor the first bean is kicked one cell away instead.
- drop: land the pair immediately
- pause / resume: stop or restart gravity

CHAINS:
After a pair lands, any bean with empty space below falls. Groups of 4+
flash, pop and disappear; beans above them fall and the board is checked
again. Each extra pass is one chain level and multiplies the points:
  points = 10 x beans cleared x chain power
  chain power by level: 1, 8, 16, 32, 64, 128, 256, 512, 999

GAME OVER:
The game ends when the spawn cell (column 2, row 0) or any cell of the top
hidden row is occupied when a new pair is due.

STRATEGY NOTES:
- Keep column 2 low; it is the only spawn column.
- Build groups of 3 and finish them with a bean that triggers a fall.
- Stack colors so a clear lets a different color drop onto its group.
- Gravity runs in real time; read board_state right before each command.

Good luck, and watch column 2!`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if session.Faulted != "" {
		fmt.Fprintf(&sb, "FAULTED: %s\n", session.Faulted)
	}
	if b := session.Board; b != nil {
		fmt.Fprintf(&sb, "State: %s  Score: %d  Round: %d\n", b.State, b.Score.Points, b.Rounds)
	}
	return sb.String()
}

func formatCommandResult(result *service.CommandResult) string {
	var sb strings.Builder
	status := "OK"
	if !result.Success {
		status = "REFUSED"
	}
	fmt.Fprintf(&sb, "%s %s: %s\n\n", strings.ToUpper(result.Action), status, result.Message)
	if result.Board != nil {
		sb.WriteString(formatBoard(result.Board))
	}
	return sb.String()
}

func formatBoard(b *arena.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "STATE: %s  PHASE: %s  CHAIN: %d  ROUND: %d\n", b.State, b.Phase, b.ChainLevel, b.Rounds)
	fmt.Fprintf(&sb, "SCORE: %d points, %d beans, %d groups, longest chain %d\n",
		b.Score.Points, b.Score.PiecesCleared, b.Score.GroupsCleared, b.Score.LongestChain)

	sb.WriteString("\nWELL:\n     0 1 2 3 4 5\n")
	for i, row := range b.Rows {
		r := i - engine.HiddenRows
		marker := " "
		if r < 0 {
			marker = "^"
		}
		fmt.Fprintf(&sb, "%3d%s ", r, marker)
		for j, ch := range row {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteRune(ch)
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("(^ = hidden spawn row)\n")

	if p := b.Current; p != nil {
		fmt.Fprintf(&sb, "\nCURRENT PAIR: %s at (col %d, row %d), %s at (col %d, row %d), second bean points %s\n",
			p.ColorA, p.A.Col, p.A.Row, p.ColorB, p.B.Col, p.B.Row, p.Orientation)
	}
	if p := b.Next; p != nil {
		fmt.Fprintf(&sb, "NEXT PAIR: %s / %s\n", p.ColorA, p.ColorB)
	}
	if b.State == engine.StateGameOver {
		sb.WriteString("\nGAME OVER. Create a new session to play again.\n")
	}
	return sb.String()
}
