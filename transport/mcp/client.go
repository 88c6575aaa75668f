package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

const (
	// resolvePollInterval is how often reveal_card polls while a pair resolves
	resolvePollInterval = 100 * time.Millisecond

	// resolveWaitLimit bounds the wait; presets cap the delay at engine.MaxResolveDelay
	resolveWaitLimit = engine.MaxResolveDelay + 2*time.Second
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
		baseURL: strings.TrimSuffix(baseURL, "/"),
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
		"Memory Match Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Memory Match Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Find every pair of matching cards. Cards start face-down; reveal two per turn.

AVAILABLE TOOLS:
- create_session: Create a new game session (preset or explicit symbol type and size)
- list_sessions: List all active sessions
- get_session: Get session details
- game_state: Get the current board
- reveal_card: Flip a card face-up by index
- hide_card: Flip the single revealed card back down
- new_game: Discard the board and deal a new one
- event_history: View past events
- list_configs: List available presets
- game_instructions: Get the complete rules

Remember every symbol you see. A mismatched pair is turned back face-down.`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func boardProperties() map[string]interface{} {
	return map[string]interface{}{
		"config_id": map[string]interface{}{
			"type":        "string",
			"description": "Preset to use (see list_configs)",
		},
		"symbol_type": map[string]interface{}{
			"type":        "string",
			"description": "Card faces: letters or numbers",
			"enum":        []string{string(engine.Letters), string(engine.Numbers)},
		},
		"size": map[string]interface{}{
			"type":        "integer",
			"description": fmt.Sprintf("Board side length, even, %d to %d", engine.MinBoardSize, engine.MaxBoardSize),
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session. Without arguments the default preset is used.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: boardProperties(),
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
		Description: "Get the current board, turn phase and score",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reveal_card",
		Description: "Flip a face-down card face-up. Cards are indexed from 0, row by row. After the second card of a turn the pair is checked once the preset's delay passes.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"index": map[string]interface{}{
					"type":        "integer",
					"description": "Card index (row * size + col)",
				},
				"wait": map[string]interface{}{
					"type":        "boolean",
					"description": "After a second card, wait for the match check and return its outcome (default true)",
				},
			},
			Required: []string{"session_id", "index"},
		},
	}, c.handleRevealCard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "hide_card",
		Description: "Flip the single revealed card back face-down. Only allowed while exactly one card is up.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"index": map[string]interface{}{
					"type":        "integer",
					"description": "Index of the revealed card",
				},
			},
			Required: []string{"session_id", "index"},
		},
	}, c.handleHideCard)

	newGameProps := boardProperties()
	newGameProps["session_id"] = sessionIDProperty()
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Discard the current board and deal a new one. Without board arguments the current preset is replayed.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: newGameProps,
			Required:   []string{"session_id"},
		},
	}, c.handleNewGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "event_history",
		Description: "Get paginated game events (flips, matches, mismatches, wins)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Events per page (default 20, max 100)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"description": "asc or desc (default desc, newest first)",
					"enum":        []string{"asc", "desc"},
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleEventHistory)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete rules and a playing strategy",
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

// Argument helpers

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

// intArg accepts JSON numbers and numeric strings
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), v == float64(int(v))
	case int:
		return v, true
	case json.Number:
		n, err := strconv.Atoi(v.String())
		return n, err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}

func boolArg(args map[string]interface{}, key string, def bool) bool {
	if b, ok := args[key].(bool); ok {
		return b
	}
	return def
}

func gameOptionsArg(args map[string]interface{}) service.GameOptions {
	size, _ := intArg(args, "size")
	return service.GameOptions{
		ConfigID:   stringArg(args, "config_id"),
		SymbolType: engine.SymbolType(stringArg(args, "symbol_type")),
		Size:       size,
	}
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", gameOptionsArg(arguments(request)), &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		session.ID, session.ConfigName, formatGameState(session.GameState))
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
		progress := ""
		if s.GameState != nil {
			progress = fmt.Sprintf(", Pairs: %d/%d", s.GameState.Matches, s.GameState.TotalPairs)
			if s.GameState.Won {
				progress += ", won"
			}
		}
		fmt.Fprintf(&b, "- %s (Config: %s%s, Created: %s)\n",
			s.ID, s.ConfigName, progress, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+sessionID, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	state, err := c.fetchState(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(state)), nil
}

func (c *Client) handleRevealCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")
	index, ok := intArg(args, "index")
	if sessionID == "" || !ok {
		return mcp.NewToolResultError("session_id and an integer index are required"), nil
	}

	var result service.ActionResult
	path := fmt.Sprintf("/api/sessions/%s/reveal", sessionID)
	if err := c.apiCall(ctx, "POST", path, map[string]int{"index": index}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Show the pair while it is still face-up, then the outcome of the check
	text := formatActionResult("Reveal", index, &result)
	if result.Changed && boolArg(args, "wait", true) &&
		result.GameState != nil && result.GameState.Phase == engine.PhaseResolving {
		resolved, err := c.waitForResolution(ctx, sessionID, result.GameState.GameID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text += "\n\nAfter the match check:\n" + formatGameState(resolved)
	}

	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleHideCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")
	index, ok := intArg(args, "index")
	if sessionID == "" || !ok {
		return mcp.NewToolResultError("session_id and an integer index are required"), nil
	}

	var result service.ActionResult
	path := fmt.Sprintf("/api/sessions/%s/hide", sessionID)
	if err := c.apiCall(ctx, "POST", path, map[string]int{"index": index}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult("Hide", index, &result)), nil
}

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	var response struct {
		Message   string            `json:"message"`
		GameState *engine.GameState `json:"game_state"`
	}
	path := fmt.Sprintf("/api/sessions/%s/new-game", sessionID)
	if err := c.apiCall(ctx, "POST", path, gameOptionsArg(args), &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("New game started\n\n" + formatGameState(response.GameState)), nil
}

func (c *Client) handleEventHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	query := fmt.Sprintf("/api/sessions/%s/history?", sessionID)
	if page, ok := intArg(args, "page"); ok && page > 0 {
		query += fmt.Sprintf("page=%d&", page)
	}
	if limit, ok := intArg(args, "limit"); ok && limit > 0 {
		query += fmt.Sprintf("limit=%d&", limit)
	}
	if order := stringArg(args, "order"); order != "" {
		query += "order=" + order
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", strings.TrimRight(query, "&?"), nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s\n  %s\n  Board: %dx%d %s, %d pairs, check delay %dms\n\n",
			config.ConfigID, config.Description, config.Size, config.Size,
			config.SymbolType, config.Size*config.Size/2, config.ResolveDelayMs)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🃏 Memory Match Game - Complete Instructions

GAME OBJECTIVE:
Find every pair of matching cards. A board of size N has N×N cards holding N×N/2 pairs.

BOARD:
• Cards are indexed from 0, row by row: index = row * size + col
• Faces are letters (A, B, C, ...) or numbers (1, 2, 3, ...)
• Sizes are even, from 2 to 8

GRID LEGEND:
• [?] - Face-down card
• [A] - Face-up card showing its symbol
• [✓] - Matched card (out of play)

TURN RULES:
1. reveal_card flips a face-down card face-up
2. A second reveal_card flips another card; the pair is then checked
3. While the check runs no card can be revealed
4. A match keeps both cards out of play; a mismatch flips both back face-down
5. hide_card turns the single revealed card back before picking a second one
6. Revealing a matched card, the same card twice, or an index off the board changes nothing

VICTORY CONDITIONS:
• The game is won when every pair is matched
• new_game deals a fresh board at any time

STRATEGY:
• Keep a written map of index → symbol for every card you have seen
• If the first card of a turn matches a symbol you already know, reveal its partner
• Otherwise reveal an unseen card as the second pick to learn more of the board
• event_history lists every flip if you lose track

Good luck, and remember what you see!`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) fetchState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	var state engine.GameState
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// waitForResolution polls until the pair revealed in gameID has been checked
func (c *Client) waitForResolution(ctx context.Context, sessionID, gameID string) (*engine.GameState, error) {
	ctx, cancel := context.WithTimeout(ctx, resolveWaitLimit)
	defer cancel()

	ticker := time.NewTicker(resolvePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timed out waiting for the match check: %w", ctx.Err())
		case <-ticker.C:
		}

		state, err := c.fetchState(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if state.Phase != engine.PhaseResolving || state.GameID != gameID {
			return state, nil
		}
	}
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	fmt.Fprintf(&result, "Board: %dx%d %s | Pairs: %d/%d | Phase: %s\n\n",
		state.Size, state.Size, state.SymbolType, state.Matches, state.TotalPairs, state.Phase)

	grid := state.Grid
	if len(grid) == 0 {
		grid = engine.RenderGrid(state)
	}
	for _, row := range grid {
		result.WriteString(row)
		result.WriteString("\n")
	}

	// Face-up cards, so agents need not parse the grid
	var up []string
	for _, card := range state.Cards {
		if card.FaceUp {
			up = append(up, fmt.Sprintf("#%d=%s", card.Index, card.Symbol))
		}
	}
	if len(up) > 0 {
		fmt.Fprintf(&result, "\nFace-up: %s\n", strings.Join(up, ", "))
	}

	if state.Won {
		result.WriteString("\n🎉 VICTORY!")
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

func formatActionResult(action string, index int, result *service.ActionResult) string {
	var b strings.Builder
	if result.Changed {
		fmt.Fprintf(&b, "✓ %s card %d\n\n", action, index)
	} else {
		fmt.Fprintf(&b, "✗ %s card %d ignored (matched, already up, off the board, or not allowed in this phase)\n\n", action, index)
	}
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event History (Page %d/%d), Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalEvents)

	for _, ev := range history.Events {
		fmt.Fprintf(&b, "%d. %s", ev.Seq, ev.Type)
		switch ev.Type {
		case engine.EventCardFlipped:
			fmt.Fprintf(&b, " #%d", ev.Index)
		case engine.EventCardsMatched, engine.EventCardsMismatched:
			fmt.Fprintf(&b, " #%d #%d", ev.Index, ev.Index2)
		}
		if ev.Message != "" {
			fmt.Fprintf(&b, ": %s", ev.Message)
		}
		b.WriteString("\n")
	}

	return b.String()
}
