package service

import (
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// GameOptions selects the board for a new game. A config id picks a preset;
// explicit symbol type and size override the preset's values.
type GameOptions struct {
	ConfigID   string            `json:"config_id,omitempty"`
	SymbolType engine.SymbolType `json:"symbol_type,omitempty"`
	Size       int               `json:"size,omitempty"`
}

// ActionResult contains the result of a reveal or hide
type ActionResult struct {
	Changed   bool              `json:"changed"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []engine.Event    `json:"events,omitempty"`
}

// HistoryOptions configures event history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated event history
type HistoryResponse struct {
	Events      []engine.Event `json:"events"`
	TotalEvents int            `json:"total_events"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	TotalPages  int            `json:"total_pages"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}

// ConfigInfo provides information about a game preset
type ConfigInfo struct {
	Filename       string            `json:"filename"`
	ConfigID       string            `json:"config_id"` // The identifier to use for session creation
	Name           string            `json:"name"`      // Display name
	Description    string            `json:"description"`
	SymbolType     engine.SymbolType `json:"symbol_type"`
	Size           int               `json:"size"`
	ResolveDelayMs int               `json:"resolve_delay_ms"`
}
