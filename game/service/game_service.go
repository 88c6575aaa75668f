package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, opts GameOptions) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	NewGame(ctx context.Context, sessionID string, opts GameOptions) (*engine.GameState, error)
	RevealCard(ctx context.Context, sessionID string, index int) (*ActionResult, error)
	HideCard(ctx context.Context, sessionID string, index int) (*ActionResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetEventHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations. Returned sessions are
// copies: the engine is shared but the timestamps are not.
type SessionManager interface {
	Create(id string, config *engine.GameConfig, opts ...engine.Option) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	Touch(id string) (*Session, error)
}

// ConfigManager handles game preset loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Notifier receives events produced outside a request, such as delayed
// match resolution, so they can be pushed to connected clients
type Notifier interface {
	BroadcastEvent(sessionID string, event engine.Event, state *engine.GameState)
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig // preset the session was created with
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
