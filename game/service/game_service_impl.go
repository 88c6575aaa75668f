package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Option configures the game service
type Option func(*gameServiceImpl)

// WithNotifier sets where engine events are pushed
func WithNotifier(n Notifier) Option {
	return func(s *gameServiceImpl) { s.notifier = n }
}

// WithEngineOptions passes options to every engine the service creates
func WithEngineOptions(opts ...engine.Option) Option {
	return func(s *gameServiceImpl) { s.engineOpts = append(s.engineOpts, opts...) }
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions   SessionManager
	configs    ConfigManager
	notifier   Notifier
	engineOpts []engine.Option
	mu         sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	// Fallback: return as-is or "default"
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, opts GameOptions) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.resolveConfig(s.configs.GetDefault(), opts)
	if err != nil {
		return nil, err
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config, s.engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	session.Engine.SetListener(s.listenerFor(session))

	log.Info().
		Str("session", session.ID).
		Str("config", config.Name).
		Str("symbol_type", string(config.SymbolType)).
		Int("size", config.Size).
		Msg("session created")

	configID := opts.ConfigID
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     configID, // Return the config_id, not the display name
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
		GameConfig:     session.Config,
	}, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	log.Info().Str("session", sessionID).Msg("session deleted")
	return nil
}

// NewGame discards the session's current board and starts a new game.
// With empty options the current preset is replayed.
func (s *gameServiceImpl) NewGame(ctx context.Context, sessionID string, opts GameOptions) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	config, err := s.resolveConfig(sess.Engine.GetConfig(), opts)
	if err != nil {
		return nil, err
	}

	if _, err := sess.Engine.NewGameFromConfig(config); err != nil {
		return nil, err
	}
	state := sess.Engine.GetState()
	log.Info().
		Str("session", sess.ID).
		Str("game", state.GameID).
		Str("symbol_type", string(state.SymbolType)).
		Int("size", state.Size).
		Msg("new game started")

	return state, nil
}

// RevealCard flips a card face-up. Ignored input is reported through Changed, not an error.
func (s *gameServiceImpl) RevealCard(ctx context.Context, sessionID string, index int) (*ActionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	changed, events := sess.Engine.RevealCard(index)
	return s.actionResult(sess, changed, events), nil
}

// HideCard flips the single revealed card back down
func (s *gameServiceImpl) HideCard(ctx context.Context, sessionID string, index int) (*ActionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	changed, events := sess.Engine.HideCard(index)
	return s.actionResult(sess, changed, events), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return sess.Engine.GetState(), nil
}

// GetEventHistory returns paginated event history
func (s *gameServiceImpl) GetEventHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return paginate(sess.Engine.GetEventHistory(), opts), nil
}

// ListConfigs returns available game presets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game preset
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game preset to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if err := s.configs.SaveConfig(configName, config); err != nil {
		return err
	}
	log.Info().Str("config", configName).Msg("preset saved")
	return nil
}

// getSession looks up a session and refreshes its access time
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Touch(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	return sess, nil
}

// sessionInfo reports the engine's preset, which changes with each new game
func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	config := sess.Engine.GetConfig()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(config.Name), // Return config_id consistently
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     config,
	}
}

func (s *gameServiceImpl) actionResult(sess *Session, changed bool, events []engine.Event) *ActionResult {
	state := sess.Engine.GetState()
	return &ActionResult{
		Changed:   changed,
		GameState: state,
		Message:   state.Message,
		Events:    events,
	}
}

// resolveConfig builds the preset for a new game: the config id (or base when
// empty) with explicit symbol type and size applied on top. Validation errors
// wrap engine.ErrInvalidSize and engine.ErrInvalidType.
func (s *gameServiceImpl) resolveConfig(base *engine.GameConfig, opts GameOptions) (*engine.GameConfig, error) {
	if opts.ConfigID != "" {
		loaded, err := s.configs.LoadConfig(opts.ConfigID)
		if err != nil {
			return nil, s.configError(opts.ConfigID, err)
		}
		base = loaded
	}
	if base == nil {
		base = engine.DefaultConfig()
	}

	if opts.SymbolType == "" && opts.Size == 0 {
		return base, nil
	}

	config := *base
	if opts.SymbolType != "" {
		config.SymbolType = opts.SymbolType
	}
	if opts.Size != 0 {
		config.Size = opts.Size
	}
	if err := engine.ValidateBoardParams(config.SymbolType, config.Size); err != nil {
		return nil, err
	}
	return &config, nil
}

// configError adds the available preset ids to a lookup failure
func (s *gameServiceImpl) configError(configID string, err error) error {
	available, listErr := s.configs.ListConfigs()
	if listErr != nil || len(available) == 0 {
		return fmt.Errorf("config '%s': %w. Use /api/configs to list available configurations", configID, err)
	}

	ids := make([]string, 0, len(available))
	for _, cfg := range available {
		ids = append(ids, cfg.ConfigID)
	}
	return fmt.Errorf("config '%s': %w. Available configs: %s", configID, err, strings.Join(ids, ", "))
}

// listenerFor forwards engine events, including delayed resolutions, to the notifier
func (s *gameServiceImpl) listenerFor(sess *Session) engine.EventListener {
	id := sess.ID
	eng := sess.Engine
	return func(events []engine.Event) {
		if s.notifier == nil || len(events) == 0 {
			return
		}
		state := eng.GetState()
		for _, ev := range events {
			log.Debug().
				Str("session", id).
				Str("event", string(ev.Type)).
				Int("seq", ev.Seq).
				Int("index", ev.Index).
				Msg("engine event")
			s.notifier.BroadcastEvent(id, ev, state)
		}
	}
}

// paginate slices the history according to opts, newest first by default
func paginate(history []engine.Event, opts HistoryOptions) *HistoryResponse {
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultHistoryLimit
	}
	if opts.Limit > maxHistoryLimit {
		opts.Limit = maxHistoryLimit
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	events := []engine.Event{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				events = append(events, history[i])
			}
		} else {
			events = append(events, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Events:      events,
		TotalEvents: total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}
}

// IsValidationError reports whether err came from rejected board parameters
func IsValidationError(err error) bool {
	return errors.Is(err, engine.ErrInvalidSize) || errors.Is(err, engine.ErrInvalidType)
}
