package engine

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	NewGame(symbolType SymbolType, size int) ([]Event, error)
	NewGameFromConfig(config *GameConfig) ([]Event, error)
	Reset() []Event
	IsWon() bool
	GetPhase() Phase
	GetMatches() int
	GetTotalPairs() int
	GameID() string

	// Turn operations
	RevealCard(index int) (bool, []Event)
	HideCard(index int) (bool, []Event)

	// Configuration
	GetConfig() *GameConfig

	// History
	GetEventHistory() []Event
	GetLastEvent() *Event
}

// EventListener receives events in the order they were produced.
// It is called without the engine lock held but must not call
// RevealCard, HideCard, NewGame or Reset synchronously.
type EventListener func(events []Event)

// Option configures a GameEngine
type Option func(*GameEngine)

// WithScheduler sets the scheduler used for delayed resolution
func WithScheduler(s Scheduler) Option {
	return func(e *GameEngine) { e.scheduler = s }
}

// WithRand sets the random source used to shuffle boards
func WithRand(rng *rand.Rand) Option {
	return func(e *GameEngine) { e.rng = rng }
}

// WithListener sets the event listener
func WithListener(l EventListener) Option {
	return func(e *GameEngine) { e.listener = l }
}

// GameEngine implements the Engine interface. All transitions, including
// timer callbacks, run under mu so the game behaves as a single logical thread.
type GameEngine struct {
	mu         sync.Mutex
	dispatchMu sync.Mutex

	config    *GameConfig
	board     *Board
	gameID    string
	phase     Phase
	upOne     int
	upTwo     int
	matches   int
	message   string
	startedAt time.Time
	games     int

	history []Event
	seq     int
	outbox  [][]Event

	scheduler Scheduler
	rng       *rand.Rand
	listener  EventListener
	pending   func() bool
}

// NewEngine creates a new game engine and starts the first game described by config
func NewEngine(config *GameConfig, opts ...Option) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{
		config:    config,
		scheduler: TimerScheduler{},
		upOne:     -1,
		upTwo:     -1,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.mu.Lock()
	events, err := e.startLocked(config.SymbolType, config.Size)
	e.queueLocked(events)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	e.flush()

	return e, nil
}

// NewEngineWithDefaults creates a new game engine with the default configuration
func NewEngineWithDefaults(opts ...Option) *GameEngine {
	e, err := NewEngine(DefaultConfig(), opts...)
	if err != nil {
		// The default configuration is always valid
		panic(err)
	}
	return e
}

// SetListener replaces the event listener
func (e *GameEngine) SetListener(l EventListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = l
}

// NewGame discards the current board and starts a new game.
// Invalid parameters are reported before anything changes.
func (e *GameEngine) NewGame(symbolType SymbolType, size int) ([]Event, error) {
	if err := ValidateBoardParams(symbolType, size); err != nil {
		return nil, err
	}

	e.mu.Lock()
	events, err := e.startLocked(symbolType, size)
	e.queueLocked(events)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	e.flush()
	return events, nil
}

// NewGameFromConfig switches the engine to another preset and starts a game with it
func (e *GameEngine) NewGameFromConfig(config *GameConfig) ([]Event, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.config = config
	events, err := e.startLocked(config.SymbolType, config.Size)
	e.queueLocked(events)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	e.flush()
	return events, nil
}

// Reset starts a new game with the current board parameters
func (e *GameEngine) Reset() []Event {
	e.mu.Lock()
	symbolType, size := e.board.Type, e.board.Size
	events, _ := e.startLocked(symbolType, size)
	e.queueLocked(events)
	e.mu.Unlock()

	e.flush()
	return events
}

// RevealCard flips a face-down, active card face-up.
// It reports whether anything changed; invalid input is silently ignored.
func (e *GameEngine) RevealCard(index int) (bool, []Event) {
	e.mu.Lock()
	events := e.revealLocked(index)
	e.queueLocked(events)
	e.mu.Unlock()

	e.flush()
	return len(events) > 0, events
}

// HideCard flips the single revealed card back down.
// It is only permitted while exactly one card is up.
func (e *GameEngine) HideCard(index int) (bool, []Event) {
	e.mu.Lock()
	events := e.hideLocked(index)
	e.queueLocked(events)
	e.mu.Unlock()

	e.flush()
	return len(events) > 0, events
}

// GetState returns a snapshot of the current game
func (e *GameEngine) GetState() *GameState {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := &GameState{
		GameID:     e.gameID,
		ConfigName: e.config.Name,
		SymbolType: e.board.Type,
		Size:       e.board.Size,
		Cards:      BuildCardViews(e.board),
		Phase:      e.phase,
		Matches:    e.matches,
		TotalPairs: e.board.TotalPairs(),
		Won:        e.phase == PhaseWon,
		Message:    e.message,
		StartedAt:  e.startedAt,
		GamesTotal: e.games,
		EventCount: e.seq,
	}
	if e.upOne >= 0 {
		up := e.upOne
		state.UpOne = &up
	}
	if e.upTwo >= 0 {
		up := e.upTwo
		state.UpTwo = &up
	}
	state.Grid = RenderGrid(state)
	return state
}

// BoardSnapshot returns a copy of the board including face-down symbols.
// It exists for tests, simulations and debugging views.
func (e *GameEngine) BoardSnapshot() Board {
	e.mu.Lock()
	defer e.mu.Unlock()

	b := *e.board
	b.Cards = append([]Card(nil), e.board.Cards...)
	return b
}

// IsWon returns whether every pair has been found
func (e *GameEngine) IsWon() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase == PhaseWon
}

// GetPhase returns the turn controller state
func (e *GameEngine) GetPhase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// GetMatches returns the number of pairs found in the current game
func (e *GameEngine) GetMatches() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.matches
}

// GetTotalPairs returns the number of pairs on the board
func (e *GameEngine) GetTotalPairs() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board.TotalPairs()
}

// GameID returns the identity of the current game
func (e *GameEngine) GameID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gameID
}

// GetConfig returns the preset the engine was created with
func (e *GameEngine) GetConfig() *GameConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

// GetEventHistory returns a copy of all recorded events
func (e *GameEngine) GetEventHistory() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Event(nil), e.history...)
}

// GetLastEvent returns the most recent event, or nil if none
func (e *GameEngine) GetLastEvent() *Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.history) == 0 {
		return nil
	}
	ev := e.history[len(e.history)-1]
	return &ev
}

// Close stops the pending resolution timer, if any
func (e *GameEngine) Close() {
	e.mu.Lock()
	stop := e.pending
	e.pending = nil
	e.mu.Unlock()

	if stop != nil {
		stop()
	}
}

func (e *GameEngine) startLocked(symbolType SymbolType, size int) ([]Event, error) {
	board, err := GenerateBoard(symbolType, size, e.rng)
	if err != nil {
		return nil, err
	}

	e.board = board
	e.gameID = uuid.NewString()
	e.phase = PhaseIdle
	e.upOne, e.upTwo = -1, -1
	e.matches = 0
	e.startedAt = time.Now()
	e.games++
	e.message = fmt.Sprintf("New %dx%d game with %s. Find all %d pairs!", size, size, symbolType, board.TotalPairs())

	return []Event{e.record(Event{
		Type:    EventGameStarted,
		Index:   -1,
		Index2:  -1,
		Message: e.message,
	})}, nil
}

func (e *GameEngine) revealLocked(index int) []Event {
	if !e.selectable(index) {
		return nil
	}

	switch e.phase {
	case PhaseIdle:
		e.board.Cards[index].FaceUp = true
		e.upOne = index
		e.phase = PhaseOneRevealed
		e.message = "Pick a second card"
		return []Event{e.flipped(index, true)}

	case PhaseOneRevealed:
		if index == e.upOne {
			return nil
		}
		e.board.Cards[index].FaceUp = true
		e.upTwo = index
		e.phase = PhaseResolving
		e.message = "Checking for a match..."

		gameID, a, b := e.gameID, e.upOne, e.upTwo
		e.pending = e.scheduler.AfterFunc(e.config.ResolveDelay(), func() {
			e.resolve(gameID, a, b)
		})
		return []Event{e.flipped(index, true)}
	}

	// Resolving and Won accept no reveals
	return nil
}

func (e *GameEngine) hideLocked(index int) []Event {
	if e.phase != PhaseOneRevealed || index != e.upOne || !e.selectable(index) {
		return nil
	}

	e.board.Cards[index].FaceUp = false
	e.upOne = -1
	e.phase = PhaseIdle
	e.message = "Pick a card"
	return []Event{e.flipped(index, false)}
}

// resolve runs when the delay after the second reveal elapses. Callbacks that
// belong to an abandoned game, or to a turn that no longer exists, do nothing.
func (e *GameEngine) resolve(gameID string, a, b int) {
	e.mu.Lock()
	if e.gameID != gameID || e.phase != PhaseResolving || e.upOne != a || e.upTwo != b {
		e.mu.Unlock()
		return
	}
	e.pending = nil

	var events []Event
	cardA, cardB := &e.board.Cards[a], &e.board.Cards[b]

	if cardA.Symbol == cardB.Symbol {
		cardA.FaceUp, cardB.FaceUp = false, false
		cardA.Matched, cardB.Matched = true, true
		e.matches++
		e.message = fmt.Sprintf("Match! %d of %d pairs found", e.matches, e.board.TotalPairs())
		events = append(events, e.record(Event{
			Type:    EventCardsMatched,
			Index:   a,
			Index2:  b,
			Message: e.message,
		}))
	} else {
		cardA.FaceUp, cardB.FaceUp = false, false
		e.message = "No match. Pick a card"
		events = append(events,
			e.record(Event{
				Type:    EventCardsMismatched,
				Index:   a,
				Index2:  b,
				Message: e.message,
			}),
			e.flipped(a, false),
			e.flipped(b, false),
		)
	}

	e.upOne, e.upTwo = -1, -1
	e.phase = PhaseIdle

	if e.matches == e.board.TotalPairs() {
		e.phase = PhaseWon
		e.message = "You Win!!!"
		events = append(events, e.record(Event{
			Type:    EventGameWon,
			Index:   -1,
			Index2:  -1,
			Message: e.message,
		}))
	}
	e.queueLocked(events)
	e.mu.Unlock()

	e.flush()
}

// selectable reports whether index names an active card on the board
func (e *GameEngine) selectable(index int) bool {
	if index < 0 || index >= len(e.board.Cards) {
		return false
	}
	return !e.board.Cards[index].Matched
}

func (e *GameEngine) flipped(index int, faceUp bool) Event {
	msg := fmt.Sprintf("Card %d flipped face down", index)
	if faceUp {
		msg = fmt.Sprintf("Card %d shows %s", index, e.board.Cards[index].Symbol)
	}
	return e.record(Event{
		Type:    EventCardFlipped,
		Index:   index,
		Index2:  -1,
		FaceUp:  faceUp,
		Message: msg,
	})
}

// record stamps an event and appends it to the bounded history
func (e *GameEngine) record(ev Event) Event {
	e.seq++
	ev.Seq = e.seq
	ev.GameID = e.gameID
	ev.Timestamp = time.Now()

	e.history = append(e.history, ev)
	if len(e.history) > MaxEventHistory {
		e.history = e.history[len(e.history)-MaxEventHistory:]
	}
	return ev
}

// queueLocked appends a batch to the delivery queue. Callers hold mu, so
// batches are queued in the order they were produced.
func (e *GameEngine) queueLocked(events []Event) {
	if len(events) > 0 {
		e.outbox = append(e.outbox, events)
	}
}

// flush delivers queued batches to the listener in queue order. Deliveries
// never overlap, and a batch queued by another goroutine may be delivered
// by whichever caller drains the queue first.
func (e *GameEngine) flush() {
	e.dispatchMu.Lock()
	defer e.dispatchMu.Unlock()

	for {
		e.mu.Lock()
		if len(e.outbox) == 0 {
			e.mu.Unlock()
			return
		}
		batch := e.outbox[0]
		e.outbox[0] = nil
		e.outbox = e.outbox[1:]
		listener := e.listener
		e.mu.Unlock()

		if listener != nil {
			listener(batch)
		}
	}
}
