package engine

import "time"

// SymbolType selects which generator produces the card symbols
type SymbolType string

const (
	Letters SymbolType = "letters"
	Numbers SymbolType = "numbers"

	// Validation constants
	MinBoardSize        = 2
	MaxBoardSize        = 8
	DefaultBoardSize    = 4
	DefaultResolveDelay = 1000 * time.Millisecond
	MaxResolveDelay     = 10 * time.Second
	MaxEventHistory     = 5000
	WebSocketBufferSize = 256
	DefaultSymbolType   = Letters
)

// Phase is the turn controller state
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseOneRevealed Phase = "one_revealed"
	PhaseResolving   Phase = "resolving"
	PhaseWon         Phase = "won"
)

// Symbol is the value printed on a card. Two cards sharing a symbol are a pair.
type Symbol string

// Card represents a single card on the board
type Card struct {
	Index   int    `json:"index"`
	Symbol  Symbol `json:"symbol"`
	FaceUp  bool   `json:"face_up"`
	Matched bool   `json:"matched"`
}

// Board is the ordered sequence of size*size cards for one game
type Board struct {
	Size  int        `json:"size"`
	Type  SymbolType `json:"symbol_type"`
	Cards []Card     `json:"cards"`
}

// TotalPairs returns the number of distinct symbols on the board
func (b *Board) TotalPairs() int {
	return len(b.Cards) / 2
}

// RowCol returns the 0-based row and column of a card index
func (b *Board) RowCol(index int) (int, int) {
	return index / b.Size, index % b.Size
}

// GameConfig is a named game preset loaded from a JSON or YAML file
type GameConfig struct {
	Name           string     `json:"name" yaml:"name"`
	Description    string     `json:"description" yaml:"description"`
	SymbolType     SymbolType `json:"symbol_type" yaml:"symbol_type"`
	Size           int        `json:"size" yaml:"size"`
	ResolveDelayMs int        `json:"resolve_delay_ms" yaml:"resolve_delay_ms"`
}

// ResolveDelay returns the configured resolution delay, falling back to the default
func (c *GameConfig) ResolveDelay() time.Duration {
	if c == nil || c.ResolveDelayMs <= 0 {
		return DefaultResolveDelay
	}
	return time.Duration(c.ResolveDelayMs) * time.Millisecond
}

// CardView is the client-facing representation of a card.
// Symbol is only included when the card is face-up or matched.
type CardView struct {
	Index   int    `json:"index"`
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	FaceUp  bool   `json:"face_up"`
	Matched bool   `json:"matched"`
	Symbol  Symbol `json:"symbol,omitempty"`
}

// GameState is a snapshot of a game safe to hand to other goroutines
type GameState struct {
	GameID     string     `json:"game_id"`
	ConfigName string     `json:"config_name"`
	SymbolType SymbolType `json:"symbol_type"`
	Size       int        `json:"size"`
	Cards      []CardView `json:"cards"`
	Phase      Phase      `json:"phase"`
	UpOne      *int       `json:"up_one,omitempty"`
	UpTwo      *int       `json:"up_two,omitempty"`
	Matches    int        `json:"matches"`
	TotalPairs int        `json:"total_pairs"`
	Won        bool       `json:"won"`
	Message    string     `json:"message"`
	StartedAt  time.Time  `json:"started_at"`
	GamesTotal int        `json:"games_total"`
	EventCount int        `json:"event_count"`

	// Computed helper view (not required for core game logic)
	Grid []string `json:"grid,omitempty"`
}

// EventType names an output event the presentation layer reacts to
type EventType string

const (
	EventGameStarted     EventType = "game_started"
	EventCardFlipped     EventType = "card_flipped"
	EventCardsMatched    EventType = "cards_matched"
	EventCardsMismatched EventType = "cards_mismatched"
	EventGameWon         EventType = "game_won"
)

// Event represents one output of a state transition.
// Index2 is only meaningful for cards_matched and cards_mismatched.
type Event struct {
	Seq       int       `json:"seq"`
	Type      EventType `json:"type"`
	GameID    string    `json:"game_id"`
	Index     int       `json:"index"`
	Index2    int       `json:"index2"`
	FaceUp    bool      `json:"face_up,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
