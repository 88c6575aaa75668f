// Package player implements a perfect-memory strategy for the memory match
// game. It remembers every symbol it has seen, takes a known pair whenever one
// exists and otherwise explores the lowest unseen card.
//
// The strategy drives any Table, so the same code plays a local engine and a
// remote session behind the REST API.
package player

import (
	"context"
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// ErrStalled is returned when the table stops accepting the player's moves
var ErrStalled = errors.New("game stalled")

// Table is a game the player can act on
type Table interface {
	// State returns the current snapshot
	State(ctx context.Context) (*engine.GameState, error)
	// Reveal flips a card face-up
	Reveal(ctx context.Context, index int) error
	// Settle blocks until a pending match check has run
	Settle(ctx context.Context) error
}

// Memory holds what the player has seen on one board
type Memory struct {
	cards   int
	seen    map[int]engine.Symbol
	matched map[int]bool
}

// NewMemory creates an empty memory for a board of the given card count
func NewMemory(cards int) *Memory {
	return &Memory{
		cards:   cards,
		seen:    make(map[int]engine.Symbol),
		matched: make(map[int]bool),
	}
}

// Observe records the symbol shown by a face-up card
func (m *Memory) Observe(index int, symbol engine.Symbol) {
	if symbol == "" || m.matched[index] {
		return
	}
	m.seen[index] = symbol
}

// Matched removes a resolved pair from play
func (m *Memory) Matched(indices ...int) {
	for _, i := range indices {
		m.matched[i] = true
		delete(m.seen, i)
	}
}

// Sync records every face-up symbol and matched card in a snapshot
func (m *Memory) Sync(state *engine.GameState) {
	for _, cv := range state.Cards {
		switch {
		case cv.Matched:
			m.Matched(cv.Index)
		case cv.FaceUp:
			m.Observe(cv.Index, cv.Symbol)
		}
	}
}

// Known returns how many unmatched cards have a remembered symbol
func (m *Memory) Known() int {
	return len(m.seen)
}

// Next picks the card to reveal. up is the index of the card already
// face-up this turn, or -1 at the start of a turn. It returns false when no
// card is left to reveal.
func (m *Memory) Next(up int) (int, bool) {
	if up >= 0 {
		if symbol, ok := m.seen[up]; ok {
			if partner, ok := m.partner(up, symbol); ok {
				return partner, true
			}
		}
		return m.explore(up)
	}

	if a, _, ok := m.knownPair(); ok {
		return a, true
	}
	return m.explore(-1)
}

// partner finds another remembered card with the same symbol
func (m *Memory) partner(index int, symbol engine.Symbol) (int, bool) {
	for i := 0; i < m.cards; i++ {
		if i != index && !m.matched[i] && m.seen[i] == symbol {
			return i, true
		}
	}
	return 0, false
}

// knownPair returns the lowest remembered pair that is still in play
func (m *Memory) knownPair() (int, int, bool) {
	for i := 0; i < m.cards; i++ {
		symbol, ok := m.seen[i]
		if !ok {
			continue
		}
		if j, ok := m.partner(i, symbol); ok {
			return i, j, true
		}
	}
	return 0, 0, false
}

// explore returns the lowest unseen active card, falling back to any active card
func (m *Memory) explore(skip int) (int, bool) {
	fallback := -1
	for i := 0; i < m.cards; i++ {
		if i == skip || m.matched[i] {
			continue
		}
		if _, ok := m.seen[i]; !ok {
			return i, true
		}
		if fallback < 0 {
			fallback = i
		}
	}
	return fallback, fallback >= 0
}

// Result summarises one played game
type Result struct {
	GameID     string `json:"game_id"`
	Flips      int    `json:"flips"`
	Turns      int    `json:"turns"`
	Pairs      int    `json:"pairs"`
	Mismatches int    `json:"mismatches"`
	Won        bool   `json:"won"`
}

// Play reveals cards on t until the game is won
func Play(ctx context.Context, t Table) (*Result, error) {
	state, err := t.State(ctx)
	if err != nil {
		return nil, err
	}

	mem := NewMemory(len(state.Cards))
	result := &Result{GameID: state.GameID, Pairs: state.TotalPairs}
	maxFlips := 4*len(state.Cards) + 8

	for {
		mem.Sync(state)

		if state.Won {
			result.Won = true
			result.Mismatches = result.Turns - state.Matches
			return result, nil
		}
		if state.GameID != result.GameID {
			return result, fmt.Errorf("%w: game %s was replaced by %s", ErrStalled, result.GameID, state.GameID)
		}
		if result.Flips >= maxFlips {
			return result, fmt.Errorf("%w: no win after %d flips", ErrStalled, result.Flips)
		}

		if state.Phase == engine.PhaseResolving {
			if err := t.Settle(ctx); err != nil {
				return result, err
			}
		} else {
			up := -1
			if state.UpOne != nil {
				up = *state.UpOne
			}

			index, ok := mem.Next(up)
			if !ok {
				return result, fmt.Errorf("%w: no card left to reveal", ErrStalled)
			}
			if err := t.Reveal(ctx, index); err != nil {
				return result, fmt.Errorf("reveal card %d: %w", index, err)
			}
			result.Flips++
			if up >= 0 {
				result.Turns++
			}
		}

		if state, err = t.State(ctx); err != nil {
			return result, err
		}
	}
}

// LocalTable plays an in-process engine driven by a manual scheduler
type LocalTable struct {
	Engine    *engine.GameEngine
	Scheduler *engine.ManualScheduler
}

// State returns the engine snapshot
func (l *LocalTable) State(ctx context.Context) (*engine.GameState, error) {
	return l.Engine.GetState(), nil
}

// Reveal flips a card, reporting an ignored reveal as an error
func (l *LocalTable) Reveal(ctx context.Context, index int) error {
	if changed, _ := l.Engine.RevealCard(index); !changed {
		return fmt.Errorf("%w: card %d ignored", ErrStalled, index)
	}
	return nil
}

// Settle fires every pending timer
func (l *LocalTable) Settle(ctx context.Context) error {
	l.Scheduler.RunAll()
	return nil
}
