package player

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

func newLocalTable(t *testing.T, symbolType engine.SymbolType, size int, seed uint64) *LocalTable {
	t.Helper()
	sched := engine.NewManualScheduler()
	config := &engine.GameConfig{Name: "test", SymbolType: symbolType, Size: size, ResolveDelayMs: 500}
	e, err := engine.NewEngine(config,
		engine.WithScheduler(sched),
		engine.WithRand(rand.New(rand.NewPCG(seed, seed+1))),
	)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	t.Cleanup(e.Close)
	return &LocalTable{Engine: e, Scheduler: sched}
}

func TestMemoryNext(t *testing.T) {
	t.Run("explores lowest unseen card", func(t *testing.T) {
		m := NewMemory(4)
		idx, ok := m.Next(-1)
		if !ok || idx != 0 {
			t.Errorf("Expected card 0, got %d (%v)", idx, ok)
		}
	})

	t.Run("takes known pair", func(t *testing.T) {
		m := NewMemory(4)
		m.Observe(0, "A")
		m.Observe(1, "B")
		m.Observe(3, "A")

		idx, ok := m.Next(-1)
		if !ok || idx != 0 {
			t.Fatalf("Expected first card of known pair, got %d", idx)
		}
		idx, ok = m.Next(0)
		if !ok || idx != 3 {
			t.Errorf("Expected partner 3, got %d", idx)
		}
	})

	t.Run("second card explores when partner unknown", func(t *testing.T) {
		m := NewMemory(4)
		m.Observe(0, "A")
		m.Observe(1, "B")

		idx, ok := m.Next(1)
		if !ok || idx != 2 {
			t.Errorf("Expected unseen card 2, got %d", idx)
		}
	})

	t.Run("skips matched cards", func(t *testing.T) {
		m := NewMemory(4)
		m.Observe(0, "A")
		m.Observe(1, "A")
		m.Matched(0, 1)

		if m.Known() != 0 {
			t.Errorf("Expected matched cards forgotten, got %d known", m.Known())
		}
		idx, ok := m.Next(-1)
		if !ok || idx != 2 {
			t.Errorf("Expected card 2, got %d", idx)
		}

		m.Observe(0, "A")
		if m.Known() != 0 {
			t.Error("Observe should ignore matched cards")
		}
	})

	t.Run("nothing left", func(t *testing.T) {
		m := NewMemory(2)
		m.Matched(0, 1)
		if _, ok := m.Next(-1); ok {
			t.Error("Expected no card on a cleared board")
		}
	})
}

func TestMemorySync(t *testing.T) {
	m := NewMemory(4)
	m.Sync(&engine.GameState{
		Cards: []engine.CardView{
			{Index: 0, Matched: true, Symbol: "A"},
			{Index: 1, FaceUp: true, Symbol: "B"},
			{Index: 2},
			{Index: 3, Matched: true, Symbol: "A"},
		},
	})

	if m.Known() != 1 {
		t.Errorf("Expected one remembered card, got %d", m.Known())
	}
	idx, ok := m.Next(1)
	if !ok || idx != 2 {
		t.Errorf("Expected unseen card 2, got %d", idx)
	}
}

func TestPlay(t *testing.T) {
	tests := []struct {
		name       string
		symbolType engine.SymbolType
		size       int
	}{
		{"2x2 numbers", engine.Numbers, 2},
		{"4x4 letters", engine.Letters, 4},
		{"6x6 numbers", engine.Numbers, 6},
		{"8x8 letters", engine.Letters, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := uint64(1); seed <= 5; seed++ {
				table := newLocalTable(t, tt.symbolType, tt.size, seed)

				result, err := Play(context.Background(), table)
				if err != nil {
					t.Fatalf("seed %d: Play failed: %v", seed, err)
				}

				pairs := tt.size * tt.size / 2
				if !result.Won {
					t.Errorf("seed %d: expected a win", seed)
				}
				if result.Pairs != pairs {
					t.Errorf("seed %d: expected %d pairs, got %d", seed, pairs, result.Pairs)
				}
				if result.Turns < pairs || result.Turns > 2*pairs {
					t.Errorf("seed %d: turns %d outside [%d, %d]", seed, result.Turns, pairs, 2*pairs)
				}
				if result.Mismatches != result.Turns-pairs {
					t.Errorf("seed %d: expected %d mismatches, got %d", seed, result.Turns-pairs, result.Mismatches)
				}
				if result.Flips != 2*result.Turns {
					t.Errorf("seed %d: expected %d flips, got %d", seed, 2*result.Turns, result.Flips)
				}
				if !table.Engine.IsWon() {
					t.Errorf("seed %d: engine not in won phase", seed)
				}
			}
		})
	}
}

// stuckTable ignores every reveal
type stuckTable struct {
	state *engine.GameState
}

func (s *stuckTable) State(ctx context.Context) (*engine.GameState, error) { return s.state, nil }
func (s *stuckTable) Reveal(ctx context.Context, index int) error        { return nil }
func (s *stuckTable) Settle(ctx context.Context) error                   { return nil }

func TestPlayStalls(t *testing.T) {
	table := &stuckTable{state: &engine.GameState{
		GameID:     "g1",
		Phase:      engine.PhaseIdle,
		Cards:      make([]engine.CardView, 4),
		TotalPairs: 2,
	}}
	for i := range table.state.Cards {
		table.state.Cards[i].Index = i
	}

	_, err := Play(context.Background(), table)
	if !errors.Is(err, ErrStalled) {
		t.Errorf("Expected ErrStalled, got %v", err)
	}
}

func TestPlayReplacedGame(t *testing.T) {
	calls := 0
	table := &funcTable{
		state: func() *engine.GameState {
			calls++
			id := "g1"
			if calls > 1 {
				id = "g2"
			}
			return &engine.GameState{GameID: id, Phase: engine.PhaseIdle, Cards: make([]engine.CardView, 4), TotalPairs: 2}
		},
	}

	_, err := Play(context.Background(), table)
	if !errors.Is(err, ErrStalled) {
		t.Errorf("Expected ErrStalled when the game is replaced, got %v", err)
	}
}

type funcTable struct {
	state func() *engine.GameState
}

func (f *funcTable) State(ctx context.Context) (*engine.GameState, error) { return f.state(), nil }
func (f *funcTable) Reveal(ctx context.Context, index int) error        { return nil }
func (f *funcTable) Settle(ctx context.Context) error                   { return nil }

func TestLocalTableRejectsIgnoredReveal(t *testing.T) {
	table := newLocalTable(t, engine.Letters, 2, 1)
	if err := table.Reveal(context.Background(), 99); !errors.Is(err, ErrStalled) {
		t.Errorf("Expected ErrStalled for out-of-range card, got %v", err)
	}
}
