package engine

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func TestGenerateBoard_ValidSizes(t *testing.T) {
	for _, symbolType := range []SymbolType{Letters, Numbers} {
		for _, size := range []int{2, 4, 6, 8} {
			board, err := GenerateBoard(symbolType, size, rand.New(rand.NewPCG(1, uint64(size))))
			if err != nil {
				t.Fatalf("GenerateBoard(%s, %d) failed: %v", symbolType, size, err)
			}

			if len(board.Cards) != size*size {
				t.Errorf("%s/%d: expected %d cards, got %d", symbolType, size, size*size, len(board.Cards))
			}

			counts := make(map[Symbol]int)
			for i, card := range board.Cards {
				if card.Index != i {
					t.Errorf("%s/%d: card %d has index %d", symbolType, size, i, card.Index)
				}
				if card.FaceUp || card.Matched {
					t.Errorf("%s/%d: card %d should start face-down and active", symbolType, size, i)
				}
				counts[card.Symbol]++
			}

			if len(counts) != size*size/2 {
				t.Errorf("%s/%d: expected %d distinct symbols, got %d", symbolType, size, size*size/2, len(counts))
			}
			for symbol, n := range counts {
				if n != 2 {
					t.Errorf("%s/%d: symbol %q appears %d times, want 2", symbolType, size, symbol, n)
				}
			}
		}
	}
}

func TestGenerateBoard_InvalidSize(t *testing.T) {
	for _, size := range []int{3, 0, 10, -2, 1, 7, 9} {
		board, err := GenerateBoard(Numbers, size, nil)
		if !errors.Is(err, ErrInvalidSize) {
			t.Errorf("size %d: expected ErrInvalidSize, got %v", size, err)
		}
		if board != nil {
			t.Errorf("size %d: expected no board", size)
		}
	}
}

func TestGenerateBoard_InvalidType(t *testing.T) {
	for _, symbolType := range []SymbolType{"", "emoji", "Letters", "NUMBERS"} {
		board, err := GenerateBoard(symbolType, 4, nil)
		if !errors.Is(err, ErrInvalidType) {
			t.Errorf("type %q: expected ErrInvalidType, got %v", symbolType, err)
		}
		if board != nil {
			t.Errorf("type %q: expected no board", symbolType)
		}
	}
}

func TestGenerateBoard_Deterministic(t *testing.T) {
	a, _ := GenerateBoard(Letters, 6, rand.New(rand.NewPCG(42, 7)))
	b, _ := GenerateBoard(Letters, 6, rand.New(rand.NewPCG(42, 7)))

	for i := range a.Cards {
		if a.Cards[i].Symbol != b.Cards[i].Symbol {
			t.Fatalf("same seed produced different boards at index %d: %s vs %s", i, a.Cards[i].Symbol, b.Cards[i].Symbol)
		}
	}
}

func TestGenerateBoard_ShuffleCoversPositions(t *testing.T) {
	// Symbol "1" should land on every position of a 2x2 board over enough seeds
	seen := make(map[int]bool)
	rng := rand.New(rand.NewPCG(3, 5))
	for i := 0; i < 200; i++ {
		board, err := GenerateBoard(Numbers, 2, rng)
		if err != nil {
			t.Fatal(err)
		}
		for _, card := range board.Cards {
			if card.Symbol == "1" {
				seen[card.Index] = true
			}
		}
	}
	if len(seen) != 4 {
		t.Errorf("expected symbol 1 at all 4 positions, saw %v", seen)
	}
}

func TestSymbolsFor(t *testing.T) {
	numbers := SymbolsFor(Numbers, 8)
	for i, s := range numbers {
		if want := Symbol(rune('1' + i)); s != want {
			t.Errorf("numbers[%d] = %q, want %q", i, s, want)
		}
	}

	letters := SymbolsFor(Letters, 32)
	expected := map[int]Symbol{0: "A", 1: "B", 25: "Z", 26: "AA", 27: "AB", 31: "AF"}
	for i, want := range expected {
		if letters[i] != want {
			t.Errorf("letters[%d] = %q, want %q", i, letters[i], want)
		}
	}
}

func TestLetterLabel(t *testing.T) {
	tests := map[int]string{1: "A", 26: "Z", 27: "AA", 52: "AZ", 53: "BA", 702: "ZZ", 703: "AAA"}
	for n, want := range tests {
		if got := letterLabel(n); got != want {
			t.Errorf("letterLabel(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestBoard_RowCol(t *testing.T) {
	board := &Board{Size: 4}
	row, col := board.RowCol(6)
	if row != 1 || col != 2 {
		t.Errorf("RowCol(6) = (%d, %d), want (1, 2)", row, col)
	}
}
