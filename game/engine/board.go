package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
)

var (
	ErrInvalidSize = errors.New("invalid size")
	ErrInvalidType = errors.New("invalid type")
)

// ValidateBoardParams checks the symbol type and size before any board is built
func ValidateBoardParams(symbolType SymbolType, size int) error {
	if size%2 != 0 || size < MinBoardSize || size > MaxBoardSize {
		return fmt.Errorf("%w: size must be an even number between %d and %d, got %d",
			ErrInvalidSize, MinBoardSize, MaxBoardSize, size)
	}
	switch symbolType {
	case Letters, Numbers:
	default:
		return fmt.Errorf("%w: symbol type must be %q or %q, got %q", ErrInvalidType, Letters, Numbers, symbolType)
	}
	return nil
}

// GenerateBoard creates a board of size*size face-down cards where each of the
// size*size/2 symbols appears exactly twice, in uniformly shuffled order.
// A nil rng uses a fresh random source.
func GenerateBoard(symbolType SymbolType, size int, rng *rand.Rand) (*Board, error) {
	if err := ValidateBoardParams(symbolType, size); err != nil {
		return nil, err
	}

	symbols := SymbolsFor(symbolType, size*size/2)

	cards := make([]Card, 0, size*size)
	for _, s := range symbols {
		cards = append(cards, Card{Symbol: s}, Card{Symbol: s})
	}

	swap := func(i, j int) { cards[i], cards[j] = cards[j], cards[i] }
	if rng != nil {
		rng.Shuffle(len(cards), swap)
	} else {
		rand.Shuffle(len(cards), swap)
	}

	// Assign indices after shuffle
	for i := range cards {
		cards[i].Index = i
	}

	return &Board{
		Size:  size,
		Type:  symbolType,
		Cards: cards,
	}, nil
}

// SymbolsFor returns the first n symbols of the given generator.
// Numbers run 1..n; letters run A..Z and then AA, AB, ... in spreadsheet order.
func SymbolsFor(symbolType SymbolType, n int) []Symbol {
	symbols := make([]Symbol, 0, n)
	for i := 1; i <= n; i++ {
		if symbolType == Numbers {
			symbols = append(symbols, Symbol(strconv.Itoa(i)))
		} else {
			symbols = append(symbols, Symbol(letterLabel(i)))
		}
	}
	return symbols
}

// letterLabel converts a 1-based ordinal to A, B, ..., Z, AA, AB, ...
func letterLabel(n int) string {
	var buf []byte
	for n > 0 {
		n--
		buf = append([]byte{byte('A' + n%26)}, buf...)
		n /= 26
	}
	return string(buf)
}
