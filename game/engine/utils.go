package engine

import "strings"

// BuildCardViews constructs the client-facing card list.
// Face-down cards do not expose their symbol.
func BuildCardViews(board *Board) []CardView {
	views := make([]CardView, len(board.Cards))
	for i, card := range board.Cards {
		row, col := board.RowCol(i)
		cv := CardView{
			Index:   card.Index,
			Row:     row,
			Col:     col,
			FaceUp:  card.FaceUp,
			Matched: card.Matched,
		}
		if card.FaceUp || card.Matched {
			cv.Symbol = card.Symbol
		}
		views[i] = cv
	}
	return views
}

// RenderGrid draws the board as text rows: "?" for face-down cards,
// the symbol for face-up cards and "✓" for matched cards
func RenderGrid(state *GameState) []string {
	if state == nil || state.Size == 0 {
		return nil
	}

	width := 1
	for _, cv := range state.Cards {
		if len(cv.Symbol) > width {
			width = len(cv.Symbol)
		}
	}

	lines := make([]string, 0, state.Size)
	for r := 0; r < state.Size; r++ {
		var row strings.Builder
		for c := 0; c < state.Size; c++ {
			idx := r*state.Size + c
			if idx >= len(state.Cards) {
				break
			}
			if c > 0 {
				row.WriteString(" ")
			}
			row.WriteString(CellLabel(state.Cards[idx], width))
		}
		lines = append(lines, row.String())
	}
	return lines
}

// CellLabel renders one card padded to width
func CellLabel(cv CardView, width int) string {
	label := "?"
	switch {
	case cv.Matched:
		label = "✓"
	case cv.FaceUp:
		label = string(cv.Symbol)
	}
	if n := width - len([]rune(label)); n > 0 {
		label += strings.Repeat(" ", n)
	}
	return "[" + label + "]"
}

// CountFaceUp counts face-up cards that are not matched
func CountFaceUp(board *Board) int {
	count := 0
	for _, card := range board.Cards {
		if card.FaceUp && !card.Matched {
			count++
		}
	}
	return count
}

// CountMatched counts matched cards
func CountMatched(board *Board) int {
	count := 0
	for _, card := range board.Cards {
		if card.Matched {
			count++
		}
	}
	return count
}

// FindPair returns the index of the other card carrying the same symbol, or -1
func FindPair(board *Board, index int) int {
	if index < 0 || index >= len(board.Cards) {
		return -1
	}
	for i, card := range board.Cards {
		if i != index && card.Symbol == board.Cards[index].Symbol {
			return i
		}
	}
	return -1
}
