package engine

// Cursor is the keyboard selection on the board. A first digit selects a row,
// a second digit selects a column in that row. Both are 1-based; zero means unset.
type Cursor struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Digit applies a digit key. Digits outside the board are ignored.
// It reports whether the selection changed.
func (c *Cursor) Digit(d, size int) bool {
	if d < 1 || d > size || d > 9 {
		return false
	}
	if c.Row == 0 {
		c.Row = d
		return true
	}
	c.Col = d
	return true
}

// Clear removes any selection
func (c *Cursor) Clear() {
	c.Row, c.Col = 0, 0
}

// Index returns the selected card index, or false when no card is fully selected
func (c *Cursor) Index(size int) (int, bool) {
	if c.Row < 1 || c.Col < 1 || c.Row > size || c.Col > size {
		return 0, false
	}
	return (c.Row-1)*size + (c.Col - 1), true
}

// Flip toggles the selected card: face-down cards are revealed and the single
// revealed card is hidden. The selection is cleared afterwards whether or not
// the engine accepted the action.
func (c *Cursor) Flip(e *GameEngine) (bool, []Event) {
	state := e.GetState()
	idx, ok := c.Index(state.Size)
	c.Clear()
	if !ok {
		return false, nil
	}

	if state.Cards[idx].FaceUp {
		return e.HideCard(idx)
	}
	return e.RevealCard(idx)
}
