package main

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the board
type KeyMap struct {
	Digit  key.Binding
	Flip   key.Binding
	Clear  key.Binding
	New    key.Binding
	Symbol key.Binding
	Grow   key.Binding
	Shrink key.Binding
	Accept key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Digit: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "row, then column"),
		),
		Flip: key.NewBinding(
			key.WithKeys("f", "enter", " "),
			key.WithHelp("f", "flip"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c", "esc"),
			key.WithHelp("c", "clear selection"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new game"),
		),
		Symbol: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "letters/numbers"),
		),
		Grow: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "bigger board"),
		),
		Shrink: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "smaller board"),
		),
		Accept: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm new game"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns a short help string
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Digit, k.Flip, k.New, k.Help, k.Quit}
}

// FullHelp returns the full help string
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Digit, k.Flip, k.Clear},
		{k.New, k.Symbol, k.Grow, k.Shrink},
		{k.Help, k.Quit},
	}
}
