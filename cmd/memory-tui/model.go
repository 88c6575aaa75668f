package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

const (
	maxLogLines = 6
	// eventBuffer holds event batches not yet drawn by the update loop
	eventBuffer = 64
)

// eventsMsg carries engine events into the update loop
type eventsMsg []engine.Event

// newGameRequest is a new board waiting for the player to confirm
type newGameRequest struct {
	symbolType engine.SymbolType
	size       int
}

// Model is the terminal board for one local engine
type Model struct {
	engine *engine.GameEngine
	events chan []engine.Event

	cursor     engine.Cursor
	symbolType engine.SymbolType
	size       int

	// touched is set once the player flips a card in the current game
	touched bool
	pending *newGameRequest

	keys KeyMap
	help help.Model

	log    []string
	status string
	err    error
	width  int
}

// NewModel starts a game from cfg. Engine events, including delayed match
// checks, reach the model through a buffered channel.
func NewModel(cfg *engine.GameConfig, opts ...engine.Option) (Model, error) {
	events := make(chan []engine.Event, eventBuffer)
	listener := func(evs []engine.Event) {
		select {
		case events <- evs:
		default:
			// A full buffer only costs log lines; the board is read from the engine
		}
	}

	e, err := engine.NewEngine(cfg, append(opts, engine.WithListener(listener))...)
	if err != nil {
		return Model{}, err
	}

	return Model{
		engine:     e,
		events:     events,
		symbolType: cfg.SymbolType,
		size:       cfg.Size,
		keys:       DefaultKeyMap(),
		help:       help.New(),
	}, nil
}

// waitForEvents blocks until the engine emits events
func waitForEvents(ch <-chan []engine.Event) tea.Cmd {
	return func() tea.Msg {
		return eventsMsg(<-ch)
	}
}

func (m Model) Init() tea.Cmd {
	return waitForEvents(m.events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case eventsMsg:
		for _, ev := range msg {
			m.log = append(m.log, ev.Message)
		}
		if len(m.log) > maxLogLines {
			m.log = m.log[len(m.log)-maxLogLines:]
		}
		return m, waitForEvents(m.events)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	if m.pending != nil {
		return m.answerNewGame(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.engine.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Digit):
		d, _ := strconv.Atoi(msg.String())
		if !m.cursor.Digit(d, m.engine.GetState().Size) {
			m.status = fmt.Sprintf("No row or column %d on this board", d)
		} else {
			m.status = ""
		}

	case key.Matches(msg, m.keys.Flip):
		if changed, _ := m.cursor.Flip(m.engine); !changed {
			m.status = "Select a row and a column first, or wait for the match check"
		} else {
			m.touched = true
			m.status = ""
		}

	case key.Matches(msg, m.keys.Clear):
		m.cursor.Clear()
		m.status = ""

	case key.Matches(msg, m.keys.New):
		m.requestNewGame(m.symbolType, m.size)

	case key.Matches(msg, m.keys.Symbol):
		next := engine.Numbers
		if m.symbolType == engine.Numbers {
			next = engine.Letters
		}
		m.requestNewGame(next, m.size)

	case key.Matches(msg, m.keys.Grow):
		m.requestNewGame(m.symbolType, m.size+2)

	case key.Matches(msg, m.keys.Shrink):
		m.requestNewGame(m.symbolType, m.size-2)
	}

	return m, nil
}

// answerNewGame handles the key pressed at the new game prompt. Anything
// but y keeps the current game.
func (m Model) answerNewGame(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	req := m.pending
	m.pending = nil

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.engine.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Accept):
		m.newGame(req.symbolType, req.size)
	default:
		m.status = "Kept the current game"
	}
	return m, nil
}

// requestNewGame deals a new board at once when the current game is won or
// untouched, and asks first otherwise. Invalid parameters are reported
// without asking.
func (m *Model) requestNewGame(symbolType engine.SymbolType, size int) {
	if err := engine.ValidateBoardParams(symbolType, size); err != nil {
		m.err = err
		return
	}
	if m.touched && !m.engine.IsWon() {
		m.pending = &newGameRequest{symbolType: symbolType, size: size}
		m.status = ""
		return
	}
	m.newGame(symbolType, size)
}

// newGame deals a new board, keeping the current one when the parameters are rejected
func (m *Model) newGame(symbolType engine.SymbolType, size int) {
	if _, err := m.engine.NewGame(symbolType, size); err != nil {
		m.err = err
		return
	}
	m.symbolType = symbolType
	m.size = size
	m.touched = false
	m.cursor.Clear()
	m.status = ""
}

func (m Model) View() string {
	state := m.engine.GetState()

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Memory Match  %dx%d %s", state.Size, state.Size, state.SymbolType)))
	b.WriteString("\n")
	b.WriteString(boardStyle.Render(m.renderBoard(state)))
	b.WriteString("\n")

	if state.Won {
		b.WriteString(wonStyle.Render(fmt.Sprintf("🎉 %s  (n for a new game)", state.Message)))
	} else {
		b.WriteString(statusStyle.Render(fmt.Sprintf("%s  |  Pairs: %d/%d", state.Message, state.Matches, state.TotalPairs)))
	}
	b.WriteString("\n")

	if m.pending != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Start a new %dx%d %s game? (y/n)", m.pending.size, m.pending.size, m.pending.symbolType)))
		b.WriteString("\n")
	} else if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}

	for _, line := range m.log {
		b.WriteString(logStyle.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// renderBoard draws the grid with 1-based row and column numbers. The
// selected row, or the selected card once a column is chosen, is highlighted.
func (m Model) renderBoard(state *engine.GameState) string {
	width := 1
	for _, cv := range state.Cards {
		if n := len([]rune(string(cv.Symbol))); n > width {
			width = n
		}
	}
	cellWidth := width + 2

	var rows []string

	header := []string{axisStyle.Render("  ")}
	for c := 1; c <= state.Size; c++ {
		header = append(header, axisStyle.Render(lipgloss.PlaceHorizontal(cellWidth, lipgloss.Center, strconv.Itoa(c))))
	}
	rows = append(rows, strings.Join(header, " "))

	for r := 0; r < state.Size; r++ {
		cells := []string{axisStyle.Render(fmt.Sprintf("%d ", r+1))}
		for c := 0; c < state.Size; c++ {
			idx := r*state.Size + c
			if idx >= len(state.Cards) {
				break
			}
			cells = append(cells, m.renderCard(state.Cards[idx], width, r+1, c+1))
		}
		rows = append(rows, strings.Join(cells, " "))
	}

	return strings.Join(rows, "\n")
}

func (m Model) renderCard(cv engine.CardView, width, row, col int) string {
	label := engine.CellLabel(cv, width)

	selected := m.cursor.Row == row && (m.cursor.Col == 0 || m.cursor.Col == col)
	switch {
	case selected:
		return selectedStyle.Render(label)
	case cv.Matched:
		return matchedStyle.Render(label)
	case cv.FaceUp:
		return faceUpStyle.Render(label)
	}
	return hiddenStyle.Render(label)
}
