package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

func TestAbs(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{5, 5},
		{-5, 5},
		{0, 0},
	}

	for _, tt := range tests {
		if got := abs(tt.input); got != tt.expected {
			t.Errorf("abs(%d) = %d, expected %d", tt.input, got, tt.expected)
		}
	}
}

func TestAdjacentPairs(t *testing.T) {
	// A B
	// A B
	board := &engine.Board{Size: 2, Type: engine.Letters, Cards: []engine.Card{
		{Index: 0, Symbol: "A"}, {Index: 1, Symbol: "B"},
		{Index: 2, Symbol: "A"}, {Index: 3, Symbol: "B"},
	}}
	if got := adjacentPairs(board); got != 2 {
		t.Errorf("Expected 2 adjacent pairs, got %d", got)
	}

	// A B
	// B A
	board.Cards[2].Symbol, board.Cards[3].Symbol = "B", "A"
	if got := adjacentPairs(board); got != 0 {
		t.Errorf("Expected diagonal pairs not to count, got %d", got)
	}
}

func TestExpectedAdjacent(t *testing.T) {
	// 2x2: 4 adjacent slots out of 6 placements, 2 pairs
	if got := expectedAdjacent(2); math.Abs(got-4.0/3.0) > 1e-9 {
		t.Errorf("expectedAdjacent(2) = %f, expected %f", got, 4.0/3.0)
	}
	// 4x4: 24 slots out of 120 placements, 8 pairs
	if got := expectedAdjacent(4); math.Abs(got-1.6) > 1e-9 {
		t.Errorf("expectedAdjacent(4) = %f, expected 1.6", got)
	}
}

func TestAnalyzePreset(t *testing.T) {
	cfg := &engine.GameConfig{Name: "classic", SymbolType: engine.Letters, Size: 4, ResolveDelayMs: 1000}
	rng := rand.New(rand.NewPCG(7, 11))

	stats, err := analyzePreset(cfg, 4000, 20, rng)
	if err != nil {
		t.Fatalf("analyzePreset failed: %v", err)
	}

	if stats.Preset != "classic" || stats.Size != 4 || stats.Deals != 4000 {
		t.Errorf("Unexpected header: %+v", stats)
	}
	if math.Abs(stats.AdjacentPairs-stats.ExpectedAdjacent) > 0.2 {
		t.Errorf("Adjacent pairs %.3f far from uniform %.3f", stats.AdjacentPairs, stats.ExpectedAdjacent)
	}
	if stats.MaxPositionBias > 0.5 {
		t.Errorf("Position bias too large for a uniform shuffle: %.2f", stats.MaxPositionBias)
	}
	if stats.MinTurns < 8 || stats.MaxTurns > 16 || stats.MeanTurns < 8 || stats.MeanTurns > 16 {
		t.Errorf("Perfect-memory turns out of range: %+v", stats)
	}
}

func TestAnalyzePreset_Invalid(t *testing.T) {
	cfg := &engine.GameConfig{Name: "odd", SymbolType: engine.Letters, Size: 3}
	if _, err := analyzePreset(cfg, 10, 1, rand.New(rand.NewPCG(1, 1))); err == nil {
		t.Error("Expected error for invalid preset")
	}
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	printStats(&buf, &Stats{
		Preset:           "speed",
		SymbolType:       engine.Numbers,
		Size:             4,
		Deals:            2000,
		AdjacentPairs:    1.61,
		ExpectedAdjacent: 1.6,
		MaxPositionBias:  0.9,
		Games:            10,
		MeanTurns:        11.5,
		MinTurns:         9,
		MaxTurns:         14,
	})

	out := buf.String()
	for _, want := range []string{"=== Analyzing speed ===", "8 pairs", "WARNING", "mean 11.50, min 9, max 14"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func writePresets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"classic.json": `{"name": "classic", "symbol_type": "letters", "size": 4, "resolve_delay_ms": 1000}`,
		"tiny.yaml":    "name: tiny\nsymbol_type: numbers\nsize: 2\nresolve_delay_ms: 200\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write preset: %v", err)
		}
	}
	return dir
}

func TestLoadPresets(t *testing.T) {
	dir := writePresets(t)

	all, err := loadPresets(dir, nil)
	if err != nil {
		t.Fatalf("loadPresets failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 presets, got %d", len(all))
	}

	one, err := loadPresets(dir, []string{"tiny"})
	if err != nil {
		t.Fatalf("loadPresets failed: %v", err)
	}
	if len(one) != 1 || one[0].Size != 2 {
		t.Errorf("Expected the tiny preset, got %+v", one)
	}

	if _, err := loadPresets(dir, []string{"missing"}); err == nil {
		t.Error("Expected error for unknown preset")
	}
	if _, err := loadPresets("/non/existent/dir", nil); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestCommand(t *testing.T) {
	dir := writePresets(t)

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		args := []string{"analyze", "--dir", dir, "--deals", "100", "--games", "5", "--seed", "42", "tiny"}
		if err := newCommand(&buf).Run(context.Background(), args); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if !strings.Contains(buf.String(), "=== Analyzing tiny ===") {
			t.Errorf("Unexpected output:\n%s", buf.String())
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		args := []string{"analyze", "--dir", dir, "--deals", "50", "--games", "2", "--seed", "42", "--json"}
		if err := newCommand(&buf).Run(context.Background(), args); err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		var stats []Stats
		if err := json.Unmarshal(buf.Bytes(), &stats); err != nil {
			t.Fatalf("Invalid JSON output: %v", err)
		}
		if len(stats) != 2 {
			t.Errorf("Expected stats for 2 presets, got %d", len(stats))
		}
	})

	t.Run("same seed same result", func(t *testing.T) {
		run := func() string {
			var buf bytes.Buffer
			args := []string{"analyze", "--dir", dir, "--deals", "50", "--games", "3", "--seed", "9", "--json", "classic"}
			if err := newCommand(&buf).Run(context.Background(), args); err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			return buf.String()
		}
		if run() != run() {
			t.Error("Expected identical output for the same seed")
		}
	})
}
