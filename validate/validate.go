// Command validate checks the game presets in a configs directory. For every
// .json, .yaml and .yml file it verifies:
//   - the file parses and carries a name
//   - symbol type and board size are accepted by the board generator
//   - resolve_delay_ms is within range
//   - a board dealt from the preset holds every symbol exactly twice
//
// It also reports presets whose IDs collide across extensions, since only one
// of them can be loaded.
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// Errors make the preset invalid; Info lists what was checked successfully.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := engine.ParseGameConfig(filePath, data)
	if err != nil {
		result.fail("Invalid %s: %v", strings.ToUpper(strings.TrimPrefix(filepath.Ext(filePath), ".")), err)
		return result
	}

	if config.Name == "" {
		result.fail("name is required")
	}

	if err := engine.ValidateBoardParams(config.SymbolType, config.Size); err != nil {
		result.fail("%v", err)
	}

	maxMs := int(engine.MaxResolveDelay.Milliseconds())
	if config.ResolveDelayMs < 0 || config.ResolveDelayMs > maxMs {
		result.fail("resolve_delay_ms must be between 0 and %d, got %d", maxMs, config.ResolveDelayMs)
	}

	stem := strings.TrimSuffix(result.File, filepath.Ext(result.File))
	if config.Name != "" && config.Name != stem {
		result.Warnings = append(result.Warnings, fmt.Sprintf("name %q differs from file name %q; the preset is addressed as %q", config.Name, stem, stem))
	}
	if config.ResolveDelayMs == 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("resolve_delay_ms not set, using default %v", engine.DefaultResolveDelay))
	}

	if !result.Valid {
		return result
	}

	if err := checkDeal(config); err != nil {
		result.fail("%v", err)
		return result
	}

	result.Info = append(result.Info,
		fmt.Sprintf("✓ Name: %s", config.Name),
		fmt.Sprintf("✓ Board: %dx%d %s", config.Size, config.Size, config.SymbolType),
		fmt.Sprintf("✓ Pairs: %d", config.Size*config.Size/2),
		fmt.Sprintf("✓ Resolve delay: %v", config.ResolveDelay()),
	)
	return result
}

// checkDeal deals one board from the preset and verifies the pairing
func checkDeal(config *engine.GameConfig) error {
	board, err := engine.GenerateBoard(config.SymbolType, config.Size, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		return fmt.Errorf("failed to deal board: %w", err)
	}

	if len(board.Cards) != config.Size*config.Size {
		return fmt.Errorf("dealt %d cards, expected %d", len(board.Cards), config.Size*config.Size)
	}

	counts := make(map[engine.Symbol]int)
	for _, card := range board.Cards {
		counts[card.Symbol]++
	}
	if len(counts) != board.TotalPairs() {
		return fmt.Errorf("dealt %d distinct symbols, expected %d", len(counts), board.TotalPairs())
	}
	for symbol, n := range counts {
		if n != 2 {
			return fmt.Errorf("symbol %q appears %d times", symbol, n)
		}
	}
	return nil
}

// findPresets lists preset files in dir, sorted by name
func findPresets(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !engine.IsConfigFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// duplicateIDs returns preset IDs shared by more than one file
func duplicateIDs(files []string) map[string][]string {
	byID := make(map[string][]string)
	for _, file := range files {
		base := filepath.Base(file)
		id := strings.TrimSuffix(base, filepath.Ext(base))
		byID[id] = append(byID[id], base)
	}

	dups := make(map[string][]string)
	for id, names := range byID {
		if len(names) > 1 {
			dups[id] = names
		}
	}
	return dups
}

// validateDir validates every preset in dir and prints a report.
// It returns false when any preset is invalid.
func validateDir(dir string) (bool, error) {
	files, err := findPresets(dir)
	if err != nil {
		return false, fmt.Errorf("error finding config files: %w", err)
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no presets found in %s", dir)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Info {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
		for _, w := range result.Warnings {
			fmt.Println("  ⚠️  " + w)
		}
	}

	dups := duplicateIDs(files)
	if len(dups) > 0 {
		allValid = false
		fmt.Printf("\n%s\n", strings.Repeat("=", 40))
		ids := make([]string, 0, len(dups))
		for id := range dups {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Printf("❌ Preset %q is defined by %s\n", id, strings.Join(dups[id], ", "))
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
	}
	return allValid, nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Validate memory game presets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "../configs",
				Usage:   "Directory containing presets",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ok, err := validateDir(cmd.String("dir"))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("invalid presets in %s", cmd.String("dir"))
			}
			return nil
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
