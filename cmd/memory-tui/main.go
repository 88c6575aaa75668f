// Command memory-tui plays the memory match game in the terminal against a
// local engine. Press a digit for the row, a digit for the column, then f to
// flip the selected card.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/memorygame/game/config"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// loadPreset returns the named preset from dir. A missing directory falls
// back to the built-in classic preset so the client runs anywhere.
func loadPreset(dir, name string) (*engine.GameConfig, error) {
	manager, err := config.NewManager(dir)
	if err != nil {
		if name != "" {
			return nil, err
		}
		return engine.DefaultConfig(), nil
	}
	if name == "" {
		return manager.GetDefault(), nil
	}
	return manager.LoadConfig(name)
}

// applyOverrides copies cfg with explicit board parameters applied
func applyOverrides(cfg *engine.GameConfig, symbolType string, size int) (*engine.GameConfig, error) {
	out := *cfg
	if symbolType != "" {
		out.SymbolType = engine.SymbolType(symbolType)
	}
	if size != 0 {
		out.Size = size
	}
	if err := engine.ValidateGameConfig(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "memory-tui",
		Usage: "Play memory match in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing presets",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:  "preset",
				Usage: "Preset to start with (default preset when empty)",
			},
			&cli.StringFlag{
				Name:  "symbol-type",
				Usage: "letters or numbers (overrides the preset)",
			},
			&cli.IntFlag{
				Name:  "size",
				Usage: "Board size (overrides the preset)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			preset, err := loadPreset(cmd.String("config-dir"), cmd.String("preset"))
			if err != nil {
				return err
			}
			preset, err = applyOverrides(preset, cmd.String("symbol-type"), int(cmd.Int("size")))
			if err != nil {
				return err
			}

			model, err := NewModel(preset)
			if err != nil {
				return err
			}

			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
