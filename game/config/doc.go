// Package config provides preset management for the memory match game.
//
// The config package handles:
//   - Loading game presets from JSON or YAML files
//   - Preset validation through the engine
//   - Default preset management
//   - Preset discovery and listing
//
// Preset Format:
//
// Presets are stored as .json, .yaml or .yml files in the configs directory:
//
//	{
//	  "name": "classic",
//	  "description": "Classic 4x4 board with letters",
//	  "symbol_type": "letters",
//	  "size": 4,
//	  "resolve_delay_ms": 1000
//	}
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("numbers-small")
//	defaultConfig := manager.GetDefault()
//	presets, err := manager.ListConfigs()
//
// The default preset is "classic" when present, otherwise the first valid
// preset in the directory, otherwise a built-in letters 4x4 board.
package config
