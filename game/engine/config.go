package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidateGameConfig validates a game preset for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is required")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	// Validate board parameters, keeping the sentinel errors reachable with errors.Is
	if err := ValidateBoardParams(config.SymbolType, config.Size); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	// Validate resolution delay
	maxMs := int(MaxResolveDelay.Milliseconds())
	if config.ResolveDelayMs < 0 || config.ResolveDelayMs > maxMs {
		return fmt.Errorf("config validation: resolve_delay_ms must be between 0 and %d, got %d", maxMs, config.ResolveDelayMs)
	}

	return nil
}

// IsConfigFile reports whether a file name carries a supported preset extension
func IsConfigFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// ParseGameConfig decodes a preset, choosing JSON or YAML from the file name
func ParseGameConfig(filename string, data []byte) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// LoadGameConfig loads and validates a preset from a JSON or YAML file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	config, err := ParseGameConfig(filename, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filepath.Base(filename), err)
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", filepath.Base(filename), err)
	}

	return config, nil
}

// DefaultConfig returns the preset used when none is selected: a 4x4 board of letters
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:           "classic",
		Description:    "Classic 4x4 board with letters",
		SymbolType:     DefaultSymbolType,
		Size:           DefaultBoardSize,
		ResolveDelayMs: int(DefaultResolveDelay.Milliseconds()),
	}
}
