package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidateGameConfig_ValidConfig(t *testing.T) {
	if err := ValidateGameConfig(DefaultConfig()); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestValidateGameConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		config  *GameConfig
		wantErr error
		wantMsg string
	}{
		{"nil", nil, nil, "config is required"},
		{"missing name", &GameConfig{SymbolType: Letters, Size: 4}, nil, "name is required"},
		{"odd size", &GameConfig{Name: "x", SymbolType: Letters, Size: 3}, ErrInvalidSize, ""},
		{"too large", &GameConfig{Name: "x", SymbolType: Letters, Size: 10}, ErrInvalidSize, ""},
		{"bad type", &GameConfig{Name: "x", SymbolType: "colors", Size: 4}, ErrInvalidType, ""},
		{"negative delay", &GameConfig{Name: "x", SymbolType: Numbers, Size: 4, ResolveDelayMs: -1}, nil, "resolve_delay_ms"},
		{"huge delay", &GameConfig{Name: "x", SymbolType: Numbers, Size: 4, ResolveDelayMs: 60000}, nil, "resolve_delay_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGameConfig(tt.config)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Expected error containing %q, got %v", tt.wantMsg, err)
			}
		})
	}
}

func TestGameConfig_ResolveDelay(t *testing.T) {
	if d := (&GameConfig{}).ResolveDelay(); d != DefaultResolveDelay {
		t.Errorf("Expected default delay, got %v", d)
	}
	if d := (&GameConfig{ResolveDelayMs: 250}).ResolveDelay(); d != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %v", d)
	}
}

func TestLoadGameConfig(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "small.json")
	os.WriteFile(jsonPath, []byte(`{"name":"small","description":"d","symbol_type":"numbers","size":2,"resolve_delay_ms":500}`), 0644)

	yamlPath := filepath.Join(dir, "big.yaml")
	os.WriteFile(yamlPath, []byte("name: big\ndescription: large letters\nsymbol_type: letters\nsize: 8\n"), 0644)

	badPath := filepath.Join(dir, "bad.json")
	os.WriteFile(badPath, []byte(`{"name":"bad","symbol_type":"numbers","size":5}`), 0644)

	config, err := LoadGameConfig(jsonPath)
	if err != nil {
		t.Fatalf("Failed to load JSON config: %v", err)
	}
	if config.Name != "small" || config.Size != 2 || config.SymbolType != Numbers || config.ResolveDelayMs != 500 {
		t.Errorf("Unexpected JSON config %+v", config)
	}

	config, err = LoadGameConfig(yamlPath)
	if err != nil {
		t.Fatalf("Failed to load YAML config: %v", err)
	}
	if config.Name != "big" || config.Size != 8 || config.SymbolType != Letters {
		t.Errorf("Unexpected YAML config %+v", config)
	}

	if _, err := LoadGameConfig(badPath); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Expected ErrInvalidSize, got %v", err)
	}

	if _, err := LoadGameConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadGameConfig_ConfigDir(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "alt.json"), []byte(`{"name":"alt","symbol_type":"letters","size":4}`), 0644)
	t.Setenv("CONFIG_DIR", dir)

	config, err := LoadGameConfig("configs/alt.json")
	if err != nil {
		t.Fatalf("Expected CONFIG_DIR to be honored: %v", err)
	}
	if config.Name != "alt" {
		t.Errorf("Unexpected config %+v", config)
	}
}

func TestIsConfigFile(t *testing.T) {
	for name, want := range map[string]bool{"a.json": true, "b.YAML": true, "c.yml": true, "d.txt": false, "e": false} {
		if got := IsConfigFile(name); got != want {
			t.Errorf("IsConfigFile(%q) = %v, want %v", name, got, want)
		}
	}
}
