package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	var warn bytes.Buffer

	config, err := LoadConfig(path, &warn)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if config.LogLevel != "warn" || config.Separator != " " || config.RandomSeed != nil {
		t.Errorf("LoadConfig() = %+v, want defaults", config)
	}
	if warn.Len() != 0 {
		t.Errorf("unexpected warning: %s", warn.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("default config file was not written: %v", err)
	}
	var written Config
	if err := json.Unmarshal(data, &written); err != nil {
		t.Fatalf("default config file is not valid JSON: %v", err)
	}
	if written.LogLevel != "warn" {
		t.Errorf("written log level = %q, want warn", written.LogLevel)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"corpus_path": "tales.txt", "random_seed": 7, "min_frequency": 2}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if config.CorpusPath != "tales.txt" || config.MinFrequency != 2 {
		t.Errorf("LoadConfig() = %+v", config)
	}
	if config.RandomSeed == nil || *config.RandomSeed != 7 {
		t.Errorf("RandomSeed = %v, want 7", config.RandomSeed)
	}
	// Fields absent from the file keep their defaults.
	if config.LogLevel != "warn" || config.Separator != " " {
		t.Errorf("defaults lost: %+v", config)
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path, &bytes.Buffer{}); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}

func TestParseLogLevel(t *testing.T) {
	testCases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for input, expected := range testCases {
		if got := parseLogLevel(input); got != expected {
			t.Errorf("parseLogLevel(%q) = %v, want %v", input, got, expected)
		}
	}
}
