package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/atomic"
)

// Config holds every setting of the command. Flags override values loaded
// from a config file.
type Config struct {
	CorpusPath          string  `json:"corpus_path"`
	LogLevel            string  `json:"log_level"`
	HistoryDatabasePath string  `json:"history_database_path"`
	RandomSeed          *uint64 `json:"random_seed"`
	MinFrequency        int     `json:"min_frequency"`
	Separator           string  `json:"separator"`
	OutputPath          string  `json:"output_path"`
}

// DefaultConfig creates a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		CorpusPath:          "",
		LogLevel:            "warn",
		HistoryDatabasePath: "",
		RandomSeed:          nil,
		MinFrequency:        0,
		Separator:           " ",
		OutputPath:          "",
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values. Problems
// writing that default file are reported on warn and are not fatal.
func LoadConfig(path string, warn io.Writer) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// The command still runs with defaults.
				_, _ = fmt.Fprintf(warn, "warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// parseLogLevel maps a config string to a slog level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
