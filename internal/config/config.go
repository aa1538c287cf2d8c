// Package config loads the application configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/spritekit"
)

// AppConfig is the configuration of the spritekit server and CLI.
type AppConfig struct {
	Addr           string           `json:"addr"`
	StorageRoot    string           `json:"storage_root"`
	MetadataPath   string           `json:"metadata_path"`
	Workers        int              `json:"workers"`
	MaxUploadBytes int64            `json:"max_upload_bytes"`
	PNGQuant       bool             `json:"pngquant"`
	PNGQuantPath   string           `json:"pngquant_path"`
	PNGQuantRange  string           `json:"pngquant_quality"`
	LogLevel       string           `json:"log_level"`
	Detection      spritekit.Params `json:"detection"`
}

// Default returns the configuration used when no file is present.
func Default() AppConfig {
	return AppConfig{
		Addr:           ":8080",
		StorageRoot:    "sprite-storage",
		MetadataPath:   "sprites.cbor",
		Workers:        0,
		MaxUploadBytes: 64 << 20,
		PNGQuant:       true,
		PNGQuantPath:   "pngquant",
		PNGQuantRange:  "60-80",
		LogLevel:       "info",
		Detection:      spritekit.DefaultParams(),
	}
}

// Load reads the JSON file at path over the defaults. A missing file is not
// an error.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return AppConfig{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values no component can work with.
func (c AppConfig) Validate() error {
	switch {
	case c.StorageRoot == "":
		return fmt.Errorf("%w: storage_root is empty", spritekit.ErrInvalidInput)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d is negative", spritekit.ErrInvalidInput, c.Workers)
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("%w: max_upload_bytes must be positive", spritekit.ErrInvalidInput)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return c.Detection.Validate()
}

// ParseLevel converts debug, info, warn or error into a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("%w: log level %q", spritekit.ErrInvalidInput, s)
}
