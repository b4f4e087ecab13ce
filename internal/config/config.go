// Package config loads strictd settings from a YAML file with STRICTD_*
// environment overrides.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goflash/strict/middleware"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STRICTD_"

// Config is the strictd server configuration.
type Config struct {
	Addr      string                     `mapstructure:"addr" validate:"required"`
	LogLevel  string                     `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string                     `mapstructure:"log_format" validate:"oneof=json text"`
	StrictURI middleware.StrictURIConfig `mapstructure:"strict_uri"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "json",
		StrictURI: middleware.StrictURIConfig{ErrorPath: middleware.DefaultErrorPath},
	}
}

// env keys mapped to their place in the settings tree
var envKeys = map[string][]string{
	"ADDR":       {"addr"},
	"LOG_LEVEL":  {"log_level"},
	"LOG_FORMAT": {"log_format"},
	"PREFIX":     {"strict_uri", "prefix"},
	"ERROR_PATH": {"strict_uri", "error_path"},
	"MAX_LENGTH": {"strict_uri", "max_length"},
}

var validate = validator.New()

// Load reads path (skipped when empty), applies environment overrides and
// validates the result. Precedence: env > file > defaults.
func Load(path string) (Config, error) {
	raw := map[string]any{}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}
	applyEnv(raw)

	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(raw map[string]any) {
	for suffix, keys := range envKeys {
		v, ok := os.LookupEnv(EnvPrefix + suffix)
		if !ok {
			continue
		}
		m := raw
		for _, k := range keys[:len(keys)-1] {
			sub, ok := m[k].(map[string]any)
			if !ok {
				sub = map[string]any{}
				m[k] = sub
			}
			m = sub
		}
		m[keys[len(keys)-1]] = v
	}
}

// NewLogger builds the slog logger described by LogLevel and LogFormat.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
