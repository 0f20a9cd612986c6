package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	envPrefix = "BIOFITVIZ_"
	envConfig = "BIOFITVIZ_CONFIG"
)

// listKeys are comma separated when given through the environment.
var listKeys = map[string]bool{
	"change_fields":   true,
	"excluded_fields": true,
	"text_fields":     true,
	"cors_origins":    true,
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if BIOFITVIZ_CONFIG is set
//  3. env (prefix BIOFITVIZ_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", path, ErrLoadConfig, err)
		}
	}

	// BIOFITVIZ_DISPLAY_CAP -> display_cap; list keys split on commas.
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
		if key == "config" {
			return "", nil
		}
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	// Slices decode element-wise over existing values; start empty when set.
	for key := range listKeys {
		if k.Exists(key) {
			clearList(&cfg, key)
		}
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func splitList(value string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func clearList(cfg *Config, key string) {
	switch key {
	case "change_fields":
		cfg.ChangeFields = nil
	case "excluded_fields":
		cfg.ExcludedFields = nil
	case "text_fields":
		cfg.TextFields = nil
	case "cors_origins":
		cfg.CORSOrigins = nil
	}
}
