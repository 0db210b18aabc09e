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

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if CATAN_CONFIG is set
//  3. env (prefix CATAN_)
//
// List values from env are comma separated, e.g. CATAN_ROSTER="Anna,Ben,Cleo",
// and map values are comma separated pairs, e.g. CATAN_METRICS_LABELS="env=prod".
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("CATAN_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("CATAN_", ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	// Decoding into a non-empty slice keeps trailing defaults, so lists start
	// empty and fall back to the defaults afterwards.
	cfg := *base
	cfg.Resources = nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if len(cfg.Resources) == 0 {
		cfg.Resources = base.Resources
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// listKeys and mapKeys name the env keys decoded into slices and maps.
var (
	listKeys = map[string]bool{"resources": true, "roster": true, "metrics_buckets": true}
	mapKeys  = map[string]bool{"metrics_labels": true}
)

// envValue maps CATAN_DATA_PATH to data_path (flat keys, underscores
// preserved) and splits list and map values.
func envValue(key, value string) (string, interface{}) {
	key = strings.TrimPrefix(strings.ToLower(key), "catan_")
	switch {
	case listKeys[key]:
		return key, splitList(value)
	case mapKeys[key]:
		out := make(map[string]interface{})
		for _, pair := range splitList(value) {
			k, v, _ := strings.Cut(pair, "=")
			if k = strings.TrimSpace(k); k != "" {
				out[k] = strings.TrimSpace(v)
			}
		}
		return key, out
	}
	return key, value
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
