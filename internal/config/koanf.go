// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"itda.yaml",
	"itda.yml",
	"/etc/itda/config.yaml",
	"/etc/itda/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "ITDA_CONFIG"

// envPrefix is stripped from environment variables before mapping them
// to koanf paths: ITDA_SCORING_WEIGHTS_ALPHA -> scoring.weights.alpha.
const envPrefix = "ITDA_"

// Load loads configuration with layered sources:
//  1. Defaults: built-in values
//  2. Config file: optional YAML file (if found)
//  3. Environment variables: highest priority
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processIntSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file, honoring ITDA_CONFIG first.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc maps an environment variable name to a koanf path.
//
//	ITDA_LOGGING_LEVEL          -> logging.level
//	ITDA_SCORING_WEIGHTS_ALPHA  -> scoring.weights.alpha
//	ITDA_STORE_PATH             -> store.path
//
// Multi-word leaf keys keep their underscore:
//
//	ITDA_SCORING_TOP_K          -> scoring.top_k
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	// Leaf keys that contain underscores must not be split on them.
	compound := map[string]string{
		"scoring_top_k":                   "scoring.top_k",
		"extra_features_refresh_interval": "extra_features.refresh_interval",
		"search_failure_threshold":        "search.failure_threshold",
		"search_open_timeout":             "search.open_timeout",
		"search_rate_per_second":          "search.rate_per_second",
		"course_reference_latitude":       "course.reference.latitude",
		"course_reference_longitude":      "course.reference.longitude",
	}
	if path, ok := compound[key]; ok {
		return path
	}

	return strings.ReplaceAll(key, "_", ".")
}

// intSliceConfigPaths lists config paths parsed as comma-separated int
// slices when they arrive as strings from the environment.
var intSliceConfigPaths = []string{
	"course.widening",
}

// processIntSliceFields converts comma-separated string values to int
// slices for known slice fields.
func processIntSliceFields(k *koanf.Koanf) error {
	for _, path := range intSliceConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		sizes := make([]int, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			n, err := strconv.Atoi(p)
			if err != nil {
				return fmt.Errorf("invalid integer %q in %s: %w", p, path, err)
			}
			sizes = append(sizes, n)
		}
		if len(sizes) > 0 {
			if err := k.Set(path, sizes); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}
