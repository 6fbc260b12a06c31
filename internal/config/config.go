// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

// Package config provides layered configuration for the engine using
// Koanf v2. Precedence: environment variables > YAML config file >
// built-in defaults.
package config

import (
	"fmt"
	"time"

	"github.com/TaeHoseong/ItDa/internal/course"
	"github.com/TaeHoseong/ItDa/internal/extrafeature"
	"github.com/TaeHoseong/ItDa/internal/geo"
	"github.com/TaeHoseong/ItDa/internal/scoring"
)

// Config is the root configuration structure.
type Config struct {
	Logging       LoggingConfig       `koanf:"logging"`
	Store         StoreConfig         `koanf:"store"`
	Scoring       ScoringConfig       `koanf:"scoring"`
	Course        CourseConfig        `koanf:"course"`
	ExtraFeatures ExtraFeaturesConfig `koanf:"extra_features"`
	Search        SearchConfig        `koanf:"search"`
}

// LoggingConfig configures the zerolog-based logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// StoreConfig configures the Badger-backed catalogue.
type StoreConfig struct {
	// Path is the Badger database directory. Empty means in-memory.
	Path string `koanf:"path"`
}

// ScoringConfig configures the ranking engine.
type ScoringConfig struct {
	Weights scoring.Weights `koanf:"weights"`

	// TopK is the default number of ranked venues returned per request.
	TopK int `koanf:"top_k"`
}

// CourseConfig configures course composition.
type CourseConfig struct {
	// Widening is the candidate pool size progression used when a slot
	// cannot be filled from the initial pool.
	Widening []int `koanf:"widening"`

	// Reference is the fallback reference position when a request
	// carries none.
	Reference geo.Coordinate `koanf:"reference"`

	// Templates overrides the built-in slot templates when non-empty.
	Templates map[string][]course.SlotConfig `koanf:"templates"`
}

// ExtraFeaturesConfig configures the extra-feature override table.
type ExtraFeaturesConfig struct {
	RefreshInterval time.Duration             `koanf:"refresh_interval"`
	Definitions     []extrafeature.Definition `koanf:"definitions"`
}

// SearchConfig configures the keyword search guard.
type SearchConfig struct {
	FailureThreshold uint32        `koanf:"failure_threshold"`
	OpenTimeout      time.Duration `koanf:"open_timeout"`
	RatePerSecond    float64       `koanf:"rate_per_second"`
}

// defaultConfig returns a Config with all default values. The defaults
// are loaded first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Store: StoreConfig{
			Path: "/data/itda",
		},
		Scoring: ScoringConfig{
			Weights: scoring.DefaultWeights(),
			TopK:    5,
		},
		Course: CourseConfig{
			Widening: []int{10, 20, 30, 50},
			// Gangnam station, the default meeting point.
			Reference: geo.Coordinate{Lat: 37.4979, Lng: 127.0276},
		},
		ExtraFeatures: ExtraFeaturesConfig{
			RefreshInterval: 5 * time.Minute,
		},
		Search: SearchConfig{
			FailureThreshold: 3,
			OpenTimeout:      30 * time.Second,
			RatePerSecond:    0,
		},
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("invalid logging level %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid logging format %q", c.Logging.Format)
	}

	if c.Scoring.TopK <= 0 {
		return fmt.Errorf("scoring top_k must be positive, got %d", c.Scoring.TopK)
	}

	prev := 0
	for _, size := range c.Course.Widening {
		if size <= prev {
			return fmt.Errorf("course widening must be strictly increasing positive sizes, got %v", c.Course.Widening)
		}
		prev = size
	}

	if c.Course.Reference.Lat < -90 || c.Course.Reference.Lat > 90 {
		return fmt.Errorf("reference latitude out of range: %f", c.Course.Reference.Lat)
	}
	if c.Course.Reference.Lng < -180 || c.Course.Reference.Lng > 180 {
		return fmt.Errorf("reference longitude out of range: %f", c.Course.Reference.Lng)
	}

	if c.Search.RatePerSecond < 0 {
		return fmt.Errorf("search rate_per_second must not be negative, got %f", c.Search.RatePerSecond)
	}

	for i := range c.ExtraFeatures.Definitions {
		def := &c.ExtraFeatures.Definitions[i]
		if def.Key == "" {
			return fmt.Errorf("extra feature definition %d has empty key", i)
		}
		switch def.Type {
		case extrafeature.KindWeight, extrafeature.KindFilter:
		default:
			return fmt.Errorf("extra feature %q has unknown type %q", def.Key, def.Type)
		}
	}

	return nil
}
