// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

// Package extrafeature holds the named override table consulted before
// scoring: weight substitutions and hard feature filters. The table is
// an explicitly constructed, injectable object with a refresh
// operation, not ambient global state.
package extrafeature

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Kind discriminates the two override types.
type Kind string

const (
	// KindWeight replaces exactly one scoring weight.
	KindWeight Kind = "weight"
	// KindFilter excludes venues below a threshold on a feature path.
	KindFilter Kind = "filter"
)

// Definition is one named override.
type Definition struct {
	Key         string `json:"key" koanf:"key"`
	Type        Kind   `json:"type" koanf:"type"`
	Description string `json:"description,omitempty" koanf:"description"`

	// Weight overrides: which of alpha/beta/gamma/delta to replace,
	// and the value to replace it with.
	WeightName string  `json:"weight_name,omitempty" koanf:"weight_name"`
	Value      float64 `json:"value,omitempty" koanf:"value"`

	// Profile optionally replaces the scoring profile outright.
	Profile []float64 `json:"profile,omitempty" koanf:"profile"`

	// Filter overrides: dotted path into the venue feature document
	// plus the minimum value to keep a venue.
	FilterField     string  `json:"filter_field,omitempty" koanf:"filter_field"`
	FilterThreshold float64 `json:"filter_threshold,omitempty" koanf:"filter_threshold"`
}

// Source supplies the active definitions. Implemented by the config
// layer and, in the original deployment, by a database table.
type Source interface {
	ActiveDefinitions(ctx context.Context) ([]Definition, error)
}

// StaticSource serves a fixed definition list, typically from config.
type StaticSource []Definition

// ActiveDefinitions implements Source.
func (s StaticSource) ActiveDefinitions(_ context.Context) ([]Definition, error) {
	return s, nil
}

// Table caches the active definitions behind a refresh operation.
// Safe for concurrent use.
type Table struct {
	source Source
	logger zerolog.Logger

	mu   sync.RWMutex
	defs map[string]Definition
}

// NewTable creates an empty table reading from source. Call Refresh
// before first use, or rely on the supervised RefreshService.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTable(source Source, logger zerolog.Logger) *Table {
	return &Table{
		source: source,
		logger: logger.With().Str("component", "extrafeature").Logger(),
		defs:   make(map[string]Definition),
	}
}

// Refresh re-reads the active definitions from the source, replacing
// the cached table wholesale.
func (t *Table) Refresh(ctx context.Context) error {
	defs, err := t.source.ActiveDefinitions(ctx)
	if err != nil {
		return fmt.Errorf("load extra features: %w", err)
	}

	next := make(map[string]Definition, len(defs))
	for _, d := range defs {
		next[d.Key] = d
	}

	t.mu.Lock()
	t.defs = next
	t.mu.Unlock()

	t.logger.Debug().Int("count", len(next)).Msg("extra feature table refreshed")
	return nil
}

// Lookup returns the definition for key. Unknown keys return false;
// an unknown key is a no-op at scoring time, not an error.
func (t *Table) Lookup(key string) (Definition, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.defs[key]
	return d, ok
}

// Len returns the number of cached definitions.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.defs)
}
