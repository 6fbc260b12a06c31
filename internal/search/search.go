// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

// Package search wraps the external keyword-search collaborator that
// turns a "specific venue/food" request into a venue-name whitelist.
// The engine never depends on the collaborator being up: a failed or
// rate-limited search degrades to "no whitelist".
package search

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/TaeHoseong/ItDa/internal/metrics"
)

// KeywordSearcher is the collaborator contract: given a free-text
// keyword, return the names of matching venues.
type KeywordSearcher interface {
	SearchNames(ctx context.Context, keyword string) ([]string, error)
}

// GuardConfig tunes the breaker around the collaborator.
type GuardConfig struct {
	// FailureThreshold is the consecutive-failure count that opens the
	// breaker. Default: 3.
	FailureThreshold uint32

	// OpenTimeout is how long the breaker stays open before probing.
	// Default: 30s.
	OpenTimeout time.Duration

	// RatePerSecond limits outbound search calls. Zero disables the
	// limiter.
	RatePerSecond float64
}

// Guard wraps a KeywordSearcher with a circuit breaker and a rate
// limiter. On open breaker, limiter rejection, or collaborator error
// it returns a nil whitelist: composition proceeds without the
// restriction rather than failing.
type Guard struct {
	inner   KeywordSearcher
	breaker *gobreaker.CircuitBreaker[[]string]
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewGuard wraps inner with the guard.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewGuard(inner KeywordSearcher, cfg GuardConfig, logger zerolog.Logger) *Guard {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:    "keyword-search",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	return &Guard{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[[]string](settings),
		limiter: limiter,
		logger:  logger.With().Str("component", "search").Logger(),
	}
}

// SearchNames returns the whitelist for keyword, or nil when the
// search is degraded. A nil result means "no restriction".
func (g *Guard) SearchNames(ctx context.Context, keyword string) []string {
	if g.inner == nil || keyword == "" {
		return nil
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			metrics.RecordSearchOutcome("rate_limited")
			g.logger.Warn().Err(err).Msg("keyword search rate limit, skipping whitelist")
			return nil
		}
	}

	names, err := g.breaker.Execute(func() ([]string, error) {
		return g.inner.SearchNames(ctx, keyword)
	})
	if err != nil {
		outcome := "error"
		if g.breaker.State() == gobreaker.StateOpen {
			outcome = "breaker_open"
		}
		metrics.RecordSearchOutcome(outcome)
		g.logger.Warn().
			Err(err).
			Str("keyword", keyword).
			Str("breaker_state", g.breaker.State().String()).
			Msg("keyword search failed, skipping whitelist")
		return nil
	}

	metrics.RecordSearchOutcome("ok")
	return names
}
