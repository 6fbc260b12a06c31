// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

// Package scoring ranks venues against a taste profile. The rank score
// combines semantic similarity, geographic distance, rating and price:
//
//	score = alpha*cosine(profile, venue) - beta*haversineKm(ref, venue)
//	      + gamma*(rating/5) + delta*price
//
// The engine is a read-only function over its inputs and safe for
// concurrent use across independent requests.
package scoring

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/TaeHoseong/ItDa/internal/extrafeature"
	"github.com/TaeHoseong/ItDa/internal/feature"
	"github.com/TaeHoseong/ItDa/internal/geo"
	"github.com/TaeHoseong/ItDa/internal/models"
)

// maxRating is the rating scale ceiling; ratings normalize to [0,1].
const maxRating = 5.0

// PriceNormalizer converts a venue's price data to a [0,1] scalar.
// Current source data is non-numeric, so the default implementation
// returns 0 for every venue; the interface keeps the delta term open
// for a real normalizer without changing the formula.
type PriceNormalizer interface {
	NormalizePrice(v *models.Venue) float64
}

// zeroPrice is the default PriceNormalizer.
type zeroPrice struct{}

func (zeroPrice) NormalizePrice(*models.Venue) float64 { return 0 }

// RankedVenue pairs a venue with its rank score.
type RankedVenue struct {
	Venue *models.Venue `json:"venue"`
	Score float64       `json:"score"`
}

// Engine computes rank scores and ordered rankings.
type Engine struct {
	price  PriceNormalizer
	logger zerolog.Logger
}

// NewEngine creates a scoring engine. A nil normalizer falls back to
// the zero-price default.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(price PriceNormalizer, logger zerolog.Logger) *Engine {
	if price == nil {
		price = zeroPrice{}
	}
	return &Engine{
		price:  price,
		logger: logger.With().Str("component", "scoring").Logger(),
	}
}

// Score computes the rank score for one (profile, venue) pair.
// Zero-magnitude vectors contribute similarity 0 rather than NaN, and a
// missing rating contributes 0; one bad venue record degrades its own
// score, never the run.
func (e *Engine) Score(profile feature.Vector, venue *models.Venue, ref geo.Coordinate, w Weights) float64 {
	venueVec := venue.Features.Vector()

	similarity := feature.Cosine(profile, venueVec)
	if profile.IsZero() || venueVec.IsZero() {
		e.logger.Debug().Str("venue", venue.Name).Msg("degenerate similarity, scoring as 0")
	}

	distance := geo.HaversineKm(ref, venue.Position)

	rating := venue.Features.Contextual.AverageRating / maxRating
	if rating < 0 {
		rating = 0
	}

	price := e.price.NormalizePrice(venue)

	return w.Alpha*similarity - w.Beta*distance + w.Gamma*rating + w.Delta*price
}

// Rank scores every venue and returns them ordered best-first. The
// extra-feature definition, when non-nil, is applied before scoring:
// a weight-type definition replaces one weight (and optionally the
// profile); a filter-type definition excludes venues below threshold on
// its feature path, treating unresolvable paths as exclusions.
func (e *Engine) Rank(profile feature.Vector, venues []*models.Venue, ref geo.Coordinate, w Weights, extra *extrafeature.Definition) []RankedVenue {
	profile, w, venues = e.applyExtra(profile, w, venues, extra)

	ranked := make([]RankedVenue, 0, len(venues))
	for _, v := range venues {
		ranked = append(ranked, RankedVenue{Venue: v, Score: e.Score(profile, v, ref, w)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// applyExtra honors at most one named override per call.
func (e *Engine) applyExtra(profile feature.Vector, w Weights, venues []*models.Venue, extra *extrafeature.Definition) (feature.Vector, Weights, []*models.Venue) {
	if extra == nil {
		return profile, w, venues
	}

	switch extra.Type {
	case extrafeature.KindWeight:
		w = w.withOverride(extra.WeightName, extra.Value)
		if override, ok := feature.FromSlice(extra.Profile); ok {
			profile = override
		}
		e.logger.Debug().
			Str("key", extra.Key).
			Str("weight", extra.WeightName).
			Float64("value", extra.Value).
			Msg("applied weight override")

	case extrafeature.KindFilter:
		kept := make([]*models.Venue, 0, len(venues))
		for _, v := range venues {
			val, ok := v.Features.Resolve(extra.FilterField)
			if !ok || val < extra.FilterThreshold {
				continue
			}
			kept = append(kept, v)
		}
		e.logger.Debug().
			Str("key", extra.Key).
			Str("field", extra.FilterField).
			Int("kept", len(kept)).
			Int("dropped", len(venues)-len(kept)).
			Msg("applied feature filter")
		venues = kept
	}

	return profile, w, venues
}
