// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

// Package feedback recomputes a couple's taste profile from a base
// blend of the two member personas plus a replay of historical rating
// events. The computation is deterministic: every call restarts from
// the base and replays the full diary history in creation order, so
// repeated recalculation never accumulates drift and deleted diaries
// are reflected on the next call.
package feedback

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/TaeHoseong/ItDa/internal/feature"
	"github.com/TaeHoseong/ItDa/internal/metrics"
	"github.com/TaeHoseong/ItDa/internal/models"
)

// neutralRating is the no-op midpoint on the 1-5 scale. Ratings are
// integers in practice, so 2.5 never occurs naturally.
const neutralRating = 2.5

// adjustmentStep converts rating offset to a blend ratio:
// rating 5 → +0.1, rating 1 → -0.06.
const adjustmentStep = 0.04

// Result of one recalculation.
type Result struct {
	BasePersona feature.Vector `json:"base_persona"`
	NewPersona  feature.Vector `json:"new_persona"`
	DiaryCount  int            `json:"diary_count"`
	EventCount  int            `json:"event_count"`
}

// VenueFeatureResolver resolves a venue name to its catalogued feature
// vector. Events whose venue cannot be resolved are skipped, never
// surfaced as errors.
type VenueFeatureResolver interface {
	VenueFeatures(name string) (feature.Vector, bool)
}

// Adapter derives couple personas from member profiles and diary
// history.
type Adapter struct {
	logger zerolog.Logger
}

// NewAdapter creates a feedback adapter.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAdapter(logger zerolog.Logger) *Adapter {
	return &Adapter{logger: logger.With().Str("component", "feedback").Logger()}
}

// BasePersona blends the two member personas. When the genders are
// exactly one male and one female the blend is male*0.3 + female*0.7,
// regardless of member order; any other combination averages.
func (a *Adapter) BasePersona(members [2]models.CoupleMember) feature.Vector {
	m0, m1 := members[0], members[1]

	switch {
	case m0.Gender == models.GenderMale && m1.Gender == models.GenderFemale:
		return feature.Blend(m0.Vector, m1.Vector, 0.3, 0.7)
	case m0.Gender == models.GenderFemale && m1.Gender == models.GenderMale:
		return feature.Blend(m0.Vector, m1.Vector, 0.7, 0.3)
	default:
		return feature.Mean(m0.Vector, m1.Vector)
	}
}

// Recalculate computes the couple's effective persona: the base blend
// with every rating event replayed in diary creation order. An empty
// history returns exactly the base persona, which handles the
// "all diaries deleted" reset.
func (a *Adapter) Recalculate(members [2]models.CoupleMember, diaries []models.DiaryEntry, resolver VenueFeatureResolver) Result {
	base := a.BasePersona(members)
	current := base
	applied := 0

	for _, diary := range diaries {
		for _, event := range diary.Events {
			if event.VenueName == "" {
				metrics.RatingEventsSkipped.WithLabelValues("empty_name").Inc()
				continue
			}
			if event.Rating == 0 || event.Rating == neutralRating {
				metrics.RatingEventsSkipped.WithLabelValues("neutral").Inc()
				continue
			}
			venueVec, ok := resolver.VenueFeatures(event.VenueName)
			if !ok {
				metrics.RatingEventsSkipped.WithLabelValues("unresolved_venue").Inc()
				a.logger.Debug().
					Str("venue", event.VenueName).
					Msg("rating event venue unresolved, skipping")
				continue
			}
			current = applyRating(current, venueVec, event.Rating)
			applied++
		}
	}

	a.logger.Debug().
		Int("diaries", len(diaries)).
		Int("events", applied).
		Msg("persona recalculated")

	return Result{
		BasePersona: base,
		NewPersona:  current,
		DiaryCount:  len(diaries),
		EventCount:  applied,
	}
}

// applyRating moves the persona toward (or away from) the venue vector
// by ratio = (rating - 2.5) * 0.04, clamped to [0,1] per dimension.
// Each step rounds to 4 decimals, matching the persisted precision, so
// recalculation is bit-identical across runs.
func applyRating(current, venueVec feature.Vector, rating float64) feature.Vector {
	ratio := (rating - neutralRating) * adjustmentStep

	var next feature.Vector
	for i := 0; i < feature.Dim; i++ {
		v := current[i] + (venueVec[i]-current[i])*ratio
		next[i] = round4(feature.Clamp01(v))
	}
	return next
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
