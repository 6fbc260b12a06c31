// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

// Package metrics provides Prometheus instrumentation for the engine:
// venue ranking throughput and latency, course composition, slot
// regeneration, persona recalculation, and the keyword search guard.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ranking Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itda_recommendations_total",
			Help: "Total number of venue ranking requests",
		},
		[]string{"category"},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "itda_recommendation_duration_seconds",
			Help:    "Duration of venue ranking requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CandidatePoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "itda_candidate_pool_size",
			Help:    "Number of candidate venues surviving filters per ranking request",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	// Course Composition Metrics
	CoursesComposed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itda_courses_composed_total",
			Help: "Total number of date courses composed",
		},
		[]string{"template"},
	)

	CourseComposeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "itda_course_compose_failures_total",
			Help: "Total number of course compositions that failed to fill a slot",
		},
	)

	SlotsRegenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "itda_slots_regenerated_total",
			Help: "Total number of single-slot regenerations",
		},
	)

	WideningRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "itda_widening_retries_total",
			Help: "Total number of candidate pool widening retries during slot fill",
		},
	)

	// Persona Metrics
	PersonaRecalculations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "itda_persona_recalculations_total",
			Help: "Total number of couple persona recalculations",
		},
	)

	RatingEventsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itda_rating_events_skipped_total",
			Help: "Total number of rating events skipped during persona replay",
		},
		[]string{"reason"}, // "neutral", "unresolved_venue", "empty_name"
	)

	// Keyword Search Guard Metrics
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itda_search_requests_total",
			Help: "Total number of keyword search requests through the guard",
		},
		[]string{"outcome"}, // "ok", "breaker_open", "rate_limited", "error"
	)

	// Store Metrics
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itda_store_operations_total",
			Help: "Total number of catalogue store operations",
		},
		[]string{"operation"},
	)

	ExtraFeatureRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itda_extra_feature_refreshes_total",
			Help: "Total number of extra-feature table refreshes",
		},
		[]string{"status"}, // "ok", "error"
	)
)

// ObserveRecommendation records one ranking request with its duration.
func ObserveRecommendation(category string, start time.Time) {
	RecommendationsTotal.WithLabelValues(category).Inc()
	RecommendationDuration.Observe(time.Since(start).Seconds())
}

// RecordSearchOutcome increments the search guard outcome counter.
func RecordSearchOutcome(outcome string) {
	SearchRequests.WithLabelValues(outcome).Inc()
}
