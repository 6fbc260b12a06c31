// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

package course

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/TaeHoseong/ItDa/internal/feature"
	"github.com/TaeHoseong/ItDa/internal/geo"
	"github.com/TaeHoseong/ItDa/internal/metrics"
	"github.com/TaeHoseong/ItDa/internal/models"
	"github.com/TaeHoseong/ItDa/internal/scoring"
)

// Sentinel errors surfaced to callers. Everything else the composer
// encounters degrades locally.
var (
	// ErrNoCandidateForSlot means a slot found zero eligible venues
	// after exhausting the widening progression. Fatal to the whole
	// compose or regenerate call; partial courses are never returned.
	ErrNoCandidateForSlot = errors.New("no candidate venue for slot")

	// ErrInvalidSlotIndex means a regeneration target is out of range.
	ErrInvalidSlotIndex = errors.New("invalid slot index")
)

// SlotRequest asks the recommender for ranked venues for one slot.
// A nil Day skips weekday closure filtering.
type SlotRequest struct {
	Profile      feature.Vector
	Ref          geo.Coordinate
	Category     string
	ExcludeNames []string
	Day          *time.Weekday
	Keyword      string
	ExtraKey     string
	K            int
}

// SlotRecommender supplies ranked venue picks per slot. Implemented by
// the service facade over CandidatePool and ScoringEngine; the
// interface keeps this package free of storage and search concerns.
type SlotRecommender interface {
	RecommendForSlot(ctx context.Context, req SlotRequest) ([]scoring.RankedVenue, error)
}

// Composer builds and regenerates courses. It holds no state between
// calls; the Course being built is request-local.
type Composer struct {
	recommender SlotRecommender
	templates   Templates
	widening    []int
	logger      zerolog.Logger
}

// defaultWidening is the pool-size progression tried per slot before
// giving up.
var defaultWidening = []int{10, 20, 30, 50}

// NewComposer creates a composer. Nil templates fall back to the
// built-in set; an empty widening progression falls back to the
// default 10→20→30→50.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewComposer(recommender SlotRecommender, templates Templates, widening []int, logger zerolog.Logger) *Composer {
	if templates == nil {
		templates = DefaultTemplates()
	}
	if len(widening) == 0 {
		widening = defaultWidening
	}
	return &Composer{
		recommender: recommender,
		templates:   templates,
		widening:    widening,
		logger:      logger.With().Str("component", "composer").Logger(),
	}
}

// ComposeRequest carries everything a compose call needs.
type ComposeRequest struct {
	CoupleID string
	Profile  feature.Vector
	Ref      geo.Coordinate
	Date     time.Time
	Template string
	Prefs    *Preferences
	ExtraKey string
}

// Compose builds a complete course for the request. Template "auto"
// (or empty) selects from the profile; unknown template names fall
// back to the full-day template. Returns ErrNoCandidateForSlot when
// any slot cannot be filled.
func (c *Composer) Compose(ctx context.Context, req ComposeRequest) (*models.Course, error) {
	name := req.Template
	if name == "" || name == TemplateAuto {
		name = SelectTemplate(req.Profile)
		c.logger.Debug().Str("template", name).Msg("auto-selected template")
	}

	skeleton, ok := c.templates[name]
	if !ok {
		c.logger.Warn().Str("template", name).Msg("unknown template, using full_day")
		name = TemplateFullDay
		skeleton = c.templates[name]
	}

	slots := cloneSlots(skeleton)
	if req.Prefs != nil {
		slots = req.Prefs.apply(slots, c.logger)
	}

	built := models.Course{
		ID:        uuid.NewString(),
		CoupleID:  req.CoupleID,
		Date:      req.Date.Format("2006-01-02"),
		Template:  name,
		Slots:     make([]models.CourseSlot, 0, len(slots)),
		CreatedAt: time.Now(),
	}

	used := make([]string, 0, len(slots))
	ref := req.Ref
	day := req.Date.Weekday()
	for i, cfg := range slots {
		pick, err := c.fillSlot(ctx, SlotRequest{
			Profile:      req.Profile,
			Ref:          ref,
			Category:     cfg.Category,
			ExcludeNames: used,
			Day:          &day,
			ExtraKey:     req.ExtraKey,
		})
		if err != nil {
			return nil, fmt.Errorf("slot %d (%s): %w", i, cfg.Type, err)
		}

		built.Slots = append(built.Slots, slotFromPick(cfg, pick))
		used = append(used, pick.Venue.Name)
		ref = pick.Venue.Position
	}

	built.Recalculate()

	c.logger.Info().
		Str("course_id", built.ID).
		Str("template", name).
		Int("slots", len(built.Slots)).
		Float64("total_distance_km", built.TotalDistanceKm).
		Msg("course composed")

	return &built, nil
}

// RegenerateSlot replaces one slot's venue in a copy of the course.
// The exclusion set covers every venue currently assigned anywhere in
// the course, so regeneration can never reintroduce a duplicate. The
// input course is left untouched.
func (c *Composer) RegenerateSlot(ctx context.Context, orig *models.Course, idx int, profile feature.Vector, overrideCategory, keyword string, extraKey string) (*models.Course, error) {
	if idx < 0 || idx >= len(orig.Slots) {
		return nil, fmt.Errorf("slot %d of %d: %w", idx, len(orig.Slots), ErrInvalidSlotIndex)
	}

	next := orig.Clone()
	target := &next.Slots[idx]

	category := target.Category
	if overrideCategory != "" {
		category = overrideCategory
	}

	ref := target.Position
	if idx > 0 {
		ref = next.Slots[idx-1].Position
	}

	var day *time.Weekday
	if parsed, err := time.Parse("2006-01-02", next.Date); err != nil {
		c.logger.Warn().Str("date", next.Date).Msg("unparseable course date, skipping weekday filter")
	} else {
		weekday := parsed.Weekday()
		day = &weekday
	}

	pick, err := c.fillSlot(ctx, SlotRequest{
		Profile:      profile,
		Ref:          ref,
		Category:     category,
		ExcludeNames: next.VenueNames(),
		Day:          day,
		Keyword:      keyword,
		ExtraKey:     extraKey,
	})
	if err != nil {
		return nil, fmt.Errorf("regenerate slot %d (%s): %w", idx, target.Type, err)
	}

	cfg := SlotConfig{
		Type:      target.Type,
		Category:  category,
		StartTime: target.StartTime,
		Duration:  target.Duration,
		Icon:      target.Icon,
	}
	next.Slots[idx] = slotFromPick(cfg, pick)
	next.Recalculate()
	next.UpdatedAt = time.Now()

	c.logger.Info().
		Str("course_id", next.ID).
		Int("slot", idx).
		Str("venue", pick.Venue.Name).
		Msg("slot regenerated")

	return &next, nil
}

// fillSlot tries the widening progression until the recommender yields
// at least one eligible venue, then takes the best pick.
func (c *Composer) fillSlot(ctx context.Context, req SlotRequest) (scoring.RankedVenue, error) {
	for _, k := range c.widening {
		req.K = k
		ranked, err := c.recommender.RecommendForSlot(ctx, req)
		if err != nil {
			return scoring.RankedVenue{}, err
		}
		if len(ranked) > 0 {
			return ranked[0], nil
		}
		metrics.WideningRetries.Inc()
		c.logger.Debug().
			Str("category", req.Category).
			Int("k", k).
			Msg("empty pool, widening")
	}
	return scoring.RankedVenue{}, ErrNoCandidateForSlot
}

func slotFromPick(cfg SlotConfig, pick scoring.RankedVenue) models.CourseSlot {
	return models.CourseSlot{
		Type:         cfg.Type,
		Category:     cfg.Category,
		StartTime:    cfg.StartTime,
		Duration:     cfg.Duration,
		Icon:         cfg.Icon,
		VenueName:    pick.Venue.Name,
		VenueAddress: pick.Venue.Address,
		Position:     pick.Venue.Position,
		Rating:       pick.Venue.Features.Contextual.AverageRating,
		PriceRange:   pick.Venue.PriceRange,
		Score:        pick.Score,
	}
}
