// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

// Package service is the facade over the engine's parts: it resolves
// couple personas, pools and ranks candidate venues, composes and
// regenerates courses, and replays diary feedback into the effective
// persona. Transport layers and CLIs call this package only.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/TaeHoseong/ItDa/internal/candidate"
	"github.com/TaeHoseong/ItDa/internal/course"
	"github.com/TaeHoseong/ItDa/internal/extrafeature"
	"github.com/TaeHoseong/ItDa/internal/feature"
	"github.com/TaeHoseong/ItDa/internal/feedback"
	"github.com/TaeHoseong/ItDa/internal/geo"
	"github.com/TaeHoseong/ItDa/internal/metrics"
	"github.com/TaeHoseong/ItDa/internal/models"
	"github.com/TaeHoseong/ItDa/internal/scoring"
	"github.com/TaeHoseong/ItDa/internal/search"
	"github.com/TaeHoseong/ItDa/internal/store"
	"github.com/TaeHoseong/ItDa/internal/validation"
)

// Options configures a Recommender.
type Options struct {
	Venues   store.VenueSource
	Profiles store.ProfileSource
	Diaries  store.DiarySource

	// Extras is optional; nil disables extra-feature overrides.
	Extras *extrafeature.Table

	// Guard is optional; nil disables keyword whitelisting.
	Guard *search.Guard

	Weights   scoring.Weights
	TopK      int
	Widening  []int
	Templates course.Templates

	// Reference is the fallback reference position for requests that
	// carry none.
	Reference geo.Coordinate

	// Price is optional; nil keeps the price term at zero.
	Price scoring.PriceNormalizer

	Logger zerolog.Logger
}

// Recommender is the engine facade. It is safe for concurrent use.
type Recommender struct {
	venues   store.VenueSource
	profiles store.ProfileSource
	diaries  store.DiarySource

	engine   *scoring.Engine
	weights  scoring.Weights
	topK     int
	extras   *extrafeature.Table
	guard    *search.Guard
	composer *course.Composer
	feedback *feedback.Adapter
	ref      geo.Coordinate
	logger   zerolog.Logger

	// coupleMu serializes recalculation per couple so concurrent diary
	// submissions cannot interleave replays.
	coupleMu sync.Mutex
	locks    map[string]*sync.Mutex
}

// New creates the facade. TopK defaults to 5 when unset.
func New(opts Options) *Recommender {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}

	r := &Recommender{
		venues:   opts.Venues,
		profiles: opts.Profiles,
		diaries:  opts.Diaries,
		engine:   scoring.NewEngine(opts.Price, opts.Logger),
		weights:  opts.Weights,
		topK:     opts.TopK,
		extras:   opts.Extras,
		guard:    opts.Guard,
		feedback: feedback.NewAdapter(opts.Logger),
		ref:      opts.Reference,
		logger:   opts.Logger.With().Str("component", "service").Logger(),
		locks:    make(map[string]*sync.Mutex),
	}
	r.composer = course.NewComposer(r, opts.Templates, opts.Widening, opts.Logger)
	return r
}

// RecommendRequest asks for ranked venues for a couple.
type RecommendRequest struct {
	CoupleID string

	// Profile, when non-nil, overrides the stored effective persona.
	Profile []float64

	Category string
	Keyword  string
	Ref      *geo.Coordinate
	Day      *time.Weekday
	ExtraKey string

	// ExcludeNames drops the named venues from the candidate pool.
	ExcludeNames []string

	// Weights, when non-nil, overrides the configured scoring weights
	// for this request only.
	Weights *scoring.Weights

	// K caps the candidate pool; zero uses the configured top-k.
	K int
}

// Recommend returns the top ranked venues for the request. The pool is
// the K venues nearest the reference position that survive filtering.
func (r *Recommender) Recommend(ctx context.Context, req RecommendRequest) ([]scoring.RankedVenue, error) {
	start := time.Now()
	defer metrics.ObserveRecommendation(req.Category, start)

	profile, err := r.resolveProfile(ctx, req.CoupleID, req.Profile)
	if err != nil {
		return nil, err
	}

	ref := r.ref
	if req.Ref != nil {
		ref = *req.Ref
	}

	k := req.K
	if k <= 0 {
		k = r.topK
	}

	ranked, err := r.rank(ctx, slotQuery{
		profile:  profile,
		ref:      ref,
		category: req.Category,
		exclude:  req.ExcludeNames,
		keyword:  req.Keyword,
		day:      req.Day,
		extraKey: req.ExtraKey,
		weights:  req.Weights,
		poolSize: k,
	})
	if err != nil {
		return nil, err
	}

	if len(ranked) > r.topK {
		ranked = ranked[:r.topK]
	}
	return ranked, nil
}

// ComposeCourseRequest asks for a full course.
type ComposeCourseRequest struct {
	CoupleID string
	Profile  []float64
	Ref      *geo.Coordinate
	Date     time.Time
	Template string
	Prefs    *course.Preferences
	ExtraKey string
}

// ComposeCourse builds a complete course for the couple.
func (r *Recommender) ComposeCourse(ctx context.Context, req ComposeCourseRequest) (*models.Course, error) {
	profile, err := r.resolveProfile(ctx, req.CoupleID, req.Profile)
	if err != nil {
		return nil, err
	}

	ref := r.ref
	if req.Ref != nil {
		ref = *req.Ref
	}

	built, err := r.composer.Compose(ctx, course.ComposeRequest{
		CoupleID: req.CoupleID,
		Profile:  profile,
		Ref:      ref,
		Date:     req.Date,
		Template: req.Template,
		Prefs:    req.Prefs,
		ExtraKey: req.ExtraKey,
	})
	if err != nil {
		metrics.CourseComposeFailures.Inc()
		return nil, err
	}

	metrics.CoursesComposed.WithLabelValues(built.Template).Inc()
	return built, nil
}

// RegenerateRequest asks for one slot of an existing course to be
// refilled.
type RegenerateRequest struct {
	Course    *models.Course
	SlotIndex int

	// Category, when set, replaces the slot's category for the refill.
	Category string

	// Keyword, when set, restricts candidates to keyword-search matches.
	Keyword string

	ExtraKey string
}

// RegenerateSlot replaces one slot of an existing course and returns
// the regenerated copy. The input course is not modified.
func (r *Recommender) RegenerateSlot(ctx context.Context, req RegenerateRequest) (*models.Course, error) {
	profile, err := r.resolveProfile(ctx, req.Course.CoupleID, nil)
	if err != nil {
		return nil, err
	}

	next, err := r.composer.RegenerateSlot(ctx, req.Course, req.SlotIndex, profile, req.Category, req.Keyword, req.ExtraKey)
	if err != nil {
		return nil, err
	}

	metrics.SlotsRegenerated.Inc()
	return next, nil
}

// RecalculatePersona replays the couple's full diary history over the
// gender-blended base persona and persists the result. Calls for the
// same couple are serialized.
func (r *Recommender) RecalculatePersona(ctx context.Context, coupleID string) (feedback.Result, error) {
	lock := r.coupleLock(coupleID)
	lock.Lock()
	defer lock.Unlock()

	couple, err := r.profiles.GetCouple(ctx, coupleID)
	if err != nil {
		return feedback.Result{}, fmt.Errorf("load couple %s: %w", coupleID, err)
	}

	diaries, err := r.diaries.ListDiaries(ctx, coupleID)
	if err != nil {
		return feedback.Result{}, fmt.Errorf("load diaries for %s: %w", coupleID, err)
	}

	resolver, err := r.venueResolver(ctx)
	if err != nil {
		return feedback.Result{}, err
	}

	result := r.feedback.Recalculate(surveyedMembers(couple.Members), diaries, resolver)

	if err := r.profiles.PutCoupleEffective(ctx, coupleID, result.NewPersona.Slice()); err != nil {
		return feedback.Result{}, fmt.Errorf("persist effective persona for %s: %w", coupleID, err)
	}

	metrics.PersonaRecalculations.Inc()
	r.logger.Info().
		Str("couple_id", coupleID).
		Int("diaries", result.DiaryCount).
		Int("events", result.EventCount).
		Msg("persona recalculated")

	return result, nil
}

// UpdatePersona validates and stores a wholesale persona re-submission.
// A persona that passes validation is marked survey-complete.
func (r *Recommender) UpdatePersona(ctx context.Context, update models.PersonaUpdate) (*models.Persona, error) {
	if err := validation.ValidateStruct(&update); err != nil {
		return nil, fmt.Errorf("invalid persona update: %w", err)
	}

	vec, ok := feature.FromSlice(update.Dimensions)
	if !ok {
		return nil, fmt.Errorf("persona update must have %d dimensions, got %d", feature.Dim, len(update.Dimensions))
	}

	persona := &models.Persona{
		OwnerID:    update.OwnerID,
		Vector:     vec,
		SurveyDone: true,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := r.profiles.PutPersona(ctx, persona); err != nil {
		return nil, fmt.Errorf("persist persona for %s: %w", update.OwnerID, err)
	}

	r.logger.Info().Str("owner_id", update.OwnerID).Msg("persona updated")
	return persona, nil
}

// Persona returns the stored persona for a user.
func (r *Recommender) Persona(ctx context.Context, userID string) (*models.Persona, error) {
	p, err := r.profiles.GetPersona(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load persona %s: %w", userID, err)
	}
	return p, nil
}

// RecommendForSlot implements course.SlotRecommender.
func (r *Recommender) RecommendForSlot(ctx context.Context, req course.SlotRequest) ([]scoring.RankedVenue, error) {
	return r.rank(ctx, slotQuery{
		profile:  req.Profile,
		ref:      req.Ref,
		category: req.Category,
		exclude:  req.ExcludeNames,
		keyword:  req.Keyword,
		day:      req.Day,
		extraKey: req.ExtraKey,
		poolSize: req.K,
	})
}

// slotQuery is the internal ranking request shared by Recommend and
// RecommendForSlot.
type slotQuery struct {
	profile  feature.Vector
	ref      geo.Coordinate
	category string
	exclude  []string
	keyword  string
	day      *time.Weekday
	extraKey string

	// weights, when non-nil, replaces the configured weights for this
	// query only.
	weights  *scoring.Weights
	poolSize int
}

// rank pools the nearest venues, filters them, and ranks the survivors.
func (r *Recommender) rank(ctx context.Context, q slotQuery) ([]scoring.RankedVenue, error) {
	venues, err := r.venues.ListVenues(ctx)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}

	pool := candidate.NewSpatialIndex(venues, 0).NearestK(q.ref, q.poolSize)

	var whitelist []string
	if q.keyword != "" {
		if r.guard != nil {
			whitelist = r.guard.SearchNames(ctx, q.keyword)
		} else {
			r.logger.Warn().Str("keyword", q.keyword).Msg("keyword ignored, no search collaborator configured")
		}
	}

	kept := candidate.Filter(pool, candidate.Criteria{
		ExcludeNames:  q.exclude,
		Category:      q.category,
		Day:           q.day,
		NameWhitelist: whitelist,
	})
	metrics.CandidatePoolSize.Observe(float64(len(kept)))

	var extra *extrafeature.Definition
	if q.extraKey != "" && r.extras != nil {
		if def, ok := r.extras.Lookup(q.extraKey); ok {
			extra = &def
		} else {
			r.logger.Warn().Str("extra_key", q.extraKey).Msg("unknown extra feature key, ignoring")
		}
	}

	weights := r.weights
	if q.weights != nil {
		weights = *q.weights
	}
	return r.engine.Rank(q.profile, kept, q.ref, weights, extra), nil
}

// resolveProfile picks the persona to score with: an explicit profile
// wins, then the couple's stored effective persona, then the default
// profile.
func (r *Recommender) resolveProfile(ctx context.Context, coupleID string, explicit []float64) (feature.Vector, error) {
	if explicit != nil {
		vec, ok := feature.FromSlice(explicit)
		if !ok {
			return feature.Vector{}, fmt.Errorf("explicit profile must have %d dimensions, got %d", feature.Dim, len(explicit))
		}
		return vec, nil
	}

	if coupleID == "" {
		return models.DefaultProfile, nil
	}

	couple, err := r.profiles.GetCouple(ctx, coupleID)
	if err != nil {
		if errors.Is(err, store.ErrCoupleNotFound) {
			r.logger.Debug().Str("couple_id", coupleID).Msg("couple not found, using default profile")
			return models.DefaultProfile, nil
		}
		return feature.Vector{}, fmt.Errorf("load couple %s: %w", coupleID, err)
	}

	if !couple.Effective.IsZero() {
		return couple.Effective, nil
	}

	// No recalculated persona yet: blend the member profiles directly,
	// falling back to the default profile for a brand-new couple.
	base := r.feedback.BasePersona(surveyedMembers(couple.Members))
	if !base.IsZero() {
		return base, nil
	}
	return models.DefaultProfile, nil
}

// surveyedMembers substitutes the default profile for any member whose
// survey was never completed. Unset member vectors must not reach the
// gender blend.
func surveyedMembers(members [2]models.CoupleMember) [2]models.CoupleMember {
	for i := range members {
		if !members[i].SurveyDone {
			members[i].Vector = models.DefaultProfile
		}
	}
	return members
}

// venueResolver snapshots the catalogue into a name -> feature vector
// lookup for diary replay.
func (r *Recommender) venueResolver(ctx context.Context) (feedback.VenueFeatureResolver, error) {
	venues, err := r.venues.ListVenues(ctx)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}

	byName := make(map[string]feature.Vector, len(venues))
	for _, v := range venues {
		byName[v.Name] = v.Features.Vector()
	}
	return mapResolver(byName), nil
}

type mapResolver map[string]feature.Vector

func (m mapResolver) VenueFeatures(name string) (feature.Vector, bool) {
	vec, ok := m[name]
	return vec, ok
}

// coupleLock returns the per-couple mutex, creating it on first use.
func (r *Recommender) coupleLock(coupleID string) *sync.Mutex {
	r.coupleMu.Lock()
	defer r.coupleMu.Unlock()

	lock, ok := r.locks[coupleID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[coupleID] = lock
	}
	return lock
}
