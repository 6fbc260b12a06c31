// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

// Package store defines the data-access contracts the recommendation
// core consumes and ships an embedded BadgerDB implementation of them.
// The core itself performs no I/O; these interfaces are the boundary.
package store

import (
	"context"
	"errors"

	"github.com/TaeHoseong/ItDa/internal/models"
)

// Sentinel errors for lookups.
var (
	ErrPersonaNotFound = errors.New("persona not found")
	ErrCoupleNotFound  = errors.New("couple not found")
)

// VenueSource supplies venue records for candidate pooling.
type VenueSource interface {
	// ListVenues returns every catalogued venue.
	ListVenues(ctx context.Context) ([]*models.Venue, error)

	// ListVenuesByNames returns the catalogued venues matching the
	// given names. Missing names are silently absent from the result.
	ListVenuesByNames(ctx context.Context, names []string) ([]*models.Venue, error)
}

// ProfileSource supplies personas and couples.
type ProfileSource interface {
	// GetPersona returns the user's persona. Personas whose survey was
	// never completed are returned with SurveyDone false; callers must
	// not score against them.
	GetPersona(ctx context.Context, userID string) (*models.Persona, error)

	// PutPersona stores a user's persona, replacing any existing one.
	PutPersona(ctx context.Context, persona *models.Persona) error

	// GetCouple returns the couple with both member profiles.
	GetCouple(ctx context.Context, coupleID string) (*models.Couple, error)

	// PutCoupleEffective persists a recalculated effective persona.
	PutCoupleEffective(ctx context.Context, coupleID string, effective []float64) error
}

// DiarySource supplies rating history, ordered by diary creation time.
type DiarySource interface {
	ListDiaries(ctx context.Context, coupleID string) ([]models.DiaryEntry, error)
}
