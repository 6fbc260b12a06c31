// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

package models

import (
	"time"

	"github.com/TaeHoseong/ItDa/internal/feature"
)

// Gender of a couple member, as recorded on the user profile.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// Persona is a taste profile owned by a user or derived for a couple.
type Persona struct {
	OwnerID string         `json:"owner_id"`
	Vector  feature.Vector `json:"vector"`

	// SurveyDone marks a persona as usable. Profiles that never
	// completed the survey must not be scored against; callers
	// substitute the documented default profile instead.
	SurveyDone bool `json:"survey_done"`

	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// PersonaUpdate is a wholesale profile re-submission. Every dimension
// is range-validated; out-of-range values reject the whole update.
type PersonaUpdate struct {
	OwnerID    string    `json:"owner_id" validate:"required"`
	Dimensions []float64 `json:"dimensions" validate:"required,len=20,dive,gte=0,lte=1"`
}

// CoupleMember pairs one member's persona with their recorded gender.
// A member whose survey was never completed carries SurveyDone false;
// their vector must not feed the couple blend.
type CoupleMember struct {
	UserID     string         `json:"user_id"`
	Gender     Gender         `json:"gender"`
	Vector     feature.Vector `json:"vector"`
	SurveyDone bool           `json:"survey_done"`
}

// Couple holds the two member profiles plus the couple's current
// effective persona. The effective persona is a cache of a
// deterministic function of the members and the diary history, never
// independently authoritative.
type Couple struct {
	ID        string          `json:"couple_id"`
	Members   [2]CoupleMember `json:"members"`
	Effective feature.Vector  `json:"effective"`
	UpdatedAt time.Time       `json:"updated_at,omitempty"`
}

// DefaultProfile is the documented fallback used when a user's persona
// is missing or the survey was never completed.
var DefaultProfile = feature.Vector{
	1, 0, 0, 0, 0, 0,
	0.9, 0.7, 0.5, 0.8, 0.8, 0.3,
	0.8, 0.1, 0.7, 0.9,
	0.95, 0.3, 0.8, 0.4,
}
