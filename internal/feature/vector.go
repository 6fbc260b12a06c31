// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

// Package feature defines the 20-dimensional taste vector shared by
// personas and venues, the canonical dimension order, and the vector
// math used by the scoring engine.
package feature

import "math"

// Dim is the fixed dimensionality of every taste vector.
const Dim = 20

// Segment boundaries within the canonical order.
const (
	MainCategoryOffset = 0
	MainCategorySize   = 6
	AtmosphereOffset   = 6
	AtmosphereSize     = 6
	ExperienceOffset   = 12
	ExperienceSize     = 4
	SpaceOffset        = 16
	SpaceSize          = 4
)

// Canonical dimension indices. The order is fixed: the food_cafe slot
// collapses food and cafe into a single main category, matching the
// persisted column order of user profiles.
const (
	FoodCafe = iota
	CultureArt
	ActivitySports
	NatureHealing
	CraftExperience
	Shopping
	Quiet
	Romantic
	Trendy
	PrivateVibe
	Artistic
	Energetic
	PassiveEnjoyment
	ActiveParticipation
	SocialBonding
	RelaxationFocused
	IndoorRatio
	CrowdednessExpected
	PhotoWorthiness
	ScenicView
)

// Names lists the canonical dimension names in vector order.
var Names = [Dim]string{
	"food_cafe", "culture_art", "activity_sports", "nature_healing", "craft_experience", "shopping",
	"quiet", "romantic", "trendy", "private_vibe", "artistic", "energetic",
	"passive_enjoyment", "active_participation", "social_bonding", "relaxation_focused",
	"indoor_ratio", "crowdedness_expected", "photo_worthiness", "scenic_view",
}

// Vector is a taste profile: Dim floats, each expected in [0,1].
// The zero value is a valid (all-zero) vector.
type Vector [Dim]float64

// Cosine returns the cosine similarity between a and b.
// If either vector has zero magnitude the similarity is 0, never NaN.
func Cosine(a, b Vector) float64 {
	var dot, na, nb float64
	for i := 0; i < Dim; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Clamp01 clamps v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Blend returns a[i]*wa + b[i]*wb for every dimension.
func Blend(a, b Vector, wa, wb float64) Vector {
	var out Vector
	for i := 0; i < Dim; i++ {
		out[i] = a[i]*wa + b[i]*wb
	}
	return out
}

// Mean returns the per-dimension average of a and b.
func Mean(a, b Vector) Vector {
	return Blend(a, b, 0.5, 0.5)
}

// IsZero reports whether every dimension is exactly zero.
func (v Vector) IsZero() bool {
	for i := 0; i < Dim; i++ {
		if v[i] != 0 {
			return false
		}
	}
	return true
}

// Slice returns the vector as a freshly allocated slice.
func (v Vector) Slice() []float64 {
	out := make([]float64, Dim)
	copy(out, v[:])
	return out
}

// FromSlice builds a Vector from s. It returns false when s does not
// have exactly Dim elements.
func FromSlice(s []float64) (Vector, bool) {
	var v Vector
	if len(s) != Dim {
		return v, false
	}
	copy(v[:], s)
	return v, true
}
