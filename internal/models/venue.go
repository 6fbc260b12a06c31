// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

// Package models defines the domain types shared across the engine:
// venues, personas, courses, and rating events.
package models

import (
	"strings"

	"github.com/goccy/go-json"

	"github.com/TaeHoseong/ItDa/internal/feature"
	"github.com/TaeHoseong/ItDa/internal/geo"
)

// VenueOrigin tags where a venue record came from.
type VenueOrigin string

const (
	// OriginCatalogue marks an officially catalogued venue.
	OriginCatalogue VenueOrigin = "catalogue"
	// OriginUserSubmitted marks a personal, user-submitted venue that
	// has not been promoted into the catalogue.
	OriginUserSubmitted VenueOrigin = "user_submitted"
)

// Venue is a recommendable place. Identity is the place hash derived
// from name and 5-decimal-rounded coordinates.
type Venue struct {
	Hash         string          `json:"place_hash,omitempty"`
	Name         string          `json:"name"`
	Address      string          `json:"address,omitempty"`
	Category     string          `json:"category,omitempty"`
	Position     geo.Coordinate  `json:"position"`
	PriceRange   string          `json:"price_range,omitempty"`
	OpeningHours OpeningHours    `json:"opening_hours,omitempty"`
	Origin       VenueOrigin     `json:"origin,omitempty"`
	Features     FeatureDocument `json:"features"`
}

// ID returns the venue's deduplication hash, computing it on demand
// when the record was loaded without one.
func (v *Venue) ID() string {
	if v.Hash == "" {
		v.Hash = geo.PlaceHash(v.Name, v.Position)
	}
	return v.Hash
}

// FeatureDocument is the nested feature structure attached to a venue.
// It mirrors the four vector segments plus a contextual block carrying
// externally sourced rating and travel-distance hints.
type FeatureDocument struct {
	MainCategory         map[string]float64 `json:"mainCategory"`
	Atmosphere           map[string]float64 `json:"atmosphere"`
	ExperienceType       map[string]float64 `json:"experienceType"`
	SpaceCharacteristics map[string]float64 `json:"spaceCharacteristics"`
	Contextual           Contextual         `json:"contextual"`
}

// Contextual carries externally enriched scalars. Either field may be
// absent in source data; zero is the documented default.
type Contextual struct {
	AverageRating     float64 `json:"average_rating"`
	MaxTravelDistance float64 `json:"max_travel_distance"`
}

// segmentOrder fixes the key order per segment so flattening is
// deterministic regardless of the JSON object layout.
var segmentKeys = [4][]string{
	{"food_cafe", "culture_art", "activity_sports", "nature_healing", "craft_experience", "shopping"},
	{"quiet", "romantic", "trendy", "private_vibe", "artistic", "energetic"},
	{"passive_enjoyment", "active_participation", "social_bonding", "relaxation_focused"},
	{"indoor_ratio", "crowdedness_expected", "photo_worthiness", "scenic_view"},
}

// Vector flattens the document into the canonical 20-dimension vector.
// Missing segments and missing keys default to 0; a malformed document
// can therefore never abort a scoring run.
func (d FeatureDocument) Vector() feature.Vector {
	var v feature.Vector
	segments := [4]map[string]float64{
		d.MainCategory, d.Atmosphere, d.ExperienceType, d.SpaceCharacteristics,
	}
	i := 0
	for s, keys := range segmentKeys {
		for _, key := range keys {
			v[i] = segmentValue(segments[s], key)
			i++
		}
	}
	return v
}

// segmentValue looks up key with the historical aliases the source data
// uses ("private" for private_vibe, a bare "food"/"cafe" pair for the
// collapsed food_cafe slot).
func segmentValue(m map[string]float64, key string) float64 {
	if m == nil {
		return 0
	}
	if val, ok := m[key]; ok {
		return val
	}
	switch key {
	case "private_vibe":
		return m["private"]
	case "food_cafe":
		if f, ok := m["food"]; ok {
			if c, okc := m["cafe"]; okc && c > f {
				return c
			}
			return f
		}
		return m["cafe"]
	}
	return 0
}

// Resolve resolves a dotted path ("atmosphere.romantic",
// "contextual.average_rating") against the document. The second return
// is false when the path is unknown; that is an exclusion signal for
// filters, not an error.
func (d FeatureDocument) Resolve(path string) (float64, bool) {
	if strings.HasPrefix(path, "contextual.") {
		switch strings.TrimPrefix(path, "contextual.") {
		case "average_rating":
			return d.Contextual.AverageRating, true
		case "max_travel_distance":
			return d.Contextual.MaxTravelDistance, true
		}
		return 0, false
	}
	idx, ok := feature.PathIndex(path)
	if !ok {
		return 0, false
	}
	return d.Vector()[idx], true
}

// UnmarshalJSON accepts both the flat document and the enrichment
// pipeline's wrapped form {"placeFeatures": {...}}.
func (d *FeatureDocument) UnmarshalJSON(data []byte) error {
	type plain FeatureDocument
	var wrapped struct {
		PlaceFeatures *plain `json:"placeFeatures"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.PlaceFeatures != nil {
		*d = FeatureDocument(*wrapped.PlaceFeatures)
		return nil
	}
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = FeatureDocument(p)
	return nil
}

// CategoryScore returns the venue's main-category score for the named
// category ("food_cafe", "culture_art", ...). Unknown categories score 0.
func (v *Venue) CategoryScore(category string) float64 {
	return segmentValue(v.Features.MainCategory, category)
}
