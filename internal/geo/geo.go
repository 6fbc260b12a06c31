// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

// Package geo provides spherical distance math and the coordinate-based
// venue identity used for deduplication.
package geo

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// nearMatchDegrees is the coordinate tolerance for treating two venue
// records as the same physical place (~11 m).
const nearMatchDegrees = 0.0001

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"latitude" koanf:"latitude"`
	Lng float64 `json:"longitude" koanf:"longitude"`
}

// HaversineKm returns the great-circle distance between a and b in
// kilometers using the haversine formula.
func HaversineKm(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// PlaceHash derives the deduplication identity for a venue: sha256 of
// the name and the coordinates rounded to 5 decimals (~1 m precision).
func PlaceHash(name string, pos Coordinate) string {
	normalized := fmt.Sprintf("%s:%.5f:%.5f", name, pos.Lat, pos.Lng)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// NearMatch reports whether two coordinates fall within the ~11 m
// tolerance used to match a submitted venue against the catalogue.
func NearMatch(a, b Coordinate) bool {
	return math.Abs(a.Lat-b.Lat) <= nearMatchDegrees &&
		math.Abs(a.Lng-b.Lng) <= nearMatchDegrees
}
