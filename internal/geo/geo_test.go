// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

package geo

import (
	"math"
	"testing"
)

var (
	gangnam  = Coordinate{Lat: 37.4979, Lng: 127.0276}
	hongdae  = Coordinate{Lat: 37.5563, Lng: 126.9220}
	jejuCity = Coordinate{Lat: 33.4996, Lng: 126.5312}
)

func TestHaversineKm(t *testing.T) {
	t.Run("zero distance", func(t *testing.T) {
		if got := HaversineKm(gangnam, gangnam); got != 0 {
			t.Errorf("distance to self = %f, want 0", got)
		}
	})

	t.Run("symmetry", func(t *testing.T) {
		ab := HaversineKm(gangnam, hongdae)
		ba := HaversineKm(hongdae, gangnam)
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("asymmetric: %f vs %f", ab, ba)
		}
	})

	t.Run("gangnam to hongdae", func(t *testing.T) {
		// Roughly 11.4 km across Seoul.
		got := HaversineKm(gangnam, hongdae)
		if got < 10 || got > 13 {
			t.Errorf("distance = %f km, want roughly 11.4", got)
		}
	})

	t.Run("seoul to jeju", func(t *testing.T) {
		// Roughly 447 km.
		got := HaversineKm(gangnam, jejuCity)
		if got < 435 || got > 460 {
			t.Errorf("distance = %f km, want roughly 447", got)
		}
	})

	t.Run("monotonic in separation", func(t *testing.T) {
		near := Coordinate{Lat: 37.50, Lng: 127.03}
		far := Coordinate{Lat: 37.57, Lng: 127.10}
		if HaversineKm(gangnam, near) >= HaversineKm(gangnam, far) {
			t.Error("nearer point must yield smaller distance")
		}
	})
}

func TestPlaceHash(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := PlaceHash("스타벅스 강남점", gangnam)
		b := PlaceHash("스타벅스 강남점", gangnam)
		if a != b {
			t.Error("same inputs must produce the same hash")
		}
		if len(a) != 64 {
			t.Errorf("hash length %d, want 64 hex chars", len(a))
		}
	})

	t.Run("stable under sub-precision noise", func(t *testing.T) {
		noisy := Coordinate{Lat: gangnam.Lat + 1e-6, Lng: gangnam.Lng - 1e-6}
		if PlaceHash("place", gangnam) != PlaceHash("place", noisy) {
			t.Error("noise below 5-decimal precision must not change the hash")
		}
	})

	t.Run("distinct names differ", func(t *testing.T) {
		if PlaceHash("a", gangnam) == PlaceHash("b", gangnam) {
			t.Error("different names must hash differently")
		}
	})

	t.Run("distinct positions differ", func(t *testing.T) {
		moved := Coordinate{Lat: gangnam.Lat + 0.001, Lng: gangnam.Lng}
		if PlaceHash("a", gangnam) == PlaceHash("a", moved) {
			t.Error("a 0.001 degree move must change the hash")
		}
	})
}

func TestNearMatch(t *testing.T) {
	tests := []struct {
		name string
		a, b Coordinate
		want bool
	}{
		{"identical", gangnam, gangnam, true},
		{"within tolerance", gangnam, Coordinate{Lat: gangnam.Lat + 0.00009, Lng: gangnam.Lng - 0.00009}, true},
		{"latitude too far", gangnam, Coordinate{Lat: gangnam.Lat + 0.0002, Lng: gangnam.Lng}, false},
		{"longitude too far", gangnam, Coordinate{Lat: gangnam.Lat, Lng: gangnam.Lng + 0.0002}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NearMatch(tt.a, tt.b); got != tt.want {
				t.Errorf("NearMatch = %v, want %v", got, tt.want)
			}
		})
	}
}
