// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

package candidate

import (
	"fmt"
	"testing"

	"github.com/TaeHoseong/ItDa/internal/geo"
	"github.com/TaeHoseong/ItDa/internal/models"
)

func venueAt(name string, lat, lng float64) *models.Venue {
	return &models.Venue{
		Name:     name,
		Position: geo.Coordinate{Lat: lat, Lng: lng},
	}
}

func TestSpatialIndex_NearestKOrder(t *testing.T) {
	ref := geo.Coordinate{Lat: 37.4979, Lng: 127.0276}
	venues := []*models.Venue{
		venueAt("far", 37.60, 127.20),
		venueAt("near", 37.4980, 127.0277),
		venueAt("mid", 37.52, 127.05),
	}

	idx := NewSpatialIndex(venues, 0)
	got := idx.NearestK(ref, 3)

	want := []string{"near", "mid", "far"}
	if len(got) != len(want) {
		t.Fatalf("got %d venues, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("position %d = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestSpatialIndex_Truncation(t *testing.T) {
	ref := geo.Coordinate{Lat: 37.4979, Lng: 127.0276}
	var venues []*models.Venue
	for i := 0; i < 30; i++ {
		venues = append(venues, venueAt(
			fmt.Sprintf("v%02d", i), 37.4979+float64(i)*0.002, 127.0276))
	}

	idx := NewSpatialIndex(venues, 0)
	got := idx.NearestK(ref, 10)

	if len(got) != 10 {
		t.Fatalf("got %d venues, want 10", len(got))
	}
	// The 10 nearest are exactly v00..v09: each step is ~220 m north.
	for i, v := range got {
		if want := fmt.Sprintf("v%02d", i); v.Name != want {
			t.Errorf("position %d = %q, want %q", i, v.Name, want)
		}
	}
}

func TestSpatialIndex_CrossCellBoundary(t *testing.T) {
	// A venue just across a cell boundary must still beat a farther
	// venue in the reference cell.
	cellKm := 2.0
	ref := geo.Coordinate{Lat: 37.0001, Lng: 127.0001}
	venues := []*models.Venue{
		venueAt("same-cell-far", 37.015, 127.015),
		venueAt("next-cell-near", 36.9999, 126.9999),
	}

	idx := NewSpatialIndex(venues, cellKm)
	got := idx.NearestK(ref, 1)

	if len(got) != 1 || got[0].Name != "next-cell-near" {
		t.Errorf("got %v, want the nearer venue across the cell boundary", names(got))
	}
}

func TestSpatialIndex_KLargerThanSize(t *testing.T) {
	idx := NewSpatialIndex([]*models.Venue{venueAt("only", 37.5, 127.0)}, 0)

	if got := idx.NearestK(geo.Coordinate{Lat: 37.5, Lng: 127.0}, 100); len(got) != 1 {
		t.Errorf("got %d venues, want 1", len(got))
	}
	if idx.Size() != 1 {
		t.Errorf("Size() = %d, want 1", idx.Size())
	}
}

func TestSpatialIndex_Empty(t *testing.T) {
	idx := NewSpatialIndex(nil, 0)
	if got := idx.NearestK(geo.Coordinate{Lat: 37.5, Lng: 127.0}, 5); got != nil {
		t.Errorf("empty index should return nil, got %v", names(got))
	}
}

func names(venues []*models.Venue) []string {
	out := make([]string, len(venues))
	for i, v := range venues {
		out[i] = v.Name
	}
	return out
}
