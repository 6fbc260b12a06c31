// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

package candidate

import (
	"math"
	"sort"

	"github.com/TaeHoseong/ItDa/internal/geo"
	"github.com/TaeHoseong/ItDa/internal/models"
)

// SpatialIndex divides geographic space into cells for fast proximity
// pooling. Instead of ranking every catalogued venue by distance, the
// pool query only inspects cells near the reference point, expanding
// outward ring by ring until enough venues are collected.
type SpatialIndex struct {
	cells    map[cellKey][]*models.Venue
	cellSize float64 // degrees
	count    int
}

type cellKey struct {
	x, y int
}

// NewSpatialIndex builds an index over venues. cellSizeKm controls the
// grid granularity; smaller cells mean more precise rings but more
// cells to visit. Zero or negative picks a 2 km default suited to
// city-scale date planning.
func NewSpatialIndex(venues []*models.Venue, cellSizeKm float64) *SpatialIndex {
	if cellSizeKm <= 0 {
		cellSizeKm = 2
	}

	// 1 degree is about 111 km at the equator.
	idx := &SpatialIndex{
		cells:    make(map[cellKey][]*models.Venue),
		cellSize: cellSizeKm / 111.0,
	}
	for _, v := range venues {
		key := idx.keyFor(v.Position)
		idx.cells[key] = append(idx.cells[key], v)
		idx.count++
	}
	return idx
}

// Size returns the number of indexed venues.
func (idx *SpatialIndex) Size() int {
	return idx.count
}

func (idx *SpatialIndex) keyFor(pos geo.Coordinate) cellKey {
	lng := pos.Lng
	for lng > 180 {
		lng -= 360
	}
	for lng < -180 {
		lng += 360
	}
	return cellKey{
		x: int(math.Floor(lng / idx.cellSize)),
		y: int(math.Floor(pos.Lat / idx.cellSize)),
	}
}

// NearestK returns the k venues closest to ref, ordered by distance
// with name tie-breaks so repeated queries see the same pool. k <= 0
// or k >= the index size returns every venue.
func (idx *SpatialIndex) NearestK(ref geo.Coordinate, k int) []*models.Venue {
	if k <= 0 || k >= idx.count {
		k = idx.count
	}
	if idx.count == 0 {
		return nil
	}

	center := idx.keyFor(ref)

	// Expand rings until enough venues are collected, then one extra
	// ring: a venue in the next ring out can still be closer than a
	// corner venue already collected.
	var collected []*models.Venue
	visited := 0
	extra := -1
	for ring := 0; visited < len(idx.cells); ring++ {
		for _, key := range ringKeys(center, ring) {
			venues, ok := idx.cells[key]
			if !ok {
				continue
			}
			visited++
			collected = append(collected, venues...)
		}
		if extra >= 0 {
			extra--
			if extra < 0 && len(collected) >= k {
				break
			}
		} else if len(collected) >= k {
			extra = 0
		}
	}

	sort.SliceStable(collected, func(i, j int) bool {
		di := geo.HaversineKm(collected[i].Position, ref)
		dj := geo.HaversineKm(collected[j].Position, ref)
		if di != dj {
			return di < dj
		}
		return collected[i].Name < collected[j].Name
	})

	if len(collected) > k {
		collected = collected[:k]
	}
	return collected
}

// ringKeys enumerates the cell keys on the square ring at the given
// distance from center. Ring 0 is the center cell itself.
func ringKeys(center cellKey, ring int) []cellKey {
	if ring == 0 {
		return []cellKey{center}
	}

	keys := make([]cellKey, 0, 8*ring)
	for dx := -ring; dx <= ring; dx++ {
		keys = append(keys,
			cellKey{center.x + dx, center.y - ring},
			cellKey{center.x + dx, center.y + ring},
		)
	}
	for dy := -ring + 1; dy <= ring-1; dy++ {
		keys = append(keys,
			cellKey{center.x - ring, center.y + dy},
			cellKey{center.x + ring, center.y + dy},
		)
	}
	return keys
}
