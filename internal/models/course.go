// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

package models

import (
	"time"

	"github.com/TaeHoseong/ItDa/internal/geo"
)

// CourseSlot is one scheduled stop in a course: a time window, the
// category it was filled from, and the venue assigned to it.
type CourseSlot struct {
	Type      string `json:"slot_type"`
	Category  string `json:"category"`
	StartTime string `json:"start_time"` // "15:04"
	Duration  int    `json:"duration"`   // minutes
	Icon      string `json:"icon,omitempty"`

	VenueName    string         `json:"place_name"`
	VenueAddress string         `json:"place_address,omitempty"`
	Position     geo.Coordinate `json:"position"`
	Rating       float64        `json:"rating,omitempty"`
	PriceRange   string         `json:"price_range,omitempty"`
	Score        float64        `json:"score"`

	// DistanceFromPrevious is the haversine distance in km from the
	// preceding slot's venue. Slot 0 carries 0.
	DistanceFromPrevious float64 `json:"distance_from_previous,omitempty"`
}

// Course is an ordered sequence of slots for one date, plus derived
// aggregates. It is a value type: composition and regeneration build
// new Course values rather than mutating a shared reference.
type Course struct {
	ID       string       `json:"course_id,omitempty"`
	CoupleID string       `json:"couple_id,omitempty"`
	Date     string       `json:"date"` // "2006-01-02"
	Template string       `json:"template"`
	Slots    []CourseSlot `json:"slots"`

	TotalDistanceKm float64 `json:"total_distance"`
	TotalDuration   int     `json:"total_duration"` // minutes
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Clone returns a deep copy of the course. Regeneration operates on
// clones so callers keep a stable view of the original.
func (c Course) Clone() Course {
	out := c
	out.Slots = make([]CourseSlot, len(c.Slots))
	copy(out.Slots, c.Slots)
	return out
}

// VenueNames returns the names of every assigned venue, in slot order.
func (c Course) VenueNames() []string {
	names := make([]string, 0, len(c.Slots))
	for _, s := range c.Slots {
		names = append(names, s.VenueName)
	}
	return names
}

// Recalculate recomputes the derived aggregates from the slots:
// per-slot chained distance, total distance, total duration, and the
// start/end times.
func (c *Course) Recalculate() {
	c.TotalDistanceKm = 0
	c.TotalDuration = 0

	for i := range c.Slots {
		if i == 0 {
			c.Slots[0].DistanceFromPrevious = 0
		} else {
			c.Slots[i].DistanceFromPrevious = geo.HaversineKm(c.Slots[i-1].Position, c.Slots[i].Position)
		}
		c.TotalDistanceKm += c.Slots[i].DistanceFromPrevious
		c.TotalDuration += c.Slots[i].Duration
	}

	if len(c.Slots) == 0 {
		c.StartTime, c.EndTime = "", ""
		return
	}
	c.StartTime = c.Slots[0].StartTime
	c.EndTime = AddMinutes(c.StartTime, c.TotalDuration)
}

// AddMinutes shifts an "HH:MM" clock string by the given number of
// minutes, wrapping around midnight. Unparseable input is returned
// unchanged.
func AddMinutes(clock string, minutes int) string {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return clock
	}
	return t.Add(time.Duration(minutes) * time.Minute).Format("15:04")
}

// MinutesBetween returns the signed minute delta from one "HH:MM"
// clock string to another. Unparseable input yields 0.
func MinutesBetween(from, to string) int {
	a, err := time.Parse("15:04", from)
	if err != nil {
		return 0
	}
	b, err := time.Parse("15:04", to)
	if err != nil {
		return 0
	}
	return int(b.Sub(a).Minutes())
}
