// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

package models

import "time"

// RatingEvent ties a 1-5 score to a visited venue. Events are grouped
// per diary entry and never mutated once recorded.
type RatingEvent struct {
	VenueName string  `json:"place_name"`
	Rating    float64 `json:"rating"`
}

// DiaryEntry is one diary with zero or more rating events. Entries are
// replayed in creation order, so CreatedAt is part of the contract, not
// a display field.
type DiaryEntry struct {
	ID        string        `json:"entry_id"`
	CoupleID  string        `json:"couple_id"`
	CourseID  string        `json:"course_id,omitempty"`
	Events    []RatingEvent `json:"events"`
	CreatedAt time.Time     `json:"created_at"`
}
