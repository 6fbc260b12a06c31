// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

package models

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// OpeningHours maps lowercase English weekday names to that day's
// schedule. Absent days mean "no data", which is never grounds for
// exclusion.
type OpeningHours map[string]DaySchedule

// DaySchedule is one weekday's opening data. Source records carry
// either a plain string ("10:00-22:00", "휴무", "closed") or an object
// with an explicit closed flag.
type DaySchedule struct {
	Hours  string `json:"hours,omitempty"`
	Closed bool   `json:"closed,omitempty"`
}

// closedMarkers are hour strings that mark a day as closed.
var closedMarkers = []string{"closed", "휴무", "정기휴무"}

// IsClosed reports whether the schedule explicitly marks the day closed.
func (s DaySchedule) IsClosed() bool {
	if s.Closed {
		return true
	}
	h := strings.ToLower(strings.TrimSpace(s.Hours))
	for _, marker := range closedMarkers {
		if h == marker {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts both the string and the object form.
func (s *DaySchedule) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.Hours = str
		s.Closed = false
		return nil
	}
	type plain DaySchedule
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = DaySchedule(p)
	return nil
}

// ClosedOn reports whether the venue is explicitly closed on the given
// weekday. Missing data fails open: only an explicit closed marker for
// that day excludes the venue.
func (h OpeningHours) ClosedOn(day time.Weekday) bool {
	if h == nil {
		return false
	}
	sched, ok := h[strings.ToLower(day.String())]
	if !ok {
		return false
	}
	return sched.IsClosed()
}
