// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestDaySchedule_IsClosed(t *testing.T) {
	cases := []struct {
		name  string
		sched DaySchedule
		want  bool
	}{
		{"explicit flag", DaySchedule{Closed: true}, true},
		{"english marker", DaySchedule{Hours: "closed"}, true},
		{"marker with case and space", DaySchedule{Hours: " Closed "}, true},
		{"korean marker", DaySchedule{Hours: "휴무"}, true},
		{"korean regular marker", DaySchedule{Hours: "정기휴무"}, true},
		{"open range", DaySchedule{Hours: "10:00-22:00"}, false},
		{"empty", DaySchedule{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.sched.IsClosed(); got != tc.want {
				t.Errorf("IsClosed() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDaySchedule_UnmarshalJSON(t *testing.T) {
	t.Run("string form", func(t *testing.T) {
		var s DaySchedule
		if err := json.Unmarshal([]byte(`"10:00-22:00"`), &s); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if s.Hours != "10:00-22:00" || s.Closed {
			t.Errorf("got %+v, want hours without closed flag", s)
		}
	})

	t.Run("object form", func(t *testing.T) {
		var s DaySchedule
		if err := json.Unmarshal([]byte(`{"closed":true}`), &s); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !s.Closed {
			t.Errorf("got %+v, want closed", s)
		}
	})
}

func TestOpeningHours_ClosedOn(t *testing.T) {
	hours := OpeningHours{
		"monday":  DaySchedule{Hours: "휴무"},
		"tuesday": DaySchedule{Hours: "10:00-22:00"},
	}

	if !hours.ClosedOn(time.Monday) {
		t.Error("monday should be closed")
	}
	if hours.ClosedOn(time.Tuesday) {
		t.Error("tuesday should be open")
	}
	// Missing day fails open.
	if hours.ClosedOn(time.Sunday) {
		t.Error("day without data must not exclude the venue")
	}

	var none OpeningHours
	if none.ClosedOn(time.Monday) {
		t.Error("nil hours must not exclude the venue")
	}
}
