// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

package candidate

import (
	"testing"
	"time"

	"github.com/TaeHoseong/ItDa/internal/models"
)

func poolFixture() []*models.Venue {
	return []*models.Venue{
		{
			Name: "한식당",
			Features: models.FeatureDocument{
				MainCategory: map[string]float64{"food_cafe": 0.9},
			},
			OpeningHours: models.OpeningHours{
				"monday": models.DaySchedule{Hours: "휴무"},
			},
		},
		{
			Name: "미술관",
			Features: models.FeatureDocument{
				MainCategory: map[string]float64{"culture_art": 0.8, "food_cafe": 0.1},
			},
		},
		{
			Name: "카페",
			Features: models.FeatureDocument{
				MainCategory: map[string]float64{"cafe": 0.7},
			},
		},
	}
}

func poolNames(venues []*models.Venue) []string {
	names := make([]string, 0, len(venues))
	for _, v := range venues {
		names = append(names, v.Name)
	}
	return names
}

func assertNames(t *testing.T, got []*models.Venue, want ...string) {
	t.Helper()
	names := poolNames(got)
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}

func TestFilter_NoCriteria(t *testing.T) {
	got := Filter(poolFixture(), Criteria{})
	assertNames(t, got, "한식당", "미술관", "카페")
}

func TestFilter_ExcludeNames(t *testing.T) {
	got := Filter(poolFixture(), Criteria{ExcludeNames: []string{"카페", "없는집"}})
	assertNames(t, got, "한식당", "미술관")
}

func TestFilter_Category(t *testing.T) {
	// The cafe alias counts toward food_cafe; 미술관 at 0.1 misses the
	// threshold.
	got := Filter(poolFixture(), Criteria{Category: "food_cafe"})
	assertNames(t, got, "한식당", "카페")

	got = Filter(poolFixture(), Criteria{Category: "culture_art"})
	assertNames(t, got, "미술관")

	got = Filter(poolFixture(), Criteria{Category: "nature_healing"})
	assertNames(t, got)
}

func TestFilter_Day(t *testing.T) {
	monday := time.Monday
	got := Filter(poolFixture(), Criteria{Day: &monday})
	assertNames(t, got, "미술관", "카페")

	// Venues without hours data fail open on any day.
	sunday := time.Sunday
	got = Filter(poolFixture(), Criteria{Day: &sunday})
	assertNames(t, got, "한식당", "미술관", "카페")
}

func TestFilter_NameWhitelist(t *testing.T) {
	t.Run("nil whitelist keeps everything", func(t *testing.T) {
		got := Filter(poolFixture(), Criteria{NameWhitelist: nil})
		assertNames(t, got, "한식당", "미술관", "카페")
	})

	t.Run("empty whitelist drops everything", func(t *testing.T) {
		got := Filter(poolFixture(), Criteria{NameWhitelist: []string{}})
		assertNames(t, got)
	})

	t.Run("restricts to listed names", func(t *testing.T) {
		got := Filter(poolFixture(), Criteria{NameWhitelist: []string{"카페"}})
		assertNames(t, got, "카페")
	})
}

func TestFilter_Combined(t *testing.T) {
	monday := time.Monday
	got := Filter(poolFixture(), Criteria{
		Category: "food_cafe",
		Day:      &monday,
	})
	// 한식당 is closed Monday, 미술관 fails the category threshold.
	assertNames(t, got, "카페")
}

func TestFilter_EmptyInput(t *testing.T) {
	got := Filter(nil, Criteria{Category: "food_cafe"})
	if len(got) != 0 {
		t.Errorf("got %d venues from nil input", len(got))
	}
}
