// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

// Package candidate filters a raw venue set down to the pool the
// scoring engine ranks. Every step is a pure predicate, so filter
// order never changes the final set.
package candidate

import (
	"time"

	"github.com/TaeHoseong/ItDa/internal/models"
)

// minCategoryScore is the main-category threshold a venue must meet
// when a category filter is requested.
const minCategoryScore = 0.5

// Criteria describes one filter pass. Zero-valued fields skip their
// step.
type Criteria struct {
	// ExcludeNames drops venues by name (already used or disliked).
	ExcludeNames []string

	// Category, when set, requires the venue's main-category score for
	// that category to be at least 0.5.
	Category string

	// Day, when set, drops venues explicitly marked closed on that
	// weekday. Missing opening-hours data fails open.
	Day *time.Weekday

	// NameWhitelist, when non-nil, restricts to the listed names. It
	// comes from the external keyword-search collaborator.
	NameWhitelist []string
}

// Filter applies the criteria and returns the surviving venues. An
// empty result is a valid outcome, not an error.
func Filter(venues []*models.Venue, c Criteria) []*models.Venue {
	exclude := nameSet(c.ExcludeNames)

	var whitelist map[string]struct{}
	if c.NameWhitelist != nil {
		whitelist = nameSet(c.NameWhitelist)
	}

	kept := make([]*models.Venue, 0, len(venues))
	for _, v := range venues {
		if _, skip := exclude[v.Name]; skip {
			continue
		}
		if c.Category != "" && v.CategoryScore(c.Category) < minCategoryScore {
			continue
		}
		if c.Day != nil && v.OpeningHours.ClosedOn(*c.Day) {
			continue
		}
		if whitelist != nil {
			if _, ok := whitelist[v.Name]; !ok {
				continue
			}
		}
		kept = append(kept, v)
	}
	return kept
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
