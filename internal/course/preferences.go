// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

package course

import (
	"github.com/rs/zerolog"

	"github.com/TaeHoseong/ItDa/internal/models"
)

// Preferences customize a template before slot fill.
type Preferences struct {
	// StartTime shifts every slot by the delta between the template's
	// first slot time and this "HH:MM" value.
	StartTime string `json:"start_time,omitempty"`

	// Duration caps the course's cumulative minutes. Slots beyond the
	// cap are dropped entirely, never shortened.
	Duration int `json:"duration,omitempty"`

	// MustInclude lists slot types that should be present. A missing
	// type only warns; it never fails the compose.
	MustInclude []string `json:"must_include,omitempty"`

	// Exclude lists slot types to drop from the template.
	Exclude []string `json:"exclude,omitempty"`
}

// apply overlays the preferences onto a template skeleton and returns
// the adjusted slot list.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (p Preferences) apply(slots []SlotConfig, logger zerolog.Logger) []SlotConfig {
	slots = cloneSlots(slots)

	if len(p.Exclude) > 0 {
		excluded := make(map[string]struct{}, len(p.Exclude))
		for _, t := range p.Exclude {
			excluded[t] = struct{}{}
		}
		kept := slots[:0]
		for _, s := range slots {
			if _, drop := excluded[s.Type]; !drop {
				kept = append(kept, s)
			}
		}
		slots = kept
	}

	if len(p.MustInclude) > 0 {
		present := make(map[string]struct{}, len(slots))
		for _, s := range slots {
			present[s.Type] = struct{}{}
		}
		for _, want := range p.MustInclude {
			if _, ok := present[want]; !ok {
				logger.Warn().Str("slot_type", want).Msg("must-include slot type not in template")
			}
		}
	}

	if p.StartTime != "" && len(slots) > 0 {
		shift := models.MinutesBetween(slots[0].StartTime, p.StartTime)
		for i := range slots {
			slots[i].StartTime = models.AddMinutes(slots[i].StartTime, shift)
		}
	}

	if p.Duration > 0 {
		total := 0
		kept := slots[:0]
		for _, s := range slots {
			if total+s.Duration > p.Duration {
				break
			}
			kept = append(kept, s)
			total += s.Duration
		}
		slots = kept
	}

	return slots
}
