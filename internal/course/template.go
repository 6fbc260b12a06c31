// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

// Package course assembles multi-stop date courses: selects a slot
// template from the taste profile, fills each slot with a scored venue
// pick, and supports single-slot regeneration.
package course

import "github.com/TaeHoseong/ItDa/internal/feature"

// Template names. "auto" selects from the profile at compose time.
const (
	TemplateAuto          = "auto"
	TemplateFullDay       = "full_day"
	TemplateHalfDayLunch  = "half_day_lunch"
	TemplateHalfDayDinner = "half_day_dinner"
	TemplateCafeDate      = "cafe_date"
	TemplateActiveDate    = "active_date"
	TemplateCultureDate   = "culture_date"
)

// SlotConfig is one slot of a template skeleton: schedule and category,
// no venue yet.
type SlotConfig struct {
	Type      string `json:"slot_type" koanf:"slot_type"`
	Category  string `json:"category" koanf:"category"`
	StartTime string `json:"start_time" koanf:"start_time"`
	Duration  int    `json:"duration" koanf:"duration"`
	Icon      string `json:"icon" koanf:"icon"`
}

// Templates maps template names to their ordered slot skeletons. The
// built-in set is static configuration; deployments may override it
// from the config file.
type Templates map[string][]SlotConfig

// DefaultTemplates returns the built-in template set.
func DefaultTemplates() Templates {
	return Templates{
		TemplateFullDay: {
			{Type: "lunch", Category: "food_cafe", StartTime: "12:00", Duration: 90, Icon: "🍽️"},
			{Type: "cafe", Category: "food_cafe", StartTime: "14:00", Duration: 60, Icon: "☕"},
			{Type: "activity", Category: "activity_sports", StartTime: "15:30", Duration: 120, Icon: "⚽"},
			{Type: "dinner", Category: "food_cafe", StartTime: "18:00", Duration: 90, Icon: "🍴"},
			{Type: "night_view", Category: "nature_healing", StartTime: "20:00", Duration: 60, Icon: "🌃"},
		},
		TemplateHalfDayLunch: {
			{Type: "lunch", Category: "food_cafe", StartTime: "12:00", Duration: 90, Icon: "🍽️"},
			{Type: "cafe", Category: "food_cafe", StartTime: "14:00", Duration: 60, Icon: "☕"},
			{Type: "activity", Category: "culture_art", StartTime: "15:30", Duration: 120, Icon: "🎨"},
		},
		TemplateHalfDayDinner: {
			{Type: "cafe", Category: "food_cafe", StartTime: "16:00", Duration: 60, Icon: "☕"},
			{Type: "dinner", Category: "food_cafe", StartTime: "18:00", Duration: 90, Icon: "🍴"},
			{Type: "night_view", Category: "nature_healing", StartTime: "20:00", Duration: 60, Icon: "🌃"},
		},
		TemplateCafeDate: {
			{Type: "cafe", Category: "food_cafe", StartTime: "14:00", Duration: 90, Icon: "☕"},
			{Type: "dessert", Category: "food_cafe", StartTime: "16:00", Duration: 60, Icon: "🍰"},
			{Type: "walk", Category: "nature_healing", StartTime: "17:30", Duration: 60, Icon: "🚶"},
		},
		TemplateActiveDate: {
			{Type: "lunch", Category: "food_cafe", StartTime: "12:00", Duration: 60, Icon: "🍽️"},
			{Type: "activity", Category: "activity_sports", StartTime: "13:30", Duration: 150, Icon: "⚽"},
			{Type: "cafe", Category: "food_cafe", StartTime: "16:30", Duration: 60, Icon: "☕"},
		},
		TemplateCultureDate: {
			{Type: "lunch", Category: "food_cafe", StartTime: "12:00", Duration: 90, Icon: "🍽️"},
			{Type: "exhibition", Category: "culture_art", StartTime: "14:00", Duration: 120, Icon: "🎨"},
			{Type: "cafe", Category: "food_cafe", StartTime: "16:30", Duration: 60, Icon: "☕"},
		},
	}
}

// SelectTemplate picks a template name for a profile. The priority
// order is fixed: active, culture, cafe-focused, half-day by energy
// (lunch-leaning when food_cafe runs high), then full day.
func SelectTemplate(profile feature.Vector) string {
	if profile[feature.ActivitySports] > 0.6 && profile[feature.ActiveParticipation] > 0.6 {
		return TemplateActiveDate
	}
	if profile[feature.CultureArt] > 0.6 {
		return TemplateCultureDate
	}
	if profile[feature.NatureHealing] > 0.5 && profile[feature.Romantic] > 0.6 && profile[feature.RelaxationFocused] > 0.6 {
		return TemplateCafeDate
	}
	if profile[feature.Energetic] < 0.4 {
		if profile[feature.FoodCafe] > 0.7 {
			return TemplateHalfDayLunch
		}
		return TemplateHalfDayDinner
	}
	return TemplateFullDay
}

// cloneSlots copies a skeleton so overlays never mutate the template.
func cloneSlots(slots []SlotConfig) []SlotConfig {
	out := make([]SlotConfig, len(slots))
	copy(out, slots)
	return out
}
