// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

package store

import (
	"strings"

	"github.com/TaeHoseong/ItDa/internal/models"
)

// DefaultFeatures returns the category-templated feature document
// assigned to user-submitted venues before external enrichment runs.
// The source category follows the Naver local-search format
// ("대분류>세부분류"); only the leading segment is matched, and anything
// unrecognized gets the neutral template.
func DefaultFeatures(category string) models.FeatureDocument {
	main := strings.ToLower(category)
	if i := strings.Index(main, ">"); i >= 0 {
		main = main[:i]
	}

	switch {
	case strings.Contains(main, "음식점"):
		return defaultDoc("food")
	case strings.Contains(main, "카페"), strings.Contains(main, "디저트"):
		return defaultDoc("cafe")
	case strings.Contains(main, "스포츠"), strings.Contains(main, "레저"),
		strings.Contains(main, "관람"), strings.Contains(main, "체험"):
		return defaultDoc("activity")
	case strings.Contains(main, "문화"), strings.Contains(main, "예술"):
		return defaultDoc("culture")
	case strings.Contains(main, "여행"), strings.Contains(main, "명소"):
		return defaultDoc("nature")
	default:
		return defaultDoc("")
	}
}

// defaultDoc builds the template for one coarse category. The neutral
// template (empty name) sits at 0.5 everywhere.
func defaultDoc(kind string) models.FeatureDocument {
	doc := models.FeatureDocument{
		MainCategory: map[string]float64{
			"food_cafe": 0, "culture_art": 0, "activity_sports": 0,
			"nature_healing": 0, "craft_experience": 0, "shopping": 0,
		},
		Atmosphere: map[string]float64{
			"quiet": 0.5, "romantic": 0.5, "trendy": 0.5,
			"private_vibe": 0.5, "artistic": 0.5, "energetic": 0.5,
		},
		ExperienceType: map[string]float64{
			"passive_enjoyment": 0.5, "active_participation": 0.5,
			"social_bonding": 0.5, "relaxation_focused": 0.5,
		},
		SpaceCharacteristics: map[string]float64{
			"indoor_ratio": 0.5, "crowdedness_expected": 0.5,
			"photo_worthiness": 0.5, "scenic_view": 0.5,
		},
	}

	switch kind {
	case "food":
		doc.MainCategory["food_cafe"] = 1
		doc.ExperienceType["social_bonding"] = 0.7
		doc.SpaceCharacteristics["indoor_ratio"] = 0.9
	case "cafe":
		doc.MainCategory["food_cafe"] = 1
		doc.Atmosphere["quiet"] = 0.6
		doc.ExperienceType["relaxation_focused"] = 0.7
		doc.SpaceCharacteristics["indoor_ratio"] = 0.9
	case "activity":
		doc.MainCategory["activity_sports"] = 1
		doc.Atmosphere["energetic"] = 0.7
		doc.ExperienceType["active_participation"] = 0.8
	case "culture":
		doc.MainCategory["culture_art"] = 1
		doc.Atmosphere["artistic"] = 0.8
		doc.ExperienceType["passive_enjoyment"] = 0.7
	case "nature":
		doc.MainCategory["nature_healing"] = 1
		doc.Atmosphere["romantic"] = 0.6
		doc.SpaceCharacteristics["indoor_ratio"] = 0.2
		doc.SpaceCharacteristics["scenic_view"] = 0.8
	}

	return doc
}
