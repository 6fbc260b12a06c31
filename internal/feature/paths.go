// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

package feature

// PathVersion identifies the path-to-index mapping revision. Bump when
// the canonical order or the nested document layout changes.
const PathVersion = 1

// pathIndex maps dotted feature-document paths to vector indices.
// Unknown paths resolve to "not found"; callers default instead of
// raising, so a stale path in configuration can never panic.
var pathIndex = map[string]int{
	"mainCategory.food_cafe":                    FoodCafe,
	"mainCategory.culture_art":                  CultureArt,
	"mainCategory.activity_sports":              ActivitySports,
	"mainCategory.nature_healing":               NatureHealing,
	"mainCategory.craft_experience":             CraftExperience,
	"mainCategory.shopping":                     Shopping,
	"atmosphere.quiet":                          Quiet,
	"atmosphere.romantic":                       Romantic,
	"atmosphere.trendy":                         Trendy,
	"atmosphere.private":                        PrivateVibe,
	"atmosphere.private_vibe":                   PrivateVibe,
	"atmosphere.artistic":                       Artistic,
	"atmosphere.energetic":                      Energetic,
	"experienceType.passive_enjoyment":          PassiveEnjoyment,
	"experienceType.active_participation":       ActiveParticipation,
	"experienceType.social_bonding":             SocialBonding,
	"experienceType.relaxation_focused":         RelaxationFocused,
	"spaceCharacteristics.indoor_ratio":         IndoorRatio,
	"spaceCharacteristics.crowdedness_expected": CrowdednessExpected,
	"spaceCharacteristics.photo_worthiness":     PhotoWorthiness,
	"spaceCharacteristics.scenic_view":          ScenicView,
}

// PathIndex resolves a dotted document path ("atmosphere.romantic") to
// its vector index. The second return is false for unknown paths.
func PathIndex(path string) (int, bool) {
	i, ok := pathIndex[path]
	return i, ok
}

// IndexByName resolves a bare dimension name ("romantic") to its index.
func IndexByName(name string) (int, bool) {
	for i, n := range Names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}
