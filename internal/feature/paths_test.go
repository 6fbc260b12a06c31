// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

package feature

import "testing"

func TestPathIndex_AllDocumentedPaths(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"mainCategory.food_cafe", FoodCafe},
		{"mainCategory.shopping", Shopping},
		{"atmosphere.quiet", Quiet},
		{"atmosphere.romantic", Romantic},
		{"atmosphere.private", PrivateVibe},
		{"atmosphere.private_vibe", PrivateVibe},
		{"experienceType.active_participation", ActiveParticipation},
		{"spaceCharacteristics.indoor_ratio", IndoorRatio},
		{"spaceCharacteristics.scenic_view", ScenicView},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := PathIndex(tt.path)
			if !ok {
				t.Fatalf("PathIndex(%q) not found", tt.path)
			}
			if got != tt.want {
				t.Errorf("PathIndex(%q) = %d, want %d", tt.path, got, tt.want)
			}
		})
	}
}

func TestPathIndex_Unknown(t *testing.T) {
	for _, path := range []string{"", "atmosphere", "atmosphere.cozy", "contextual.average_rating"} {
		if _, ok := PathIndex(path); ok {
			t.Errorf("PathIndex(%q) should not resolve", path)
		}
	}
}

func TestIndexByName(t *testing.T) {
	idx, ok := IndexByName("romantic")
	if !ok || idx != Romantic {
		t.Errorf("IndexByName(romantic) = %d, %v", idx, ok)
	}
	if _, ok := IndexByName("cozy"); ok {
		t.Error("IndexByName(cozy) should not resolve")
	}
}
