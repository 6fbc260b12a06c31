// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/TaeHoseong/ItDa/internal/feature"
	"github.com/TaeHoseong/ItDa/internal/geo"
	"github.com/TaeHoseong/ItDa/internal/models"
	"github.com/TaeHoseong/ItDa/internal/scoring"
	"github.com/TaeHoseong/ItDa/internal/store"
)

// mockVenueSource serves a fixed venue list.
type mockVenueSource struct {
	venues []*models.Venue
}

func (m *mockVenueSource) ListVenues(_ context.Context) ([]*models.Venue, error) {
	return m.venues, nil
}

func (m *mockVenueSource) ListVenuesByNames(_ context.Context, names []string) ([]*models.Venue, error) {
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	var out []*models.Venue
	for _, v := range m.venues {
		if _, ok := wanted[v.Name]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// mockProfileSource serves one couple and records persisted personas.
type mockProfileSource struct {
	couple    *models.Couple
	personas  map[string]*models.Persona
	persisted []float64
}

func (m *mockProfileSource) GetPersona(_ context.Context, userID string) (*models.Persona, error) {
	if p, ok := m.personas[userID]; ok {
		return p, nil
	}
	return nil, store.ErrPersonaNotFound
}

func (m *mockProfileSource) PutPersona(_ context.Context, p *models.Persona) error {
	if m.personas == nil {
		m.personas = make(map[string]*models.Persona)
	}
	m.personas[p.OwnerID] = p
	return nil
}

func (m *mockProfileSource) GetCouple(_ context.Context, coupleID string) (*models.Couple, error) {
	if m.couple == nil || m.couple.ID != coupleID {
		return nil, store.ErrCoupleNotFound
	}
	return m.couple, nil
}

func (m *mockProfileSource) PutCoupleEffective(_ context.Context, _ string, effective []float64) error {
	m.persisted = effective
	return nil
}

type mockDiarySource struct {
	diaries []models.DiaryEntry
}

func (m *mockDiarySource) ListDiaries(_ context.Context, _ string) ([]models.DiaryEntry, error) {
	return m.diaries, nil
}

func foodVenue(name string, lat, lng, rating float64) *models.Venue {
	return &models.Venue{
		Name:     name,
		Category: "음식점",
		Position: geo.Coordinate{Lat: lat, Lng: lng},
		Features: models.FeatureDocument{
			MainCategory: map[string]float64{"food_cafe": 0.9},
			Atmosphere:   map[string]float64{"romantic": 0.7},
			Contextual:   models.Contextual{AverageRating: rating},
		},
	}
}

func cafeVenue(name string, lat, lng float64) *models.Venue {
	return &models.Venue{
		Name:     name,
		Category: "카페,디저트",
		Position: geo.Coordinate{Lat: lat, Lng: lng},
		Features: models.FeatureDocument{
			MainCategory: map[string]float64{"food_cafe": 0.8},
			Atmosphere:   map[string]float64{"quiet": 0.8},
			Contextual:   models.Contextual{AverageRating: 4.0},
		},
	}
}

func activityVenue(name string, lat, lng float64) *models.Venue {
	return &models.Venue{
		Name:     name,
		Category: "스포츠,레저",
		Position: geo.Coordinate{Lat: lat, Lng: lng},
		Features: models.FeatureDocument{
			MainCategory:   map[string]float64{"activity_sports": 0.9},
			ExperienceType: map[string]float64{"active_participation": 0.9},
			Contextual:     models.Contextual{AverageRating: 4.2},
		},
	}
}

func testRecommender(venues []*models.Venue, couple *models.Couple, diaries []models.DiaryEntry) (*Recommender, *mockProfileSource) {
	profiles := &mockProfileSource{couple: couple}
	r := New(Options{
		Venues:    &mockVenueSource{venues: venues},
		Profiles:  profiles,
		Diaries:   &mockDiarySource{diaries: diaries},
		Weights:   scoring.DefaultWeights(),
		TopK:      5,
		Reference: geo.Coordinate{Lat: 37.4979, Lng: 127.0276},
		Logger:    zerolog.Nop(),
	})
	return r, profiles
}

func testCouple(effective feature.Vector) *models.Couple {
	male := feature.Vector{}
	female := feature.Vector{}
	for i := range male {
		male[i] = 0.4
		female[i] = 0.8
	}
	return &models.Couple{
		ID: "couple-1",
		Members: [2]models.CoupleMember{
			{UserID: "u1", Gender: models.GenderMale, Vector: male, SurveyDone: true},
			{UserID: "u2", Gender: models.GenderFemale, Vector: female, SurveyDone: true},
		},
		Effective: effective,
	}
}

func TestRecommend_RanksByScoreDescending(t *testing.T) {
	venues := []*models.Venue{
		foodVenue("Far", 37.60, 127.10, 4.5),
		foodVenue("Near", 37.4980, 127.0277, 4.5),
	}
	r, _ := testRecommender(venues, testCouple(feature.Vector{}), nil)

	ranked, err := r.Recommend(context.Background(), RecommendRequest{
		CoupleID: "couple-1",
		Category: "food_cafe",
	})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("got %d results, want 2", len(ranked))
	}
	if ranked[0].Venue.Name != "Near" {
		t.Errorf("top pick = %q, want Near (closer venue must outrank an identical distant one)", ranked[0].Venue.Name)
	}
	if ranked[0].Score < ranked[1].Score {
		t.Error("results must be sorted by score descending")
	}
}

func TestRecommend_TopKTruncation(t *testing.T) {
	var venues []*models.Venue
	for i := 0; i < 8; i++ {
		venues = append(venues, foodVenue(
			"Venue"+string(rune('A'+i)), 37.4979+float64(i)*0.001, 127.0276, 4.0))
	}
	r, _ := testRecommender(venues, testCouple(feature.Vector{}), nil)

	ranked, err := r.Recommend(context.Background(), RecommendRequest{CoupleID: "couple-1"})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if len(ranked) != 5 {
		t.Errorf("got %d results, want top-k of 5", len(ranked))
	}
}

func TestRecommend_ExcludeNames(t *testing.T) {
	venues := []*models.Venue{
		foodVenue("Far", 37.60, 127.10, 4.5),
		foodVenue("Near", 37.4980, 127.0277, 4.5),
	}
	r, _ := testRecommender(venues, testCouple(feature.Vector{}), nil)

	ranked, err := r.Recommend(context.Background(), RecommendRequest{
		CoupleID:     "couple-1",
		ExcludeNames: []string{"Near"},
	})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if len(ranked) != 1 {
		t.Fatalf("got %d results, want 1 after exclusion", len(ranked))
	}
	if ranked[0].Venue.Name != "Far" {
		t.Errorf("got %q, want the excluded venue dropped from the pool", ranked[0].Venue.Name)
	}
}

func TestRecommend_WeightsOverride(t *testing.T) {
	venues := []*models.Venue{
		foodVenue("Far", 37.60, 127.10, 5.0),
		foodVenue("Near", 37.4980, 127.0277, 3.0),
	}
	r, _ := testRecommender(venues, testCouple(feature.Vector{}), nil)
	ctx := context.Background()

	ranked, err := r.Recommend(ctx, RecommendRequest{CoupleID: "couple-1"})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if ranked[0].Venue.Name != "Near" {
		t.Fatalf("default weights: top = %q, want Near (distance penalty dominates)", ranked[0].Venue.Name)
	}

	noDistance := scoring.DefaultWeights()
	noDistance.Beta = 0
	ranked, err = r.Recommend(ctx, RecommendRequest{
		CoupleID: "couple-1",
		Weights:  &noDistance,
	})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if ranked[0].Venue.Name != "Far" {
		t.Errorf("beta=0 override: top = %q, want Far (higher rating wins once distance is free)", ranked[0].Venue.Name)
	}
}

func TestRecommend_KeywordWithoutSearcherWarns(t *testing.T) {
	var buf bytes.Buffer
	r := New(Options{
		Venues:    &mockVenueSource{venues: []*models.Venue{foodVenue("A", 37.5, 127.0, 4.0)}},
		Profiles:  &mockProfileSource{},
		Diaries:   &mockDiarySource{},
		Weights:   scoring.DefaultWeights(),
		Reference: geo.Coordinate{Lat: 37.4979, Lng: 127.0276},
		Logger:    zerolog.New(&buf),
	})

	ranked, err := r.Recommend(context.Background(), RecommendRequest{Keyword: "파스타"})
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if len(ranked) != 1 {
		t.Errorf("got %d results, want the keyword ignored rather than filtering everything", len(ranked))
	}
	if !strings.Contains(buf.String(), "no search collaborator configured") {
		t.Error("a keyword without a configured searcher must log a warning")
	}
}

func TestUpdatePersona_StoresSurveyComplete(t *testing.T) {
	r, profiles := testRecommender(nil, nil, nil)

	dims := make([]float64, feature.Dim)
	for i := range dims {
		dims[i] = 0.5
	}

	stored, err := r.UpdatePersona(context.Background(), models.PersonaUpdate{
		OwnerID:    "u1",
		Dimensions: dims,
	})
	if err != nil {
		t.Fatalf("UpdatePersona() error: %v", err)
	}
	if !stored.SurveyDone {
		t.Error("a stored persona must be marked survey-complete")
	}
	if stored.Vector[0] != 0.5 {
		t.Errorf("stored vector[0] = %f, want 0.5", stored.Vector[0])
	}
	if profiles.personas["u1"] == nil {
		t.Fatal("persona was not persisted")
	}

	got, err := r.Persona(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Persona() error: %v", err)
	}
	if got.OwnerID != "u1" || !got.SurveyDone {
		t.Errorf("round trip returned %+v", got)
	}
}

func TestUpdatePersona_RejectsInvalidUpdates(t *testing.T) {
	valid := make([]float64, feature.Dim)
	for i := range valid {
		valid[i] = 0.5
	}
	short := valid[:feature.Dim-1]
	outOfRange := make([]float64, feature.Dim)
	copy(outOfRange, valid)
	outOfRange[3] = 1.5

	tests := []struct {
		name   string
		update models.PersonaUpdate
	}{
		{"missing owner", models.PersonaUpdate{Dimensions: valid}},
		{"wrong dimension count", models.PersonaUpdate{OwnerID: "u1", Dimensions: short}},
		{"dimension out of range", models.PersonaUpdate{OwnerID: "u1", Dimensions: outOfRange}},
		{"nil dimensions", models.PersonaUpdate{OwnerID: "u1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, profiles := testRecommender(nil, nil, nil)
			if _, err := r.UpdatePersona(context.Background(), tt.update); err == nil {
				t.Fatal("expected validation error")
			}
			if len(profiles.personas) != 0 {
				t.Error("a rejected update must not reach the store")
			}
		})
	}
}

func TestRecommend_ExplicitProfileWrongLength(t *testing.T) {
	r, _ := testRecommender([]*models.Venue{foodVenue("A", 37.5, 127.0, 4.0)}, nil, nil)

	_, err := r.Recommend(context.Background(), RecommendRequest{
		Profile: []float64{0.5, 0.5},
	})
	if err == nil {
		t.Fatal("expected error for 2-dimension explicit profile")
	}
}

func TestResolveProfile_Precedence(t *testing.T) {
	explicit := make([]float64, feature.Dim)
	for i := range explicit {
		explicit[i] = 0.25
	}

	var effective feature.Vector
	for i := range effective {
		effective[i] = 0.6
	}

	ctx := context.Background()

	t.Run("explicit wins over stored", func(t *testing.T) {
		r, _ := testRecommender(nil, testCouple(effective), nil)
		got, err := r.resolveProfile(ctx, "couple-1", explicit)
		if err != nil {
			t.Fatal(err)
		}
		if got[0] != 0.25 {
			t.Errorf("got %f, want explicit 0.25", got[0])
		}
	})

	t.Run("stored effective when no explicit", func(t *testing.T) {
		r, _ := testRecommender(nil, testCouple(effective), nil)
		got, err := r.resolveProfile(ctx, "couple-1", nil)
		if err != nil {
			t.Fatal(err)
		}
		if got != effective {
			t.Errorf("got %v, want stored effective persona", got)
		}
	})

	t.Run("blend when effective empty", func(t *testing.T) {
		r, _ := testRecommender(nil, testCouple(feature.Vector{}), nil)
		got, err := r.resolveProfile(ctx, "couple-1", nil)
		if err != nil {
			t.Fatal(err)
		}
		// male 0.4 * 0.3 + female 0.8 * 0.7 = 0.68
		if diff := got[0] - 0.68; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("got %f, want gender blend 0.68", got[0])
		}
	})

	t.Run("incomplete survey member blends as default", func(t *testing.T) {
		couple := testCouple(feature.Vector{})
		couple.Members[0].SurveyDone = false
		r, _ := testRecommender(nil, couple, nil)
		got, err := r.resolveProfile(ctx, "couple-1", nil)
		if err != nil {
			t.Fatal(err)
		}
		// default 1.0 * 0.3 + female 0.8 * 0.7 = 0.86
		if diff := got[0] - 0.86; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("got %f, want 0.86 (unfinished survey vector must not enter the blend)", got[0])
		}
	})

	t.Run("default for unknown couple", func(t *testing.T) {
		r, _ := testRecommender(nil, nil, nil)
		got, err := r.resolveProfile(ctx, "nobody", nil)
		if err != nil {
			t.Fatal(err)
		}
		if got != models.DefaultProfile {
			t.Error("unknown couple should fall back to the default profile")
		}
	})
}

func TestComposeCourse_NoDuplicateVenues(t *testing.T) {
	venues := []*models.Venue{
		foodVenue("Restaurant A", 37.4980, 127.0280, 4.5),
		foodVenue("Restaurant B", 37.4985, 127.0285, 4.3),
		cafeVenue("Cafe A", 37.4982, 127.0282),
		cafeVenue("Cafe B", 37.4987, 127.0287),
		activityVenue("Bowling", 37.4984, 127.0284),
		activityVenue("Climbing", 37.4988, 127.0288),
	}
	r, _ := testRecommender(venues, testCouple(feature.Vector{}), nil)

	built, err := r.ComposeCourse(context.Background(), ComposeCourseRequest{
		CoupleID: "couple-1",
		Date:     time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		Template: "active_date",
	})
	if err != nil {
		t.Fatalf("ComposeCourse() error: %v", err)
	}

	seen := make(map[string]bool)
	for _, slot := range built.Slots {
		if seen[slot.VenueName] {
			t.Errorf("venue %q appears in more than one slot", slot.VenueName)
		}
		seen[slot.VenueName] = true
	}
	if built.ID == "" {
		t.Error("composed course must carry an ID")
	}
}

func TestRegenerateSlot_InputUnchanged(t *testing.T) {
	venues := []*models.Venue{
		foodVenue("Restaurant A", 37.4980, 127.0280, 4.5),
		foodVenue("Restaurant B", 37.4985, 127.0285, 4.3),
		cafeVenue("Cafe A", 37.4982, 127.0282),
		cafeVenue("Cafe B", 37.4987, 127.0287),
		activityVenue("Bowling", 37.4984, 127.0284),
	}
	r, _ := testRecommender(venues, testCouple(feature.Vector{}), nil)

	orig, err := r.ComposeCourse(context.Background(), ComposeCourseRequest{
		CoupleID: "couple-1",
		Date:     time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		Template: "active_date",
	})
	if err != nil {
		t.Fatalf("ComposeCourse() error: %v", err)
	}

	before := orig.Slots[0].VenueName

	next, err := r.RegenerateSlot(context.Background(), RegenerateRequest{
		Course:    orig,
		SlotIndex: 0,
	})
	if err != nil {
		t.Fatalf("RegenerateSlot() error: %v", err)
	}

	if orig.Slots[0].VenueName != before {
		t.Error("regeneration must not mutate the input course")
	}
	if next.Slots[0].VenueName == before {
		t.Error("regenerated slot must not reuse the replaced venue")
	}
	for i := 1; i < len(next.Slots); i++ {
		if next.Slots[i].VenueName == next.Slots[0].VenueName {
			t.Errorf("regenerated venue duplicates slot %d", i)
		}
	}
}

func TestRecalculatePersona_PersistsResult(t *testing.T) {
	venues := []*models.Venue{foodVenue("Restaurant A", 37.4980, 127.0280, 4.5)}
	diaries := []models.DiaryEntry{
		{
			ID:       "d1",
			CoupleID: "couple-1",
			Events: []models.RatingEvent{
				{VenueName: "Restaurant A", Rating: 5},
			},
			CreatedAt: time.Now(),
		},
	}
	r, profiles := testRecommender(venues, testCouple(feature.Vector{}), diaries)

	result, err := r.RecalculatePersona(context.Background(), "couple-1")
	if err != nil {
		t.Fatalf("RecalculatePersona() error: %v", err)
	}

	if result.DiaryCount != 1 || result.EventCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", result.DiaryCount, result.EventCount)
	}
	if profiles.persisted == nil {
		t.Fatal("effective persona was not persisted")
	}
	if len(profiles.persisted) != feature.Dim {
		t.Errorf("persisted %d dims, want %d", len(profiles.persisted), feature.Dim)
	}
	if result.NewPersona == result.BasePersona {
		t.Error("a rating of 5 on a resolvable venue must move the persona")
	}
}

func TestRecalculatePersona_IncompleteSurveyUsesDefault(t *testing.T) {
	couple := testCouple(feature.Vector{})
	couple.Members[0].SurveyDone = false
	r, _ := testRecommender(nil, couple, nil)

	result, err := r.RecalculatePersona(context.Background(), "couple-1")
	if err != nil {
		t.Fatalf("RecalculatePersona() error: %v", err)
	}

	// default 1.0 * 0.3 + female 0.8 * 0.7 = 0.86
	if diff := result.BasePersona[0] - 0.86; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("base[0] = %f, want 0.86 (unfinished survey vector must not enter the blend)", result.BasePersona[0])
	}
}

func TestRecalculatePersona_EmptyDiariesKeepBase(t *testing.T) {
	r, profiles := testRecommender(nil, testCouple(feature.Vector{}), nil)

	result, err := r.RecalculatePersona(context.Background(), "couple-1")
	if err != nil {
		t.Fatalf("RecalculatePersona() error: %v", err)
	}

	if result.NewPersona != result.BasePersona {
		t.Error("no diaries: new persona must equal the base blend")
	}
	if profiles.persisted == nil {
		t.Error("base persona should still be persisted")
	}
}
