// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/TaeHoseong/ItDa/internal/feature"
	"github.com/TaeHoseong/ItDa/internal/geo"
	"github.com/TaeHoseong/ItDa/internal/metrics"
	"github.com/TaeHoseong/ItDa/internal/models"
)

// Key prefixes for BadgerDB storage.
const (
	venueKeyPrefix   = "venue:"
	personaKeyPrefix = "persona:"
	coupleKeyPrefix  = "couple:"
	diaryKeyPrefix   = "diary:"
)

// Catalogue is a BadgerDB-backed implementation of the data-access
// contracts. Values are JSON; venues are keyed by place hash, diaries
// by couple ID plus entry ID.
type Catalogue struct {
	db *badger.DB
}

// NewCatalogue wraps an open BadgerDB handle.
func NewCatalogue(db *badger.DB) *Catalogue {
	return &Catalogue{db: db}
}

// OpenCatalogue opens (or creates) a catalogue at path. An empty path
// opens an in-memory store, which the CLI and tests use.
func OpenCatalogue(path string) (*Catalogue, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open catalogue: %w", err)
	}
	return &Catalogue{db: db}, nil
}

// Close releases the underlying database.
func (c *Catalogue) Close() error {
	return c.db.Close()
}

// PutVenue stores a venue keyed by its place hash. User-submitted
// venues without enriched features get the category-templated default
// document.
func (c *Catalogue) PutVenue(ctx context.Context, v *models.Venue) error {
	metrics.StoreOperations.WithLabelValues("put_venue").Inc()
	if v.Features.MainCategory == nil && v.Features.Atmosphere == nil {
		v.Features = DefaultFeatures(v.Category)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal venue: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(venueKeyPrefix+v.ID()), data)
	})
}

// ListVenues returns every stored venue.
func (c *Catalogue) ListVenues(ctx context.Context) ([]*models.Venue, error) {
	metrics.StoreOperations.WithLabelValues("list_venues").Inc()
	var venues []*models.Venue

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(venueKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var v models.Venue
				if err := json.Unmarshal(val, &v); err != nil {
					return fmt.Errorf("unmarshal venue: %w", err)
				}
				venues = append(venues, &v)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Stable order keeps ranking ties deterministic across runs.
	sort.Slice(venues, func(i, j int) bool { return venues[i].Name < venues[j].Name })
	return venues, nil
}

// ListVenuesByNames returns the stored venues with the given names.
// Names without a match are silently absent from the result.
func (c *Catalogue) ListVenuesByNames(ctx context.Context, names []string) ([]*models.Venue, error) {
	if len(names) == 0 {
		return nil, nil
	}

	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}

	all, err := c.ListVenues(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*models.Venue, 0, len(names))
	for _, v := range all {
		if _, ok := wanted[v.Name]; ok {
			matched = append(matched, v)
		}
	}
	return matched, nil
}

// FindNearMatch returns the catalogued venue matching name and
// coordinates within the ~11 m tolerance, or nil.
func (c *Catalogue) FindNearMatch(ctx context.Context, name string, pos geo.Coordinate) (*models.Venue, error) {
	venues, err := c.ListVenues(ctx)
	if err != nil {
		return nil, err
	}
	for _, v := range venues {
		if v.Name == name && geo.NearMatch(v.Position, pos) {
			return v, nil
		}
	}
	return nil, nil
}

// PutPersona stores a user persona.
func (c *Catalogue) PutPersona(ctx context.Context, p *models.Persona) error {
	metrics.StoreOperations.WithLabelValues("put_persona").Inc()
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal persona: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(personaKeyPrefix+p.OwnerID), data)
	})
}

// GetPersona retrieves a user persona.
func (c *Catalogue) GetPersona(ctx context.Context, userID string) (*models.Persona, error) {
	metrics.StoreOperations.WithLabelValues("get_persona").Inc()
	var p models.Persona
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(personaKeyPrefix + userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrPersonaNotFound
		}
		if err != nil {
			return fmt.Errorf("get persona: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PutCouple stores a couple record.
func (c *Catalogue) PutCouple(ctx context.Context, couple *models.Couple) error {
	metrics.StoreOperations.WithLabelValues("put_couple").Inc()
	data, err := json.Marshal(couple)
	if err != nil {
		return fmt.Errorf("marshal couple: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(coupleKeyPrefix+couple.ID), data)
	})
}

// GetCouple retrieves a couple with both member profiles.
func (c *Catalogue) GetCouple(ctx context.Context, coupleID string) (*models.Couple, error) {
	metrics.StoreOperations.WithLabelValues("get_couple").Inc()
	var couple models.Couple
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(coupleKeyPrefix + coupleID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrCoupleNotFound
		}
		if err != nil {
			return fmt.Errorf("get couple: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &couple)
		})
	})
	if err != nil {
		return nil, err
	}
	return &couple, nil
}

// PutCoupleEffective persists a recalculated effective persona.
func (c *Catalogue) PutCoupleEffective(ctx context.Context, coupleID string, effective []float64) error {
	couple, err := c.GetCouple(ctx, coupleID)
	if err != nil {
		return err
	}
	vec, ok := feature.FromSlice(effective)
	if !ok {
		return fmt.Errorf("effective persona has %d dimensions, want %d", len(effective), feature.Dim)
	}
	couple.Effective = vec
	couple.UpdatedAt = time.Now()
	return c.PutCouple(ctx, couple)
}

// PutDiary stores a diary entry.
func (c *Catalogue) PutDiary(ctx context.Context, d *models.DiaryEntry) error {
	metrics.StoreOperations.WithLabelValues("put_diary").Inc()
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal diary: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(diaryKeyPrefix+d.CoupleID+":"+d.ID), data)
	})
}

// ListDiaries returns a couple's diaries ordered by creation time.
// The order is part of the replay contract, not a presentation choice.
func (c *Catalogue) ListDiaries(ctx context.Context, coupleID string) ([]models.DiaryEntry, error) {
	metrics.StoreOperations.WithLabelValues("list_diaries").Inc()
	var diaries []models.DiaryEntry

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(diaryKeyPrefix + coupleID + ":")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var d models.DiaryEntry
				if err := json.Unmarshal(val, &d); err != nil {
					return fmt.Errorf("unmarshal diary: %w", err)
				}
				diaries = append(diaries, d)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(diaries, func(i, j int) bool {
		return diaries[i].CreatedAt.Before(diaries[j].CreatedAt)
	})
	return diaries, nil
}
