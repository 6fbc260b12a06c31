// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

// Command itda is the batch front end to the recommendation engine:
// it loads venue catalogues, ranks venues, composes and regenerates
// date courses, and recalculates couple personas, printing JSON to
// stdout.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/TaeHoseong/ItDa/internal/config"
	"github.com/TaeHoseong/ItDa/internal/course"
	"github.com/TaeHoseong/ItDa/internal/extrafeature"
	"github.com/TaeHoseong/ItDa/internal/geo"
	"github.com/TaeHoseong/ItDa/internal/logging"
	"github.com/TaeHoseong/ItDa/internal/models"
	"github.com/TaeHoseong/ItDa/internal/service"
	"github.com/TaeHoseong/ItDa/internal/store"
	"github.com/TaeHoseong/ItDa/internal/supervisor"
)

// app holds the wired engine shared by the subcommands.
type app struct {
	cfg         *config.Config
	catalogue   *store.Catalogue
	extras      *extrafeature.Table
	recommender *service.Recommender
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	catalogue, err := store.OpenCatalogue(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open catalogue at %q: %w", cfg.Store.Path, err)
	}

	extras := extrafeature.NewTable(extrafeature.StaticSource(cfg.ExtraFeatures.Definitions), logger)
	if err := extras.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial extra feature load failed")
	}

	var templates course.Templates
	if len(cfg.Course.Templates) > 0 {
		templates = cfg.Course.Templates
	}

	recommender := service.New(service.Options{
		Venues:    catalogue,
		Profiles:  catalogue,
		Diaries:   catalogue,
		Extras:    extras,
		Weights:   cfg.Scoring.Weights,
		TopK:      cfg.Scoring.TopK,
		Widening:  cfg.Course.Widening,
		Templates: templates,
		Reference: cfg.Course.Reference,
		Logger:    logger,
	})

	return &app{
		cfg:         cfg,
		catalogue:   catalogue,
		extras:      extras,
		recommender: recommender,
	}, nil
}

func (a *app) close() {
	if err := a.catalogue.Close(); err != nil {
		logging.Warn().Err(err).Msg("catalogue close failed")
	}
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func newLoadCmd() *cobra.Command {
	var file string
	var skipDuplicates bool

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a venue JSON file into the catalogue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}

			var venues []models.Venue
			if err := json.Unmarshal(data, &venues); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}

			loaded, skipped := 0, 0
			for i := range venues {
				v := &venues[i]
				if skipDuplicates {
					match, err := a.catalogue.FindNearMatch(ctx, v.Name, v.Position)
					if err != nil {
						return err
					}
					if match != nil {
						skipped++
						continue
					}
				}
				if err := a.catalogue.PutVenue(ctx, v); err != nil {
					return fmt.Errorf("store venue %q: %w", v.Name, err)
				}
				loaded++
			}

			logging.Info().Int("loaded", loaded).Int("skipped", skipped).Msg("venues loaded")
			return printJSON(map[string]int{"loaded": loaded, "skipped": skipped})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "venue JSON file (required)")
	cmd.Flags().BoolVar(&skipDuplicates, "skip-duplicates", true, "skip venues near-matching an existing entry")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newRecommendCmd() *cobra.Command {
	var (
		coupleID string
		category string
		keyword  string
		extraKey string
		exclude  []string
		lat, lng float64
		k        int

		alpha, beta, gamma, delta float64
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank venues for a couple",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if keyword != "" {
				logging.Warn().Str("keyword", keyword).Msg("no keyword search collaborator configured, --keyword has no effect")
			}

			req := service.RecommendRequest{
				CoupleID:     coupleID,
				Category:     category,
				Keyword:      keyword,
				ExtraKey:     extraKey,
				ExcludeNames: exclude,
				K:            k,
			}
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
				req.Ref = &geo.Coordinate{Lat: lat, Lng: lng}
			}
			if cmd.Flags().Changed("alpha") || cmd.Flags().Changed("beta") ||
				cmd.Flags().Changed("gamma") || cmd.Flags().Changed("delta") {
				w := a.cfg.Scoring.Weights
				if cmd.Flags().Changed("alpha") {
					w.Alpha = alpha
				}
				if cmd.Flags().Changed("beta") {
					w.Beta = beta
				}
				if cmd.Flags().Changed("gamma") {
					w.Gamma = gamma
				}
				if cmd.Flags().Changed("delta") {
					w.Delta = delta
				}
				req.Weights = &w
			}

			ranked, err := a.recommender.Recommend(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(ranked)
		},
	}

	cmd.Flags().StringVar(&coupleID, "couple", "", "couple ID")
	cmd.Flags().StringVar(&category, "category", "", "main category filter (food_cafe, culture_art, ...)")
	cmd.Flags().StringVar(&keyword, "keyword", "", "restrict to keyword-search matches (requires a configured search collaborator)")
	cmd.Flags().StringVar(&extraKey, "extra", "", "extra feature key")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "venue names to drop from the pool")
	cmd.Flags().Float64Var(&lat, "lat", 0, "reference latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "reference longitude")
	cmd.Flags().IntVar(&k, "k", 0, "candidate pool size")
	cmd.Flags().Float64Var(&alpha, "alpha", 0, "override taste-similarity weight")
	cmd.Flags().Float64Var(&beta, "beta", 0, "override distance penalty weight")
	cmd.Flags().Float64Var(&gamma, "gamma", 0, "override rating weight")
	cmd.Flags().Float64Var(&delta, "delta", 0, "override price weight")
	return cmd
}

func newPersonaCmd() *cobra.Command {
	var (
		userID string
		dims   []float64
		show   bool
	)

	cmd := &cobra.Command{
		Use:   "persona",
		Short: "Store or show a user's taste profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if show {
				p, err := a.recommender.Persona(cmd.Context(), userID)
				if err != nil {
					return err
				}
				return printJSON(p)
			}

			p, err := a.recommender.UpdatePersona(cmd.Context(), models.PersonaUpdate{
				OwnerID:    userID,
				Dimensions: dims,
			})
			if err != nil {
				return err
			}
			return printJSON(p)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID (required)")
	cmd.Flags().Float64SliceVar(&dims, "dims", nil, "the 20 survey dimensions in canonical order")
	cmd.Flags().BoolVar(&show, "show", false, "print the stored persona instead of updating")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newComposeCmd() *cobra.Command {
	var (
		coupleID string
		date     string
		template string
		start    string
		duration int
		exclude  []string
		extraKey string
		lat, lng float64
	)

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Compose a date course",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			day, err := time.Parse("2006-01-02", date)
			if err != nil {
				return fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", date, err)
			}

			var prefs *course.Preferences
			if start != "" || duration > 0 || len(exclude) > 0 {
				prefs = &course.Preferences{
					StartTime: start,
					Duration:  duration,
					Exclude:   exclude,
				}
			}

			req := service.ComposeCourseRequest{
				CoupleID: coupleID,
				Date:     day,
				Template: template,
				Prefs:    prefs,
				ExtraKey: extraKey,
			}
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
				req.Ref = &geo.Coordinate{Lat: lat, Lng: lng}
			}

			built, err := a.recommender.ComposeCourse(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(built)
		},
	}

	cmd.Flags().StringVar(&coupleID, "couple", "", "couple ID")
	cmd.Flags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "course date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&template, "template", "auto", "course template (auto, full_day, half_day_lunch, half_day_dinner, cafe_date, active_date, culture_date)")
	cmd.Flags().StringVar(&start, "start", "", "override start time (HH:MM)")
	cmd.Flags().IntVar(&duration, "duration", 0, "cap total minutes; overflowing slots are dropped")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "slot types to drop")
	cmd.Flags().StringVar(&extraKey, "extra", "", "extra feature key")
	cmd.Flags().Float64Var(&lat, "lat", 0, "reference latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "reference longitude")
	return cmd
}

func newRegenerateCmd() *cobra.Command {
	var (
		file     string
		slot     int
		category string
		keyword  string
		extraKey string
	)

	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Replace one slot of a composed course",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if keyword != "" {
				logging.Warn().Str("keyword", keyword).Msg("no keyword search collaborator configured, --keyword has no effect")
			}

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			var orig models.Course
			if err := json.Unmarshal(data, &orig); err != nil {
				return fmt.Errorf("parse course %s: %w", file, err)
			}

			next, err := a.recommender.RegenerateSlot(cmd.Context(), service.RegenerateRequest{
				Course:    &orig,
				SlotIndex: slot,
				Category:  category,
				Keyword:   keyword,
				ExtraKey:  extraKey,
			})
			if err != nil {
				return err
			}
			return printJSON(next)
		},
	}

	cmd.Flags().StringVar(&file, "course", "", "course JSON file (required)")
	cmd.Flags().IntVar(&slot, "slot", 0, "slot index to regenerate")
	cmd.Flags().StringVar(&category, "category", "", "override slot category")
	cmd.Flags().StringVar(&keyword, "keyword", "", "restrict to keyword-search matches (requires a configured search collaborator)")
	cmd.Flags().StringVar(&extraKey, "extra", "", "extra feature key")
	_ = cmd.MarkFlagRequired("course")
	return cmd
}

func newRecalcCmd() *cobra.Command {
	var coupleID string

	cmd := &cobra.Command{
		Use:   "recalc",
		Short: "Recalculate a couple's effective persona from diary history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.recommender.RecalculatePersona(cmd.Context(), coupleID)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&coupleID, "couple", "", "couple ID (required)")
	_ = cmd.MarkFlagRequired("couple")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the background services (extra-feature refresh) until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{})
			tree.Add(extrafeature.NewRefreshService(a.extras, a.cfg.ExtraFeatures.RefreshInterval, logging.Logger()))

			logging.Info().Msg("background services started")
			errCh := tree.ServeBackground(ctx)

			<-ctx.Done()
			if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logging.Info().Msg("shut down cleanly")
			return nil
		},
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "itda",
		Short:         "Date course recommendation engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		newLoadCmd(),
		newRecommendCmd(),
		newPersonaCmd(),
		newComposeCmd(),
		newRegenerateCmd(),
		newRecalcCmd(),
		newServeCmd(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logging.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
