// ItDa - Date Course Recommendation Engine
// Copyright 2026 TaeHoseong
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/TaeHoseong/ItDa

package extrafeature

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/TaeHoseong/ItDa/internal/metrics"
)

// RefreshService periodically refreshes the table under a suture
// supervisor. It adapts the refresh loop to suture's Serve pattern: a
// failed refresh is logged and retried on the next tick rather than
// crashing the service, so a transient source outage cannot take the
// override table down with it.
type RefreshService struct {
	table    *Table
	interval time.Duration
	logger   zerolog.Logger
}

// NewRefreshService wraps table in a supervised periodic refresher.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRefreshService(table *Table, interval time.Duration, logger zerolog.Logger) *RefreshService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &RefreshService{
		table:    table,
		interval: interval,
		logger:   logger.With().Str("component", "extrafeature-refresh").Logger(),
	}
}

// Serve implements suture.Service. It refreshes once on start, then on
// every tick until the context is canceled.
func (s *RefreshService) Serve(ctx context.Context) error {
	s.refresh(ctx, "initial extra feature refresh failed")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.refresh(ctx, "extra feature refresh failed")
		}
	}
}

func (s *RefreshService) refresh(ctx context.Context, failMsg string) {
	if err := s.table.Refresh(ctx); err != nil {
		metrics.ExtraFeatureRefreshes.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Msg(failMsg)
		return
	}
	metrics.ExtraFeatureRefreshes.WithLabelValues("ok").Inc()
}

// String names the service in supervisor logs.
func (s *RefreshService) String() string {
	return "extrafeature-refresh"
}
