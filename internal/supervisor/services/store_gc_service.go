// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package services

import (
	"context"
	"time"

	"github.com/tomtom215/innledger/internal/logging"
)

// GarbageCollector is implemented by *store.Store.
type GarbageCollector interface {
	CollectGarbage(ratio float64) error
}

// StoreGCService reclaims value-log space on a fixed interval.
// GC errors are logged and retried on the next tick; they never stop the service.
type StoreGCService struct {
	store    GarbageCollector
	interval time.Duration
	ratio    float64
}

// NewStoreGCService creates the service. Defaults: 10 minutes, ratio 0.5.
func NewStoreGCService(store GarbageCollector, interval time.Duration, ratio float64) *StoreGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}
	return &StoreGCService{store: store, interval: interval, ratio: ratio}
}

// Serve implements suture.Service.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger := logging.WithComponent("store-gc")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.store.CollectGarbage(s.ratio); err != nil {
				logger.Warn().Err(err).Msg("Value log GC failed")
				continue
			}
			logger.Debug().Dur("duration", time.Since(start)).Msg("Value log GC finished")
		}
	}
}

func (s *StoreGCService) String() string {
	return "store-gc"
}
