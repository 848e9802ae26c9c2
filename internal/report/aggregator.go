// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

// Package report answers date-range questions over dated collections.
//
// A window is two DD-MM-YYYY days, both inclusive, read in the reporting
// zone. Bounds are parsed before the store is touched, so a malformed request
// never costs a collection scan. Records whose date never normalized are
// invisible to every query here.
package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/innledger/internal/calendar"
	"github.com/tomtom215/innledger/internal/metrics"
	"github.com/tomtom215/innledger/internal/models"
)

// ErrNotDated is returned for range queries over collections without a day.
var ErrNotDated = errors.New("collection has no date field")

// ErrUnknownField is returned by QueryItems for a sub-array the collection lacks.
var ErrUnknownField = errors.New("unknown line-item field")

// Lister reads every record of a collection.
type Lister interface {
	List(ctx context.Context, c models.Collection) ([]models.Record, error)
}

// Aggregator runs range queries against a Lister.
type Aggregator struct {
	store           Lister
	loc             *time.Location
	pendingCategory string
}

// New creates an Aggregator reading windows in loc. pendingCategory names the
// office line-item category summed by PendingTotal.
func New(store Lister, loc *time.Location, pendingCategory string) *Aggregator {
	return &Aggregator{store: store, loc: loc, pendingCategory: pendingCategory}
}

// Location returns the reporting zone.
func (a *Aggregator) Location() *time.Location { return a.loc }

// QueryRange returns the records of c whose normalized date lies in
// [startDay, endDay], ascending by date. Records on the same day keep
// their insertion order. An inverted window yields an empty slice.
func (a *Aggregator) QueryRange(ctx context.Context, c models.Collection, startDay, endDay string) ([]models.Dated, error) {
	start := time.Now()
	out, err := a.queryRange(ctx, c, startDay, endDay)
	if err == nil {
		metrics.RecordReportQuery(string(c), "range", time.Since(start), len(out))
	}
	return out, err
}

func (a *Aggregator) queryRange(ctx context.Context, c models.Collection, startDay, endDay string) ([]models.Dated, error) {
	if _, err := models.New(c); err != nil {
		return nil, err
	}
	if !models.IsDated(c) {
		return nil, fmt.Errorf("%s: %w", c, ErrNotDated)
	}
	w, err := calendar.NewWindow(startDay, endDay, a.loc)
	if err != nil {
		return nil, err
	}
	if w.Empty() {
		return []models.Dated{}, nil
	}

	recs, err := a.store.List(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c, err)
	}

	out := make([]models.Dated, 0, len(recs))
	for _, r := range recs {
		d, ok := r.(models.Dated)
		if !ok {
			continue
		}
		if t := d.Normalized(); t != nil && w.Contains(*t) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Normalized().Before(*out[j].Normalized())
	})
	return out, nil
}

// QueryItems flattens the named sub-array of every record in the window.
// Items keep record order, then their order inside the record.
func (a *Aggregator) QueryItems(ctx context.Context, c models.Collection, startDay, endDay, field string) ([]models.LineItem, error) {
	if err := checkItemField(c, field); err != nil {
		return nil, err
	}

	start := time.Now()
	recs, err := a.queryRange(ctx, c, startDay, endDay)
	if err != nil {
		return nil, err
	}

	items := []models.LineItem{}
	for _, r := range recs {
		it, ok := r.(models.Itemized)
		if !ok {
			continue
		}
		sub, _ := it.Items(field)
		items = append(items, sub...)
	}
	metrics.RecordReportQuery(string(c), "items", time.Since(start), len(items))
	return items, nil
}

// checkItemField rejects fields the collection type does not carry.
func checkItemField(c models.Collection, field string) error {
	rec, err := models.New(c)
	if err != nil {
		return err
	}
	it, ok := rec.(models.Itemized)
	if !ok {
		return fmt.Errorf("%s.%s: %w", c, field, ErrUnknownField)
	}
	if _, ok := it.Items(field); !ok {
		return fmt.Errorf("%s.%s: %w", c, field, ErrUnknownField)
	}
	return nil
}
