// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/innledger/internal/calendar"
	"github.com/tomtom215/innledger/internal/models"
)

var kolkata = mustLoad("Asia/Kolkata")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// fakeLister serves fixed records and counts reads.
type fakeLister struct {
	records map[models.Collection][]models.Record
	reads   int
	err     error
}

func (f *fakeLister) List(_ context.Context, c models.Collection) ([]models.Record, error) {
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	return f.records[c], nil
}

func restEntry(id, day string, items ...models.LineItem) *models.RestEntry {
	return &models.RestEntry{
		Base:      models.Base{ID: id},
		DateStamp: models.DateStamp{Date: day, DateNormalized: calendar.Normalize(day, kolkata)},
		Expenses:  items,
	}
}

func officeEntry(id, day string, items ...models.LineItem) *models.OfficeEntry {
	return &models.OfficeEntry{
		Base:      models.Base{ID: id},
		DateStamp: models.DateStamp{Date: day, DateNormalized: calendar.Normalize(day, kolkata)},
		Expenses:  items,
	}
}

func ids(recs []models.Dated) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.GetID()
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestQueryRange(t *testing.T) {
	lister := &fakeLister{records: map[models.Collection][]models.Record{
		models.CollectionRestEntry: {
			restEntry("feb1", "01-02-2024"),
			restEntry("jan15", "15-01-2024"),
			restEntry("jan01", "01-01-2024"),
			restEntry("jan31", "31-01-2024"),
			restEntry("bad", "2024-01-10"),
			restEntry("jan15b", "15-01-2024"),
			restEntry("dec31", "31-12-2023"),
		},
	}}
	agg := New(lister, kolkata, "Pending")

	tests := []struct {
		name       string
		start, end string
		want       []string
	}{
		{"january inclusive bounds", "01-01-2024", "31-01-2024", []string{"jan01", "jan15", "jan15b", "jan31"}},
		{"single day", "15-01-2024", "15-01-2024", []string{"jan15", "jan15b"}},
		{"spans year end", "31-12-2023", "01-01-2024", []string{"dec31", "jan01"}},
		{"inverted window", "31-01-2024", "01-01-2024", []string{}},
		{"no matches", "01-03-2024", "31-03-2024", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := agg.QueryRange(context.Background(), models.CollectionRestEntry, tt.start, tt.end)
			if err != nil {
				t.Fatalf("QueryRange() error = %v", err)
			}
			if got == nil {
				t.Fatal("QueryRange() returned nil slice")
			}
			if !equalIDs(ids(got), tt.want) {
				t.Errorf("QueryRange() = %v, want %v", ids(got), tt.want)
			}

			w, _ := calendar.NewWindow(tt.start, tt.end, kolkata)
			for i, r := range got {
				if !w.Contains(*r.Normalized()) {
					t.Errorf("record %s outside window", r.GetID())
				}
				if i > 0 && r.Normalized().Before(*got[i-1].Normalized()) {
					t.Errorf("records not ascending at %d", i)
				}
			}
		})
	}
}

func TestQueryRangeJanuaryExcludesFebruary(t *testing.T) {
	lister := &fakeLister{records: map[models.Collection][]models.Record{
		models.CollectionRestEntry: {
			restEntry("jan15", "15-01-2024"),
			restEntry("feb1", "01-02-2024"),
		},
	}}
	agg := New(lister, kolkata, "Pending")

	got, err := agg.QueryRange(context.Background(), models.CollectionRestEntry, "01-01-2024", "31-01-2024")
	if err != nil {
		t.Fatalf("QueryRange() error = %v", err)
	}
	if !equalIDs(ids(got), []string{"jan15"}) {
		t.Errorf("QueryRange() = %v, want [jan15]", ids(got))
	}
}

func TestQueryRangeInvalidBoundsSkipRead(t *testing.T) {
	for _, bounds := range [][2]string{
		{"2024-01-01", "31-01-2024"},
		{"01-01-2024", "31/01/2024"},
		{"", "31-01-2024"},
		{"32-01-2024", "31-01-2024"},
	} {
		lister := &fakeLister{}
		agg := New(lister, kolkata, "Pending")

		_, err := agg.QueryRange(context.Background(), models.CollectionRestEntry, bounds[0], bounds[1])
		if !errors.Is(err, calendar.ErrInvalidDateFormat) {
			t.Errorf("QueryRange(%q, %q) error = %v, want ErrInvalidDateFormat", bounds[0], bounds[1], err)
		}
		if lister.reads != 0 {
			t.Errorf("QueryRange(%q, %q) read the store %d times", bounds[0], bounds[1], lister.reads)
		}
	}
}

func TestQueryRangeUndatedCollection(t *testing.T) {
	agg := New(&fakeLister{}, kolkata, "Pending")

	if _, err := agg.QueryRange(context.Background(), models.CollectionRoom, "01-01-2024", "31-01-2024"); !errors.Is(err, ErrNotDated) {
		t.Errorf("QueryRange(Room) error = %v, want ErrNotDated", err)
	}
	var unknown *models.UnknownCollectionError
	if _, err := agg.QueryRange(context.Background(), "Invoice", "01-01-2024", "31-01-2024"); !errors.As(err, &unknown) {
		t.Errorf("QueryRange(Invoice) error = %v, want UnknownCollectionError", err)
	}
}

func TestQueryRangeStoreError(t *testing.T) {
	boom := errors.New("disk gone")
	agg := New(&fakeLister{err: boom}, kolkata, "Pending")

	if _, err := agg.QueryRange(context.Background(), models.CollectionRestEntry, "01-01-2024", "31-01-2024"); !errors.Is(err, boom) {
		t.Errorf("QueryRange() error = %v, want wrapped store error", err)
	}
}

func TestQueryRangeUsesReportingZone(t *testing.T) {
	// 23:30 in Kolkata is 18:00 UTC; the end bound is 23:59:59 Kolkata.
	late := time.Date(2024, 1, 31, 23, 30, 0, 0, kolkata)
	rec := &models.RestEntry{
		Base:      models.Base{ID: "late"},
		DateStamp: models.DateStamp{Date: "31-01-2024", DateNormalized: &late},
	}
	agg := New(&fakeLister{records: map[models.Collection][]models.Record{models.CollectionRestEntry: {rec}}}, kolkata, "Pending")

	got, err := agg.QueryRange(context.Background(), models.CollectionRestEntry, "31-01-2024", "31-01-2024")
	if err != nil {
		t.Fatalf("QueryRange() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("QueryRange() matched %d records, want 1", len(got))
	}
}

func TestQueryItems(t *testing.T) {
	lister := &fakeLister{records: map[models.Collection][]models.Record{
		models.CollectionRestEntry: {
			restEntry("b", "20-01-2024", models.LineItem{Category: "Gas", Amount: 900}),
			restEntry("a", "10-01-2024",
				models.LineItem{Category: "Milk", Amount: 40},
				models.LineItem{Category: "Bread", Amount: 30},
			),
			restEntry("c", "05-02-2024", models.LineItem{Category: "Rice", Amount: 500}),
		},
	}}
	agg := New(lister, kolkata, "Pending")

	items, err := agg.QueryItems(context.Background(), models.CollectionRestEntry, "01-01-2024", "31-01-2024", "expenses")
	if err != nil {
		t.Fatalf("QueryItems() error = %v", err)
	}
	want := []string{"Milk", "Bread", "Gas"}
	if len(items) != len(want) {
		t.Fatalf("QueryItems() returned %d items, want %d", len(items), len(want))
	}
	for i, it := range items {
		if it.Category != want[i] {
			t.Errorf("item %d = %s, want %s", i, it.Category, want[i])
		}
	}

	if _, err := agg.QueryItems(context.Background(), models.CollectionRestEntry, "01-01-2024", "31-01-2024", "sales"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("QueryItems(sales) error = %v, want ErrUnknownField", err)
	}
	if _, err := agg.QueryItems(context.Background(), models.CollectionGuestEntry, "01-01-2024", "31-01-2024", "expenses"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("QueryItems(GuestEntry) error = %v, want ErrUnknownField", err)
	}
}

func TestTotals(t *testing.T) {
	day := calendar.Normalize("12-01-2024", kolkata)
	lister := &fakeLister{records: map[models.Collection][]models.Record{
		models.CollectionGuestEntry: {
			&models.GuestEntry{DateStamp: models.DateStamp{Date: "12-01-2024", DateNormalized: day}, Amount: 2000, PaymentMethod: "upi"},
			&models.GuestEntry{DateStamp: models.DateStamp{Date: "12-01-2024", DateNormalized: day}, Amount: 1500},
		},
		models.CollectionRestEntry: {
			&models.RestEntry{
				DateStamp:   models.DateStamp{Date: "12-01-2024", DateNormalized: day},
				CashSales:   1000,
				OnlineSales: 600,
				Expenses:    []models.LineItem{{Category: "Milk", Amount: 100, PaymentMethod: "cash"}},
			},
		},
		models.CollectionRestPending: {
			&models.RestPending{DateStamp: models.DateStamp{Date: "12-01-2024", DateNormalized: day}, Name: "A", Amount: 300},
			&models.RestPending{DateStamp: models.DateStamp{Date: "12-01-2024", DateNormalized: day}, Name: "B", Amount: 200, Settled: true},
		},
	}}
	agg := New(lister, kolkata, "Pending")
	ctx := context.Background()

	guest, err := agg.Totals(ctx, models.CollectionGuestEntry, "01-01-2024", "31-01-2024")
	if err != nil {
		t.Fatalf("Totals(GuestEntry) error = %v", err)
	}
	if guest.Income != 3500 || guest.IncomeByMethod["upi"] != 2000 || guest.IncomeByMethod[unspecifiedMethod] != 1500 {
		t.Errorf("guest totals = %+v", guest)
	}

	rest, err := agg.Totals(ctx, models.CollectionRestEntry, "01-01-2024", "31-01-2024")
	if err != nil {
		t.Fatalf("Totals(RestEntry) error = %v", err)
	}
	if rest.Income != 1600 || rest.Expenses != 100 || rest.Net != 1500 || rest.ExpensesByMethod["cash"] != 100 {
		t.Errorf("restaurant totals = %+v", rest)
	}

	pending, err := agg.Totals(ctx, models.CollectionRestPending, "01-01-2024", "31-01-2024")
	if err != nil {
		t.Fatalf("Totals(RestPending) error = %v", err)
	}
	if pending.Outstanding != 300 || pending.Settled != 200 || pending.Records != 2 {
		t.Errorf("pending totals = %+v", pending)
	}
}

func TestPendingTotal(t *testing.T) {
	lister := &fakeLister{records: map[models.Collection][]models.Record{
		models.CollectionOfficeEntry: {
			officeEntry("a", "03-01-2024",
				models.LineItem{Category: "Pending", Amount: 250},
				models.LineItem{Category: "Stationery", Amount: 80},
			),
			officeEntry("b", "09-01-2024", models.LineItem{Category: "Pending", Amount: 50}),
			officeEntry("c", "09-02-2024", models.LineItem{Category: "Pending", Amount: 999}),
		},
	}}
	agg := New(lister, kolkata, "Pending")

	p, err := agg.PendingTotal(context.Background(), "01-01-2024", "31-01-2024")
	if err != nil {
		t.Fatalf("PendingTotal() error = %v", err)
	}
	if p.Total != 300 || len(p.Items) != 2 || p.Category != "Pending" {
		t.Errorf("PendingTotal() = %+v", p)
	}

	if _, err := agg.PendingTotal(context.Background(), "1-1-2024", "31-01-2024"); !errors.Is(err, calendar.ErrInvalidDateFormat) {
		t.Errorf("PendingTotal(bad bound) error = %v", err)
	}
}
