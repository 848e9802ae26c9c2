// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package report

import (
	"context"
	"time"

	"github.com/tomtom215/innledger/internal/metrics"
	"github.com/tomtom215/innledger/internal/models"
)

// unspecifiedMethod buckets amounts entered without a payment method.
const unspecifiedMethod = "unspecified"

// Summary is the money view of one collection over a window.
type Summary struct {
	Collection       models.Collection  `json:"collection"`
	Start            string             `json:"start"`
	End              string             `json:"end"`
	Records          int                `json:"records"`
	Income           float64            `json:"income"`
	Expenses         float64            `json:"expenses"`
	Net              float64            `json:"net"`
	IncomeByMethod   map[string]float64 `json:"income_by_method"`
	ExpensesByMethod map[string]float64 `json:"expenses_by_method"`
	Outstanding      float64            `json:"outstanding,omitempty"`
	Settled          float64            `json:"settled,omitempty"`
}

func methodKey(m string) string {
	if m == "" {
		return unspecifiedMethod
	}
	return m
}

func (s *Summary) addExpenses(items []models.LineItem) {
	for _, it := range items {
		s.Expenses += it.Amount
		s.ExpensesByMethod[methodKey(it.PaymentMethod)] += it.Amount
	}
}

// Totals sums the window of c. Guest stays count as income by their payment
// method. Restaurant days split income into cash and online and add their
// expenses. Office days carry expenses only. Pending dues are split into
// outstanding and settled.
func (a *Aggregator) Totals(ctx context.Context, c models.Collection, startDay, endDay string) (*Summary, error) {
	start := time.Now()
	recs, err := a.queryRange(ctx, c, startDay, endDay)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Collection:       c,
		Start:            startDay,
		End:              endDay,
		Records:          len(recs),
		IncomeByMethod:   map[string]float64{},
		ExpensesByMethod: map[string]float64{},
	}
	for _, r := range recs {
		switch rec := r.(type) {
		case *models.GuestEntry:
			s.Income += rec.Amount
			s.IncomeByMethod[methodKey(rec.PaymentMethod)] += rec.Amount
		case *models.RestEntry:
			s.Income += rec.CashSales + rec.OnlineSales
			s.IncomeByMethod["cash"] += rec.CashSales
			s.IncomeByMethod["online"] += rec.OnlineSales
			s.addExpenses(rec.Expenses)
		case *models.OfficeEntry:
			s.addExpenses(rec.Expenses)
		case *models.RestPending:
			if rec.Settled {
				s.Settled += rec.Amount
			} else {
				s.Outstanding += rec.Amount
			}
		}
	}
	s.Net = s.Income - s.Expenses

	metrics.RecordReportQuery(string(c), "totals", time.Since(start), len(recs))
	return s, nil
}

// PendingSummary is the total of office line items in the pending category.
type PendingSummary struct {
	Category string            `json:"category"`
	Start    string            `json:"start"`
	End      string            `json:"end"`
	Total    float64           `json:"total"`
	Items    []models.LineItem `json:"items"`
}

// PendingTotal sums office expense lines whose category is the configured
// pending category.
func (a *Aggregator) PendingTotal(ctx context.Context, startDay, endDay string) (*PendingSummary, error) {
	items, err := a.QueryItems(ctx, models.CollectionOfficeEntry, startDay, endDay, "expenses")
	if err != nil {
		return nil, err
	}

	p := &PendingSummary{
		Category: a.pendingCategory,
		Start:    startDay,
		End:      endDay,
		Items:    []models.LineItem{},
	}
	for _, it := range items {
		if it.Category == a.pendingCategory {
			p.Total += it.Amount
			p.Items = append(p.Items, it)
		}
	}
	return p, nil
}
