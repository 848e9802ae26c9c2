// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package cron

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{name: "monthly backup", expr: "0 2 1 * *"},
		{name: "every 5 minutes", expr: "*/5 * * * *"},
		{name: "weekdays", expr: "0 9 * * 1-5"},
		{name: "list", expr: "0,15,30,45 * * * *"},
		{name: "stepped range", expr: "0 8-18/2 * * *"},
		{name: "sunday as 7", expr: "0 0 * * 7"},
		{name: "too few fields", expr: "0 2 1 *", wantErr: true},
		{name: "too many fields", expr: "0 2 1 * * *", wantErr: true},
		{name: "minute out of range", expr: "60 2 1 * *", wantErr: true},
		{name: "hour out of range", expr: "0 24 1 * *", wantErr: true},
		{name: "day zero", expr: "0 2 0 * *", wantErr: true},
		{name: "zero step", expr: "*/0 * * * *", wantErr: true},
		{name: "inverted range", expr: "0 5-1 * * *", wantErr: true},
		{name: "garbage", expr: "a b c d e", wantErr: true},
		{name: "empty list entry", expr: "0, 2 1 * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
		})
	}
}

func TestExpression_Next(t *testing.T) {
	utc := time.UTC

	tests := []struct {
		name  string
		expr  string
		after time.Time
		want  time.Time
	}{
		{
			name:  "monthly backup later in month",
			expr:  "0 2 1 * *",
			after: time.Date(2024, 1, 15, 10, 0, 0, 0, utc),
			want:  time.Date(2024, 2, 1, 2, 0, 0, 0, utc),
		},
		{
			name:  "monthly backup same day before 02:00",
			expr:  "0 2 1 * *",
			after: time.Date(2024, 3, 1, 1, 59, 30, 0, utc),
			want:  time.Date(2024, 3, 1, 2, 0, 0, 0, utc),
		},
		{
			name:  "monthly backup exactly at fire time moves to next month",
			expr:  "0 2 1 * *",
			after: time.Date(2024, 3, 1, 2, 0, 0, 0, utc),
			want:  time.Date(2024, 4, 1, 2, 0, 0, 0, utc),
		},
		{
			name:  "year rollover",
			expr:  "0 2 1 * *",
			after: time.Date(2024, 12, 5, 0, 0, 0, 0, utc),
			want:  time.Date(2025, 1, 1, 2, 0, 0, 0, utc),
		},
		{
			name:  "every 15 minutes",
			expr:  "*/15 * * * *",
			after: time.Date(2024, 1, 1, 10, 7, 0, 0, utc),
			want:  time.Date(2024, 1, 1, 10, 15, 0, 0, utc),
		},
		{
			name:  "monday 9am",
			expr:  "0 9 * * 1",
			after: time.Date(2024, 1, 3, 12, 0, 0, 0, utc), // Wednesday
			want:  time.Date(2024, 1, 8, 9, 0, 0, 0, utc),
		},
		{
			name:  "dom or dow",
			expr:  "0 0 15 * 0",
			after: time.Date(2024, 1, 1, 1, 0, 0, 0, utc), // Monday
			want:  time.Date(2024, 1, 7, 0, 0, 0, 0, utc), // Sunday comes before the 15th
		},
		{
			name:  "leap day",
			expr:  "0 0 29 2 *",
			after: time.Date(2024, 3, 1, 0, 0, 0, 0, utc),
			want:  time.Date(2028, 2, 29, 0, 0, 0, 0, utc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Parse(tt.expr)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := e.Next(tt.after, utc); !got.Equal(tt.want) {
				t.Errorf("Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpression_NextNeverFires(t *testing.T) {
	e := MustParse("0 0 30 2 *")
	if got := e.Next(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil); !got.IsZero() {
		t.Errorf("Next() = %v, want zero time", got)
	}
}

func TestExpression_NextInLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 2024-01-31 21:00 UTC is 2024-02-01 02:30 IST, past the 02:00 fire time.
	got, err := Next("0 2 1 * *", time.Date(2024, 1, 31, 21, 0, 0, 0, time.UTC), loc)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	want := time.Date(2024, 3, 1, 2, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("Next() = %v, want %v", got, want)
	}
}
