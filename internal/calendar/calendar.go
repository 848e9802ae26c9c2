// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

// Package calendar handles the DD-MM-YYYY day strings entered by staff and
// the start-of-day instants derived from them.
//
// All conversions take an explicit *time.Location; callers pass the single
// configured reporting zone, never time.Local.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// DayLayout is the textual form of a calendar day.
const DayLayout = "02-01-2006"

// ErrInvalidDateFormat is returned when a day string is not a real DD-MM-YYYY date.
var ErrInvalidDateFormat = errors.New("invalid date format, expected DD-MM-YYYY")

// IsDay reports whether s is a valid DD-MM-YYYY calendar day.
func IsDay(s string) bool {
	if len(s) != len(DayLayout) || s[2] != '-' || s[5] != '-' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if i == 2 || i == 5 {
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	_, err := time.Parse(DayLayout, s)
	return err == nil
}

// ParseDay returns the start-of-day instant of s in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if !IsDay(s) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	t, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
	}
	return t, nil
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Format renders t as DD-MM-YYYY in loc.
func Format(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// Normalize derives the normalized timestamp for a stored day string.
// An unparsable or empty string yields nil, never a zero time.
func Normalize(s string, loc *time.Location) *time.Time {
	t, err := ParseDay(s, loc)
	if err != nil {
		return nil
	}
	return &t
}

// Window is an inclusive range of whole days.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow parses both bounds. Start is the first instant of startDay and
// End the last instant of endDay. An inverted window is returned as is.
func NewWindow(startDay, endDay string, loc *time.Location) (Window, error) {
	start, err := ParseDay(startDay, loc)
	if err != nil {
		return Window{}, err
	}
	end, err := ParseDay(endDay, loc)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: start, End: EndOfDay(end)}, nil
}

// Empty reports whether the window can match nothing.
func (w Window) Empty() bool {
	return w.Start.After(w.End)
}

// Contains reports whether t lies in [Start, End].
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// LoadLocation resolves an IANA zone name. "Local" and "" map to time.Local.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", name, err)
	}
	return loc, nil
}
