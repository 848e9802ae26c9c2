// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

// Package cron parses standard 5-field cron expressions and computes fire times.
//
// Supported field syntax: "*", "n", "n-m", lists "a,b,c", and steps "*/s",
// "n-m/s", "n/s". Day-of-week accepts 0-7 with both 0 and 7 meaning Sunday.
// When both day-of-month and day-of-week are restricted, a day matching
// either one fires, as in Vixie cron.
package cron

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Expression is a parsed schedule. Each field is a bitmask of allowed values.
type Expression struct {
	source  string
	minute  uint64
	hour    uint64
	dom     uint64
	month   uint64
	dow     uint64
	domStar bool
	dowStar bool
}

type bounds struct {
	name     string
	min, max int
}

var fieldBounds = [5]bounds{
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day-of-month", 1, 31},
	{"month", 1, 12},
	{"day-of-week", 0, 7},
}

// Parse parses expr, e.g. "0 2 1 * *" for 02:00 on the first of every month.
func Parse(expr string) (*Expression, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, fmt.Errorf("cron expression must have 5 fields, got %d", len(fields))
	}

	var masks [5]uint64
	for i, f := range fields {
		m, err := parseField(f, fieldBounds[i])
		if err != nil {
			return nil, fmt.Errorf("invalid %s field %q: %w", fieldBounds[i].name, f, err)
		}
		masks[i] = m
	}

	// Fold Sunday=7 onto 0.
	if masks[4]&(1<<7) != 0 {
		masks[4] = (masks[4] &^ (1 << 7)) | 1
	}

	return &Expression{
		source:  expr,
		minute:  masks[0],
		hour:    masks[1],
		dom:     masks[2],
		month:   masks[3],
		dow:     masks[4],
		domStar: isStar(fields[2]),
		dowStar: isStar(fields[4]),
	}, nil
}

// MustParse is Parse that panics. For package-level constants only.
func MustParse(expr string) *Expression {
	e, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Expression) String() string { return e.source }

func isStar(field string) bool {
	return field == "*" || strings.HasPrefix(field, "*/")
}

func parseField(field string, b bounds) (uint64, error) {
	var mask uint64
	for _, part := range strings.Split(field, ",") {
		m, err := parsePart(part, b)
		if err != nil {
			return 0, err
		}
		mask |= m
	}
	return mask, nil
}

func parsePart(part string, b bounds) (uint64, error) {
	if part == "" {
		return 0, fmt.Errorf("empty value")
	}

	rangePart, step := part, 1
	if i := strings.IndexByte(part, '/'); i >= 0 {
		s, err := strconv.Atoi(part[i+1:])
		if err != nil || s <= 0 {
			return 0, fmt.Errorf("invalid step %q", part[i+1:])
		}
		rangePart, step = part[:i], s
	}

	lo, hi := b.min, b.max
	switch {
	case rangePart == "*":
	case strings.Contains(rangePart, "-"):
		from, to, _ := strings.Cut(rangePart, "-")
		var err error
		if lo, err = atoiBounded(from, b); err != nil {
			return 0, err
		}
		if hi, err = atoiBounded(to, b); err != nil {
			return 0, err
		}
		if lo > hi {
			return 0, fmt.Errorf("range %d-%d is inverted", lo, hi)
		}
	default:
		v, err := atoiBounded(rangePart, b)
		if err != nil {
			return 0, err
		}
		lo = v
		// "n/s" runs from n to the field max; a bare "n" is a single value.
		if step == 1 {
			hi = v
		}
	}

	var mask uint64
	for v := lo; v <= hi; v += step {
		mask |= 1 << uint(v)
	}
	return mask, nil
}

func atoiBounded(s string, b bounds) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	if v < b.min || v > b.max {
		return 0, fmt.Errorf("value %d out of range %d-%d", v, b.min, b.max)
	}
	return v, nil
}

func has(mask uint64, v int) bool {
	return mask&(1<<uint(v)) != 0
}

func (e *Expression) dayMatches(t time.Time) bool {
	domOK := has(e.dom, t.Day())
	dowOK := has(e.dow, int(t.Weekday()))
	switch {
	case e.domStar && e.dowStar:
		return true
	case e.domStar:
		return dowOK
	case e.dowStar:
		return domOK
	default:
		return domOK || dowOK
	}
}

// searchYears bounds Next for expressions that can never fire, such as "0 0 30 2 *".
const searchYears = 5

// Next returns the first fire time strictly after the given instant, evaluated
// in loc (UTC when nil). It returns the zero time if nothing fires within
// five years.
func (e *Expression) Next(after time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t := after.In(loc).Truncate(time.Minute).Add(time.Minute)
	limit := t.AddDate(searchYears, 0, 0)

	for t.Before(limit) {
		if !has(e.month, int(t.Month())) {
			t = time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, loc)
			continue
		}
		if !e.dayMatches(t) {
			t = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc)
			continue
		}
		if !has(e.hour, t.Hour()) {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, loc)
			continue
		}
		if !has(e.minute, t.Minute()) {
			t = t.Add(time.Minute)
			continue
		}
		return t
	}
	return time.Time{}
}

// Next parses expr and returns its next fire time after the given instant.
func Next(expr string, after time.Time, loc *time.Location) (time.Time, error) {
	e, err := Parse(expr)
	if err != nil {
		return time.Time{}, err
	}
	return e.Next(after, loc), nil
}
