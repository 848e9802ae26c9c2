// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestNewCoversEveryCollection(t *testing.T) {
	for _, c := range All {
		r, err := New(c)
		if err != nil {
			t.Fatalf("New(%s) error = %v", c, err)
		}
		if r.Collection() != c {
			t.Errorf("New(%s).Collection() = %s", c, r.Collection())
		}
	}

	var unknown *UnknownCollectionError
	if _, err := New("Invoice"); !errors.As(err, &unknown) {
		t.Errorf("New(Invoice) error = %v, want UnknownCollectionError", err)
	}
}

func TestParseCollection(t *testing.T) {
	if c, err := ParseCollection("RestEntry"); err != nil || c != CollectionRestEntry {
		t.Errorf("ParseCollection(RestEntry) = %q, %v", c, err)
	}
	if _, err := ParseCollection("restentry"); err == nil {
		t.Error("ParseCollection should be case-sensitive")
	}
}

func TestIsDated(t *testing.T) {
	dated := map[Collection]bool{
		CollectionGuestEntry:  true,
		CollectionRestEntry:   true,
		CollectionRestPending: true,
		CollectionOfficeEntry: true,
		CollectionRoom:        false,
		CollectionRestStaff:   false,
		CollectionUser:        false,
	}
	for c, want := range dated {
		if got := IsDated(c); got != want {
			t.Errorf("IsDated(%s) = %v, want %v", c, got, want)
		}
	}
}

func TestTouch(t *testing.T) {
	r := &Room{}
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.Touch(first)
	r.Touch(first.Add(time.Hour))

	if !r.CreatedAt.Equal(first) {
		t.Errorf("CreatedAt = %v, want %v", r.CreatedAt, first)
	}
	if !r.UpdatedAt.Equal(first.Add(time.Hour)) {
		t.Errorf("UpdatedAt = %v", r.UpdatedAt)
	}
}

func TestRestEntryJSONShape(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	e := &RestEntry{
		Base:      Base{ID: "abc"},
		DateStamp: DateStamp{Date: "15-01-2024", DateNormalized: &day},
		CashSales: 1200,
		Expenses:  []LineItem{{Category: "Vegetables", Amount: 300, PaymentMethod: "cash"}},
	}

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s := string(data)
	for _, want := range []string{`"id":"abc"`, `"date":"15-01-2024"`, `"date_normalized":"2024-01-15T00:00:00Z"`, `"category":"Vegetables"`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON %s missing %s", s, want)
		}
	}

	items, ok := e.Items("expenses")
	if !ok || len(items) != 1 {
		t.Errorf("Items(expenses) = %v, %v", items, ok)
	}
	if _, ok := e.Items("sales"); ok {
		t.Error("Items(sales) should report unknown field")
	}
}

func TestCredentials(t *testing.T) {
	a := &Admin{Credentials: Credentials{Username: "owner", Password: "secret"}}
	var c Credentialed = a

	c.SetPasswordHash("$2a$hash")
	if a.Password != "" || a.Hash != "$2a$hash" {
		t.Errorf("SetPasswordHash left %+v", a.Credentials)
	}
	c.Sanitize()
	data, _ := json.Marshal(a)
	if strings.Contains(string(data), "password") {
		t.Errorf("sanitized admin still carries password fields: %s", data)
	}
}
