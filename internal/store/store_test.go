// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/innledger/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	room := &models.Room{RoomNumber: 101, Type: "double", Rate: 1500}
	if err := s.Insert(ctx, room); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if room.ID == "" || room.CreatedAt.IsZero() {
		t.Fatalf("Insert() did not stamp id/created_at: %+v", room)
	}

	got, err := s.Get(ctx, models.CollectionRoom, room.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	r, ok := got.(*models.Room)
	if !ok || r.RoomNumber != 101 || r.Type != "double" {
		t.Errorf("Get() = %#v", got)
	}

	if _, err := s.Get(ctx, models.CollectionRoom, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestReadAllPreservesInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	names := []string{"Anil", "Bela", "Chitra", "Dev", "Esha"}
	for _, n := range names {
		if err := s.Insert(ctx, &models.RestStaff{Name: n}); err != nil {
			t.Fatalf("Insert(%s) error = %v", n, err)
		}
	}
	// A document in another collection must not leak into the result.
	if err := s.Insert(ctx, &models.OfficeCategory{Name: "Travel"}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	docs, err := s.ReadAll(ctx, models.CollectionRestStaff)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(docs) != len(names) {
		t.Fatalf("ReadAll() returned %d docs, want %d", len(docs), len(names))
	}
	for i, doc := range docs {
		var staff models.RestStaff
		if err := json.Unmarshal(doc, &staff); err != nil {
			t.Fatalf("decode doc %d: %v", i, err)
		}
		if staff.Name != names[i] {
			t.Errorf("doc %d name = %q, want %q", i, staff.Name, names[i])
		}
	}

	n, err := s.Count(ctx, models.CollectionRestStaff)
	if err != nil || n != len(names) {
		t.Errorf("Count() = %d, %v", n, err)
	}
}

func TestReadAllEmptyCollection(t *testing.T) {
	s := newTestStore(t)

	docs, err := s.ReadAll(context.Background(), models.CollectionRestPending)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Errorf("ReadAll(empty) = %v, want empty non-nil slice", docs)
	}
}

func TestReplaceKeepsCreatedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return created }
	cat := &models.OfficeCategory{Name: "Stationery"}
	if err := s.Insert(ctx, cat); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	s.now = func() time.Time { return created.Add(48 * time.Hour) }
	update := &models.OfficeCategory{Base: models.Base{ID: cat.ID}, Name: "Printing"}
	if err := s.Replace(ctx, update); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	got, err := s.Get(ctx, models.CollectionOfficeCategory, cat.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	oc := got.(*models.OfficeCategory)
	if oc.Name != "Printing" {
		t.Errorf("Name = %q, want Printing", oc.Name)
	}
	if !oc.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", oc.CreatedAt, created)
	}
	if !oc.UpdatedAt.Equal(created.Add(48 * time.Hour)) {
		t.Errorf("UpdatedAt = %v", oc.UpdatedAt)
	}

	missing := &models.OfficeCategory{Base: models.Base{ID: "nope"}, Name: "x"}
	if err := s.Replace(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("Replace(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	room := &models.Room{RoomNumber: 7, Type: "single"}
	if err := s.Insert(ctx, room); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := s.Delete(ctx, models.CollectionRoom, room.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, models.CollectionRoom, room.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestListDecodesTypes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	entry := &models.RestEntry{
		DateStamp: models.DateStamp{Date: "15-01-2024", DateNormalized: &day},
		Expenses:  []models.LineItem{{Category: "Gas", Amount: 900}},
	}
	if err := s.Insert(ctx, entry); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	recs, err := s.List(ctx, models.CollectionRestEntry)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("List() returned %d records", len(recs))
	}
	got := recs[0].(*models.RestEntry)
	if got.DateNormalized == nil || !got.DateNormalized.Equal(day) || len(got.Expenses) != 1 {
		t.Errorf("List()[0] = %+v", got)
	}
}

func TestCanceledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Insert(ctx, &models.Room{RoomNumber: 1, Type: "x"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Insert(canceled) error = %v", err)
	}
}

func TestPingAndGC(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if err := s.CollectGarbage(0.5); err != nil {
		t.Errorf("CollectGarbage(in-memory) error = %v", err)
	}
}

func TestNewIDIsTimeOrdered(t *testing.T) {
	a := NewID()
	time.Sleep(2 * time.Millisecond)
	b := NewID()
	if !(a < b) {
		t.Errorf("NewID() not ordered: %s >= %s", a, b)
	}
}
