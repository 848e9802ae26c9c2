// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

// Package models defines the document shape of every collection.
//
// The set of collections is closed: each Collection constant has exactly one
// Go type, obtained from New. Records are stored and exported as the JSON
// encoding of these types.
package models

import (
	"fmt"
	"time"
)

// Collection names a set of documents of one kind. The name is also the
// backup file name.
type Collection string

// Collections in backup export order.
const (
	CollectionUser           Collection = "User"
	CollectionAdmin          Collection = "Admin"
	CollectionRoom           Collection = "Room"
	CollectionGuestEntry     Collection = "GuestEntry"
	CollectionRestEntry      Collection = "RestEntry"
	CollectionRestStaff      Collection = "RestStaff"
	CollectionRestPending    Collection = "RestPending"
	CollectionOfficeEntry    Collection = "OfficeEntry"
	CollectionOfficeCategory Collection = "OfficeCategory"
)

// All lists every collection in export order.
var All = []Collection{
	CollectionUser,
	CollectionAdmin,
	CollectionRoom,
	CollectionGuestEntry,
	CollectionRestEntry,
	CollectionRestStaff,
	CollectionRestPending,
	CollectionOfficeEntry,
	CollectionOfficeCategory,
}

// UnknownCollectionError is returned for names outside the closed set.
type UnknownCollectionError struct {
	Name string
}

func (e *UnknownCollectionError) Error() string {
	return fmt.Sprintf("unknown collection %q", e.Name)
}

// ParseCollection resolves a collection name, case-sensitively.
func ParseCollection(name string) (Collection, error) {
	for _, c := range All {
		if string(c) == name {
			return c, nil
		}
	}
	return "", &UnknownCollectionError{Name: name}
}

// New returns an empty record of the collection's type.
func New(c Collection) (Record, error) {
	switch c {
	case CollectionUser:
		return &User{}, nil
	case CollectionAdmin:
		return &Admin{}, nil
	case CollectionRoom:
		return &Room{}, nil
	case CollectionGuestEntry:
		return &GuestEntry{}, nil
	case CollectionRestEntry:
		return &RestEntry{}, nil
	case CollectionRestStaff:
		return &RestStaff{}, nil
	case CollectionRestPending:
		return &RestPending{}, nil
	case CollectionOfficeEntry:
		return &OfficeEntry{}, nil
	case CollectionOfficeCategory:
		return &OfficeCategory{}, nil
	}
	return nil, &UnknownCollectionError{Name: string(c)}
}

// IsDated reports whether records of c carry a day and normalized timestamp.
func IsDated(c Collection) bool {
	r, err := New(c)
	if err != nil {
		return false
	}
	_, ok := r.(Dated)
	return ok
}

// Record is implemented by every collection type.
type Record interface {
	Collection() Collection
	GetID() string
	SetID(id string)
	// Touch stamps UpdatedAt, and CreatedAt when it is still zero.
	Touch(now time.Time)
	SetCreatedAt(t time.Time)
}

// Dated is a record with a human-entered day and its normalized instant.
type Dated interface {
	Record
	Day() string
	Normalized() *time.Time
	SetNormalized(t *time.Time)
}

// Itemized is a record holding nested line-item arrays.
type Itemized interface {
	Record
	// Items returns the named sub-array. ok is false for unknown fields.
	Items(field string) (items []LineItem, ok bool)
}

// Credentialed is a record that can log in.
type Credentialed interface {
	Record
	Login() string
	PlainPassword() string
	PasswordHash() string
	SetPasswordHash(hash string)
	// Sanitize removes password material before a record leaves the server.
	Sanitize()
}

// Base holds the fields every record has.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID returns the record ID.
func (b *Base) GetID() string { return b.ID }

// SetID sets the record ID.
func (b *Base) SetID(id string) { b.ID = id }

// SetCreatedAt overwrites the creation time.
func (b *Base) SetCreatedAt(t time.Time) { b.CreatedAt = t }

// Touch stamps the record timestamps.
func (b *Base) Touch(now time.Time) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// DateStamp is embedded by dated records.
type DateStamp struct {
	Date           string     `json:"date" validate:"required"`
	DateNormalized *time.Time `json:"date_normalized"`
}

// Day returns the DD-MM-YYYY string as entered.
func (d *DateStamp) Day() string { return d.Date }

// Normalized returns the start-of-day instant, or nil if Date did not parse.
func (d *DateStamp) Normalized() *time.Time { return d.DateNormalized }

// SetNormalized stores the derived instant.
func (d *DateStamp) SetNormalized(t *time.Time) { d.DateNormalized = t }

// LineItem is one expense line inside a restaurant or office entry.
type LineItem struct {
	Category      string  `json:"category" validate:"required"`
	Description   string  `json:"description,omitempty"`
	Amount        float64 `json:"amount" validate:"gte=0"`
	PaymentMethod string  `json:"payment_method,omitempty" validate:"omitempty,oneof=cash upi card bank other"`
}
