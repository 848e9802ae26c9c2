// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

// Package records is the write path for collection documents. Every create
// and update is decoded into the collection's type, validated, has its day
// normalized in the reporting zone, and has passwords hashed before it
// reaches the store.
package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/innledger/internal/calendar"
	"github.com/tomtom215/innledger/internal/logging"
	"github.com/tomtom215/innledger/internal/models"
	"github.com/tomtom215/innledger/internal/validation"
)

// Store is the subset of the record store the service needs.
type Store interface {
	Insert(ctx context.Context, r models.Record) error
	Replace(ctx context.Context, r models.Record) error
	Get(ctx context.Context, c models.Collection, id string) (models.Record, error)
	Delete(ctx context.Context, c models.Collection, id string) error
	List(ctx context.Context, c models.Collection) ([]models.Record, error)
	Count(ctx context.Context, c models.Collection) (int, error)
}

// DecodeError wraps a malformed request body.
type DecodeError struct {
	Collection models.Collection
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Collection, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ErrPasswordRequired is returned when a login record is created without a password.
var ErrPasswordRequired = errors.New("password is required")

// Service validates and persists records.
type Service struct {
	store      Store
	loc        *time.Location
	bcryptCost int
}

// NewService creates a service normalizing days in loc.
func NewService(store Store, loc *time.Location) *Service {
	return &Service{store: store, loc: loc, bcryptCost: bcrypt.DefaultCost}
}

// Decode parses body into a new record of collection c.
func (s *Service) Decode(c models.Collection, body []byte) (models.Record, error) {
	rec, err := models.New(c)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, rec); err != nil {
		return nil, &DecodeError{Collection: c, Err: err}
	}
	return rec, nil
}

// prepare validates rec and derives its stored fields.
func (s *Service) prepare(rec models.Record, requirePassword bool) error {
	if verr := validation.ValidateStruct(rec); verr != nil {
		return verr
	}

	if d, ok := rec.(models.Dated); ok {
		d.SetNormalized(calendar.Normalize(d.Day(), s.loc))
		if d.Normalized() == nil {
			logging.Warn().
				Str("collection", string(rec.Collection())).
				Str("date", d.Day()).
				Msg("Record stored without normalized date; it will not appear in date-range reports")
		}
	}

	if cr, ok := rec.(models.Credentialed); ok {
		if pw := cr.PlainPassword(); pw != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(pw), s.bcryptCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			cr.SetPasswordHash(string(hash))
		} else if requirePassword && cr.PasswordHash() == "" {
			return ErrPasswordRequired
		}
	}
	return nil
}

// Create validates and inserts rec.
func (s *Service) Create(ctx context.Context, rec models.Record) error {
	if err := s.prepare(rec, true); err != nil {
		return err
	}
	return s.store.Insert(ctx, rec)
}

// Update replaces the record with id. A login record sent without a password
// keeps its stored hash.
func (s *Service) Update(ctx context.Context, id string, rec models.Record) error {
	rec.SetID(id)
	if cr, ok := rec.(models.Credentialed); ok && cr.PlainPassword() == "" {
		existing, err := s.store.Get(ctx, rec.Collection(), id)
		if err != nil {
			return err
		}
		if prev, ok := existing.(models.Credentialed); ok {
			cr.SetPasswordHash(prev.PasswordHash())
		}
	}
	if err := s.prepare(rec, false); err != nil {
		return err
	}
	return s.store.Replace(ctx, rec)
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, c models.Collection, id string) (models.Record, error) {
	return s.store.Get(ctx, c, id)
}

// List returns every record of c in insertion order.
func (s *Service) List(ctx context.Context, c models.Collection) ([]models.Record, error) {
	return s.store.List(ctx, c)
}

// Delete removes one record.
func (s *Service) Delete(ctx context.Context, c models.Collection, id string) error {
	return s.store.Delete(ctx, c, id)
}

// EnsureAdmin creates the bootstrap administrator when no admin exists yet.
// It returns true when an admin was created.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	n, err := s.store.Count(ctx, models.CollectionAdmin)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	admin := &models.Admin{Credentials: models.Credentials{Username: username, Password: password}}
	if err := s.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("create bootstrap admin: %w", err)
	}
	logging.Info().Str("username", username).Msg("Bootstrap admin created")
	return true, nil
}

// ErrInvalidCredentials is returned by Authenticate for any login failure.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Authenticate checks username and password against the Admin collection.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.Admin, error) {
	admins, err := s.store.List(ctx, models.CollectionAdmin)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	for _, rec := range admins {
		admin, ok := rec.(*models.Admin)
		if !ok || admin.Username != username {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(admin.Hash), []byte(password)) != nil {
			return nil, ErrInvalidCredentials
		}
		return admin, nil
	}
	return nil, ErrInvalidCredentials
}
