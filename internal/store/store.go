// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

// Package store is the embedded document database holding every collection.
//
// Documents are JSON values in BadgerDB under "doc/<Collection>/<id>". IDs
// are UUIDv7, so iterating a collection's key prefix yields documents in
// insertion order.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/innledger/internal/logging"
	"github.com/tomtom215/innledger/internal/metrics"
	"github.com/tomtom215/innledger/internal/models"
)

const docKeyPrefix = "doc/"

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("record not found")

// ErrClosed is returned after Close.
var ErrClosed = errors.New("record store is closed")

// Config controls how the database is opened.
type Config struct {
	Path       string
	InMemory   bool
	SyncWrites bool
}

// Store is a BadgerDB-backed document store. It is safe for concurrent use.
type Store struct {
	db  *badger.DB
	now func() time.Time
}

// Open opens (or creates) the database.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("store path is required")
		}
		opts = badger.DefaultOptions(cfg.Path)
		opts.SyncWrites = cfg.SyncWrites
		// Documents are small, repetitive JSON.
		opts.Compression = options.Snappy
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("Record store opened")
	return &Store{db: db, now: time.Now}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is usable.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

func collectionPrefix(c models.Collection) []byte {
	return []byte(docKeyPrefix + string(c) + "/")
}

func docKey(c models.Collection, id string) []byte {
	return []byte(docKeyPrefix + string(c) + "/" + id)
}

// NewID returns a time-ordered record ID.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func observe(op string, c models.Collection, start time.Time, err error) {
	metrics.RecordStoreOperation(op, string(c), time.Since(start), err)
}

// Insert assigns a new ID, stamps timestamps and stores r.
func (s *Store) Insert(ctx context.Context, r models.Record) (err error) {
	start := time.Now()
	defer func() { observe("insert", r.Collection(), start, err) }()

	if err = ctx.Err(); err != nil {
		return err
	}
	r.SetID(NewID())
	r.Touch(s.now().UTC())

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", r.Collection(), err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(docKey(r.Collection(), r.GetID()), data)
	})
}

// Replace overwrites an existing document. The stored created_at is kept.
func (s *Store) Replace(ctx context.Context, r models.Record) (err error) {
	start := time.Now()
	defer func() { observe("replace", r.Collection(), start, err) }()

	if err = ctx.Err(); err != nil {
		return err
	}
	key := docKey(r.Collection(), r.GetID())

	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s/%s: %w", r.Collection(), r.GetID(), err)
		}

		var existing models.Base
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &existing)
		}); err != nil {
			return fmt.Errorf("decode %s/%s: %w", r.Collection(), r.GetID(), err)
		}
		r.SetCreatedAt(existing.CreatedAt)
		r.Touch(s.now().UTC())

		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", r.Collection(), err)
		}
		return txn.Set(key, data)
	})
}

// Get loads one document into its collection type.
func (s *Store) Get(ctx context.Context, c models.Collection, id string) (rec models.Record, err error) {
	start := time.Now()
	defer func() { observe("get", c, start, err) }()

	if err = ctx.Err(); err != nil {
		return nil, err
	}
	rec, err = models.New(c)
	if err != nil {
		return nil, err
	}

	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(docKey(c, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s/%s: %w", c, id, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes one document.
func (s *Store) Delete(ctx context.Context, c models.Collection, id string) (err error) {
	start := time.Now()
	defer func() { observe("delete", c, start, err) }()

	if err = ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		key := docKey(c, id)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		} else if err != nil {
			return fmt.Errorf("get %s/%s: %w", c, id, err)
		}
		return txn.Delete(key)
	})
}

// ReadAll returns every document of c as raw JSON, in insertion order.
// The returned slices are copies and stay valid after the transaction.
func (s *Store) ReadAll(ctx context.Context, c models.Collection) (docs []json.RawMessage, err error) {
	start := time.Now()
	defer func() { observe("read_all", c, start, err) }()

	docs = []json.RawMessage{}
	err = s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := collectionPrefix(c)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read %s: %w", it.Item().Key(), err)
			}
			docs = append(docs, val)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// List decodes every document of c, in insertion order.
func (s *Store) List(ctx context.Context, c models.Collection) ([]models.Record, error) {
	docs, err := s.ReadAll(ctx, c)
	if err != nil {
		return nil, err
	}
	out := make([]models.Record, 0, len(docs))
	for _, doc := range docs {
		rec, err := models.New(c)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(doc, rec); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", c, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Count returns the number of documents in c without reading values.
func (s *Store) Count(ctx context.Context, c models.Collection) (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := collectionPrefix(c)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}

// CollectGarbage rewrites value log files until badger reports nothing left
// to reclaim.
func (s *Store) CollectGarbage(ratio float64) error {
	for {
		err := s.db.RunValueLogGC(ratio)
		switch {
		case err == nil:
			continue
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrGCInMemoryMode):
			return nil
		default:
			return fmt.Errorf("value log GC: %w", err)
		}
	}
}
