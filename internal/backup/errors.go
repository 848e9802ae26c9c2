// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package backup

import "fmt"

// CollectionReadError is a failure reading one collection from the store.
// The exporter logs it and continues with the next collection.
type CollectionReadError struct {
	Collection string
	Err        error
}

func (e *CollectionReadError) Error() string {
	return fmt.Sprintf("read collection %s: %v", e.Collection, e.Err)
}

func (e *CollectionReadError) Unwrap() error { return e.Err }

// CollectionWriteError is a failure writing one collection file.
type CollectionWriteError struct {
	Collection string
	Path       string
	Err        error
}

func (e *CollectionWriteError) Error() string {
	return fmt.Sprintf("write collection %s to %s: %v", e.Collection, e.Path, e.Err)
}

func (e *CollectionWriteError) Unwrap() error { return e.Err }

// ArchiveError is a failure preparing the work directory or building the
// archive. It ends the run.
type ArchiveError struct {
	Op   string
	Path string
	Err  error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }
