// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

/*
exporter.go - Collection Dump and Archive

One export is four steps, always in this order:

 1. Remove and recreate WorkDir
 2. Remove the archive at ArchivePath, if any
 3. For each collection, in the order given, write <Name>.json
 4. Zip every file in WorkDir into ArchivePath

Step 3 is partial-success: a read or write failure for one collection is
logged with the collection name and the loop moves on. A file that failed
halfway is removed so it never reaches the archive.

Step 4 writes <ArchivePath>.tmp and renames it into place, so a failed
compression leaves no archive at the canonical path.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"github.com/tomtom215/innledger/internal/logging"
	"github.com/tomtom215/innledger/internal/metrics"
	"github.com/tomtom215/innledger/internal/models"
)

// Failure stages reported in ExportResult and metrics.
const (
	StageRead    = "read"
	StageWrite   = "write"
	StageSkipped = "skipped"
)

// Collection describes one collection to export.
type Collection struct {
	// Name is the collection name and the file name inside the archive.
	Name string
	// Read returns every document of the collection as JSON.
	Read func(ctx context.Context) ([]json.RawMessage, error)
}

// Source reads whole collections. *store.Store implements it.
type Source interface {
	ReadAll(ctx context.Context, c models.Collection) ([]json.RawMessage, error)
}

// Descriptors returns one Collection per model collection, in the given order.
// Each document is decoded into its model type and re-encoded, so the
// exported files carry exactly the fields the models define.
func Descriptors(src Source, colls []models.Collection) []Collection {
	out := make([]Collection, 0, len(colls))
	for _, c := range colls {
		out = append(out, Collection{
			Name: string(c),
			Read: func(ctx context.Context) ([]json.RawMessage, error) {
				raw, err := src.ReadAll(ctx, c)
				if err != nil {
					return nil, err
				}
				return reencode(c, raw)
			},
		})
	}
	return out
}

func reencode(c models.Collection, raw []json.RawMessage) ([]json.RawMessage, error) {
	docs := make([]json.RawMessage, 0, len(raw))
	for i, doc := range raw {
		rec, err := models.New(c)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(doc, rec); err != nil {
			return nil, fmt.Errorf("decode %s document %d: %w", c, i, err)
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encode %s document %d: %w", c, i, err)
		}
		docs = append(docs, data)
	}
	return docs, nil
}

// CollectionFailure records a collection left out of the archive.
type CollectionFailure struct {
	Collection string `json:"collection"`
	Stage      string `json:"stage"`
	Error      string `json:"error"`
}

// ExportResult describes a finished export.
type ExportResult struct {
	ArchivePath  string              `json:"archive_path"`
	ArchiveBytes int64               `json:"archive_bytes"`
	Exported     []string            `json:"exported"`
	Failed       []CollectionFailure `json:"failed,omitempty"`
	Duration     time.Duration       `json:"duration"`
}

// Exporter owns a work directory and an archive path. Callers must not run
// two exports of the same Exporter at once; Pipeline enforces this.
type Exporter struct {
	WorkDir     string
	ArchivePath string
	// CompressionLevel is a flate level, -2 (Huffman only) through 9.
	CompressionLevel int
}

// ExportAll dumps colls into WorkDir and zips them to ArchivePath.
// The error is non-nil only for work directory or archive failures, always
// as an *ArchiveError, or when ctx ends.
func (e *Exporter) ExportAll(ctx context.Context, colls []Collection) (*ExportResult, error) {
	start := time.Now()
	if err := e.check(); err != nil {
		return nil, err
	}

	if err := os.RemoveAll(e.WorkDir); err != nil {
		return nil, &ArchiveError{Op: "clear work dir", Path: e.WorkDir, Err: err}
	}
	if err := os.MkdirAll(e.WorkDir, 0o750); err != nil {
		return nil, &ArchiveError{Op: "create work dir", Path: e.WorkDir, Err: err}
	}
	if err := os.Remove(e.ArchivePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, &ArchiveError{Op: "remove previous archive", Path: e.ArchivePath, Err: err}
	}

	result := &ExportResult{
		ArchivePath: e.ArchivePath,
		Exported:    make([]string, 0, len(colls)),
	}

	for i, c := range colls {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("export interrupted: %w", err)
		}

		if c.Name == "" || c.Read == nil {
			logging.Warn().Int("index", i).Str("collection", c.Name).
				Msg("Skipping backup collection without a name or reader")
			result.Failed = append(result.Failed, CollectionFailure{Collection: c.Name, Stage: StageSkipped, Error: "descriptor incomplete"})
			metrics.RecordCollectionFailure("unnamed", StageSkipped)
			continue
		}

		if err := e.writeCollection(ctx, c); err != nil {
			stage := StageWrite
			var rerr *CollectionReadError
			if errors.As(err, &rerr) {
				stage = StageRead
			}
			logging.Warn().Err(err).Str("collection", c.Name).Str("stage", stage).
				Msg("Collection left out of backup")
			result.Failed = append(result.Failed, CollectionFailure{Collection: c.Name, Stage: stage, Error: err.Error()})
			metrics.RecordCollectionFailure(c.Name, stage)
			continue
		}
		result.Exported = append(result.Exported, c.Name)
	}

	size, err := e.writeArchive()
	if err != nil {
		return nil, err
	}
	result.ArchiveBytes = size
	result.Duration = time.Since(start)

	logging.Info().
		Str("archive", e.ArchivePath).
		Int64("bytes", size).
		Int("exported", len(result.Exported)).
		Int("failed", len(result.Failed)).
		Dur("duration", result.Duration).
		Msg("Backup archive written")
	return result, nil
}

// check rejects layouts where clearing the work directory would also
// remove the archive.
func (e *Exporter) check() error {
	if e.WorkDir == "" || e.ArchivePath == "" {
		return &ArchiveError{Op: "configure", Path: e.WorkDir, Err: errors.New("work dir and archive path are required")}
	}
	rel, err := filepath.Rel(filepath.Clean(e.WorkDir), filepath.Clean(e.ArchivePath))
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return &ArchiveError{Op: "configure", Path: e.ArchivePath, Err: errors.New("archive path must be outside the work dir")}
	}
	return nil
}

// writeCollection writes one collection file. A partially written file is
// removed before returning an error.
func (e *Exporter) writeCollection(ctx context.Context, c Collection) error {
	docs, err := c.Read(ctx)
	if err != nil {
		return &CollectionReadError{Collection: c.Name, Err: err}
	}
	if docs == nil {
		docs = []json.RawMessage{}
	}

	path := filepath.Join(e.WorkDir, c.Name+".json")
	data, err := json.Marshal(docs)
	if err != nil {
		return &CollectionWriteError{Collection: c.Name, Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		os.Remove(path) //nolint:errcheck // best effort; the file may not exist
		return &CollectionWriteError{Collection: c.Name, Path: path, Err: err}
	}
	return nil
}

// writeArchive zips the work directory into ArchivePath and returns its size.
func (e *Exporter) writeArchive() (int64, error) {
	if err := os.MkdirAll(filepath.Dir(e.ArchivePath), 0o750); err != nil {
		return 0, &ArchiveError{Op: "create archive dir", Path: e.ArchivePath, Err: err}
	}

	tmp := e.ArchivePath + ".tmp"
	if err := e.zipWorkDir(tmp); err != nil {
		os.Remove(tmp) //nolint:errcheck // best effort cleanup of the partial archive
		return 0, &ArchiveError{Op: "compress", Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, e.ArchivePath); err != nil {
		os.Remove(tmp) //nolint:errcheck // best effort cleanup of the partial archive
		return 0, &ArchiveError{Op: "rename", Path: e.ArchivePath, Err: err}
	}

	info, err := os.Stat(e.ArchivePath)
	if err != nil {
		return 0, &ArchiveError{Op: "stat", Path: e.ArchivePath, Err: err}
	}
	return info.Size(), nil
}

//nolint:gosec // G304: paths come from backup configuration
func (e *Exporter) zipWorkDir(dst string) (err error) {
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	level := e.CompressionLevel
	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, level)
	})

	entries, err := os.ReadDir(e.WorkDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if err := addFile(zw, filepath.Join(e.WorkDir, entry.Name())); err != nil {
			return err
		}
	}
	return zw.Close()
}

//nolint:gosec // G304: path is inside the work directory
func addFile(zw *zip.Writer, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.Base(path)
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("add %s: %w", header.Name, err)
	}
	return nil
}
