// Copyright 2021 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package cute

import (
	"errors"

	"github.com/bpowers/cute/internal/datafile"
	"github.com/bpowers/cute/internal/indexfile"
	"github.com/bpowers/cute/internal/lock"
)

var (
	// ErrNotFound is returned by Get and Delete for keys that don't exist or
	// have been deleted.
	ErrNotFound = errors.New("key not found")
	// ErrConflict is returned by Set when the key is already present.
	ErrConflict = errors.New("key already exists")
	// ErrKeyTooLarge is returned for keys longer than MaxKeyLen.
	ErrKeyTooLarge = errors.New("key too large")
	// ErrBadFormat is returned by Open when the index file header doesn't
	// match this library's format, version or bucket count.
	ErrBadFormat = errors.New("not a compatible cute database")
	// ErrClosed is returned by operations on a DB that isn't open.
	ErrClosed = errors.New("database is closed")
	// ErrLocked is returned by Open when another instance holds the database.
	ErrLocked = lock.ErrLocked
	// ErrCorrupt is returned when a link in the index file points somewhere a
	// record can't be.
	ErrCorrupt = errors.New("index file corrupted")
	// ErrInvalidEntries is returned by Open when the configured bucket count
	// is larger than MaxEntries.
	ErrInvalidEntries = errors.New("invalid bucket count")
	// ErrFull is returned when a write would grow the index or data file past
	// the reach of a 32-bit offset.
	ErrFull = errors.New("database file size limit reached")
)

// MaxKeyLen is the longest key that can be stored.
const MaxKeyLen = indexfile.MaxKeyLen

// MaxEntries is the largest bucket count WithEntries accepts.
const MaxEntries = indexfile.MaxEntries

// classify tags errors from the internal stores with the matching exported
// sentinel so callers can use errors.Is.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, indexfile.ErrInvalidOffset), errors.Is(err, indexfile.ErrCycle):
		return errors.Join(ErrCorrupt, err)
	case errors.Is(err, indexfile.ErrIndexFull), errors.Is(err, datafile.ErrTooLarge):
		return errors.Join(ErrFull, err)
	}
	return err
}
