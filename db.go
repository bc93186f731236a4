// Copyright 2021 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package cute

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/bpowers/cute/internal/datafile"
	"github.com/bpowers/cute/internal/indexfile"
	"github.com/bpowers/cute/internal/lock"
	"github.com/bpowers/cute/internal/metrics"
	"github.com/bpowers/cute/internal/ondisk"
)

// IndexPath returns the path of the index file for the database name.
func IndexPath(name string) string {
	return name + ".idx"
}

// DataPath returns the path of the data file for the database name.
func DataPath(name string) string {
	return name + ".dat"
}

// DB is a handle on an open database.  The zero value is not usable; create
// one with New or Open.
type DB struct {
	opts    options
	logger  *slog.Logger
	metrics *metrics.Metrics

	name    string
	idxFile *os.File
	datFile *os.File

	header  indexfile.Header
	buckets *ondisk.U32Slice
	records *indexfile.Store
	values  *datafile.Store

	// cursor is the offset of the record the next call to Next or Prev
	// will consider; 0 is past either end.
	cursor uint32
}

// New returns a closed DB configured with opts.  Call Open to use it.
func New(opts ...Option) *DB {
	o := buildOptions(opts)
	return &DB{
		opts:    o,
		logger:  o.logger,
		metrics: metrics.New(o.registerer),
	}
}

// Open opens the database name, creating it if its index file doesn't exist.
func Open(name string, opts ...Option) (*DB, error) {
	db := New(opts...)
	if err := db.Open(name); err != nil {
		return nil, err
	}
	return db, nil
}

// Open opens the database name on db, first closing whatever db currently
// has open.  If the index file doesn't exist both files are created (an
// existing data file is truncated); otherwise the index header must match
// this library's magic number, format version and configured bucket count.
// On any failure db is left closed.
func (db *DB) Open(name string) error {
	if db.isOpen() {
		if err := db.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", db.name, err)
		}
	}

	if db.opts.entries > MaxEntries {
		return fmt.Errorf("%w: %d buckets (max %d)", ErrInvalidEntries, db.opts.entries, MaxEntries)
	}

	idxPath, datPath := IndexPath(name), DataPath(name)

	create := false
	if _, err := os.Stat(idxPath); errors.Is(err, fs.ErrNotExist) {
		create = true
	} else if err != nil {
		return fmt.Errorf("os.Stat(%s): %w", idxPath, err)
	}

	flag := os.O_RDWR
	if create {
		flag |= os.O_CREATE | os.O_TRUNC
	}

	idx, err := os.OpenFile(idxPath, flag, 0644)
	if err != nil {
		return fmt.Errorf("os.OpenFile(%s): %w", idxPath, err)
	}
	dat, err := os.OpenFile(datPath, flag, 0644)
	if err != nil {
		_ = idx.Close()
		if create {
			_ = os.Remove(idxPath)
		}
		return fmt.Errorf("os.OpenFile(%s): %w", datPath, err)
	}

	if err := db.load(idx, dat, create); err != nil {
		_ = idx.Close()
		_ = dat.Close()
		if create && !errors.Is(err, ErrLocked) {
			// don't leave a half-written index behind for the next Open to
			// accept: its header would validate but its directory is short
			_ = os.Remove(idxPath)
			_ = os.Remove(datPath)
		}
		db.logger.Warn("open failed", "name", name, "err", err)
		return err
	}

	db.name = name
	db.idxFile = idx
	db.datFile = dat
	db.cursor = db.header.Head
	db.updateSizes()

	db.logger.Debug("opened database",
		"name", name,
		"created", create,
		"entries", db.header.Entries,
		"records", db.records.Count(),
		"dataBytes", db.values.Len())

	return nil
}

// load locks idx and then either initializes or validates the two files,
// setting up the header and stores on success.
func (db *DB) load(idx, dat *os.File, create bool) error {
	if !db.opts.noLock {
		if err := lock.Lock(idx); err != nil {
			return err
		}
	}

	var header indexfile.Header
	if create {
		if err := initIndex(idx, db.opts.entries); err != nil {
			return fmt.Errorf("initializing %s: %w", idx.Name(), err)
		}
		header = *indexfile.NewHeader(db.opts.entries)
	} else {
		h, err := readHeader(idx, db.opts.entries)
		if err != nil {
			return err
		}
		header = *h
	}

	idxInfo, err := idx.Stat()
	if err != nil {
		return fmt.Errorf("f.Stat(%s): %w", idx.Name(), err)
	}
	datInfo, err := dat.Stat()
	if err != nil {
		return fmt.Errorf("f.Stat(%s): %w", dat.Name(), err)
	}

	records, err := indexfile.NewStore(idx, header.Entries, idxInfo.Size())
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBadFormat, idx.Name(), err)
	}
	if n := records.Trailing(); n > 0 {
		db.logger.Warn("ignoring partial record at end of index file", "path", idx.Name(), "bytes", n)
	}
	for _, off := range []uint32{header.Head, header.Tail} {
		if off == 0 {
			continue
		}
		if _, err := records.Slot(off); err != nil {
			return fmt.Errorf("%w: %s: list end: %w", ErrBadFormat, idx.Name(), err)
		}
	}

	db.header = header
	db.records = records
	db.values = datafile.NewStore(dat, datInfo.Size())
	db.buckets = ondisk.NewU32Slice(idx, int(header.Entries), indexfile.HeaderSize)

	return nil
}

// initIndex writes a fresh header followed by a zeroed bucket directory.
func initIndex(idx *os.File, entries uint32) error {
	if _, err := indexfile.NewHeader(entries).WriteTo(idx); err != nil {
		return fmt.Errorf("header.WriteTo: %w", err)
	}
	if err := ondisk.ZeroFill(idx, indexfile.HeaderSize, 4*int64(entries)); err != nil {
		return fmt.Errorf("zeroing bucket directory: %w", err)
	}
	return nil
}

func readHeader(idx *os.File, entries uint32) (*indexfile.Header, error) {
	var buf [indexfile.HeaderSize]byte
	if n, err := idx.ReadAt(buf[:], 0); n != len(buf) {
		return nil, fmt.Errorf("%w: %s: short header of %d bytes: %v", ErrBadFormat, idx.Name(), n, err)
	}
	var h indexfile.Header
	if err := h.UnmarshalBytes(buf[:]); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBadFormat, idx.Name(), err)
	}
	if err := h.Validate(entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBadFormat, idx.Name(), err)
	}
	return &h, nil
}

func (db *DB) isOpen() bool {
	return db.idxFile != nil
}

func (db *DB) checkOpen() error {
	if !db.isOpen() {
		return ErrClosed
	}
	return nil
}

// Name returns the name the database was opened with.
func (db *DB) Name() string {
	return db.name
}

// Flush forces buffered writes of both files to stable storage.
func (db *DB) Flush() (err error) {
	defer func(start time.Time) { db.observe("flush", start, err) }(time.Now())

	if err := db.checkOpen(); err != nil {
		return err
	}
	if err := db.idxFile.Sync(); err != nil {
		return fmt.Errorf("f.Sync(%s): %w", db.idxFile.Name(), err)
	}
	if err := db.datFile.Sync(); err != nil {
		return fmt.Errorf("f.Sync(%s): %w", db.datFile.Name(), err)
	}
	return nil
}

// Close releases both files.  It does not flush.  Closing a closed DB is a
// no-op.
func (db *DB) Close() error {
	if !db.isOpen() {
		return nil
	}

	var errs []error
	if !db.opts.noLock {
		errs = append(errs, lock.Unlock(db.idxFile))
	}
	errs = append(errs, db.idxFile.Close(), db.datFile.Close())

	db.logger.Debug("closed database", "name", db.name)

	db.idxFile = nil
	db.datFile = nil
	db.buckets = nil
	db.records = nil
	db.values = nil
	db.header = indexfile.Header{}
	db.cursor = 0

	return errors.Join(errs...)
}

func checkKey(key []byte) error {
	if len(key) > MaxKeyLen {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrKeyTooLarge, len(key), MaxKeyLen)
	}
	return nil
}

func checkValue(value []byte) error {
	if uint64(len(value)) > math.MaxUint32 {
		return fmt.Errorf("%w: value of %d bytes", ErrFull, len(value))
	}
	return nil
}

// location is the result of walking a key's bucket chain.
type location struct {
	bucket int
	head   uint32 // first record in the bucket's chain
	off    uint32 // offset of the matching record, if found
	rec    indexfile.Record
	found  bool
}

func (db *DB) find(key []byte) (location, error) {
	loc := location{
		bucket: int(indexfile.Bucket(key, db.header.Entries)),
	}
	head, err := db.buckets.Get(loc.bucket)
	if err != nil {
		return loc, fmt.Errorf("reading bucket %d: %w", loc.bucket, err)
	}
	loc.head = head
	off, rec, found, err := db.records.Find(head, key)
	if err != nil {
		return loc, classify(err)
	}
	loc.off, loc.rec, loc.found = off, rec, found
	return loc, nil
}

// Set stores value under key.  It fails with ErrConflict if key is already
// present, including when it has been deleted; use Replace to overwrite.
func (db *DB) Set(key, value []byte) error {
	return db.Put(key, value, false)
}

// Replace stores value under key, overwriting any existing value and reviving
// a deleted key in its original iteration position.
func (db *DB) Replace(key, value []byte) error {
	return db.Put(key, value, true)
}

// Put stores value under key.  When key already has a record, Put fails with
// ErrConflict unless replace is set, in which case the record is rewritten in
// place: its chain and list links are preserved, its tombstone is cleared
// and the value reuses the old allocation if it fits.
func (db *DB) Put(key, value []byte, replace bool) (err error) {
	defer func(start time.Time) { db.observe("set", start, err) }(time.Now())

	if err := db.checkOpen(); err != nil {
		return err
	}
	if err := checkKey(key); err != nil {
		return err
	}
	if err := checkValue(value); err != nil {
		return err
	}

	loc, err := db.find(key)
	if err != nil {
		return err
	}
	if loc.found {
		if !replace {
			return fmt.Errorf("%w: %q", ErrConflict, key)
		}
		return classify(db.update(loc, value))
	}
	return classify(db.insert(loc, key, value))
}

func (db *DB) update(loc location, value []byte) error {
	valueOff, err := db.values.Put(loc.rec.ValueOff, loc.rec.ValueLen, value)
	if err != nil {
		return fmt.Errorf("writing value: %w", err)
	}
	loc.rec.ValueOff = valueOff
	loc.rec.ValueLen = uint32(len(value))
	loc.rec.Deleted = false
	if err := db.records.Write(loc.off, &loc.rec); err != nil {
		return fmt.Errorf("rewriting record %d: %w", loc.off, err)
	}
	return nil
}

// insert appends a record for a new key, pushes it on the front of its
// bucket's chain and on the tail of the global list.
func (db *DB) insert(loc location, key, value []byte) error {
	valueOff, err := db.values.Append(value)
	if err != nil {
		return fmt.Errorf("appending value: %w", err)
	}

	rec := indexfile.Record{
		ChainNext: loc.head,
		Prev:      db.header.Tail,
		ValueOff:  valueOff,
		ValueLen:  uint32(len(value)),
		Key:       key,
	}
	off, err := db.records.Append(&rec)
	if err != nil {
		return fmt.Errorf("appending record: %w", err)
	}

	if err := db.buckets.Set(loc.bucket, off); err != nil {
		return fmt.Errorf("updating bucket %d: %w", loc.bucket, err)
	}

	if tail := db.header.Tail; tail != 0 {
		prev, err := db.records.Read(tail)
		if err != nil {
			return fmt.Errorf("reading list tail %d: %w", tail, err)
		}
		prev.Next = off
		if err := db.records.Write(tail, &prev); err != nil {
			return fmt.Errorf("linking list tail %d: %w", tail, err)
		}
	}

	head := db.header.Head
	if head == 0 {
		head = off
	}
	if err := db.header.UpdateList(head, off, db.idxFile); err != nil {
		return fmt.Errorf("updating header: %w", err)
	}
	return nil
}

// Get returns the value stored under key, or ErrNotFound if key is absent or
// deleted.
func (db *DB) Get(key []byte) (value []byte, err error) {
	defer func(start time.Time) { db.observe("get", start, err) }(time.Now())

	if err := db.checkOpen(); err != nil {
		return nil, err
	}
	loc, err := db.find(key)
	if err != nil {
		return nil, err
	}
	if !loc.found || loc.rec.Deleted {
		return nil, ErrNotFound
	}
	value, err = db.values.Read(loc.rec.ValueOff, loc.rec.ValueLen)
	if err != nil {
		return nil, fmt.Errorf("reading value for %q: %w", key, err)
	}
	return value, nil
}

// Has reports whether key is present and not deleted.
func (db *DB) Has(key []byte) (bool, error) {
	if err := db.checkOpen(); err != nil {
		return false, err
	}
	loc, err := db.find(key)
	if err != nil {
		return false, err
	}
	return loc.found && !loc.rec.Deleted, nil
}

// Delete marks key as deleted.  The record stays in its chain and in the
// iteration order, and its value space is not reclaimed.  Deleting an absent
// or already deleted key returns ErrNotFound.
func (db *DB) Delete(key []byte) (err error) {
	defer func(start time.Time) { db.observe("delete", start, err) }(time.Now())

	if err := db.checkOpen(); err != nil {
		return err
	}
	loc, err := db.find(key)
	if err != nil {
		return err
	}
	if !loc.found || loc.rec.Deleted {
		return ErrNotFound
	}
	loc.rec.Deleted = true
	if err := db.records.Write(loc.off, &loc.rec); err != nil {
		return classify(fmt.Errorf("rewriting record %d: %w", loc.off, err))
	}
	return nil
}

func (db *DB) observe(op string, start time.Time, err error) {
	if db.metrics == nil {
		return
	}
	status := metrics.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		status = metrics.StatusNotFound
	case errors.Is(err, ErrConflict):
		status = metrics.StatusConflict
	default:
		status = metrics.StatusError
	}
	db.metrics.Observe(op, status, time.Since(start))
	db.updateSizes()
}

func (db *DB) updateSizes() {
	if db.metrics == nil || !db.isOpen() {
		return
	}
	db.metrics.SetSizes(db.records.Count(), db.records.Len(), db.values.Len())
}
