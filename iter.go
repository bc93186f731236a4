// Copyright 2021 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package cute

import (
	"fmt"
	"io"

	"github.com/bpowers/cute/internal/indexfile"
)

// MoveHead positions the cursor on the oldest record, so the next call to
// Next returns the first live key in insertion order.
func (db *DB) MoveHead() {
	db.cursor = db.header.Head
}

// MoveTail positions the cursor on the newest record, so the next call to
// Prev returns the last live key in insertion order.
func (db *DB) MoveTail() {
	db.cursor = db.header.Tail
}

// Next returns the live key and value at the cursor and advances the cursor
// towards the tail, skipping deleted records.  It returns io.EOF once the
// cursor has moved past the tail.  The DB has a single cursor; Set, Replace
// and Delete don't move it.
func (db *DB) Next() (key, value []byte, err error) {
	if err := db.checkOpen(); err != nil {
		return nil, nil, err
	}
	for steps := db.records.Count(); db.cursor != 0; steps-- {
		if steps < 0 {
			return nil, nil, classify(fmt.Errorf("list from %d: %w", db.cursor, indexfile.ErrCycle))
		}
		off := db.cursor
		rec, err := db.records.Read(off)
		if err != nil {
			return nil, nil, classify(err)
		}
		db.cursor = rec.Next
		if rec.Deleted {
			continue
		}
		return db.yield(off, rec)
	}
	return nil, nil, io.EOF
}

// Prev returns the live key and value at the cursor and moves the cursor
// towards the head, skipping deleted records.  It returns io.EOF once the
// cursor has moved past the head.
func (db *DB) Prev() (key, value []byte, err error) {
	if err := db.checkOpen(); err != nil {
		return nil, nil, err
	}
	for steps := db.records.Count(); db.cursor != 0; steps-- {
		if steps < 0 {
			return nil, nil, classify(fmt.Errorf("list from %d: %w", db.cursor, indexfile.ErrCycle))
		}
		off := db.cursor
		rec, err := db.records.Read(off)
		if err != nil {
			return nil, nil, classify(err)
		}
		db.cursor = rec.Prev
		if rec.Deleted {
			continue
		}
		return db.yield(off, rec)
	}
	return nil, nil, io.EOF
}

func (db *DB) yield(off uint32, rec indexfile.Record) (key, value []byte, err error) {
	value, err = db.values.Read(rec.ValueOff, rec.ValueLen)
	if err != nil {
		return nil, nil, fmt.Errorf("reading value of record %d: %w", off, err)
	}
	return rec.Key, value, nil
}
