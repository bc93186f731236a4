// Copyright 2023 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package indexfile

import (
	"errors"
	"fmt"
	"io"
	"math"
)

var (
	// ErrInvalidOffset is returned when a link points outside the record
	// region of the index file or not at the start of a slot.
	ErrInvalidOffset = errors.New("invalid record offset")
	// ErrCycle is returned when a chain walk visits more records than exist.
	ErrCycle = errors.New("record chain contains a cycle")
	// ErrIndexFull is returned when appending a record would place it beyond
	// the reach of a 32-bit offset.
	ErrIndexFull = errors.New("index file has grown too large (>4 GiB)")
)

// File is usually an *os.File, but specified as an interface for easier testing.
type File interface {
	io.ReaderAt
	io.WriterAt
}

// Store is the arena of key records following the bucket directory.  Records
// are addressed by their absolute offset in the index file.
type Store struct {
	f     File
	start int64 // offset of the first slot
	end   int64 // offset one past the last complete slot
	tail  int64 // bytes past end that don't form a whole slot
	buf   [RecordSize]byte
}

// NewStore returns a Store over an index file of size bytes with the given
// bucket count.  Trailing bytes that don't make up a whole slot (left behind
// by an interrupted append) are ignored and will be overwritten by the next
// append; Trailing reports how many there were.
func NewStore(f File, entries uint32, size int64) (*Store, error) {
	start := RecordsStart(entries)
	if size < start {
		return nil, fmt.Errorf("index file too short: %d < %d", size, start)
	}
	count := (size - start) / RecordSize
	return &Store{
		f:     f,
		start: start,
		end:   start + count*RecordSize,
		tail:  (size - start) % RecordSize,
	}, nil
}

// Trailing returns the number of bytes found past the last whole slot when
// the Store was created.
func (s *Store) Trailing() int64 {
	return s.tail
}

// Len returns the logical size of the index file in bytes.
func (s *Store) Len() int64 {
	return s.end
}

// Count returns the number of record slots in the file.
func (s *Store) Count() int64 {
	return (s.end - s.start) / RecordSize
}

// Slot returns the zero-based slot number of the record at off.
func (s *Store) Slot(off uint32) (int64, error) {
	if err := s.checkOffset(off); err != nil {
		return 0, err
	}
	return (int64(off) - s.start) / RecordSize, nil
}

func (s *Store) checkOffset(off uint32) error {
	o := int64(off)
	if o < s.start || o+RecordSize > s.end || (o-s.start)%RecordSize != 0 {
		return fmt.Errorf("%w: %d (records span [%d, %d))", ErrInvalidOffset, off, s.start, s.end)
	}
	return nil
}

func (s *Store) readSlot(off uint32) ([]byte, error) {
	if err := s.checkOffset(off); err != nil {
		return nil, err
	}
	n, err := s.f.ReadAt(s.buf[:], int64(off))
	if n != RecordSize {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("f.ReadAt(%d): short read of %d: %w", off, n, err)
	}
	return s.buf[:], nil
}

// Read decodes the record at off.
func (s *Store) Read(off uint32) (Record, error) {
	var r Record
	slot, err := s.readSlot(off)
	if err != nil {
		return r, err
	}
	if err := r.UnmarshalBytes(slot); err != nil {
		return r, fmt.Errorf("record at %d: %w", off, err)
	}
	return r, nil
}

// Write rewrites the existing slot at off in place.
func (s *Store) Write(off uint32, r *Record) error {
	if err := s.checkOffset(off); err != nil {
		return err
	}
	return s.writeSlot(int64(off), r)
}

func (s *Store) writeSlot(off int64, r *Record) error {
	if err := r.MarshalTo(s.buf[:]); err != nil {
		return err
	}
	if n, err := s.f.WriteAt(s.buf[:], off); err != nil {
		return fmt.Errorf("f.WriteAt(%d): %w", off, err)
	} else if n != RecordSize {
		return fmt.Errorf("f.WriteAt(%d): short write of %d (wanted %d)", off, n, RecordSize)
	}
	return nil
}

// Append writes r into a new slot at the end of the file and returns its
// offset.
func (s *Store) Append(r *Record) (uint32, error) {
	off := s.end
	if off+RecordSize > math.MaxUint32 {
		return 0, ErrIndexFull
	}
	if err := s.writeSlot(off, r); err != nil {
		return 0, err
	}
	s.end += RecordSize
	return uint32(off), nil
}

// Find walks the collision chain starting at head until it reaches a record
// whose key is byte-equal to key, or the end of the chain.
func (s *Store) Find(head uint32, key []byte) (off uint32, r Record, found bool, err error) {
	limit := s.Count()
	for off = head; off != 0; {
		if limit--; limit < 0 {
			return 0, Record{}, false, fmt.Errorf("%w: chain from %d", ErrCycle, head)
		}
		slot, err := s.readSlot(off)
		if err != nil {
			return 0, Record{}, false, err
		}
		if keyEquals(slot, key) {
			if err := r.UnmarshalBytes(slot); err != nil {
				return 0, Record{}, false, fmt.Errorf("record at %d: %w", off, err)
			}
			return off, r, true, nil
		}
		off = chainNext(slot)
	}
	return 0, Record{}, false, nil
}
