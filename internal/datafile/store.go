// Copyright 2023 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package datafile stores raw value bytes.  A data file has no header or
// framing: values are addressed solely by the (offset, length) pairs kept in
// index file records.  Space is only ever appended; a value that outgrows
// its allocation moves to the end of the file and the old bytes are left
// orphaned.
package datafile

import (
	"errors"
	"fmt"
	"io"
	"math"
)

var (
	ErrTooLarge = errors.New("data file has grown too large (>4 GiB)")
)

// File is usually an *os.File, but specified as an interface for easier testing.
type File interface {
	io.ReaderAt
	io.WriterAt
}

type Store struct {
	f   File
	end int64
}

// NewStore returns a Store over a data file that is currently size bytes long.
func NewStore(f File, size int64) *Store {
	return &Store{
		f:   f,
		end: size,
	}
}

// Len returns the size of the data file in bytes.
func (s *Store) Len() int64 {
	return s.end
}

// Read returns a copy of the length bytes stored at off.
func (s *Store) Read(off, length uint32) ([]byte, error) {
	if int64(off)+int64(length) > s.end {
		return nil, fmt.Errorf("off %d + len %d beyond bounds (%d)", off, length, s.end)
	}
	value := make([]byte, length)
	if length == 0 {
		return value, nil
	}
	n, err := s.f.ReadAt(value, int64(off))
	if n != len(value) {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("f.ReadAt(%d, len: %d): short read of %d: %w", off, length, n, err)
	}
	return value, nil
}

// Append writes value at the end of the file and returns its offset.
func (s *Store) Append(value []byte) (uint32, error) {
	off := s.end
	if off+int64(len(value)) > math.MaxUint32 {
		return 0, ErrTooLarge
	}
	if err := s.writeAt(value, off); err != nil {
		return 0, err
	}
	s.end += int64(len(value))
	return uint32(off), nil
}

// Overwrite replaces bytes of an existing allocation starting at off.
func (s *Store) Overwrite(off uint32, value []byte) error {
	if int64(off)+int64(len(value)) > s.end {
		return fmt.Errorf("off %d + len %d beyond bounds (%d)", off, len(value), s.end)
	}
	return s.writeAt(value, int64(off))
}

// Put stores value in place of the allocation at (prevOff, prevLen) when it
// fits, and appends it otherwise.  It returns the offset value now lives at.
func (s *Store) Put(prevOff, prevLen uint32, value []byte) (uint32, error) {
	if uint64(len(value)) <= uint64(prevLen) {
		if err := s.Overwrite(prevOff, value); err != nil {
			return 0, err
		}
		return prevOff, nil
	}
	return s.Append(value)
}

func (s *Store) writeAt(value []byte, off int64) error {
	if len(value) == 0 {
		return nil
	}
	n, err := s.f.WriteAt(value, off)
	if err != nil {
		return fmt.Errorf("f.WriteAt(%d): %w", off, err)
	} else if n != len(value) {
		return fmt.Errorf("f.WriteAt(%d): short write of %d (wanted %d)", off, n, len(value))
	}
	return nil
}
