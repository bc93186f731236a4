// Copyright 2023 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package indexfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	// "CUTE" read as a little-endian uint32
	magicIndexHeader  = uint32('C') | uint32('U')<<8 | uint32('T')<<16 | uint32('E')<<24
	fileFormatVersion = 1

	HeaderSize = 4 + 4 + 4 + 4 + 4

	// DefaultEntries is the bucket count of a database created without an
	// explicit size.
	DefaultEntries = 1 << 20

	// MaxEntries is the largest bucket count that still leaves room for a
	// record slot below the 4 GiB limit of a 32-bit offset.
	MaxEntries = (math.MaxUint32 - HeaderSize - RecordSize) / 4

	headerListOff = 12
)

var (
	ErrBadHeader = errors.New("bad index file header")
)

type Header struct {
	Magic   uint32
	Version uint32
	Entries uint32
	Head    uint32
	Tail    uint32
}

func NewHeader(entries uint32) *Header {
	return &Header{
		Magic:   magicIndexHeader,
		Version: fileFormatVersion,
		Entries: entries,
	}
}

func (h *Header) MarshalTo(buf []byte) error {
	if len(buf) < HeaderSize {
		return fmt.Errorf("buf too short: %d < %d", len(buf), HeaderSize)
	}
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.Entries)
	binary.LittleEndian.PutUint32(buf[12:16], h.Head)
	binary.LittleEndian.PutUint32(buf[16:20], h.Tail)
	return nil
}

func (h *Header) WriteTo(w io.Writer) (n int64, err error) {
	var headerBuf [HeaderSize]byte
	if err = h.MarshalTo(headerBuf[:]); err != nil {
		return 0, err
	}

	written, err := w.Write(headerBuf[:])
	if err != nil {
		return int64(written), fmt.Errorf("write: %w", err)
	} else if written != HeaderSize {
		return int64(written), fmt.Errorf("short write of %d (wanted %d)", written, HeaderSize)
	}
	return int64(HeaderSize), nil
}

// UpdateList records a new global list head and tail, rewriting only those
// two words of the on-disk header.
func (h *Header) UpdateList(head, tail uint32, w io.WriterAt) error {
	var listBuf [8]byte
	binary.LittleEndian.PutUint32(listBuf[0:4], head)
	binary.LittleEndian.PutUint32(listBuf[4:8], tail)
	if n, err := w.WriteAt(listBuf[:], headerListOff); err != nil {
		return fmt.Errorf("f.WriteAt: %w", err)
	} else if n != len(listBuf) {
		return fmt.Errorf("f.WriteAt: short write of %d (wanted %d)", n, len(listBuf))
	}

	h.Head = head
	h.Tail = tail
	return nil
}

func (h *Header) UnmarshalBytes(headerBytes []byte) error {
	if len(headerBytes) < HeaderSize {
		return fmt.Errorf("%w: headerBytes too short: %d < %d", ErrBadHeader, len(headerBytes), HeaderSize)
	}

	headerBytes = headerBytes[:HeaderSize]

	h.Magic = binary.LittleEndian.Uint32(headerBytes[0:4])
	if h.Magic != magicIndexHeader {
		return fmt.Errorf("%w: bad magic number (%x) -- not a cute index file or corrupted", ErrBadHeader, h.Magic)
	}

	h.Version = binary.LittleEndian.Uint32(headerBytes[4:8])
	h.Entries = binary.LittleEndian.Uint32(headerBytes[8:12])
	h.Head = binary.LittleEndian.Uint32(headerBytes[12:16])
	h.Tail = binary.LittleEndian.Uint32(headerBytes[16:20])

	return nil
}

// Validate checks that the header describes a file this library can open
// with the given bucket count.
func (h *Header) Validate(entries uint32) error {
	if h.Magic != magicIndexHeader {
		return fmt.Errorf("%w: bad magic number (%x)", ErrBadHeader, h.Magic)
	}
	if h.Version != fileFormatVersion {
		return fmt.Errorf("%w: this version of the cute library can only read v%d index files; found v%d", ErrBadHeader, fileFormatVersion, h.Version)
	}
	if h.Entries != entries {
		return fmt.Errorf("%w: index file has %d buckets, expected %d", ErrBadHeader, h.Entries, entries)
	}
	// both ends of the list are set, or neither is
	if (h.Head == 0) != (h.Tail == 0) {
		return fmt.Errorf("%w: inconsistent list head (%d) and tail (%d)", ErrBadHeader, h.Head, h.Tail)
	}
	return nil
}

// RecordsStart returns the file offset of the first key record slot in an
// index file with the given bucket count.
func RecordsStart(entries uint32) int64 {
	return HeaderSize + 4*int64(entries)
}
