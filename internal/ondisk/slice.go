// Copyright 2021 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package ondisk provides fixed-width arrays that live directly in a file,
// addressed by element index rather than loaded into memory.
package ondisk

import (
	"encoding/binary"
	"fmt"
	"io"
)

// fillChunkSize bounds the size of a single write when zero-filling and the
// size of a single read when scanning a slice.
const fillChunkSize = 64 * 1024

// File is usually an *os.File, but specified as an interface for easier testing.
type File interface {
	io.ReaderAt
	io.WriterAt
}

// U32Slice is a little-endian array of uint32 stored at a fixed offset in a file.
type U32Slice struct {
	f   File
	len int   // length in number of elements
	off int64 // offset in bytes of the start of this slice
}

func NewU32Slice(f File, len int, off int64) *U32Slice {
	return &U32Slice{
		f:   f,
		len: len,
		off: off,
	}
}

// Len returns the number of elements in the slice.
func (s *U32Slice) Len() int {
	return s.len
}

// ByteLen returns the number of bytes the slice occupies in the file.
func (s *U32Slice) ByteLen() int64 {
	return 4 * int64(s.len)
}

func (s *U32Slice) Set(i int, value uint32) error {
	if i < 0 || i >= s.len {
		return fmt.Errorf("offset (%d) out of range (len %d)", i, s.len)
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)
	n, err := s.f.WriteAt(buf[:], s.off+int64(4*i))
	if err != nil {
		return fmt.Errorf("f.WriteAt(%d): %w", s.off+int64(4*i), err)
	} else if n != len(buf) {
		return fmt.Errorf("short write of %d (wanted %d)", n, len(buf))
	}
	return nil
}

func (s *U32Slice) Get(i int) (uint32, error) {
	if i < 0 || i >= s.len {
		return 0, fmt.Errorf("offset (%d) out of range (len %d)", i, s.len)
	}
	var buf [4]byte
	n, err := s.f.ReadAt(buf[:], s.off+int64(4*i))
	if n != len(buf) {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return 0, fmt.Errorf("f.ReadAt(%d): short read of %d: %w", s.off+int64(4*i), n, err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// Range calls fn for every element in index order, reading the file in
// bounded chunks.  Iteration stops at the first error returned by fn.
func (s *U32Slice) Range(fn func(i int, value uint32) error) error {
	buf := make([]byte, fillChunkSize)
	for i := 0; i < s.len; {
		count := s.len - i
		if count > fillChunkSize/4 {
			count = fillChunkSize / 4
		}
		chunk := buf[:4*count]
		off := s.off + int64(4*i)
		n, err := s.f.ReadAt(chunk, off)
		if n != len(chunk) {
			if err == nil {
				err = io.ErrUnexpectedEOF
			}
			return fmt.Errorf("f.ReadAt(%d): short read of %d (wanted %d): %w", off, n, len(chunk), err)
		}
		for j := 0; j < count; j++ {
			if err := fn(i+j, binary.LittleEndian.Uint32(chunk[4*j:4*j+4])); err != nil {
				return err
			}
		}
		i += count
	}
	return nil
}

// ZeroFill writes n zero bytes to w starting at off, in chunks of at most
// 64 KiB.
func ZeroFill(w io.WriterAt, off, n int64) error {
	block := make([]byte, fillChunkSize)
	for written := int64(0); written < n; {
		chunk := block
		if remaining := n - written; remaining < int64(len(chunk)) {
			chunk = chunk[:remaining]
		}
		m, err := w.WriteAt(chunk, off+written)
		if err != nil {
			return fmt.Errorf("f.WriteAt(%d): %w", off+written, err)
		} else if m != len(chunk) {
			return fmt.Errorf("short write of %d (wanted %d)", m, len(chunk))
		}
		written += int64(m)
	}
	return nil
}
