// Copyright 2023 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package indexfile

import (
	"errors"
	"io"
	"sync"
)

// safeBuffer is an in-memory File that grows on WriteAt.
type safeBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (s *safeBuffer) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]byte(nil), s.buf...)
}

func (s *safeBuffer) Len() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.buf))
}

func (s *safeBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, p...)
	return len(p), nil
}

func (s *safeBuffer) WriteAt(p []byte, off int64) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if off < 0 {
		return 0, errors.New("writeAt out of bounds")
	}
	if end := int(off) + len(p); end > len(s.buf) {
		s.buf = append(s.buf, make([]byte, end-len(s.buf))...)
	}

	return copy(s.buf[off:int(off)+len(p)], p), nil
}

func (s *safeBuffer) ReadAt(p []byte, off int64) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if int(off) > len(s.buf) {
		return 0, io.EOF
	}

	end := int(off) + len(p)
	if end > len(s.buf) {
		end = len(s.buf)
	}

	n = copy(p, s.buf[off:end])
	if n < len(p) {
		err = io.EOF
	}
	return n, err
}

var _ File = &safeBuffer{}

type failingFile struct {
	inner       File
	readsFail   bool
	writesFail  bool
	shortWrites bool
}

func (f *failingFile) ReadAt(p []byte, off int64) (int, error) {
	if f.readsFail {
		return 0, errors.New("read failed")
	}
	return f.inner.ReadAt(p, off)
}

func (f *failingFile) WriteAt(p []byte, off int64) (int, error) {
	if f.writesFail {
		return 0, errors.New("write failed")
	}
	if f.shortWrites && len(p) > 0 {
		return f.inner.WriteAt(p[:len(p)-1], off)
	}
	return f.inner.WriteAt(p, off)
}

var _ File = &failingFile{}
