// Copyright 2023 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package indexfile

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	RecordSize      = 128
	recordFixedSize = 4 + 4 + 4 + 4 + 4 + 1 + 1

	// MaxKeyLen is the longest key that fits inline in a record slot.
	MaxKeyLen = RecordSize - recordFixedSize

	recordChainNextOff = 0
	recordPrevOff      = 4
	recordNextOff      = 8
	recordValueOffOff  = 12
	recordValueLenOff  = 16
	recordKeyLenOff    = 20
	recordDeletedOff   = 21
	recordKeyOff       = recordFixedSize
)

var (
	ErrRecordTooLarge = errors.New("key record exceeds slot size")
)

// Record is the decoded form of a single 128-byte key record slot.
type Record struct {
	ChainNext uint32 // next record in this bucket's collision chain
	Prev      uint32 // previous record in insertion order
	Next      uint32 // next record in insertion order
	ValueOff  uint32
	ValueLen  uint32
	Deleted   bool
	Key       []byte
}

// MarshalTo packs r into buf, which must be at least RecordSize bytes.  The
// unused tail of the slot is zeroed.
func (r *Record) MarshalTo(buf []byte) error {
	if len(buf) < RecordSize {
		return fmt.Errorf("buf too short: %d < %d", len(buf), RecordSize)
	}
	if recordFixedSize+len(r.Key) > RecordSize {
		return fmt.Errorf("%w: key of %d bytes (max %d)", ErrRecordTooLarge, len(r.Key), MaxKeyLen)
	}
	buf = buf[:RecordSize]

	binary.LittleEndian.PutUint32(buf[recordChainNextOff:], r.ChainNext)
	binary.LittleEndian.PutUint32(buf[recordPrevOff:], r.Prev)
	binary.LittleEndian.PutUint32(buf[recordNextOff:], r.Next)
	binary.LittleEndian.PutUint32(buf[recordValueOffOff:], r.ValueOff)
	binary.LittleEndian.PutUint32(buf[recordValueLenOff:], r.ValueLen)
	buf[recordKeyLenOff] = uint8(len(r.Key))
	buf[recordDeletedOff] = 0
	if r.Deleted {
		buf[recordDeletedOff] = 1
	}
	n := copy(buf[recordKeyOff:], r.Key)
	clear(buf[recordKeyOff+n:])

	return nil
}

// UnmarshalBytes decodes a record slot.  The key is copied out of recordBytes,
// so the buffer may be reused afterwards.
func (r *Record) UnmarshalBytes(recordBytes []byte) error {
	if len(recordBytes) < RecordSize {
		return fmt.Errorf("recordBytes too short: %d < %d", len(recordBytes), RecordSize)
	}
	recordBytes = recordBytes[:RecordSize]

	keyLen := int(recordBytes[recordKeyLenOff])
	if keyLen > MaxKeyLen {
		return fmt.Errorf("%w: stored key length %d (max %d)", ErrRecordTooLarge, keyLen, MaxKeyLen)
	}

	r.ChainNext = binary.LittleEndian.Uint32(recordBytes[recordChainNextOff:])
	r.Prev = binary.LittleEndian.Uint32(recordBytes[recordPrevOff:])
	r.Next = binary.LittleEndian.Uint32(recordBytes[recordNextOff:])
	r.ValueOff = binary.LittleEndian.Uint32(recordBytes[recordValueOffOff:])
	r.ValueLen = binary.LittleEndian.Uint32(recordBytes[recordValueLenOff:])
	r.Deleted = recordBytes[recordDeletedOff] != 0
	r.Key = make([]byte, keyLen)
	copy(r.Key, recordBytes[recordKeyOff:])

	return nil
}

// keyEquals reports whether the packed slot in recordBytes holds exactly key,
// without decoding the rest of the record.
func keyEquals(recordBytes []byte, key []byte) bool {
	keyLen := int(recordBytes[recordKeyLenOff])
	if keyLen != len(key) || keyLen > MaxKeyLen {
		return false
	}
	return string(recordBytes[recordKeyOff:recordKeyOff+keyLen]) == string(key)
}

func chainNext(recordBytes []byte) uint32 {
	return binary.LittleEndian.Uint32(recordBytes[recordChainNextOff:])
}
