// Copyright 2023 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package indexfile

import (
	"hash/crc32"
)

// Bucket returns the bucket directory index for key.  The CRC-32 of the key is
// read as a signed 32-bit integer and made non-negative before reducing it
// modulo the bucket count; the arithmetic is done in 64 bits so that
// math.MinInt32 has a positive negation.
func Bucket(key []byte, entries uint32) uint32 {
	hash := int64(int32(crc32.ChecksumIEEE(key)))
	if hash < 0 {
		hash = -hash
	}
	return uint32(hash % int64(entries))
}
