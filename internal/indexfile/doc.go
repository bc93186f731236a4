// Copyright 2023 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package indexfile contains the on-disk structures of a cute index file: the
// file header, the hash bucket directory and the fixed-size key records that
// form per-bucket collision chains and a global insertion-order list.
//
// An index file looks like:
//
//	┌───────────────────┐
//	│ file header       │  20 bytes
//	├───────────────────┤
//	│ bucket directory  │  entries × 4 bytes
//	│                   │
//	├───────────────────┤
//	│ key records       │  128 bytes each, append-only
//	│                   │
//	│                   │
//	└───────────────────┘
//
// The header is:
//
//	 0    1    2    3    4    5    6    7
//	+----+----+----+----+----+----+----+----+
//	| C  | U  | T  | E  | version           |
//	+----+----+----+----+----+----+----+----+
//	| entries           | list head         |
//	+----+----+----+----+----+----+----+----+
//	| list tail         |
//	+----+----+----+----+
//
// Each key record occupies a fixed slot:
//
//	 0    1    2    3    4    5    6    7
//	+----+----+----+----+----+----+----+----+
//	| chain next        | list prev         |
//	+----+----+----+----+----+----+----+----+
//	| list next         | value offset      |
//	+----+----+----+----+----+----+----+----+
//	| value length      |klen|del | key...  |
//	+----+----+----+----+----+----+----+----+
//	| key... zero padded to 128 bytes       |
//	+----+----+----+----+----+----+----+----+
//
// All integers are little-endian.  Offsets are absolute positions in the
// index file (for links) or the data file (for values); a link of 0 means
// "none", which is never a valid record position because the header lives
// there.  A record's position never changes once it has been appended.
package indexfile
