// Copyright 2023 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package lock places an exclusive advisory lock on an open database file so
// that a second process (or a second handle in the same process) can't open
// the same database while the first still has it.
package lock

import (
	"errors"
)

var (
	ErrLocked = errors.New("database is in use by another instance")
)
