// Copyright 2023 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

//go:build !unix

package lock

import (
	"os"
)

// Lock is a no-op on platforms without flock(2).
func Lock(f *os.File) error {
	return nil
}

// Unlock is a no-op on platforms without flock(2).
func Unlock(f *os.File) error {
	return nil
}
