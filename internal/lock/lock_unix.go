// Copyright 2023 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

//go:build unix

package lock

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Lock attempts to acquire an exclusive, non-blocking flock(2) on f.  The lock
// belongs to the open file description, so it is released when f is closed
// even if Unlock is never called.
func Lock(f *os.File) error {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if errors.Is(err, unix.EWOULDBLOCK) {
		return fmt.Errorf("%w: %s", ErrLocked, f.Name())
	} else if err != nil {
		return fmt.Errorf("flock(%s): %w", f.Name(), err)
	}
	return nil
}

// Unlock releases a lock acquired via Lock.
func Unlock(f *os.File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		return fmt.Errorf("flock(%s, LOCK_UN): %w", f.Name(), err)
	}
	return nil
}
