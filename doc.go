// Copyright 2021 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package cute is a small persistent key-value store built on an on-disk hash
// table with separate chaining.
//
// A database named "users" lives in two files: users.idx holds a fixed
// directory of hash buckets and a run of 128-byte key records, and users.dat
// holds the raw value bytes.  Key records are chained per bucket to resolve
// collisions and are additionally threaded into a doubly linked list in
// insertion order, which backs the iteration cursor (MoveHead, MoveTail,
// Next and Prev).
//
// Deletes only mark a record as a tombstone; records are never unlinked and
// value space is never reclaimed.  The bucket count is fixed when the
// database is created.
//
// A DB is not safe for concurrent use.  Each operation is a sequence of
// separate reads and writes on the two files with no journaling, so a crash
// part way through an operation can leave the files inconsistent.  Nothing is
// forced to stable storage until Flush is called.
//
//	db, err := cute.Open("users")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Set([]byte("alice"), []byte("admin")); err != nil {
//	    log.Fatal(err)
//	}
//	role, err := db.Get([]byte("alice"))
package cute
