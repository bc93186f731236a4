// Copyright 2023 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Command cute is an interactive shell over a cute database.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/bpowers/cute"
)

// bucketCount range-checks the -entries flag before it's narrowed to 32 bits.
func bucketCount(n uint) (uint32, error) {
	if n > cute.MaxEntries {
		return 0, fmt.Errorf("%w: %d buckets (max %d)", cute.ErrInvalidEntries, n, cute.MaxEntries)
	}
	return uint32(n), nil
}

func main() {
	name := flag.String("db", "cute", "database name (NAME.idx and NAME.dat)")
	entries := flag.Uint("entries", cute.DefaultEntries, "hash buckets when creating the database")
	verbose := flag.Bool("v", false, "log debug output to stderr")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	n, err := bucketCount(*entries)
	if err != nil {
		logger.Error("bad -entries", "err", err)
		os.Exit(2)
	}
	db, err := cute.Open(*name, cute.WithLogger(logger), cute.WithEntries(n))
	if err != nil {
		logger.Error("open failed", "db", *name, "err", err)
		os.Exit(1)
	}

	sh := newShell(db, os.Stdout)
	sh.prompt = "> "
	fmt.Printf("Opened %s.  Type 'help' for commands or 'exit' to quit.\n", *name)

	runErr := sh.run(os.Stdin)
	if err := db.Close(); err != nil {
		logger.Error("close failed", "db", *name, "err", err)
		os.Exit(1)
	}
	if runErr != nil {
		logger.Error("reading input", "err", runErr)
		os.Exit(1)
	}
}
