// Copyright 2023 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Command cute-bench times inserts, lookups and full iteration over a fresh
// database.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
)

func main() {
	var cfg config
	flag.StringVar(&cfg.name, "db", "bench", "database name; existing files are removed first")
	flag.IntVar(&cfg.n, "n", 1000000, "number of keys")
	flag.UintVar(&cfg.entries, "entries", 0, "hash buckets (0 for the default)")
	flag.BoolVar(&cfg.hashed, "hashed", false, "use fingerprints of the generated names as keys")
	flag.StringVar(&cfg.input, "input", "", "read key:value lines (as written by gen-testdata) instead of generating keys")
	flag.BoolVar(&cfg.check, "check", false, "check the index file afterwards and print the report")
	flag.BoolVar(&cfg.keep, "keep", false, "keep the database files when done")
	verbose := flag.Bool("v", false, "log debug output")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	result, err := run(cfg, logger)
	if err != nil {
		logger.Error("benchmark failed", "err", err)
		os.Exit(1)
	}
	if result.report != nil {
		printReport(os.Stdout, result.report)
		if !result.report.OK() {
			os.Exit(1)
		}
	}
	fmt.Printf("set benchmark: %.5f\n", result.set.Seconds())
	fmt.Printf("get benchmark: %.5f\n", result.get.Seconds())
	fmt.Printf("iterator benchmark: %.5f\n", result.iter.Seconds())
}
