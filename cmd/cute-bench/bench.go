// Copyright 2023 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	farm "github.com/dgryski/go-farm"

	"github.com/bpowers/cute"
)

type config struct {
	name    string
	n       int
	entries uint
	hashed  bool
	input   string
	check   bool
	keep    bool
}

type result struct {
	keys     int
	set      time.Duration
	get      time.Duration
	iter     time.Duration
	forward  int
	backward int
	report   *cute.Report
}

type pair struct {
	key, value []byte
}

func generate(n int, hashed bool) []pair {
	pairs := make([]pair, 0, n)
	for i := 0; i < n; i++ {
		key := []byte("name_" + strconv.Itoa(i))
		if hashed {
			key = []byte(fmt.Sprintf("%016x", farm.Fingerprint64(key)))
		}
		pairs = append(pairs, pair{key: key, value: []byte(strconv.Itoa(i))})
	}
	return pairs
}

// readPairs parses key:value lines, splitting on the first colon.
func readPairs(r io.Reader) ([]pair, error) {
	var pairs []pair
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			return nil, fmt.Errorf("line %d: missing ':'", line)
		}
		pairs = append(pairs, pair{key: []byte(key), value: []byte(value)})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

func removeDB(name string) error {
	for _, path := range []string{cute.IndexPath(name), cute.DataPath(name)} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func run(cfg config, logger *slog.Logger) (res result, err error) {
	var pairs []pair
	if cfg.input != "" {
		f, err := os.Open(cfg.input)
		if err != nil {
			return res, err
		}
		pairs, err = readPairs(f)
		_ = f.Close()
		if err != nil {
			return res, fmt.Errorf("reading %s: %w", cfg.input, err)
		}
	} else {
		pairs = generate(cfg.n, cfg.hashed)
	}
	res.keys = len(pairs)

	if cfg.entries > cute.MaxEntries {
		return res, fmt.Errorf("%w: %d buckets (max %d)", cute.ErrInvalidEntries, cfg.entries, cute.MaxEntries)
	}

	if err := removeDB(cfg.name); err != nil {
		return res, err
	}
	db, err := cute.Open(cfg.name, cute.WithLogger(logger), cute.WithEntries(uint32(cfg.entries)))
	if err != nil {
		return res, err
	}
	defer func() {
		if closeErr := db.Close(); err == nil {
			err = closeErr
		}
		if !cfg.keep {
			if rmErr := removeDB(cfg.name); err == nil {
				err = rmErr
			}
		}
	}()

	start := time.Now()
	for _, p := range pairs {
		if err := db.Set(p.key, p.value); err != nil {
			return res, fmt.Errorf("set %q: %w", p.key, err)
		}
	}
	res.set = time.Since(start)
	logger.Info("set benchmark", "keys", len(pairs), "duration", res.set)

	start = time.Now()
	for _, p := range pairs {
		if _, err := db.Get(p.key); err != nil {
			return res, fmt.Errorf("get %q: %w", p.key, err)
		}
	}
	res.get = time.Since(start)
	logger.Info("get benchmark", "keys", len(pairs), "duration", res.get)

	start = time.Now()
	db.MoveHead()
	for {
		if _, _, err := db.Next(); err == io.EOF {
			break
		} else if err != nil {
			return res, fmt.Errorf("next: %w", err)
		}
		res.forward++
	}
	db.MoveTail()
	for {
		if _, _, err := db.Prev(); err == io.EOF {
			break
		} else if err != nil {
			return res, fmt.Errorf("prev: %w", err)
		}
		res.backward++
	}
	res.iter = time.Since(start)
	logger.Info("iterator benchmark", "forward", res.forward, "backward", res.backward, "duration", res.iter)

	if cfg.check {
		report, err := db.Check()
		if err != nil {
			return res, fmt.Errorf("check: %w", err)
		}
		res.report = &report
	}
	return res, nil
}

func printReport(w io.Writer, report *cute.Report) {
	fmt.Fprintf(w, "records: %d live: %d deleted: %d\n", report.Records, report.Live, report.Deleted)
	fmt.Fprintf(w, "used buckets: %d longest chain: %d average chain: %.3f load factor: %.3f\n",
		report.UsedBuckets, report.LongestChain, report.AverageChain, report.LoadFactor)
	for _, p := range report.Problems {
		fmt.Fprintf(w, "problem: %s\n", p)
	}
}
