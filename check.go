// Copyright 2021 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package cute

import (
	"errors"
	"fmt"

	"github.com/bpowers/cute/internal/bitset"
	"github.com/bpowers/cute/internal/indexfile"
)

// maxProblems caps how many problems Check collects before giving up on
// describing them individually.
const maxProblems = 100

// Stats describes the size of an open database.
type Stats struct {
	Entries    uint32 // hash buckets
	Records    int64  // key record slots, including deleted keys
	IndexBytes int64
	DataBytes  int64 // including orphaned values
}

// Stats returns size information without reading any records.
func (db *DB) Stats() (Stats, error) {
	if err := db.checkOpen(); err != nil {
		return Stats{}, err
	}
	return Stats{
		Entries:    db.header.Entries,
		Records:    db.records.Count(),
		IndexBytes: db.records.Len(),
		DataBytes:  db.values.Len(),
	}, nil
}

// Report is the result of Check.
type Report struct {
	Records      int64 // record slots in the index file
	Live         int64 // records on the global list that aren't deleted
	Deleted      int64 // records on the global list that are deleted
	UsedBuckets  int64 // buckets with a non-empty chain
	LongestChain int64
	// AverageChain is the mean chain length over non-empty buckets.
	AverageChain float64
	// LoadFactor is records per bucket.
	LoadFactor float64
	Problems   []string
}

// OK reports whether Check found no problems.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

func (r *Report) problem(format string, args ...any) {
	switch {
	case len(r.Problems) < maxProblems:
		r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
	case len(r.Problems) == maxProblems:
		r.Problems = append(r.Problems, "too many problems, giving up on the rest")
	}
}

// Check walks every bucket chain and the whole global list, verifying that
// each record is on exactly one chain (the one its key hashes to), that the
// list visits every record once with consistent prev/next links and that the
// header's head and tail match the list's ends.  It reads the entire index
// file.  Structural problems, including slots that don't decode, are
// collected in the Report; an error is only returned for I/O failures.
func (db *DB) Check() (Report, error) {
	var report Report
	if err := db.checkOpen(); err != nil {
		return report, err
	}

	n := db.records.Count()
	report.Records = n
	if db.header.Entries > 0 {
		report.LoadFactor = float64(n) / float64(db.header.Entries)
	}

	if err := db.checkChains(&report); err != nil {
		return report, err
	}
	if err := db.checkList(&report); err != nil {
		return report, err
	}
	return report, nil
}

func (db *DB) checkChains(report *Report) error {
	n := db.records.Count()
	onChain := bitset.New(n)
	var chained int64

	err := db.buckets.Range(func(bucket int, head uint32) error {
		var length int64
		for off := head; off != 0; {
			slot, err := db.records.Slot(off)
			if err != nil {
				report.problem("bucket %d: bad chain link %d", bucket, off)
				break
			}
			if onChain.TestAndSet(slot) {
				report.problem("bucket %d: record %d already on a chain (cycle or shared tail)", bucket, off)
				break
			}
			rec, err := db.records.Read(off)
			if errors.Is(err, indexfile.ErrRecordTooLarge) {
				report.problem("bucket %d: undecodable record %d: %v", bucket, off, err)
				break
			} else if err != nil {
				return fmt.Errorf("reading record %d: %w", off, err)
			}
			if b := indexfile.Bucket(rec.Key, db.header.Entries); b != uint32(bucket) {
				report.problem("record %d (key %q) hashes to bucket %d but is on bucket %d", off, rec.Key, b, bucket)
			}
			length++
			off = rec.ChainNext
		}
		if length > 0 {
			report.UsedBuckets++
			chained += length
			if length > report.LongestChain {
				report.LongestChain = length
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if report.UsedBuckets > 0 {
		report.AverageChain = float64(chained) / float64(report.UsedBuckets)
	}
	if missing := n - onChain.Count(); missing > 0 {
		report.problem("%d records are not reachable from any bucket", missing)
	}
	return nil
}

func (db *DB) checkList(report *Report) error {
	n := db.records.Count()
	onList := bitset.New(n)

	var prev uint32
	for off := db.header.Head; off != 0; {
		slot, err := db.records.Slot(off)
		if err != nil {
			report.problem("list: bad link %d after %d", off, prev)
			return nil
		}
		if onList.TestAndSet(slot) {
			report.problem("list: record %d visited twice", off)
			return nil
		}
		rec, err := db.records.Read(off)
		if errors.Is(err, indexfile.ErrRecordTooLarge) {
			report.problem("list: undecodable record %d: %v", off, err)
			return nil
		} else if err != nil {
			return fmt.Errorf("reading record %d: %w", off, err)
		}
		if rec.Prev != prev {
			report.problem("list: record %d has prev %d, expected %d", off, rec.Prev, prev)
		}
		if rec.Deleted {
			report.Deleted++
		} else {
			report.Live++
		}
		prev = off
		off = rec.Next
	}

	if prev != db.header.Tail {
		report.problem("list: ends at %d but header tail is %d", prev, db.header.Tail)
	}
	if missing := n - onList.Count(); missing > 0 {
		report.problem("%d records are not on the global list", missing)
	}
	return nil
}
