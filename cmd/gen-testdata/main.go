// Copyright 2021 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Command gen-testdata writes key:value lines for cute-bench -input.  Keys
// are hex HMAC-SHA256 digests of the values, so they're uniformly
// distributed and fit within a record.
package main

import (
	"bufio"
	"crypto/hmac"
	crand "crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"flag"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"math/rand"
	"os"
)

const (
	suffixLen = 16
	hmacKey   = "d259c7f656caf7f1"
)

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		var seedBytes [8]byte
		_, _ = crand.Read(seedBytes[:])
		seed = int64(binary.LittleEndian.Uint64(seedBytes[:]))
	}
	return rand.New(rand.NewSource(seed))
}

func write(w io.Writer, rng *rand.Rand, h hash.Hash, n int, prefix string) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < n; i++ {
		var buf [suffixLen / 2]byte
		if _, err := rng.Read(buf[:]); err != nil {
			return err
		}
		value := fmt.Sprintf("%s%x", prefix, buf)
		h.Reset()
		h.Write([]byte(value))
		key := hex.EncodeToString(h.Sum(nil))

		if _, err := fmt.Fprintf(bw, "%s:%s\n", key, value); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func main() {
	n := flag.Int("n", 1000000, "number of pairs")
	prefix := flag.String("prefix", "pref_", "value prefix")
	seed := flag.Int64("seed", 0, "random seed (0 for a random one)")
	flag.Parse()

	h := hmac.New(sha256.New, []byte(hmacKey))
	if err := write(os.Stdout, newRand(*seed), h, *n, *prefix); err != nil {
		slog.Error("writing pairs", "err", err)
		os.Exit(1)
	}
}
