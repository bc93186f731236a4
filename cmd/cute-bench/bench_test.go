// Copyright 2023 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bpowers/cute"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun(t *testing.T) {
	for _, hashed := range []bool{false, true} {
		name := filepath.Join(t.TempDir(), "bench")
		res, err := run(config{name: name, n: 500, entries: 64, hashed: hashed, check: true}, discard())
		require.NoError(t, err)
		require.Equal(t, 500, res.keys)
		require.Equal(t, 500, res.forward)
		require.Equal(t, 500, res.backward)
		require.NotNil(t, res.report)
		require.True(t, res.report.OK(), "%v", res.report.Problems)
		require.Equal(t, int64(500), res.report.Live)

		// files are cleaned up unless asked to keep them
		require.NoFileExists(t, cute.IndexPath(name))
		require.NoFileExists(t, cute.DataPath(name))
	}
}

func TestRun_Input(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "pairs.txt")
	require.NoError(t, os.WriteFile(input, []byte("k1:v1\nk2:v:2\nk3:\n"), 0644))

	name := filepath.Join(dir, "bench")
	res, err := run(config{name: name, input: input, entries: 8, keep: true}, discard())
	require.NoError(t, err)
	require.Equal(t, 3, res.keys)
	require.Equal(t, 3, res.forward)
	require.Nil(t, res.report)

	db, err := cute.Open(name, cute.WithEntries(8))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, db.Close())
	}()
	v, err := db.Get([]byte("k2"))
	require.NoError(t, err)
	require.Equal(t, "v:2", string(v))
}

func TestReadPairs(t *testing.T) {
	_, err := readPairs(strings.NewReader("ok:1\nnocolon\n"))
	require.ErrorContains(t, err, "line 2")
}

func TestGenerate(t *testing.T) {
	plain := generate(3, false)
	require.Equal(t, "name_2", string(plain[2].key))
	require.Equal(t, "2", string(plain[2].value))

	hashed := generate(3, true)
	require.Len(t, hashed[0].key, 16)
	require.NotEqual(t, hashed[0].key, hashed[1].key)
	require.Equal(t, hashed, generate(3, true))
}

func TestRun_TooManyBuckets(t *testing.T) {
	name := filepath.Join(t.TempDir(), "bench")
	_, err := run(config{name: name, n: 1, entries: cute.MaxEntries + 1}, discard())
	require.ErrorIs(t, err, cute.ErrInvalidEntries)
	require.NoFileExists(t, cute.IndexPath(name))
}
