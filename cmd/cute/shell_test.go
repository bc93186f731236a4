// Copyright 2023 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bpowers/cute"
)

func runShell(t *testing.T, input string) string {
	t.Helper()
	db, err := cute.Open(filepath.Join(t.TempDir(), "shell"), cute.WithEntries(16))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, db.Close())
	}()

	var out bytes.Buffer
	require.NoError(t, newShell(db, &out).run(strings.NewReader(input)))
	return out.String()
}

func TestShell(t *testing.T) {
	out := runShell(t, strings.Join([]string{
		`set a 1`,
		`set "key with spaces" 'a longer value'`,
		`set a 2`,
		`get a`,
		`get "key with spaces"`,
		`replace a 3`,
		`get a`,
		`has a`,
		`del a`,
		`has a`,
		`get a`,
		`scan`,
	}, "\n"))

	require.Equal(t, strings.Join([]string{
		`OK`,
		`OK`,
		`error: key already exists: "a"`,
		`1`,
		`a longer value`,
		`OK`,
		`3`,
		`true`,
		`OK`,
		`false`,
		`error: key not found`,
		`"key with spaces": "a longer value"`,
		`(1 records)`,
	}, "\n")+"\n", out)
}

func TestShell_Cursor(t *testing.T) {
	out := runShell(t, strings.Join([]string{
		`set a 1`,
		`set b 2`,
		`set c 3`,
		`rscan 2`,
		`tail`,
		`prev`,
		`next`,
		`next`,
		`head`,
		`next`,
		`exit`,
		`next`,
	}, "\n"))

	require.Equal(t, strings.Join([]string{
		`OK`,
		`OK`,
		`OK`,
		`"c": "3"`,
		`"b": "2"`,
		`(2 records)`,
		`"c": "3"`,
		`"b": "2"`,
		`"c": "3"`,
		`"a": "1"`,
	}, "\n")+"\n", out)
}

func TestShell_Errors(t *testing.T) {
	out := runShell(t, strings.Join([]string{
		``,
		`bogus`,
		`get`,
		`set a`,
		`scan x`,
		`get "unterminated`,
		`check`,
	}, "\n"))

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal(t, `error: unknown command "bogus" (try 'help')`, lines[0])
	require.Equal(t, `error: usage: get KEY`, lines[1])
	require.Equal(t, `error: usage: set KEY VALUE`, lines[2])
	require.Equal(t, `error: bad limit "x"`, lines[3])
	require.True(t, strings.HasPrefix(lines[4], "error: parse:"), lines[4])
	require.Equal(t, "OK", lines[len(lines)-1])
}

func TestShell_Files(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.bin")
	dst := filepath.Join(dir, "out.bin")
	content := bytes.Repeat([]byte{0, 1, 2, 0xff}, 1000)
	require.NoError(t, os.WriteFile(src, content, 0644))

	out := runShell(t, "load image "+src+"\nsave image "+dst+"\nsave missing "+dst+"\n")
	require.Equal(t, "OK (4000 bytes)\nOK (4000 bytes)\nerror: key not found\n", out)

	saved, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, content, saved)
}
