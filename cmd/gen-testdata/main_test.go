// Copyright 2021 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bpowers/cute"
)

func TestWrite(t *testing.T) {
	var a, b bytes.Buffer
	h := hmac.New(sha256.New, []byte(hmacKey))
	require.NoError(t, write(&a, newRand(42), h, 10, "p_"))
	require.NoError(t, write(&b, newRand(42), h, 10, "p_"))
	require.Equal(t, a.String(), b.String())

	lines := strings.Split(strings.TrimSuffix(a.String(), "\n"), "\n")
	require.Len(t, lines, 10)
	for _, line := range lines {
		key, value, ok := strings.Cut(line, ":")
		require.True(t, ok)
		require.Len(t, key, 64)
		require.LessOrEqual(t, len(key), cute.MaxKeyLen)
		require.True(t, strings.HasPrefix(value, "p_"))
		require.Len(t, value, 2+suffixLen)
	}
}
