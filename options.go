// Copyright 2021 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package cute

import (
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bpowers/cute/internal/indexfile"
)

// DefaultEntries is the number of hash buckets in a database created without
// WithEntries.
const DefaultEntries = indexfile.DefaultEntries

// Option configures a DB.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	entries    uint32
	registerer prometheus.Registerer
	noLock     bool
}

// WithLogger sets an optional logger for the database to report lifecycle
// events to.  If not provided, no logging output will be produced.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// WithEntries sets the number of hash buckets.  It is fixed when a database
// is created, and an existing database is only opened if its bucket count
// matches exactly.  Zero selects DefaultEntries; counts above MaxEntries
// make Open fail with ErrInvalidEntries.
func WithEntries(n uint32) Option {
	return func(opts *options) {
		opts.entries = n
	}
}

// WithRegisterer registers Prometheus collectors for the database with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(opts *options) {
		opts.registerer = reg
	}
}

// WithoutLock skips taking an advisory lock on the index file.
func WithoutLock() Option {
	return func(opts *options) {
		opts.noLock = true
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.entries == 0 {
		o.entries = DefaultEntries
	}
	return o
}
