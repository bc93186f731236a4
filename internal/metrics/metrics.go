// Copyright 2023 The cute Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package metrics exports Prometheus instrumentation for a database.  A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation outcomes used as the status label.
const (
	StatusOK       = "ok"
	StatusNotFound = "not_found"
	StatusConflict = "conflict"
	StatusError    = "error"
)

type Metrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	Records    prometheus.Gauge
	IndexBytes prometheus.Gauge
	DataBytes  prometheus.Gauge
}

// New registers the database collectors with reg.  It returns nil if reg is
// nil.  Registering twice with the same registry panics, as promauto does.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	return &Metrics{
		Operations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "cute_operations_total",
				Help: "Total number of database operations",
			},
			[]string{"op", "status"},
		),
		Duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cute_operation_duration_seconds",
				Help:    "Database operation duration in seconds",
				Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
			},
			[]string{"op"},
		),
		Records: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "cute_records_total",
				Help: "Key record slots in the index file, including tombstones",
			},
		),
		IndexBytes: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "cute_index_file_bytes",
				Help: "Size of the index file in bytes",
			},
		),
		DataBytes: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "cute_data_file_bytes",
				Help: "Size of the data file in bytes, including orphaned values",
			},
		),
	}
}

// Observe records a completed operation.
func (m *Metrics) Observe(op, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, status).Inc()
	m.Duration.WithLabelValues(op).Observe(d.Seconds())
}

// SetSizes updates the file size gauges.
func (m *Metrics) SetSizes(records, indexBytes, dataBytes int64) {
	if m == nil {
		return
	}
	m.Records.Set(float64(records))
	m.IndexBytes.Set(float64(indexBytes))
	m.DataBytes.Set(float64(dataBytes))
}
