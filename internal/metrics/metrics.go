/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package metrics exposes editor counters on a private Prometheus registry.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Mutation kinds.
const (
	KindCommitted = "committed"
	KindSilent    = "silent"
	KindUndo      = "undo"
	KindRedo      = "redo"
)

type Recorder struct {
	reg          *prometheus.Registry
	mutations    *prometheus.CounterVec
	historyDepth prometheus.Gauge
	syncDuration prometheus.Histogram
	syncActions  *prometheus.CounterVec
	saves        *prometheus.CounterVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "editor_mutations_total",
				Help: "Editor store mutations by operation and kind",
			},
			[]string{"op", "kind"},
		),
		historyDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "editor_history_depth",
			Help: "Entries on the undo stack",
		}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "canvas_sync_duration_seconds",
			Help:    "Duration of one surface synchronization pass",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}),
		syncActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canvas_sync_primitives_total",
				Help: "Surface primitives touched by synchronization, by action",
			},
			[]string{"action"},
		),
		saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "editor_saves_total",
				Help: "Project saves by store backend and result",
			},
			[]string{"backend", "result"},
		),
	}
	r.reg.MustRegister(r.mutations, r.historyDepth, r.syncDuration, r.syncActions, r.saves)
	return r
}

// Registry returns the registry the collectors live on.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func (r *Recorder) Mutation(op, kind string) {
	if r == nil {
		return
	}
	r.mutations.WithLabelValues(op, kind).Inc()
}

func (r *Recorder) HistoryDepth(n int) {
	if r == nil {
		return
	}
	r.historyDepth.Set(float64(n))
}

// SyncPass records one adapter synchronization pass.
func (r *Recorder) SyncPass(d time.Duration, created, updated, recreated, removed int) {
	if r == nil {
		return
	}
	r.syncDuration.Observe(d.Seconds())
	for action, n := range map[string]int{"create": created, "update": updated, "recreate": recreated, "remove": removed} {
		if n > 0 {
			r.syncActions.WithLabelValues(action).Add(float64(n))
		}
	}
}

func (r *Recorder) Save(backend string, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.saves.WithLabelValues(backend, result).Inc()
}
