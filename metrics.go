// metrics.go: lifecycle counters for observability
//
// Copyright (c) 2025 Giovanni Santini
// SPDX-License-Identifier: MIT

package micromodule

import (
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"
)

// LifecycleMetrics tracks operational counters for one manager. Counters are
// atomics so external collectors may read them while the single-threaded
// lifecycle mutates them.
type LifecycleMetrics struct {
	ModulesLoaded   atomic.Int64
	ModulesReloaded atomic.Int64
	ModulesUnloaded atomic.Int64
	InitRejections  atomic.Int64
	Failures        atomic.Int64

	lastEventNano atomic.Int64
}

// recordEvent stamps the time of the most recent lifecycle transition.
func (m *LifecycleMetrics) recordEvent() {
	m.lastEventNano.Store(timecache.CachedTimeNano())
}

// Snapshot returns a point-in-time copy of all counters.
func (m *LifecycleMetrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		ModulesLoaded:   m.ModulesLoaded.Load(),
		ModulesReloaded: m.ModulesReloaded.Load(),
		ModulesUnloaded: m.ModulesUnloaded.Load(),
		InitRejections:  m.InitRejections.Load(),
		Failures:        m.Failures.Load(),
		LastEvent:       time.Unix(0, m.lastEventNano.Load()),
	}
}

// MetricsSnapshot is a plain copy of LifecycleMetrics suitable for logging
// or serialization.
type MetricsSnapshot struct {
	ModulesLoaded   int64     `json:"modules_loaded"`
	ModulesReloaded int64     `json:"modules_reloaded"`
	ModulesUnloaded int64     `json:"modules_unloaded"`
	InitRejections  int64     `json:"init_rejections"`
	Failures        int64     `json:"failures"`
	LastEvent       time.Time `json:"last_event"`
}
