// metrics_test.go: lifecycle counter tests
//
// Copyright (c) 2025 Giovanni Santini
// SPDX-License-Identifier: MIT

package micromodule

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_CountersFollowLifecycle(t *testing.T) {
	manager, loader := newTestManager()
	loader.add("plugins/a.so", "a")
	spec := loader.add("plugins/b.so", "b")

	if err := manager.Load("plugins/a.so", 0); err != nil {
		t.Fatalf("load a failed: %v", err)
	}
	if err := manager.Load("plugins/b.so", 0); err != nil {
		t.Fatalf("load b failed: %v", err)
	}
	if err := manager.Load("plugins/b.so", 0); err != nil {
		t.Fatalf("reload b failed: %v", err)
	}
	if err := manager.Unload("a", 0); err != nil {
		t.Fatalf("unload a failed: %v", err)
	}

	snapshot := manager.Metrics()
	assert.Equal(t, int64(2), snapshot.ModulesLoaded)
	assert.Equal(t, int64(1), snapshot.ModulesReloaded)
	assert.Equal(t, int64(1), snapshot.ModulesUnloaded)
	assert.Equal(t, int64(0), snapshot.InitRejections)
	assert.Equal(t, int64(0), snapshot.Failures)
	assert.False(t, snapshot.LastEvent.IsZero())

	// Failures count coded errors; init rejections count separately.
	_ = manager.Load("", 0)
	spec.closeErr = errors.New("image busy")
	_ = manager.Unload("b", 0)

	snapshot = manager.Metrics()
	assert.Equal(t, int64(2), snapshot.Failures)
}

func TestMetrics_InitRejectionCountedOnce(t *testing.T) {
	manager, loader := newTestManager()
	spec := loader.add("plugins/grumpy.so", "grumpy")
	spec.initStatus = 9

	_ = manager.Load("plugins/grumpy.so", 0)

	snapshot := manager.Metrics()
	assert.Equal(t, int64(1), snapshot.InitRejections)
	assert.Equal(t, int64(1), snapshot.ModulesLoaded, "a rejected module still counts as loaded")
	assert.Equal(t, int64(0), snapshot.Failures, "init rejection is the module's verdict, not a system failure")
}

func TestMetrics_SnapshotIsACopy(t *testing.T) {
	var metrics LifecycleMetrics
	metrics.ModulesLoaded.Add(3)
	metrics.recordEvent()

	snapshot := metrics.Snapshot()
	metrics.ModulesLoaded.Add(1)

	assert.Equal(t, int64(3), snapshot.ModulesLoaded)
	assert.Equal(t, int64(4), metrics.ModulesLoaded.Load())
	assert.False(t, snapshot.LastEvent.IsZero())
}
