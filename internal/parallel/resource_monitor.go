// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// ResourceMetrics holds current system resource usage
type ResourceMetrics struct {
	CPUCores       int       `json:"cpu_cores"`
	MemoryTotal    uint64    `json:"memory_total_mb"`
	MemoryUsed     uint64    `json:"memory_used_mb"`
	MemoryPercent  float64   `json:"memory_percent"`
	GoroutineCount int       `json:"goroutine_count"`
	HeapSize       uint64    `json:"heap_size_mb"`
	HeapUsed       uint64    `json:"heap_used_mb"`
	GCCount        uint32    `json:"gc_count"`
	Timestamp      time.Time `json:"timestamp"`
}

// ResourceLimits defines worker scaling constraints
type ResourceLimits struct {
	MaxMemoryPercent float64 `json:"max_memory_percent"`
	MaxWorkers       int     `json:"max_workers"`
	MinWorkers       int     `json:"min_workers"`
	MemoryThreshold  uint64  `json:"memory_threshold_mb"`
}

// DefaultResourceLimits returns sensible default limits
func DefaultResourceLimits() ResourceLimits {
	return ResourceLimits{
		MaxMemoryPercent: 80.0, // Don't use more than 80% of system memory
		MaxWorkers:       32,   // Cap workers at 32 regardless of CPU count
		MinWorkers:       2,    // Always have at least 2 workers
		MemoryThreshold:  1024, // 1GB threshold for memory pressure
	}
}

// ResourceMonitor tracks system resource usage so batch runs over large
// document corpora can size their worker pools
type ResourceMonitor struct {
	mu             sync.RWMutex
	currentMetrics ResourceMetrics
	limits         ResourceLimits
	ctx            context.Context
	cancel         context.CancelFunc
	updateInterval time.Duration
}

// NewResourceMonitor creates a new resource monitor
func NewResourceMonitor(limits ResourceLimits) *ResourceMonitor {
	ctx, cancel := context.WithCancel(context.Background())

	rm := &ResourceMonitor{
		limits:         limits,
		ctx:            ctx,
		cancel:         cancel,
		updateInterval: 1 * time.Second,
	}

	// Get initial metrics
	rm.updateMetrics()

	return rm
}

// Start begins monitoring system resources
func (rm *ResourceMonitor) Start() {
	go rm.monitorLoop()
}

// Stop stops the resource monitor
func (rm *ResourceMonitor) Stop() {
	rm.cancel()
}

// GetMetrics returns current resource metrics (thread-safe)
func (rm *ResourceMonitor) GetMetrics() ResourceMetrics {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.currentMetrics
}

// GetLimits returns current resource limits
func (rm *ResourceMonitor) GetLimits() ResourceLimits {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.limits
}

// IsMemoryPressure returns true if system is under memory pressure
func (rm *ResourceMonitor) IsMemoryPressure() bool {
	metrics := rm.GetMetrics()
	limits := rm.GetLimits()

	return metrics.MemoryPercent > limits.MaxMemoryPercent ||
		metrics.MemoryUsed > limits.MemoryThreshold
}

// OptimalWorkerCount calculates a worker count for a batch of docCount documents
func (rm *ResourceMonitor) OptimalWorkerCount(docCount int) int {
	metrics := rm.GetMetrics()
	limits := rm.GetLimits()

	// Base calculation on CPU cores
	workers := metrics.CPUCores

	// Back off when memory is already tight
	if rm.IsMemoryPressure() {
		workers = max(workers/2, limits.MinWorkers)
	}

	// Corpus documents are small; large batches can use more workers
	if docCount > workers*2 {
		workers = min(workers*2, limits.MaxWorkers)
	}

	// Apply hard limits
	return max(limits.MinWorkers, min(workers, limits.MaxWorkers))
}

// monitorLoop continuously updates resource metrics
func (rm *ResourceMonitor) monitorLoop() {
	ticker := time.NewTicker(rm.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rm.ctx.Done():
			return
		case <-ticker.C:
			rm.updateMetrics()
		}
	}
}

// updateMetrics collects current system metrics
func (rm *ResourceMonitor) updateMetrics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := ResourceMetrics{
		CPUCores:       runtime.NumCPU(),
		MemoryTotal:    getSystemMemory(),
		HeapSize:       memStats.Sys / 1024 / 1024,
		HeapUsed:       memStats.Alloc / 1024 / 1024,
		GoroutineCount: runtime.NumGoroutine(),
		GCCount:        memStats.NumGC,
		Timestamp:      time.Now(),
	}

	// Calculate memory usage (approximation using heap stats)
	metrics.MemoryUsed = metrics.HeapUsed
	if metrics.MemoryTotal > 0 {
		metrics.MemoryPercent = float64(metrics.MemoryUsed) / float64(metrics.MemoryTotal) * 100
	}

	rm.mu.Lock()
	rm.currentMetrics = metrics
	rm.mu.Unlock()
}

// getSystemMemory returns an estimate of total system memory in MB. Go has no
// portable way to read the real total, so the runtime's reserved memory is
// scaled up and floored at 1GB.
func getSystemMemory() uint64 {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	estimatedTotal := (memStats.Sys * 4) / 1024 / 1024
	if estimatedTotal < 1024 {
		estimatedTotal = 1024
	}

	return estimatedTotal
}
