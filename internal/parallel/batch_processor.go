// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"fmt"
	"time"

	"pheno-scan/internal/observability"
)

// BatchProcessor runs a DocumentProcessor over a set of corpus documents in parallel
type BatchProcessor struct {
	workers   int
	processor DocumentProcessor
	observer  *observability.StandardObserver
	monitor   *ResourceMonitor
}

// BatchStats tracks batch processing statistics
type BatchStats struct {
	TotalDocuments     int           `json:"total_documents"`
	ProcessedDocuments int           `json:"processed_documents"`
	TotalItems         int           `json:"total_items"`
	TotalDuration      time.Duration `json:"total_duration_ms"`
	WorkerCount        int           `json:"worker_count"`
	AvgDocumentTime    time.Duration `json:"avg_document_time_ms"`
}

// NewBatchProcessor creates a batch processor. A workers value of zero or less
// lets the resource monitor pick a worker count for the machine.
func NewBatchProcessor(workers int, processor DocumentProcessor, observer *observability.StandardObserver) *BatchProcessor {
	return &BatchProcessor{
		workers:   workers,
		processor: processor,
		observer:  observer,
		monitor:   NewResourceMonitor(DefaultResourceLimits()),
	}
}

// ProgressCallback is called when a document is completed
type ProgressCallback func(completed, total int, currentKey string)

// ProcessDocuments processes multiple documents in parallel. It returns
// per-document failures keyed by document key alongside batch statistics.
func (bp *BatchProcessor) ProcessDocuments(keys []string) (map[string]error, *BatchStats, error) {
	return bp.ProcessDocumentsWithProgress(keys, nil)
}

// ProcessDocumentsWithProgress processes multiple documents in parallel with progress callback
func (bp *BatchProcessor) ProcessDocumentsWithProgress(keys []string, progressCallback ProgressCallback) (map[string]error, *BatchStats, error) {
	start := time.Now()

	var finishTiming func(bool, map[string]interface{})
	if bp.observer != nil {
		finishTiming = bp.observer.StartTiming("batch_processor", "process_documents", "batch")
	}

	workers := bp.workers
	if workers <= 0 {
		workers = bp.monitor.OptimalWorkerCount(len(keys))
	}

	// A fresh pool per batch keeps the processor reusable
	pool := NewWorkerPool(workers, bp.processor, bp.observer)
	pool.Start()
	defer pool.Stop()

	// Submit jobs in a separate goroutine to prevent deadlock
	jobCount := len(keys)
	go func() {
		defer close(pool.jobs)
		for i, key := range keys {
			pool.Submit(&Job{
				JobID: fmt.Sprintf("job_%d", i),
				Key:   key,
			})
		}
	}()

	// Collect results
	failures := make(map[string]error)
	processedCount := 0
	totalItems := 0
	totalDuration := time.Duration(0)

	for i := 0; i < jobCount; i++ {
		result := <-pool.Results()

		if result.Error != nil {
			failures[result.Key] = result.Error
			if bp.observer != nil {
				bp.observer.LogOperation(observability.ObservabilityData{
					Component: "batch_processor",
					Operation: "document_processing",
					DocPath:   result.Key,
					Success:   false,
					Error:     result.Error.Error(),
				})
			}
		} else {
			processedCount++
			totalItems += result.Items
		}
		totalDuration += result.Duration

		// Call progress callback if provided
		if progressCallback != nil {
			progressCallback(i+1, jobCount, result.Key)
		}
	}

	overallDuration := time.Since(start)

	stats := &BatchStats{
		TotalDocuments:     jobCount,
		ProcessedDocuments: processedCount,
		TotalItems:         totalItems,
		TotalDuration:      overallDuration,
		WorkerCount:        workers,
		AvgDocumentTime:    totalDuration / time.Duration(max(processedCount, 1)),
	}

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"total_documents":     jobCount,
			"processed_documents": processedCount,
			"total_items":         totalItems,
			"worker_count":        workers,
			"duration_ms":         overallDuration.Milliseconds(),
		})
	}

	return failures, stats, nil
}
