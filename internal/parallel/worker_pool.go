// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"sync"
	"time"

	"pheno-scan/internal/observability"
)

// DocumentProcessor handles a single corpus document identified by its key.
// It returns the number of items produced for the document (extracted files,
// collected mentions) so batch statistics can be aggregated.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, key string) (int, error)
}

// WorkerPool manages parallel document processing
type WorkerPool struct {
	workers   int
	processor DocumentProcessor
	jobs      chan *Job
	results   chan *Result
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	observer  *observability.StandardObserver
}

// Job represents a document processing task
type Job struct {
	JobID string
	Key   string
}

// Result represents processing results
type Result struct {
	JobID    string
	Key      string
	Items    int
	Error    error
	Duration time.Duration
}

// NewWorkerPool creates a new worker pool around the given processor
func NewWorkerPool(workers int, processor DocumentProcessor, observer *observability.StandardObserver) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		workers:   workers,
		processor: processor,
		jobs:      make(chan *Job, workers*2),
		results:   make(chan *Result, workers*2),
		ctx:       ctx,
		cancel:    cancel,
		observer:  observer,
	}
}

// Start initializes worker goroutines
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop gracefully shuts down the worker pool
func (wp *WorkerPool) Stop() {
	wp.wg.Wait()
	close(wp.results)
	wp.cancel()
}

// Submit adds a job to the queue
func (wp *WorkerPool) Submit(job *Job) {
	select {
	case wp.jobs <- job:
	case <-wp.ctx.Done():
		return
	default:
		// Channel is full, wait and retry
		select {
		case wp.jobs <- job:
		case <-wp.ctx.Done():
		}
	}
}

// Results returns the results channel
func (wp *WorkerPool) Results() <-chan *Result {
	return wp.results
}

// worker processes jobs from the queue
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		result := wp.processJob(job, id)

		select {
		case wp.results <- result:
		case <-wp.ctx.Done():
			return
		}
	}
}

// processJob executes a single job with a per-document timeout
func (wp *WorkerPool) processJob(job *Job, workerID int) *Result {
	start := time.Now()

	var finishTiming func(bool, map[string]interface{})
	if wp.observer != nil {
		finishTiming = wp.observer.StartTiming("worker_pool", "process_document", job.Key)
	}

	jobCtx, cancel := context.WithTimeout(wp.ctx, 5*time.Minute)
	defer cancel()

	items, err := wp.processor.ProcessDocument(jobCtx, job.Key)

	duration := time.Since(start)

	if finishTiming != nil {
		finishTiming(err == nil, map[string]interface{}{
			"worker_id":   workerID,
			"item_count":  items,
			"duration_ms": duration.Milliseconds(),
			"had_error":   err != nil,
		})
	}

	return &Result{
		JobID:    job.JobID,
		Key:      job.Key,
		Items:    items,
		Error:    err,
		Duration: duration,
	}
}
