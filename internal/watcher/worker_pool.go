package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Task represents a work item
type Task interface {
	Execute(ctx context.Context) error
}

// TaskFunc adapts a function to the Task interface.
type TaskFunc func(ctx context.Context) error

// Execute calls f(ctx).
func (f TaskFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// WorkerPool runs tasks on a fixed number of goroutines. A failing or
// panicking task is logged and does not affect the others.
type WorkerPool struct {
	workers   int
	taskQueue chan Task
	logger    *slog.Logger
	wg        sync.WaitGroup

	mu      sync.RWMutex
	started bool
	closed  bool
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(workers int, logger *slog.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{
		workers:   workers,
		taskQueue: make(chan Task, workers*2),
		logger:    logger,
	}
}

// Start starts the worker pool. Tasks keep running with ctx even after it is
// cancelled; use Stop to shut the pool down.
func (wp *WorkerPool) Start(ctx context.Context) {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.started || wp.closed {
		return
	}
	wp.started = true

	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(context.WithoutCancel(ctx))
	}
}

// Stop refuses new tasks and waits for queued and running ones to finish.
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	close(wp.taskQueue)
	wp.mu.Unlock()

	wp.wg.Wait()
}

// Submit queues a task, blocking while the queue is full. It reports false
// once the pool is stopping.
func (wp *WorkerPool) Submit(task Task) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}
	wp.taskQueue <- task
	return true
}

// worker runs a worker goroutine
func (wp *WorkerPool) worker(ctx context.Context) {
	defer wp.wg.Done()
	for task := range wp.taskQueue {
		if task == nil {
			continue
		}
		if err := wp.run(ctx, task); err != nil {
			wp.logger.ErrorContext(ctx, "task failed", "error", err)
		}
	}
}

func (wp *WorkerPool) run(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task.Execute(ctx)
}
