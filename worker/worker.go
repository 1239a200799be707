// Package worker runs the single background goroutine that drains the task
// queue and performs media record ingestion.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/coursekit/go-media-search/queue"
)

const pollInterval = 1 * time.Second

// Worker drains the task queue with exactly one goroutine, so ingestion jobs
// run strictly one at a time in priority order.
type Worker struct {
	tasks    *queue.TaskQueue
	handlers map[queue.TaskKind]func(context.Context, queue.Task) error
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewWorker creates a worker draining tasks and dispatching ingest tasks to
// the given ingestor.
func NewWorker(tasks *queue.TaskQueue, ingestor *Ingestor) *Worker {
	w := &Worker{
		tasks:    tasks,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}

	w.handlers = map[queue.TaskKind]func(context.Context, queue.Task) error{
		queue.TaskKindIngestMediaRecord: func(ctx context.Context, task queue.Task) error {
			return ingestor.Ingest(ctx, task.MediaRecordID)
		},
	}

	return w
}

// Start launches the worker goroutine.
func (w *Worker) Start() {
	slog.Info("starting background worker")
	go w.processItems()
}

// Stop signals the worker to exit and blocks until it has. A task that is
// already executing finishes first; nothing starts after the stop signal is
// observed.
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	slog.Info("background worker stopped")
}

func (w *Worker) processItems() {
	defer close(w.doneChan)

	for {
		select {
		case <-w.stopChan:
			return
		default:
		}

		// Bounded poll so the stop signal is observed even when the queue
		// stays empty.
		task, ok := w.tasks.Dequeue(pollInterval)
		if !ok {
			continue
		}

		w.runTask(task)
	}
}

// runTask executes one task. Tasks are fire-and-forget: a failure is terminal
// for that task only, reported exclusively through the log, and never surfaced
// to the caller that enqueued it.
func (w *Worker) runTask(task queue.Task) {
	handler, ok := w.handlers[task.Kind]
	if !ok {
		slog.Error("dropping task of unknown kind", "kind", task.Kind, "media_record_id", task.MediaRecordID)
		return
	}

	slog.Info("processing task",
		"kind", task.Kind,
		"media_record_id", task.MediaRecordID,
		"priority", task.Priority,
		"queued", w.tasks.Len(),
	)

	if err := handler(context.Background(), task); err != nil {
		slog.Error("task failed",
			"kind", task.Kind,
			"media_record_id", task.MediaRecordID,
			"error", err,
		)
		return
	}

	slog.Info("task finished", "kind", task.Kind, "media_record_id", task.MediaRecordID)
}
