// Package queue implements the in-process priority queue of background
// ingestion tasks. Tasks are ephemeral: they exist only in memory and are lost
// on process exit. Lower priority values run sooner; tasks with equal priority
// run in FIFO order.
package queue

import (
	"container/heap"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskKind identifies what a task does. The worker dispatches on it.
type TaskKind string

const (
	// TaskKindIngestMediaRecord ingests one media record into the vector store.
	TaskKindIngestMediaRecord TaskKind = "ingest_media_record"
)

// Task is a task descriptor. Descriptors are plain data so tasks stay
// inspectable and loggable; they carry no closures.
type Task struct {
	Kind          TaskKind
	MediaRecordID uuid.UUID
	Priority      int
	Created       time.Time

	seq uint64
}

// TaskQueue is an owned, unbounded priority queue safe for concurrent use.
// Construct one with New and pass it to producers and the worker; there is no
// package-level instance.
type TaskQueue struct {
	mu      sync.Mutex
	items   taskHeap
	nextSeq uint64

	// notify has capacity 1: a pending token means "something was enqueued
	// since the consumer last looked". The consumer re-checks the heap after
	// every wakeup, so a stale token is harmless.
	notify chan struct{}
}

// New creates an empty task queue.
func New() *TaskQueue {
	return &TaskQueue{notify: make(chan struct{}, 1)}
}

// Enqueue inserts a task without blocking and returns immediately. The task's
// sequence number is assigned here, so equal-priority tasks dequeue in the
// order their Enqueue calls locked the queue.
func (q *TaskQueue) Enqueue(task Task) {
	q.mu.Lock()
	task.seq = q.nextSeq
	q.nextSeq++
	if task.Created.IsZero() {
		task.Created = time.Now()
	}
	heap.Push(&q.items, task)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Dequeue pops the task with the lowest priority value, waiting up to timeout
// when the queue is empty. The bounded wait lets the worker observe its stop
// signal between polls. Returns ok=false on timeout.
func (q *TaskQueue) Dequeue(timeout time.Duration) (Task, bool) {
	deadline := time.Now().Add(timeout)

	for {
		q.mu.Lock()
		if q.items.Len() > 0 {
			task := heap.Pop(&q.items).(Task)
			q.mu.Unlock()
			return task, true
		}
		q.mu.Unlock()

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return Task{}, false
		}

		select {
		case <-q.notify:
		case <-time.After(remaining):
		}
	}
}

// Len reports how many tasks are waiting.
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// taskHeap orders by priority, then by enqueue sequence.
type taskHeap []Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority < h[j].Priority
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) { *h = append(*h, x.(Task)) }

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	task := old[n-1]
	*h = old[:n-1]
	return task
}
