package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ingestTask(priority int) Task {
	return Task{
		Kind:          TaskKindIngestMediaRecord,
		MediaRecordID: uuid.New(),
		Priority:      priority,
	}
}

func TestDequeueReturnsLowestPriorityFirst(t *testing.T) {
	q := New()

	first := ingestTask(5)
	second := ingestTask(1)
	third := ingestTask(3)

	q.Enqueue(first)
	q.Enqueue(second)
	q.Enqueue(third)

	var got []int
	for n := 0; n < 3; n++ {
		task, ok := q.Dequeue(time.Second)
		require.True(t, ok)
		got = append(got, task.Priority)
	}

	assert.Equal(t, []int{1, 3, 5}, got)
}

func TestEqualPriorityIsFIFO(t *testing.T) {
	q := New()

	ids := make([]uuid.UUID, 0, 10)
	for n := 0; n < 10; n++ {
		task := ingestTask(7)
		ids = append(ids, task.MediaRecordID)
		q.Enqueue(task)
	}

	for i := 0; i < 10; i++ {
		task, ok := q.Dequeue(time.Second)
		require.True(t, ok)
		assert.Equal(t, ids[i], task.MediaRecordID)
	}
}

func TestDequeueTimesOutWhenEmpty(t *testing.T) {
	q := New()

	start := time.Now()
	_, ok := q.Dequeue(50 * time.Millisecond)

	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestDequeueWakesOnConcurrentEnqueue(t *testing.T) {
	q := New()
	task := ingestTask(0)

	go func() {
		time.Sleep(20 * time.Millisecond)
		q.Enqueue(task)
	}()

	got, ok := q.Dequeue(2 * time.Second)
	require.True(t, ok)
	assert.Equal(t, task.MediaRecordID, got.MediaRecordID)
}

func TestEnqueueDoesNotBlock(t *testing.T) {
	q := New()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			q.Enqueue(ingestTask(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("enqueue blocked")
	}

	assert.Equal(t, 1000, q.Len())
}

func TestEnqueueSetsCreated(t *testing.T) {
	q := New()
	q.Enqueue(ingestTask(0))

	task, ok := q.Dequeue(time.Second)
	require.True(t, ok)
	assert.False(t, task.Created.IsZero())
}
