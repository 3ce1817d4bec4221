package grading

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func snapshotWithID(id uint) Snapshot {
	return Snapshot{SubmissionID: id, SubmittedAnswer: fmt.Sprintf("answer-%d", id)}
}

func TestQueueDequeueEmpty(t *testing.T) {
	queue := NewQueue()

	snapshot, ok := queue.Dequeue()
	require.False(t, ok)
	require.Zero(t, snapshot.SubmissionID)
	require.True(t, queue.IsEmpty())
}

func TestQueueFIFOWithinPriority(t *testing.T) {
	queue := NewQueue()

	for id := uint(1); id <= 10; id++ {
		queue.Enqueue(snapshotWithID(id))
	}

	for id := uint(1); id <= 10; id++ {
		snapshot, ok := queue.Dequeue()
		require.True(t, ok)
		require.Equal(t, id, snapshot.SubmissionID)
	}

	require.True(t, queue.IsEmpty())
}

func TestQueueElevatedBeforeNormal(t *testing.T) {
	queue := NewQueue()

	for id := uint(1); id <= 20; id++ {
		queue.Enqueue(snapshotWithID(id))
	}
	for id := uint(100); id < 105; id++ {
		queue.Prioritize(snapshotWithID(id))
	}

	for id := uint(100); id < 105; id++ {
		snapshot, ok := queue.Dequeue()
		require.True(t, ok)
		require.Equal(t, id, snapshot.SubmissionID)
	}

	for id := uint(1); id <= 20; id++ {
		snapshot, ok := queue.Dequeue()
		require.True(t, ok)
		require.Equal(t, id, snapshot.SubmissionID)
	}
}

func TestQueueInterleavedPriorities(t *testing.T) {
	queue := NewQueue()

	queue.Enqueue(snapshotWithID(1))
	queue.Prioritize(snapshotWithID(2))
	queue.Enqueue(snapshotWithID(3))
	queue.Prioritize(snapshotWithID(4))

	var order []uint
	for {
		snapshot, ok := queue.Dequeue()
		if !ok {
			break
		}
		order = append(order, snapshot.SubmissionID)
	}

	require.Equal(t, []uint{2, 4, 1, 3}, order)
}

func TestQueueSize(t *testing.T) {
	queue := NewQueue()
	require.Equal(t, 0, queue.Size())

	queue.Enqueue(snapshotWithID(1))
	queue.Prioritize(snapshotWithID(2))
	require.Equal(t, 2, queue.Size())

	_, ok := queue.Dequeue()
	require.True(t, ok)
	require.Equal(t, 1, queue.Size())
}

func TestQueueConcurrentProducersLoseNothing(t *testing.T) {
	queue := NewQueue()

	const producers = 8
	const perProducer = 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				id := uint(p*perProducer + i + 1)
				if i%2 == 0 {
					queue.Enqueue(snapshotWithID(id))
				} else {
					queue.Prioritize(snapshotWithID(id))
				}
			}
		}(p)
	}
	wg.Wait()

	require.Equal(t, producers*perProducer, queue.Size())

	seen := make(map[uint]struct{})
	for {
		snapshot, ok := queue.Dequeue()
		if !ok {
			break
		}
		_, duplicate := seen[snapshot.SubmissionID]
		require.False(t, duplicate, "submission %d dequeued twice", snapshot.SubmissionID)
		seen[snapshot.SubmissionID] = struct{}{}
	}

	require.Len(t, seen, producers*perProducer)
}
