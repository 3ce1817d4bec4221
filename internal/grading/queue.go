package grading

import (
	"container/heap"
	"sync"
)

// Priority classes for queued grading work. Lower values are served first.
// Elevated is reserved for retries and urgent work; there is no fairness
// guarantee across classes, so a steady stream of elevated tickets starves
// normal ones.
const (
	priorityElevated = 0
	priorityNormal   = 10
)

type ticket struct {
	snapshot Snapshot
	priority int
	// enqueuedAt is a per-queue monotonic sequence. It breaks ties within a
	// priority class, giving strict FIFO order even for enqueues that would
	// land on the same clock reading.
	enqueuedAt int64
}

func (t ticket) before(other ticket) bool {
	if t.priority != other.priority {
		return t.priority < other.priority
	}
	return t.enqueuedAt < other.enqueuedAt
}

// Queue is an unbounded, internally synchronized priority queue of grading
// snapshots. Any number of producers may call Enqueue and Prioritize
// concurrently with consumers calling Dequeue.
type Queue struct {
	mu    sync.Mutex
	seq   int64
	items ticketHeap
}

// NewQueue creates an empty grading queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue inserts a snapshot at normal priority. It never blocks.
func (q *Queue) Enqueue(snapshot Snapshot) {
	q.push(snapshot, priorityNormal)
	queueEnqueued.WithLabelValues("normal").Inc()
}

// Prioritize inserts a snapshot at elevated priority so it is served before
// any normal-priority backlog. Used for retry-after-failure.
func (q *Queue) Prioritize(snapshot Snapshot) {
	q.push(snapshot, priorityElevated)
	queueEnqueued.WithLabelValues("elevated").Inc()
}

func (q *Queue) push(snapshot Snapshot, priority int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.seq++
	heap.Push(&q.items, ticket{snapshot: snapshot, priority: priority, enqueuedAt: q.seq})
	queueDepth.Set(float64(len(q.items)))
}

// Dequeue removes and returns the highest-priority snapshot. It never blocks;
// the second return value is false when the queue is empty.
func (q *Queue) Dequeue() (Snapshot, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return Snapshot{}, false
	}

	item := heap.Pop(&q.items).(ticket)
	queueDepth.Set(float64(len(q.items)))
	return item.snapshot, true
}

// Size returns the number of snapshots currently waiting. Under concurrent
// mutation the value is advisory.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsEmpty reports whether the queue currently holds no work.
func (q *Queue) IsEmpty() bool {
	return q.Size() == 0
}

type ticketHeap []ticket

func (h ticketHeap) Len() int           { return len(h) }
func (h ticketHeap) Less(i, j int) bool { return h[i].before(h[j]) }
func (h ticketHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *ticketHeap) Push(x any) {
	*h = append(*h, x.(ticket))
}

func (h *ticketHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
