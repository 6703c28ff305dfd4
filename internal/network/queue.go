package network

import (
	"fmt"

	"webofworlds/internal/domain"
)

// workQueue is a bounded FIFO of vertex ids backed by a ring buffer
type workQueue struct {
	items []int
	head  int
	count int
}

func newWorkQueue(capacity int) *workQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &workQueue{items: make([]int, capacity)}
}

// push appends id; exceeding the capacity is an invariant violation
func (q *workQueue) push(id int) error {
	if q.full() {
		return fmt.Errorf("push vertex %d at capacity %d: %w", id, len(q.items), domain.ErrQueueFull)
	}
	q.items[(q.head+q.count)%len(q.items)] = id
	q.count++
	return nil
}

// pop removes the oldest id
func (q *workQueue) pop() (int, bool) {
	if q.count == 0 {
		return 0, false
	}
	id := q.items[q.head]
	q.head = (q.head + 1) % len(q.items)
	q.count--
	return id, true
}

func (q *workQueue) len() int {
	return q.count
}

func (q *workQueue) full() bool {
	return q.count == len(q.items)
}

func (q *workQueue) empty() bool {
	return q.count == 0
}
