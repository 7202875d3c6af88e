package sched

import (
	"sync"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

// classQueue is the FIFO of waiting tasks for one priority class. Each class
// carries its own lock, so enqueues to different classes never contend;
// within a class the lock is the serialization point for concurrent
// producers, which fixes the FIFO order.
type classQueue struct {
	mu sync.Mutex
	q  *linkedlistqueue.Queue
}

func newClassQueue() *classQueue {
	return &classQueue{q: linkedlistqueue.New()}
}

func (cq *classQueue) push(t *Task) {
	cq.mu.Lock()
	cq.q.Enqueue(t)
	cq.mu.Unlock()
}

func (cq *classQueue) pop() (*Task, bool) {
	cq.mu.Lock()
	v, ok := cq.q.Dequeue()
	cq.mu.Unlock()
	if !ok {
		return nil, false
	}
	return v.(*Task), true
}

func (cq *classQueue) size() int {
	cq.mu.Lock()
	defer cq.mu.Unlock()
	return cq.q.Size()
}
