package hyperroute

import (
	"container/heap"
	"sort"
)

// PriorityQueueItem is a queued value with its priority and insertion
// sequence. Items with equal priority leave the queue in insertion order.
type PriorityQueueItem[T any] struct {
	Value    T
	Priority float64
	Sequence uint64
}

type itemHeap[T any] []PriorityQueueItem[T]

func (h itemHeap[T]) Len() int { return len(h) }
func (h itemHeap[T]) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority < h[j].Priority
	}
	return h[i].Sequence < h[j].Sequence
}
func (h itemHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *itemHeap[T]) Push(x any) {
	*h = append(*h, x.(PriorityQueueItem[T]))
}

func (h *itemHeap[T]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	var zero PriorityQueueItem[T]
	old[n-1] = zero
	*h = old[:n-1]
	return item
}

// PriorityQueue is a min-queue ordered by priority with a stable tie-break.
// It does not deduplicate values. It is not safe for concurrent use.
type PriorityQueue[T any] struct {
	items   itemHeap[T]
	nextSeq uint64
}

// NewPriorityQueue returns an empty queue.
func NewPriorityQueue[T any]() *PriorityQueue[T] {
	return &PriorityQueue[T]{}
}

// Len returns the number of queued values.
func (q *PriorityQueue[T]) Len() int { return q.items.Len() }

// Enqueue inserts value with the given priority.
func (q *PriorityQueue[T]) Enqueue(value T, priority float64) {
	heap.Push(&q.items, PriorityQueueItem[T]{Value: value, Priority: priority, Sequence: q.nextSeq})
	q.nextSeq++
}

// Dequeue removes and returns the value with the lowest priority. The
// boolean is false when the queue is empty.
func (q *PriorityQueue[T]) Dequeue() (T, bool) {
	if q.items.Len() == 0 {
		var zero T
		return zero, false
	}
	item := heap.Pop(&q.items).(PriorityQueueItem[T])
	return item.Value, true
}

// PeekMany returns up to k items in dequeue order without modifying the
// queue.
func (q *PriorityQueue[T]) PeekMany(k int) []PriorityQueueItem[T] {
	if k <= 0 || q.items.Len() == 0 {
		return nil
	}
	sorted := make(itemHeap[T], len(q.items))
	copy(sorted, q.items)
	sort.Slice(sorted, sorted.Less)
	if k > len(sorted) {
		k = len(sorted)
	}
	return sorted[:k:k]
}

// Reset empties the queue and restarts the insertion sequence.
func (q *PriorityQueue[T]) Reset() {
	clear(q.items)
	q.items = q.items[:0]
	q.nextSeq = 0
}
