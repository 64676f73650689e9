package util

import (
	"container/heap"
	"errors"
)

var ErrEmptyQueue = errors.New("priority queue is empty")

type pqEntry[T comparable] struct {
	item     T
	priority float64
	seq      uint64
	index    int
}

type pqHeap[T comparable] []*pqEntry[T]

func (h pqHeap[T]) Len() int { return len(h) }

func (h pqHeap[T]) Less(i, j int) bool {
	if h[i].priority == h[j].priority {
		return h[i].seq < h[j].seq
	}
	return h[i].priority > h[j].priority
}

func (h pqHeap[T]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *pqHeap[T]) Push(x any) {
	e := x.(*pqEntry[T])
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *pqHeap[T]) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// PQueue is a max priority queue holding each item at most once, always
// at the highest priority it was pushed with. Equal priorities pop in
// insertion order.
type PQueue[T comparable] struct {
	heap    pqHeap[T]
	entries map[T]*pqEntry[T]
	seq     uint64
}

func NewPQueue[T comparable]() *PQueue[T] {
	return &PQueue[T]{
		heap:    make(pqHeap[T], 0),
		entries: make(map[T]*pqEntry[T]),
	}
}

// Push inserts the item, or replaces its entry if priority is strictly
// higher than the queued one. Returns true if the queue changed.
func (q *PQueue[T]) Push(item T, priority float64) bool {
	if e, ok := q.entries[item]; ok {
		if e.priority >= priority {
			return false
		}
		heap.Remove(&q.heap, e.index)
		delete(q.entries, item)
	}
	q.seq += 1
	e := &pqEntry[T]{item: item, priority: priority, seq: q.seq}
	heap.Push(&q.heap, e)
	q.entries[item] = e
	return true
}

// Pop removes the highest priority item
func (q *PQueue[T]) Pop() (T, error) {
	if len(q.heap) == 0 {
		var zero T
		return zero, ErrEmptyQueue
	}
	e := heap.Pop(&q.heap).(*pqEntry[T])
	delete(q.entries, e.item)
	return e.item, nil
}

// Remove drops the item if queued
func (q *PQueue[T]) Remove(item T) bool {
	e, ok := q.entries[item]
	if !ok {
		return false
	}
	heap.Remove(&q.heap, e.index)
	delete(q.entries, item)
	return true
}

func (q *PQueue[T]) Priority(item T) (float64, bool) {
	e, ok := q.entries[item]
	if !ok {
		return 0, false
	}
	return e.priority, true
}

func (q *PQueue[T]) IsEmpty() bool {
	return len(q.heap) == 0
}

func (q *PQueue[T]) Len() int {
	return len(q.heap)
}

func (q *PQueue[T]) Clear() {
	q.heap = make(pqHeap[T], 0)
	q.entries = make(map[T]*pqEntry[T])
}
