// Package queue provides a value-based binary heap over (position, distance)
// pairs and a bounded top-k collector built on it.
package queue

import "slices"

// Item is an entry of the queue.
type Item struct {
	Pos      int     // Pos is the array position of the point.
	Distance float64 // Distance is the priority of the item in the queue.
}

// PriorityQueue is a binary heap of Items. Ties on Distance are ordered by Pos.
type PriorityQueue struct {
	isMaxHeap bool
	items     []Item
}

// NewMin initializes a new priority queue with minimum priority.
func NewMin(capacity int) *PriorityQueue {
	return &PriorityQueue{items: make([]Item, 0, capacity)}
}

// NewMax initializes a new priority queue with maximum priority.
func NewMax(capacity int) *PriorityQueue {
	return &PriorityQueue{isMaxHeap: true, items: make([]Item, 0, capacity)}
}

// Len returns the number of elements in the priority queue.
func (pq *PriorityQueue) Len() int { return len(pq.items) }

// Top returns the top element of the heap.
func (pq *PriorityQueue) Top() (Item, bool) {
	if len(pq.items) == 0 {
		return Item{}, false
	}
	return pq.items[0], true
}

// Push inserts an item while maintaining the heap invariant.
func (pq *PriorityQueue) Push(item Item) {
	pq.items = append(pq.items, item)
	pq.siftUp(len(pq.items) - 1)
}

// Pop removes and returns the top element while maintaining the heap invariant.
func (pq *PriorityQueue) Pop() (Item, bool) {
	n := len(pq.items)
	if n == 0 {
		return Item{}, false
	}
	root := pq.items[0]
	last := pq.items[n-1]
	pq.items = pq.items[:n-1]
	if n-1 > 0 {
		pq.items[0] = last
		pq.siftDown(0)
	}
	return root, true
}

// ReplaceTop overwrites the top element and restores the heap invariant.
func (pq *PriorityQueue) ReplaceTop(item Item) {
	pq.items[0] = item
	pq.siftDown(0)
}

func (pq *PriorityQueue) less(i, j int) bool {
	a, b := pq.items[i], pq.items[j]
	if pq.isMaxHeap {
		a, b = b, a
	}
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Pos < b.Pos
}

func (pq *PriorityQueue) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !pq.less(i, p) {
			return
		}
		pq.items[i], pq.items[p] = pq.items[p], pq.items[i]
		i = p
	}
}

func (pq *PriorityQueue) siftDown(i int) {
	n := len(pq.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		r := l + 1
		if r < n && pq.less(r, l) {
			best = r
		}
		if !pq.less(best, i) {
			return
		}
		pq.items[i], pq.items[best] = pq.items[best], pq.items[i]
		i = best
	}
}

// TopK keeps the k items with the smallest distance seen so far.
type TopK struct {
	k  int
	pq *PriorityQueue
}

// NewTopK returns an empty collector for k items.
func NewTopK(k int) *TopK {
	return &TopK{k: k, pq: NewMax(k)}
}

// Offer adds the item if it is among the k closest so far. On equal distance the
// earlier offered item is kept.
func (t *TopK) Offer(pos int, dist float64) {
	if t.pq.Len() < t.k {
		t.pq.Push(Item{Pos: pos, Distance: dist})
		return
	}
	if top, _ := t.pq.Top(); dist < top.Distance {
		t.pq.ReplaceTop(Item{Pos: pos, Distance: dist})
	}
}

// Bound returns the current k-th distance. ok is false while fewer than k items
// have been offered.
func (t *TopK) Bound() (float64, bool) {
	if t.pq.Len() < t.k {
		return 0, false
	}
	top, _ := t.pq.Top()
	return top.Distance, true
}

// Items returns the collected items ordered by distance, then position.
func (t *TopK) Items() []Item {
	out := slices.Clone(t.pq.items)
	slices.SortFunc(out, func(a, b Item) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return a.Pos - b.Pos
	})
	return out
}
