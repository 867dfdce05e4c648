package route

import "container/heap"

// searchItem is one frontier entry of a connection's directed search:
// node reached, the partial cost that produced it, and the (possibly
// non-admissible) lower-bound total cost used to order the heap.
type searchItem struct {
	lowerBound float64
	node       int
	partial    float64
	prev       int
}

// searchHeap is a container/heap priority queue over searchItem, the same
// slice-backed pattern the simulation engine's event queue uses. Its
// decrease-key is reinsertion: a cheaper path to an already-queued node is
// pushed again, and the stale, more expensive entry is skipped on pop.
type searchHeap []searchItem

func (h searchHeap) Len() int            { return len(h) }
func (h searchHeap) Less(i, j int) bool  { return h[i].lowerBound < h[j].lowerBound }
func (h searchHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *searchHeap) Push(x interface{}) { *h = append(*h, x.(searchItem)) }

func (h *searchHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]

	return item
}

func newSearchQueue() *searchHeap {
	q := &searchHeap{}
	heap.Init(q)

	return q
}

func (h *searchHeap) push(item searchItem) {
	heap.Push(h, item)
}

func (h *searchHeap) pop() searchItem {
	return heap.Pop(h).(searchItem)
}
