package recommend

import (
	"container/heap"
	"sort"
)

// candidate is a scored corpus row.
type candidate struct {
	row   int
	score float64
}

// better reports whether a ranks above b: higher score first, then lower row.
func better(a, b candidate) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.row < b.row
}

// minHeap keeps the weakest retained candidate at the root.
type minHeap []candidate

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return better(h[j], h[i]) }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *minHeap) Push(x any) { *h = append(*h, x.(candidate)) }

func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}

// topK selects the k best candidates. Selection is independent of the order
// in which candidates are offered.
type topK struct {
	k int
	h minHeap
}

func newTopK(k int) *topK {
	return &topK{k: k, h: make(minHeap, 0, k)}
}

// offer considers c for inclusion.
func (t *topK) offer(c candidate) {
	if t.k <= 0 {
		return
	}
	if len(t.h) < t.k {
		heap.Push(&t.h, c)
		return
	}
	if better(c, t.h[0]) {
		t.h[0] = c
		heap.Fix(&t.h, 0)
	}
}

// merge offers every candidate retained by other.
func (t *topK) merge(other *topK) {
	for _, c := range other.h {
		t.offer(c)
	}
}

// sorted returns the retained candidates best first.
func (t *topK) sorted() []candidate {
	out := make([]candidate, len(t.h))
	copy(out, t.h)
	sort.Slice(out, func(i, j int) bool { return better(out[i], out[j]) })
	return out
}
