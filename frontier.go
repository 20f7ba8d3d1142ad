package search

import "container/heap"

// frontier is the open set of arena indices awaiting expansion.
// Duplicate states are allowed; they are dropped when popped.
type frontier interface {
	push(node int, priority float64)
	pop() int
	len() int
	nodes() []int
}

func newFrontier(strategy Strategy) frontier {
	switch strategy {
	case BreadthFirst:
		return &fifoFrontier{}
	case DepthFirst:
		return &lifoFrontier{}
	default:
		queue := &heapFrontier{}
		heap.Init(&queue.queue)
		return queue
	}
}

type fifoFrontier struct {
	items []int
	head  int
}

func (f *fifoFrontier) push(node int, _ float64) { f.items = append(f.items, node) }

func (f *fifoFrontier) pop() int {
	node := f.items[f.head]
	f.head++
	if f.head > 64 && f.head*2 > len(f.items) {
		f.items = append(f.items[:0], f.items[f.head:]...)
		f.head = 0
	}
	return node
}

func (f *fifoFrontier) len() int { return len(f.items) - f.head }

func (f *fifoFrontier) nodes() []int { return append([]int(nil), f.items[f.head:]...) }

type lifoFrontier struct {
	items []int
}

func (f *lifoFrontier) push(node int, _ float64) { f.items = append(f.items, node) }

func (f *lifoFrontier) pop() int {
	n := len(f.items)
	node := f.items[n-1]
	f.items = f.items[:n-1]
	return node
}

func (f *lifoFrontier) len() int { return len(f.items) }

func (f *lifoFrontier) nodes() []int { return append([]int(nil), f.items...) }

type heapFrontier struct {
	queue    PriorityQueue
	sequence uint64
}

func (f *heapFrontier) push(node int, priority float64) {
	heap.Push(&f.queue, &PriorityQueueItem{Node: node, Priority: priority, Sequence: f.sequence})
	f.sequence++
}

func (f *heapFrontier) pop() int {
	return heap.Pop(&f.queue).(*PriorityQueueItem).Node
}

func (f *heapFrontier) len() int { return f.queue.Len() }

func (f *heapFrontier) nodes() []int {
	out := make([]int, 0, len(f.queue))
	for _, item := range f.queue {
		out = append(out, item.Node)
	}
	return out
}
