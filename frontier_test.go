package search

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"
)

func drain(f frontier) []int {
	var out []int
	for f.len() > 0 {
		out = append(out, f.pop())
	}
	return out
}

func TestFrontier_Ordering(t *testing.T) {
	tests := []struct {
		strategy Strategy
		want     []int
	}{
		{BreadthFirst, []int{0, 1, 2, 3, 4}},
		{DepthFirst, []int{4, 3, 2, 1, 0}},
		// priorities 3,1,3,1,2: ties keep insertion order
		{UniformCost, []int{1, 3, 4, 0, 2}},
	}
	priorities := []float64{3, 1, 3, 1, 2}
	for _, tt := range tests {
		t.Run(tt.strategy.String(), func(t *testing.T) {
			f := newFrontier(tt.strategy)
			for node, priority := range priorities {
				f.push(node, priority)
			}
			assert.Equal(t, len(priorities), f.len())
			assert.ElementsMatch(t, []int{0, 1, 2, 3, 4}, f.nodes())
			assert.Equal(t, tt.want, drain(f))
		})
	}
}

func TestFrontier_FIFOCompaction(t *testing.T) {
	f := newFrontier(BreadthFirst)
	next := 0
	for i := 0; i < 500; i++ {
		f.push(i, 0)
		if i%2 == 1 {
			assert.Equal(t, next, f.pop())
			next++
		}
	}
	assert.Equal(t, 250, f.len())
	rest := drain(f)
	assert.Equal(t, 250, rest[0])
	assert.Equal(t, 499, rest[len(rest)-1])
}

func TestFrontier_HeapInterleaved(t *testing.T) {
	f := newFrontier(AStar)
	f.push(10, 5)
	f.push(11, 2)
	assert.Equal(t, 11, f.pop())
	f.push(12, 5)
	f.push(13, 1)
	assert.Equal(t, []int{13, 10, 12}, drain(f))
}

func TestPriorityQueue_HeapOrder(t *testing.T) {
	queue := &PriorityQueue{}
	items := []PriorityQueueItem{{Node: 0, Priority: 2}, {Node: 1, Priority: 1}, {Node: 2, Priority: 2}, {Node: 3, Priority: 0.5}}
	for i := range items {
		items[i].Sequence = uint64(i)
		heap.Push(queue, &items[i])
	}
	var order []int
	for queue.Len() > 0 {
		order = append(order, heap.Pop(queue).(*PriorityQueueItem).Node)
	}
	assert.Equal(t, []int{3, 1, 0, 2}, order)
	assert.Empty(t, *queue)
}

func TestTrace_Idempotent(t *testing.T) {
	nodes := []Node[string]{
		{State: "root", Parent: -1, Action: NoAction},
		{State: "a", Parent: 0, Action: 2, PathCost: 1.5, Depth: 1},
		{State: "b", Parent: 1, Action: 0, PathCost: 4, Depth: 2},
		{State: "c", Parent: 0, Action: 1, PathCost: 1, Depth: 1},
	}
	first := Trace(nodes, 2)
	second := Trace(nodes, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, []Operator{2, 0}, Actions(first))
	assert.Equal(t, "b", first[2].State)
	assert.Equal(t, 4.0, first[2].Cost)
	assert.True(t, nodes[0].IsRoot())
	assert.False(t, nodes[3].IsRoot())

	assert.Nil(t, Trace(nodes, 7))
	assert.Len(t, Trace(nodes, 0), 1)
}
