// Package tree implements an append-only binary search tree whose nodes live
// in a single slice and refer to each other by index.
//
// Indices are assigned in append order and stay valid for the lifetime of the
// tree; nodes are never removed or moved. A Tree is not safe for concurrent
// use.
package tree

import "iter"

// Index addresses a node inside a Tree. None marks an absent link.
type Index int

const None Index = -1

// Valid reports whether i refers to a node slot at all (it may still be out of
// bounds for a particular tree).
func (i Index) Valid() bool { return i >= 0 }

type Node[V any] struct {
	Index  Index
	Left   Index
	Right  Index
	Parent Index
	Value  V
}

type Tree[V any] struct {
	nodes []Node[V]
	cmp   func(a, b V) int
}

// New returns an empty tree ordered by cmp, which must return a negative
// number, zero or a positive number when a is less than, equal to or greater
// than b.
func New[V any](cmp func(a, b V) int) *Tree[V] {
	return &Tree[V]{cmp: cmp}
}

func (t *Tree[V]) Len() int { return len(t.nodes) }

// PopulateFromSorted builds a balanced subtree from sorted, which must already
// be ascending under the tree's ordering. The middle element (len/2) becomes
// the subtree root, so node indices come out in pre-order. parent is recorded
// as the root's Parent; the caller is responsible for linking the returned
// root into an existing node if parent is not None.
//
// Calling it on a non-empty tree appends a second, disconnected subtree.
func (t *Tree[V]) PopulateFromSorted(parent Index, sorted []V) Index {
	if len(sorted) == 0 {
		return None
	}
	mid := len(sorted) / 2
	idx := t.push(sorted[mid], parent)

	left := t.PopulateFromSorted(idx, sorted[:mid])
	t.nodes[idx].Left = left

	right := t.PopulateFromSorted(idx, sorted[mid+1:])
	t.nodes[idx].Right = right

	return idx
}

// At returns a copy of the node at i. Absent and out-of-range indices are
// reported as not found.
func (t *Tree[V]) At(i Index) (Node[V], bool) {
	if !t.inBounds(i) {
		return Node[V]{}, false
	}
	return t.nodes[i], true
}

// ValAt returns the value stored at i.
func (t *Tree[V]) ValAt(i Index) (V, bool) {
	n, ok := t.At(i)
	return n.Value, ok
}

// Add walks down from start looking for a value equal to v. If one exists a
// pointer to it is returned and nothing is inserted; otherwise v is appended as
// a new leaf (smaller values to the left) and a pointer to the stored copy is
// returned. The pointer is valid until the next insertion.
//
// On an empty tree v becomes node 0 and start is ignored. A start outside the
// tree falls back to node 0. The tree is never rebalanced.
func (t *Tree[V]) Add(v V, start Index) *V {
	if len(t.nodes) == 0 {
		return &t.nodes[t.push(v, None)].Value
	}
	cur := start
	if !t.inBounds(cur) {
		cur = 0
	}
	for {
		c := t.cmp(v, t.nodes[cur].Value)
		if c == 0 {
			return &t.nodes[cur].Value
		}
		next := t.nodes[cur].Right
		if c < 0 {
			next = t.nodes[cur].Left
		}
		if t.inBounds(next) {
			cur = next
			continue
		}
		idx := t.push(v, cur)
		if c < 0 {
			t.nodes[cur].Left = idx
		} else {
			t.nodes[cur].Right = idx
		}
		return &t.nodes[idx].Value
	}
}

// All yields every node in arena order, which is pre-order for a bulk-loaded
// tree followed by later insertions in the order they were made.
func (t *Tree[V]) All() iter.Seq[Node[V]] {
	return func(yield func(Node[V]) bool) {
		for _, n := range t.nodes {
			if !yield(n) {
				return
			}
		}
	}
}

// InOrder yields the values of the subtree rooted at root in ascending order.
func (t *Tree[V]) InOrder(root Index) iter.Seq[V] {
	return func(yield func(V) bool) {
		var stack []Index
		cur := root
		for t.inBounds(cur) || len(stack) > 0 {
			for t.inBounds(cur) {
				stack = append(stack, cur)
				cur = t.nodes[cur].Left
			}
			cur = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(t.nodes[cur].Value) {
				return
			}
			cur = t.nodes[cur].Right
		}
	}
}

func (t *Tree[V]) push(v V, parent Index) Index {
	idx := Index(len(t.nodes))
	t.nodes = append(t.nodes, Node[V]{
		Index:  idx,
		Left:   None,
		Right:  None,
		Parent: parent,
		Value:  v,
	})
	return idx
}

func (t *Tree[V]) inBounds(i Index) bool {
	return i >= 0 && int(i) < len(t.nodes)
}
