package kvindex

import (
	"golang.org/x/exp/constraints"
)

// OrderedMap is an ordered map implemented as a red-black tree.
//
// Nodes are kept in an arena and linked by indices; index zero is the shared
// black sentinel, which is the child of every leaf and the parent of the
// root.
//
// OrderedMap is not goroutine safe. Callers must serialize access to it.
// The zero value for OrderedMap is an empty map ready to use.
type OrderedMap[K constraints.Ordered, V any] struct {
	arena arena[K, V]
	root  uint32
	size  int

	trace traceTree
}

// Entry is a key-value pair stored in the OrderedMap.
type Entry[K constraints.Ordered, V any] struct {
	Key   K
	Value V
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap[K constraints.Ordered, V any]() *OrderedMap[K, V] {
	t := new(OrderedMap[K, V])
	t.arena.init()
	return t
}

// Len returns the number of entries in the map.
func (t *OrderedMap[K, V]) Len() int {
	return t.size
}

// Insert puts value under key into the map.
// It returns ErrDuplicateKey if key is already present; the existing value
// is not overwritten. Float NaN keys are rejected with ErrInvalidKey.
func (t *OrderedMap[K, V]) Insert(key K, value V) (err error) {
	if debug {
		done := t.trace.onInsert(key)
		defer func() {
			done(err)
		}()
	}
	if isNaN(key) {
		return ErrInvalidKey
	}
	t.arena.init()

	parent := sentinel
	for x := t.root; x != sentinel; {
		parent = x
		n := &t.arena.nodes[x]
		switch {
		case key < n.key:
			x = n.child[left]
		case key > n.key:
			x = n.child[right]
		default:
			return ErrDuplicateKey
		}
	}
	z, err := t.arena.alloc()
	if err != nil {
		return err
	}
	nodes := t.arena.nodes
	nodes[z].key = key
	nodes[z].value = value
	nodes[z].parent = parent
	nodes[z].child = [2]uint32{sentinel, sentinel}
	nodes[z].color = red
	switch {
	case parent == sentinel:
		t.root = z
	case key < nodes[parent].key:
		nodes[parent].child[left] = z
	default:
		nodes[parent].child[right] = z
	}
	t.size++

	t.insertFixup(z)
	assertTree(t)

	return nil
}

// Search returns a handle to the node holding key.
// It returns ErrNotFound if there is no such key.
func (t *OrderedMap[K, V]) Search(key K) (Node[K, V], error) {
	if x := t.search(key); x != sentinel {
		return t.handle(x), nil
	}
	return Node[K, V]{}, ErrNotFound
}

// Get returns value stored under key.
// It returns ErrNotFound if there is no such key.
func (t *OrderedMap[K, V]) Get(key K) (value V, err error) {
	x := t.search(key)
	if x == sentinel {
		return value, ErrNotFound
	}
	return t.arena.nodes[x].value, nil
}

// Has reports whether key is present in the map.
func (t *OrderedMap[K, V]) Has(key K) bool {
	return t.search(key) != sentinel
}

// Delete removes node n from the map.
// It returns ErrInvalidNode if n does not refer to a live node of t.
//
// When n has two children its in-order successor's entry is moved into n's
// place, so handles to both n and its successor become invalid.
func (t *OrderedMap[K, V]) Delete(n Node[K, V]) (err error) {
	if !t.owns(n) {
		return ErrInvalidNode
	}
	if debug {
		done := t.trace.onDelete(t.arena.nodes[n.index].key)
		defer func() {
			done(err)
		}()
	}
	t.delete(n.index)
	assertTree(t)
	return nil
}

// DeleteKey removes key from the map.
// It returns ErrNotFound if there is no such key.
func (t *OrderedMap[K, V]) DeleteKey(key K) error {
	n, err := t.Search(key)
	if err != nil {
		return err
	}
	return t.Delete(n)
}

// Min returns the node with the smallest key.
// It returns ErrNotFound if the map is empty.
func (t *OrderedMap[K, V]) Min() (Node[K, V], error) {
	if t.root == sentinel {
		return Node[K, V]{}, ErrNotFound
	}
	return t.handle(t.min(t.root)), nil
}

// Max returns the node with the largest key.
// It returns ErrNotFound if the map is empty.
func (t *OrderedMap[K, V]) Max() (Node[K, V], error) {
	if t.root == sentinel {
		return Node[K, V]{}, ErrNotFound
	}
	return t.handle(t.max(t.root)), nil
}

// Successor returns the node with the smallest key greater than n's key.
// It returns ErrNotFound if n holds the largest key.
func (t *OrderedMap[K, V]) Successor(n Node[K, V]) (Node[K, V], error) {
	if !t.owns(n) {
		return Node[K, V]{}, ErrInvalidNode
	}
	if x := t.successor(n.index); x != sentinel {
		return t.handle(x), nil
	}
	return Node[K, V]{}, ErrNotFound
}

// Predecessor returns the node with the largest key less than n's key.
// It returns ErrNotFound if n holds the smallest key.
func (t *OrderedMap[K, V]) Predecessor(n Node[K, V]) (Node[K, V], error) {
	if !t.owns(n) {
		return Node[K, V]{}, ErrInvalidNode
	}
	if x := t.predecessor(n.index); x != sentinel {
		return t.handle(x), nil
	}
	return Node[K, V]{}, ErrNotFound
}

// InOrder calls fn for every entry in ascending key order until fn returns
// false. It returns false if iteration was stopped by fn.
// The map must not be modified during iteration.
func (t *OrderedMap[K, V]) InOrder(fn func(key K, value V) bool) bool {
	if t.root == sentinel {
		return true
	}
	for x := t.min(t.root); x != sentinel; x = t.successor(x) {
		n := &t.arena.nodes[x]
		if !fn(n.key, n.value) {
			return false
		}
	}
	return true
}

// Entries returns all entries in ascending key order.
func (t *OrderedMap[K, V]) Entries() []Entry[K, V] {
	ret := make([]Entry[K, V], 0, t.size)
	t.InOrder(func(key K, value V) bool {
		ret = append(ret, Entry[K, V]{
			Key:   key,
			Value: value,
		})
		return true
	})
	return ret
}

// Depth returns the number of nodes on the longest path from the root to a
// leaf. It returns 0 for an empty map.
func (t *OrderedMap[K, V]) Depth() int {
	return t.depth(t.root)
}

// Destroy releases all nodes of the map at once. Every handle obtained
// before becomes invalid. The map is empty and ready to use afterwards.
func (t *OrderedMap[K, V]) Destroy() {
	t.arena.reset()
	t.root = sentinel
	t.size = 0
}

func (t *OrderedMap[K, V]) handle(x uint32) Node[K, V] {
	return Node[K, V]{
		tree:  t,
		index: x,
		gen:   t.arena.nodes[x].gen,
	}
}

func (t *OrderedMap[K, V]) owns(n Node[K, V]) bool {
	return n.tree == t && t.arena.live(n.index, n.gen)
}

func (t *OrderedMap[K, V]) search(key K) uint32 {
	if isNaN(key) {
		// NaN compares neither less nor greater than any key.
		return sentinel
	}
	x := t.root
	for x != sentinel {
		n := &t.arena.nodes[x]
		switch {
		case key < n.key:
			x = n.child[left]
		case key > n.key:
			x = n.child[right]
		default:
			return x
		}
	}
	return sentinel
}

// min returns the leftmost node of the subtree rooted at x.
func (t *OrderedMap[K, V]) min(x uint32) uint32 {
	return t.extreme(x, left)
}

// max returns the rightmost node of the subtree rooted at x.
func (t *OrderedMap[K, V]) max(x uint32) uint32 {
	return t.extreme(x, right)
}

func (t *OrderedMap[K, V]) extreme(x uint32, dir int) uint32 {
	nodes := t.arena.nodes
	for nodes[x].child[dir] != sentinel {
		x = nodes[x].child[dir]
	}
	return x
}

func (t *OrderedMap[K, V]) successor(x uint32) uint32 {
	return t.next(x, right)
}

func (t *OrderedMap[K, V]) predecessor(x uint32) uint32 {
	return t.next(x, left)
}

// next returns the closest node to x in given direction.
func (t *OrderedMap[K, V]) next(x uint32, dir int) uint32 {
	nodes := t.arena.nodes
	if c := nodes[x].child[dir]; c != sentinel {
		return t.extreme(c, 1-dir)
	}
	p := nodes[x].parent
	for p != sentinel && x == nodes[p].child[dir] {
		x = p
		p = nodes[p].parent
	}
	return p
}

// isNaN reports whether k is a float NaN, which has no place in a total
// order.
func isNaN[K constraints.Ordered](k K) bool {
	return k != k
}

func (t *OrderedMap[K, V]) depth(x uint32) int {
	if x == sentinel {
		return 0
	}
	n := &t.arena.nodes[x]
	l := t.depth(n.child[left])
	r := t.depth(n.child[right])
	if l > r {
		return l + 1
	}
	return r + 1
}
