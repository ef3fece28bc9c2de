package kvindex

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

type color uint8

// Zero value is black, so the zero node is a valid sentinel.
const (
	black color = iota
	red
)

func (c color) String() string {
	if c == red {
		return "R"
	}
	return "B"
}

// Child link indices.
const (
	left  = 0
	right = 1
)

// sentinel is the index of the shared black leaf. It is the child of every
// leaf and the parent of the root.
const sentinel uint32 = 0

// MaxNodes is the maximum number of live nodes an OrderedMap may hold.
const MaxNodes = math.MaxUint32 - 1

type node[K constraints.Ordered, V any] struct {
	key   K
	value V

	parent uint32
	child  [2]uint32

	// gen is the allocation generation of the node.
	// It is zero for the sentinel and for released nodes.
	gen uint64

	color color
}

// arena owns the storage of all tree nodes. Nodes refer to each other by
// index; index 0 is reserved for the sentinel.
type arena[K constraints.Ordered, V any] struct {
	nodes []node[K, V]
	free  []uint32

	// gen is the last generation handed out. It is never reset, so a
	// generation identifies a single allocation for the arena's lifetime.
	gen uint64

	// limit overrides MaxNodes when non-zero.
	limit int
}

func (a *arena[K, V]) init() {
	if len(a.nodes) == 0 {
		a.nodes = append(a.nodes, node[K, V]{color: black})
	}
}

func (a *arena[K, V]) alloc() (uint32, error) {
	a.init()
	a.gen++
	if n := len(a.free); n > 0 {
		i := a.free[n-1]
		a.free = a.free[:n-1]
		a.nodes[i].gen = a.gen
		return i, nil
	}
	limit := uint64(MaxNodes)
	if a.limit > 0 {
		limit = uint64(a.limit)
	}
	if uint64(len(a.nodes)-1) >= limit {
		return sentinel, fmt.Errorf(
			"%w: tree is limited to %d nodes", ErrAllocation, limit,
		)
	}
	a.nodes = append(a.nodes, node[K, V]{gen: a.gen})
	return uint32(len(a.nodes) - 1), nil
}

func (a *arena[K, V]) release(i uint32) {
	if i == sentinel {
		panic("kvindex: internal error: sentinel node can not be released")
	}
	if a.nodes[i].gen == 0 {
		panic("kvindex: internal error: node released twice")
	}
	a.nodes[i] = node[K, V]{}
	a.free = append(a.free, i)
}

// reset drops all nodes at once.
func (a *arena[K, V]) reset() {
	a.nodes = nil
	a.free = nil
}

// live reports whether i refers to an allocated node of generation gen.
func (a *arena[K, V]) live(i uint32, gen uint64) bool {
	return i != sentinel &&
		int(i) < len(a.nodes) &&
		gen != 0 &&
		a.nodes[i].gen == gen
}

// Node is a handle to a node of an OrderedMap.
//
// A handle stays valid until the node it refers to is deleted, or the node's
// entry is replaced by its successor's during deletion of another node, or
// the tree is destroyed. Invalid handles are rejected with ErrInvalidNode.
// The zero Node is never valid.
type Node[K constraints.Ordered, V any] struct {
	tree  *OrderedMap[K, V]
	index uint32
	gen   uint64
}

// Valid reports whether n refers to a live node.
func (n Node[K, V]) Valid() bool {
	return n.tree != nil && n.tree.arena.live(n.index, n.gen)
}

// Key returns the key of the node. It returns zero value if n is not valid.
func (n Node[K, V]) Key() (key K) {
	if n.Valid() {
		key = n.tree.arena.nodes[n.index].key
	}
	return key
}

// Value returns the value of the node. It returns zero value if n is not
// valid.
func (n Node[K, V]) Value() (value V) {
	if n.Valid() {
		value = n.tree.arena.nodes[n.index].value
	}
	return value
}

func (n Node[K, V]) String() string {
	if !n.Valid() {
		return "<invalid node>"
	}
	x := &n.tree.arena.nodes[n.index]
	return fmt.Sprintf("%v:%s", x.key, x.color)
}
