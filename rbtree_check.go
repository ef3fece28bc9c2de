package kvindex

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
)

// Validate checks the red-black properties of the tree: the root (and the
// sentinel) is black, no red node has a red child, every path from a node to
// the leaves has the same number of black nodes, keys are strictly
// increasing in order, and parent links match child links. Validate walks the whole tree and reports the first
// violation found for each of these classes, joined together. It returns nil
// if the tree is valid.
func (t *OrderedMap[K, V]) Validate() error {
	if t.root == sentinel {
		return nil
	}
	c := checker[K, V]{
		nodes: t.arena.nodes,
	}
	if t.arena.nodes[sentinel].color != black {
		c.report(InvariantRootColor, "sentinel is red")
	}
	if t.arena.nodes[t.root].color != black {
		c.report(InvariantRootColor, fmt.Sprintf(
			"root %v is red", t.arena.nodes[t.root].key,
		))
	}
	if p := t.arena.nodes[t.root].parent; p != sentinel {
		c.report(InvariantLinks, fmt.Sprintf(
			"root has parent #%d", p,
		))
	}
	c.walk(t.root)
	if c.count != t.size {
		c.report(InvariantLinks, fmt.Sprintf(
			"tree holds %d nodes; size is %d", c.count, t.size,
		))
	}
	return c.err()
}

// CheckInvariants reports whether Validate() finds no violations.
func (t *OrderedMap[K, V]) CheckInvariants() bool {
	return t.Validate() == nil
}

type checker[K constraints.Ordered, V any] struct {
	nodes []node[K, V]
	found [InvariantLinks + 1]*InvariantError
	count int
	prev  K
	seen  bool
}

func (c *checker[K, V]) report(kind InvariantKind, detail string) {
	if c.found[kind] == nil {
		c.found[kind] = &InvariantError{
			Kind:   kind,
			Detail: detail,
		}
	}
}

func (c *checker[K, V]) err() error {
	var errs []error
	for _, e := range c.found {
		if e != nil {
			errs = append(errs, e)
		}
	}
	return errors.Join(errs...)
}

// walk checks the subtree rooted at x and returns its black height.
func (c *checker[K, V]) walk(x uint32) int {
	if x == sentinel {
		return 0
	}
	n := &c.nodes[x]
	c.count++
	for _, ch := range n.child {
		if ch == sentinel {
			continue
		}
		if p := c.nodes[ch].parent; p != x {
			c.report(InvariantLinks, fmt.Sprintf(
				"child %v of %v links to parent #%d", c.nodes[ch].key, n.key, p,
			))
		}
		if n.color == red && c.nodes[ch].color == red {
			c.report(InvariantRedRed, fmt.Sprintf(
				"red node %v has red child %v", n.key, c.nodes[ch].key,
			))
		}
	}

	lh := c.walk(n.child[left])
	if c.seen && !(c.prev < n.key) {
		c.report(InvariantOrder, fmt.Sprintf(
			"key %v follows %v", n.key, c.prev,
		))
	}
	c.prev, c.seen = n.key, true
	rh := c.walk(n.child[right])

	if lh != rh {
		c.report(InvariantBlackHeight, fmt.Sprintf(
			"node %v has black height %d on the left and %d on the right",
			n.key, lh, rh,
		))
	}
	if n.color == black {
		lh++
	}
	return lh
}
