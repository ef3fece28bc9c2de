package kvindex

// rotate rotates the subtree rooted at x in given direction: x goes down
// to become the dir child of its opposite child, which takes x's place.
// Colors are not changed.
func (t *OrderedMap[K, V]) rotate(x uint32, dir int) {
	nodes := t.arena.nodes
	opp := 1 - dir

	y := nodes[x].child[opp]
	b := nodes[y].child[dir]
	nodes[x].child[opp] = b
	if b != sentinel {
		nodes[b].parent = x
	}

	p := nodes[x].parent
	nodes[y].parent = p
	switch {
	case p == sentinel:
		t.root = y
	case nodes[p].child[left] == x:
		nodes[p].child[left] = y
	default:
		nodes[p].child[right] = y
	}

	nodes[y].child[dir] = x
	nodes[x].parent = y
}

// side returns the direction of x relative to its parent p.
func (t *OrderedMap[K, V]) side(p, x uint32) int {
	if t.arena.nodes[p].child[left] == x {
		return left
	}
	return right
}

// insertFixup restores red-black properties after insertion of red node z.
func (t *OrderedMap[K, V]) insertFixup(z uint32) {
	nodes := t.arena.nodes
	if debug {
		t.trace.onFixup(nodes[z].key, true)
	}
	for nodes[nodes[z].parent].color == red {
		p := nodes[z].parent
		g := nodes[p].parent // Exists because the root is black.
		dir := t.side(g, p)
		uncle := nodes[g].child[1-dir]

		if nodes[uncle].color == red {
			nodes[p].color = black
			nodes[uncle].color = black
			nodes[g].color = red
			z = g
			continue
		}
		if t.side(p, z) != dir {
			// Inner grandchild: lift z over both p and g.
			nodes[z].color = black
			nodes[g].color = red
			t.rotate(p, dir)
			t.rotate(g, 1-dir)
		} else {
			// Outer grandchild: lift p over g.
			nodes[p].color = black
			nodes[g].color = red
			t.rotate(g, 1-dir)
		}
		break
	}
	nodes[t.root].color = black
}

// delete unlinks node z from the tree and releases its storage.
func (t *OrderedMap[K, V]) delete(z uint32) {
	nodes := t.arena.nodes

	// y is the node physically removed: z itself, or z's successor when z has
	// two children.
	y := z
	if nodes[z].child[left] != sentinel && nodes[z].child[right] != sentinel {
		y = t.min(nodes[z].child[right])
	}
	x := nodes[y].child[left]
	if x == sentinel {
		x = nodes[y].child[right]
	}

	// NOTE: x may be the sentinel; its parent link is used by the fixup and
	// reset below.
	p := nodes[y].parent
	nodes[x].parent = p
	switch {
	case p == sentinel:
		t.root = x
	case nodes[p].child[left] == y:
		nodes[p].child[left] = x
	default:
		nodes[p].child[right] = x
	}

	if y != z {
		nodes[z].key = nodes[y].key
		nodes[z].value = nodes[y].value
		// Handles to z must not silently refer to the moved entry.
		t.arena.gen++
		nodes[z].gen = t.arena.gen
	}
	if nodes[y].color == black {
		t.deleteFixup(x)
	}
	nodes[sentinel].parent = sentinel

	t.arena.release(y)
	t.size--
}

// deleteFixup restores red-black properties after removal of a black node
// whose place was taken by x.
func (t *OrderedMap[K, V]) deleteFixup(x uint32) {
	nodes := t.arena.nodes
	if debug {
		t.trace.onFixup(nodes[nodes[x].parent].key, false)
	}
	for x != t.root && nodes[x].color == black {
		p := nodes[x].parent
		dir := t.side(p, x)
		opp := 1 - dir
		w := nodes[p].child[opp]

		if nodes[w].color == red {
			nodes[w].color = black
			nodes[p].color = red
			t.rotate(p, dir)
			w = nodes[p].child[opp]
		}
		near := nodes[w].child[dir]
		far := nodes[w].child[opp]
		if nodes[near].color == black && nodes[far].color == black {
			nodes[w].color = red
			x = p // Red parent terminates the loop and absorbs the deficit.
			continue
		}
		if nodes[far].color == black {
			// Only the near child is red: turn it into the far case.
			nodes[near].color = black
			nodes[w].color = red
			t.rotate(w, opp)
			w = nodes[p].child[opp]
			far = nodes[w].child[opp]
		}
		nodes[w].color = nodes[p].color
		nodes[p].color = black
		nodes[far].color = black
		t.rotate(p, dir)
		x = t.root
	}
	nodes[x].color = black
}
