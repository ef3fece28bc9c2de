package kvindex

import (
	"bufio"
	"io"
	"strings"
)

// Display writes a drawing of the tree structure to w, one node per line
// with its key and color (R or B). Left children are drawn before right
// ones and marked with "L" and "R" respectively.
//
// Display is a diagnostic tool; it does not change the tree.
func (t *OrderedMap[K, V]) Display(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if t.root == sentinel {
		bw.WriteString("(empty)\n")
		return bw.Flush()
	}
	t.display(bw, t.root, "", "")
	return bw.Flush()
}

func (t *OrderedMap[K, V]) display(w *bufio.Writer, x uint32, prefix, mark string) {
	w.WriteString(prefix)
	w.WriteString(mark)
	w.WriteString(t.handle(x).String())
	w.WriteByte('\n')

	var children []uint32
	for _, c := range t.arena.nodes[x].child {
		if c != sentinel {
			children = append(children, c)
		}
	}
	switch {
	case strings.HasPrefix(mark, "├"):
		prefix += "│   "
	case mark != "":
		prefix += "    "
	}
	for i, c := range children {
		branch := "├─"
		if i == len(children)-1 {
			branch = "└─"
		}
		side := "R "
		if t.side(x, c) == left {
			side = "L "
		}
		t.display(w, c, prefix, branch+side)
	}
}
