package kvindex

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
)

// presetHasher returns preset sums for some keys and xxHash64 sums for the
// others. It lets tests build colliding probe runs.
type presetHasher struct {
	t      testing.TB
	values map[string]uint64
}

func (h presetHasher) Sum(key string) (uint64, error) {
	if key == "" {
		return 0, ErrInvalidKey
	}
	if v, has := h.values[key]; has {
		h.t.Logf("using preset sum for %q: %d", key, v)
		return v, nil
	}
	return xxDigest([]byte(key)), nil
}

func xxDigest(p []byte) uint64 {
	h := xxhash.New()
	_, err := h.Write(p)
	if err != nil {
		panic(err)
	}
	return h.Sum64()
}

type treeAction interface {
	fmt.Stringer
	apply(*OrderedMap[int, string]) error
}

type insertTreeAction struct {
	key int
}

func insertKey(key int) insertTreeAction {
	return insertTreeAction{key}
}

func (i insertTreeAction) String() string {
	return fmt.Sprintf("insert %d", i.key)
}

func (i insertTreeAction) apply(t *OrderedMap[int, string]) error {
	return t.Insert(i.key, valueOf(i.key))
}

type deleteTreeAction struct {
	key int
}

func deleteKey(key int) deleteTreeAction {
	return deleteTreeAction{key}
}

func (d deleteTreeAction) String() string {
	return fmt.Sprintf("delete %d", d.key)
}

func (d deleteTreeAction) apply(t *OrderedMap[int, string]) error {
	return t.DeleteKey(d.key)
}

func valueOf(key int) string {
	return fmt.Sprintf("v%d", key)
}

func applyActions(t testing.TB, tree *OrderedMap[int, string], actions ...treeAction) {
	for _, a := range actions {
		if err := a.apply(tree); err != nil {
			t.Fatalf("can't apply action %s: %v", a, err)
		}
		if err := tree.Validate(); err != nil {
			t.Fatalf("tree is broken after %s: %v", a, err)
		}
	}
}

func makeTree(t testing.TB, keys ...int) *OrderedMap[int, string] {
	tree := NewOrderedMap[int, string]()
	for _, key := range keys {
		applyActions(t, tree, insertKey(key))
	}
	return tree
}

func insertActions(keys ...int) []treeAction {
	ret := make([]treeAction, len(keys))
	for i, key := range keys {
		ret[i] = insertKey(key)
	}
	return ret
}

func deleteActions(keys ...int) []treeAction {
	ret := make([]treeAction, len(keys))
	for i, key := range keys {
		ret[i] = deleteKey(key)
	}
	return ret
}

func permActions[T any](actions ...T) (ret [][]T) {
	var f func(x T, xs []T) [][]T
	f = func(x T, xs []T) (ret [][]T) {
		if len(xs) == 0 {
			return [][]T{{x}}
		}
		for _, ps := range f(xs[0], xs[1:]) {
			// Append current action to the end of received actions.
			// Below we will swap it with every element in the slice.
			ps = append(ps, x)

			last := len(ps) - 1
			for i := 0; i < len(ps); i++ {
				cp := append(([]T)(nil), ps...)
				cp[i], cp[last] = cp[last], cp[i]
				ret = append(ret, cp)
			}
		}
		return ret
	}
	return f(actions[0], actions[1:])
}

func actionsString[T fmt.Stringer](actions []T) string {
	var sb strings.Builder
	for i, a := range actions {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	return sb.String()
}

func treeKeys(tree *OrderedMap[int, string]) (keys []int) {
	tree.InOrder(func(key int, _ string) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func sortedKeys(set map[int]string) []int {
	keys := make([]int, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Ints(keys)
	return keys
}

// mutation is a single step of a random workload.
type mutation struct {
	insert bool
	key    int
}

func (m mutation) String() string {
	if m.insert {
		return fmt.Sprintf("insert %d", m.key)
	}
	return fmt.Sprintf("delete %d", m.key)
}

// randomMutations returns n mutations over keys in [0, keys). Inserts are
// twice as likely as deletes in the first half of the sequence and half as
// likely in the second one, so structures both grow and drain.
func randomMutations(rnd *rand.Rand, n, keys int) []mutation {
	ret := make([]mutation, n)
	for i := range ret {
		insert := rnd.Intn(3) != 0
		if i > n/2 {
			insert = rnd.Intn(3) == 0
		}
		ret[i] = mutation{
			insert: insert,
			key:    rnd.Intn(keys),
		}
	}
	return ret
}
