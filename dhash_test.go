package kvindex

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func ExampleHashMap() {
	m, err := NewStringHashMap[int](16)
	if err != nil {
		panic(err)
	}
	m.Insert("one", 1)
	m.Insert("two", 2)

	v, _ := m.Search("two")
	fmt.Println(v, m.Len())

	err = m.Insert("one", 100)
	fmt.Println(errors.Is(err, ErrDuplicateKey))

	m.Delete("one")
	_, err = m.Search("one")
	fmt.Println(errors.Is(err, ErrNotFound))

	// Output:
	// 2 2
	// true
	// true
}

func TestHashMapInsertSearch(t *testing.T) {
	m, err := NewIntHashMap[string](0)
	require.NoError(t, err)
	require.Equal(t, DefaultCapacity, m.Capacity())

	const n = 1000
	for i := 0; i < n; i++ {
		require.NoError(t, m.Insert(i, valueOf(i)))
	}
	require.Equal(t, n, m.Len())
	require.LessOrEqual(t, m.LoadFactor(), 0.5)

	for i := 0; i < n; i++ {
		v, err := m.Search(i)
		require.NoError(t, err)
		require.Equal(t, valueOf(i), v)
	}
	_, err = m.Search(n)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestHashMapInsertDuplicate(t *testing.T) {
	m, err := NewStringHashMap[string](8)
	require.NoError(t, err)

	require.NoError(t, m.Insert("key", "foo"))
	require.ErrorIs(t, m.Insert("key", "bar"), ErrDuplicateKey)
	require.Equal(t, 1, m.Len())

	v, err := m.Search("key")
	require.NoError(t, err)
	require.Equal(t, "foo", v)
}

func TestHashMapInvalidKey(t *testing.T) {
	t.Run("int", func(t *testing.T) {
		m, err := NewIntHashMap[string](8)
		require.NoError(t, err)
		require.NoError(t, m.Insert(1, "one"))

		require.ErrorIs(t, m.Insert(-1, "minus one"), ErrInvalidKey)
		require.ErrorIs(t, m.Delete(-1), ErrInvalidKey)
		_, err = m.Search(-1)
		require.ErrorIs(t, err, ErrInvalidKey)
		i, err := m.Index(-1)
		require.ErrorIs(t, err, ErrInvalidKey)
		require.Equal(t, -1, i)
		require.Equal(t, 1, m.Len())
	})
	t.Run("string", func(t *testing.T) {
		m, err := NewStringHashMap[string](8)
		require.NoError(t, err)
		require.NoError(t, m.Insert("one", "1"))

		require.ErrorIs(t, m.Insert("", "empty"), ErrInvalidKey)
		require.ErrorIs(t, m.Delete(""), ErrInvalidKey)
		_, err = m.Search("")
		require.ErrorIs(t, err, ErrInvalidKey)
		require.Equal(t, 1, m.Len())
	})
}

func TestHashMapIntIndex(t *testing.T) {
	m, err := NewIntHashMap[string](8, WithFloorCapacity(8))
	require.NoError(t, err)

	require.NoError(t, m.Insert(3, "three"))
	require.NoError(t, m.Insert(11, "eleven"))
	require.NoError(t, m.Insert(7, "seven"))
	require.NoError(t, m.Insert(15, "fifteen"))

	for _, test := range []struct {
		key   int
		index int
	}{
		{key: 3, index: 3},
		{key: 11, index: 4}, // Collides with 3.
		{key: 7, index: 7},
		{key: 15, index: 0}, // Collides with 7 and wraps around.
	} {
		i, err := m.Index(test.key)
		require.NoError(t, err)
		require.Equal(t, test.index, i, "index of %d", test.key)
	}
}

func TestHashMapResize(t *testing.T) {
	m, err := NewIntHashMap[string](8, WithFloorCapacity(8))
	require.NoError(t, err)

	for _, step := range []struct {
		key      int
		capacity int
	}{
		{key: 0, capacity: 8},
		{key: 1, capacity: 8},
		{key: 2, capacity: 8},
		{key: 3, capacity: 8},
		{key: 4, capacity: 8},
		{key: 5, capacity: 16},
		{key: 6, capacity: 16},
		{key: 7, capacity: 16},
		{key: 8, capacity: 16},
		{key: 9, capacity: 32},
		{key: 10, capacity: 32},
		{key: 11, capacity: 32},
	} {
		require.NoError(t, m.Insert(step.key, valueOf(step.key)))
		require.Equal(t, step.capacity, m.Capacity(), "after insertion of %d", step.key)
	}
	for i := 0; i < 12; i++ {
		v, err := m.Search(i)
		require.NoError(t, err)
		require.Equal(t, valueOf(i), v)
	}

	for i := 0; i < 11; i++ {
		require.NoError(t, m.Delete(i))
		require.Equal(t, 32, m.Capacity(), "after deletion of %d", i)
	}
	// Shrink is checked before the last entry is looked up.
	require.NoError(t, m.Delete(11))
	require.Equal(t, 16, m.Capacity())
	require.Equal(t, 0, m.Len())

	// Deletion of an absent key may still shrink the table.
	require.ErrorIs(t, m.Delete(100), ErrNotFound)
	require.Equal(t, 8, m.Capacity())

	// Floor capacity is never crossed.
	require.ErrorIs(t, m.Delete(100), ErrNotFound)
	require.Equal(t, 8, m.Capacity())
}

func TestHashMapInsertDuplicateGrows(t *testing.T) {
	m, err := NewIntHashMap[string](8, WithFloorCapacity(8))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, m.Insert(i, valueOf(i)))
	}
	require.Equal(t, 8, m.Capacity())

	// The table is due to grow, and does so even though the key is rejected.
	require.ErrorIs(t, m.Insert(0, "other"), ErrDuplicateKey)
	require.Equal(t, 16, m.Capacity())
	require.Equal(t, 5, m.Len())
	for i := 0; i < 5; i++ {
		v, err := m.Search(i)
		require.NoError(t, err)
		require.Equal(t, valueOf(i), v)
	}
}

// floatHasher hashes float keys by their bits and rejects NaN.
type floatHasher struct{}

func (floatHasher) Sum(key float64) (uint64, error) {
	if math.IsNaN(key) {
		return 0, ErrInvalidKey
	}
	return math.Float64bits(key), nil
}

func TestHashMapFloatKeys(t *testing.T) {
	m, err := NewHashMap[float64, int](8, floatHasher{}, WithFloorCapacity(8))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.ErrorIs(t, m.Insert(math.NaN(), i), ErrInvalidKey)
	}
	require.Equal(t, 0, m.Len())

	require.NoError(t, m.Insert(1.5, 1))
	require.ErrorIs(t, m.Insert(1.5, 2), ErrDuplicateKey)
	v, err := m.Search(1.5)
	require.NoError(t, err)
	require.Equal(t, 1, v)
	_, err = m.Search(math.NaN())
	require.ErrorIs(t, err, ErrInvalidKey)
	require.Equal(t, 1, m.Len())
}

func TestHashMapGrowthFactor(t *testing.T) {
	m, err := NewIntHashMap[int](8, WithFloorCapacity(8), WithGrowthFactor(4))
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		require.NoError(t, m.Insert(i, i))
	}
	require.Equal(t, 32, m.Capacity())
}

func TestHashMapHoles(t *testing.T) {
	h := presetHasher{
		t: t,
		values: map[string]uint64{
			"a": 42,
			"b": 42,
			"c": 42,
			"d": 42,
		},
	}
	m, err := NewHashMap[string, int](16, h, WithFloorCapacity(16))
	require.NoError(t, err)

	// All keys share home slot 42 % 16 = 10.
	for i, key := range []string{"a", "b", "c"} {
		require.NoError(t, m.Insert(key, i))
		j, err := m.Index(key)
		require.NoError(t, err)
		require.Equal(t, 10+i, j)
	}

	require.NoError(t, m.Delete("a"))

	// Probe runs go on through the hole left by "a".
	v, err := m.Search("c")
	require.NoError(t, err)
	require.Equal(t, 2, v)
	require.ErrorIs(t, m.Insert("b", 100), ErrDuplicateKey)
	require.ErrorIs(t, m.Insert("c", 100), ErrDuplicateKey)

	// New entries fill the hole.
	require.NoError(t, m.Insert("d", 3))
	i, err := m.Index("d")
	require.NoError(t, err)
	require.Equal(t, 10, i)
	require.Equal(t, 3, m.Len())
}

func TestHashMapAllocation(t *testing.T) {
	_, err := NewHashMap[int, int](0, IntHasher[int]{})
	require.ErrorIs(t, err, ErrAllocation)

	_, err = NewHashMap[int, int](DefaultMaxCapacity+1, IntHasher[int]{})
	require.ErrorIs(t, err, ErrAllocation)

	_, err = NewHashMap[int, int](16, IntHasher[int]{}, WithMaxCapacity(8))
	require.ErrorIs(t, err, ErrAllocation)

	m, err := NewIntHashMap[int](8, WithFloorCapacity(8), WithMaxCapacity(8))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, m.Insert(i, i))
	}
	require.ErrorIs(t, m.Insert(5, 5), ErrAllocation)

	require.Equal(t, 5, m.Len())
	require.Equal(t, 8, m.Capacity())
	require.False(t, m.Has(5))
	for i := 0; i < 5; i++ {
		v, err := m.Search(i)
		require.NoError(t, err)
		require.Equal(t, i, v)
	}
}

func TestHashMapDestroy(t *testing.T) {
	m, err := NewIntHashMap[string](16, WithFloorCapacity(8))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, m.Insert(i, valueOf(i)))
	}

	m.Destroy()
	require.Equal(t, 0, m.Len())
	require.Equal(t, 0, m.Capacity())
	require.Zero(t, m.LoadFactor())
	require.False(t, m.Has(1))
	require.ErrorIs(t, m.Delete(1), ErrNotFound)

	require.NoError(t, m.Insert(1, "again"))
	require.Equal(t, 8, m.Capacity())
	v, err := m.Search(1)
	require.NoError(t, err)
	require.Equal(t, "again", v)
}

func TestHashMapOptions(t *testing.T) {
	m, err := NewIntHashMap[int](8,
		WithFloorCapacity(0),
		WithGrowthFactor(1),
		WithLoadFactors(0.5, 0.25),
		WithLoadFactors(0.1, 0.9),
		WithLoadFactors(-0.1, 0.3),
		WithMaxCapacity(-1),
	)
	require.NoError(t, err)
	require.Equal(t, defaultConfig(), m.config)

	m, err = NewIntHashMap[int](8,
		WithFloorCapacity(4),
		WithGrowthFactor(3),
		WithLoadFactors(0.1, 0.4),
		WithMaxCapacity(1024),
	)
	require.NoError(t, err)
	require.Equal(t, config{
		floor:    4,
		growth:   3,
		high:     0.4,
		low:      0.1,
		capacity: 1024,
	}, m.config)
}

func TestHashMapRange(t *testing.T) {
	m, err := NewStringHashMap[int](32)
	require.NoError(t, err)

	exp := make(map[string]int)
	for i := 0; i < 10; i++ {
		key := fmt.Sprintf("key%d", i)
		exp[key] = i
		require.NoError(t, m.Insert(key, i))
	}

	act := make(map[string]int)
	m.Range(func(key string, value int) bool {
		act[key] = value
		return true
	})
	require.Equal(t, exp, act)

	var n int
	m.Range(func(string, int) bool {
		n++
		return n < 3
	})
	require.Equal(t, 3, n)
}

func TestHashMapRandom(t *testing.T) {
	for _, test := range []struct {
		name   string
		hasher Hasher[string]
	}{
		{
			name:   "poly",
			hasher: PolyHasher{},
		},
		{
			name:   "xxhash",
			hasher: XXHasher{},
		},
		{
			name:   "cityhash",
			hasher: CityHasher{},
		},
		{
			name:   "digest",
			hasher: &DigestHasher{},
		},
		{
			name: "fnv",
			hasher: &DigestHasher{
				Hash: fnv.New64a,
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			m, err := NewHashMap[string, int](8, test.hasher, WithFloorCapacity(8))
			require.NoError(t, err)

			rnd := rand.New(rand.NewSource(42))
			ref := make(map[string]int)
			for i, mut := range randomMutations(rnd, 3000, 256) {
				key := fmt.Sprintf("key%d", mut.key)
				if mut.insert {
					err := m.Insert(key, mut.key)
					if _, has := ref[key]; has {
						require.ErrorIs(t, err, ErrDuplicateKey, "#%d %s", i, mut)
					} else {
						require.NoError(t, err, "#%d %s", i, mut)
						ref[key] = mut.key
					}
				} else {
					err := m.Delete(key)
					if _, has := ref[key]; has {
						require.NoError(t, err, "#%d %s", i, mut)
						delete(ref, key)
						_, err = m.Search(key)
						require.ErrorIs(t, err, ErrNotFound, "#%d %s", i, mut)
					} else {
						require.ErrorIs(t, err, ErrNotFound, "#%d %s", i, mut)
					}
				}
				require.Equal(t, len(ref), m.Len(), "#%d %s", i, mut)
				require.GreaterOrEqual(t, m.Capacity(), 8)
				assertTableContents(t, m, ref)
			}
		})
	}
}

func TestHashMapRandomInt(t *testing.T) {
	m, err := NewIntHashMap[int](8, WithFloorCapacity(8))
	require.NoError(t, err)

	rnd := rand.New(rand.NewSource(7))
	ref := make(map[int]int)
	for i, mut := range randomMutations(rnd, 5000, 1<<10) {
		var err error
		_, has := ref[mut.key]
		if mut.insert {
			err = m.Insert(mut.key, -mut.key)
			ref[mut.key] = -mut.key
			if has {
				require.ErrorIs(t, err, ErrDuplicateKey, "#%d %s", i, mut)
				continue
			}
		} else {
			err = m.Delete(mut.key)
			delete(ref, mut.key)
			if !has {
				require.ErrorIs(t, err, ErrNotFound, "#%d %s", i, mut)
				continue
			}
		}
		require.NoError(t, err, "#%d %s", i, mut)
		require.Equal(t, len(ref), m.Len(), "#%d %s", i, mut)
	}
	assertTableContents(t, m, ref)
}

func TestHashMapTrace(t *testing.T) {
	// Skip if no `-tags kvindex_debug` was given.
	if !debug {
		t.Skip("no kvindex_debug buildtag")
	}
	m, err := NewIntHashMap[int](8, WithFloorCapacity(8))
	require.NoError(t, err)
	setupTableTrace(m)

	var resizes [][2]int
	m.trace = m.trace.Compose(traceTable{
		OnResize: func(from, to int) func(error) {
			resizes = append(resizes, [2]int{from, to})
			return nil
		},
	})
	for i := 0; i < 6; i++ {
		require.NoError(t, m.Insert(i, i))
	}
	require.Equal(t, [][2]int{{8, 16}}, resizes)
}

func assertTableContents[K comparable, V any](t *testing.T, m *HashMap[K, V], exp map[K]V) {
	t.Helper()
	for key, value := range exp {
		act, err := m.Search(key)
		require.NoError(t, err, "search %v", key)
		require.Equal(t, value, act, "search %v", key)
	}
	var n int
	m.Range(func(key K, value V) bool {
		n++
		v, has := exp[key]
		require.True(t, has, "unexpected key %v", key)
		require.Equal(t, v, value, "unexpected value for %v", key)
		return true
	})
	require.Equal(t, len(exp), n)
}
