package kvindex

import (
	"fmt"
)

// slot is a single cell of the HashMap table.
type slot[K comparable, V any] struct {
	key   K
	value V
	sum   uint64
	used  bool
}

// HashMap is a hash map using open addressing with linear probing.
//
// The table grows by the growth factor once the load factor exceeds the high
// threshold, and shrinks once it falls below the low threshold (but never
// below the floor capacity). Both are done by a full rehash into a freshly
// allocated table. Deletion clears the slot in place, without tombstones or
// backward shifting, so lookups probe through empty slots for up to one full
// table cycle.
//
// HashMap is not goroutine safe. Callers must serialize access to it.
type HashMap[K comparable, V any] struct {
	hasher Hasher[K]
	config config
	slots  []slot[K, V]
	count  int

	trace traceTable
}

// NewHashMap creates a new HashMap with given initial capacity and hash
// family. It returns ErrAllocation if capacity is not positive or exceeds the
// maximum capacity.
func NewHashMap[K comparable, V any](capacity int, h Hasher[K], opts ...Option) (*HashMap[K, V], error) {
	if h == nil {
		panic("kvindex: nil hasher")
	}
	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	if capacity < 1 || capacity > c.capacity {
		return nil, fmt.Errorf(
			"%w: can not allocate table of %d slots", ErrAllocation, capacity,
		)
	}
	return &HashMap[K, V]{
		hasher: h,
		config: c,
		slots:  make([]slot[K, V], capacity),
	}, nil
}

// NewIntHashMap creates a HashMap with non-negative int keys hashed by
// IntHasher. If capacity is not positive, DefaultCapacity is used.
func NewIntHashMap[V any](capacity int, opts ...Option) (*HashMap[int, V], error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return NewHashMap[int, V](capacity, IntHasher[int]{}, opts...)
}

// NewStringHashMap creates a HashMap with non-empty string keys hashed by
// PolyHasher. If capacity is not positive, DefaultCapacity is used.
func NewStringHashMap[V any](capacity int, opts ...Option) (*HashMap[string, V], error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return NewHashMap[string, V](capacity, PolyHasher{}, opts...)
}

// Len returns the number of live entries.
func (m *HashMap[K, V]) Len() int {
	return m.count
}

// Capacity returns the number of slots in the table.
func (m *HashMap[K, V]) Capacity() int {
	return len(m.slots)
}

// LoadFactor returns the ratio of live entries to the table capacity.
func (m *HashMap[K, V]) LoadFactor() float64 {
	if len(m.slots) == 0 {
		return 0
	}
	return float64(m.count) / float64(len(m.slots))
}

// Insert puts value under key into the map.
// It returns ErrDuplicateKey if key is already present; the existing value
// is not overwritten. It returns ErrInvalidKey if key is rejected by the
// hasher, and ErrAllocation if the table could not grow. In these cases no
// entry is added or changed. The grow check runs before the duplicate check,
// so a duplicate insertion may still grow a table that is due for it.
func (m *HashMap[K, V]) Insert(key K, value V) (err error) {
	if debug {
		done := m.trace.onInsert(key)
		defer func() {
			done(err)
		}()
	}
	sum, err := m.hasher.Sum(key)
	if err != nil {
		return err
	}
	switch n := len(m.slots); {
	case n == 0:
		// Destroyed table.
		err = m.resize(m.config.floor)
	case m.count > m.config.growAbove(n):
		size := n * m.config.growth
		if size/m.config.growth != n {
			size = -1 // Overflow.
		}
		err = m.resize(size)
	}
	if err != nil {
		return err
	}
	if _, has := m.lookup(key, sum); has {
		return ErrDuplicateKey
	}
	i := place(m.slots, sum)
	m.slots[i] = slot[K, V]{
		key:   key,
		value: value,
		sum:   sum,
		used:  true,
	}
	m.count++

	assertTable(m)

	return nil
}

// Search returns value stored under key.
// It returns ErrNotFound if there is no such key.
func (m *HashMap[K, V]) Search(key K) (value V, err error) {
	i, err := m.Index(key)
	if err != nil {
		return value, err
	}
	return m.slots[i].value, nil
}

// Has reports whether key is present in the map.
func (m *HashMap[K, V]) Has(key K) bool {
	_, err := m.Index(key)
	return err == nil
}

// Index returns the index of the slot holding key.
// It returns ErrNotFound if there is no such key, or ErrInvalidKey if the key
// is rejected by the hasher.
func (m *HashMap[K, V]) Index(key K) (int, error) {
	sum, err := m.hasher.Sum(key)
	if err != nil {
		return -1, err
	}
	i, has := m.lookup(key, sum)
	if !has {
		return -1, ErrNotFound
	}
	return i, nil
}

// Delete removes key from the map.
// It returns ErrNotFound if there is no such key.
//
// The shrink check is done before the lookup, so a Delete of an absent key
// may still rehash the table.
func (m *HashMap[K, V]) Delete(key K) (err error) {
	if debug {
		done := m.trace.onDelete(key)
		defer func() {
			done(err)
		}()
	}
	sum, err := m.hasher.Sum(key)
	if err != nil {
		return err
	}
	if n := len(m.slots); m.count < m.config.shrinkBelow(n) && n > m.config.floor {
		size := n / m.config.growth
		if size < m.config.floor {
			size = m.config.floor
		}
		// Never shrink into a table which is due to grow right away.
		if m.count <= m.config.growAbove(size) {
			if err := m.resize(size); err != nil {
				return err
			}
		}
	}
	i, has := m.lookup(key, sum)
	if !has {
		return ErrNotFound
	}
	m.slots[i] = slot[K, V]{}
	m.count--

	assertTable(m)

	return nil
}

// Range calls fn for every live entry in slot order until fn returns false.
// The map must not be modified during iteration.
func (m *HashMap[K, V]) Range(fn func(key K, value V) bool) {
	for i := range m.slots {
		s := &m.slots[i]
		if s.used && !fn(s.key, s.value) {
			return
		}
	}
}

// Destroy releases the table. A subsequent Insert allocates a new table of
// the floor capacity.
func (m *HashMap[K, V]) Destroy() {
	m.slots = nil
	m.count = 0
}

// lookup probes from the home slot of key for at most one table cycle. It
// stops early once every live entry was examined. Empty slots do not stop
// the probe since deletions leave holes in probe runs.
func (m *HashMap[K, V]) lookup(key K, sum uint64) (int, bool) {
	n := len(m.slots)
	if n == 0 {
		return -1, false
	}
	i := int(sum % uint64(n))
	for step, seen := 0, 0; step < n && seen < m.count; step++ {
		s := &m.slots[i]
		if s.used {
			if s.sum == sum && s.key == key {
				return i, true
			}
			seen++
		}
		if i++; i == n {
			i = 0
		}
	}
	return -1, false
}

// place returns the first empty slot at or after the home slot of sum.
// There must be at least one empty slot.
func place[K comparable, V any](slots []slot[K, V], sum uint64) int {
	n := len(slots)
	i := int(sum % uint64(n))
	for step := 0; slots[i].used; step++ {
		if step == n {
			panic("kvindex: internal error: no empty slot in the table")
		}
		if i++; i == n {
			i = 0
		}
	}
	return i
}

// resize rehashes all live entries into a new table of given size. The new
// table replaces the current one only when it is completely built, so on
// error the map is left untouched.
func (m *HashMap[K, V]) resize(size int) (err error) {
	if debug {
		done := m.trace.onResize(len(m.slots), size)
		defer func() {
			done(err)
		}()
	}
	if size < 1 || size > m.config.capacity || size <= m.count {
		return fmt.Errorf(
			"%w: can not resize table of %d slots to %d slots",
			ErrAllocation, len(m.slots), size,
		)
	}
	slots := make([]slot[K, V], size)
	for i := range m.slots {
		s := &m.slots[i]
		if s.used {
			slots[place(slots, s.sum)] = *s
		}
	}
	m.slots = slots
	return nil
}
