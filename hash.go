package kvindex

import (
	"fmt"
	"hash"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/creachadair/cityhash"
	"golang.org/x/exp/constraints"
)

// Hasher is the hash family used by HashMap.
//
// Sum must be deterministic: HashMap reduces the sum modulo its capacity to
// get the home slot of the key and relies on the same reduction after every
// resize. Sum returns ErrInvalidKey for keys the family does not accept.
// That must include keys which are not equal to themselves, such as float
// NaN, since HashMap could never find them again.
type Hasher[K comparable] interface {
	Sum(key K) (uint64, error)
}

// IntHasher hashes non-negative integers by identity, so that the home slot
// of a key is the key modulo the table capacity.
type IntHasher[K constraints.Integer] struct{}

// Sum implements Hasher.
func (IntHasher[K]) Sum(key K) (uint64, error) {
	if key < 0 {
		return 0, ErrInvalidKey
	}
	return uint64(key), nil
}

const polyMultiplier = 37

// PolyHasher hashes non-empty strings by polynomial accumulation: each byte
// is added to the running sum multiplied by 37.
type PolyHasher struct{}

// Sum implements Hasher.
func (PolyHasher) Sum(key string) (uint64, error) {
	if key == "" {
		return 0, ErrInvalidKey
	}
	var sum uint64
	for i := 0; i < len(key); i++ {
		sum = sum*polyMultiplier + uint64(key[i])
	}
	return sum, nil
}

// XXHasher hashes non-empty strings with xxHash64.
type XXHasher struct{}

// Sum implements Hasher.
func (XXHasher) Sum(key string) (uint64, error) {
	if key == "" {
		return 0, ErrInvalidKey
	}
	return xxhash.Sum64String(key), nil
}

// CityHasher hashes non-empty strings with CityHash64.
type CityHasher struct{}

// Sum implements Hasher.
func (CityHasher) Sum(key string) (uint64, error) {
	if key == "" {
		return 0, ErrInvalidKey
	}
	return cityhash.Hash64([]byte(key)), nil
}

// DigestHasher hashes non-empty strings with a streaming 64-bit hash.
// DigestHasher instances must not be copied after first use.
type DigestHasher struct {
	// Hash is an optional function used to build up a new 64-bit hash
	// function. If Hash is nil, xxHash64 is used.
	Hash func() hash.Hash64

	// hashPool is a pool of reusable hash functions.
	hashPool sync.Pool
}

// Sum implements Hasher.
func (d *DigestHasher) Sum(key string) (uint64, error) {
	if key == "" {
		return 0, ErrInvalidKey
	}
	h, _ := d.hashPool.Get().(hash.Hash64)
	if h == nil {
		if d.Hash != nil {
			h = d.Hash()
		} else {
			h = xxhash.New()
		}
	}
	defer func() {
		h.Reset()
		d.hashPool.Put(h)
	}()

	if _, err := h.Write([]byte(key)); err != nil {
		panic(fmt.Sprintf("kvindex: digest error: %v", err))
	}
	return h.Sum64(), nil
}
