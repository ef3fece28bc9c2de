package kvindex

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKey is returned when a key is not allowed by the hasher, e.g.
	// a negative integer key or an empty string key.
	ErrInvalidKey = errors.New("kvindex: invalid key")

	// ErrDuplicateKey is returned by Insert() when the key is already present.
	// The stored value is left untouched.
	ErrDuplicateKey = errors.New("kvindex: key already exists")

	// ErrNotFound is returned when a key (or a neighbour node) does not exist.
	ErrNotFound = errors.New("kvindex: not found")

	// ErrAllocation is returned when backing storage can not be obtained. The
	// structure is left in its prior state.
	ErrAllocation = errors.New("kvindex: allocation failed")

	// ErrInvalidNode is returned when a node handle does not belong to the
	// tree, or refers to a node which was already removed.
	ErrInvalidNode = errors.New("kvindex: invalid node")
)

// InvariantKind is a class of red-black tree invariants.
type InvariantKind uint8

const (
	InvariantRootColor InvariantKind = iota + 1
	InvariantRedRed
	InvariantBlackHeight
	InvariantOrder
	InvariantLinks
)

func (k InvariantKind) String() string {
	switch k {
	case InvariantRootColor:
		return "root color"
	case InvariantRedRed:
		return "adjacent reds"
	case InvariantBlackHeight:
		return "black height"
	case InvariantOrder:
		return "key order"
	case InvariantLinks:
		return "node links"
	default:
		return fmt.Sprintf("InvariantKind(%d)", uint8(k))
	}
}

// InvariantError describes the first violation found for some invariant
// class.
type InvariantError struct {
	Kind   InvariantKind
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("kvindex: %s invariant violated: %s", e.Kind, e.Detail)
}
