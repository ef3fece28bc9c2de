/*
Package kvindex implements two in-memory indexing structures used as key
lookup primitives: an ordered map built on a red-black tree and a dynamic
hash map built on open addressing with linear probing.

OrderedMap keeps its keys totally ordered. Insertion, deletion and search
take O(log n) time, and in-order traversal, minimum, maximum, successor and
predecessor queries are available. Nodes live in an arena and refer to each
other by index, with index zero reserved for the black sentinel leaf, so
rotations are plain index assignments. Callers address nodes through Node
handles, which are checked on every use: a handle to a removed node, or to a
node of another tree, is rejected with ErrInvalidNode.

HashMap keeps an unordered key to value mapping with amortized O(1)
operations. Its capacity doubles when the table becomes more than half full
and halves when less than 1/16 of it is used (never going below the floor
capacity); both resizes rehash every entry into a freshly allocated table.
The hash family is pluggable: integer keys are reduced modulo the capacity,
string keys use a polynomial hash by default, and xxHash or CityHash based
hashers are available.

Both structures share the same contract: Insert never overwrites an existing
key and reports ErrDuplicateKey instead; Search and Delete of an absent key
report ErrNotFound; keys rejected by the structure report ErrInvalidKey; and
failure to obtain storage reports ErrAllocation, leaving the structure
untouched.

Neither structure is goroutine safe. They are meant to be owned by a single
goroutine or guarded by the caller.

Building with `kvindex_debug` tag enables invariant assertions after every
mutation.
*/
package kvindex
