//go:build !kvindex_debug
// +build !kvindex_debug

package kvindex

import "golang.org/x/exp/constraints"

const debug = false

func assertTree[K constraints.Ordered, V any](*OrderedMap[K, V]) {}

func assertTable[K comparable, V any](*HashMap[K, V]) {}

func setupTreeTrace[K constraints.Ordered, V any](*OrderedMap[K, V]) {}

func setupTableTrace[K comparable, V any](*HashMap[K, V]) {}
