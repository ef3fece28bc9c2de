//go:build kvindex_debug
// +build kvindex_debug

package kvindex

import (
	"fmt"
	"log"
	"strings"

	"golang.org/x/exp/constraints"
)

const debug = true

func assertTree[K constraints.Ordered, V any](t *OrderedMap[K, V]) {
	if err := t.Validate(); err != nil {
		panic(fmt.Sprintf(
			"kvindex: internal error: tree is broken: %v", err,
		))
	}
}

func assertTable[K comparable, V any](m *HashMap[K, V]) {
	var n int
	seen := make(map[K]int, m.count)
	for i := range m.slots {
		s := &m.slots[i]
		if !s.used {
			continue
		}
		if j, has := seen[s.key]; has {
			panic(fmt.Sprintf(
				"kvindex: internal error: key %v is stored at slots %d and %d",
				s.key, j, i,
			))
		}
		seen[s.key] = i
		n++
	}
	if n != m.count {
		panic(fmt.Sprintf(
			"kvindex: internal error: table count is %d; %d slots are used",
			m.count, n,
		))
	}
	if m.count > len(m.slots) {
		panic(fmt.Sprintf(
			"kvindex: internal error: table count %d exceeds capacity %d",
			m.count, len(m.slots),
		))
	}
}

type traceLogger struct {
	depth int
}

func (l *traceLogger) enter() {
	l.depth++
	log.SetPrefix(strings.Repeat(" ", l.depth*4))
}

func (l *traceLogger) leave() {
	l.depth--
	log.SetPrefix(strings.Repeat(" ", l.depth*4))
}

func (l *traceLogger) done(what string) func(error) {
	l.enter()
	return func(err error) {
		l.leave()
		if err != nil {
			log.Printf("%s failed: %v", what, err)
		} else {
			log.Printf("%s done", what)
		}
	}
}

func setupTreeTrace[K constraints.Ordered, V any](t *OrderedMap[K, V]) {
	log.SetFlags(0)

	var l traceLogger
	t.trace = t.trace.Compose(traceTree{
		OnInsert: func(key interface{}) func(error) {
			log.Println("inserting:", key)
			return l.done("insert")
		},
		OnDelete: func(key interface{}) func(error) {
			log.Println("deleting:", key)
			return l.done("delete")
		},
		OnFixup: func(key interface{}, insert bool) {
			if insert {
				log.Println("insert fixup from:", key)
			} else {
				log.Println("delete fixup from:", key)
			}
		},
	})
}

func setupTableTrace[K comparable, V any](m *HashMap[K, V]) {
	log.SetFlags(0)

	var l traceLogger
	m.trace = m.trace.Compose(traceTable{
		OnInsert: func(key interface{}) func(error) {
			log.Println("inserting:", key)
			return l.done("insert")
		},
		OnDelete: func(key interface{}) func(error) {
			log.Println("deleting:", key)
			return l.done("delete")
		},
		OnResize: func(from, to int) func(error) {
			log.Printf("resizing: %d -> %d slots", from, to)
			return l.done("resize")
		},
	})
}
