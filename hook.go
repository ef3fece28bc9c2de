package kvindex

// traceTree holds optional callbacks invoked on OrderedMap mutations.
// Callbacks are invoked only when built with `kvindex_debug` tag.
type traceTree struct {
	OnInsert func(key interface{}) func(error)
	OnDelete func(key interface{}) func(error)
	OnFixup  func(key interface{}, insert bool)
}

// traceTable holds optional callbacks invoked on HashMap mutations.
// Callbacks are invoked only when built with `kvindex_debug` tag.
type traceTable struct {
	OnInsert func(key interface{}) func(error)
	OnDelete func(key interface{}) func(error)
	OnResize func(from, to int) func(error)
}

// Compose returns a new traceTree which has functional fields composed both
// from t and x.
func (t traceTree) Compose(x traceTree) (ret traceTree) {
	ret.OnInsert = composeKeyHook(t.OnInsert, x.OnInsert)
	ret.OnDelete = composeKeyHook(t.OnDelete, x.OnDelete)
	switch {
	case t.OnFixup == nil:
		ret.OnFixup = x.OnFixup
	case x.OnFixup == nil:
		ret.OnFixup = t.OnFixup
	default:
		h1 := t.OnFixup
		h2 := x.OnFixup
		ret.OnFixup = func(key interface{}, insert bool) {
			h1(key, insert)
			h2(key, insert)
		}
	}
	return ret
}

// Compose returns a new traceTable which has functional fields composed both
// from t and x.
func (t traceTable) Compose(x traceTable) (ret traceTable) {
	ret.OnInsert = composeKeyHook(t.OnInsert, x.OnInsert)
	ret.OnDelete = composeKeyHook(t.OnDelete, x.OnDelete)
	switch {
	case t.OnResize == nil:
		ret.OnResize = x.OnResize
	case x.OnResize == nil:
		ret.OnResize = t.OnResize
	default:
		h1 := t.OnResize
		h2 := x.OnResize
		ret.OnResize = func(from, to int) func(error) {
			return composeDone(h1(from, to), h2(from, to))
		}
	}
	return ret
}

func (t traceTree) onInsert(key interface{}) func(error) {
	return callKeyHook(t.OnInsert, key)
}

func (t traceTree) onDelete(key interface{}) func(error) {
	return callKeyHook(t.OnDelete, key)
}

func (t traceTree) onFixup(key interface{}, insert bool) {
	if fn := t.OnFixup; fn != nil {
		fn(key, insert)
	}
}

func (t traceTable) onInsert(key interface{}) func(error) {
	return callKeyHook(t.OnInsert, key)
}

func (t traceTable) onDelete(key interface{}) func(error) {
	return callKeyHook(t.OnDelete, key)
}

func (t traceTable) onResize(from, to int) func(error) {
	fn := t.OnResize
	if fn == nil {
		return nopDone
	}
	if res := fn(from, to); res != nil {
		return res
	}
	return nopDone
}

func nopDone(error) {}

func callKeyHook(fn func(interface{}) func(error), key interface{}) func(error) {
	if fn == nil {
		return nopDone
	}
	if res := fn(key); res != nil {
		return res
	}
	return nopDone
}

func composeKeyHook(h1, h2 func(interface{}) func(error)) func(interface{}) func(error) {
	switch {
	case h1 == nil:
		return h2
	case h2 == nil:
		return h1
	}
	return func(key interface{}) func(error) {
		return composeDone(h1(key), h2(key))
	}
}

func composeDone(r1, r2 func(error)) func(error) {
	switch {
	case r1 == nil:
		return r2
	case r2 == nil:
		return r1
	}
	return func(err error) {
		r1(err)
		r2(err)
	}
}
