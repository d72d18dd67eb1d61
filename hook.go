package hashring

import "github.com/cryptlink/hashring/hash"

// Trace contains optional callbacks called on ring events.
// Callbacks are called synchronously with ring operations.
type Trace struct {
	// OnRegister is called before node with primary hash h and replication
	// weight w is put on the ring. Returned function, if any, is called
	// when registration is done.
	OnRegister func(h hash.Hash, w int) func(error)

	// OnRemove is called before node with primary hash h is removed from the
	// ring. Returned function, if any, is called when removal is done.
	OnRemove func(h hash.Hash) func(error)

	// OnRebuild is called after the index rebuild.
	OnRebuild func(RebuildInfo)

	// OnOverwrite is called when an entry replaces an existing one having
	// the same key, that is, on hash collision.
	OnOverwrite func(key hash.Hash)
}

// RebuildInfo describes the ring state right after the index rebuild.
type RebuildInfo struct {
	Entries int
	Nodes   int
}

// Compose returns a new Trace which has functional fields composed both from
// t and x.
func (t Trace) Compose(x Trace) (ret Trace) {
	switch {
	case t.OnRegister == nil:
		ret.OnRegister = x.OnRegister
	case x.OnRegister == nil:
		ret.OnRegister = t.OnRegister
	default:
		h1, h2 := t.OnRegister, x.OnRegister
		ret.OnRegister = func(h hash.Hash, w int) func(error) {
			return composeDone(h1(h, w), h2(h, w))
		}
	}
	switch {
	case t.OnRemove == nil:
		ret.OnRemove = x.OnRemove
	case x.OnRemove == nil:
		ret.OnRemove = t.OnRemove
	default:
		h1, h2 := t.OnRemove, x.OnRemove
		ret.OnRemove = func(h hash.Hash) func(error) {
			return composeDone(h1(h), h2(h))
		}
	}
	switch {
	case t.OnRebuild == nil:
		ret.OnRebuild = x.OnRebuild
	case x.OnRebuild == nil:
		ret.OnRebuild = t.OnRebuild
	default:
		h1, h2 := t.OnRebuild, x.OnRebuild
		ret.OnRebuild = func(info RebuildInfo) {
			h1(info)
			h2(info)
		}
	}
	switch {
	case t.OnOverwrite == nil:
		ret.OnOverwrite = x.OnOverwrite
	case x.OnOverwrite == nil:
		ret.OnOverwrite = t.OnOverwrite
	default:
		h1, h2 := t.OnOverwrite, x.OnOverwrite
		ret.OnOverwrite = func(key hash.Hash) {
			h1(key)
			h2(key)
		}
	}
	return ret
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

func nopDone(error) {}

func (t Trace) onRegister(h hash.Hash, w int) func(error) {
	if t.OnRegister == nil {
		return nopDone
	}
	if done := t.OnRegister(h, w); done != nil {
		return done
	}
	return nopDone
}

func (t Trace) onRemove(h hash.Hash) func(error) {
	if t.OnRemove == nil {
		return nopDone
	}
	if done := t.OnRemove(h); done != nil {
		return done
	}
	return nopDone
}

func (t Trace) onRebuild(info RebuildInfo) {
	if t.OnRebuild != nil {
		t.OnRebuild(info)
	}
}

func (t Trace) onOverwrite(key hash.Hash) {
	if t.OnOverwrite != nil {
		t.OnOverwrite(key)
	}
}
