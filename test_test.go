package hashring

import (
	"testing"

	"github.com/cryptlink/hashring/hash"
)

const testProvider = hash.SHA256

type testNode struct {
	name string
	h    hash.Hash
}

func (n *testNode) ComputedHash() hash.Hash { return n.h }
func (n *testNode) String() string          { return n.name }

// node returns a node placed at the digest of its name.
func node(t testing.TB, name string) *testNode {
	h, err := testProvider.Sum([]byte(name))
	if err != nil {
		t.Fatal(err)
	}
	return &testNode{name: name, h: h}
}

// nodeAt returns a node placed at the position given by leading bytes.
func nodeAt(t testing.TB, name string, prefix ...byte) *testNode {
	return &testNode{name: name, h: key(t, prefix...)}
}

// key returns a hash starting with given bytes and padded by zeroes.
func key(t testing.TB, prefix ...byte) hash.Hash {
	b := make([]byte, testProvider.Size())
	copy(b, prefix)
	h, err := hash.FromComputedBytes(b, testProvider)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func newRing(t testing.TB, opts ...Option) *Ring[*testNode] {
	r, err := New[*testNode](testProvider, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func makeRing(t testing.TB, w int, names ...string) *Ring[*testNode] {
	r := newRing(t)
	for _, name := range names {
		if _, err := r.Register(node(t, name), w, false); err != nil {
			t.Fatal(err)
		}
	}
	r.RebuildIndex()
	return r
}

func chain(t testing.TB, h hash.Hash, n int) []hash.Hash {
	ret := make([]hash.Hash, n)
	for i := range ret {
		var err error
		if h, err = h.Rehash(); err != nil {
			t.Fatal(err)
		}
		ret[i] = h
	}
	return ret
}

func mustLookup(t testing.TB, r *Ring[*testNode], k hash.Hash) *testNode {
	x, err := r.Lookup(k)
	if err != nil {
		t.Fatalf("unexpected lookup error: %v", err)
	}
	return x
}
