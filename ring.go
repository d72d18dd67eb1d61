package hashring

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/dgryski/go-farm"
	"github.com/gobwas/avl"
	"github.com/sirupsen/logrus"

	"github.com/cryptlink/hashring/hash"
)

// Option configures a Ring.
type Option func(*config)

type config struct {
	trace Trace
}

// WithTrace makes ring call t's callbacks on events.
// Multiple traces are composed.
func WithTrace(t Trace) Option {
	return func(c *config) {
		c.trace = c.trace.Compose(t)
	}
}

// WithLogger makes ring log its events to l.
func WithLogger(l logrus.FieldLogger) Option {
	return WithTrace(LogTrace(l))
}

// Ring is a consistent hashing hashring.
//
// It is not goroutine safe: concurrent use requires external
// synchronization (see Sync). Ring instances must be created with New and
// must not be copied.
type Ring[T hash.Hashable] struct {
	// provider is used to derive replica hashes and to digest lookup data.
	provider hash.Provider

	// ring is a tree holding all entries: primary and replicas.
	ring avl.Tree // tree<*entry[T]>

	// nodes is a tree holding one primary entry per node.
	nodes avl.Tree // tree<*entry[T]>

	// weights is a mapping of node's primary hash to its replication weight.
	// It is needed to regenerate the chain of replica hashes on removal.
	weights map[hash.Hash]int

	// index is a sorted snapshot of ring entries used for binary search.
	// It is valid only if valid is true.
	index []*entry[T]
	valid bool

	trace Trace
}

// New creates an empty ring which uses provider p.
func New[T hash.Hashable](p hash.Provider, opts ...Option) (*Ring[T], error) {
	if !p.Valid() {
		return nil, fmt.Errorf("hashring: %w: %s", hash.ErrUnknownProvider, p)
	}
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	setupRingTrace(&c.trace)

	return &Ring[T]{
		provider: p,
		weights:  make(map[hash.Hash]int),
		trace:    c.trace,
	}, nil
}

// Provider returns hash provider used by the ring.
func (r *Ring[T]) Provider() hash.Provider {
	return r.provider
}

// Register puts node x on the ring at its computed hash and w more positions
// derived from it. It returns primary hash of x.
//
// If rebuild is false, the index becomes stale and must be rebuilt with
// RebuildIndex() before any lookup.
func (r *Ring[T]) Register(x T, w int, rebuild bool) (hash.Hash, error) {
	if isNil(x) {
		return hash.Hash{}, fmt.Errorf("hashring: register: %w", ErrNilNode)
	}
	h := x.ComputedHash()
	return h, r.RegisterHash(x, h, w, rebuild)
}

// RegisterHash is like Register but uses given primary hash h instead of
// the one computed by x.
//
// Registering an already registered hash overwrites its entries but keeps
// the weight recorded at the first registration.
func (r *Ring[T]) RegisterHash(x T, h hash.Hash, w int, rebuild bool) (err error) {
	done := r.trace.onRegister(h, w)
	defer func() {
		done(err)
	}()

	chain, err := r.prepare(x, h, w)
	if err != nil {
		return err
	}
	r.insert(x, h, w, chain)
	if rebuild {
		r.RebuildIndex()
	}
	return nil
}

// RegisterBatch puts all nodes on the ring with the same weight w.
// It rebuilds the index once after all insertions if rebuild is true.
// Nodes are validated before any of them is inserted.
func (r *Ring[T]) RegisterBatch(xs []T, w int, rebuild bool) error {
	if len(xs) == 0 {
		return nil
	}
	chains := make([][]hash.Hash, len(xs))
	for i, x := range xs {
		if isNil(x) {
			return fmt.Errorf("hashring: register #%d: %w", i, ErrNilNode)
		}
		chain, err := r.prepare(x, x.ComputedHash(), w)
		if err != nil {
			return err
		}
		chains[i] = chain
	}
	for i, x := range xs {
		h := x.ComputedHash()
		done := r.trace.onRegister(h, w)
		r.insert(x, h, w, chains[i])
		done(nil)
	}
	if rebuild {
		r.RebuildIndex()
	}
	return nil
}

// Remove removes node x with all its replicas from the ring.
func (r *Ring[T]) Remove(x T, rebuild bool) error {
	if isNil(x) {
		return fmt.Errorf("hashring: remove: %w", ErrNilNode)
	}
	return r.RemoveHash(x.ComputedHash(), rebuild)
}

// RemoveHash removes node registered with primary hash h with all its
// replicas from the ring.
//
// It returns ErrNotFound if h was not registered. It returns ErrCorrupted if
// some of the entries expected by node's weight are missing; ring is left
// unchanged in that case.
func (r *Ring[T]) RemoveHash(h hash.Hash, rebuild bool) (err error) {
	done := r.trace.onRemove(h)
	defer func() {
		done(err)
	}()

	w, has := r.weights[h]
	if !has {
		return fmt.Errorf("hashring: remove %s: %w", h, ErrNotFound)
	}
	chain, err := replicas(h, w)
	if err != nil {
		return fmt.Errorf("hashring: remove %s: %w", h, err)
	}

	// Tree is immutable, so nothing is changed until r.ring is reassigned.
	tree, existed := r.ring.Delete(search{h})
	if existed == nil {
		return fmt.Errorf("hashring: remove %s: primary entry is missing: %w", h, ErrCorrupted)
	}
	for i, key := range chain {
		tree, existed = tree.Delete(search{key})
		if existed == nil {
			return fmt.Errorf(
				"hashring: remove %s: replica #%d %s is missing: %w",
				h, i+1, key, ErrCorrupted,
			)
		}
	}
	r.ring = tree
	r.nodes, _ = r.nodes.Delete(search{h})
	delete(r.weights, h)
	r.valid = false

	if rebuild {
		r.RebuildIndex()
	}
	return nil
}

// RebuildIndex updates the sorted snapshot of ring entries used by lookups.
func (r *Ring[T]) RebuildIndex() {
	index := make([]*entry[T], 0, r.ring.Size())
	r.ring.InOrder(func(x avl.Item) bool {
		index = append(index, x.(*entry[T]))
		return true
	})
	assertIndex(index)

	r.index = index
	r.valid = true

	r.trace.onRebuild(RebuildInfo{
		Entries: len(index),
		Nodes:   r.nodes.Size(),
	})
}

// IndexValid reports whether the index reflects current ring state.
func (r *Ring[T]) IndexValid() bool {
	return r.valid
}

// Lookup returns node owning the first ring position at or after key.
// Positions greater than the largest one wrap around to the smallest.
func (r *Ring[T]) Lookup(key hash.Hash) (x T, err error) {
	i, err := r.successor(key)
	if err != nil {
		return x, err
	}
	return r.index[i].node, nil
}

// LookupBytes is like Lookup but treats key as already computed digest
// bytes of the ring's provider.
func (r *Ring[T]) LookupBytes(key []byte) (x T, err error) {
	h, err := hash.FromComputedBytes(key, r.provider)
	if err != nil {
		return x, fmt.Errorf("hashring: lookup: %w", err)
	}
	return r.Lookup(h)
}

// LookupData digests data with the ring's provider and returns its owner.
func (r *Ring[T]) LookupData(data []byte) (x T, err error) {
	h, err := r.provider.Sum(data)
	if err != nil {
		return x, fmt.Errorf("hashring: lookup: %w", err)
	}
	return r.Lookup(h)
}

// LookupNode returns owner of y's computed hash.
func (r *Ring[T]) LookupNode(y T) (x T, err error) {
	if isNil(y) {
		return x, fmt.Errorf("hashring: lookup: %w", ErrNilNode)
	}
	return r.Lookup(y.ComputedHash())
}

// LookupN returns up to n distinct nodes met walking the ring clockwise
// starting from key's owner.
func (r *Ring[T]) LookupN(key hash.Hash, n int) ([]T, error) {
	i, err := r.successor(key)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	if n > r.nodes.Size() {
		n = r.nodes.Size()
	}
	var (
		ret  = make([]T, 0, n)
		seen = make(map[hash.Hash]bool, n)
	)
	for j := 0; j < len(r.index) && len(ret) < n; j++ {
		e := r.index[(i+j)%len(r.index)]
		if seen[e.id] {
			continue
		}
		seen[e.id] = true
		ret = append(ret, e.node)
	}
	return ret, nil
}

// ContainsNode reports whether the index holds an entry at key h.
// Only the index is consulted, so it must be valid.
func (r *Ring[T]) ContainsNode(h hash.Hash) (bool, error) {
	if !r.valid {
		return false, fmt.Errorf("hashring: contains: %w", ErrIndexStale)
	}
	i := r.search(h)
	return i < len(r.index) && r.index[i].key == h, nil
}

// Checksum returns fingerprint of all indexed positions. Rings having equal
// layout have equal checksums.
func (r *Ring[T]) Checksum() (uint32, error) {
	if !r.valid {
		return 0, fmt.Errorf("hashring: checksum: %w", ErrIndexStale)
	}
	buf := make([]byte, 0, len(r.index)*r.provider.Size())
	for _, e := range r.index {
		buf = e.key.AppendTo(buf)
	}
	return farm.Fingerprint32(buf), nil
}

// NodeCount returns number of nodes on the ring. Each node is counted once
// regardless of its weight.
func (r *Ring[T]) NodeCount() int {
	return r.nodes.Size()
}

// AllNodes returns all nodes ordered by their primary hashes.
// It allocates a new slice on every call, so it should not be used on hot
// paths.
func (r *Ring[T]) AllNodes() []T {
	ret := make([]T, 0, r.nodes.Size())
	r.nodes.InOrder(func(x avl.Item) bool {
		ret = append(ret, x.(*entry[T]).node)
		return true
	})
	return ret
}

// Len returns number of entries on the ring, including replicas.
func (r *Ring[T]) Len() int {
	return r.ring.Size()
}

// Weight returns replication weight of node registered with primary hash h.
func (r *Ring[T]) Weight(h hash.Hash) (w int, ok bool) {
	w, ok = r.weights[h]
	return w, ok
}

func (r *Ring[T]) prepare(x T, h hash.Hash, w int) ([]hash.Hash, error) {
	switch {
	case isNil(x):
		return nil, fmt.Errorf("hashring: register: %w", ErrNilNode)
	case h.IsZero():
		return nil, fmt.Errorf("hashring: register: %w", ErrNoHash)
	case w < 0:
		return nil, fmt.Errorf("hashring: register %s: %w: %d", h, ErrInvalidWeight, w)
	case h.Provider() != r.provider:
		return nil, fmt.Errorf(
			"hashring: register %s: %w: %s; want %s",
			h, ErrProviderMismatch, h.Provider(), r.provider,
		)
	}
	chain, err := replicas(h, w)
	if err != nil {
		return nil, fmt.Errorf("hashring: register %s: %w", h, err)
	}
	return chain, nil
}

func (r *Ring[T]) insert(x T, h hash.Hash, w int, chain []hash.Hash) {
	tree := r.put(r.ring, &entry[T]{key: h, id: h, node: x})
	for _, key := range chain {
		tree = r.put(tree, &entry[T]{key: key, id: h, node: x})
	}
	r.ring = tree

	if _, has := r.weights[h]; !has {
		r.weights[h] = w
		r.nodes = r.put(r.nodes, &entry[T]{key: h, id: h, node: x})
	}
	r.valid = false
}

// put inserts e into the tree replacing existing entry with the same key.
func (r *Ring[T]) put(tree avl.Tree, e *entry[T]) avl.Tree {
	tree, existing := tree.Insert(e)
	if existing == nil {
		return tree
	}
	r.trace.onOverwrite(e.key)
	tree, _ = tree.Delete(existing)
	tree, _ = tree.Insert(e)
	return tree
}

// successor returns index position of the first entry with key greater or
// equal to the given one. It returns 0 when key is outside of the indexed
// range in any direction.
func (r *Ring[T]) successor(key hash.Hash) (int, error) {
	switch {
	case !r.valid:
		return 0, fmt.Errorf("hashring: lookup: %w", ErrIndexStale)
	case len(r.index) == 0:
		return 0, fmt.Errorf("hashring: lookup: %w", ErrIndexEmpty)
	case key.IsZero():
		return 0, fmt.Errorf("hashring: lookup: %w", ErrNoHash)
	}
	last := len(r.index) - 1
	if r.index[last].key.Less(key) || key.Less(r.index[0].key) {
		return 0, nil
	}
	return r.search(key), nil
}

func (r *Ring[T]) search(key hash.Hash) int {
	return sort.Search(len(r.index), func(i int) bool {
		return !r.index[i].key.Less(key)
	})
}

// replicas returns chain of w hashes where each is a rehash of the previous
// one, starting from h.
func replicas(h hash.Hash, w int) ([]hash.Hash, error) {
	chain := make([]hash.Hash, w)
	for i := range chain {
		next, err := h.Rehash()
		if err != nil {
			return nil, err
		}
		chain[i] = next
		h = next
	}
	return chain, nil
}

func isNil(x any) bool {
	if x == nil {
		return true
	}
	v := reflect.ValueOf(x)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	}
	return false
}
