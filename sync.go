package hashring

import (
	"sync"

	"github.com/cryptlink/hashring/hash"
)

// Sync is a Ring guarded by a read-write mutex. It is goroutine safe.
// Lookups are served under the read lock, so they run concurrently with each
// other but not with mutations.
type Sync[T hash.Hashable] struct {
	mu   sync.RWMutex
	ring *Ring[T]
}

// NewSync creates an empty goroutine safe ring which uses provider p.
func NewSync[T hash.Hashable](p hash.Provider, opts ...Option) (*Sync[T], error) {
	r, err := New[T](p, opts...)
	if err != nil {
		return nil, err
	}
	return &Sync[T]{ring: r}, nil
}

func (s *Sync[T]) Register(x T, w int, rebuild bool) (hash.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.Register(x, w, rebuild)
}

func (s *Sync[T]) RegisterBatch(xs []T, w int, rebuild bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.RegisterBatch(xs, w, rebuild)
}

func (s *Sync[T]) Remove(x T, rebuild bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.Remove(x, rebuild)
}

func (s *Sync[T]) RemoveHash(h hash.Hash, rebuild bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.RemoveHash(h, rebuild)
}

func (s *Sync[T]) RebuildIndex() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ring.RebuildIndex()
}

func (s *Sync[T]) Lookup(key hash.Hash) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ring.Lookup(key)
}

func (s *Sync[T]) LookupData(data []byte) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ring.LookupData(data)
}

func (s *Sync[T]) LookupN(key hash.Hash, n int) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ring.LookupN(key, n)
}

func (s *Sync[T]) ContainsNode(h hash.Hash) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ring.ContainsNode(h)
}

func (s *Sync[T]) Checksum() (uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ring.Checksum()
}

func (s *Sync[T]) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ring.NodeCount()
}

func (s *Sync[T]) AllNodes() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ring.AllNodes()
}
