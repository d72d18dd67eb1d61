package hashring

import (
	"github.com/gobwas/avl"

	"github.com/cryptlink/hashring/hash"
)

// entry represents a point on the ring.
type entry[T hash.Hashable] struct {
	// key is a position of the entry on the ring.
	key hash.Hash

	// id is a primary hash of the node. It equals to key for primary entries
	// and differs for replicas.
	id hash.Hash

	node T
}

func (e *entry[T]) ringKey() hash.Hash {
	return e.key
}

func (e *entry[T]) Compare(x avl.Item) int {
	return hash.Compare(e.key, x.(keyed).ringKey())
}

type keyed interface {
	ringKey() hash.Hash
}

// search is used to find entries in a tree by key.
type search struct {
	key hash.Hash
}

func (s search) ringKey() hash.Hash {
	return s.key
}

func (s search) Compare(x avl.Item) int {
	return hash.Compare(s.key, x.(keyed).ringKey())
}
