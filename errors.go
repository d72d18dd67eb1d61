package hashring

import "errors"

var (
	// Invalid input.
	ErrNilNode          = errors.New("nil node")
	ErrNoHash           = errors.New("node has no computed hash")
	ErrInvalidWeight    = errors.New("negative replication weight")
	ErrProviderMismatch = errors.New("hash provider mismatch")

	// ErrNotFound is returned when removed hash was never registered.
	ErrNotFound = errors.New("node not found")

	// ErrCorrupted is returned when ring misses an entry which must exist
	// according to the replication weight of a node. That is possible only
	// after a hash collision between two nodes.
	ErrCorrupted = errors.New("ring is corrupted")

	// ErrIndexStale is returned by lookups performed before the index was
	// built or after a mutation which didn't rebuild it.
	ErrIndexStale = errors.New("index is stale")
	ErrIndexEmpty = errors.New("index is empty")
)
