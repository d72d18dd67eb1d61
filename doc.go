/*
Package hashring implements consistent hashing hashring data structure.

Consistent hashing maps objects from a very big set of values (e.g. request
id) to objects from a quite small set (e.g. peers of a swarm), such that
adding or removing a node relocates only a small fraction of keys.

Nodes are placed on the ring by their precomputed hashes (see hash.Hashable).
A node registered with replication weight w occupies w+1 positions: its
primary hash and w successive rehashes of it. The chain is deterministic, so
positions of replicas are not stored and are derived again on removal.

Lookups use a sorted index of ring positions. The index is rebuilt explicitly:
either right after a single mutation, or once after a batch of them. Until
then lookups fail with ErrIndexStale. This lets callers insert many nodes
paying for a single index rebuild.

Ring is not goroutine safe. Use Sync for concurrent access.
*/
package hashring
