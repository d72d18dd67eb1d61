/*
Package hash provides fixed-length, ordered digest values used as positions on
the hashring.

A Hash remembers the Provider which produced it. That makes it possible to
derive a deterministic chain of hashes from a single value: Rehash() digests
the bytes of a hash with its own provider, so the same hash always yields the
same next hash.
*/
package hash
