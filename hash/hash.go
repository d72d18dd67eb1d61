package hash

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
)

// MaxSize is the maximum digest length among supported providers.
const MaxSize = 64

var (
	ErrEmpty           = errors.New("hash: no backing bytes")
	ErrSize            = errors.New("hash: unexpected digest size")
	ErrUnknownProvider = errors.New("hash: unknown provider")
)

// Hash is a fixed-length digest together with the provider that produced it.
// Hash values are comparable and can be used as map keys.
// The zero value is an empty hash that has no backing bytes.
type Hash struct {
	p Provider
	n uint8
	b [MaxSize]byte
}

// Hashable is implemented by values that carry a precomputed hash.
type Hashable interface {
	ComputedHash() Hash
}

// Compute returns digest of data computed by provider p.
func Compute(data []byte, p Provider) (Hash, error) {
	return p.Sum(data)
}

// FromComputedBytes wraps bytes of already computed digest produced by
// provider p. Length of b must be equal to p.Size().
func FromComputedBytes(b []byte, p Provider) (Hash, error) {
	if !p.Valid() {
		return Hash{}, fmt.Errorf("%w: %s", ErrUnknownProvider, p)
	}
	if len(b) != p.Size() {
		return Hash{}, fmt.Errorf(
			"%w: %d bytes for %s; want %d",
			ErrSize, len(b), p, p.Size(),
		)
	}
	h := Hash{p: p, n: uint8(len(b))}
	copy(h.b[:], b)
	return h, nil
}

// ParseHex parses hex representation of a digest produced by p.
func ParseHex(s string, p Provider) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("hash: parse %q: %w", s, err)
	}
	return FromComputedBytes(b, p)
}

// Rehash returns digest of h's bytes computed by h's provider.
// Successive calls form a deterministic chain of hashes.
func (h Hash) Rehash() (Hash, error) {
	if h.IsZero() {
		return Hash{}, fmt.Errorf("hash: can't rehash: %w", ErrEmpty)
	}
	return h.p.Sum(h.b[:h.n])
}

// Bytes returns a copy of digest bytes.
func (h Hash) Bytes() []byte {
	if h.n == 0 {
		return nil
	}
	return append([]byte(nil), h.b[:h.n]...)
}

// AppendTo appends digest bytes to dst and returns the extended slice.
func (h Hash) AppendTo(dst []byte) []byte {
	return append(dst, h.b[:h.n]...)
}

func (h Hash) Provider() Provider { return h.p }
func (h Hash) Len() int           { return int(h.n) }

// IsZero reports whether h has no backing bytes.
func (h Hash) IsZero() bool {
	return h.n == 0
}

// Less reports whether h sorts before x.
func (h Hash) Less(x Hash) bool {
	return Compare(h, x) < 0
}

func (h Hash) String() string {
	if h.IsZero() {
		return "<empty>"
	}
	return hex.EncodeToString(h.b[:h.n])
}

// Compare compares digest bytes of a and b lexicographically.
// The result is 0 if a == b, -1 if a < b, and +1 if a > b.
func Compare(a, b Hash) int {
	return bytes.Compare(a.b[:a.n], b.b[:b.n])
}
