package hash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	stdhash "hash"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-farm"
	"golang.org/x/crypto/blake2b"
)

// Provider is a named digest algorithm used to produce Hash values.
type Provider uint8

const (
	Unknown Provider = iota
	MD5
	SHA1
	SHA256
	SHA384
	SHA512
	BLAKE2b256
	BLAKE2b512
	XXHash64
	Farm64

	numProviders
)

var providers = [numProviders]struct {
	name string
	size int
	new  func() stdhash.Hash
}{
	MD5:        {"MD5", md5.Size, md5.New},
	SHA1:       {"SHA1", sha1.Size, sha1.New},
	SHA256:     {"SHA256", sha256.Size, sha256.New},
	SHA384:     {"SHA384", sha512.Size384, sha512.New384},
	SHA512:     {"SHA512", sha512.Size, sha512.New},
	BLAKE2b256: {"BLAKE2b256", blake2b.Size256, newBlake2b(blake2b.New256)},
	BLAKE2b512: {"BLAKE2b512", blake2b.Size, newBlake2b(blake2b.New512)},
	XXHash64:   {"XXHash64", 8, func() stdhash.Hash { return xxhash.New() }},
	Farm64:     {"Farm64", 8, func() stdhash.Hash { return new(farm64) }},
}

// pools holds reusable digest states, one pool per provider.
var pools [numProviders]sync.Pool

// Providers returns all supported providers in declaration order.
func Providers() []Provider {
	ps := make([]Provider, 0, numProviders-1)
	for p := Unknown + 1; p < numProviders; p++ {
		ps = append(ps, p)
	}
	return ps
}

// ParseProvider returns provider with given name. Case is ignored.
func ParseProvider(name string) (Provider, error) {
	for _, p := range Providers() {
		if strings.EqualFold(name, providers[p].name) {
			return p, nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
}

// Valid reports whether p is one of the supported providers.
func (p Provider) Valid() bool {
	return p > Unknown && p < numProviders
}

// Size returns the length in bytes of digests produced by p.
// It returns 0 for an unknown provider.
func (p Provider) Size() int {
	if !p.Valid() {
		return 0
	}
	return providers[p].size
}

func (p Provider) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Provider(%d)", uint8(p))
	}
	return providers[p].name
}

// Sum computes digest of data.
func (p Provider) Sum(data []byte) (Hash, error) {
	if !p.Valid() {
		return Hash{}, fmt.Errorf("%w: %s", ErrUnknownProvider, p)
	}
	d := p.digest()
	defer p.release(d)

	d.Write(data)

	h := Hash{p: p, n: uint8(providers[p].size)}
	// Sum appends into h.b in place: its capacity is always enough.
	d.Sum(h.b[:0])

	return h, nil
}

func (p Provider) digest() stdhash.Hash {
	if d, _ := pools[p].Get().(stdhash.Hash); d != nil {
		return d
	}
	return providers[p].new()
}

func (p Provider) release(d stdhash.Hash) {
	d.Reset()
	pools[p].Put(d)
}

func newBlake2b(fn func([]byte) (stdhash.Hash, error)) func() stdhash.Hash {
	return func() stdhash.Hash {
		d, err := fn(nil)
		if err != nil {
			// Only possible with a key longer than 64 bytes.
			panic(fmt.Sprintf("hash: blake2b error: %v", err))
		}
		return d
	}
}

// farm64 adapts farmhash fingerprint to the hash.Hash interface.
// Fingerprint64 is not incremental, so written data is buffered until Sum.
type farm64 struct {
	buf []byte
}

func (f *farm64) Write(p []byte) (int, error) {
	f.buf = append(f.buf, p...)
	return len(p), nil
}

func (f *farm64) Sum(b []byte) []byte {
	return binary.BigEndian.AppendUint64(b, farm.Fingerprint64(f.buf))
}

func (f *farm64) Reset()         { f.buf = f.buf[:0] }
func (f *farm64) Size() int      { return 8 }
func (f *farm64) BlockSize() int { return 1 }
