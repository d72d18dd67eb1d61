package hashring

import (
	"strconv"
	"testing"

	"github.com/cryptlink/hashring/hash"
)

const benchWeight = 50

func benchNodes(b *testing.B, p hash.Provider, n int) []*hash.Text {
	xs := make([]*hash.Text, n)
	for i := range xs {
		x, err := hash.NewText("node-"+strconv.Itoa(i), p)
		if err != nil {
			b.Fatal(err)
		}
		xs[i] = x
	}
	return xs
}

func benchProviders(b *testing.B, fn func(*testing.B, hash.Provider)) {
	for _, p := range hash.Providers() {
		b.Run(p.String(), func(b *testing.B) {
			fn(b, p)
		})
	}
}

func BenchmarkRegister(b *testing.B) {
	benchProviders(b, func(b *testing.B, p hash.Provider) {
		xs := benchNodes(b, p, b.N)
		r, err := New[*hash.Text](p)
		if err != nil {
			b.Fatal(err)
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := r.Register(xs[i], benchWeight, true); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkRegisterLookup(b *testing.B) {
	benchProviders(b, func(b *testing.B, p hash.Provider) {
		xs := benchNodes(b, p, b.N)
		r, err := New[*hash.Text](p)
		if err != nil {
			b.Fatal(err)
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			h, err := r.Register(xs[i], benchWeight, true)
			if err != nil {
				b.Fatal(err)
			}
			if _, err := r.Lookup(h); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkRegisterBatch(b *testing.B) {
	benchProviders(b, func(b *testing.B, p hash.Provider) {
		xs := benchNodes(b, p, b.N)
		r, err := New[*hash.Text](p)
		if err != nil {
			b.Fatal(err)
		}
		b.ResetTimer()
		if err := r.RegisterBatch(xs, benchWeight, true); err != nil {
			b.Fatal(err)
		}
	})
}

func BenchmarkRegisterRemove(b *testing.B) {
	benchProviders(b, func(b *testing.B, p hash.Provider) {
		xs := benchNodes(b, p, b.N)
		r, err := New[*hash.Text](p)
		if err != nil {
			b.Fatal(err)
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := r.Register(xs[i], benchWeight, true); err != nil {
				b.Fatal(err)
			}
			if err := r.Remove(xs[i], true); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkLookupData(b *testing.B) {
	benchProviders(b, func(b *testing.B, p hash.Provider) {
		r, err := New[*hash.Text](p)
		if err != nil {
			b.Fatal(err)
		}
		if err := r.RegisterBatch(benchNodes(b, p, 100), benchWeight, true); err != nil {
			b.Fatal(err)
		}
		data := []byte("user:42")
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := r.LookupData(data); err != nil {
				b.Fatal(err)
			}
		}
	})
}
