//go:build hashring_debug
// +build hashring_debug

package hashring

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cryptlink/hashring/hash"
)

const debug = true

func assertIndex[T hash.Hashable](index []*entry[T]) {
	for i := 1; i < len(index); i++ {
		if !index[i-1].key.Less(index[i].key) {
			panic(fmt.Sprintf(
				"hashring: internal error: index is not strictly ordered at #%d: %s >= %s",
				i, index[i-1].key, index[i].key,
			))
		}
	}
}

func setupRingTrace(t *Trace) {
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	*t = t.Compose(LogTrace(l.WithField("component", "hashring")))
}
