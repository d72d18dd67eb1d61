package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gobwas/avl"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/cryptlink/hashring"
	"github.com/cryptlink/hashring/hash"
	"github.com/cryptlink/hashring/promring"
)

func main() {
	var (
		p        int    // Number of goroutines.
		n        int    // Number of objects.
		s        int    // Number of servers on the ring.
		ws       string // Comma-separated weights list.
		lo       int    // Min weight.
		hi       int    // Max weight.
		hashName string // Hash provider name.
		csv      bool
		metrics  bool

		verbose bool
		silent  bool
	)
	flag.IntVar(&p,
		"parallelism", runtime.NumCPU(),
		"number of concurrent processors",
	)
	flag.IntVar(&n,
		"objects", 1e5,
		"number of objects to spread on ring",
	)
	flag.IntVar(&s,
		"servers", 10,
		"number of servers to place on ring",
	)
	flag.StringVar(&ws,
		"weights", "0,10,50,100",
		"comma-separated list of replication weights",
	)
	flag.IntVar(&lo,
		"lo", 0,
		"replication weight to start from",
	)
	flag.IntVar(&hi,
		"hi", 0,
		"replication weight to end at",
	)
	flag.StringVar(&hashName,
		"hash", hash.SHA256.String(),
		"hash provider to be used",
	)
	flag.BoolVar(&csv,
		"csv", true,
		"print csv to standard output",
	)
	flag.BoolVar(&metrics,
		"metrics", false,
		"print ring metrics to standard error at exit",
	)
	flag.BoolVar(&verbose,
		"v", false,
		"be verbose",
	)
	flag.BoolVar(&silent,
		"s", false,
		"be silent",
	)

	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	switch {
	case verbose:
		log.SetLevel(logrus.DebugLevel)
	case silent:
		log.SetLevel(logrus.ErrorLevel)
	}

	provider, err := hash.ParseProvider(hashName)
	if err != nil {
		log.WithError(err).Fatal("bad -hash value")
	}

	// Prepare servers to be put on ring(s).
	servers := make([]*hash.Text, s)
	seenSrv := make(map[string]bool)
	for i := 0; i < s; {
		id := "srv-" + gonanoid.Must(8)
		if seenSrv[id] {
			log.Debugf("#%d server duplicated; repeat", i)
			continue
		}
		seenSrv[id] = true
		servers[i], err = hash.NewText(id, provider)
		if err != nil {
			log.WithError(err).Fatal("can't hash server id")
		}
		i++
	}
	log.Debugf("%d servers are ready", len(servers))

	// Prepare objects to be spread across servers on ring(s).
	objects := make([][]byte, n)
	for i := range objects {
		objects[i] = []byte(gonanoid.Must())
	}
	log.Debugf("%d objects are ready", len(objects))

	// Prepare list of weights. We merge here weights range (from `lo` to
	// `hi`) with manually specified weights in `ws`.
	// We use tree to autofix duplicates (if any).
	var weights avl.Tree
	for _, s := range strings.Split(ws, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		w, err := strconv.Atoi(s)
		if err != nil {
			log.WithError(err).Fatal("bad -weights value")
		}
		weights, _ = weights.Insert(weight(w))
	}
	for w := lo; w < hi; w++ {
		weights, _ = weights.Insert(weight(w))
	}
	log.Debugf("%d weights are ready", weights.Size())

	reg := prometheus.NewRegistry()
	trace := promring.New(reg).Trace()
	if verbose {
		trace = trace.Compose(hashring.LogTrace(log.WithField("component", "hashring")))
	}

	mean := float64(n) / float64(s)

	var (
		work    = make(chan int)
		stop    = make(chan struct{})
		done    = make(chan struct{}, p)
		results = make(chan result, 1)
	)
	for i := 0; i < p; i++ {
		go func() {
			defer func() {
				done <- struct{}{}
			}()
			distribution := make(map[string]int, len(servers))
			for {
				var w int
				select {
				case <-stop:
					return
				case w = <-work:
					// Process below.
				}

				r, err := hashring.New[*hash.Text](provider, hashring.WithTrace(trace))
				if err != nil {
					log.WithError(err).Fatal("can't create ring")
				}

				start := time.Now()
				if err := r.RegisterBatch(servers, w, true); err != nil {
					log.WithError(err).Fatal("can't register servers")
				}
				latency := time.Since(start)

				owners := make([]*hash.Text, len(objects))
				for i, obj := range objects {
					x, err := r.LookupData(obj)
					if err != nil {
						log.WithError(err).Fatal("lookup failed")
					}
					owners[i] = x
					distribution[x.String()]++
				}
				var variance float64
				for key, d := range distribution {
					variance += math.Pow(float64(d)-mean, 2)
					distribution[key] = 0
				}
				// Divide by number of servers as for mean.
				variance /= float64(s)

				// Remove one server and count objects which changed their
				// owner. Only objects of the removed server should move.
				var moved int
				if len(servers) > 1 {
					if err := r.Remove(servers[0], true); err != nil {
						log.WithError(err).Fatal("can't remove server")
					}
					for i, obj := range objects {
						x, err := r.LookupData(obj)
						if err != nil {
							log.WithError(err).Fatal("lookup failed")
						}
						if x != owners[i] {
							moved++
						}
					}
				}

				results <- result{
					w:       w,
					latency: latency,
					stddev:  math.Sqrt(variance),
					moved:   moved,
				}
			}
		}()
	}

	go func() {
		weights.InOrder(func(x avl.Item) bool {
			select {
			case <-stop:
				return false
			case work <- int(x.(weight)):
				return true
			}
		})
		close(stop)
		for i := 0; i < p; i++ {
			<-done
		}
		close(results)
	}()

	var t avl.Tree
	for r := range results {
		t, _ = t.Insert(r)
		if !silent {
			fmt.Fprint(os.Stderr, ".")
		}
	}
	if !silent {
		fmt.Fprintln(os.Stderr)
	}

	tw := tabwriter.NewWriter(os.Stdout, 2, 2, 2, ' ', 0)
	t.InOrder(func(x avl.Item) bool {
		r := x.(result)
		var (
			devPct   = r.stddev / float64(n) * 100
			movedPct = float64(r.moved) / float64(n) * 100
		)
		log.WithFields(logrus.Fields{
			"weight":  r.w,
			"stddev":  fmt.Sprintf("%.2f(%.2f%%)", r.stddev, devPct),
			"moved":   fmt.Sprintf("%d(%.2f%%)", r.moved, movedPct),
			"latency": r.latency,
		}).Debug("result")
		if csv {
			fmt.Fprintf(tw,
				"%d,\t%.4f,\t%.4f,\t%.2f\n",
				r.w, devPct, movedPct,
				r.latency.Seconds()*1000,
			)
		}
		return true
	})
	tw.Flush()

	if metrics {
		printMetrics(log, reg)
	}

	log.Info("OK")
}

type result struct {
	w       int
	latency time.Duration
	stddev  float64
	moved   int
}

func (r result) Compare(x avl.Item) int {
	return r.w - x.(result).w
}

type weight int

func (w weight) Compare(x avl.Item) int {
	return int(w - x.(weight))
}

func printMetrics(log logrus.FieldLogger, g prometheus.Gatherer) {
	mfs, err := g.Gather()
	if err != nil {
		log.WithError(err).Error("can't gather metrics")
		return
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			var v float64
			switch {
			case m.GetCounter() != nil:
				v = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				v = m.GetGauge().GetValue()
			}
			fmt.Fprintf(os.Stderr, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), v)
		}
	}
}
