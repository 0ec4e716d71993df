// Command gcstress exercises the collector end to end: worker goroutines
// build and drop linked object graphs while a dedicated goroutine collects
// continuously, then a summary is printed.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"tracegc/gc"
)

var (
	workers  = flag.Int("workers", 4, "number of mutator goroutines")
	iters    = flag.Int("iters", 200, "graphs each worker builds and drops")
	depth    = flag.Int("depth", 16, "links per graph")
	fanout   = flag.Int("fanout", 2, "children stored in each node's vector")
	interval = flag.Duration("interval", 0, "pause between collections (0 = back to back)")
)

type node struct {
	Val      int
	Next     gc.Ptr[node]
	Children gc.Vector[node]
}

func buildGraph(depth, fanout, seed int) *gc.Ptr[node] {
	return gc.MakeGc[node](func(n *node) {
		n.Val = seed + depth
		if depth > 1 {
			child := buildGraph(depth-1, fanout, seed)
			n.Next.SetPtr(child)
			child.Drop()
		}
		for i := 0; i < fanout; i++ {
			n.Children.EmplaceBack(func(c *node) { c.Val = -i })
		}
	})
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	if *workers < 1 || *depth < 1 {
		return fmt.Errorf("workers and depth must be positive")
	}

	var (
		collections int64
		freed       int64
		peakAlive   int64
	)

	start := time.Now()
	stop := make(chan struct{})
	var collectorWG sync.WaitGroup
	collectorWG.Add(1)
	go func() {
		defer collectorWG.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			atomic.AddInt64(&freed, int64(gc.CollectGarbage()))
			atomic.AddInt64(&collections, 1)
			if alive := int64(gc.AliveAllocationCount()); alive > atomic.LoadInt64(&peakAlive) {
				atomic.StoreInt64(&peakAlive, alive)
			}
			if *interval > 0 {
				time.Sleep(*interval)
			} else {
				runtime.Gosched()
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for i := 0; i < *iters; i++ {
				root := buildGraph(*depth, *fanout, seed)
				for cur := root.Get(); cur != nil; cur = cur.Next.Get() {
					if cur.Val < 0 {
						panic("graph corrupted under collection")
					}
				}
				root.Drop()
			}
		}(w * 1_000_000)
	}
	wg.Wait()
	close(stop)
	collectorWG.Wait()

	// Drain whatever the last drops left behind.
	for {
		n := gc.CollectGarbage()
		atomic.AddInt64(&freed, int64(n))
		atomic.AddInt64(&collections, 1)
		if n == 0 {
			break
		}
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	defer tw.Flush()
	fmt.Fprintf(tw, "Workers\tGraphs\tObjects/graph\tCollections\tFreed\tPeak alive\tAlive\tElapsed\n")
	fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%v\n",
		*workers,
		(*workers)*(*iters),
		(*depth)*(1+*fanout),
		collections,
		freed,
		peakAlive,
		gc.AliveAllocationCount(),
		time.Since(start).Round(time.Millisecond))
	return nil
}
