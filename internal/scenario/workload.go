package scenario

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/wesleyorama2/hotspan"
)

// chaseNode is one cell of the pointer-chasing workload. The padding
// spreads nodes across cache lines so every hop is a dependent load.
type chaseNode struct {
	next *chaseNode
	_    [7]uint64
}

// Run executes every scenario sequentially; each scenario's workers run
// concurrently. Instrumentation ids are minted once per scenario, so a
// scenario is one component in the report.
func Run(cfg *Config) error {
	for i := range cfg.Scenarios {
		if err := runScenario(&cfg.Scenarios[i], cfg.Pin); err != nil {
			return err
		}
	}
	return nil
}

func runScenario(sc *ScenarioConfig, pin bool) error {
	id := hotspan.NewID(sc.Name)

	var rec hotspan.Recorder
	switch sc.Mode {
	case "mid":
		rec = hotspan.Mid
	case "hard":
		rec = hotspan.Hard
	default:
		rec = hotspan.Fast
	}

	var iterate func(i int)
	switch sc.Workload {
	case "spin":
		kernel := sc.SpinKernel
		iterate = func(int) {
			rec.Start(id)
			spin(kernel)
			rec.Stop(id)
		}
	case "sleep":
		d, err := time.ParseDuration(sc.Sleep)
		if err != nil {
			return fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
		iterate = func(int) {
			rec.Start(id)
			time.Sleep(d)
			rec.Stop(id)
		}
	case "chase":
		head := buildChain(sc.ChaseNodes)
		iterate = func(int) {
			rec.Start(id)
			chase(head)
			rec.Stop(id)
		}
	default:
		return fmt.Errorf("scenario %q: unknown workload %q", sc.Name, sc.Workload)
	}

	if sc.Pulse {
		inner := iterate
		iterate = func(i int) {
			hotspan.Pulse(id)
			inner(i)
		}
	}

	var wg sync.WaitGroup
	for w := 0; w < sc.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if pin {
				runtime.LockOSThread()
				defer runtime.UnlockOSThread()
			}
			for i := 0; i < sc.Iterations; i++ {
				iterate(i)
			}
		}()
	}
	wg.Wait()
	return nil
}

var spinSink uint64

// spin burns a fixed number of ALU iterations; the package-level sink
// keeps the loop from being optimized away.
func spin(n int) {
	x := spinSink | 1
	for i := 0; i < n; i++ {
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
	}
	spinSink = x
}

// buildChain links nodes in a shuffled order so traversal defeats the
// hardware prefetcher.
func buildChain(n int) *chaseNode {
	if n < 2 {
		n = 2
	}
	nodes := make([]chaseNode, n)

	// Deterministic permutation: stride by a value coprime to n.
	stride := n/2 + 1
	for stride > 1 && gcd(stride, n) != 1 {
		stride++
	}
	idx := 0
	for i := 0; i < n-1; i++ {
		next := (idx + stride) % n
		nodes[idx].next = &nodes[next]
		idx = next
	}
	nodes[idx].next = nil
	return &nodes[0]
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

var chaseSink *chaseNode

func chase(head *chaseNode) {
	curr := head
	for curr != nil {
		curr = curr.next
	}
	chaseSink = curr
}
