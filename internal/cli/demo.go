package cli

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/hotspan"
)

// Demo measurement sites. Package scope so every invocation presents
// the same identity, as the library requires.
var (
	idLoopIteration  = hotspan.NewID("LoopIteration")
	idNestedLevel    = hotspan.NewID("NestedLevel")
	idPointerChasing = hotspan.NewID("PointerChasing")
	idWorkerPulse    = hotspan.NewID("WorkerPulse")
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the built-in demo workloads and print the report",
	Long: `Run a fixed set of demo workloads against the library: a tight
instrumented loop, a 10-deep nested recursion, a pointer-chasing region
measured under the Hard source, and several worker goroutines recording
Pulse deltas. The telemetry report is printed to stdout afterwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		workers, _ := cmd.Flags().GetInt("workers")
		pulses, _ := cmd.Flags().GetInt("pulses")
		pin, _ := cmd.Flags().GetBool("pin")
		unitName, _ := cmd.Flags().GetString("unit")
		dataName, _ := cmd.Flags().GetString("data")
		percentiles, _ := cmd.Flags().GetBool("percentiles")

		unit, data, err := parseReportModes(unitName, dataName)
		if err != nil {
			return err
		}

		// Calibrate up front so the pause is not attributed to the
		// first workload.
		hotspan.Calibrate()

		runDemoWorkloads(workers, pulses, pin)

		if err := hotspan.DumpToStream(os.Stdout, unit, data); err != nil {
			return err
		}
		if percentiles {
			return hotspan.DumpPercentiles(os.Stdout)
		}
		return nil
	},
}

func init() {
	demoCmd.Flags().Int("workers", 4, "pulse worker goroutines")
	demoCmd.Flags().Int("pulses", 1000, "pulse calls per worker")
	demoCmd.Flags().Bool("pin", false, "lock workers to OS threads")
	demoCmd.Flags().String("unit", "time", "report unit: cycles or time")
	demoCmd.Flags().String("data", "calibrated", "report data: raw or calibrated")
	demoCmd.Flags().Bool("percentiles", false, "append the percentile summary")
}

func runDemoWorkloads(workers, pulses int, pin bool) {
	// Tight loop under the Fast source.
	for i := 0; i < 1000; i++ {
		hotspan.Fast.Start(idLoopIteration)
		hotspan.Fast.Stop(idLoopIteration)
	}

	// Nested recursion: strict LIFO pairing ten levels deep.
	deepFunction(10)

	// Cache-miss latency under the Hard source.
	head := buildDemoChain(1000)
	hotspan.Hard.Start(idPointerChasing)
	for n := head; n != nil; n = n.next {
	}
	hotspan.Hard.Stop(idPointerChasing)

	// Worker goroutines recording loop deltas.
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if pin {
				runtime.LockOSThread()
				defer runtime.UnlockOSThread()
			}
			for i := 0; i < pulses; i++ {
				time.Sleep(10 * time.Microsecond)
				hotspan.Pulse(idWorkerPulse)
			}
		}()
	}
	wg.Wait()
}

func deepFunction(depth int) {
	hotspan.Fast.Start(idNestedLevel)
	if depth > 0 {
		deepFunction(depth - 1)
	}
	hotspan.Fast.Stop(idNestedLevel)
}

type demoNode struct {
	next *demoNode
	_    [7]uint64
}

func buildDemoChain(n int) *demoNode {
	nodes := make([]demoNode, n)
	for i := 0; i < n-1; i++ {
		nodes[i].next = &nodes[i+1]
	}
	return &nodes[0]
}

// parseReportModes maps flag strings onto the report enums.
func parseReportModes(unitName, dataName string) (hotspan.Unit, hotspan.Data, error) {
	var unit hotspan.Unit
	switch unitName {
	case "cycles":
		unit = hotspan.Cycles
	case "time":
		unit = hotspan.Time
	default:
		return 0, 0, fmt.Errorf("unknown unit %q (want cycles or time)", unitName)
	}

	var data hotspan.Data
	switch dataName {
	case "raw":
		data = hotspan.Raw
	case "calibrated":
		data = hotspan.Calibrated
	default:
		return 0, 0, fmt.Errorf("unknown data mode %q (want raw or calibrated)", dataName)
	}
	return unit, data, nil
}
