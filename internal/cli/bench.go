package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/hotspan"
	"github.com/wesleyorama2/hotspan/internal/report"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure and print the library's own overhead",
	Long: `Run the self-calibration and print what each recording primitive
costs: the nine (start, stop) mode permutations of an instrumented
no-op pair plus the Pulse primitive, in cycles and nanoseconds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		noColor, _ := cmd.Flags().GetBool("no-color")
		scheme := schemeFor(noColor)

		hotspan.Calibrate()
		cpn := hotspan.CyclesPerNanosecond()

		doc := report.Build(report.Cycles, report.Calibrated)

		scheme.Header.Println("HOTSPAN SELF-OVERHEAD")
		scheme.Label.Printf("cycles per nanosecond: ")
		scheme.Value.Printf("%.3f\n\n", cpn)

		fmt.Printf("%-14s%14s%14s\n", "PRIMITIVE", "CYCLES", "TIME")
		for _, key := range []string{
			"fast_fast", "fast_mid", "fast_hard",
			"mid_fast", "mid_mid", "mid_hard",
			"hard_fast", "hard_mid", "hard_hard",
			"pulse",
		} {
			cycles := doc.Overhead[key]
			fmt.Printf("%-14s%14s%14s\n", key,
				report.FormatCycles(cycles),
				report.FormatTime(cycles/cpn))
		}
		return nil
	},
}

func init() {
	benchCmd.Flags().Bool("no-color", false, "disable colored output")
}
