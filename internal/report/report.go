package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/wesleyorama2/hotspan/internal/engine"
	"github.com/wesleyorama2/hotspan/internal/stats"
	"github.com/wesleyorama2/hotspan/internal/tsc"
)

// tableWidth is the rendered width of every border and rule line.
const tableWidth = 123

// componentRow is one aggregated measurement site.
type componentRow struct {
	name    string
	summary stats.Summary
	bypass  int
}

// applyOffset subtracts the calibration offset from a raw sample,
// clamping at zero so a duration never goes negative.
func applyOffset(v, offset uint64) uint64 {
	if v > offset {
		return v - offset
	}
	return 0
}

// collect extracts all samples, applies the calibration offset and unit
// conversion, runs the preemption filter and aggregates per component.
// Rows come back sorted by name so output is deterministic.
func collect(unit Unit, data Data) []componentRow {
	m := engine.M()
	m.EnsureCalibrated()
	cpn := m.CyclesPerNS()

	rows := make([]componentRow, 0, 16)
	for id, bufs := range m.Collect() {
		var values []float64
		for _, b := range bufs {
			var offset uint64
			if data == Calibrated {
				offset = m.Offset(b.Key)
			}
			for _, v := range b.Samples {
				f := float64(applyOffset(v, offset))
				if unit == Time {
					f /= cpn
				}
				values = append(values, f)
			}
		}
		if len(values) == 0 {
			continue
		}
		kept, bypass := stats.Clean(values)
		rows = append(rows, componentRow{
			name:    id.Name(),
			summary: stats.Describe(kept),
			bypass:  bypass,
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].name < rows[j].name })
	return rows
}

// Write renders the telemetry report as a plain-text table. In
// Calibrated mode the overhead table precedes the component table.
func Write(w io.Writer, unit Unit, data Data) error {
	rows := collect(unit, data)

	var b strings.Builder
	if data == Calibrated {
		writeOverheadTable(&b, unit)
	}
	writeComponentTable(&b, unit, data, rows)

	_, err := io.WriteString(w, b.String())
	return err
}

func border(b *strings.Builder, c byte) {
	b.WriteString(strings.Repeat(string(c), tableWidth))
	b.WriteByte('\n')
}

func writeComponentTable(b *strings.Builder, unit Unit, data Data, rows []componentRow) {
	border(b, '#')
	fmt.Fprintf(b, "HOTSPAN TELEMETRY REPORT (%s, %s)\n", unit, data)
	border(b, '=')
	fmt.Fprintf(b, "%-25s%8s%12s%12s%12s%10s%12s%12s%12s%8s\n",
		"COMPONENT", "SAMPLES", "AVG", "MEDIAN", "STD DEV", "SKEW",
		"MIN", "MAX", "RANGE", "BYPASS")
	border(b, '=')

	for _, r := range rows {
		s := r.summary
		fmt.Fprintf(b, "%-25.25s%8d%12s%12s%12s%10.2f%12s%12s%12s%8d\n",
			r.name, s.N,
			unit.format(s.Avg), unit.format(s.Median), unit.format(s.StdDev),
			s.Skew,
			unit.format(s.Min), unit.format(s.Max), unit.format(s.Range),
			r.bypass)
	}
	border(b, '#')
}

// writeOverheadTable renders the measured self-cost of an instrumented
// no-op for every (start, stop) mode permutation plus the Pulse slot.
func writeOverheadTable(b *strings.Builder, unit Unit) {
	m := engine.M()
	cpn := m.CyclesPerNS()

	conv := func(cycles uint64) string {
		f := float64(cycles)
		if unit == Time {
			f /= cpn
		}
		return unit.format(f)
	}

	border(b, '#')
	fmt.Fprintf(b, "INSTRUMENTATION OVERHEAD (%s)\n", unit)
	border(b, '=')
	fmt.Fprintf(b, "%-12s%14s%14s%14s\n", "START\\STOP",
		tsc.Fast.String(), tsc.Mid.String(), tsc.Hard.String())
	for s := tsc.Mode(0); s < tsc.NumModes; s++ {
		fmt.Fprintf(b, "%-12s%14s%14s%14s\n", s.String(),
			conv(m.Offset(engine.Key(s, tsc.Fast))),
			conv(m.Offset(engine.Key(s, tsc.Mid))),
			conv(m.Offset(engine.Key(s, tsc.Hard))))
	}
	fmt.Fprintf(b, "%-12s%14s\n", "PULSE", conv(m.Offset(engine.KeyPulse)))
	border(b, '=')
}
