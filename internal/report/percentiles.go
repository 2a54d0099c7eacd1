package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/wesleyorama2/hotspan/internal/engine"
)

// Histogram bounds: 1 ns to 1 hour, three significant figures.
const (
	histMinNS     = 1
	histMaxNS     = 3_600_000_000_000
	histSigFigs   = 3
	percTableWide = 25 + 8 + 4*12
)

// WritePercentiles renders a per-component latency percentile summary
// from an HDR histogram over the raw samples, in nanoseconds.
func WritePercentiles(w io.Writer) error {
	m := engine.M()
	m.EnsureCalibrated()
	cpn := m.CyclesPerNS()

	type perc struct {
		name               string
		count              int64
		p50, p90, p95, p99 float64
	}

	var rows []perc
	for id, bufs := range m.Collect() {
		h := hdrhistogram.New(histMinNS, histMaxNS, histSigFigs)
		for _, b := range bufs {
			for _, v := range b.Samples {
				ns := int64(float64(v) / cpn)
				if ns < histMinNS {
					ns = histMinNS
				}
				if ns > histMaxNS {
					ns = histMaxNS
				}
				h.RecordValue(ns)
			}
		}
		if h.TotalCount() == 0 {
			continue
		}
		rows = append(rows, perc{
			name:  id.Name(),
			count: h.TotalCount(),
			p50:   float64(h.ValueAtQuantile(50)),
			p90:   float64(h.ValueAtQuantile(90)),
			p95:   float64(h.ValueAtQuantile(95)),
			p99:   float64(h.ValueAtQuantile(99)),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].name < rows[j].name })

	var b strings.Builder
	line := func(c byte) {
		b.WriteString(strings.Repeat(string(c), percTableWide))
		b.WriteByte('\n')
	}

	line('#')
	b.WriteString("HOTSPAN LATENCY PERCENTILES (TIME)\n")
	line('=')
	fmt.Fprintf(&b, "%-25s%8s%12s%12s%12s%12s\n",
		"COMPONENT", "SAMPLES", "P50", "P90", "P95", "P99")
	line('=')
	for _, r := range rows {
		fmt.Fprintf(&b, "%-25.25s%8d%12s%12s%12s%12s\n",
			r.name, r.count,
			FormatTime(r.p50), FormatTime(r.p90),
			FormatTime(r.p95), FormatTime(r.p99))
	}
	line('#')

	_, err := io.WriteString(w, b.String())
	return err
}
