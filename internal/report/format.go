// Package report renders extracted telemetry: the plain-text table the
// library is dumped through, a JSON document for machine consumers, and
// an HDR-histogram percentile summary.
package report

import "fmt"

// Unit selects the report's value domain.
type Unit int

const (
	// Cycles reports raw cycle counts with metric suffixes.
	Cycles Unit = iota
	// Time reports nanoseconds-derived values with adaptive units.
	Time
)

// String returns the unit name used in report headers.
func (u Unit) String() string {
	if u == Time {
		return "TIME"
	}
	return "CYCLES"
}

// Data selects whether the measured instrumentation overhead is
// subtracted from samples before aggregation.
type Data int

const (
	// Raw reports samples as recorded.
	Raw Data = iota
	// Calibrated subtracts each buffer's overhead offset, clamping
	// at zero.
	Calibrated
)

// String returns the data-mode name used in report headers.
func (d Data) String() string {
	if d == Calibrated {
		return "CALIBRATED"
	}
	return "RAW"
}

// FormatTime renders a nanosecond quantity with an adaptive unit and
// two decimals.
func FormatTime(ns float64) string {
	switch {
	case ns < 1e3:
		return fmt.Sprintf("%.2f ns", ns)
	case ns < 1e6:
		return fmt.Sprintf("%.2f us", ns/1e3)
	case ns < 1e9:
		return fmt.Sprintf("%.2f ms", ns/1e6)
	case ns < 60e9:
		return fmt.Sprintf("%.2f s", ns/1e9)
	default:
		return fmt.Sprintf("%.2f min", ns/60e9)
	}
}

// FormatCycles renders a cycle count with metric suffixes and two
// decimals beyond units.
func FormatCycles(c float64) string {
	switch {
	case c < 1e3:
		return fmt.Sprintf("%.2f", c)
	case c < 1e6:
		return fmt.Sprintf("%.2f K", c/1e3)
	case c < 1e9:
		return fmt.Sprintf("%.2f M", c/1e6)
	case c < 1e12:
		return fmt.Sprintf("%.2f B", c/1e9)
	default:
		return fmt.Sprintf("%.2f T", c/1e12)
	}
}

// format renders v in the report's unit.
func (u Unit) format(v float64) string {
	if u == Time {
		return FormatTime(v)
	}
	return FormatCycles(v)
}
