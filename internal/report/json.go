package report

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/wesleyorama2/hotspan/internal/engine"
	"github.com/wesleyorama2/hotspan/internal/tsc"
)

// Component is one aggregated measurement site in the JSON report.
type Component struct {
	Name    string  `json:"name"`
	Samples int     `json:"samples"`
	Avg     float64 `json:"avg"`
	Median  float64 `json:"median"`
	StdDev  float64 `json:"stdDev"`
	Skew    float64 `json:"skew"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Range   float64 `json:"range"`
	Bypass  int     `json:"bypass"`
}

// Document is the machine-readable report. Overhead keys are
// "fast_fast" .. "hard_hard" plus "pulse"; values follow the document's
// unit.
type Document struct {
	Unit        string             `json:"unit"`
	Data        string             `json:"data"`
	CyclesPerNS float64            `json:"cyclesPerNs"`
	Overhead    map[string]float64 `json:"overhead,omitempty"`
	Components  []Component        `json:"components"`
}

// Build assembles the JSON document without serializing it.
func Build(unit Unit, data Data) *Document {
	rows := collect(unit, data)
	m := engine.M()

	doc := &Document{
		Unit:        strings.ToLower(unit.String()),
		Data:        strings.ToLower(data.String()),
		CyclesPerNS: m.CyclesPerNS(),
		Components:  make([]Component, 0, len(rows)),
	}

	if data == Calibrated {
		conv := func(cycles uint64) float64 {
			f := float64(cycles)
			if unit == Time {
				f /= m.CyclesPerNS()
			}
			return f
		}
		doc.Overhead = make(map[string]float64, engine.NumKeys)
		for s := tsc.Mode(0); s < tsc.NumModes; s++ {
			for e := tsc.Mode(0); e < tsc.NumModes; e++ {
				k := strings.ToLower(s.String() + "_" + e.String())
				doc.Overhead[k] = conv(engine.M().Offset(engine.Key(s, e)))
			}
		}
		doc.Overhead["pulse"] = conv(engine.M().Offset(engine.KeyPulse))
	}

	for _, r := range rows {
		s := r.summary
		doc.Components = append(doc.Components, Component{
			Name:    r.name,
			Samples: s.N,
			Avg:     s.Avg,
			Median:  s.Median,
			StdDev:  s.StdDev,
			Skew:    s.Skew,
			Min:     s.Min,
			Max:     s.Max,
			Range:   s.Range,
			Bypass:  r.bypass,
		})
	}
	return doc
}

// WriteJSON renders the report as indented JSON.
func WriteJSON(w io.Writer, unit Unit, data Data) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Build(unit, data))
}
