package stats

import (
	"math"
	"sort"
)

// minTailBucket is the smallest trailing bucket that still contributes
// a maximum to the fence computation.
const minTailBucket = BucketSize / 2

// Clean filters OS-preemption outliers from one component's samples and
// returns the kept values sorted ascending plus the number of bypassed
// (removed) samples.
//
// The fence comes from bucketed maxima rather than a global IQR: a
// global interquartile range does not reject outliers well for
// high-frequency, low-duration sites, while per-bucket maxima probe the
// local worst case and can be upper-fenced directly.
//
//   - Partition into buckets of 1000 consecutive samples; a tail shorter
//     than 500 contributes no maximum.
//   - With >= 4 maxima: sort them, q1 = s[n/4], q3 = s[3n/4],
//     cutoff = q3 + 3*IQR, or 1.5*q3 when the IQR collapses to zero.
//   - With 1..3 maxima: cutoff = 1.5 * the smallest maximum. A clean
//     bucket's maximum is the local worst case of normal operation; a
//     preempted bucket's maximum is noise, so the smallest one is the
//     only trustworthy anchor when there are too few for quartiles.
//   - With none: no filtering.
//
// If the fence would remove everything the input is returned unfiltered
// with bypass 0.
func Clean(values []float64) (kept []float64, bypass int) {
	var maxima []float64
	for off := 0; off < len(values); off += BucketSize {
		end := off + BucketSize
		if end > len(values) {
			if len(values)-off < minTailBucket {
				break
			}
			end = len(values)
		}
		m := values[off]
		for _, v := range values[off+1 : end] {
			if v > m {
				m = v
			}
		}
		maxima = append(maxima, m)
	}

	cutoff := math.Inf(1)
	switch {
	case len(maxima) >= 4:
		sort.Float64s(maxima)
		n := len(maxima)
		q1, q3 := maxima[n/4], maxima[3*n/4]
		if iqr := q3 - q1; iqr > 0 {
			cutoff = q3 + 3*iqr
		} else {
			cutoff = 1.5 * q3
		}
	case len(maxima) >= 1:
		m := maxima[0]
		for _, v := range maxima[1:] {
			if v < m {
				m = v
			}
		}
		cutoff = 1.5 * m
	}

	kept = make([]float64, 0, len(values))
	for _, v := range values {
		if v <= cutoff {
			kept = append(kept, v)
		} else {
			bypass++
		}
	}

	if len(kept) == 0 {
		kept = append(kept[:0], values...)
		bypass = 0
	}

	sort.Float64s(kept)
	return kept, bypass
}
