package scenario

import "github.com/tidwall/gjson"

// CheckResult is the outcome of one check against the JSON report.
type CheckResult struct {
	Check
	Actual  float64
	Missing bool
	Passed  bool
}

// EvalChecks evaluates every check against the JSON report document.
// A path that resolves to nothing fails with Missing set.
func EvalChecks(reportJSON []byte, checks []Check) []CheckResult {
	results := make([]CheckResult, 0, len(checks))
	for _, ch := range checks {
		res := CheckResult{Check: ch}
		v := gjson.GetBytes(reportJSON, ch.Path)
		if !v.Exists() {
			res.Missing = true
			results = append(results, res)
			continue
		}
		res.Actual = v.Float()
		res.Passed = compare(res.Actual, ch.Op, ch.Value)
		results = append(results, res)
	}
	return results
}

// AllPassed reports whether every check passed.
func AllPassed(results []CheckResult) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

func compare(actual float64, op string, want float64) bool {
	switch op {
	case "eq":
		return actual == want
	case "ne":
		return actual != want
	case "gt":
		return actual > want
	case "ge":
		return actual >= want
	case "lt":
		return actual < want
	case "le":
		return actual <= want
	}
	return false
}
