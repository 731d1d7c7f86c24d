package utils

import "math"

// ClampPct clamps v into [0,100].
func ClampPct(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// CoercePct converts an untyped JSON number into a percentage in [0,100],
// returning fallback for anything non-numeric or non-finite.
func CoercePct(v interface{}, fallback int) int {
	f, ok := asFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return ClampPct(int(math.Round(f)))
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
