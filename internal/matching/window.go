package matching

import "math"

// minScoreTolerance keeps the closeness formula defined when the accepted
// tolerance collapses to zero (accuracy 1.0 means exact matches only).
const minScoreTolerance = 1e-9

// MultiplicativeWindow computes the [lo, hi] acceptance window around target
// for a multiplier m.
//
// The multiplier selects between two semantics, and callers depend on both:
//   - m >= 1 is a multiplicative window: [target/m, target*m]
//   - m < 1 is an additive fractional window: [target - target*m, target + target*m],
//     clamped at 0 on the low end
func MultiplicativeWindow(target, m float64) (lo, hi float64) {
	if m >= 1 {
		return target / m, target * m
	}
	lo = target - target*m
	if lo < 0 {
		lo = 0
	}
	return lo, target + target*m
}

// AccuracyWindow computes the acceptance window for an accuracy parameter in
// [0, 1]: tol = min(1, max(0, 1-accuracy)) and the window is
// [target*(1-tol), target*(1+tol)]. Used by the capped combinatorial bundle
// search. Also returns tol, which the scoring formula needs.
func AccuracyWindow(target, accuracy float64) (lo, hi, tol float64) {
	tol = 1 - accuracy
	if tol < 0 {
		tol = 0
	}
	if tol > 1 {
		tol = 1
	}
	return target * (1 - tol), target * (1 + tol), tol
}

// closenessScore maps a sum's distance from target into [0, 1], with 1 for
// an exact match degrading linearly to ~0 at the window edge. Only in-window
// sums are ever scored, so the result is non-negative by construction.
func closenessScore(sum, target, tol float64) float64 {
	return 1 - math.Abs(sum-target)/(target*math.Max(tol, minScoreTolerance))
}

func isUsableValue(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
