package tensor

import "math"

// splitTolerance divides a global relative-error budget across sequential
// truncation stages. Truncation errors accumulate roughly orthogonally, so
// giving each of n stages eps/sqrt(n) keeps the combined error within eps.
func splitTolerance(eps float64, stages int) float64 {
	if stages <= 1 {
		return eps
	}
	return eps / math.Sqrt(float64(stages))
}
