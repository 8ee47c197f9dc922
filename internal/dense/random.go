package dense

import "math/rand"

// Randn creates an array with values drawn from a standard normal
// distribution. A nil rng falls back to the shared math/rand source.
// Note: uses math/rand (not crypto/rand) - appropriate for numerical seeding.
func Randn(shape Shape, rng *rand.Rand) *Dense {
	d := New(shape)
	if rng == nil {
		for i := range d.data {
			d.data[i] = rand.NormFloat64() //nolint:gosec // G404: numeric init wants reproducibility, not entropy
		}
		return d
	}
	for i := range d.data {
		d.data[i] = rng.NormFloat64()
	}
	return d
}

// Full creates an array with every element set to value.
func Full(shape Shape, value float64) *Dense {
	d := New(shape)
	for i := range d.data {
		d.data[i] = value
	}
	return d
}
