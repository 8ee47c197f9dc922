package linalg

import "errors"

// Common errors.
var (
	// ErrFactorization reports that a dense factorization primitive failed
	// to converge. It is fatal for the surrounding decomposition and is
	// propagated unchanged, never retried.
	ErrFactorization = errors.New("factorization did not converge")
)
