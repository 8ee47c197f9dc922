package tensor

import "errors"

// Sentinel errors for the tensor package. Callers match them with errors.Is.
var (
	// ErrInvalidRequest reports a decomposition or rounding request whose
	// options contradict each other or the input's geometry.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrShapeMismatch reports core or factor lists whose dimensions do not
	// chain into a consistent tensor network.
	ErrShapeMismatch = errors.New("shape mismatch")
)
