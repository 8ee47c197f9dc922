package tensor

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/xx-fighting/tntorch/internal/dense"
)

// RandTT builds a TT tensor with the given interior bond ranks and standard
// normal core entries. ranks broadcasts like Options.RanksTT and every
// entry must be at least 1; a 1-mode shape takes no ranks.
func RandTT(shape dense.Shape, ranks []int, seed int64) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	n := len(shape)
	if n > 1 && ranks == nil {
		return nil, fmt.Errorf("%w: bond ranks are required for %d modes", ErrInvalidRequest, n)
	}
	bonds, err := normalizeRanks(ranks, max(n-1, 0), "ranks")
	if err != nil {
		return nil, err
	}
	for k, r := range bonds {
		if r < 1 {
			return nil, fmt.Errorf("%w: bond rank %d at position %d", ErrInvalidRequest, r, k)
		}
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible inits, not cryptography
	cores := make([]*dense.Dense, n)
	rPrev := 1
	for k := 0; k < n; k++ {
		rNext := 1
		if k < n-1 {
			rNext = bonds[k]
		}
		cores[k] = dense.Randn(dense.Shape{rPrev, shape[k], rNext}, rng)
		rPrev = rNext
	}
	return &Tensor{cores: cores}, nil
}

// RandCP builds a CP tensor of the given rank with standard normal factor
// entries.
func RandCP(shape dense.Shape, rank int, seed int64) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if rank < 1 {
		return nil, fmt.Errorf("%w: CP rank %d", ErrInvalidRequest, rank)
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible inits, not cryptography
	cores := make([]*dense.Dense, len(shape))
	for k, s := range shape {
		cores[k] = dense.Randn(dense.Shape{s, rank}, rng)
	}
	return &Tensor{cores: cores}, nil
}

// Zeros returns the zero tensor as a TT chain with unit bond ranks.
func Zeros(shape dense.Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	cores := make([]*dense.Dense, len(shape))
	for k, s := range shape {
		cores[k] = dense.New(dense.Shape{1, s, 1})
	}
	return &Tensor{cores: cores}, nil
}

// Ones returns the all-ones tensor as a TT chain with unit bond ranks.
func Ones(shape dense.Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	cores := make([]*dense.Dense, len(shape))
	for k, s := range shape {
		cores[k] = dense.Full(dense.Shape{1, s, 1}, 1)
	}
	return &Tensor{cores: cores}, nil
}

// FromTTCores wraps an explicit chain of 3-mode cores after validating
// that bonds link and boundaries are 1. Cores are adopted, not copied.
func FromTTCores(cores []*dense.Dense) (*Tensor, error) {
	for k, c := range cores {
		if c == nil || c.Dim() != 3 {
			return nil, fmt.Errorf("%w: TT core %d is not a 3-mode array", ErrShapeMismatch, k)
		}
	}
	t := &Tensor{cores: cores}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// FromCPFactors wraps explicit 2-mode CP factor matrices sharing a column
// count. Factors are adopted, not copied.
func FromCPFactors(factors []*dense.Dense) (*Tensor, error) {
	for k, c := range factors {
		if c == nil || c.Dim() != 2 {
			return nil, fmt.Errorf("%w: CP factor %d is not a 2-mode matrix", ErrShapeMismatch, k)
		}
	}
	t := &Tensor{cores: factors}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// FromComponents wraps a core list and optional Tucker factor matrices after
// validating that they chain into a consistent network. Pass nil factors for
// a plain TT or CP tensor. Slices are adopted, not copied.
func FromComponents(cores []*dense.Dense, factors []*mat.Dense) (*Tensor, error) {
	for k, c := range cores {
		if c == nil {
			return nil, fmt.Errorf("%w: core %d is nil", ErrShapeMismatch, k)
		}
		if d := c.Dim(); d != 2 && d != 3 {
			return nil, fmt.Errorf("%w: core %d has %d modes, want 2 or 3", ErrShapeMismatch, k, d)
		}
	}
	t := &Tensor{cores: cores, factors: factors}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}
