package tensor

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/xx-fighting/tntorch/internal/dense"
	"github.com/xx-fighting/tntorch/internal/linalg"
	"github.com/xx-fighting/tntorch/internal/parallel"
)

var parCfg = parallel.DefaultConfig()

// alsConfig carries the CP-ALS knobs resolved from Options.
type alsConfig struct {
	rank    int
	maxIter int
	tol     float64
	seed    int64
	verbose bool
	logger  *logrus.Logger
}

// cpALS fits a rank-R CP model to a dense array by alternating least
// squares. Each sweep updates every factor matrix in turn against the
// Khatri-Rao product of the others, then measures the relative error from
// cached quantities without reconstructing the array:
//
//	|X - X̂|² = |X|² - 2<X, X̂> + |X̂|²
//
// where <X, X̂> is the elementwise dot of the last factor with its matched
// Khatri-Rao projection and |X̂|² is the total of the elementwise product of
// all factor Gram matrices. The sweep loop stops when the error improvement
// falls below cfg.tol or after cfg.maxIter sweeps.
func cpALS(a *dense.Dense, cfg alsConfig) ([]*dense.Dense, error) {
	shape := a.Shape()
	n := len(shape)
	r := cfg.rank
	normA := a.Norm()

	factors := make([]*mat.Dense, n)
	if normA == 0 {
		// Zero input: zero factors reproduce it exactly, no sweeps needed.
		for k := 0; k < n; k++ {
			factors[k] = mat.NewDense(shape[k], r, nil)
		}
		return factorsToDense(factors), nil
	}

	rng := rand.New(rand.NewSource(cfg.seed)) //nolint:gosec // reproducible inits, not cryptography
	grams := make([]*mat.Dense, n)
	for k := 0; k < n; k++ {
		data := make([]float64, shape[k]*r)
		for i := range data {
			data[i] = rng.NormFloat64()
		}
		factors[k] = mat.NewDense(shape[k], r, data)
		grams[k] = gram(factors[k])
	}

	unfolds := make([]*mat.Dense, n)
	for k := 0; k < n; k++ {
		unfolds[k] = a.Unfold(k)
	}

	log := cfg.logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	start := time.Now()
	prevErr := math.Inf(1)
	for it := 0; it < cfg.maxIter; it++ {
		var lastProj *mat.Dense
		for k := 0; k < n; k++ {
			kr := khatriRaoSkip(factors, k)
			var proj mat.Dense
			proj.Mul(unfolds[k], kr)
			pinv, err := linalg.PseudoInverse(gramProduct(grams, k))
			if err != nil {
				return nil, fmt.Errorf("cp-als sweep %d mode %d: %w", it, k, err)
			}
			var next mat.Dense
			next.Mul(&proj, pinv)
			factors[k] = &next
			grams[k] = gram(&next)
			lastProj = &proj
		}

		dot := matDot(factors[n-1], lastProj)
		normHatSq := mat.Sum(gramProduct(grams, -1))
		errSq := normA*normA - 2*dot + normHatSq
		if errSq < 0 {
			errSq = 0
		}
		relErr := math.Sqrt(errSq) / normA

		if cfg.verbose {
			log.WithFields(logrus.Fields{
				"sweep":   it,
				"error":   relErr,
				"elapsed": time.Since(start),
			}).Info("cp-als sweep")
		}
		if prevErr-relErr < cfg.tol {
			break
		}
		prevErr = relErr
	}
	return factorsToDense(factors), nil
}

// khatriRaoSkip stacks the columnwise Kronecker product of every factor but
// skip, earlier modes varying slowest. That ordering matches the column
// layout of mode-skip unfoldings, so unfold(skip) times the result is the
// matricized-tensor-times-Khatri-Rao product.
func khatriRaoSkip(factors []*mat.Dense, skip int) *mat.Dense {
	_, r := factors[0].Dims()
	ones := make([]float64, r)
	for j := range ones {
		ones[j] = 1
	}
	kr := mat.NewDense(1, r, ones)
	for k, f := range factors {
		if k == skip {
			continue
		}
		kr = krStep(kr, f)
	}
	return kr
}

// krStep expands kr (p, r) by m (q, r) into (p*q, r): row i*q+t holds the
// elementwise product of kr's row i and m's row t.
func krStep(kr, m *mat.Dense) *mat.Dense {
	kraw, mraw := kr.RawMatrix(), m.RawMatrix()
	p, q, r := kraw.Rows, mraw.Rows, kraw.Cols
	out := mat.NewDense(p*q, r, nil)
	oraw := out.RawMatrix()
	parallel.ForRange(p*q, func(lo, hi int) {
		for row := lo; row < hi; row++ {
			i, t := row/q, row%q
			a := kraw.Data[i*kraw.Stride : i*kraw.Stride+r]
			b := mraw.Data[t*mraw.Stride : t*mraw.Stride+r]
			floats.MulTo(oraw.Data[row*oraw.Stride:row*oraw.Stride+r], a, b)
		}
	}, parCfg)
	return out
}

// gram returns fᵀf.
func gram(f *mat.Dense) *mat.Dense {
	_, r := f.Dims()
	g := mat.NewDense(r, r, nil)
	g.Mul(f.T(), f)
	return g
}

// gramProduct multiplies all Gram matrices but skip elementwise. Pass a
// negative skip to include every one.
func gramProduct(grams []*mat.Dense, skip int) *mat.Dense {
	r, _ := grams[0].Dims()
	out := mat.NewDense(r, r, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < r; j++ {
			out.Set(i, j, 1)
		}
	}
	for k, g := range grams {
		if k == skip {
			continue
		}
		out.MulElem(out, g)
	}
	return out
}

// matDot is the elementwise dot product of two equally sized matrices.
func matDot(a, b *mat.Dense) float64 {
	ar, br := a.RawMatrix(), b.RawMatrix()
	sum := 0.0
	for i := 0; i < ar.Rows; i++ {
		sum += floats.Dot(ar.Data[i*ar.Stride:i*ar.Stride+ar.Cols], br.Data[i*br.Stride:i*br.Stride+br.Cols])
	}
	return sum
}

func factorsToDense(factors []*mat.Dense) []*dense.Dense {
	out := make([]*dense.Dense, len(factors))
	for k, f := range factors {
		out[k] = dense.FromMatrix(f)
	}
	return out
}
