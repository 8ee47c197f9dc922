package tensor

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/xx-fighting/tntorch/internal/dense"
)

// Full reconstructs the dense array the tensor represents. The result
// shares no storage with t.
func (t *Tensor) Full() *dense.Dense {
	if t.IsCP() {
		return t.fullCP()
	}
	out := contractChain(t.cores)
	for k, u := range t.factors {
		out = out.ModeProduct(k, u)
	}
	return out
}

// fullCP accumulates one rank-1 term per CP column. Tucker factors, when
// present, are folded into the per-mode matrices up front.
func (t *Tensor) fullCP() *dense.Dense {
	n := t.Dim()
	r := t.RankCP()
	bs := make([]*mat.Dense, n)
	for k, c := range t.cores {
		s := c.Shape()
		cm := mat.NewDense(s[0], s[1], c.Data())
		if t.factors == nil {
			bs[k] = cm
			continue
		}
		var b mat.Dense
		b.Mul(t.factors[k], cm)
		bs[k] = &b
	}
	out := dense.New(t.Shape())
	data := out.Data()
	for j := 0; j < r; j++ {
		v := []float64{1}
		for k := 0; k < n; k++ {
			v = kronColumn(v, bs[k], j)
		}
		floats.Add(data, v)
	}
	return out
}

// kronColumn expands v by column j of b: out[i*q+t] = v[i] * b[t,j].
func kronColumn(v []float64, b *mat.Dense, j int) []float64 {
	q, _ := b.Dims()
	out := make([]float64, len(v)*q)
	for i, vi := range v {
		for row := 0; row < q; row++ {
			out[i*q+row] = vi * b.At(row, j)
		}
	}
	return out
}
