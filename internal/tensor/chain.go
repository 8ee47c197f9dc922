package tensor

import (
	"gonum.org/v1/gonum/mat"

	"github.com/xx-fighting/tntorch/internal/dense"
)

// Matrix views of TT cores. A core (r0, n, r1) flattens row-major, so the
// left view groups (r0*n, r1) and the right view groups (r0, n*r1) without
// moving data.

func coreLeftMatrix(c *dense.Dense) *mat.Dense {
	s := c.Shape()
	return mat.NewDense(s[0]*s[1], s[2], c.Data())
}

func coreRightMatrix(c *dense.Dense) *mat.Dense {
	s := c.Shape()
	return mat.NewDense(s[0], s[1]*s[2], c.Data())
}

// canonicalColumn returns the n-vector e1 as an (n, 1) matrix. It stands in
// for factor or basis columns when a truncation leaves nothing, keeping
// orthonormality intact.
func canonicalColumn(n int) *mat.Dense {
	e1 := mat.NewDense(n, 1, nil)
	e1.Set(0, 0, 1)
	return e1
}

// reshapeMatrix reinterprets m under new dimensions with the same element
// count. Copies only when m is a non-contiguous view.
func reshapeMatrix(m *mat.Dense, rows, cols int) *mat.Dense {
	raw := m.RawMatrix()
	if raw.Rows*raw.Cols != rows*cols {
		panic("tensor: reshape changes element count")
	}
	if raw.Stride != raw.Cols {
		m = mat.DenseCopyOf(m)
		raw = m.RawMatrix()
	}
	return mat.NewDense(rows, cols, raw.Data[:rows*cols])
}

// contractChain multiplies a TT chain into the dense array it represents,
// shaped by the cores' modal sizes. With Tucker factors present this yields
// the small Tucker core, not the full tensor.
func contractChain(cores []*dense.Dense) *dense.Dense {
	shape := make(dense.Shape, len(cores))
	for k, c := range cores {
		shape[k] = c.Shape()[1]
	}
	// cur starts as the first core seen as (n0, r1) and absorbs one core per
	// step, growing to (n0*...*nk, r_{k+1}).
	first := cores[0].Shape()
	cur := mat.NewDense(first[1], first[2], cores[0].Data())
	for k := 1; k < len(cores); k++ {
		s := cores[k].Shape()
		var next mat.Dense
		next.Mul(cur, coreRightMatrix(cores[k]))
		rows, _ := cur.Dims()
		cur = reshapeMatrix(&next, rows*s[1], s[2])
	}
	return dense.FromMatrix(cur).Reshape(shape...)
}
