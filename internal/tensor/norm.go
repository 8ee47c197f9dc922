package tensor

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// NormSq returns the squared Frobenius norm without reconstructing the
// array. TT chains contract the transfer matrices G[k]ᵀ Γ G[k] bond by
// bond; CP lists total the elementwise product of the factor Grams. Tucker
// factors have orthonormal columns and leave the norm unchanged.
func (t *Tensor) NormSq() float64 {
	if t.IsCP() {
		grams := make([]*mat.Dense, t.Dim())
		for k, c := range t.cores {
			s := c.Shape()
			grams[k] = gram(mat.NewDense(s[0], s[1], c.Data()))
		}
		total := mat.Sum(gramProduct(grams, -1))
		if total < 0 {
			return 0
		}
		return total
	}
	gamma := mat.NewDense(1, 1, []float64{1})
	for _, c := range t.cores {
		s := c.Shape()
		next := mat.NewDense(s[2], s[2], nil)
		slice := mat.NewDense(s[0], s[2], nil)
		data := c.Data()
		for i := 0; i < s[1]; i++ {
			for j := 0; j < s[0]; j++ {
				row := data[j*s[1]*s[2]+i*s[2] : j*s[1]*s[2]+i*s[2]+s[2]]
				slice.SetRow(j, row)
			}
			var left, prod mat.Dense
			left.Mul(gamma, slice)
			prod.Mul(slice.T(), &left)
			next.Add(next, &prod)
		}
		gamma = next
	}
	v := gamma.At(0, 0)
	if v < 0 {
		return 0
	}
	return v
}

// Norm returns the Frobenius norm of the represented array.
func (t *Tensor) Norm() float64 { return math.Sqrt(t.NormSq()) }
