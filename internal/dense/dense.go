// Package dense provides the flat row-major N-way arrays that the
// decomposition algorithms consume and produce. A Dense is always contiguous;
// reshapes are views, everything else copies.
package dense

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Dense is a dense N-way array of float64 in row-major order.
type Dense struct {
	shape   Shape
	strides []int
	data    []float64
}

// New creates a zero-filled array with the given shape.
// Panics if the shape has a non-positive dimension.
func New(shape Shape) *Dense {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("dense: invalid shape: %v", err))
	}
	return &Dense{
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
		data:    make([]float64, shape.NumElements()),
	}
}

// FromSlice creates an array from a Go slice.
// The slice is copied into the array's memory.
func FromSlice(data []float64, shape Shape) (*Dense, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("dense: invalid shape: %w", err)
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("dense: shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	d := New(shape)
	copy(d.data, data)
	return d, nil
}

// Wrap creates an array that shares the given backing slice.
// Panics if the slice length does not match the shape.
func Wrap(data []float64, shape Shape) *Dense {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("dense: invalid shape: %v", err))
	}
	if shape.NumElements() != len(data) {
		panic(fmt.Sprintf("dense: shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data)))
	}
	return &Dense{
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
		data:    data,
	}
}

// Shape returns the array's shape.
func (d *Dense) Shape() Shape {
	return d.shape
}

// Dim returns the number of modes.
func (d *Dense) Dim() int {
	return len(d.shape)
}

// NumElements returns the total number of elements.
func (d *Dense) NumElements() int {
	return len(d.data)
}

// Data returns the backing slice (zero-copy).
//
// WARNING: Modifications to the returned slice will modify the array.
func (d *Dense) Data() []float64 {
	return d.data
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (d *Dense) At(indices ...int) float64 {
	return d.data[d.offset(indices)]
}

// Set sets the element at the given indices.
// Panics if indices are out of bounds.
func (d *Dense) Set(value float64, indices ...int) {
	d.data[d.offset(indices)] = value
}

func (d *Dense) offset(indices []int) int {
	if len(indices) != len(d.shape) {
		panic(fmt.Sprintf("dense: expected %d indices, got %d", len(d.shape), len(indices)))
	}
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= d.shape[i] {
			panic(fmt.Sprintf("dense: index %d out of bounds for mode %d (size %d)", idx, i, d.shape[i]))
		}
		offset += idx * d.strides[i]
	}
	return offset
}

// Clone creates a deep copy of the array.
func (d *Dense) Clone() *Dense {
	c := New(d.shape)
	copy(c.data, d.data)
	return c
}

// Reshape returns an array with the same backing data but a different shape.
// The new shape must have the same number of elements. This is a view: writes
// through either array are visible in both.
func (d *Dense) Reshape(newShape ...int) *Dense {
	s := Shape(newShape)
	if err := s.Validate(); err != nil {
		panic(fmt.Sprintf("dense: reshape: invalid shape: %v", err))
	}
	if s.NumElements() != len(d.data) {
		panic(fmt.Sprintf("dense: reshape: incompatible shapes: %v -> %v (different number of elements)", d.shape, s))
	}
	return &Dense{
		shape:   s.Clone(),
		strides: s.ComputeStrides(),
		data:    d.data,
	}
}

// Matrix views a 2-mode array as a gonum matrix (zero-copy).
// Panics if the array is not 2-mode.
func (d *Dense) Matrix() *mat.Dense {
	if len(d.shape) != 2 {
		panic(fmt.Sprintf("dense: Matrix() requires a 2-mode array, got %d modes", len(d.shape)))
	}
	return mat.NewDense(d.shape[0], d.shape[1], d.data)
}

// FromMatrix copies a gonum matrix into a fresh 2-mode array.
// Combine with Reshape to view the copy under any compatible shape.
func FromMatrix(m mat.Matrix) *Dense {
	r, c := m.Dims()
	d := New(Shape{r, c})
	if md, ok := m.(*mat.Dense); ok {
		raw := md.RawMatrix()
		for i := 0; i < r; i++ {
			copy(d.data[i*c:(i+1)*c], raw.Data[i*raw.Stride:i*raw.Stride+c])
		}
		return d
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			d.data[i*c+j] = m.At(i, j)
		}
	}
	return d
}

// Norm returns the Frobenius norm of the array.
func (d *Dense) Norm() float64 {
	return floats.Norm(d.data, 2)
}

// Scale multiplies every element by c in place.
func (d *Dense) Scale(c float64) {
	floats.Scale(c, d.data)
}

// String returns a human-readable representation of the array.
func (d *Dense) String() string {
	return fmt.Sprintf("Dense%v (%d elements)", d.shape, len(d.data))
}
