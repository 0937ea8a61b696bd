package tensor

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-rf/rf/core"
)

// Errors returned by array constructors.
var (
	ErrShape     = errors.New("tensor: invalid shape")
	ErrNonFinite = errors.New("tensor: non-finite value")
)

// Array is a read-only row-major N-d array. The zero value is not usable;
// build arrays with New, FromSlice or Adopt.
type Array struct {
	shape []int
	data  []float64
}

// New returns a zero-filled array of the given shape.
func New(shape ...int) (*Array, error) {
	n, err := volume(shape)
	if err != nil {
		return nil, err
	}
	return &Array{shape: cloneInts(shape), data: make([]float64, n)}, nil
}

// FromSlice copies data into a new array of the given shape. It fails with
// ErrShape when len(data) does not match the shape and with ErrNonFinite when
// data holds NaN or Inf.
func FromSlice(data []float64, shape ...int) (*Array, error) {
	n, err := volume(shape)
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: %d values for shape %v", ErrShape, len(data), shape)
	}
	for i, v := range data {
		if !core.IsFinite(v) {
			return nil, fmt.Errorf("%w: %v at flat index %d", ErrNonFinite, v, i)
		}
	}
	s := make([]float64, n)
	copy(s, data)
	return &Array{shape: cloneInts(shape), data: s}, nil
}

// Adopt wraps data without copying. The caller hands over ownership and must
// not touch data afterwards. Used by the engine to seal freshly computed
// output.
func Adopt(data []float64, shape ...int) (*Array, error) {
	n, err := volume(shape)
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: %d values for shape %v", ErrShape, len(data), shape)
	}
	return &Array{shape: cloneInts(shape), data: data}, nil
}

// Must panics if err is non-nil and returns a otherwise.
func Must(a *Array, err error) *Array {
	if err != nil {
		panic(err)
	}
	return a
}

// Shape returns a copy of the array shape.
func (a *Array) Shape() []int {
	return cloneInts(a.shape)
}

// Rank returns the number of axes.
func (a *Array) Rank() int {
	return len(a.shape)
}

// Dim returns the size of axis i.
func (a *Array) Dim(i int) int {
	return a.shape[i]
}

// Len returns the total number of elements.
func (a *Array) Len() int {
	return len(a.data)
}

// RowLen returns the number of elements per leading-axis index.
func (a *Array) RowLen() int {
	if len(a.shape) == 0 || a.shape[0] == 0 {
		return 0
	}
	return len(a.data) / a.shape[0]
}

// At returns the element at the given multi-index. It panics when the index
// rank or any coordinate is out of range.
func (a *Array) At(idx ...int) float64 {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("tensor: index rank %d, array rank %d", len(idx), len(a.shape)))
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= a.shape[i] {
			panic(fmt.Sprintf("tensor: index %d out of range on axis %d (size %d)", v, i, a.shape[i]))
		}
		off = off*a.shape[i] + v
	}
	return a.data[off]
}

// Data returns a copy of the flat row-major data.
func (a *Array) Data() []float64 {
	s := make([]float64, len(a.data))
	copy(s, a.data)
	return s
}

// Row returns a copy of the trailing values at leading index t.
func (a *Array) Row(t int) []float64 {
	n := a.RowLen()
	s := make([]float64, n)
	copy(s, a.data[t*n:(t+1)*n])
	return s
}

// Series returns a copy of the leading-axis series at flattened trailing
// index j, e.g. the time course of one stimulus position.
func (a *Array) Series(j int) []float64 {
	n := a.RowLen()
	if j < 0 || j >= n {
		panic(fmt.Sprintf("tensor: series index %d out of range (row length %d)", j, n))
	}
	s := make([]float64, a.shape[0])
	for t := range s {
		s[t] = a.data[t*n+j]
	}
	return s
}

// View returns the backing data for read-only use inside this module's
// engine packages. Callers must not modify it.
func (a *Array) View() []float64 {
	return a.data
}

func volume(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("%w: empty shape", ErrShape)
	}
	n := 1
	for i, d := range shape {
		if d <= 0 {
			return 0, fmt.Errorf("%w: axis %d has size %d", ErrShape, i, d)
		}
		n *= d
	}
	return n, nil
}

func cloneInts(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}
