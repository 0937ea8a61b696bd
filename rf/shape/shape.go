package shape

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cwbudde/algo-rf/rf/core"
	"github.com/cwbudde/algo-rf/rf/tensor"
)

// ErrShapeMismatch is wrapped by every MismatchError.
var ErrShapeMismatch = errors.New("shape: mismatch")

// Array labels used in error messages.
const (
	NameActivity       = "activity"
	NameStimulus       = "stimulus"
	NameReceptiveField = "receptive field"
	NameDecoder        = "decoder"
	NameKernelSize     = "kernel size"
)

// Dimension labels used in error messages.
const (
	DimRank    = "rank"
	DimTime    = "time"
	DimNeuron  = "neuron"
	DimSpatial = "spatial"
	DimKernel  = "kernel"
)

// MismatchError reports a conflicting or under-ranked dimension.
type MismatchError struct {
	First      string // offending array
	Second     string // array or parameter it conflicts with; empty for rank errors
	Dim        string // conflicting dimension
	FirstSize  any
	SecondSize any
}

func (e *MismatchError) Error() string {
	if e.Second == "" {
		return fmt.Sprintf("shape: %s has %s %v, need %v", e.First, e.Dim, e.FirstSize, e.SecondSize)
	}
	return fmt.Sprintf("shape: %s and %s disagree on %s: %v vs %v",
		e.First, e.Second, e.Dim, e.FirstSize, e.SecondSize)
}

// Unwrap returns ErrShapeMismatch.
func (e *MismatchError) Unwrap() error {
	return ErrShapeMismatch
}

// Set is the labeled group of arrays to validate. Nil fields are absent.
type Set struct {
	Activity       *tensor.Array
	Stimulus       *tensor.Array
	ReceptiveField *tensor.Array
	Decoder        *tensor.Array
}

// Dims are the reconciled sizes of a validated Set. Fields that no supplied
// array carries are zero (or nil for Spatial).
type Dims struct {
	T       int
	N       int
	K       int
	Spatial []int
}

// SpatialSize returns the number of spatial positions, prod(Spatial).
func (d Dims) SpatialSize() int {
	if len(d.Spatial) == 0 {
		return 0
	}
	n := 1
	for _, s := range d.Spatial {
		n *= s
	}
	return n
}

// Validate checks a Set against the shape contract. kernelSize is required
// (> 0) when a receptive field or decoder is supplied and is otherwise used
// only for the T >= K check; pass 0 to skip it.
func Validate(set Set, kernelSize int) (Dims, error) {
	if set.Activity == nil && set.Stimulus == nil && set.ReceptiveField == nil && set.Decoder == nil {
		return Dims{}, fmt.Errorf("%w: no arrays to validate", core.ErrInvalidParameter)
	}
	hasFilter := set.ReceptiveField != nil || set.Decoder != nil
	if kernelSize < 0 || (hasFilter && kernelSize == 0) {
		return Dims{}, fmt.Errorf("%w: kernel size must be > 0, got %d", core.ErrInvalidParameter, kernelSize)
	}

	if err := checkRanks(set); err != nil {
		return Dims{}, err
	}

	var d Dims

	// time
	var timeRef string
	for _, c := range []struct {
		name string
		a    *tensor.Array
	}{{NameActivity, set.Activity}, {NameStimulus, set.Stimulus}} {
		if c.a == nil {
			continue
		}
		t := c.a.Dim(0)
		if timeRef == "" {
			timeRef = c.name
			d.T = t
			continue
		}
		if t != d.T {
			return Dims{}, mismatch(c.name, timeRef, DimTime, t, d.T)
		}
	}

	// neurons
	var neuronRef string
	for _, c := range []struct {
		name string
		a    *tensor.Array
	}{{NameActivity, set.Activity}, {NameReceptiveField, set.ReceptiveField}, {NameDecoder, set.Decoder}} {
		if c.a == nil {
			continue
		}
		n := c.a.Dim(1)
		if neuronRef == "" {
			neuronRef = c.name
			d.N = n
			continue
		}
		if n != d.N {
			return Dims{}, mismatch(c.name, neuronRef, DimNeuron, n, d.N)
		}
	}

	// spatial
	var spatialRef string
	for _, c := range []struct {
		name string
		a    *tensor.Array
		from int
	}{{NameStimulus, set.Stimulus, 1}, {NameReceptiveField, set.ReceptiveField, 2}, {NameDecoder, set.Decoder, 2}} {
		if c.a == nil {
			continue
		}
		s := c.a.Shape()[c.from:]
		if spatialRef == "" {
			spatialRef = c.name
			d.Spatial = s
			continue
		}
		if !slices.Equal(s, d.Spatial) {
			return Dims{}, mismatch(c.name, spatialRef, DimSpatial, s, d.Spatial)
		}
	}

	// kernel
	for _, c := range []struct {
		name string
		a    *tensor.Array
	}{{NameReceptiveField, set.ReceptiveField}, {NameDecoder, set.Decoder}} {
		if c.a == nil {
			continue
		}
		if k := c.a.Dim(0); k != kernelSize {
			return Dims{}, mismatch(c.name, NameKernelSize, DimKernel, k, kernelSize)
		}
	}
	d.K = kernelSize

	if timeRef != "" && kernelSize > 0 && d.T < kernelSize {
		return Dims{}, mismatch(timeRef, NameKernelSize, DimTime, d.T, kernelSize)
	}

	return d, nil
}

func checkRanks(set Set) error {
	if a := set.Activity; a != nil && a.Rank() != 2 {
		return mismatch(NameActivity, "", DimRank, a.Rank(), 2)
	}
	if a := set.Stimulus; a != nil && a.Rank() < 2 {
		return mismatch(NameStimulus, "", DimRank, a.Rank(), ">= 2")
	}
	if a := set.ReceptiveField; a != nil && a.Rank() < 3 {
		return mismatch(NameReceptiveField, "", DimRank, a.Rank(), ">= 3")
	}
	if a := set.Decoder; a != nil && a.Rank() < 3 {
		return mismatch(NameDecoder, "", DimRank, a.Rank(), ">= 3")
	}
	return nil
}

func mismatch(first, second, dim string, firstSize, secondSize any) error {
	return &MismatchError{
		First:      first,
		Second:     second,
		Dim:        dim,
		FirstSize:  firstSize,
		SecondSize: secondSize,
	}
}
