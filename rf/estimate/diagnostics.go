package estimate

import (
	"errors"
	"fmt"
)

// ErrIllConditioned is wrapped by IllConditionedError.
var ErrIllConditioned = errors.New("estimate: ill-conditioned")

// Slice identifies one (neuron, spatial position) cell of a filter.
// Position is the row-major flat index over the spatial dimensions.
type Slice struct {
	Neuron   int
	Position int
}

// Diagnostics holds the per-slice ill-conditioning flags of one estimate.
type Diagnostics struct {
	neurons int
	spatial []int
	flags   []bool // neuron*positions + position
}

func newDiagnostics(neurons int, spatial []int) Diagnostics {
	positions := 1
	for _, s := range spatial {
		positions *= s
	}
	return Diagnostics{
		neurons: neurons,
		spatial: spatial,
		flags:   make([]bool, neurons*positions),
	}
}

func (d Diagnostics) positions() int {
	if d.neurons == 0 {
		return 0
	}
	return len(d.flags) / d.neurons
}

// IllConditioned reports whether slice (neuron, position) was flagged.
// Indices outside the estimate, and the zero Diagnostics, report false.
func (d Diagnostics) IllConditioned(neuron, position int) bool {
	p := d.positions()
	if neuron < 0 || neuron >= d.neurons || position < 0 || position >= p {
		return false
	}
	return d.flags[neuron*p+position]
}

// Count returns the number of flagged slices.
func (d Diagnostics) Count() int {
	n := 0
	for _, f := range d.flags {
		if f {
			n++
		}
	}
	return n
}

// Total returns the number of slices.
func (d Diagnostics) Total() int {
	return len(d.flags)
}

// Flagged lists the flagged slices in (neuron, position) order.
func (d Diagnostics) Flagged() []Slice {
	var out []Slice
	p := d.positions()
	for i, f := range d.flags {
		if f {
			out = append(out, Slice{Neuron: i / p, Position: i % p})
		}
	}
	return out
}

// Coordinates unravels a flat spatial position into per-axis indices.
func (d Diagnostics) Coordinates(position int) []int {
	out := make([]int, len(d.spatial))
	for i := len(d.spatial) - 1; i >= 0; i-- {
		out[i] = position % d.spatial[i]
		position /= d.spatial[i]
	}
	return out
}

// Err returns nil when no slice is flagged and an *IllConditionedError
// otherwise. The filter is valid either way.
func (d Diagnostics) Err() error {
	flagged := d.Flagged()
	if len(flagged) == 0 {
		return nil
	}
	return &IllConditionedError{Slices: flagged, Total: d.Total()}
}

// IllConditionedError lists the slices whose input spectrum had too little
// power relative to the ridge.
type IllConditionedError struct {
	Slices []Slice
	Total  int
}

func (e *IllConditionedError) Error() string {
	first := e.Slices[0]
	return fmt.Sprintf("estimate: %d of %d slices ill-conditioned (first: neuron %d, position %d); increase the ridge",
		len(e.Slices), e.Total, first.Neuron, first.Position)
}

// Unwrap returns ErrIllConditioned.
func (e *IllConditionedError) Unwrap() error {
	return ErrIllConditioned
}
