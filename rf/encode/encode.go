package encode

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-rf/internal/parallel"
	"github.com/cwbudde/algo-rf/rf/core"
	"github.com/cwbudde/algo-rf/rf/shape"
	"github.com/cwbudde/algo-rf/rf/tensor"
)

// Option configures an encoding call.
type Option = core.Option

// WithWorkers bounds the number of goroutines used across output channels.
func WithWorkers(n int) Option {
	return core.WithWorkers(n)
}

// Activity predicts neural activity from a stimulus (T, *S) and a receptive
// field (K, N, *S):
//
//	activity[t, n] = Σ_k Σ_s receptiveField[k, n, s] · stimulus[t-k, s]
//
// The result has shape (boundary.Rows(T, K), N).
func Activity(stimulus, receptiveField *tensor.Array, boundary Boundary, opts ...Option) (*tensor.Array, error) {
	if stimulus == nil || receptiveField == nil {
		return nil, fmt.Errorf("encode: %w: stimulus and receptive field are required", core.ErrInvalidParameter)
	}
	k := receptiveField.Dim(0)
	dims, err := shape.Validate(shape.Set{Stimulus: stimulus, ReceptiveField: receptiveField}, k)
	if err != nil {
		return nil, err
	}
	if !boundary.valid() {
		return nil, fmt.Errorf("encode: %w: boundary must be set explicitly, got %v", core.ErrInvalidParameter, boundary)
	}

	n, p := dims.N, dims.SpatialSize()

	// Regroup weights by neuron; receptiveField[k, n, :] is already
	// contiguous over positions
	weights := make([]float64, n*k*p)
	src := receptiveField.View()
	for lag := range k {
		for o := range n {
			copy(weights[(o*k+lag)*p:(o*k+lag+1)*p], src[(lag*n+o)*p:(lag*n+o+1)*p])
		}
	}

	// Causal convolution across neurons
	cfg := core.ApplyOptions(opts...)
	out, err := convolve(stimulus.View(), weights, dims.T, p, n, k, boundary, cfg.Workers)
	if err != nil {
		return nil, err
	}
	return tensor.Adopt(out, boundary.Rows(dims.T, k), n)
}

// Stimulus reconstructs a stimulus from activity (T, N) and a decoder
// (K, N, *S):
//
//	stimulus[t, s] = Σ_k Σ_n decoder[k, n, s] · activity[t-k, n]
//
// The result has shape (boundary.Rows(T, K), *S).
func Stimulus(activity, decoder *tensor.Array, boundary Boundary, opts ...Option) (*tensor.Array, error) {
	if activity == nil || decoder == nil {
		return nil, fmt.Errorf("encode: %w: activity and decoder are required", core.ErrInvalidParameter)
	}
	k := decoder.Dim(0)
	dims, err := shape.Validate(shape.Set{Activity: activity, Decoder: decoder}, k)
	if err != nil {
		return nil, err
	}
	if !boundary.valid() {
		return nil, fmt.Errorf("encode: %w: boundary must be set explicitly, got %v", core.ErrInvalidParameter, boundary)
	}

	n, p := dims.N, dims.SpatialSize()

	// Transpose to [s][k][n] so each window is contiguous over neurons
	weights := make([]float64, p*k*n)
	src := decoder.View()
	for lag := range k {
		for c := range n {
			for o := range p {
				weights[(o*k+lag)*n+c] = src[(lag*n+c)*p+o]
			}
		}
	}

	// Causal convolution across positions
	cfg := core.ApplyOptions(opts...)
	out, err := convolve(activity.View(), weights, dims.T, n, p, k, boundary, cfg.Workers)
	if err != nil {
		return nil, err
	}
	outShape := append([]int{boundary.Rows(dims.T, k)}, dims.Spatial...)
	return tensor.Adopt(out, outShape...)
}

// convolve computes out[row, o] = Σ_lag dot(weights[o, lag, :], in[t-lag, :])
// for input rows in (t × c, row-major) and weights laid out [o][lag][c].
// Each worker owns a disjoint range of output channels.
func convolve(in, weights []float64, t, c, o, k int, boundary Boundary, workers int) ([]float64, error) {
	rows := boundary.Rows(t, k)
	first := boundary.FirstRow(k)
	out := make([]float64, rows*o)

	err := parallel.For(o, workers, func(lo, hi int) error {
		for ch := lo; ch < hi; ch++ {
			w := weights[ch*k*c : (ch+1)*k*c]

			for row := range rows {
				tt := first + row
				// Rows without full history stay zero
				if boundary == BoundaryZeroFill && tt < k-1 {
					continue
				}

				var acc float64
				for lag := 0; lag < k && lag <= tt; lag++ {
					acc += vecmath.DotProduct(w[lag*c:(lag+1)*c], in[(tt-lag)*c:(tt-lag+1)*c])
				}
				out[row*o+ch] = acc
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
