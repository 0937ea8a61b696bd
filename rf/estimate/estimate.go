package estimate

import (
	"fmt"

	"github.com/cwbudde/algo-rf/rf/core"
	"github.com/cwbudde/algo-rf/rf/shape"
	"github.com/cwbudde/algo-rf/rf/tensor"
)

// Result is a fully shaped filter plus its per-slice diagnostics.
type Result struct {
	// Filter has shape (K, N, *S).
	Filter *tensor.Array
	// Diagnostics flags slices whose estimate is numerically unreliable.
	Diagnostics Diagnostics
}

// problem is one estimation job in channel form: each output series is
// explained by the lagged input series.
type problem struct {
	inputs  [][]float64 // C series of length t
	outputs [][]float64 // O series of length t
	t, k    int
}

// spectra caches the zero-padded transforms shared by every slice.
type spectra struct {
	n     int
	in    [][]complex128
	out   [][]complex128
	power [][]float64
}

// solution holds coefficients laid out (o*C + c)*K + k and one
// ill-conditioning flag per input channel.
type solution struct {
	coef  []float64
	flags []bool
}

// ReceptiveField estimates the (K, N, *S) filter that maps stimulus history
// to activity. Shape and parameter errors abort the call; ill-conditioned
// slices are reported in the result's Diagnostics.
//
// The default method recovers a noise-free filter exactly from any stimulus
// whose joint system is non-singular. MethodSpectral is biased unless the
// last K-1 stimulus samples are zero, and it leaves correlated spatial
// positions mixed.
func ReceptiveField(stimulus, activity *tensor.Array, kernelSize int, opts ...Option) (Result, error) {
	cfg, dims, err := prepare(shape.Set{Stimulus: stimulus, Activity: activity}, kernelSize, opts)
	if err != nil {
		return Result{}, err
	}
	positions := dims.SpatialSize()

	p := &problem{
		inputs:  seriesOf(stimulus, positions),
		outputs: seriesOf(activity, dims.N),
		t:       dims.T,
		k:       kernelSize,
	}
	sol, err := solve(p, cfg)
	if err != nil {
		return Result{}, err
	}

	// inputs are positions, outputs are neurons
	n, k := dims.N, kernelSize
	data := make([]float64, k*n*positions)
	diag := newDiagnostics(n, dims.Spatial)
	for o := range n {
		for c := range positions {
			src := sol.coef[(o*positions+c)*k:]
			for lag := range k {
				data[(lag*n+o)*positions+c] = src[lag]
			}
			diag.flags[o*positions+c] = sol.flags[c]
		}
	}
	return seal(data, diag, kernelSize, n, dims.Spatial)
}

// Decoder estimates the (K, N, *S) filter that reconstructs the stimulus
// from activity history:
//
//	stimulus[t, s] ≈ Σ_k Σ_n decoder[k, n, s] · activity[t-k, n]
func Decoder(activity, stimulus *tensor.Array, kernelSize int, opts ...Option) (Result, error) {
	cfg, dims, err := prepare(shape.Set{Stimulus: stimulus, Activity: activity}, kernelSize, opts)
	if err != nil {
		return Result{}, err
	}
	positions := dims.SpatialSize()

	p := &problem{
		inputs:  seriesOf(activity, dims.N),
		outputs: seriesOf(stimulus, positions),
		t:       dims.T,
		k:       kernelSize,
	}
	sol, err := solve(p, cfg)
	if err != nil {
		return Result{}, err
	}

	// inputs are neurons, outputs are positions
	n, k := dims.N, kernelSize
	data := make([]float64, k*n*positions)
	diag := newDiagnostics(n, dims.Spatial)
	for o := range positions {
		for c := range n {
			src := sol.coef[(o*n+c)*k:]
			for lag := range k {
				data[(lag*n+c)*positions+o] = src[lag]
			}
			diag.flags[c*positions+o] = sol.flags[c]
		}
	}
	return seal(data, diag, kernelSize, n, dims.Spatial)
}

func prepare(set shape.Set, kernelSize int, opts []Option) (config, shape.Dims, error) {
	if kernelSize < 1 {
		return config{}, shape.Dims{}, fmt.Errorf("estimate: %w: kernel size must be > 0, got %d", core.ErrInvalidParameter, kernelSize)
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return config{}, shape.Dims{}, err
	}
	if set.Stimulus == nil || set.Activity == nil {
		return config{}, shape.Dims{}, fmt.Errorf("estimate: %w: both stimulus and activity are required", core.ErrInvalidParameter)
	}
	dims, err := shape.Validate(set, kernelSize)
	if err != nil {
		return config{}, shape.Dims{}, err
	}
	return cfg, dims, nil
}

func seriesOf(a *tensor.Array, n int) [][]float64 {
	out := make([][]float64, n)
	for j := range out {
		out[j] = a.Series(j)
	}
	return out
}

func seal(data []float64, diag Diagnostics, k, n int, spatial []int) (Result, error) {
	filterShape := append([]int{k, n}, spatial...)
	filter, err := tensor.Adopt(data, filterShape...)
	if err != nil {
		return Result{}, err
	}
	return Result{Filter: filter, Diagnostics: diag}, nil
}

// solve picks the FFT length and the method, then runs the estimate.
func solve(p *problem, cfg config) (solution, error) {
	n, err := cfg.padLengthFor(p.t, p.k)
	if err != nil {
		return solution{}, err
	}

	u := len(p.inputs) * p.k
	cfg.method = cfg.methodFor(u)
	if cfg.method == MethodJoint && u > maxJointUnknowns {
		return solution{}, fmt.Errorf("estimate: %w: joint method supports at most %d unknowns, got %d (K=%d x %d channels)",
			core.ErrInvalidParameter, maxJointUnknowns, u, p.k, len(p.inputs))
	}

	return run(p, cfg, n)
}

// run executes the estimate with FFT length n and a resolved method. It does
// not check n against T+K-1.
func run(p *problem, cfg config, n int) (solution, error) {
	// Zero-padded spectra of every channel
	in, err := transformAll(p.inputs, n, cfg.Workers)
	if err != nil {
		return solution{}, err
	}

	out, err := transformAll(p.outputs, n, cfg.Workers)
	if err != nil {
		return solution{}, err
	}

	power, err := powerAll(in, n, cfg.Workers)
	if err != nil {
		return solution{}, err
	}

	sp := &spectra{n: n, in: in, out: out, power: power}

	// Per-input power floor check
	flags := make([]bool, len(p.inputs))
	for c := range flags {
		flags[c] = illConditioned(power[c], cfg.ridge, cfg.tolerance)
	}

	// Solve
	var coef []float64

	switch cfg.method {
	case MethodJoint:
		var singular bool

		coef, singular, err = solveJoint(p, sp, cfg)
		if singular {
			for c := range flags {
				flags[c] = true
			}
		}
	default:
		coef, err = solveSpectral(p, sp, cfg)
	}

	if err != nil {
		return solution{}, err
	}

	return solution{coef: coef, flags: flags}, nil
}
