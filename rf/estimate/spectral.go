package estimate

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-rf/internal/parallel"
	"github.com/cwbudde/algo-rf/rf/core"
	"github.com/cwbudde/algo-rf/rf/shape"
)

// workspace owns one FFT plan and its scratch. Workers never share one.
type workspace struct {
	plan *algofft.Plan[complex128]
	buf  []complex128
	re   []float64
	im   []float64
}

func newWorkspace(n int) (*workspace, error) {
	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("estimate: failed to create FFT plan: %w", err)
	}
	return &workspace{
		plan: plan,
		buf:  make([]complex128, n),
		re:   make([]float64, n),
		im:   make([]float64, n),
	}, nil
}

// forward zero-pads x and writes its spectrum to dst.
func (w *workspace) forward(dst []complex128, x []float64) error {
	// Zero-pad input
	for i := range w.buf {
		w.buf[i] = 0
	}
	for i, v := range x {
		w.buf[i] = complex(v, 0)
	}

	// Forward FFT
	if err := w.plan.Forward(dst, w.buf); err != nil {
		return fmt.Errorf("estimate: forward FFT failed: %w", err)
	}
	return nil
}

// power writes |X[f]|² to dst.
func (w *workspace) power(dst []float64, spec []complex128) {
	for i, c := range spec {
		w.re[i] = real(c)
		w.im[i] = imag(c)
	}
	vecmath.Power(dst, w.re, w.im)
}

// kernel forms conj(X)·Y / (|X|² + λ), transforms it back and writes the
// first len(dst) lags. Bins with zero denominator contribute nothing.
func (w *workspace) kernel(dst []float64, xf, yf []complex128, power []float64, lambda float64) error {
	// Regularized division: conj(X)·Y / (|X|² + λ)
	for f := range w.buf {
		den := power[f] + lambda
		if den == 0 {
			w.buf[f] = 0
			continue
		}
		w.buf[f] = cmplx.Conj(xf[f]) * yf[f] / complex(den, 0)
	}

	// Inverse FFT
	if err := w.plan.Inverse(w.buf, w.buf); err != nil {
		return fmt.Errorf("estimate: inverse FFT failed: %w", err)
	}

	// Extract real part of the causal lags
	for k := range dst {
		dst[k] = real(w.buf[k])
	}
	return nil
}

// illConditioned reports whether min(power)+λ falls below tol·max(power).
// A silent input (max power 0) is always ill-conditioned.
func illConditioned(power []float64, lambda, tol float64) bool {
	minP, maxP := math.Inf(1), 0.0
	for _, p := range power {
		minP = math.Min(minP, p)
		maxP = math.Max(maxP, p)
	}
	if maxP == 0 {
		return true
	}
	return minP+lambda < tol*maxP
}

// transformAll computes the zero-padded spectrum of every series.
func transformAll(series [][]float64, n, workers int) ([][]complex128, error) {
	out := make([][]complex128, len(series))
	err := parallel.For(len(series), workers, func(lo, hi int) error {
		ws, err := newWorkspace(n)
		if err != nil {
			return err
		}
		for i := lo; i < hi; i++ {
			out[i] = make([]complex128, n)
			if err := ws.forward(out[i], series[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// powerAll computes |X|² for every spectrum.
func powerAll(spectra [][]complex128, n, workers int) ([][]float64, error) {
	out := make([][]float64, len(spectra))
	err := parallel.For(len(spectra), workers, func(lo, hi int) error {
		ws, err := newWorkspace(n)
		if err != nil {
			return err
		}
		for i := lo; i < hi; i++ {
			out[i] = make([]float64, n)
			ws.power(out[i], spectra[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// solveSpectral runs the independent per-slice division. coef is laid out
// (o*C + c)*K + k.
func solveSpectral(p *problem, sp *spectra, cfg config) ([]float64, error) {
	nc, no, k := len(p.inputs), len(p.outputs), p.k
	coef := make([]float64, no*nc*k)

	// One slice per (output, input) pair
	err := parallel.For(no*nc, cfg.Workers, func(lo, hi int) error {
		ws, err := newWorkspace(sp.n)
		if err != nil {
			return err
		}
		for i := lo; i < hi; i++ {
			o, c := i/nc, i%nc
			if err := ws.kernel(coef[i*k:(i+1)*k], sp.in[c], sp.out[o], sp.power[c], cfg.ridge); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return coef, nil
}

// Spectrum is the frequency-domain view of a single-slice estimate.
type Spectrum struct {
	// PadLength is the FFT length actually used.
	PadLength int
	// Power is |X[f]|² of the zero-padded input.
	Power []float64
	// Cross is conj(X[f])·Y[f].
	Cross []complex128
	// Filter is Cross / (Power + λ), zero where the denominator vanishes.
	Filter []complex128
	// Kernel holds lags 0..K-1 of the inverse-transformed filter.
	Kernel []float64
	// IllConditioned is set when min(Power)+λ < DefaultTolerance·max(Power).
	IllConditioned bool
}

// SliceSpectrum estimates a single causal kernel of length kernelSize that
// maps the input series to the output series and returns every
// intermediate spectrum. Both series must have the same length T >= K.
func SliceSpectrum(input, output []float64, kernelSize int, lambda float64) (Spectrum, error) {
	if kernelSize < 1 {
		return Spectrum{}, fmt.Errorf("estimate: %w: kernel size must be > 0, got %d", core.ErrInvalidParameter, kernelSize)
	}
	cfg, err := newConfig([]Option{WithRidge(lambda)})
	if err != nil {
		return Spectrum{}, err
	}
	t := len(input)
	if len(output) != t {
		return Spectrum{}, &shape.MismatchError{
			First: "output", Second: "input", Dim: shape.DimTime,
			FirstSize: len(output), SecondSize: t,
		}
	}
	if t < kernelSize {
		return Spectrum{}, &shape.MismatchError{
			First: "input", Second: shape.NameKernelSize, Dim: shape.DimTime,
			FirstSize: t, SecondSize: kernelSize,
		}
	}

	n, err := cfg.padLengthFor(t, kernelSize)
	if err != nil {
		return Spectrum{}, err
	}
	ws, err := newWorkspace(n)
	if err != nil {
		return Spectrum{}, err
	}

	// Forward FFT of both series
	xf := make([]complex128, n)
	yf := make([]complex128, n)
	if err := ws.forward(xf, input); err != nil {
		return Spectrum{}, err
	}
	if err := ws.forward(yf, output); err != nil {
		return Spectrum{}, err
	}

	s := Spectrum{
		PadLength: n,
		Power:     make([]float64, n),
		Cross:     make([]complex128, n),
		Filter:    make([]complex128, n),
		Kernel:    make([]float64, kernelSize),
	}

	// Power, cross spectrum and regularized filter
	ws.power(s.Power, xf)
	for f := range s.Cross {
		s.Cross[f] = cmplx.Conj(xf[f]) * yf[f]
		if den := s.Power[f] + lambda; den != 0 {
			s.Filter[f] = s.Cross[f] / complex(den, 0)
		}
	}

	// Causal kernel
	if err := ws.kernel(s.Kernel, xf, yf, s.Power, lambda); err != nil {
		return Spectrum{}, err
	}

	s.IllConditioned = illConditioned(s.Power, lambda, cfg.tolerance)
	return s, nil
}
