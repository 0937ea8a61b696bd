package estimate

import (
	"errors"
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-rf/internal/parallel"
)

// correlate writes lags -(k-1)..k-1 of IFFT(conj(A)·B + ridge) to dst, which
// must have length 2k-1 (lag m at index m+k-1). The ridge lands on lag 0
// only. Lags are free of circular aliasing when the FFT length is >= T+K-1.
func (w *workspace) correlate(dst []float64, af, bf []complex128, ridge float64, k int) error {
	// Cross spectrum, ridge added to every bin
	r := complex(ridge, 0)
	for f := range w.buf {
		w.buf[f] = cmplx.Conj(af[f])*bf[f] + r
	}

	// Inverse FFT
	if err := w.plan.Inverse(w.buf, w.buf); err != nil {
		return fmt.Errorf("estimate: inverse FFT failed: %w", err)
	}

	// Negative lags wrap to the end of the buffer
	n := len(w.buf)
	for m := -(k - 1); m < k; m++ {
		dst[m+k-1] = real(w.buf[(m+n)%n])
	}
	return nil
}

// tail returns Σ x[τ-a]·y[τ-b] over τ in [t, t+min(a,b)), the products a
// zero-padded correlation counts beyond the end of the record.
func tail(x, y []float64, a, b, t int) float64 {
	var s float64
	for tau := t; tau < t+min(a, b); tau++ {
		s += x[tau-a] * y[tau-b]
	}
	return s
}

// solveJoint solves (G + λI)h = b for every output channel, where
//
//	G[(c,a),(d,b)] = Σ_{τ<T} x_c[τ-a]·x_d[τ-b]
//	b[(c,a)]       = Σ_{τ<T} x_c[τ-a]·y[τ]
//
// Both come from the zero-padded spectra. The second return value reports a
// singular or badly conditioned system; the coefficients are still filled.
func solveJoint(p *problem, sp *spectra, cfg config) ([]float64, bool, error) {
	nc, no, k, t := len(p.inputs), len(p.outputs), p.k, p.t
	u := nc * k
	width := 2*k - 1

	// Input pairs c <= d
	type pair struct{ c, d int }
	pairs := make([]pair, 0, nc*(nc+1)/2)
	for c := range nc {
		for d := c; d < nc; d++ {
			pairs = append(pairs, pair{c, d})
		}
	}

	// Cross-correlations; corr[c*nc+d] holds R_cd for c <= d and
	// R_dc[m] = R_cd[-m]
	corr := make([][]float64, nc*nc)
	err := parallel.For(len(pairs), cfg.Workers, func(lo, hi int) error {
		ws, err := newWorkspace(sp.n)
		if err != nil {
			return err
		}
		for _, pr := range pairs[lo:hi] {
			ridge := 0.0
			if pr.c == pr.d {
				ridge = cfg.ridge
			}
			dst := make([]float64, width)
			if err := ws.correlate(dst, sp.in[pr.c], sp.in[pr.d], ridge, k); err != nil {
				return err
			}
			corr[pr.c*nc+pr.d] = dst
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	// Gram matrix from the correlations, minus the products past the record
	g := make([]float64, u*u)
	err = parallel.For(nc, cfg.Workers, func(lo, hi int) error {
		for c := lo; c < hi; c++ {
			for d := range nc {
				for a := range k {
					for b := range k {
						var r float64
						if c <= d {
							r = corr[c*nc+d][a-b+k-1]
						} else {
							r = corr[d*nc+c][b-a+k-1]
						}
						r -= tail(p.inputs[c], p.inputs[d], a, b, t)
						g[(c*k+a)*u+d*k+b] = r
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	// Right-hand sides, one column per output
	rhs := make([]float64, u*no)
	err = parallel.For(nc*no, cfg.Workers, func(lo, hi int) error {
		ws, err := newWorkspace(sp.n)
		if err != nil {
			return err
		}
		lags := make([]float64, width)
		for i := lo; i < hi; i++ {
			c, o := i/no, i%no
			if err := ws.correlate(lags, sp.in[c], sp.out[o], 0, k); err != nil {
				return err
			}
			for a := range k {
				rhs[(c*k+a)*no+o] = lags[a+k-1]
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	// Cholesky factorization, retried with diagonal jitter
	sym := mat.NewSymDense(u, g)
	var chol mat.Cholesky
	singular := false
	if !chol.Factorize(sym) {
		singular = true
		jitter := cfg.tolerance * maxDiagonal(sym)
		if jitter == 0 {
			jitter = DefaultTolerance
		}
		for i := range u {
			sym.SetSym(i, i, sym.At(i, i)+jitter)
		}
		if !chol.Factorize(sym) {
			return make([]float64, no*nc*k), true, nil
		}
	}
	if cfg.tolerance > 0 && chol.Cond() > 1/cfg.tolerance {
		singular = true
	}

	// Solve
	var x mat.Dense
	if err := chol.SolveTo(&x, mat.NewDense(u, no, rhs)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, false, fmt.Errorf("estimate: joint solve failed: %w", err)
		}
		singular = true
	}

	// Reorder to (o*C + c)*K + k
	coef := make([]float64, no*nc*k)
	for o := range no {
		for c := range nc {
			for a := range k {
				coef[(o*nc+c)*k+a] = x.At(c*k+a, o)
			}
		}
	}
	return coef, singular, nil
}

func maxDiagonal(s *mat.SymDense) float64 {
	n := s.SymmetricDim()
	m := 0.0
	for i := range n {
		m = max(m, s.At(i, i))
	}
	return m
}
