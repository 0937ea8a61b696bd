package testutil

import (
	"math/rand"
)

// DeterministicNoise generates uniform white noise in [-amplitude, amplitude]
// with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// GaussianNoise generates independent unit-Gaussian samples with a fixed seed.
func GaussianNoise(seed int64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = rng.NormFloat64()
	}
	return out
}

// Alternating returns +1, -1, +1, ... Its DFT over an even length has no DC
// content, which makes it a convenient rank-deficient stimulus.
func Alternating(length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		if i%2 == 0 {
			out[i] = 1
		} else {
			out[i] = -1
		}
	}
	return out
}

// CausalResponse is a reference implementation of the linear encoding model
// with zero history:
//
//	out[t,n] = sum_k sum_p filter[k,n,p] * in[t-k,p],  in[t<0] = 0
//
// in is (T, P) row-major, filter is (K, N, P) row-major, and the result is
// (T, N) row-major.
func CausalResponse(in []float64, T, P int, filter []float64, K, N int) []float64 {
	out := make([]float64, T*N)
	for t := 0; t < T; t++ {
		for n := 0; n < N; n++ {
			var acc float64
			for k := 0; k < K && k <= t; k++ {
				for p := 0; p < P; p++ {
					acc += filter[(k*N+n)*P+p] * in[(t-k)*P+p]
				}
			}
			out[t*N+n] = acc
		}
	}
	return out
}
