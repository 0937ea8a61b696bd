// Package estimate computes linear receptive fields and decoders by
// regularized deconvolution in the frequency domain.
//
// Given a stimulus (T, *S) and activity (T, N), [ReceptiveField] returns the
// filter (K, N, *S) that best explains
//
//	activity[t, n] ≈ Σ_k Σ_s filter[k, n, s] · stimulus[t-k, s]
//
// [Decoder] solves the dual problem with roles swapped: it returns the filter
// (K, N, *S) that reconstructs the stimulus from activity history.
//
// # Methods
//
// [MethodSpectral] treats every (neuron, spatial position) slice as an
// independent 1-D regression. Both series are zero-padded to a power of
// two ≥ T+K-1, transformed, and the filter spectrum is formed as
//
//	H = conj(X)·Y / (|X|² + λ)
//
// before transforming back and keeping lags 0..K-1. The padding keeps
// circular wraparound out of the kernel window. λ is an additive ridge
// applied to every frequency bin. The activity a finite record cuts off
// after sample T leaks into this estimate unless the stimulus ends with K-1
// zeros.
//
// [MethodJoint] solves the windowed normal equations of all input channels
// together. The lag-domain system is assembled from the same zero-padded
// cross and power spectra (with λ again added to every power bin), corrected
// for the finite record length, and solved by Cholesky factorization. It is
// exact for noise-free data and removes cross-talk between spatial positions,
// at O((K·C)³) cost where C is the number of input channels.
//
// [MethodAuto], the default, picks MethodJoint while K·C stays at or below
// 4096 and MethodSpectral beyond that.
//
// # Diagnostics
//
// A slice is ill-conditioned when the input power spectrum has a bin with
// power + λ below a relative tolerance of the spectrum's maximum. Flagged
// slices are still estimated and returned; see [Diagnostics].
//
//	res, err := estimate.ReceptiveField(stim, act, 5, estimate.WithRidge(1e-3))
//	if err != nil {
//		return err // shape or parameter problem, no filter
//	}
//	if err := res.Diagnostics.Err(); err != nil {
//		log.Printf("some slices are unreliable: %v", err)
//	}
package estimate
