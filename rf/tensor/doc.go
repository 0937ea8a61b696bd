// Package tensor provides the immutable N-dimensional float64 array passed
// across the estimation and encoding boundary.
//
// Arrays are row-major. The leading axis is time (activity, stimulus) or
// kernel lag (receptive fields, decoders); everything after it is flattened
// into a contiguous row of [Array.RowLen] values.
//
//	stim, err := tensor.FromSlice(samples, 100, 8) // T=100, S=(8,)
//	row := stim.Row(0)                            // 8 values at t=0
//	pos := stim.Series(3)                         // 100 values at position 3
package tensor
