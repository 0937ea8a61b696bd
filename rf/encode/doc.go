// Package encode predicts activity from a stimulus and a receptive field,
// or a stimulus from activity and a decoder, by causal linear convolution.
//
// The convolution is direct and non-circular: every output sample is a sum
// of windowed dot products over the K most recent input rows. The caller
// chooses how the first K-1 output rows are treated; see Boundary.
//
// # Usage
//
//	activity, err := encode.Activity(stimulus, receptiveField, encode.BoundaryTruncate)
//	stimulus, err := encode.Stimulus(activity, decoder, encode.BoundaryZeroFill)
package encode
