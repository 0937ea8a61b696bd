// Package shape enforces the array-shape contract between activity,
// stimulus, receptive-field and decoder arrays before any numeric work runs.
//
// The contract:
//
//	Activity        (T, N)
//	Stimulus        (T, *S)    len(S) >= 1
//	ReceptiveField  (K, N, *S)
//	Decoder         (K, N, *S)
//
// Nothing is broadcast or inferred. A rank mismatch is reported, never
// collapsed.
package shape
