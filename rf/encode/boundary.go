package encode

import (
	"fmt"

	"github.com/cwbudde/algo-rf/rf/core"
)

// Boundary selects how output rows without a full K-row history are handled.
// The zero value is rejected so that callers always choose explicitly.
type Boundary int

const (
	// BoundaryUnset is the zero value and is never accepted.
	BoundaryUnset Boundary = iota

	// BoundaryTruncate omits rows t < K-1. The output has T-K+1 rows, the
	// first of which corresponds to input row K-1.
	BoundaryTruncate

	// BoundaryZeroFill keeps T rows and sets rows t < K-1 to exactly zero.
	BoundaryZeroFill

	// BoundaryZeroHistory keeps T rows and computes rows t < K-1 as if the
	// input were zero before t = 0.
	BoundaryZeroHistory
)

// String returns the flag spelling of b.
func (b Boundary) String() string {
	switch b {
	case BoundaryUnset:
		return "unset"
	case BoundaryTruncate:
		return "truncate"
	case BoundaryZeroFill:
		return "zero-fill"
	case BoundaryZeroHistory:
		return "zero-history"
	default:
		return fmt.Sprintf("Boundary(%d)", int(b))
	}
}

// ParseBoundary maps "truncate", "zero-fill" or "zero-history" to a Boundary.
func ParseBoundary(s string) (Boundary, error) {
	switch s {
	case "truncate":
		return BoundaryTruncate, nil
	case "zero-fill":
		return BoundaryZeroFill, nil
	case "zero-history":
		return BoundaryZeroHistory, nil
	default:
		return BoundaryUnset, fmt.Errorf("encode: %w: unknown boundary %q", core.ErrInvalidParameter, s)
	}
}

// Rows returns the number of output rows for t input rows and kernel size k.
func (b Boundary) Rows(t, k int) int {
	if b == BoundaryTruncate {
		return t - k + 1
	}
	return t
}

// FirstRow returns the input row index that output row 0 corresponds to.
func (b Boundary) FirstRow(k int) int {
	if b == BoundaryTruncate {
		return k - 1
	}
	return 0
}

func (b Boundary) valid() bool {
	return b == BoundaryTruncate || b == BoundaryZeroFill || b == BoundaryZeroHistory
}
