package encode

import (
	"fmt"
	"testing"

	"github.com/cwbudde/algo-rf/internal/testutil"
	"github.com/cwbudde/algo-rf/rf/tensor"
)

func BenchmarkActivity(b *testing.B) {
	sizes := []struct {
		t, n, p, k int
	}{
		{1000, 4, 64, 8},
		{1000, 16, 256, 8},
		{10000, 4, 64, 32},
	}

	for _, size := range sizes {
		stim := tensor.Must(tensor.FromSlice(testutil.GaussianNoise(1, size.t*size.p), size.t, size.p))
		rf := tensor.Must(tensor.FromSlice(testutil.GaussianNoise(2, size.k*size.n*size.p), size.k, size.n, size.p))

		b.Run(fmt.Sprintf("T=%d_N=%d_P=%d_K=%d", size.t, size.n, size.p, size.k), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = Activity(stim, rf, BoundaryTruncate)
			}
		})
	}
}
