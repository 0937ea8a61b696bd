package estimate

import (
	"fmt"
	"testing"

	"github.com/cwbudde/algo-rf/internal/testutil"
)

func benchProblem(t, channels, k int) *problem {
	p := &problem{t: t, k: k}
	for c := range channels {
		p.inputs = append(p.inputs, testutil.GaussianNoise(int64(c+1), t))
	}
	p.outputs = [][]float64{testutil.GaussianNoise(99, t), testutil.GaussianNoise(98, t)}
	return p
}

func BenchmarkSolve(b *testing.B) {
	sizes := []struct {
		t, channels, k int
	}{
		{1000, 16, 8},
		{1000, 64, 8},
		{10000, 64, 16},
	}

	for _, m := range []Method{MethodSpectral, MethodJoint} {
		for _, size := range sizes {
			p := benchProblem(size.t, size.channels, size.k)
			cfg, err := newConfig([]Option{WithMethod(m), WithRidge(1e-3)})
			if err != nil {
				b.Fatal(err)
			}
			b.Run(fmt.Sprintf("%s/T=%d_C=%d_K=%d", m, size.t, size.channels, size.k), func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					_, _ = solve(p, cfg)
				}
			})
		}
	}
}
