package estimate

import (
	"testing"

	"github.com/cwbudde/algo-rf/internal/testutil"
)

func jointProblem(T, P, K int, filter []float64) *problem {
	stim := testutil.GaussianNoise(12, T*P)
	act := testutil.CausalResponse(stim, T, P, filter, K, 1)
	p := &problem{t: T, k: K, outputs: [][]float64{act}}
	for c := range P {
		x := make([]float64, T)
		for tt := range T {
			x[tt] = stim[tt*P+c]
		}
		p.inputs = append(p.inputs, x)
	}
	return p
}

func TestUnderPaddingAliases(t *testing.T) {
	const T, P, K = 64, 3, 4
	filter := []float64{
		0.8, -0.1, 0.3,
		0.0, 0.5, -0.2,
		-0.4, 0.0, 0.1,
		0.2, -0.3, 0.0,
	}
	// coef is laid out (o*C + c)*K + k
	want := make([]float64, P*K)
	for c := range P {
		for k := range K {
			want[c*K+k] = filter[k*P+c]
		}
	}

	p := jointProblem(T, P, K, filter)
	cfg, err := newConfig([]Option{WithMethod(MethodJoint)})
	if err != nil {
		t.Fatal(err)
	}

	good, err := run(p, cfg, 128)
	if err != nil {
		t.Fatalf("run(128): %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, good.coef, want, 1e-8)

	bad, err := run(p, cfg, T)
	if err != nil {
		t.Fatalf("run(%d): %v", T, err)
	}
	diff, err := testutil.MaxAbsDiff(bad.coef, want)
	if err != nil {
		t.Fatal(err)
	}
	if diff < 1e-6 {
		t.Fatalf("FFT length T produced an alias-free estimate (max diff %g)", diff)
	}
}

func TestUnderPaddingAliasesSpectral(t *testing.T) {
	const T, K = 64, 4
	filter := []float64{0.8, 0, -0.4, 0.2}
	cfg, err := newConfig([]Option{WithMethod(MethodSpectral)})
	if err != nil {
		t.Fatal(err)
	}

	// With the last K-1 stimulus samples zeroed, the circular and linear
	// responses coincide and every FFT length >= T is exact.
	quiet := jointProblem(T, 1, K, filter)
	x := quiet.inputs[0]
	for i := T - K + 1; i < T; i++ {
		x[i] = 0
	}
	quiet.outputs[0] = testutil.CausalResponse(x, T, 1, filter, K, 1)
	for _, n := range []int{T, 128} {
		sol, err := run(quiet, cfg, n)
		if err != nil {
			t.Fatalf("run(%d): %v", n, err)
		}
		testutil.RequireSliceNearlyEqual(t, sol.coef, filter, 1e-8)
	}

	// Otherwise the samples that wrap around at length T land inside the
	// kernel window and move the estimate.
	p := jointProblem(T, 1, K, filter)
	padded, err := run(p, cfg, 128)
	if err != nil {
		t.Fatal(err)
	}
	wrapped, err := run(p, cfg, T)
	if err != nil {
		t.Fatal(err)
	}
	diff, err := testutil.MaxAbsDiff(wrapped.coef, padded.coef)
	if err != nil {
		t.Fatal(err)
	}
	if diff < 1e-6 {
		t.Fatalf("FFT length T left the spectral kernel unchanged (max diff %g)", diff)
	}
}

func TestPadLengthFor(t *testing.T) {
	tests := []struct {
		pad, t, k int
		want      int
		wantErr   bool
	}{
		{0, 100, 5, 128, false},
		{0, 64, 1, 64, false},
		{0, 64, 2, 128, false},
		{104, 100, 5, 128, false},
		{256, 100, 5, 256, false},
		{103, 100, 5, 0, true},
	}
	for _, tt := range tests {
		cfg, err := newConfig([]Option{WithPadLength(tt.pad)})
		if err != nil {
			t.Fatal(err)
		}
		got, err := cfg.padLengthFor(tt.t, tt.k)
		if (err != nil) != tt.wantErr {
			t.Fatalf("padLengthFor(%d,%d) pad=%d err = %v", tt.t, tt.k, tt.pad, err)
		}
		if got != tt.want {
			t.Fatalf("padLengthFor(%d,%d) pad=%d = %d, want %d", tt.t, tt.k, tt.pad, got, tt.want)
		}
	}
}

func TestIllConditioned(t *testing.T) {
	tests := []struct {
		name   string
		power  []float64
		lambda float64
		want   bool
	}{
		{"silent", []float64{0, 0, 0}, 1, true},
		{"flat", []float64{1, 1, 1}, 0, false},
		{"null bin", []float64{4, 0, 2}, 0, true},
		{"null bin with ridge", []float64{4, 0, 2}, 1e-6, false},
		{"ridge below floor", []float64{1e12, 1e-3, 1}, 1e-3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := illConditioned(tt.power, tt.lambda, DefaultTolerance); got != tt.want {
				t.Fatalf("illConditioned = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTail(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{5, 4, 3, 2, 1}
	// τ in [5, 7): x[τ-2]·y[τ-3] = x[3]y[2] + x[4]y[3]
	if got, want := tail(x, y, 2, 3, 5), 4.0*3+5*2; got != want {
		t.Fatalf("tail = %v, want %v", got, want)
	}
	if got := tail(x, y, 0, 3, 5); got != 0 {
		t.Fatalf("tail at lag 0 = %v, want 0", got)
	}
}

func TestDiagnosticsCoordinates(t *testing.T) {
	d := newDiagnostics(2, []int{3, 4})
	d.flags[1*12+7] = true

	if d.Total() != 24 || d.Count() != 1 {
		t.Fatalf("Total/Count = %d/%d, want 24/1", d.Total(), d.Count())
	}
	got := d.Flagged()
	if len(got) != 1 || got[0] != (Slice{Neuron: 1, Position: 7}) {
		t.Fatalf("Flagged = %v", got)
	}
	if c := d.Coordinates(7); len(c) != 2 || c[0] != 1 || c[1] != 3 {
		t.Fatalf("Coordinates(7) = %v, want [1 3]", c)
	}
	if !d.IllConditioned(1, 7) || d.IllConditioned(0, 7) {
		t.Fatal("IllConditioned mismatch")
	}
	for _, idx := range [][2]int{{-1, 0}, {2, 0}, {0, 12}, {0, -1}, {1, 12}} {
		if d.IllConditioned(idx[0], idx[1]) {
			t.Fatalf("IllConditioned(%d, %d) = true outside the estimate", idx[0], idx[1])
		}
	}
}
