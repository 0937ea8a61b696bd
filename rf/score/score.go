package score

import (
	"fmt"
	"math"
	"slices"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-rf/internal/parallel"
	"github.com/cwbudde/algo-rf/rf/core"
	"github.com/cwbudde/algo-rf/rf/shape"
	"github.com/cwbudde/algo-rf/rf/tensor"
)

// Metrics summarizes one channel of a prediction.
type Metrics struct {
	Correlation       float64 // Pearson r; NaN when either series is constant
	ExplainedVariance float64 // 1 - Var(actual-predicted)/Var(actual)
	RMSE              float64
}

// comoments holds the running Welford state of a pair of series.
type comoments struct {
	n            int
	meanA, meanB float64
	m2A, m2B     float64
	cAB          float64
}

func (c *comoments) add(a, b float64) {
	c.n++
	nf := float64(c.n)
	dA := a - c.meanA
	c.meanA += dA / nf
	dB := b - c.meanB
	c.meanB += dB / nf
	// uses the updated meanB
	c.cAB += dA * (b - c.meanB)
	c.m2A += dA * (a - c.meanA)
	c.m2B += dB * (b - c.meanB)
}

func accumulate(a, b []float64) comoments {
	var c comoments
	for i := range a {
		c.add(a[i], b[i])
	}
	return c
}

// Pearson returns the correlation coefficient of a and b. It returns NaN
// when the lengths differ, fewer than two samples are given, or either
// series has zero variance.
func Pearson(a, b []float64) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return math.NaN()
	}
	c := accumulate(a, b)
	if c.m2A == 0 || c.m2B == 0 {
		return math.NaN()
	}
	r := c.cAB / math.Sqrt(c.m2A*c.m2B)
	return math.Max(-1, math.Min(1, r))
}

// ExplainedVariance returns 1 - Var(actual-predicted)/Var(actual). It
// returns NaN when the lengths differ, the input is empty or actual is
// constant.
func ExplainedVariance(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return math.NaN()
	}
	var va, vr comoments
	for i := range actual {
		va.add(actual[i], 0)
		vr.add(actual[i]-predicted[i], 0)
	}
	if va.m2A == 0 {
		return math.NaN()
	}
	return 1 - vr.m2A/va.m2A
}

// RMSE returns the root-mean-square error between actual and predicted, or
// NaN when the lengths differ or the input is empty.
func RMSE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return math.NaN()
	}
	d := make([]float64, len(actual))
	for i := range d {
		d[i] = actual[i] - predicted[i]
	}
	return math.Sqrt(vecmath.DotProduct(d, d) / float64(len(d)))
}

// Prediction scores every channel of predicted against actual. Both arrays
// have time on axis 0 and the same trailing shape. predicted may hold T rows
// (zero-fill or zero-history encoding) or T-K+1 rows (truncated encoding);
// either way only rows with a full kernel history, t >= K-1, are scored.
func Prediction(actual, predicted *tensor.Array, kernelSize int) ([]Metrics, error) {
	if actual == nil || predicted == nil {
		return nil, fmt.Errorf("score: %w: actual and predicted are required", core.ErrInvalidParameter)
	}
	if kernelSize < 1 {
		return nil, fmt.Errorf("score: %w: kernel size must be > 0, got %d", core.ErrInvalidParameter, kernelSize)
	}
	if actual.Rank() < 2 || predicted.Rank() < 2 {
		return nil, &shape.MismatchError{
			First: "prediction", Dim: shape.DimRank,
			FirstSize: min(actual.Rank(), predicted.Rank()), SecondSize: ">= 2",
		}
	}
	as, ps := actual.Shape(), predicted.Shape()
	if !slices.Equal(as[1:], ps[1:]) {
		return nil, &shape.MismatchError{
			First: "prediction", Second: "actual", Dim: "channel",
			FirstSize: ps[1:], SecondSize: as[1:],
		}
	}

	t := as[0]
	if t < kernelSize {
		return nil, &shape.MismatchError{
			First: "actual", Second: shape.NameKernelSize, Dim: shape.DimTime,
			FirstSize: t, SecondSize: kernelSize,
		}
	}
	var skipPred int
	switch ps[0] {
	case t - kernelSize + 1:
	case t:
		skipPred = kernelSize - 1
	default:
		return nil, &shape.MismatchError{
			First: "prediction", Second: "actual", Dim: shape.DimTime,
			FirstSize: ps[0], SecondSize: fmt.Sprintf("%d or %d", t, t-kernelSize+1),
		}
	}

	out := make([]Metrics, actual.RowLen())
	for ch := range out {
		a := actual.Series(ch)[kernelSize-1:]
		p := predicted.Series(ch)[skipPred:]
		out[ch] = Metrics{
			Correlation:       Pearson(a, p),
			ExplainedVariance: ExplainedVariance(a, p),
			RMSE:              RMSE(a, p),
		}
	}
	return out, nil
}

// CorrelationMap returns the zero-lag Pearson correlation between each
// neuron's activity and each stimulus position, shaped (N, *S). Constant
// series yield NaN entries.
func CorrelationMap(stimulus, activity *tensor.Array, opts ...core.Option) (*tensor.Array, error) {
	if stimulus == nil || activity == nil {
		return nil, fmt.Errorf("score: %w: stimulus and activity are required", core.ErrInvalidParameter)
	}
	dims, err := shape.Validate(shape.Set{Stimulus: stimulus, Activity: activity}, 0)
	if err != nil {
		return nil, err
	}

	n, p := dims.N, dims.SpatialSize()
	positions := make([][]float64, p)
	for j := range positions {
		positions[j] = stimulus.Series(j)
	}

	cfg := core.ApplyOptions(opts...)
	data := make([]float64, n*p)
	err = parallel.For(n, cfg.Workers, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			act := activity.Series(i)
			for j, pos := range positions {
				data[i*p+j] = Pearson(act, pos)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tensor.Adopt(data, append([]int{n}, dims.Spatial...)...)
}
