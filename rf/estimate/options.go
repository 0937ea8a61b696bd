package estimate

import (
	"fmt"

	"github.com/cwbudde/algo-rf/rf/core"
)

// Method selects the estimation algorithm.
type Method int

const (
	// MethodAuto is the default. It uses MethodJoint when the system has at
	// most 4096 unknowns (K times the number of input channels) and falls
	// back to MethodSpectral otherwise.
	MethodAuto Method = iota

	// MethodSpectral estimates every (neuron, position) slice independently
	// by ridge-regularized spectral division. It is exact only when the
	// response ends inside the record, i.e. the last K-1 input samples are
	// zero. Otherwise the activity the record cuts off after T biases the
	// kernel, and cross-talk between input channels goes unresolved.
	MethodSpectral

	// MethodJoint solves the windowed least-squares problem across all input
	// channels at once.
	MethodJoint
)

// String returns the method name.
func (m Method) String() string {
	switch m {
	case MethodAuto:
		return "auto"
	case MethodSpectral:
		return "spectral"
	case MethodJoint:
		return "joint"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod maps "auto", "spectral" or "joint" to a Method.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "auto":
		return MethodAuto, nil
	case "spectral":
		return MethodSpectral, nil
	case "joint":
		return MethodJoint, nil
	default:
		return 0, fmt.Errorf("estimate: %w: unknown method %q", core.ErrInvalidParameter, s)
	}
}

// DefaultTolerance is the relative power floor below which a slice is
// reported as ill-conditioned.
const DefaultTolerance = 1e-10

// maxJointUnknowns caps the K·C system size of MethodJoint.
const maxJointUnknowns = 4096

// methodFor resolves MethodAuto for a system of the given number of unknowns.
func (c config) methodFor(unknowns int) Method {
	if c.method != MethodAuto {
		return c.method
	}
	if unknowns <= maxJointUnknowns {
		return MethodJoint
	}
	return MethodSpectral
}

type config struct {
	core.Config
	ridge     float64
	method    Method
	padLength int
	tolerance float64
}

// Option configures an estimation call.
type Option func(*config)

// WithRidge sets the additive ridge λ (default 0). λ < 0 is rejected.
func WithRidge(lambda float64) Option {
	return func(c *config) {
		c.ridge = lambda
	}
}

// WithMethod selects the estimation algorithm (default MethodAuto).
func WithMethod(m Method) Option {
	return func(c *config) {
		c.method = m
	}
}

// WithPadLength sets the minimum FFT length. It is rounded up to a power of
// two; values below T+K-1 are rejected because circular wraparound would
// alias into the kernel window. Zero selects the default.
func WithPadLength(n int) Option {
	return func(c *config) {
		c.padLength = n
	}
}

// WithTolerance sets the relative power floor used for ill-conditioning
// diagnosis (default DefaultTolerance).
func WithTolerance(tol float64) Option {
	return func(c *config) {
		c.tolerance = tol
	}
}

// WithWorkers bounds the number of goroutines (default GOMAXPROCS).
func WithWorkers(n int) Option {
	return func(c *config) {
		core.WithWorkers(n)(&c.Config)
	}
}

func newConfig(opts []Option) (config, error) {
	cfg := config{
		Config:    core.ApplyOptions(),
		method:    MethodAuto,
		tolerance: DefaultTolerance,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.ridge < 0 || !core.IsFinite(cfg.ridge) {
		return config{}, fmt.Errorf("estimate: %w: ridge must be a finite value >= 0, got %v", core.ErrInvalidParameter, cfg.ridge)
	}
	if cfg.tolerance < 0 || !core.IsFinite(cfg.tolerance) {
		return config{}, fmt.Errorf("estimate: %w: tolerance must be a finite value >= 0, got %v", core.ErrInvalidParameter, cfg.tolerance)
	}
	if cfg.padLength < 0 {
		return config{}, fmt.Errorf("estimate: %w: pad length must be >= 0, got %d", core.ErrInvalidParameter, cfg.padLength)
	}
	if cfg.method != MethodAuto && cfg.method != MethodSpectral && cfg.method != MethodJoint {
		return config{}, fmt.Errorf("estimate: %w: unknown method %v", core.ErrInvalidParameter, cfg.method)
	}
	return cfg, nil
}

// padLengthFor returns the FFT length for a problem of t samples and kernel k.
func (c config) padLengthFor(t, k int) (int, error) {
	need := t + k - 1
	if c.padLength == 0 {
		return core.NextPowerOf2(need), nil
	}
	if c.padLength < need {
		return 0, fmt.Errorf("estimate: %w: pad length %d below T+K-1 = %d", core.ErrInvalidParameter, c.padLength, need)
	}
	return core.NextPowerOf2(c.padLength), nil
}
