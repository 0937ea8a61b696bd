package core

import "runtime"

// Config holds engine settings shared by estimation and encoding.
type Config struct {
	// Workers bounds the number of goroutines used for per-slice work.
	Workers int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns a Config that uses every available CPU.
func DefaultConfig() Config {
	return Config{
		Workers: runtime.GOMAXPROCS(0),
	}
}

// WithWorkers sets the worker bound. Values < 1 are ignored.
func WithWorkers(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.Workers = n
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
