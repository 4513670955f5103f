package bjkst

import (
	"go.uber.org/zap"
)

const (
	// MinPrecision is the smallest accepted precision. It gives a sample capacity of 8.
	MinPrecision uint8 = 3
	// MaxPrecision is the largest accepted precision. It gives a sample capacity of 2^20
	// fingerprints, or 8MB of sample.
	MaxPrecision uint8 = 20
	// DefaultPrecision gives a capacity of 65536 fingerprints, which keeps the relative standard
	// error well under 1%.
	DefaultPrecision uint8 = 16
)

// Config holds everything fixed at construction time for a Sketch. Two sketches can only be
// combined when their Precision and Key agree.
type Config struct {
	// Precision bounds memory: the sample never holds more than 2^Precision fingerprints.
	Precision uint8
	// Key seeds the fingerprint hash.
	Key Key
	// Logger receives debug events (thinning, merges, decode rejections). Never nil after
	// NewConfig.
	Logger *zap.Logger
}

// Option customizes a Config.
type Option func(*Config)

// WithKey sets the hash key used to fingerprint values.
func WithKey(key Key) Option {
	return func(c *Config) {
		c.Key = key
	}
}

// WithRandomKey draws a fresh hash key from crypto/rand. Sketches built this way can only be
// merged with clones of themselves, or with sketches given the same key via WithKey.
func WithRandomKey() Option {
	return func(c *Config) {
		c.Key = NewRandomKey()
	}
}

// WithLogger routes debug events to log.
func WithLogger(log *zap.Logger) Option {
	return func(c *Config) {
		if log != nil {
			c.Logger = log
		}
	}
}

// NewConfig validates precision and applies opts. The default key is the zero key, which makes
// fingerprints stable across processes.
func NewConfig(precision uint8, opts ...Option) (*Config, error) {
	if err := checkPrecision(precision); err != nil {
		return nil, err
	}
	c := &Config{
		Precision: precision,
		Logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Capacity is the maximum sample size for the configured precision.
func (c *Config) Capacity() int {
	return capacityFor(c.Precision)
}

func checkPrecision(precision uint8) error {
	if precision < MinPrecision || precision > MaxPrecision {
		return &InvalidPrecisionError{Precision: precision}
	}
	return nil
}

func capacityFor(precision uint8) int {
	return 1 << precision
}
