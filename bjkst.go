package bjkst

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Sketch estimates the number of distinct values inserted into it using at most 2^precision
// fingerprints of memory.
//
// A Sketch is not safe for concurrent use. Read-only methods (Cardinality, Len, IsEmpty,
// Fingerprint and the Marshal methods) may run concurrently with each other, but never with a
// mutation of the same Sketch.
//
// The zero value is only useful as a target for UnmarshalBinary, UnmarshalJSON, GobDecode or
// UnmarshalCBOR; use New to build a Sketch for inserting.
type Sketch struct {
	precision uint8
	key       Key
	keyID     uint64
	log       *zap.Logger
	sample    *sample
}

// New returns an empty Sketch with the given precision. The precision must be in
// [MinPrecision, MaxPrecision], otherwise an *InvalidPrecisionError is returned.
func New(precision uint8, opts ...Option) (*Sketch, error) {
	cfg, err := NewConfig(precision, opts...)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg), nil
}

// MustNew is like New but panics on an invalid precision.
func MustNew(precision uint8, opts ...Option) *Sketch {
	s, err := New(precision, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// NewFromConfig returns an empty Sketch for a Config returned by NewConfig.
func NewFromConfig(cfg *Config) *Sketch {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Sketch{
		precision: cfg.Precision,
		key:       cfg.Key,
		keyID:     cfg.Key.ID(),
		log:       log,
		sample:    newSample(capacityFor(cfg.Precision)),
	}
}

// Precision returns the precision the sketch was built with.
func (s *Sketch) Precision() uint8 { return s.precision }

// Capacity returns the maximum number of fingerprints the sketch retains.
func (s *Sketch) Capacity() int { return s.sample.capacity }

// Level returns the current thinning level: only fingerprints with at least Level trailing
// zero bits are retained.
func (s *Sketch) Level() uint8 { return s.sample.level }

// Key returns the hash key used by Fingerprint.
func (s *Sketch) Key() Key { return s.key }

// IsEmpty reports whether the sketch holds no fingerprints and has never been thinned.
func (s *Sketch) IsEmpty() bool {
	return s.sample.Len() == 0 && s.sample.level == 0
}

// Cardinality returns the estimated number of distinct values inserted so far. Until the
// number of distinct fingerprints exceeds Capacity the count is exact.
func (s *Sketch) Cardinality() uint64 {
	return s.sample.estimate()
}

// Len is Cardinality as an int, clamped to math.MaxInt.
func (s *Sketch) Len() int {
	c := s.Cardinality()
	if c > math.MaxInt {
		return math.MaxInt
	}
	return int(c)
}

// Fingerprint returns the 64-bit fingerprint Insert would use for v, without inserting it.
func (s *Sketch) Fingerprint(v any) (uint64, error) {
	val, err := ValueOf(v)
	if err != nil {
		return 0, err
	}
	return s.key.fingerprint(val), nil
}

// FingerprintValue is Fingerprint for a Value, which cannot fail.
func (s *Sketch) FingerprintValue(v Value) uint64 {
	return s.key.fingerprint(v)
}

// Insert fingerprints v and adds it to the sketch. v must be an integer, a []byte, a string or
// a Value; anything else returns an *UnsupportedTypeError and leaves the sketch unchanged.
func (s *Sketch) Insert(v any) error {
	f, err := s.Fingerprint(v)
	if err != nil {
		return err
	}
	s.InsertFingerprint(f)
	return nil
}

// InsertValue adds v to the sketch.
func (s *Sketch) InsertValue(v Value) {
	s.InsertFingerprint(s.key.fingerprint(v))
}

// InsertValues fingerprints every value before inserting any of them, so an unsupported value
// leaves the sketch unchanged.
func (s *Sketch) InsertValues(values ...any) error {
	fps := make([]uint64, len(values))
	for i, v := range values {
		f, err := s.Fingerprint(v)
		if err != nil {
			return err
		}
		fps[i] = f
	}
	s.InsertFingerprints(fps)
	return nil
}

// InsertFingerprint adds an already computed fingerprint. It must come from a sketch with the
// same Key for the estimate to be meaningful.
func (s *Sketch) InsertFingerprint(f uint64) {
	if s.sample.insert(f) {
		s.logThinned("insert")
	}
}

// InsertFingerprints is the batch form of InsertFingerprint.
func (s *Sketch) InsertFingerprints(fps []uint64) {
	raised := false
	for _, f := range fps {
		if s.sample.insert(f) {
			raised = true
		}
	}
	if raised {
		s.logThinned("insert batch")
	}
}

// Clear resets the sketch to its freshly constructed state.
func (s *Sketch) Clear() {
	s.sample.clear()
}

// Clone returns a deep copy that shares no state with s.
func (s *Sketch) Clone() *Sketch {
	return &Sketch{
		precision: s.precision,
		key:       s.key,
		keyID:     s.keyID,
		log:       s.log,
		sample:    s.sample.Copy(),
	}
}

// Fingerprints returns the retained fingerprints in ascending order.
func (s *Sketch) Fingerprints() []uint64 {
	return s.sample.sorted()
}

// Equal reports whether two sketches have the same parameters and the same state, and so will
// give the same estimates and merge results from now on.
func (s *Sketch) Equal(other *Sketch) bool {
	return s.precision == other.precision &&
		s.keyID == other.keyID &&
		s.sample.equal(other.sample)
}

// Combine merges other into s, so that s estimates the cardinality of the union of both
// streams. This allows you to parallelize cardinality estimation: each worker builds a sketch
// over a shard of the input, and the results are combined later.
//
// The inputs must have the same precision and Key, otherwise an *IncompatibleError is returned
// and s is left unchanged. other is never modified.
func (s *Sketch) Combine(other *Sketch) error {
	if err := s.checkCompatible(other); err != nil {
		return err
	}
	if s == other {
		return nil
	}
	if s.sample.union(other.sample) {
		s.logThinned("combine")
	}
	s.log.Debug("combined sketches",
		zap.Int("size", s.sample.Len()),
		zap.Uint8("level", s.sample.level),
		zap.Int("otherSize", other.sample.Len()),
		zap.Uint8("otherLevel", other.sample.level))
	return nil
}

// Union returns a new sketch holding s combined with all others. s and others are unchanged.
func (s *Sketch) Union(others ...*Sketch) (*Sketch, error) {
	result := s.Clone()
	for _, other := range others {
		if err := result.Combine(other); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Merge returns a new sketch for the union of the streams behind a and b. Neither input is
// modified.
func Merge(a, b *Sketch) (*Sketch, error) {
	return a.Union(b)
}

func (s *Sketch) checkCompatible(other *Sketch) error {
	if s.precision != other.precision {
		return &IncompatibleError{
			Reason: fmt.Sprintf("precision mismatch: %d/%d", s.precision, other.precision),
		}
	}
	if s.keyID != other.keyID {
		return &IncompatibleError{Reason: "hash key mismatch"}
	}
	return nil
}

func (s *Sketch) logThinned(op string) {
	s.log.Debug("thinned sample",
		zap.String("op", op),
		zap.Uint8("level", s.sample.level),
		zap.Int("size", s.sample.Len()),
		zap.Int("capacity", s.sample.capacity))
}
