package bjkst

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/dchest/siphash"
)

// Key is the 128-bit SipHash key used to fingerprint values. Sketches only agree on
// fingerprints, and can only be merged, when they share a Key.
type Key struct {
	K0, K1 uint64
}

// keyIDMessage is hashed under a key to derive the identity written into encodings, so that a
// decoder can check it holds the right key without the key ever being serialized.
var keyIDMessage = []byte("bjkst key id")

// NewRandomKey returns a key drawn from crypto/rand.
func NewRandomKey() Key {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return KeyFromBytes(b)
}

// KeyFromBytes builds a key from 16 bytes, read as two little-endian words (the layout
// siphash.New expects).
func KeyFromBytes(b [16]byte) Key {
	return Key{
		K0: binary.LittleEndian.Uint64(b[0:8]),
		K1: binary.LittleEndian.Uint64(b[8:16]),
	}
}

// ID returns a 64-bit identity for the key.
func (k Key) ID() uint64 {
	return k.sum(keyIDMessage)
}

func (k Key) sum(p []byte) uint64 {
	return siphash.Hash(k.K0, k.K1, p)
}

// fingerprint hashes the value's payload followed by its kind tag. The tag keeps an integer,
// a byte string and a text string with identical payload bytes apart.
func (k Key) fingerprint(v Value) uint64 {
	var scratch [64]byte
	buf := v.appendPayload(scratch[:0])
	buf = append(buf, byte(v.Kind()))
	return k.sum(buf)
}
