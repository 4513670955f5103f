package bjkst

import (
	"encoding/base64"
	"encoding/binary"

	"github.com/golang/snappy"
)

// sparse is an ascending list of fingerprints stored as uvarint deltas.
type sparse struct {
	buf                  []byte
	lastVal, numElements uint64
}

func newSparse(estimatedCap uint64) *sparse {
	return &sparse{
		buf: make([]byte, 0, estimatedCap),
	}
}

// Add appends x, which must be greater than every value added before it.
func (s *sparse) Add(x uint64) {
	delta := x - s.lastVal
	s.buf = binary.AppendUvarint(s.buf, delta)
	s.lastVal = x
	s.numElements++
}

func (s *sparse) GetNumElements() uint64 {
	return s.numElements
}

func sparseFromSorted(fps []uint64) *sparse {
	s := newSparse(uint64(len(fps)) * 5)
	for _, f := range fps {
		s.Add(f)
	}
	return s
}

// decodeSparse decodes exactly count fingerprints from buf. Truncated or overflowing varints,
// trailing bytes and lists that are not strictly ascending are rejected.
func decodeSparse(buf []byte, count uint64) ([]uint64, error) {
	out := make([]uint64, 0, count)
	var last uint64
	for i := uint64(0); i < count; i++ {
		delta, n := binary.Uvarint(buf)
		if n == 0 {
			return nil, decodeErrorf("sample truncated after %d of %d fingerprints", i, count)
		}
		if n < 0 {
			return nil, decodeErrorf("fingerprint %d: varint overflows 64 bits", i)
		}
		buf = buf[n:]
		next := last + delta
		if i > 0 && next <= last {
			return nil, decodeErrorf("fingerprint %d: sample not strictly ascending", i)
		}
		out = append(out, next)
		last = next
	}
	if len(buf) != 0 {
		return nil, decodeErrorf("%d trailing bytes after %d fingerprints", len(buf), count)
	}
	return out, nil
}

// Compress the input using snappy and encode the result using URL-safe base64.
func snappyB64(in []byte) []byte {
	compressed := snappy.Encode(nil, in)
	outBuf := make([]byte, base64.URLEncoding.EncodedLen(len(compressed)))
	base64.URLEncoding.Encode(outBuf, compressed)
	return outBuf
}

// The inverse of snappyB64.
func unsnappyB64(in []byte) ([]byte, error) {
	unBase64ed := make([]byte, base64.URLEncoding.DecodedLen(len(in)))
	n, err := base64.URLEncoding.Decode(unBase64ed, in)
	if err != nil {
		return nil, err
	}
	return unsnappy(unBase64ed[:n])
}

func unsnappy(in []byte) ([]byte, error) {
	n, err := snappy.DecodedLen(in)
	if err != nil {
		return nil, err
	}
	if n > maxPayloadBytes {
		return nil, decodeErrorf("sample payload of %d bytes exceeds %d", n, maxPayloadBytes)
	}
	uncompressed, err := snappy.Decode(nil, in)
	if err != nil {
		return nil, err
	}

	// The snappy library returns nil when the output length is zero.
	if uncompressed == nil {
		uncompressed = []byte{}
	}
	return uncompressed, nil
}
