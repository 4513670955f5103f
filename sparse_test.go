package bjkst

import (
	"testing"

	"github.com/bmizerany/assert"
)

func TestSparse(t *testing.T) {
	inputs := []uint64{0, 1, 2, 127, 128, 1 << 40, 1<<64 - 1}
	cs := sparseFromSorted(inputs)
	assert.Equal(t, uint64(len(inputs)), cs.GetNumElements())

	output, err := decodeSparse(cs.buf, cs.GetNumElements())
	assert.Equal(t, nil, err)
	assert.Equal(t, inputs, output)
}

func TestSparseDeltas(t *testing.T) {
	cs := newSparse(3)
	for _, x := range []uint64{5, 7, 300} {
		cs.Add(x)
	}
	// 5, then +2, then +293 as a two byte uvarint.
	assert.Equal(t, []byte{0x05, 0x02, 0xa5, 0x02}, cs.buf)
}

func TestSparseEmpty(t *testing.T) {
	cs := sparseFromSorted(nil)
	output, err := decodeSparse(cs.buf, 0)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(output))

	_, err = decodeSparse(cs.buf, 1)
	assert.T(t, err != nil)
}

func TestSparseRandom(t *testing.T) {
	s := MustNew(10)
	s.InsertFingerprints(randUint64s(t, 5000))
	fps := s.Fingerprints()

	cs := sparseFromSorted(fps)
	output, err := decodeSparse(cs.buf, uint64(len(fps)))
	assert.Equal(t, nil, err)
	assert.Equal(t, fps, output)
}
