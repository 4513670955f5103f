package bjkst

import (
	"encoding/binary"
	"encoding/json"

	"github.com/cespare/xxhash/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/golang/snappy"
	"go.uber.org/zap"
)

// Binary format version 1. All integers are big-endian.
//
//	+---------------------------+  0
//	| magic "BJK1"              |
//	+---------------------------+  4
//	| version | precision |     |
//	| level   | flags (0) |     |
//	+---------------------------+  8
//	| key id (uint64)           |
//	+---------------------------+  16
//	| count (uint32)            |
//	+---------------------------+  20
//	| payload length (uint32)   |
//	+---------------------------+  24
//	| checksum (uint64)         |  xxhash64 of bytes [0,24) and the payload
//	+---------------------------+  32
//	| snappy(uvarint deltas of  |
//	|   the ascending sample)   |
//	+---------------------------+
const (
	MagicV1         = "BJK1"
	VersionV1 uint8 = 1

	// HeaderBytesV1 is the fixed header size of the V1 binary format.
	HeaderBytesV1 = 32

	maxPayloadBytes = (1 << MaxPrecision) * binary.MaxVarintLen64
)

// decoded is a sketch state read from any of the encodings, before validation.
type decoded struct {
	precision    uint8
	level        uint8
	keyID        uint64
	fingerprints []uint64
}

// MarshalBinary encodes the sketch in the V1 binary format. The encoding is canonical: equal
// sketches encode to identical bytes.
func (s *Sketch) MarshalBinary() ([]byte, error) {
	sp := sparseFromSorted(s.sample.sorted())
	payload := snappy.Encode(nil, sp.buf)

	out := make([]byte, HeaderBytesV1+len(payload))
	copy(out[0:4], MagicV1)
	out[4] = VersionV1
	out[5] = s.precision
	out[6] = s.sample.level
	out[7] = 0
	binary.BigEndian.PutUint64(out[8:16], s.keyID)
	binary.BigEndian.PutUint32(out[16:20], uint32(sp.GetNumElements()))
	binary.BigEndian.PutUint32(out[20:24], uint32(len(payload)))
	copy(out[HeaderBytesV1:], payload)
	binary.BigEndian.PutUint64(out[24:32], checksumV1(out))
	return out, nil
}

// checksumV1 covers everything but the checksum field itself.
func checksumV1(data []byte) uint64 {
	d := xxhash.New()
	_, _ = d.Write(data[0:24])
	_, _ = d.Write(data[HeaderBytesV1:])
	return d.Sum64()
}

// UnmarshalBinary replaces the sketch's state with the decoded one. The receiver's Key (the
// zero key for a zero Sketch) must match the key the data was encoded with. On error the
// receiver is unchanged and the error matches ErrDecode.
func (s *Sketch) UnmarshalBinary(data []byte) error {
	d, err := decodeBinaryV1(data)
	if err != nil {
		return s.rejected("binary", err)
	}
	return s.adopt("binary", d)
}

// Deserialize decodes a sketch from the V1 binary format. Pass WithKey when the sketch was built
// with a non-default key; WithLogger is honoured too.
func Deserialize(data []byte, opts ...Option) (*Sketch, error) {
	cfg := &Config{Logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}
	s := &Sketch{key: cfg.Key, log: cfg.Logger}
	if err := s.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeBinaryV1(data []byte) (decoded, error) {
	if len(data) < HeaderBytesV1 {
		return decoded{}, decodeErrorf("%d bytes is shorter than the %d byte header",
			len(data), HeaderBytesV1)
	}
	if string(data[0:4]) != MagicV1 {
		return decoded{}, decodeErrorf("bad magic %q", data[0:4])
	}
	if data[4] != VersionV1 {
		return decoded{}, decodeErrorf("unsupported version %d", data[4])
	}
	if sum := binary.BigEndian.Uint64(data[24:32]); sum != checksumV1(data) {
		return decoded{}, decodeErrorf("checksum mismatch")
	}
	if data[7] != 0 {
		return decoded{}, decodeErrorf("unknown flags %#x", data[7])
	}
	d := decoded{
		precision: data[5],
		level:     data[6],
		keyID:     binary.BigEndian.Uint64(data[8:16]),
	}
	count := binary.BigEndian.Uint32(data[16:20])
	payloadLen := binary.BigEndian.Uint32(data[20:24])

	// Check the declared sizes before decompressing anything.
	if err := checkPrecision(d.precision); err != nil {
		return decoded{}, &DecodeError{Msg: "precision out of range", Err: err}
	}
	if c := capacityFor(d.precision); int64(count) > int64(c) {
		return decoded{}, decodeErrorf("sample size %d exceeds capacity %d", count, c)
	}
	if uint64(payloadLen) != uint64(len(data)-HeaderBytesV1) {
		return decoded{}, decodeErrorf("payload length %d does not match the %d bytes present",
			payloadLen, len(data)-HeaderBytesV1)
	}

	raw, err := unsnappy(data[HeaderBytesV1:])
	if err != nil {
		return decoded{}, &DecodeError{Msg: "invalid sample payload", Err: err}
	}
	d.fingerprints, err = decodeSparse(raw, uint64(count))
	if err != nil {
		return decoded{}, err
	}
	return d, nil
}

// validate checks every invariant a live sketch maintains, plus the key identity.
func (d decoded) validate(keyID uint64) error {
	if err := checkPrecision(d.precision); err != nil {
		return &DecodeError{Msg: "precision out of range", Err: err}
	}
	if d.level > maxLevel {
		return decodeErrorf("level %d exceeds %d", d.level, maxLevel)
	}
	if c := capacityFor(d.precision); len(d.fingerprints) > c {
		return decodeErrorf("sample size %d exceeds capacity %d", len(d.fingerprints), c)
	}
	mask := levelMask(d.level)
	for i, f := range d.fingerprints {
		if i > 0 && f <= d.fingerprints[i-1] {
			return decodeErrorf("fingerprint %d: sample not strictly ascending", i)
		}
		if f&mask != 0 {
			return decodeErrorf("fingerprint %#x is not retained at level %d", f, d.level)
		}
	}
	if d.keyID != keyID {
		return decodeErrorf("encoded with a different hash key (id %#x, want %#x)", d.keyID, keyID)
	}
	return nil
}

// adopt validates d against the receiver's key and, only if it is valid, replaces the
// receiver's state.
func (s *Sketch) adopt(format string, d decoded) error {
	keyID := s.key.ID()
	if err := d.validate(keyID); err != nil {
		return s.rejected(format, err)
	}
	smp := newSample(capacityFor(d.precision))
	smp.level = d.level
	for _, f := range d.fingerprints {
		smp.set[f] = struct{}{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.precision = d.precision
	s.keyID = keyID
	s.sample = smp
	return nil
}

func (s *Sketch) rejected(format string, err error) error {
	if s.log != nil {
		s.log.Debug("rejected encoded sketch", zap.String("format", format), zap.Error(err))
	}
	return err
}

// When marshalling a Sketch to JSON, the sample travels as the snappy-compressed, base64
// encoded delta list.
type jsonableSketch struct {
	P uint8  `json:"p"`
	L uint8  `json:"l"`
	K uint64 `json:"k"`
	N uint32 `json:"n"`
	S string `json:"s"`
}

// MarshalJSON converts the sketch into JSON.
func (s *Sketch) MarshalJSON() ([]byte, error) {
	sp := sparseFromSorted(s.sample.sorted())
	return json.Marshal(&jsonableSketch{
		P: s.precision,
		L: s.sample.level,
		K: s.keyID,
		N: uint32(sp.GetNumElements()),
		S: string(snappyB64(sp.buf)),
	})
}

// UnmarshalJSON decodes JSON produced by MarshalJSON, with the same checks as UnmarshalBinary.
func (s *Sketch) UnmarshalJSON(buf []byte) error {
	j := jsonableSketch{}
	if err := json.Unmarshal(buf, &j); err != nil {
		return s.rejected("json", &DecodeError{Msg: "invalid JSON", Err: err})
	}
	if err := checkPrecision(j.P); err != nil {
		return s.rejected("json", &DecodeError{Msg: "precision out of range", Err: err})
	}
	if c := capacityFor(j.P); int64(j.N) > int64(c) {
		return s.rejected("json", decodeErrorf("sample size %d exceeds capacity %d", j.N, c))
	}
	raw, err := unsnappyB64([]byte(j.S))
	if err != nil {
		return s.rejected("json", &DecodeError{Msg: "invalid sample payload", Err: err})
	}
	fps, err := decodeSparse(raw, uint64(j.N))
	if err != nil {
		return s.rejected("json", err)
	}
	return s.adopt("json", decoded{precision: j.P, level: j.L, keyID: j.K, fingerprints: fps})
}

// GobEncode uses the binary format.
func (s *Sketch) GobEncode() ([]byte, error) {
	return s.MarshalBinary()
}

// GobDecode uses the binary format.
func (s *Sketch) GobDecode(data []byte) error {
	return s.UnmarshalBinary(data)
}

// cborSketch is the CBOR wire form: [precision, level, keyID, [fingerprints...]].
type cborSketch struct {
	_            struct{} `cbor:",toarray"`
	Precision    uint8
	Level        uint8
	KeyID        uint64
	Fingerprints []uint64
}

var (
	cborEnc = mustEncMode()
	cborDec = mustDecMode()
)

func mustEncMode() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

func mustDecMode() cbor.DecMode {
	dm, err := cbor.DecOptions{
		MaxArrayElements: 1 << MaxPrecision,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}

// MarshalCBOR encodes the sketch as a deterministic CBOR array.
func (s *Sketch) MarshalCBOR() ([]byte, error) {
	return cborEnc.Marshal(cborSketch{
		Precision:    s.precision,
		Level:        s.sample.level,
		KeyID:        s.keyID,
		Fingerprints: s.sample.sorted(),
	})
}

// UnmarshalCBOR decodes CBOR produced by MarshalCBOR, with the same checks as UnmarshalBinary.
func (s *Sketch) UnmarshalCBOR(data []byte) error {
	var c cborSketch
	if err := cborDec.Unmarshal(data, &c); err != nil {
		return s.rejected("cbor", &DecodeError{Msg: "invalid CBOR", Err: err})
	}
	return s.adopt("cbor", decoded{
		precision:    c.Precision,
		level:        c.Level,
		keyID:        c.KeyID,
		fingerprints: c.Fingerprints,
	})
}
