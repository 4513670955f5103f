package bjkst

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// Kind identifies which of the three supported shapes a Value has.
type Kind uint8

const (
	KindInt Kind = iota + 1
	KindBytes
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBytes:
		return "bytes"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is a closed set of fingerprintable values: Int, Bytes and Text. Use ValueOf to adapt an
// arbitrary Go value.
type Value interface {
	Kind() Kind
	appendPayload(dst []byte) []byte
}

// Int is a signed integer of up to 128 bits, held in two's complement.
type Int struct {
	lo, hi uint64
}

// Bytes is a raw byte sequence.
type Bytes []byte

// Text is a Unicode string.
type Text string

var (
	minInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	two128    = new(big.Int).Lsh(big.NewInt(1), 128)
)

// IntOf returns the Int holding v.
func IntOf(v int64) Int {
	return Int{lo: uint64(v), hi: uint64(v >> 63)}
}

// UintOf returns the Int holding v.
func UintOf(v uint64) Int {
	return Int{lo: v}
}

// BigIntOf returns the Int holding v, or ErrIntegerRange if v needs more than 128 bits of two's
// complement.
func BigIntOf(v *big.Int) (Int, error) {
	if v.Cmp(minInt128) < 0 || v.Cmp(maxInt128) > 0 {
		return Int{}, fmt.Errorf("%w: %s", ErrIntegerRange, v.String())
	}
	u := v
	if v.Sign() < 0 {
		u = new(big.Int).Add(v, two128)
	}
	var b [16]byte
	u.FillBytes(b[:])
	return Int{
		hi: binary.BigEndian.Uint64(b[0:8]),
		lo: binary.BigEndian.Uint64(b[8:16]),
	}, nil
}

// Big returns the integer as a *big.Int.
func (i Int) Big() *big.Int {
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], i.hi)
	binary.BigEndian.PutUint64(b[8:16], i.lo)
	v := new(big.Int).SetBytes(b[:])
	if i.hi>>63 == 1 {
		v.Sub(v, two128)
	}
	return v
}

func (i Int) String() string { return i.Big().String() }

func (Int) Kind() Kind   { return KindInt }
func (Bytes) Kind() Kind { return KindBytes }
func (Text) Kind() Kind  { return KindText }

// The integer payload is the 16-byte little-endian two's complement form.
func (i Int) appendPayload(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, i.lo)
	return binary.LittleEndian.AppendUint64(dst, i.hi)
}

func (b Bytes) appendPayload(dst []byte) []byte { return append(dst, b...) }

func (t Text) appendPayload(dst []byte) []byte { return append(dst, t...) }

// ValueOf adapts v to a Value. Every Go integer type, *big.Int, []byte, string and Value are
// accepted. Equal integers map to equal Values whatever their Go type. Anything else fails with
// an *UnsupportedTypeError.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		return x, nil
	case int:
		return IntOf(int64(x)), nil
	case int8:
		return IntOf(int64(x)), nil
	case int16:
		return IntOf(int64(x)), nil
	case int32:
		return IntOf(int64(x)), nil
	case int64:
		return IntOf(x), nil
	case uint:
		return UintOf(uint64(x)), nil
	case uint8:
		return UintOf(uint64(x)), nil
	case uint16:
		return UintOf(uint64(x)), nil
	case uint32:
		return UintOf(uint64(x)), nil
	case uint64:
		return UintOf(x), nil
	case uintptr:
		return UintOf(uint64(x)), nil
	case *big.Int:
		if x == nil {
			return nil, &UnsupportedTypeError{TypeName: "*big.Int(nil)"}
		}
		i, err := BigIntOf(x)
		if err != nil {
			return nil, err
		}
		return i, nil
	case []byte:
		return Bytes(x), nil
	case string:
		return Text(x), nil
	default:
		return nil, &UnsupportedTypeError{TypeName: fmt.Sprintf("%T", v)}
	}
}
