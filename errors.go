package bjkst

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPrecision = errors.New("bjkst: invalid precision")
	ErrUnsupportedType  = errors.New("bjkst: unsupported type")
	ErrIntegerRange     = errors.New("bjkst: integer does not fit in 128 bits")
	ErrDecode           = errors.New("bjkst: malformed sketch encoding")
	ErrIncompatible     = errors.New("bjkst: sketches are not merge compatible")
)

// InvalidPrecisionError is returned when a precision falls outside [MinPrecision, MaxPrecision].
type InvalidPrecisionError struct {
	Precision uint8
}

func (e *InvalidPrecisionError) Error() string {
	return fmt.Sprintf("bjkst: invalid precision %d, must be in [%d,%d]",
		e.Precision, MinPrecision, MaxPrecision)
}

func (e *InvalidPrecisionError) Is(target error) bool { return target == ErrInvalidPrecision }

// UnsupportedTypeError is returned when a value is not an integer, a byte slice or a string.
type UnsupportedTypeError struct {
	TypeName string
}

func (e *UnsupportedTypeError) Error() string {
	return "bjkst: unsupported type: " + e.TypeName
}

func (e *UnsupportedTypeError) Is(target error) bool { return target == ErrUnsupportedType }

// DecodeError reports malformed or inconsistent serialized bytes.
type DecodeError struct {
	Msg string
	Err error // underlying cause, if any
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bjkst: failed to decode sketch: %s: %v", e.Msg, e.Err)
	}
	return "bjkst: failed to decode sketch: " + e.Msg
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func (e *DecodeError) Unwrap() error { return e.Err }

func decodeErrorf(format string, args ...any) *DecodeError {
	return &DecodeError{Msg: fmt.Sprintf(format, args...)}
}

// IncompatibleError is returned when merging sketches with different precision or hash keys.
type IncompatibleError struct {
	Reason string
}

func (e *IncompatibleError) Error() string {
	return "bjkst: sketches are not merge compatible: " + e.Reason
}

func (e *IncompatibleError) Is(target error) bool { return target == ErrIncompatible }
