package types

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// ReadField deserializes one value of type t from r.
//
// Returns:
//   - Field: the deserialized value
//   - error: if t is unknown or the read fails
func ReadField(r io.Reader, t Type) (Field, error) {
	switch t {
	case BoolType:
		buf, err := readBytes(r, 1)
		if err != nil {
			return nil, err
		}
		return NewBoolField(buf[0] != 0), nil

	case Int32Type:
		buf, err := readBytes(r, 4)
		if err != nil {
			return nil, err
		}
		return NewInt32Field(int32(binary.BigEndian.Uint32(buf))), nil

	case Float64Type:
		buf, err := readBytes(r, 8)
		if err != nil {
			return nil, err
		}
		return NewFloat64Field(math.Float64frombits(binary.BigEndian.Uint64(buf))), nil

	case Complex64Type:
		buf, err := readBytes(r, 8)
		if err != nil {
			return nil, err
		}
		re := math.Float32frombits(binary.BigEndian.Uint32(buf[:4]))
		im := math.Float32frombits(binary.BigEndian.Uint32(buf[4:]))
		return NewComplex64Field(complex(re, im)), nil

	default:
		return nil, fmt.Errorf("unknown element type: %v", t)
	}
}

// ZeroField returns the zero value of type t. Unwritten cells under lazy
// zero-fill allocation read back as this value.
func ZeroField(t Type) Field {
	switch t {
	case BoolType:
		return NewBoolField(false)
	case Int32Type:
		return NewInt32Field(0)
	case Float64Type:
		return NewFloat64Field(0)
	case Complex64Type:
		return NewComplex64Field(0)
	default:
		return nil
	}
}
