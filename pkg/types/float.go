package types

import (
	"io"
	"math"
	"strconv"
)

const epsilon = 1e-9

// Float64Field stores a single 64-bit floating point cell value.
type Float64Field struct {
	Value float64
}

// NewFloat64Field creates a new Float64Field with the specified value.
func NewFloat64Field(value float64) *Float64Field {
	return &Float64Field{Value: value}
}

// Serialize writes the float to w as its 8 big-endian IEEE 754 bytes.
func (f *Float64Field) Serialize(w io.Writer) error {
	return serializeUint64(w, math.Float64bits(f.Value))
}

// Type returns Float64Type.
func (f *Float64Field) Type() Type {
	return Float64Type
}

// String returns string representation of the float64
func (f *Float64Field) String() string {
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}

// Equals reports whether other is a Float64Field within epsilon of this
// value.
func (f *Float64Field) Equals(other Field) bool {
	otherFloat, ok := other.(*Float64Field)
	if !ok {
		return false
	}
	return math.Abs(f.Value-otherFloat.Value) < epsilon
}

// Sum returns the value.
func (f *Float64Field) Sum() float64 {
	return f.Value
}

// Length returns the serialized size in bytes, always 8.
func (f *Float64Field) Length() uint32 {
	return 8
}
