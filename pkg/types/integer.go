package types

import (
	"io"
	"strconv"
)

// Int32Field stores a single 32-bit signed integer cell value.
type Int32Field struct {
	Value int32
}

// NewInt32Field creates a new Int32Field with the specified value.
func NewInt32Field(value int32) *Int32Field {
	return &Int32Field{Value: value}
}

// Serialize writes the integer to w as 4 big-endian bytes.
func (i *Int32Field) Serialize(w io.Writer) error {
	return serializeUint32(w, uint32(i.Value))
}

// Type returns Int32Type.
func (i *Int32Field) Type() Type {
	return Int32Type
}

// String returns the decimal representation of the value.
func (i *Int32Field) String() string {
	return strconv.FormatInt(int64(i.Value), 10)
}

// Equals reports whether other is an Int32Field holding the same value.
func (i *Int32Field) Equals(other Field) bool {
	otherInt, ok := other.(*Int32Field)
	if !ok {
		return false
	}
	return i.Value == otherInt.Value
}

// Sum returns the value as a float64.
func (i *Int32Field) Sum() float64 {
	return float64(i.Value)
}

// Length returns the serialized size in bytes, always 4.
func (i *Int32Field) Length() uint32 {
	return 4
}
