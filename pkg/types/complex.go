package types

import (
	"io"
	"math"
	"strconv"
)

// Complex64Field stores a single single-precision complex cell value,
// as used for visibility data in measurement sets.
type Complex64Field struct {
	Value complex64
}

// NewComplex64Field creates a new Complex64Field with the specified value.
func NewComplex64Field(value complex64) *Complex64Field {
	return &Complex64Field{Value: value}
}

// Serialize writes the value to w as two big-endian IEEE 754 float32
// words, real part first.
func (c *Complex64Field) Serialize(w io.Writer) error {
	if err := serializeUint32(w, math.Float32bits(real(c.Value))); err != nil {
		return err
	}
	return serializeUint32(w, math.Float32bits(imag(c.Value)))
}

// Type returns Complex64Type.
func (c *Complex64Field) Type() Type {
	return Complex64Type
}

// String returns the value formatted as "(re+imi)".
func (c *Complex64Field) String() string {
	return strconv.FormatComplex(complex128(c.Value), 'f', -1, 64)
}

// Equals reports whether other is a Complex64Field holding the same value.
func (c *Complex64Field) Equals(other Field) bool {
	otherComplex, ok := other.(*Complex64Field)
	if !ok {
		return false
	}
	return c.Value == otherComplex.Value
}

// Sum returns the real plus the imaginary part, in that order of
// accumulation.
func (c *Complex64Field) Sum() float64 {
	return float64(real(c.Value)) + float64(imag(c.Value))
}

// Length returns the serialized size in bytes, always 8.
func (c *Complex64Field) Length() uint32 {
	return 8
}
