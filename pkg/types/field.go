package types

import "io"

// Field is a single typed cell value. Concrete implementations exist for
// every supported element type.
type Field interface {
	// Serialize writes the value to w in its fixed-width binary form.
	Serialize(w io.Writer) error

	// Type returns the element type of this value.
	Type() Type

	// String returns a human-readable representation.
	String() string

	// Equals reports whether other holds the same type and value.
	Equals(other Field) bool

	// Sum returns this value's contribution to a checksum accumulator:
	// booleans count as 0 or 1, complex values contribute real plus
	// imaginary part.
	Sum() float64

	// Length returns the serialized size of this value in bytes.
	Length() uint32
}
