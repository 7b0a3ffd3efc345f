package types

import "io"

// BoolField stores a single boolean cell value.
type BoolField struct {
	Value bool
}

// NewBoolField creates a new BoolField with the specified value.
func NewBoolField(value bool) *BoolField {
	return &BoolField{Value: value}
}

// Serialize writes the boolean to w as a single byte, 1 for true and 0
// for false.
func (b *BoolField) Serialize(w io.Writer) error {
	var byteValue byte
	if b.Value {
		byteValue = 1
	}

	_, err := w.Write([]byte{byteValue})
	return err
}

// Type returns BoolType.
func (b *BoolField) Type() Type {
	return BoolType
}

// String returns "true" or "false".
func (b *BoolField) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

// Equals reports whether other is a BoolField holding the same value.
func (b *BoolField) Equals(other Field) bool {
	otherBool, ok := other.(*BoolField)
	if !ok {
		return false
	}
	return b.Value == otherBool.Value
}

// Sum returns 1 for true and 0 for false.
func (b *BoolField) Sum() float64 {
	if b.Value {
		return 1
	}
	return 0
}

// Length returns the serialized size in bytes, always 1.
func (b *BoolField) Length() uint32 {
	return 1
}
