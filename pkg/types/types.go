package types

// Type identifies the element type of a column. It is fixed for the
// column's lifetime.
type Type int

const (
	BoolType Type = iota
	Int32Type
	Float64Type
	Complex64Type
)

// String returns a string representation of the type
func (t Type) String() string {
	switch t {
	case BoolType:
		return "BOOL"
	case Int32Type:
		return "INT32"
	case Float64Type:
		return "FLOAT64"
	case Complex64Type:
		return "COMPLEX64"
	default:
		return "UNKNOWN"
	}
}

// Size returns the serialized size in bytes of one element of this type.
func (t Type) Size() uint32 {
	switch t {
	case BoolType:
		return 1
	case Int32Type:
		return 4
	case Float64Type:
		return 8
	case Complex64Type:
		return 8
	default:
		return 0
	}
}

// IsValid reports whether t is one of the supported element types.
func IsValid(t Type) bool {
	switch t {
	case BoolType, Int32Type, Float64Type, Complex64Type:
		return true
	default:
		return false
	}
}
