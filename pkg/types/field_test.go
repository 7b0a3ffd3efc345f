package types

import (
	"bytes"
	"math"
	"testing"
)

func TestFieldRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		field Field
	}{
		{"bool true", NewBoolField(true)},
		{"bool false", NewBoolField(false)},
		{"int32 positive", NewInt32Field(42)},
		{"int32 negative", NewInt32Field(-1000)},
		{"int32 zero", NewInt32Field(0)},
		{"int32 max", NewInt32Field(math.MaxInt32)},
		{"int32 min", NewInt32Field(math.MinInt32)},
		{"float64 positive", NewFloat64Field(123.456)},
		{"float64 negative", NewFloat64Field(-0.001)},
		{"float64 zero", NewFloat64Field(0)},
		{"float64 pi", NewFloat64Field(math.Pi)},
		{"complex64", NewComplex64Field(complex(1.5, -2.5))},
		{"complex64 zero", NewComplex64Field(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.field.Serialize(&buf); err != nil {
				t.Fatalf("Serialize failed: %v", err)
			}

			if uint32(buf.Len()) != tt.field.Length() {
				t.Errorf("Expected %d serialized bytes, got %d", tt.field.Length(), buf.Len())
			}

			decoded, err := ReadField(&buf, tt.field.Type())
			if err != nil {
				t.Fatalf("ReadField failed: %v", err)
			}

			if !tt.field.Equals(decoded) {
				t.Errorf("Round trip mismatch: wrote %v, read %v", tt.field, decoded)
			}
		})
	}
}

func TestFieldSum(t *testing.T) {
	tests := []struct {
		name     string
		field    Field
		expected float64
	}{
		{"bool true", NewBoolField(true), 1},
		{"bool false", NewBoolField(false), 0},
		{"int32", NewInt32Field(-7), -7},
		{"float64", NewFloat64Field(2.5), 2.5},
		{"complex64 sums real and imaginary", NewComplex64Field(complex(1.5, 2.25)), 3.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.field.Sum(); got != tt.expected {
				t.Errorf("Expected sum %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestFieldEqualsCrossType(t *testing.T) {
	fields := []Field{
		NewBoolField(true),
		NewInt32Field(1),
		NewFloat64Field(1),
		NewComplex64Field(1),
	}

	for i, a := range fields {
		for j, b := range fields {
			if i == j {
				continue
			}
			if a.Equals(b) {
				t.Errorf("Expected %T not to equal %T", a, b)
			}
		}
	}
}

func TestZeroField(t *testing.T) {
	for _, typ := range []Type{BoolType, Int32Type, Float64Type, Complex64Type} {
		zero := ZeroField(typ)
		if zero == nil {
			t.Fatalf("Expected zero field for %v", typ)
		}
		if zero.Type() != typ {
			t.Errorf("Expected type %v, got %v", typ, zero.Type())
		}
		if zero.Sum() != 0 {
			t.Errorf("Expected zero sum for %v, got %v", typ, zero.Sum())
		}
	}

	if ZeroField(Type(99)) != nil {
		t.Error("Expected nil zero field for unknown type")
	}
}

func TestFloat64FieldEqualsEpsilon(t *testing.T) {
	tests := []struct {
		name     string
		a, b     float64
		expected bool
	}{
		{"identical", 42.5, 42.5, true},
		{"within epsilon", 1.0, 1.0 + 1e-10, true},
		{"outside epsilon", 1.0, 1.0 + 1e-8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewFloat64Field(tt.a).Equals(NewFloat64Field(tt.b))
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}
