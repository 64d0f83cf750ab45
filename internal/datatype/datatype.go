// Package datatype defines the closed set of element kinds an Array can hold
// and the promotion lattice used when two kinds meet in one operation.
package datatype

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// DataType is the element kind of an Array.
type DataType int

const (
	Nothing DataType = iota
	Boolean
	Integer8
	Integer16
	Integer32
	Integer64
	Whole8
	Whole16
	Whole32
	Whole64
	Float32
	Float64
	String
)

var names = map[DataType]string{
	Nothing:   "Nothing",
	Boolean:   "Boolean",
	Integer8:  "Integer8",
	Integer16: "Integer16",
	Integer32: "Integer32",
	Integer64: "Integer64",
	Whole8:    "Whole8",
	Whole16:   "Whole16",
	Whole32:   "Whole32",
	Whole64:   "Whole64",
	Float32:   "Float32",
	Float64:   "Float64",
	String:    "String",
}

// All lists every DataType in declaration order.
func All() []DataType {
	return []DataType{
		Nothing, Boolean,
		Integer8, Integer16, Integer32, Integer64,
		Whole8, Whole16, Whole32, Whole64,
		Float32, Float64, String,
	}
}

func (t DataType) String() string {
	if name, ok := names[t]; ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", int(t))
}

// Parse returns the DataType with the given name.
func Parse(name string) (DataType, error) {
	for t, n := range names {
		if n == name {
			return t, nil
		}
	}
	return Nothing, fmt.Errorf("unknown data type %q", name)
}

// IsInteger reports whether t is a signed integer type.
func (t DataType) IsInteger() bool {
	return t >= Integer8 && t <= Integer64
}

// IsWhole reports whether t is an unsigned integer type.
func (t DataType) IsWhole() bool {
	return t >= Whole8 && t <= Whole64
}

// IsIntegral reports whether t is a signed or unsigned integer type.
func (t DataType) IsIntegral() bool {
	return t.IsInteger() || t.IsWhole()
}

// IsFloat reports whether t is a floating point type.
func (t DataType) IsFloat() bool {
	return t == Float32 || t == Float64
}

// IsNumeric reports whether t is an integer, whole, or float type.
func (t DataType) IsNumeric() bool {
	return t.IsIntegral() || t.IsFloat()
}

// Bits returns the storage width of numeric types and 0 otherwise.
func (t DataType) Bits() int {
	switch t {
	case Integer8, Whole8:
		return 8
	case Integer16, Whole16:
		return 16
	case Integer32, Whole32, Float32:
		return 32
	case Integer64, Whole64, Float64:
		return 64
	default:
		return 0
	}
}

func integerOfBits(bits int) DataType {
	switch bits {
	case 8:
		return Integer8
	case 16:
		return Integer16
	case 32:
		return Integer32
	default:
		return Integer64
	}
}

// Promote returns the smallest type able to represent every value of both a
// and b. The second result is false when no such type exists.
func Promote(a, b DataType) (DataType, bool) {
	switch {
	case a == b:
		return a, true
	case a == Nothing:
		return b, true
	case b == Nothing:
		return a, true
	case !a.IsNumeric() || !b.IsNumeric():
		return Nothing, false
	case a.IsFloat() || b.IsFloat():
		if a == Float64 || b == Float64 {
			return Float64, true
		}
		// Integers of any width promote into Float32.
		return Float32, true
	case a.IsInteger() && b.IsInteger(), a.IsWhole() && b.IsWhole():
		if a.Bits() >= b.Bits() {
			return a, true
		}
		return b, true
	}

	// One signed, one unsigned.
	signed, unsigned := a, b
	if a.IsWhole() {
		signed, unsigned = b, a
	}
	if signed.Bits() > unsigned.Bits() {
		return signed, true
	}
	if unsigned == Whole64 {
		return Float64, true
	}
	return integerOfBits(unsigned.Bits() * 2), true
}

// PromoteAll folds Promote over types, starting from Nothing.
func PromoteAll(types ...DataType) (DataType, bool) {
	result := Nothing
	for _, t := range types {
		var ok bool
		result, ok = Promote(result, t)
		if !ok {
			return Nothing, false
		}
	}
	return result, true
}

// ToArrow returns the Arrow type used to store elements of t.
func ToArrow(t DataType) arrow.DataType {
	switch t {
	case Boolean:
		return arrow.FixedWidthTypes.Boolean
	case Integer8:
		return arrow.PrimitiveTypes.Int8
	case Integer16:
		return arrow.PrimitiveTypes.Int16
	case Integer32:
		return arrow.PrimitiveTypes.Int32
	case Integer64:
		return arrow.PrimitiveTypes.Int64
	case Whole8:
		return arrow.PrimitiveTypes.Uint8
	case Whole16:
		return arrow.PrimitiveTypes.Uint16
	case Whole32:
		return arrow.PrimitiveTypes.Uint32
	case Whole64:
		return arrow.PrimitiveTypes.Uint64
	case Float32:
		return arrow.PrimitiveTypes.Float32
	case Float64:
		return arrow.PrimitiveTypes.Float64
	case String:
		return arrow.BinaryTypes.String
	default:
		return arrow.Null
	}
}

// FromArrow maps an Arrow type onto a DataType.
func FromArrow(t arrow.DataType) (DataType, error) {
	switch t.ID() {
	case arrow.NULL:
		return Nothing, nil
	case arrow.BOOL:
		return Boolean, nil
	case arrow.INT8:
		return Integer8, nil
	case arrow.INT16:
		return Integer16, nil
	case arrow.INT32:
		return Integer32, nil
	case arrow.INT64:
		return Integer64, nil
	case arrow.UINT8:
		return Whole8, nil
	case arrow.UINT16:
		return Whole16, nil
	case arrow.UINT32:
		return Whole32, nil
	case arrow.UINT64:
		return Whole64, nil
	case arrow.FLOAT32:
		return Float32, nil
	case arrow.FLOAT64:
		return Float64, nil
	case arrow.STRING, arrow.LARGE_STRING:
		return String, nil
	default:
		return Nothing, fmt.Errorf("unsupported arrow type %s", t)
	}
}
