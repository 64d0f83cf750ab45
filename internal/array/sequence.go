package array

import (
	"math"

	"github.com/paveg/tabeline/internal/datatype"
	"github.com/paveg/tabeline/internal/errors"
)

type elementKind int

const (
	kindNull elementKind = iota
	kindBool
	kindInt
	kindFloat
	kindString
	kindOther
)

func classify(v any) elementKind {
	switch v.(type) {
	case nil:
		return kindNull
	case bool:
		return kindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return kindInt
	case float32, float64:
		return kindFloat
	case string:
		return kindString
	default:
		return kindOther
	}
}

// FromSequence builds an array from Go scalars, inferring its type. The
// first non-null element decides between Boolean, Integer64, Float64, and
// String. Integers followed by a float turn the whole array into Float64.
// An empty or all-null sequence is Nothing.
func FromSequence(values []any) (*Array, error) {
	dt := datatype.Nothing
	for i, v := range values {
		kind := classify(v)
		switch {
		case kind == kindNull:
			continue
		case dt == datatype.Nothing:
			switch kind {
			case kindBool:
				dt = datatype.Boolean
			case kindInt:
				dt = datatype.Integer64
			case kindFloat:
				dt = datatype.Float64
			case kindString:
				dt = datatype.String
			default:
				return nil, &errors.IncompatibleElementTypeError{
					ExpectedTypes: []datatype.DataType{datatype.Boolean, datatype.Integer64, datatype.Float64, datatype.String},
					Value:         v,
					Index:         i,
				}
			}
		case dt == datatype.Integer64 && kind == kindFloat:
			dt = datatype.Float64
		case dt == datatype.Float64 && kind == kindInt:
		case kindOf(dt) != kind:
			expected := []datatype.DataType{dt}
			if dt == datatype.Integer64 {
				expected = append(expected, datatype.Float64)
			}
			return nil, &errors.IncompatibleElementTypeError{ExpectedTypes: expected, Value: v, Index: i}
		}
	}
	return FromTypedSequence(dt, values)
}

func kindOf(dt datatype.DataType) elementKind {
	switch {
	case dt == datatype.Boolean:
		return kindBool
	case dt.IsIntegral():
		return kindInt
	case dt.IsFloat():
		return kindFloat
	case dt == datatype.String:
		return kindString
	default:
		return kindNull
	}
}

// FromTypedSequence builds an array of type dt. Every element must be nil or
// fit dt; integers are accepted for float types.
func FromTypedSequence(dt datatype.DataType, values []any) (*Array, error) {
	b := NewBuilder(dt, len(values))
	for i, v := range values {
		if v == nil {
			b.AppendNull()
			continue
		}
		converted, err := convertElement(dt, v, i)
		if err != nil {
			return nil, err
		}
		b.Append(converted)
	}
	return b.Finish(), nil
}

// convertElement turns a Go scalar into the native Go type of dt.
func convertElement(dt datatype.DataType, v any, index int) (any, error) {
	fail := func() (any, error) {
		return nil, &errors.IncompatibleElementTypeError{ExpectedTypes: []datatype.DataType{dt}, Value: v, Index: index}
	}
	kind := classify(v)
	switch {
	case dt == datatype.Boolean && kind == kindBool:
		return v, nil
	case dt == datatype.String && kind == kindString:
		return v, nil
	case dt.IsIntegral() && kind == kindInt:
		signed, unsigned, negative := integerParts(v)
		if !fitsIntegral(dt, signed, unsigned, negative) {
			return fail()
		}
		return integralOf(dt, signed, unsigned), nil
	case dt.IsFloat() && (kind == kindInt || kind == kindFloat):
		f := floatOf(v)
		if dt == datatype.Float32 {
			return float32(f), nil
		}
		return f, nil
	}
	return fail()
}

// integerParts returns v as int64 and uint64 and whether it is negative.
func integerParts(v any) (int64, uint64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), uint64(x), x < 0
	case int8:
		return int64(x), uint64(x), x < 0
	case int16:
		return int64(x), uint64(x), x < 0
	case int32:
		return int64(x), uint64(x), x < 0
	case int64:
		return x, uint64(x), x < 0
	case uint:
		return int64(x), uint64(x), false
	case uint8:
		return int64(x), uint64(x), false
	case uint16:
		return int64(x), uint64(x), false
	case uint32:
		return int64(x), uint64(x), false
	case uint64:
		return int64(x), x, false
	}
	return 0, 0, false
}

func fitsIntegral(dt datatype.DataType, signed int64, unsigned uint64, negative bool) bool {
	switch dt {
	case datatype.Integer8:
		return signed >= math.MinInt8 && signed <= math.MaxInt8 && (negative || unsigned <= math.MaxInt8)
	case datatype.Integer16:
		return signed >= math.MinInt16 && signed <= math.MaxInt16 && (negative || unsigned <= math.MaxInt16)
	case datatype.Integer32:
		return signed >= math.MinInt32 && signed <= math.MaxInt32 && (negative || unsigned <= math.MaxInt32)
	case datatype.Integer64:
		return negative || unsigned <= math.MaxInt64
	case datatype.Whole8:
		return !negative && unsigned <= math.MaxUint8
	case datatype.Whole16:
		return !negative && unsigned <= math.MaxUint16
	case datatype.Whole32:
		return !negative && unsigned <= math.MaxUint32
	case datatype.Whole64:
		return !negative
	}
	return false
}

func integralOf(dt datatype.DataType, signed int64, unsigned uint64) any {
	switch dt {
	case datatype.Integer8:
		return int8(signed)
	case datatype.Integer16:
		return int16(signed)
	case datatype.Integer32:
		return int32(signed)
	case datatype.Integer64:
		return signed
	case datatype.Whole8:
		return uint8(unsigned)
	case datatype.Whole16:
		return uint16(unsigned)
	case datatype.Whole32:
		return uint32(unsigned)
	default:
		return unsigned
	}
}

func floatOf(v any) float64 {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	case uint, uint8, uint16, uint32, uint64:
		_, u, _ := integerParts(x)
		return float64(u)
	default:
		s, _, _ := integerParts(x)
		return float64(s)
	}
}
