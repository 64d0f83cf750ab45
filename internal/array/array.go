// Package array provides Array, an immutable column of nullable values that
// share one DataType. Values are stored in Apache Arrow arrays; a Nothing
// array is an Arrow null array.
package array

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	arrowarray "github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/paveg/tabeline/internal/datatype"
)

var mem memory.Allocator = memory.NewGoAllocator()

// Array is an immutable, homogeneously typed, nullable column.
type Array struct {
	dtype datatype.DataType
	data  arrow.Array
}

// FromArrow wraps an Arrow array. The array is retained.
func FromArrow(data arrow.Array) (*Array, error) {
	dt, err := datatype.FromArrow(data.DataType())
	if err != nil {
		return nil, err
	}
	data.Retain()
	return &Array{dtype: dt, data: data}, nil
}

// Nulls returns an array of n nulls of type dt.
func Nulls(dt datatype.DataType, n int) *Array {
	b := NewBuilder(dt, n)
	for range n {
		b.AppendNull()
	}
	return b.Finish()
}

// Full returns an array of n copies of value, which must be a valid element
// of dt or nil.
func Full(dt datatype.DataType, value any, n int) (*Array, error) {
	if value == nil {
		return Nulls(dt, n), nil
	}
	converted, err := convertElement(dt, value, 0)
	if err != nil {
		return nil, err
	}
	b := NewBuilder(dt, n)
	for range n {
		b.Append(converted)
	}
	return b.Finish(), nil
}

// DataType returns the element type.
func (a *Array) DataType() datatype.DataType {
	return a.dtype
}

// Len returns the number of elements.
func (a *Array) Len() int {
	return a.data.Len()
}

// IsNull reports whether element i is null.
func (a *Array) IsNull(i int) bool {
	return a.dtype == datatype.Nothing || a.data.IsNull(i)
}

// NullCount returns the number of null elements.
func (a *Array) NullCount() int {
	if a.dtype == datatype.Nothing {
		return a.data.Len()
	}
	return a.data.NullN()
}

// Arrow returns the underlying Arrow array without retaining it.
func (a *Array) Arrow() arrow.Array {
	return a.data
}

// Retain increases the reference count of the underlying Arrow array.
func (a *Array) Retain() {
	a.data.Retain()
}

// Release decreases the reference count of the underlying Arrow array.
func (a *Array) Release() {
	a.data.Release()
}

// Item returns element i as a Go value, or nil when it is null. The Go type
// matches the DataType: bool, int8..int64, uint8..uint64, float32, float64,
// or string.
func (a *Array) Item(i int) any {
	if a.IsNull(i) {
		return nil
	}
	switch d := a.data.(type) {
	case *arrowarray.Boolean:
		return d.Value(i)
	case *arrowarray.Int8:
		return d.Value(i)
	case *arrowarray.Int16:
		return d.Value(i)
	case *arrowarray.Int32:
		return d.Value(i)
	case *arrowarray.Int64:
		return d.Value(i)
	case *arrowarray.Uint8:
		return d.Value(i)
	case *arrowarray.Uint16:
		return d.Value(i)
	case *arrowarray.Uint32:
		return d.Value(i)
	case *arrowarray.Uint64:
		return d.Value(i)
	case *arrowarray.Float32:
		return d.Value(i)
	case *arrowarray.Float64:
		return d.Value(i)
	case *arrowarray.String:
		return d.Value(i)
	default:
		return nil
	}
}

// Values returns every element as returned by Item.
func (a *Array) Values() []any {
	values := make([]any, a.Len())
	for i := range values {
		values[i] = a.Item(i)
	}
	return values
}

// Bool returns element i of a Boolean array.
func (a *Array) Bool(i int) bool {
	if d, ok := a.data.(*arrowarray.Boolean); ok {
		return d.Value(i)
	}
	return false
}

// Str returns element i of a String array.
func (a *Array) Str(i int) string {
	if d, ok := a.data.(*arrowarray.String); ok {
		return d.Value(i)
	}
	return ""
}

// Int returns element i of an integer, whole, or boolean array as int64.
func (a *Array) Int(i int) int64 {
	switch d := a.data.(type) {
	case *arrowarray.Boolean:
		if d.Value(i) {
			return 1
		}
		return 0
	case *arrowarray.Int8:
		return int64(d.Value(i))
	case *arrowarray.Int16:
		return int64(d.Value(i))
	case *arrowarray.Int32:
		return int64(d.Value(i))
	case *arrowarray.Int64:
		return d.Value(i)
	case *arrowarray.Uint8:
		return int64(d.Value(i))
	case *arrowarray.Uint16:
		return int64(d.Value(i))
	case *arrowarray.Uint32:
		return int64(d.Value(i))
	case *arrowarray.Uint64:
		return int64(d.Value(i))
	case *arrowarray.Float32:
		return int64(d.Value(i))
	case *arrowarray.Float64:
		return int64(d.Value(i))
	default:
		return 0
	}
}

// Uint returns element i of a whole array as uint64.
func (a *Array) Uint(i int) uint64 {
	switch d := a.data.(type) {
	case *arrowarray.Uint8:
		return uint64(d.Value(i))
	case *arrowarray.Uint16:
		return uint64(d.Value(i))
	case *arrowarray.Uint32:
		return uint64(d.Value(i))
	case *arrowarray.Uint64:
		return d.Value(i)
	default:
		return uint64(a.Int(i))
	}
}

// Float returns element i of any numeric or boolean array as float64.
func (a *Array) Float(i int) float64 {
	switch d := a.data.(type) {
	case *arrowarray.Float32:
		return float64(d.Value(i))
	case *arrowarray.Float64:
		return d.Value(i)
	case *arrowarray.Uint64:
		return float64(d.Value(i))
	default:
		return float64(a.Int(i))
	}
}

// Slice returns elements [i, j).
func (a *Array) Slice(i, j int) *Array {
	return &Array{dtype: a.dtype, data: arrowarray.NewSlice(a.data, int64(i), int64(j))}
}

// Take returns the elements at indexes in order. A negative index yields null.
func (a *Array) Take(indexes []int) *Array {
	b := NewBuilder(a.dtype, len(indexes))
	for _, index := range indexes {
		if index < 0 {
			b.AppendNull()
			continue
		}
		b.AppendFrom(a, index)
	}
	return b.Finish()
}

// Concat joins arrays end to end, promoting them to a common type.
func Concat(arrays ...*Array) (*Array, error) {
	types := make([]datatype.DataType, len(arrays))
	total := 0
	for i, a := range arrays {
		types[i] = a.dtype
		total += a.Len()
	}
	dt, ok := datatype.PromoteAll(types...)
	if !ok {
		return nil, fmt.Errorf("cannot concatenate arrays of types %v", types)
	}
	b := NewBuilder(dt, total)
	for _, a := range arrays {
		cast, err := a.Cast(dt)
		if err != nil {
			return nil, err
		}
		for i := range cast.Len() {
			b.AppendFrom(cast, i)
		}
	}
	return b.Finish(), nil
}

// String renders the array as Type[v0, v1, ...].
func (a *Array) String() string {
	var sb strings.Builder
	sb.WriteString(a.dtype.String())
	sb.WriteByte('[')
	for i := range a.Len() {
		if i > 0 {
			sb.WriteString(", ")
		}
		if a.IsNull(i) {
			sb.WriteString("null")
			continue
		}
		if a.dtype == datatype.String {
			sb.WriteString(fmt.Sprintf("%q", a.Str(i)))
			continue
		}
		sb.WriteString(a.FormatElement(i))
	}
	sb.WriteByte(']')
	return sb.String()
}
