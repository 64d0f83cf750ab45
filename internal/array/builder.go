package array

import (
	arrowarray "github.com/apache/arrow-go/v18/arrow/array"
	"golang.org/x/exp/constraints"

	"github.com/paveg/tabeline/internal/datatype"
)

// Number is any Go integer or float type.
type Number interface {
	constraints.Integer | constraints.Float
}

// Builder accumulates elements of one DataType into a new Array.
type Builder struct {
	dtype datatype.DataType
	inner arrowarray.Builder
	nulls int // element count for Nothing builders
}

// NewBuilder returns a builder for dt with room for capacity elements.
func NewBuilder(dt datatype.DataType, capacity int) *Builder {
	b := &Builder{dtype: dt}
	if dt != datatype.Nothing {
		b.inner = arrowarray.NewBuilder(mem, datatype.ToArrow(dt))
		b.inner.Reserve(capacity)
	}
	return b
}

// DataType returns the type of the array being built.
func (b *Builder) DataType() datatype.DataType {
	return b.dtype
}

// Len returns the number of elements appended so far.
func (b *Builder) Len() int {
	if b.inner == nil {
		return b.nulls
	}
	return b.inner.Len()
}

// AppendNull appends a null element.
func (b *Builder) AppendNull() {
	if b.inner == nil {
		b.nulls++
		return
	}
	b.inner.AppendNull()
}

// Append appends v, which must have the Go type Item returns for the
// builder's type. A nil v appends null.
func (b *Builder) Append(v any) {
	switch x := v.(type) {
	case nil:
		b.AppendNull()
	case bool:
		b.AppendBool(x)
	case string:
		b.AppendString(x)
	case int8:
		AppendNumber(b, x)
	case int16:
		AppendNumber(b, x)
	case int32:
		AppendNumber(b, x)
	case int64:
		AppendNumber(b, x)
	case uint8:
		AppendNumber(b, x)
	case uint16:
		AppendNumber(b, x)
	case uint32:
		AppendNumber(b, x)
	case uint64:
		AppendNumber(b, x)
	case float32:
		AppendNumber(b, x)
	case float64:
		AppendNumber(b, x)
	default:
		b.AppendNull()
	}
}

// AppendBool appends a boolean, converting it for numeric builders.
func (b *Builder) AppendBool(v bool) {
	if bb, ok := b.inner.(*arrowarray.BooleanBuilder); ok {
		bb.Append(v)
		return
	}
	if v {
		AppendNumber(b, 1)
	} else {
		AppendNumber(b, 0)
	}
}

// AppendString appends a string. Non-string builders receive null.
func (b *Builder) AppendString(v string) {
	if sb, ok := b.inner.(*arrowarray.StringBuilder); ok {
		sb.Append(v)
		return
	}
	b.AppendNull()
}

// AppendInt appends an int64, converting it to the builder's type.
func (b *Builder) AppendInt(v int64) {
	AppendNumber(b, v)
}

// AppendUint appends a uint64, converting it to the builder's type.
func (b *Builder) AppendUint(v uint64) {
	AppendNumber(b, v)
}

// AppendFloat appends a float64, converting it to the builder's type.
func (b *Builder) AppendFloat(v float64) {
	AppendNumber(b, v)
}

// AppendNumber appends v to a numeric or boolean builder with Go's
// conversion rules, so integers wrap to the target width.
func AppendNumber[T Number](b *Builder, v T) {
	switch bb := b.inner.(type) {
	case *arrowarray.Int8Builder:
		bb.Append(int8(v))
	case *arrowarray.Int16Builder:
		bb.Append(int16(v))
	case *arrowarray.Int32Builder:
		bb.Append(int32(v))
	case *arrowarray.Int64Builder:
		bb.Append(int64(v))
	case *arrowarray.Uint8Builder:
		bb.Append(uint8(v))
	case *arrowarray.Uint16Builder:
		bb.Append(uint16(v))
	case *arrowarray.Uint32Builder:
		bb.Append(uint32(v))
	case *arrowarray.Uint64Builder:
		bb.Append(uint64(v))
	case *arrowarray.Float32Builder:
		bb.Append(float32(v))
	case *arrowarray.Float64Builder:
		bb.Append(float64(v))
	case *arrowarray.BooleanBuilder:
		bb.Append(v != 0)
	default:
		b.AppendNull()
	}
}

// AppendFrom appends element i of a, which should share the builder's type.
func (b *Builder) AppendFrom(a *Array, i int) {
	if a.IsNull(i) {
		b.AppendNull()
		return
	}
	if a.dtype != b.dtype {
		b.Append(a.Item(i))
		return
	}
	switch bb := b.inner.(type) {
	case *arrowarray.BooleanBuilder:
		bb.Append(a.Bool(i))
	case *arrowarray.StringBuilder:
		bb.Append(a.Str(i))
	case *arrowarray.Float32Builder, *arrowarray.Float64Builder:
		AppendNumber(b, a.Float(i))
	case *arrowarray.Uint64Builder:
		bb.Append(a.Uint(i))
	default:
		AppendNumber(b, a.Int(i))
	}
}

// Finish returns the built array and resets the builder.
func (b *Builder) Finish() *Array {
	if b.inner == nil {
		n := b.nulls
		b.nulls = 0
		return &Array{dtype: datatype.Nothing, data: arrowarray.NewNull(n)}
	}
	data := b.inner.NewArray()
	return &Array{dtype: b.dtype, data: data}
}
