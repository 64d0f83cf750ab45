package array

import (
	"math"
	"strconv"
	"strings"

	"github.com/paveg/tabeline/internal/datatype"
	"github.com/paveg/tabeline/internal/errors"
)

// Cast converts every element to dt. Floats cast to an integer type are
// truncated toward zero. A number the target cannot represent, including NaN
// and infinities, becomes null. Strings are parsed, and an unparseable
// element fails with CastError.
func (a *Array) Cast(dt datatype.DataType) (*Array, error) {
	if a.dtype == dt {
		return a, nil
	}
	if a.dtype == datatype.Nothing {
		return Nulls(dt, a.Len()), nil
	}

	b := NewBuilder(dt, a.Len())
	for i := range a.Len() {
		if a.IsNull(i) {
			b.AppendNull()
			continue
		}
		if err := castElement(b, a, i); err != nil {
			return nil, err
		}
	}
	return b.Finish(), nil
}

func castElement(b *Builder, a *Array, i int) error {
	target := b.dtype
	switch {
	case target == datatype.Nothing:
		b.AppendNull()
	case target == datatype.String:
		b.AppendString(a.FormatElement(i))
	case a.dtype == datatype.String:
		return parseInto(b, a.Str(i))
	case target == datatype.Boolean:
		if a.dtype.IsFloat() {
			b.AppendBool(a.Float(i) != 0)
		} else {
			b.AppendBool(a.Int(i) != 0)
		}
	case a.dtype.IsFloat():
		f := a.Float(i)
		if target.IsIntegral() && !floatFits(target, f) {
			b.AppendNull()
			return nil
		}
		b.AppendFloat(f)
	case target.IsFloat():
		if a.dtype.IsWhole() {
			b.AppendFloat(float64(a.Uint(i)))
		} else {
			b.AppendFloat(float64(a.Int(i)))
		}
	case a.dtype.IsWhole():
		u := a.Uint(i)
		if !fitsIntegral(target, int64(u), u, false) {
			b.AppendNull()
			return nil
		}
		b.AppendUint(u)
	default:
		v := a.Int(i)
		if !fitsIntegral(target, v, uint64(v), v < 0) {
			b.AppendNull()
			return nil
		}
		b.AppendInt(v)
	}
	return nil
}

// floatFits reports whether f, truncated toward zero, lies in the range of
// the integral type dt.
func floatFits(dt datatype.DataType, f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	t := math.Trunc(f)
	bits := float64(dt.Bits())
	if dt.IsWhole() {
		return t >= 0 && t < math.Exp2(bits)
	}
	return t >= -math.Exp2(bits-1) && t < math.Exp2(bits-1)
}

func parseInto(b *Builder, s string) error {
	target := b.dtype
	trimmed := strings.TrimSpace(s)
	fail := &errors.CastError{Value: s, Target: target}
	switch {
	case target == datatype.Boolean:
		v, err := strconv.ParseBool(trimmed)
		if err != nil {
			return fail
		}
		b.AppendBool(v)
	case target.IsInteger():
		v, err := strconv.ParseInt(trimmed, 10, target.Bits())
		if err != nil {
			return fail
		}
		b.AppendInt(v)
	case target.IsWhole():
		v, err := strconv.ParseUint(trimmed, 10, target.Bits())
		if err != nil {
			return fail
		}
		b.AppendUint(v)
	case target.IsFloat():
		v, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return fail
		}
		b.AppendFloat(v)
	default:
		return fail
	}
	return nil
}
