package array

import (
	"cmp"
	"encoding/binary"
	"math"

	"github.com/paveg/tabeline/internal/datatype"
)

// Equal reports whether a and b have the same type, length, and elements.
// Null equals null and NaN equals NaN, but null never equals NaN.
func (a *Array) Equal(b *Array) bool {
	if a.dtype != b.dtype || a.Len() != b.Len() {
		return false
	}
	for i := range a.Len() {
		if !ElementsEqual(a, i, b, i) {
			return false
		}
	}
	return true
}

// ElementsEqual compares element i of a with element j of b under the
// null-aware rule of Equal. Numbers of different types compare by value.
func ElementsEqual(a *Array, i int, b *Array, j int) bool {
	aNull, bNull := a.IsNull(i), b.IsNull(j)
	if aNull || bNull {
		return aNull && bNull
	}
	return compareValues(a, i, b, j) == 0
}

// Compare orders element i of a against element j of b. Nulls sort before
// every value and NaN sorts after every number.
func Compare(a *Array, i int, b *Array, j int) int {
	aNull, bNull := a.IsNull(i), b.IsNull(j)
	switch {
	case aNull && bNull:
		return 0
	case aNull:
		return -1
	case bNull:
		return 1
	}
	return compareValues(a, i, b, j)
}

// compareValues compares two non-null elements.
func compareValues(a *Array, i int, b *Array, j int) int {
	switch {
	case a.dtype == datatype.String || b.dtype == datatype.String:
		return cmp.Compare(a.Str(i), b.Str(j))
	case a.dtype == datatype.Boolean && b.dtype == datatype.Boolean:
		return cmp.Compare(a.Int(i), b.Int(j))
	case a.dtype.IsFloat() || b.dtype.IsFloat():
		// cmp.Compare places NaN first; the engine wants it last.
		x, y := a.Float(i), b.Float(j)
		xNaN, yNaN := math.IsNaN(x), math.IsNaN(y)
		switch {
		case xNaN && yNaN:
			return 0
		case xNaN:
			return 1
		case yNaN:
			return -1
		}
		return cmp.Compare(x, y)
	case a.dtype == datatype.Whole64 || b.dtype == datatype.Whole64:
		return compareMixed(a, i, b, j)
	default:
		return cmp.Compare(a.Int(i), b.Int(j))
	}
}

func compareMixed(a *Array, i int, b *Array, j int) int {
	aNeg := a.dtype.IsInteger() && a.Int(i) < 0
	bNeg := b.dtype.IsInteger() && b.Int(j) < 0
	switch {
	case aNeg && bNeg:
		return cmp.Compare(a.Int(i), b.Int(j))
	case aNeg:
		return -1
	case bNeg:
		return 1
	}
	return cmp.Compare(a.Uint(i), b.Uint(j))
}

// AppendKey appends a binary encoding of element i to buf. Two elements of
// the same type encode identically exactly when ElementsEqual holds.
func (a *Array) AppendKey(buf []byte, i int) []byte {
	if a.IsNull(i) {
		return append(buf, 0)
	}
	switch {
	case a.dtype == datatype.Boolean:
		if a.Bool(i) {
			return append(buf, 1, 1)
		}
		return append(buf, 1, 0)
	case a.dtype == datatype.String:
		s := a.Str(i)
		buf = append(buf, 2)
		buf = binary.LittleEndian.AppendUint64(buf, uint64(len(s)))
		return append(buf, s...)
	case a.dtype.IsFloat():
		f := a.Float(i)
		switch {
		case math.IsNaN(f):
			f = math.NaN()
		case f == 0:
			f = 0
		}
		buf = append(buf, 3)
		return binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
	case a.dtype.IsWhole():
		buf = append(buf, 4)
		return binary.LittleEndian.AppendUint64(buf, a.Uint(i))
	default:
		buf = append(buf, 5)
		return binary.LittleEndian.AppendUint64(buf, uint64(a.Int(i)))
	}
}
