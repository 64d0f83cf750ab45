package array

import (
	"math"
	"strconv"
	"strings"

	"github.com/paveg/tabeline/internal/datatype"
)

// FormatFloat renders f the way the expression language prints floats:
// always with a decimal point or an exponent, and inf, -inf, or nan for the
// special values.
func FormatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, bitSize)
	}
	s := strconv.FormatFloat(f, 'f', -1, bitSize)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// FormatElement renders element i as text. Null renders as an empty string.
func (a *Array) FormatElement(i int) string {
	if a.IsNull(i) {
		return ""
	}
	switch {
	case a.dtype == datatype.Boolean:
		return strconv.FormatBool(a.Bool(i))
	case a.dtype == datatype.String:
		return a.Str(i)
	case a.dtype == datatype.Float32:
		return FormatFloat(a.Float(i), 32)
	case a.dtype == datatype.Float64:
		return FormatFloat(a.Float(i), 64)
	case a.dtype.IsWhole():
		return strconv.FormatUint(a.Uint(i), 10)
	default:
		return strconv.FormatInt(a.Int(i), 10)
	}
}

// FormatValue renders a Go scalar as FormatElement would.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	case float32:
		return FormatFloat(float64(x), 32)
	case float64:
		return FormatFloat(x, 64)
	case uint, uint8, uint16, uint32, uint64:
		_, u, _ := integerParts(x)
		return strconv.FormatUint(u, 10)
	default:
		s, _, _ := integerParts(x)
		return strconv.FormatInt(s, 10)
	}
}
