package compute

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/goliatone/go-formtree/pkg/tree"
)

var (
	// undefinedVal stands for both null and undefined.
	undefinedVal = cty.NullVal(cty.DynamicPseudoType)
	// nanVal is a typed null number; big.Float cannot hold NaN.
	nanVal = cty.NullVal(cty.Number)
)

func isNaNVal(v cty.Value) bool {
	return v.IsNull() && v.Type() == cty.Number
}

func isNullish(v cty.Value) bool {
	return v.IsNull() && !isNaNVal(v)
}

func numberVal(f float64) cty.Value {
	if math.IsNaN(f) {
		return nanVal
	}
	return cty.NumberFloatVal(f)
}

func floatOf(v cty.Value) float64 {
	if isNaNVal(v) {
		return math.NaN()
	}
	f, _ := v.AsBigFloat().Float64()
	return f
}

// toValue converts a JSON-native Go value into a cty.Value.
func toValue(data any) (cty.Value, error) {
	switch v := data.(type) {
	case nil:
		return undefinedVal, nil
	case cty.Value:
		return v, nil
	case string:
		return cty.StringVal(v), nil
	case float64:
		return numberVal(v), nil
	case bool:
		return cty.BoolVal(v), nil
	case map[string]any:
		if len(v) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(v))
		for key, val := range v {
			ctyVal, err := toValue(val)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[key] = ctyVal
		}
		return cty.ObjectVal(attrs), nil
	case []any:
		if len(v) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, 0, len(v))
		for _, val := range v {
			ctyVal, err := toValue(val)
			if err != nil {
				return cty.NilVal, err
			}
			elems = append(elems, ctyVal)
		}
		return cty.TupleVal(elems), nil
	default:
		normalized, err := tree.NormalizeValue(v)
		if err != nil {
			return cty.NilVal, fmt.Errorf("unsupported value of type %T: %w", v, err)
		}
		return toValue(normalized)
	}
}

// nativeOf converts a cty.Value back into its JSON-native Go form.
func nativeOf(v cty.Value) any {
	if v.IsNull() || !v.IsKnown() {
		return nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString()
	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return floatOf(v)
		}
		return f
	case ty == cty.Bool:
		return v.True()
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			out = append(out, nativeOf(elem))
		}
		return out
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			out[key.AsString()] = nativeOf(elem)
		}
		return out
	default:
		return nil
	}
}

func truthy(v cty.Value) bool {
	if v.IsNull() {
		return false
	}
	switch v.Type() {
	case cty.Bool:
		return v.True()
	case cty.Number:
		f := floatOf(v)
		return f != 0 && !math.IsNaN(f)
	case cty.String:
		return v.AsString() != ""
	default:
		return true
	}
}

func typeOf(v cty.Value) string {
	if isNaNVal(v) {
		return "number"
	}
	if v.IsNull() {
		return "undefined"
	}
	switch v.Type() {
	case cty.String:
		return "string"
	case cty.Number:
		return "number"
	case cty.Bool:
		return "boolean"
	default:
		return "object"
	}
}

var numericString = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// toNumber applies the Number() conversion. ok is false when the value has no
// numeric reading, in which case the result is NaN.
func toNumber(v cty.Value) (float64, bool) {
	if isNaNVal(v) {
		return math.NaN(), true
	}
	if v.IsNull() {
		return 0, true
	}
	switch v.Type() {
	case cty.Number:
		return floatOf(v), true
	case cty.Bool:
		if v.True() {
			return 1, true
		}
		return 0, true
	case cty.String:
		s := strings.TrimSpace(v.AsString())
		switch s {
		case "":
			return 0, true
		case "Infinity", "+Infinity":
			return math.Inf(1), true
		case "-Infinity":
			return math.Inf(-1), true
		}
		if !numericString.MatchString(s) {
			return math.NaN(), false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN(), false
		}
		return f, true
	default:
		return math.NaN(), false
	}
}

var floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// parseFloatPrefix mirrors parseFloat: the longest numeric prefix wins.
func parseFloatPrefix(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r")
	if strings.HasPrefix(s, "Infinity") || strings.HasPrefix(s, "+Infinity") {
		return math.Inf(1)
	}
	if strings.HasPrefix(s, "-Infinity") {
		return math.Inf(-1)
	}
	m := floatPrefix.FindString(s)
	if m == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// parseIntPrefix mirrors parseInt with an optional radix.
func parseIntPrefix(s string, radix int) float64 {
	s = strings.TrimLeft(s, " \t\n\r")
	sign := 1.0
	if strings.HasPrefix(s, "-") {
		sign, s = -1, s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if radix == 0 || radix == 16 {
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			s, radix = s[2:], 16
		}
	}
	if radix == 0 {
		radix = 10
	}
	if radix < 2 || radix > 36 {
		return math.NaN()
	}
	end := 0
	for end < len(s) {
		d := digitValue(s[end])
		if d < 0 || d >= radix {
			break
		}
		end++
	}
	if end == 0 {
		return math.NaN()
	}
	var out float64
	for i := 0; i < end; i++ {
		out = out*float64(radix) + float64(digitValue(s[i]))
	}
	return sign * out
}

func digitValue(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'z':
		return int(ch-'a') + 10
	case ch >= 'A' && ch <= 'Z':
		return int(ch-'A') + 10
	default:
		return -1
	}
}

// formatNumber renders f the way String(number) does.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// jsString applies the String() conversion.
func jsString(v cty.Value) string {
	if isNaNVal(v) {
		return "NaN"
	}
	if v.IsNull() {
		return "null"
	}
	if !v.IsKnown() {
		return ""
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString()
	case ty == cty.Number:
		return formatNumber(floatOf(v))
	case ty == cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		parts := make([]string, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			if isNullish(elem) {
				parts = append(parts, "")
				continue
			}
			parts = append(parts, jsString(elem))
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

func strictEqual(a, b cty.Value) bool {
	if isNaNVal(a) || isNaNVal(b) {
		return false
	}
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	if a.Type() != b.Type() {
		return false
	}
	switch a.Type() {
	case cty.Number:
		return floatOf(a) == floatOf(b)
	case cty.String:
		return a.AsString() == b.AsString()
	case cty.Bool:
		return a.True() == b.True()
	default:
		return a.RawEquals(b)
	}
}

func looseEqual(a, b cty.Value) bool {
	if isNaNVal(a) || isNaNVal(b) {
		return false
	}
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	if a.Type() == b.Type() {
		return strictEqual(a, b)
	}
	primitive := func(v cty.Value) bool {
		return v.Type() == cty.Number || v.Type() == cty.String || v.Type() == cty.Bool
	}
	if primitive(a) && primitive(b) {
		x, okA := toNumber(a)
		y, okB := toNumber(b)
		return okA && okB && x == y
	}
	return jsString(a) == jsString(b)
}
