package compute

import (
	"math"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

type builtin func(in *interp, pos int, args []cty.Value) (cty.Value, error)

// globalFuncs are the functions a script may call by name.
var globalFuncs = map[string]builtin{
	"get_field_by_name": getField,
	"get_field":         getField,
	"Number": func(_ *interp, _ int, args []cty.Value) (cty.Value, error) {
		if len(args) == 0 {
			return cty.Zero, nil
		}
		f, _ := toNumber(args[0])
		return numberVal(f), nil
	},
	"String": func(_ *interp, _ int, args []cty.Value) (cty.Value, error) {
		if len(args) == 0 {
			return cty.StringVal(""), nil
		}
		return cty.StringVal(jsString(args[0])), nil
	},
	"Boolean": func(_ *interp, _ int, args []cty.Value) (cty.Value, error) {
		return cty.BoolVal(len(args) > 0 && truthy(args[0])), nil
	},
	"parseFloat": func(_ *interp, _ int, args []cty.Value) (cty.Value, error) {
		return numberVal(parseFloatPrefix(jsString(arg(args, 0)))), nil
	},
	"parseInt": func(_ *interp, _ int, args []cty.Value) (cty.Value, error) {
		radix := 0
		if r, ok := toNumber(arg(args, 1)); ok && !math.IsNaN(r) && !math.IsInf(r, 0) {
			radix = int(r)
		}
		return numberVal(parseIntPrefix(jsString(arg(args, 0)), radix)), nil
	},
	"isNaN": func(_ *interp, _ int, args []cty.Value) (cty.Value, error) {
		f, _ := toNumber(arg(args, 0))
		return cty.BoolVal(math.IsNaN(f)), nil
	},
	"isFinite": func(_ *interp, _ int, args []cty.Value) (cty.Value, error) {
		f, _ := toNumber(arg(args, 0))
		return cty.BoolVal(!math.IsNaN(f) && !math.IsInf(f, 0)), nil
	},
	"upper":   ctyBuiltin("upper", stdlib.UpperFunc),
	"lower":   ctyBuiltin("lower", stdlib.LowerFunc),
	"trim":    ctyBuiltin("trim", stdlib.TrimSpaceFunc),
	"strlen":  ctyBuiltin("strlen", stdlib.StrlenFunc),
	"substr":  ctyBuiltin("substr", stdlib.SubstrFunc),
	"format":  ctyBuiltin("format", stdlib.FormatFunc),
	"replace": ctyBuiltin("replace", stdlib.ReplaceFunc),
}

func arg(args []cty.Value, i int) cty.Value {
	if i < len(args) {
		return args[i]
	}
	return undefinedVal
}

// getField reads the value of the field with the given label. Unknown labels
// and empty fields yield "".
func getField(in *interp, pos int, args []cty.Value) (cty.Value, error) {
	label := arg(args, 0)
	if isNullish(label) {
		return cty.StringVal(""), nil
	}
	v, err := toValue(in.resolver.Field(jsString(label)))
	if err != nil {
		return cty.NilVal, runtimeFault(pos, "cannot read field %q: %v", jsString(label), err)
	}
	return v, nil
}

// ctyBuiltin exposes a cty function, converting arguments to its parameter
// types.
func ctyBuiltin(name string, fn function.Function) builtin {
	return func(_ *interp, pos int, args []cty.Value) (cty.Value, error) {
		return callCty(pos, name, fn, args)
	}
}

func callCty(pos int, name string, fn function.Function, args []cty.Value) (cty.Value, error) {
	params := fn.Params()
	variadic := fn.VarParam()
	if len(args) < len(params) || (variadic == nil && len(args) > len(params)) {
		return cty.NilVal, runtimeFault(pos, "%s expects %d arguments, got %d", name, len(params), len(args))
	}
	converted := make([]cty.Value, 0, len(args))
	for i, a := range args {
		if a.IsNull() {
			return cty.NilVal, runtimeFault(pos, "%s: argument %d is %s", name, i+1, jsString(a))
		}
		var ty cty.Type
		if i < len(params) {
			ty = params[i].Type
		} else {
			ty = variadic.Type
		}
		if ty != cty.DynamicPseudoType {
			c, err := convert.Convert(a, ty)
			if err != nil {
				return cty.NilVal, runtimeFault(pos, "%s: argument %d: %v", name, i+1, err)
			}
			a = c
		}
		converted = append(converted, a)
	}
	out, err := fn.Call(converted)
	if err != nil {
		return cty.NilVal, runtimeFault(pos, "%s: %v", name, err)
	}
	return out, nil
}

func mathConstant(_ int, name string) (cty.Value, error) {
	switch name {
	case "PI":
		return cty.NumberFloatVal(math.Pi), nil
	case "E":
		return cty.NumberFloatVal(math.E), nil
	default:
		return undefinedVal, nil
	}
}

func callMath(pos int, name string, args []cty.Value) (cty.Value, error) {
	nums := make([]float64, len(args))
	for i, a := range args {
		nums[i], _ = toNumber(a)
	}
	first := math.NaN()
	if len(nums) > 0 {
		first = nums[0]
	}
	switch name {
	case "round":
		return numberVal(math.Floor(first + 0.5)), nil
	case "floor":
		return numberVal(math.Floor(first)), nil
	case "ceil":
		return numberVal(math.Ceil(first)), nil
	case "abs":
		return numberVal(math.Abs(first)), nil
	case "trunc":
		return numberVal(math.Trunc(first)), nil
	case "sqrt":
		return numberVal(math.Sqrt(first)), nil
	case "pow":
		exp := math.NaN()
		if len(nums) > 1 {
			exp = nums[1]
		}
		return numberVal(math.Pow(first, exp)), nil
	case "min", "max":
		out := math.Inf(1)
		if name == "max" {
			out = math.Inf(-1)
		}
		for _, n := range nums {
			if math.IsNaN(n) {
				return nanVal, nil
			}
			if (name == "min" && n < out) || (name == "max" && n > out) {
				out = n
			}
		}
		return numberVal(out), nil
	default:
		return cty.NilVal, runtimeFault(pos, "Math.%s is not a function", name)
	}
}

func unary(pos int, op string, v cty.Value) (cty.Value, error) {
	switch op {
	case "!":
		return cty.BoolVal(!truthy(v)), nil
	case "typeof":
		return cty.StringVal(typeOf(v)), nil
	}
	f, err := arithOperand(pos, op, v)
	if err != nil {
		return cty.NilVal, err
	}
	if op == "-" {
		f = -f
	}
	return numberVal(f), nil
}

func arithOperand(pos int, op string, v cty.Value) (float64, error) {
	f, ok := toNumber(v)
	if !ok {
		return 0, runtimeFault(pos, "cannot apply %s to non-numeric value %q", op, jsString(v))
	}
	return f, nil
}

func concatenates(v cty.Value) bool {
	if v.IsNull() {
		return false
	}
	ty := v.Type()
	return ty == cty.String || ty.IsTupleType() || ty.IsListType() || ty.IsObjectType() || ty.IsMapType()
}

func binary(pos int, op string, a, b cty.Value) (cty.Value, error) {
	switch op {
	case "==":
		return cty.BoolVal(looseEqual(a, b)), nil
	case "!=":
		return cty.BoolVal(!looseEqual(a, b)), nil
	case "===":
		return cty.BoolVal(strictEqual(a, b)), nil
	case "!==":
		return cty.BoolVal(!strictEqual(a, b)), nil
	case "<", "<=", ">", ">=":
		return cty.BoolVal(compare(op, a, b)), nil
	case "+":
		if concatenates(a) || concatenates(b) {
			return cty.StringVal(jsString(a) + jsString(b)), nil
		}
	}

	x, err := arithOperand(pos, op, a)
	if err != nil {
		return cty.NilVal, err
	}
	y, err := arithOperand(pos, op, b)
	if err != nil {
		return cty.NilVal, err
	}
	switch op {
	case "+":
		return numberVal(x + y), nil
	case "-":
		return numberVal(x - y), nil
	case "*":
		return numberVal(x * y), nil
	case "/":
		return numberVal(x / y), nil
	case "%":
		return numberVal(math.Mod(x, y)), nil
	default:
		return cty.NilVal, runtimeFault(pos, "unsupported operator %s", op)
	}
}

func compare(op string, a, b cty.Value) bool {
	if !a.IsNull() && !b.IsNull() && a.Type() == cty.String && b.Type() == cty.String {
		x, y := a.AsString(), b.AsString()
		switch op {
		case "<":
			return x < y
		case "<=":
			return x <= y
		case ">":
			return x > y
		default:
			return x >= y
		}
	}
	x, okA := toNumber(a)
	y, okB := toNumber(b)
	if !okA || !okB || math.IsNaN(x) || math.IsNaN(y) {
		return false
	}
	switch op {
	case "<":
		return x < y
	case "<=":
		return x <= y
	case ">":
		return x > y
	default:
		return x >= y
	}
}

// arrayIndex reads key as an array index.
func arrayIndex(key cty.Value) (int, bool) {
	f, ok := toNumber(key)
	if !ok || key.IsNull() || math.IsNaN(f) || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	if key.Type() == cty.Bool {
		return 0, false
	}
	return int(f), true
}

func property(pos int, base, key cty.Value) (cty.Value, error) {
	name := jsString(key)
	if isNullish(base) {
		return cty.NilVal, runtimeFault(pos, "Cannot read properties of %s (reading '%s')", jsString(base), name)
	}
	if isNaNVal(base) {
		return undefinedVal, nil
	}
	ty := base.Type()
	switch {
	case ty == cty.String:
		runes := []rune(base.AsString())
		if name == "length" {
			return cty.NumberIntVal(int64(len(runes))), nil
		}
		if i, ok := arrayIndex(key); ok && i < len(runes) {
			return cty.StringVal(string(runes[i])), nil
		}
	case ty.IsTupleType() || ty.IsListType():
		if name == "length" {
			return cty.NumberIntVal(int64(base.LengthInt())), nil
		}
		if i, ok := arrayIndex(key); ok && i < base.LengthInt() {
			return base.Index(cty.NumberIntVal(int64(i))), nil
		}
	case ty.IsObjectType():
		if ty.HasAttribute(name) {
			return base.GetAttr(name), nil
		}
	case ty.IsMapType():
		if base.HasIndex(cty.StringVal(name)).True() {
			return base.Index(cty.StringVal(name)), nil
		}
	}
	return undefinedVal, nil
}

func callMethod(pos int, recv cty.Value, name string, args []cty.Value) (cty.Value, error) {
	if isNullish(recv) {
		return cty.NilVal, runtimeFault(pos, "Cannot read properties of %s (reading '%s')", jsString(recv), name)
	}
	if name == "toString" {
		return cty.StringVal(jsString(recv)), nil
	}
	ty := recv.Type()
	switch {
	case ty == cty.String:
		return stringMethod(pos, recv, name, args)
	case ty == cty.Number:
		if name == "toFixed" {
			digits := 0
			if d, ok := toNumber(arg(args, 0)); ok && !math.IsNaN(d) {
				digits = int(d)
			}
			if digits < 0 || digits > 100 {
				return cty.NilVal, runtimeFault(pos, "toFixed() digits argument must be between 0 and 100")
			}
			return cty.StringVal(toFixed(floatOf(recv), digits)), nil
		}
	case ty.IsTupleType() || ty.IsListType():
		return arrayMethod(pos, recv, name, args)
	}
	return cty.NilVal, runtimeFault(pos, "%s.%s is not a function", typeOf(recv), name)
}

func stringMethod(pos int, recv cty.Value, name string, args []cty.Value) (cty.Value, error) {
	s := recv.AsString()
	switch name {
	case "toUpperCase":
		return callCty(pos, name, stdlib.UpperFunc, []cty.Value{recv})
	case "toLowerCase":
		return callCty(pos, name, stdlib.LowerFunc, []cty.Value{recv})
	case "trim":
		return callCty(pos, name, stdlib.TrimSpaceFunc, []cty.Value{recv})
	case "includes":
		return cty.BoolVal(strings.Contains(s, jsString(arg(args, 0)))), nil
	case "startsWith":
		return cty.BoolVal(strings.HasPrefix(s, jsString(arg(args, 0)))), nil
	case "endsWith":
		return cty.BoolVal(strings.HasSuffix(s, jsString(arg(args, 0)))), nil
	case "indexOf":
		i := strings.Index(s, jsString(arg(args, 0)))
		if i < 0 {
			return cty.NumberIntVal(-1), nil
		}
		return cty.NumberIntVal(int64(utf8.RuneCountInString(s[:i]))), nil
	case "slice":
		runes := []rune(s)
		start, end := sliceBounds(len(runes), args)
		return cty.StringVal(string(runes[start:end])), nil
	case "split":
		if len(args) == 0 || isNullish(args[0]) {
			return cty.TupleVal([]cty.Value{recv}), nil
		}
		sep := jsString(args[0])
		var parts []string
		if sep == "" {
			for _, r := range s {
				parts = append(parts, string(r))
			}
		} else {
			parts = strings.Split(s, sep)
		}
		if len(parts) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(parts))
		for i, p := range parts {
			elems[i] = cty.StringVal(p)
		}
		return cty.TupleVal(elems), nil
	case "replace":
		return cty.StringVal(strings.Replace(s, jsString(arg(args, 0)), jsString(arg(args, 1)), 1)), nil
	}
	return cty.NilVal, runtimeFault(pos, "string.%s is not a function", name)
}

func arrayMethod(pos int, recv cty.Value, name string, args []cty.Value) (cty.Value, error) {
	elems := recv.AsValueSlice()
	switch name {
	case "join":
		sep := ","
		if len(args) > 0 && !isNullish(args[0]) {
			sep = jsString(args[0])
		}
		parts := make([]string, len(elems))
		for i, el := range elems {
			if !isNullish(el) {
				parts[i] = jsString(el)
			}
		}
		return cty.StringVal(strings.Join(parts, sep)), nil
	case "includes", "indexOf":
		needle := arg(args, 0)
		for i, el := range elems {
			if strictEqual(el, needle) || (isNullish(el) && isNullish(needle)) {
				if name == "includes" {
					return cty.True, nil
				}
				return cty.NumberIntVal(int64(i)), nil
			}
		}
		if name == "includes" {
			return cty.False, nil
		}
		return cty.NumberIntVal(-1), nil
	case "slice":
		start, end := sliceBounds(len(elems), args)
		if start == end {
			return cty.EmptyTupleVal, nil
		}
		return cty.TupleVal(elems[start:end]), nil
	}
	return cty.NilVal, runtimeFault(pos, "array.%s is not a function", name)
}

// sliceBounds resolves slice(start, end) arguments against length n.
func sliceBounds(n int, args []cty.Value) (int, int) {
	clamp := func(v cty.Value, def int) int {
		if isNullish(v) {
			return def
		}
		f, ok := toNumber(v)
		if !ok || math.IsNaN(f) {
			return 0
		}
		f = math.Trunc(f)
		if f < 0 {
			f += float64(n)
		}
		return int(math.Max(0, math.Min(f, float64(n))))
	}
	start := clamp(arg(args, 0), 0)
	end := clamp(arg(args, 1), n)
	if end < start {
		end = start
	}
	return start, end
}

// toFixed formats f with digits fraction digits, rounding the exact binary
// value half away from zero.
func toFixed(f float64, digits int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= 1e21 {
		return formatNumber(f)
	}
	neg := f < 0
	exact := new(big.Float).SetFloat64(math.Abs(f)).Text('f', 1100)
	intPart, frac, _ := strings.Cut(exact, ".")
	frac += strings.Repeat("0", digits+1)
	kept := []byte(intPart + frac[:digits])
	if frac[digits] >= '5' {
		i := len(kept) - 1
		for ; i >= 0; i-- {
			if kept[i] == '9' {
				kept[i] = '0'
				continue
			}
			kept[i]++
			break
		}
		if i < 0 {
			kept = append([]byte{'1'}, kept...)
		}
	}
	split := len(kept) - digits
	out := string(kept[:split])
	if digits > 0 {
		out += "." + string(kept[split:])
	}
	if neg {
		out = "-" + out
	}
	return out
}
