package compute

import (
	"math"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

type binding struct {
	val      cty.Value
	constant bool
}

type scope struct {
	vars   map[string]*binding
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: make(map[string]*binding), parent: parent}
}

func (s *scope) lookup(name string) (*binding, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b, true
		}
	}
	return nil, false
}

type interp struct {
	resolver Resolver
	snapshot *cty.Value
	steps    int
	maxSteps int
	depth    int
	maxDepth int
	root     *scope
}

func newInterp(resolver Resolver, maxSteps, maxDepth int) *interp {
	return &interp{
		resolver: resolver,
		maxSteps: maxSteps,
		maxDepth: maxDepth,
		root:     newScope(nil),
	}
}

func (in *interp) step(pos int) error {
	in.steps++
	if in.maxSteps > 0 && in.steps > in.maxSteps {
		return &ScriptFault{Kind: FaultLimit, Message: "step budget exceeded", Offset: pos}
	}
	return nil
}

func (in *interp) enter(pos int) error {
	in.depth++
	if in.maxDepth > 0 && in.depth > in.maxDepth {
		return &ScriptFault{Kind: FaultLimit, Message: "evaluation nested too deeply", Offset: pos}
	}
	return nil
}

func (in *interp) leave() {
	in.depth--
}

// run executes the program and returns the value of the first return
// statement reached, or undefined.
func (in *interp) run(prog *program) (cty.Value, error) {
	for _, st := range prog.body {
		val, returned, err := in.exec(st, in.root)
		if err != nil {
			return cty.NilVal, err
		}
		if returned {
			return val, nil
		}
	}
	return undefinedVal, nil
}

func (in *interp) exec(st stmt, sc *scope) (cty.Value, bool, error) {
	if err := in.step(st.stmtPos()); err != nil {
		return cty.NilVal, false, err
	}
	if err := in.enter(st.stmtPos()); err != nil {
		return cty.NilVal, false, err
	}
	defer in.leave()

	switch s := st.(type) {
	case *emptyStmt:
		return cty.NilVal, false, nil

	case *exprStmt:
		_, err := in.eval(s.x, sc)
		return cty.NilVal, false, err

	case *returnStmt:
		if s.x == nil {
			return undefinedVal, true, nil
		}
		val, err := in.eval(s.x, sc)
		if err != nil {
			return cty.NilVal, false, err
		}
		return val, true, nil

	case *declStmt:
		target := sc
		if s.kind == "var" {
			target = in.root
		}
		for i, name := range s.names {
			if existing, ok := target.vars[name]; ok && (s.kind != "var" || existing.constant) {
				return cty.NilVal, false, runtimeFault(s.pos, "Identifier '%s' has already been declared", name)
			}
			val := undefinedVal
			if s.inits[i] != nil {
				v, err := in.eval(s.inits[i], sc)
				if err != nil {
					return cty.NilVal, false, err
				}
				val = v
			}
			target.vars[name] = &binding{val: val, constant: s.kind == "const"}
		}
		return cty.NilVal, false, nil

	case *ifStmt:
		cond, err := in.eval(s.cond, sc)
		if err != nil {
			return cty.NilVal, false, err
		}
		if truthy(cond) {
			return in.exec(s.then, sc)
		}
		if s.els != nil {
			return in.exec(s.els, sc)
		}
		return cty.NilVal, false, nil

	case *blockStmt:
		inner := newScope(sc)
		for _, child := range s.body {
			val, returned, err := in.exec(child, inner)
			if err != nil || returned {
				return val, returned, err
			}
		}
		return cty.NilVal, false, nil

	default:
		return cty.NilVal, false, runtimeFault(st.stmtPos(), "unsupported statement")
	}
}

func (in *interp) eval(x expr, sc *scope) (cty.Value, error) {
	if err := in.step(x.exprPos()); err != nil {
		return cty.NilVal, err
	}
	if err := in.enter(x.exprPos()); err != nil {
		return cty.NilVal, err
	}
	defer in.leave()

	switch e := x.(type) {
	case *literalExpr:
		return e.val, nil

	case *identExpr:
		return in.ident(e, sc)

	case *arrayExpr:
		if len(e.elems) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, 0, len(e.elems))
		for _, el := range e.elems {
			v, err := in.eval(el, sc)
			if err != nil {
				return cty.NilVal, err
			}
			elems = append(elems, v)
		}
		return cty.TupleVal(elems), nil

	case *unaryExpr:
		v, err := in.eval(e.x, sc)
		if err != nil {
			return cty.NilVal, err
		}
		return unary(e.pos, e.op, v)

	case *binaryExpr:
		left, err := in.eval(e.left, sc)
		if err != nil {
			return cty.NilVal, err
		}
		right, err := in.eval(e.right, sc)
		if err != nil {
			return cty.NilVal, err
		}
		return binary(e.pos, e.op, left, right)

	case *logicalExpr:
		left, err := in.eval(e.left, sc)
		if err != nil {
			return cty.NilVal, err
		}
		if (e.op == "&&") != truthy(left) {
			return left, nil
		}
		return in.eval(e.right, sc)

	case *condExpr:
		cond, err := in.eval(e.cond, sc)
		if err != nil {
			return cty.NilVal, err
		}
		if truthy(cond) {
			return in.eval(e.then, sc)
		}
		return in.eval(e.els, sc)

	case *assignExpr:
		return in.assign(e, sc)

	case *memberExpr:
		if id, ok := e.x.(*identExpr); ok && id.name == "Math" && !in.shadowed(id.name, sc) {
			return mathConstant(e.pos, e.name)
		}
		base, err := in.eval(e.x, sc)
		if err != nil {
			return cty.NilVal, err
		}
		return property(e.pos, base, cty.StringVal(e.name))

	case *indexExpr:
		base, err := in.eval(e.x, sc)
		if err != nil {
			return cty.NilVal, err
		}
		key, err := in.eval(e.index, sc)
		if err != nil {
			return cty.NilVal, err
		}
		return property(e.pos, base, key)

	case *callExpr:
		return in.call(e, sc)

	default:
		return cty.NilVal, runtimeFault(x.exprPos(), "unsupported expression")
	}
}

func (in *interp) shadowed(name string, sc *scope) bool {
	_, ok := sc.lookup(name)
	return ok
}

func (in *interp) ident(e *identExpr, sc *scope) (cty.Value, error) {
	if b, ok := sc.lookup(e.name); ok {
		return b.val, nil
	}
	switch e.name {
	case in.resolver.Scope():
		return in.snapshotValue(e.pos)
	case "NaN":
		return nanVal, nil
	case "Infinity":
		return cty.NumberFloatVal(math.Inf(1)), nil
	case "Math":
		return cty.NilVal, runtimeFault(e.pos, "Math cannot be used as a value")
	}
	if _, ok := globalFuncs[e.name]; ok {
		return cty.NilVal, runtimeFault(e.pos, "%s can only be called", e.name)
	}
	return cty.NilVal, runtimeFault(e.pos, "%s is not defined", e.name)
}

func (in *interp) snapshotValue(pos int) (cty.Value, error) {
	if in.snapshot != nil {
		return *in.snapshot, nil
	}
	v, err := toValue(in.resolver.Snapshot())
	if err != nil {
		return cty.NilVal, runtimeFault(pos, "cannot read %s: %v", in.resolver.Scope(), err)
	}
	if isNullish(v) {
		v = cty.EmptyObjectVal
	}
	in.snapshot = &v
	return v, nil
}

func (in *interp) assign(e *assignExpr, sc *scope) (cty.Value, error) {
	b, ok := sc.lookup(e.name)
	if !ok {
		return cty.NilVal, runtimeFault(e.pos, "%s is not defined", e.name)
	}
	if b.constant {
		return cty.NilVal, runtimeFault(e.pos, "Assignment to constant variable '%s'", e.name)
	}
	value, err := in.eval(e.value, sc)
	if err != nil {
		return cty.NilVal, err
	}
	if e.op != "=" {
		value, err = binary(e.pos, strings.TrimSuffix(e.op, "="), b.val, value)
		if err != nil {
			return cty.NilVal, err
		}
	}
	b.val = value
	return value, nil
}

func (in *interp) call(e *callExpr, sc *scope) (cty.Value, error) {
	evalArgs := func() ([]cty.Value, error) {
		args := make([]cty.Value, 0, len(e.args))
		for _, a := range e.args {
			v, err := in.eval(a, sc)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		return args, nil
	}

	switch callee := e.callee.(type) {
	case *identExpr:
		if in.shadowed(callee.name, sc) {
			return cty.NilVal, runtimeFault(e.pos, "%s is not a function", callee.name)
		}
		fn, ok := globalFuncs[callee.name]
		if !ok {
			if callee.name == in.resolver.Scope() || callee.name == "Math" {
				return cty.NilVal, runtimeFault(e.pos, "%s is not a function", callee.name)
			}
			return cty.NilVal, runtimeFault(e.pos, "%s is not defined", callee.name)
		}
		args, err := evalArgs()
		if err != nil {
			return cty.NilVal, err
		}
		return fn(in, e.pos, args)

	case *memberExpr:
		if id, ok := callee.x.(*identExpr); ok && id.name == "Math" && !in.shadowed(id.name, sc) {
			args, err := evalArgs()
			if err != nil {
				return cty.NilVal, err
			}
			return callMath(e.pos, callee.name, args)
		}
		recv, err := in.eval(callee.x, sc)
		if err != nil {
			return cty.NilVal, err
		}
		args, err := evalArgs()
		if err != nil {
			return cty.NilVal, err
		}
		return callMethod(e.pos, recv, callee.name, args)

	default:
		return cty.NilVal, runtimeFault(e.pos, "expression is not a function")
	}
}
