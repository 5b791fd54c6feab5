package compute

import (
	"github.com/zclconf/go-cty/cty"
)

type tokenStream struct {
	tokens   []token
	pos      int
	depth    int
	maxDepth int
}

func (s *tokenStream) peek() token {
	return s.tokens[s.pos]
}

func (s *tokenStream) next() token {
	tok := s.tokens[s.pos]
	if tok.kind != tokenEOF {
		s.pos++
	}
	return tok
}

func (s *tokenStream) is(kind tokenKind, raw string) bool {
	tok := s.peek()
	return tok.kind == kind && tok.raw == raw
}

func (s *tokenStream) isPunct(raw string) bool {
	return s.is(tokenPunct, raw)
}

func (s *tokenStream) match(raw string) bool {
	if s.isPunct(raw) {
		s.pos++
		return true
	}
	return false
}

func (s *tokenStream) expect(raw string) (token, error) {
	tok := s.peek()
	if tok.kind != tokenPunct || tok.raw != raw {
		return tok, syntaxError(tok.pos, "expected %q, found %s", raw, tok)
	}
	s.pos++
	return tok, nil
}

func (s *tokenStream) enter() error {
	s.depth++
	if s.maxDepth > 0 && s.depth > s.maxDepth {
		return &ScriptFault{Kind: FaultLimit, Message: "script is nested too deeply", Offset: s.peek().pos}
	}
	return nil
}

func (s *tokenStream) leave() {
	s.depth--
}

func parse(src string, maxDepth int) (*program, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	stream := &tokenStream{tokens: tokens, maxDepth: maxDepth}
	prog := &program{}
	for stream.peek().kind != tokenEOF {
		st, err := parseStatement(stream)
		if err != nil {
			return nil, err
		}
		prog.body = append(prog.body, st)
	}
	return prog, nil
}

func parseStatement(s *tokenStream) (stmt, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.leave()

	tok := s.peek()
	switch {
	case tok.kind == tokenPunct && tok.raw == ";":
		s.next()
		return &emptyStmt{pos: tok.pos}, nil

	case tok.kind == tokenPunct && tok.raw == "{":
		return parseBlock(s)

	case tok.kind == tokenKeyword:
		switch tok.raw {
		case "var", "let", "const":
			return parseDecl(s)
		case "return":
			s.next()
			ret := &returnStmt{pos: tok.pos}
			if !s.isPunct(";") && !s.isPunct("}") && s.peek().kind != tokenEOF {
				x, err := parseExpr(s)
				if err != nil {
					return nil, err
				}
				ret.x = x
			}
			s.match(";")
			return ret, nil
		case "if":
			return parseIf(s)
		case "else":
			return nil, syntaxError(tok.pos, "unexpected else")
		}
	}

	x, err := parseExpr(s)
	if err != nil {
		return nil, err
	}
	s.match(";")
	return &exprStmt{pos: tok.pos, x: x}, nil
}

func parseBlock(s *tokenStream) (stmt, error) {
	open, err := s.expect("{")
	if err != nil {
		return nil, err
	}
	block := &blockStmt{pos: open.pos}
	for !s.isPunct("}") {
		if s.peek().kind == tokenEOF {
			return nil, syntaxError(open.pos, "unterminated block")
		}
		st, err := parseStatement(s)
		if err != nil {
			return nil, err
		}
		block.body = append(block.body, st)
	}
	s.next()
	return block, nil
}

func parseDecl(s *tokenStream) (stmt, error) {
	kw := s.next()
	decl := &declStmt{pos: kw.pos, kind: kw.raw}
	for {
		name := s.next()
		if name.kind != tokenIdentifier {
			return nil, syntaxError(name.pos, "expected variable name, found %s", name)
		}
		var init expr
		if s.match("=") {
			x, err := parseAssign(s)
			if err != nil {
				return nil, err
			}
			init = x
		} else if kw.raw == "const" {
			return nil, syntaxError(name.pos, "missing initializer in const declaration")
		}
		decl.names = append(decl.names, name.raw)
		decl.inits = append(decl.inits, init)
		if !s.match(",") {
			break
		}
	}
	s.match(";")
	return decl, nil
}

func parseIf(s *tokenStream) (stmt, error) {
	kw := s.next()
	if _, err := s.expect("("); err != nil {
		return nil, err
	}
	cond, err := parseExpr(s)
	if err != nil {
		return nil, err
	}
	if _, err := s.expect(")"); err != nil {
		return nil, err
	}
	then, err := parseStatement(s)
	if err != nil {
		return nil, err
	}
	st := &ifStmt{pos: kw.pos, cond: cond, then: then}
	if s.is(tokenKeyword, "else") {
		s.next()
		els, err := parseStatement(s)
		if err != nil {
			return nil, err
		}
		st.els = els
	}
	return st, nil
}

func parseExpr(s *tokenStream) (expr, error) {
	return parseAssign(s)
}

var assignOps = map[string]struct{}{"=": {}, "+=": {}, "-=": {}, "*=": {}, "/=": {}, "%=": {}}

func parseAssign(s *tokenStream) (expr, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.leave()

	left, err := parseConditional(s)
	if err != nil {
		return nil, err
	}
	tok := s.peek()
	if tok.kind != tokenPunct {
		return left, nil
	}
	if _, ok := assignOps[tok.raw]; !ok {
		return left, nil
	}
	ident, ok := left.(*identExpr)
	if !ok {
		return nil, syntaxError(tok.pos, "invalid assignment target")
	}
	s.next()
	value, err := parseAssign(s)
	if err != nil {
		return nil, err
	}
	return &assignExpr{pos: tok.pos, op: tok.raw, name: ident.name, value: value}, nil
}

func parseConditional(s *tokenStream) (expr, error) {
	cond, err := parseOr(s)
	if err != nil {
		return nil, err
	}
	tok := s.peek()
	if !s.match("?") {
		return cond, nil
	}
	then, err := parseAssign(s)
	if err != nil {
		return nil, err
	}
	if _, err := s.expect(":"); err != nil {
		return nil, err
	}
	els, err := parseAssign(s)
	if err != nil {
		return nil, err
	}
	return &condExpr{pos: tok.pos, cond: cond, then: then, els: els}, nil
}

func parseOr(s *tokenStream) (expr, error) {
	left, err := parseAnd(s)
	if err != nil {
		return nil, err
	}
	for s.isPunct("||") {
		tok := s.next()
		right, err := parseAnd(s)
		if err != nil {
			return nil, err
		}
		left = &logicalExpr{pos: tok.pos, op: tok.raw, left: left, right: right}
	}
	return left, nil
}

func parseAnd(s *tokenStream) (expr, error) {
	left, err := parseEquality(s)
	if err != nil {
		return nil, err
	}
	for s.isPunct("&&") {
		tok := s.next()
		right, err := parseEquality(s)
		if err != nil {
			return nil, err
		}
		left = &logicalExpr{pos: tok.pos, op: tok.raw, left: left, right: right}
	}
	return left, nil
}

// parseBinaryLevel parses a left-associative chain of ops over operands
// produced by next.
func parseBinaryLevel(s *tokenStream, next func(*tokenStream) (expr, error), ops ...string) (expr, error) {
	left, err := next(s)
	if err != nil {
		return nil, err
	}
	for {
		tok := s.peek()
		if tok.kind != tokenPunct || !contains(ops, tok.raw) {
			return left, nil
		}
		s.next()
		right, err := next(s)
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{pos: tok.pos, op: tok.raw, left: left, right: right}
	}
}

func parseEquality(s *tokenStream) (expr, error) {
	return parseBinaryLevel(s, parseRelational, "==", "!=", "===", "!==")
}

func parseRelational(s *tokenStream) (expr, error) {
	return parseBinaryLevel(s, parseAdditive, "<", "<=", ">", ">=")
}

func parseAdditive(s *tokenStream) (expr, error) {
	return parseBinaryLevel(s, parseMultiplicative, "+", "-")
}

func parseMultiplicative(s *tokenStream) (expr, error) {
	return parseBinaryLevel(s, parseUnary, "*", "/", "%")
}

func parseUnary(s *tokenStream) (expr, error) {
	tok := s.peek()
	isUnaryPunct := tok.kind == tokenPunct && (tok.raw == "!" || tok.raw == "-" || tok.raw == "+")
	isTypeof := tok.kind == tokenKeyword && tok.raw == "typeof"
	if !isUnaryPunct && !isTypeof {
		return parsePostfix(s)
	}
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.leave()
	s.next()
	x, err := parseUnary(s)
	if err != nil {
		return nil, err
	}
	return &unaryExpr{pos: tok.pos, op: tok.raw, x: x}, nil
}

func parsePostfix(s *tokenStream) (expr, error) {
	x, err := parsePrimary(s)
	if err != nil {
		return nil, err
	}
	for {
		tok := s.peek()
		if tok.kind != tokenPunct {
			return x, nil
		}
		switch tok.raw {
		case ".":
			s.next()
			name := s.next()
			if name.kind != tokenIdentifier && name.kind != tokenKeyword {
				return nil, syntaxError(name.pos, "expected property name, found %s", name)
			}
			x = &memberExpr{pos: tok.pos, x: x, name: name.raw}
		case "[":
			s.next()
			index, err := parseExpr(s)
			if err != nil {
				return nil, err
			}
			if _, err := s.expect("]"); err != nil {
				return nil, err
			}
			x = &indexExpr{pos: tok.pos, x: x, index: index}
		case "(":
			s.next()
			args, err := parseList(s, ")")
			if err != nil {
				return nil, err
			}
			x = &callExpr{pos: tok.pos, callee: x, args: args}
		default:
			return x, nil
		}
	}
}

func parseList(s *tokenStream, closing string) ([]expr, error) {
	var out []expr
	if s.match(closing) {
		return out, nil
	}
	for {
		x, err := parseAssign(s)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
		if s.match(closing) {
			return out, nil
		}
		if _, err := s.expect(","); err != nil {
			return nil, err
		}
	}
}

func parsePrimary(s *tokenStream) (expr, error) {
	tok := s.next()
	switch tok.kind {
	case tokenNumber:
		return &literalExpr{pos: tok.pos, val: cty.NumberFloatVal(tok.num)}, nil
	case tokenString:
		return &literalExpr{pos: tok.pos, val: cty.StringVal(tok.raw)}, nil
	case tokenIdentifier:
		return &identExpr{pos: tok.pos, name: tok.raw}, nil
	case tokenKeyword:
		switch tok.raw {
		case "true":
			return &literalExpr{pos: tok.pos, val: cty.True}, nil
		case "false":
			return &literalExpr{pos: tok.pos, val: cty.False}, nil
		case "null", "undefined":
			return &literalExpr{pos: tok.pos, val: cty.NullVal(cty.DynamicPseudoType)}, nil
		}
	case tokenPunct:
		switch tok.raw {
		case "(":
			if err := s.enter(); err != nil {
				return nil, err
			}
			defer s.leave()
			x, err := parseExpr(s)
			if err != nil {
				return nil, err
			}
			if _, err := s.expect(")"); err != nil {
				return nil, err
			}
			return x, nil
		case "[":
			if err := s.enter(); err != nil {
				return nil, err
			}
			defer s.leave()
			elems, err := parseList(s, "]")
			if err != nil {
				return nil, err
			}
			return &arrayExpr{pos: tok.pos, elems: elems}, nil
		}
	case tokenEOF:
		return nil, syntaxError(tok.pos, "unexpected end of script")
	}
	return nil, syntaxError(tok.pos, "unexpected token %s", tok)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
