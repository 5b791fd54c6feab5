package compute

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdentifier
	tokenKeyword
	tokenNumber
	tokenString
	tokenPunct
)

type token struct {
	kind tokenKind
	raw  string
	num  float64
	pos  int
}

func (t token) String() string {
	switch t.kind {
	case tokenEOF:
		return "end of script"
	case tokenString:
		return strconv.Quote(t.raw)
	default:
		return t.raw
	}
}

var keywords = map[string]struct{}{
	"var": {}, "let": {}, "const": {}, "return": {}, "if": {}, "else": {},
	"true": {}, "false": {}, "null": {}, "undefined": {}, "typeof": {},
}

// punctuators ordered longest first so the lexer matches greedily.
var punctuators = []string{
	"===", "!==",
	"==", "!=", "<=", ">=", "&&", "||", "+=", "-=", "*=", "/=", "%=",
	"(", ")", "{", "}", "[", "]", ",", ";", ".", "?", ":",
	"+", "-", "*", "/", "%", "<", ">", "!", "=",
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	for i < len(input) {
		ch := input[i]

		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
			continue

		case strings.HasPrefix(input[i:], "//"):
			end := strings.IndexByte(input[i:], '\n')
			if end < 0 {
				i = len(input)
			} else {
				i += end + 1
			}
			continue

		case strings.HasPrefix(input[i:], "/*"):
			end := strings.Index(input[i+2:], "*/")
			if end < 0 {
				return nil, syntaxError(i, "unterminated comment")
			}
			i += end + 4
			continue

		case ch == '"' || ch == '\'':
			value, next, err := lexString(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenString, raw: value, pos: i})
			i = next
			continue

		case isDigit(ch) || (ch == '.' && i+1 < len(input) && isDigit(input[i+1])):
			start := i
			for i < len(input) && (isDigit(input[i]) || input[i] == '.') {
				i++
			}
			if i < len(input) && (input[i] == 'e' || input[i] == 'E') {
				j := i + 1
				if j < len(input) && (input[j] == '+' || input[j] == '-') {
					j++
				}
				if j < len(input) && isDigit(input[j]) {
					i = j
					for i < len(input) && isDigit(input[i]) {
						i++
					}
				}
			}
			raw := input[start:i]
			num, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, syntaxError(start, "invalid number %q", raw)
			}
			tokens = append(tokens, token{kind: tokenNumber, raw: raw, num: num, pos: start})
			continue
		}

		r, size := utf8.DecodeRuneInString(input[i:])
		if isIdentStart(r) {
			start := i
			i += size
			for i < len(input) {
				r, size = utf8.DecodeRuneInString(input[i:])
				if !isIdentPart(r) {
					break
				}
				i += size
			}
			raw := input[start:i]
			kind := tokenIdentifier
			if _, ok := keywords[raw]; ok {
				kind = tokenKeyword
			}
			tokens = append(tokens, token{kind: kind, raw: raw, pos: start})
			continue
		}

		matched := false
		for _, p := range punctuators {
			if strings.HasPrefix(input[i:], p) {
				tokens = append(tokens, token{kind: tokenPunct, raw: p, pos: i})
				i += len(p)
				matched = true
				break
			}
		}
		if !matched {
			return nil, syntaxError(i, "unexpected character %q", r)
		}
	}

	tokens = append(tokens, token{kind: tokenEOF, pos: len(input)})
	return tokens, nil
}

func lexString(input string, start int) (string, int, error) {
	quote := input[start]
	var b strings.Builder
	i := start + 1
	for i < len(input) {
		ch := input[i]
		switch {
		case ch == quote:
			return b.String(), i + 1, nil
		case ch == '\n':
			return "", 0, syntaxError(start, "unterminated string literal")
		case ch == '\\':
			if i+1 >= len(input) {
				return "", 0, syntaxError(start, "unterminated string literal")
			}
			esc := input[i+1]
			i += 2
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			case 'u':
				if i+4 > len(input) {
					return "", 0, syntaxError(i, "invalid unicode escape")
				}
				code, err := strconv.ParseUint(input[i:i+4], 16, 32)
				if err != nil {
					return "", 0, syntaxError(i, "invalid unicode escape")
				}
				b.WriteRune(rune(code))
				i += 4
			default:
				b.WriteByte(esc)
			}
		default:
			b.WriteByte(ch)
			i++
		}
	}
	return "", 0, syntaxError(start, "unterminated string literal")
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func syntaxError(pos int, format string, args ...any) *ScriptFault {
	return &ScriptFault{
		Kind:    FaultSyntax,
		Message: fmt.Sprintf(format, args...),
		Offset:  pos,
	}
}
