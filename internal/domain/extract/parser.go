package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// maxDepth bounds recursion on hostile input.
const maxDepth = 64

// Parse reads one value written in the permissive object-literal dialect
// found in minified bundles and returns it as plain Go data: map[string]any,
// []any, string, int64, float64, bool or nil.
//
// On top of strict JSON the dialect allows bare identifier keys, single
// quoted strings, !0 / !1 for true / false, a trailing comma before a
// closing brace or bracket, and numbers with a bare leading dot.
func Parse(fragment string) (any, error) {
	p := &parser{src: fragment}
	p.skipSpace()
	v, err := p.value(0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing data")
	}
	return v, nil
}

// Repair parses fragment leniently and re-serializes it as strict JSON.
// Repairing already strict output yields the same text.
func Repair(fragment string) (string, error) {
	v, err := Parse(fragment)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedFragment, err)
	}
	return string(b), nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrMalformedFragment, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) value(depth int) (any, error) {
	if depth > maxDepth {
		return nil, p.errorf("nesting too deep")
	}
	switch c := p.peek(); {
	case c == 0:
		return nil, p.errorf("unexpected end of input")
	case c == '{':
		return p.object(depth)
	case c == '[':
		return p.array(depth)
	case c == '"' || c == '\'':
		return p.str()
	case c == '!':
		return p.bang()
	case c == '-' || c == '+' || c == '.' || isDigit(c):
		return p.number()
	case isIdentStart(c):
		switch word := p.ident(); word {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "null":
			return nil, nil
		default:
			return nil, p.errorf("unsupported value %q", word)
		}
	default:
		return nil, p.errorf("unexpected character %q", c)
	}
}

func (p *parser) object(depth int) (map[string]any, error) {
	p.pos++ // '{'
	out := make(map[string]any)
	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return out, nil
		}

		key, err := p.key()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ':' {
			return nil, p.errorf("expected ':' after key %q", key)
		}
		p.pos++
		p.skipSpace()

		v, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}
		out[key] = v

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or '}' in object")
		}
	}
}

func (p *parser) array(depth int) ([]any, error) {
	p.pos++ // '['
	out := []any{}
	for {
		p.skipSpace()
		if p.peek() == ']' {
			p.pos++
			return out, nil
		}

		v, err := p.value(depth + 1)
		if err != nil {
			return nil, err
		}
		out = append(out, v)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or ']' in array")
		}
	}
}

// key accepts a quoted string, a bare identifier or a bare integer.
func (p *parser) key() (string, error) {
	switch c := p.peek(); {
	case c == '"' || c == '\'':
		return p.str()
	case isIdentStart(c) || isDigit(c):
		return p.ident(), nil
	default:
		return "", p.errorf("expected object key")
	}
}

func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.src) && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) bang() (bool, error) {
	p.pos++ // '!'
	switch p.peek() {
	case '0':
		p.pos++
		return true, nil
	case '1':
		p.pos++
		return false, nil
	default:
		return false, p.errorf("expected !0 or !1")
	}
}

func (p *parser) number() (any, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	intDigits := p.digits()

	isFloat := false
	if p.peek() == '.' {
		isFloat = true
		p.pos++
		if p.digits() == 0 && intDigits == 0 {
			return nil, p.errorf("malformed number")
		}
	} else if intDigits == 0 {
		return nil, p.errorf("malformed number")
	}

	if c := p.peek(); c == 'e' || c == 'E' {
		isFloat = true
		p.pos++
		if c := p.peek(); c == '-' || c == '+' {
			p.pos++
		}
		if p.digits() == 0 {
			return nil, p.errorf("malformed exponent")
		}
	}

	lit := p.src[start:p.pos]
	if isIdentPart(p.peek()) {
		return nil, p.errorf("malformed number %q", lit+string(p.peek()))
	}
	return numberValue(lit, isFloat)
}

func (p *parser) digits() int {
	n := 0
	for isDigit(p.peek()) {
		p.pos++
		n++
	}
	return n
}

func (p *parser) str() (string, error) {
	quote := p.src[p.pos]
	p.pos++

	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\\':
			p.pos++
			if err := p.escape(&b); err != nil {
				return "", err
			}
		case c == '\n':
			return "", p.errorf("newline in string")
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *parser) escape(b *strings.Builder) error {
	if p.pos >= len(p.src) {
		return p.errorf("unterminated escape")
	}
	c := p.src[p.pos]
	p.pos++
	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '0':
		b.WriteByte(0)
	case 'x':
		r, err := p.hex(2)
		if err != nil {
			return err
		}
		b.WriteRune(r)
	case 'u':
		r, err := p.hex(4)
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) && strings.HasPrefix(p.src[p.pos:], `\u`) {
			p.pos += 2
			r2, err := p.hex(4)
			if err != nil {
				return err
			}
			r = utf16.DecodeRune(r, r2)
		}
		if utf16.IsSurrogate(r) {
			r = utf8.RuneError
		}
		b.WriteRune(r)
	default:
		// \" \' \\ \/ and any other escaped character stand for themselves.
		b.WriteByte(c)
	}
	return nil
}

func (p *parser) hex(n int) (rune, error) {
	if p.pos+n > len(p.src) {
		return 0, p.errorf("short hex escape")
	}
	v, err := strconv.ParseUint(p.src[p.pos:p.pos+n], 16, 32)
	if err != nil {
		return 0, p.errorf("bad hex escape %q", p.src[p.pos:p.pos+n])
	}
	p.pos += n
	return rune(v), nil
}

// numberValue converts a validated literal: integers that fit int64 stay
// integral, everything else becomes float64. A negative zero integer is
// kept as float64 -0 so re-serializing it is stable.
func numberValue(lit string, isFloat bool) (any, error) {
	if !isFloat {
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			if i == 0 && strings.HasPrefix(lit, "-") {
				// int64 has no negative zero
				return math.Copysign(0, -1), nil
			}
			return i, nil
		}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: number %q: %v", ErrMalformedFragment, lit, err)
	}
	return f, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
