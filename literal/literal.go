// Package literal evaluates Python literal expressions, the repr() form of
// dicts, lists, tuples, sets, strings, numbers, booleans and None, into
// JSON-shaped Go values: map[string]any, []any, string, numbers, bool and nil.
//
// It is the fallback used when a document is not JSON at all but a literal
// printed by another runtime, e.g. {'a': (1, 2), 'b': None}.
package literal

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	eng "github.com/reoring/jsonmend/internal/engine"
)

// Options controls how values are materialized.
type Options struct {
	// NumberMode selects float64 (default) or json.Number for numbers.
	NumberMode eng.NumberMode
	// Limits are checked like the strict parsers check them; a violation is
	// reported as *engine.LimitError by Eval.
	Limits eng.Limits
}

// maxNesting bounds container nesting so hostile input cannot exhaust the
// stack.
const maxNesting = 1000

// Parse evaluates text as a single literal expression. The boolean is false
// when text is not a literal this package understands; Parse never panics and
// a literal None yields (nil, true).
func Parse(text string, opt Options) (v any, ok bool) {
	v, err := Eval(text, opt)
	return v, err == nil
}

// Eval is Parse with the reason for a failure: a syntax error, or a
// *engine.LimitError when the literal breaks opt.Limits.
func Eval(text string, opt Options) (v any, err error) {
	defer func() {
		if recover() != nil {
			v, err = nil, &syntaxError{msg: "malformed literal"}
		}
	}()
	if n := opt.Limits.MaxBytes; n > 0 && int64(len(text)) > n {
		return nil, &eng.LimitError{Code: "too_large", Path: "/", Message: "max bytes exceeded", Offset: n}
	}
	p := &parser{s: text, mode: opt.NumberMode, limits: opt.Limits}
	return p.top()
}

type syntaxError struct {
	pos int
	msg string
}

func (e *syntaxError) Error() string { return fmt.Sprintf("%s at position %d", e.msg, e.pos) }

type kind uint8

const (
	kindNone kind = iota
	kindBool
	kindInt
	kindFloat
	kindStr
	kindSeq
	kindDict
)

// val is a parsed value plus what is needed to use it as a dict key or set
// member.
type val struct {
	v    any
	kind kind
	// key is the rendering json.dumps gives a scalar used as an object key.
	key string
}

func (x val) scalar() bool { return x.kind != kindSeq && x.kind != kindDict }

type parser struct {
	s      string
	i      int
	mode   eng.NumberMode
	limits eng.Limits
	depth  int
	path   string // JSON Pointer of the value being parsed
}

func (p *parser) limit(code, path, msg string, off int) error {
	if path == "" {
		path = "/"
	}
	return &eng.LimitError{Code: code, Path: path, Message: msg, Offset: int64(off)}
}

// at parses a value whose pointer is path.
func (p *parser) at(path string) (val, error) {
	saved := p.path
	p.path = path
	defer func() { p.path = saved }()
	return p.value()
}

func (p *parser) fail(format string, args ...any) error {
	return &syntaxError{pos: p.i, msg: fmt.Sprintf(format, args...)}
}

func (p *parser) top() (any, error) {
	p.space()
	if p.i >= len(p.s) {
		return nil, p.fail("empty input")
	}
	first, err := p.value()
	if err != nil {
		return nil, err
	}
	p.space()
	if p.i < len(p.s) && p.s[p.i] == ',' {
		// bare tuple: 1, 2
		items := []any{first.v}
		for p.i < len(p.s) && p.s[p.i] == ',' {
			p.i++
			p.space()
			if p.i >= len(p.s) {
				break
			}
			x, err := p.at(eng.Pointer("", strconv.Itoa(len(items))))
			if err != nil {
				return nil, err
			}
			items = append(items, x.v)
			p.space()
		}
		first = val{v: items, kind: kindSeq}
	}
	if p.i != len(p.s) {
		return nil, p.fail("unexpected %q after value", p.s[p.i])
	}
	return first.v, nil
}

// space skips whitespace, line continuations and # comments.
func (p *parser) space() {
	for p.i < len(p.s) {
		switch c := p.s[p.i]; c {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			p.i++
		case '\\':
			if strings.HasPrefix(p.s[p.i:], "\\\n") {
				p.i += 2
			} else if strings.HasPrefix(p.s[p.i:], "\\\r\n") {
				p.i += 3
			} else {
				return
			}
		case '#':
			for p.i < len(p.s) && p.s[p.i] != '\n' {
				p.i++
			}
		default:
			return
		}
	}
}

func (p *parser) value() (val, error) {
	if p.i >= len(p.s) {
		return val{}, p.fail("unexpected end of input")
	}
	switch c := p.s[p.i]; {
	case c == '{':
		return p.braces()
	case c == '[':
		return p.sequence('[', ']')
	case c == '(':
		return p.sequence('(', ')')
	case c == '\'' || c == '"':
		return p.stringLit()
	case c == '+' || c == '-':
		neg := c == '-'
		p.i++
		p.space()
		if p.i >= len(p.s) || !(isDigit(p.s[p.i]) || p.s[p.i] == '.') {
			return val{}, p.fail("sign must precede a number")
		}
		return p.number(neg)
	case isDigit(c) || c == '.':
		return p.number(false)
	case isIdentStart(c):
		if p.atStringPrefix() {
			return p.stringLit()
		}
		return p.name()
	default:
		return val{}, p.fail("unexpected %q", c)
	}
}

func (p *parser) enter() error {
	p.depth++
	if p.limits.MaxNesting > 0 && p.depth > p.limits.MaxNesting {
		return p.limit("too_deep", p.path, "max nesting exceeded", p.i)
	}
	if p.depth > maxNesting {
		return p.fail("nesting exceeds %d", maxNesting)
	}
	return nil
}

// sequence parses a list or a tuple. A parenthesized single value without a
// trailing comma is that value, not a tuple.
func (p *parser) sequence(open, close byte) (val, error) {
	if err := p.enter(); err != nil {
		return val{}, err
	}
	defer func() { p.depth-- }()
	p.i++
	items := []any{}
	var only val
	comma := false
	for {
		p.space()
		if p.i >= len(p.s) {
			return val{}, p.fail("unterminated %q", open)
		}
		if p.s[p.i] == close {
			p.i++
			break
		}
		x, err := p.at(eng.Pointer(p.path, strconv.Itoa(len(items))))
		if err != nil {
			return val{}, err
		}
		items = append(items, x.v)
		only = x
		p.space()
		if p.i < len(p.s) && p.s[p.i] == ',' {
			comma = true
			p.i++
			continue
		}
		if p.i < len(p.s) && p.s[p.i] == close {
			p.i++
			break
		}
		return val{}, p.fail("expected ',' or %q", close)
	}
	if open == '(' && len(items) == 1 && !comma {
		return only, nil
	}
	return val{v: items, kind: kindSeq}, nil
}

// braces parses a dict, or a set when the first member is not followed by a
// colon. Sets become lists without duplicate scalars.
func (p *parser) braces() (val, error) {
	if err := p.enter(); err != nil {
		return val{}, err
	}
	defer func() { p.depth-- }()
	p.i++
	p.space()
	if p.i < len(p.s) && p.s[p.i] == '}' {
		p.i++
		return val{v: map[string]any{}, kind: kindDict}, nil
	}
	keyAt := p.i
	first, err := p.at(eng.Pointer(p.path, "0"))
	if err != nil {
		return val{}, err
	}
	p.space()
	if p.i < len(p.s) && p.s[p.i] == ':' {
		return p.dict(first, keyAt)
	}
	return p.set(first)
}

func (p *parser) dict(firstKey val, keyAt int) (val, error) {
	out := map[string]any{}
	key := firstKey
	for {
		if !key.scalar() {
			return val{}, p.fail("unusable dict key")
		}
		if _, dup := out[key.key]; dup && p.limits.RejectDuplicateKeys {
			return val{}, p.limit("duplicate_key", eng.Pointer(p.path, key.key), "key '"+key.key+"' duplicated", keyAt)
		}
		p.i++ // ':'
		p.space()
		x, err := p.at(eng.Pointer(p.path, key.key))
		if err != nil {
			return val{}, err
		}
		out[key.key] = x.v
		p.space()
		if p.i >= len(p.s) {
			return val{}, p.fail("unterminated '{'")
		}
		switch p.s[p.i] {
		case '}':
			p.i++
			return val{v: out, kind: kindDict}, nil
		case ',':
			p.i++
		default:
			return val{}, p.fail("expected ',' or '}'")
		}
		p.space()
		if p.i < len(p.s) && p.s[p.i] == '}' {
			p.i++
			return val{v: out, kind: kindDict}, nil
		}
		keyAt = p.i
		if key, err = p.value(); err != nil {
			return val{}, err
		}
		p.space()
		if p.i >= len(p.s) || p.s[p.i] != ':' {
			return val{}, p.fail("expected ':'")
		}
	}
}

type member struct {
	kind kind
	key  string
}

func (p *parser) set(first val) (val, error) {
	items := []any{}
	seen := map[member]bool{}
	add := func(x val) {
		if x.scalar() {
			m := member{x.kind, x.key}
			if seen[m] {
				return
			}
			seen[m] = true
		}
		items = append(items, x.v)
	}
	add(first)
	for {
		if p.i >= len(p.s) {
			return val{}, p.fail("unterminated '{'")
		}
		switch p.s[p.i] {
		case '}':
			p.i++
			return val{v: items, kind: kindSeq}, nil
		case ',':
			p.i++
		default:
			return val{}, p.fail("expected ',' or '}'")
		}
		p.space()
		if p.i < len(p.s) && p.s[p.i] == '}' {
			p.i++
			return val{v: items, kind: kindSeq}, nil
		}
		x, err := p.at(eng.Pointer(p.path, strconv.Itoa(len(items))))
		if err != nil {
			return val{}, err
		}
		add(x)
		p.space()
	}
}

func (p *parser) name() (val, error) {
	start := p.i
	for p.i < len(p.s) && isIdent(p.s[p.i]) {
		p.i++
	}
	switch word := p.s[start:p.i]; word {
	case "True", "true":
		return val{v: true, kind: kindBool, key: "true"}, nil
	case "False", "false":
		return val{v: false, kind: kindBool, key: "false"}, nil
	case "None", "null":
		return val{v: nil, kind: kindNone, key: "null"}, nil
	default:
		p.i = start
		return val{}, p.fail("unknown name %q", word)
	}
}

// number parses an int or float literal. Underscores may separate digits.
func (p *parser) number(neg bool) (val, error) {
	var (
		text  string
		float bool
	)
	if p.s[p.i] == '0' && p.i+1 < len(p.s) && strings.IndexByte("xXoObB", p.s[p.i+1]) >= 0 {
		base := map[byte]int{'x': 16, 'o': 8, 'b': 2}[p.s[p.i+1]|0x20]
		p.i += 2
		if p.i < len(p.s) && p.s[p.i] == '_' {
			p.i++
		}
		digits := p.digits(func(c byte) bool { return digitValue(c) < base })
		n, ok := new(big.Int).SetString(digits, base)
		if !ok {
			return val{}, p.fail("malformed base-%d literal", base)
		}
		text = n.String()
	} else {
		intPart := p.digits(isDigit)
		var b strings.Builder
		b.WriteString(intPart)
		if p.i < len(p.s) && p.s[p.i] == '.' {
			float = true
			p.i++
			frac := p.digits(isDigit)
			if intPart == "" && frac == "" {
				return val{}, p.fail("malformed number")
			}
			b.WriteByte('.')
			b.WriteString(frac)
		}
		if p.i < len(p.s) && p.s[p.i]|0x20 == 'e' {
			float = true
			p.i++
			b.WriteByte('e')
			if p.i < len(p.s) && (p.s[p.i] == '+' || p.s[p.i] == '-') {
				b.WriteByte(p.s[p.i])
				p.i++
			}
			exp := p.digits(isDigit)
			if exp == "" {
				return val{}, p.fail("malformed exponent")
			}
			b.WriteString(exp)
		}
		text = b.String()
		if !float && len(text) > 1 && text[0] == '0' && strings.Trim(text, "0") != "" {
			return val{}, p.fail("leading zeros in decimal integer")
		}
		if !float {
			if text = strings.TrimLeft(text, "0"); text == "" {
				text = "0"
			}
		}
	}
	if p.i < len(p.s) && isIdent(p.s[p.i]) {
		return val{}, p.fail("unexpected %q in number", p.s[p.i])
	}

	if float {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return val{}, p.fail("float out of range")
		}
		if neg {
			f = -f
		}
		text = formatFloat(f)
	} else if neg && text != "0" {
		text = "-" + text
	}
	v, err := eng.ConvertNumber(text, p.mode)
	if err != nil {
		return val{}, p.fail("number out of range")
	}
	k := kindInt
	if float {
		k = kindFloat
	}
	return val{v: v, kind: k, key: text}, nil
}

// digits consumes a run of digits accepted by valid, dropping single
// underscores placed between two digits.
func (p *parser) digits(valid func(byte) bool) string {
	var b strings.Builder
	for p.i < len(p.s) {
		c := p.s[p.i]
		if valid(c) {
			b.WriteByte(c)
			p.i++
			continue
		}
		if c == '_' && b.Len() > 0 && p.i+1 < len(p.s) && valid(p.s[p.i+1]) {
			p.i++
			continue
		}
		break
	}
	return b.String()
}

// formatFloat renders f the way Python's repr does: positional notation for
// exponents in [-4, 16) with at least one fractional digit, scientific
// otherwise.
func formatFloat(f float64) string {
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return sci
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

func isDigit(c byte) bool      { return '0' <= c && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || 'a' <= c|0x20 && c|0x20 <= 'z' }
func isIdent(c byte) bool      { return isIdentStart(c) || isDigit(c) }

func digitValue(c byte) int {
	switch {
	case isDigit(c):
		return int(c - '0')
	case 'a' <= c|0x20 && c|0x20 <= 'f':
		return int(c|0x20-'a') + 10
	}
	return 99
}
