// Package json is the default strict parser, built on the encoding/json
// tokenizer. Its error wording is the one the repair classifier understands.
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	eng "github.com/reoring/jsonmend/internal/engine"
)

// Options configures the strict parser.
type Options struct {
	NumberMode eng.NumberMode
	Limits     eng.Limits
}

// Parser strictly parses a whole JSON text.
type Parser struct{ opt Options }

// New returns a strict encoding/json-backed parser.
func New(opt Options) *Parser { return &Parser{opt: opt} }

func (p *Parser) Name() string { return "encoding/json" }

// Parse decodes exactly one JSON value from text. Failures are
// *engine.DecodeError (syntax) or *engine.LimitError (strictness).
func (p *Parser) Parse(text string) (any, error) {
	src := eng.Enforce(NewReader(strings.NewReader(text)), p.opt.Limits)
	v, err := eng.DecodeValue(src, p.opt.NumberMode)
	if err != nil {
		return nil, eng.AsDecodeError(err, src.Location())
	}
	if err := trailing(text, src.Location()); err != nil {
		return nil, err
	}
	return v, nil
}

// trailing rejects anything but whitespace after the top-level value.
func trailing(text string, off int64) error {
	if off < 0 || off > int64(len(text)) {
		return nil
	}
	rest := text[off:]
	trimmed := strings.TrimLeft(rest, " \t\r\n")
	if trimmed == "" {
		return nil
	}
	r, _ := utf8.DecodeRuneInString(trimmed)
	return &eng.DecodeError{
		Msg:    "invalid character " + quoteChar(r) + " after top-level value",
		Offset: off + int64(len(rest)-len(trimmed)),
	}
}

// quoteChar formats r the way encoding/json does in its syntax errors.
func quoteChar(r rune) string {
	if r == '\'' {
		return `'\''`
	}
	if r == '"' {
		return `'"'`
	}
	s := strconv.Quote(string(r))
	return "'" + s[1:len(s)-1] + "'"
}

type frame struct {
	object       bool
	expectingKey bool
	fresh        bool // object with no key read yet
}

type source struct {
	dec        *json.Decoder
	stack      []frame
	lastOffset int64
}

// NewReader wraps r into an engine.TokenSource. Numbers are kept as text.
func NewReader(r io.Reader) eng.TokenSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &source{dec: dec, lastOffset: -1}
}

// NewBytes wraps b into an engine.TokenSource.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, s.explain(err)
	}
	s.lastOffset = s.dec.InputOffset()

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{object: true, expectingKey: true, fresh: true})
			return s.token(eng.Token{Kind: eng.KindBeginObject}), nil
		case '[':
			s.stack = append(s.stack, frame{})
			return s.token(eng.Token{Kind: eng.KindBeginArray}), nil
		case '}':
			s.pop()
			return s.token(eng.Token{Kind: eng.KindEndObject}), nil
		default:
			s.pop()
			return s.token(eng.Token{Kind: eng.KindEndArray}), nil
		}
	case string:
		if n := len(s.stack); n > 0 && s.stack[n-1].object && s.stack[n-1].expectingKey {
			s.stack[n-1].expectingKey = false
			s.stack[n-1].fresh = false
			return s.token(eng.Token{Kind: eng.KindKey, String: v}), nil
		}
		s.valueDone()
		return s.token(eng.Token{Kind: eng.KindString, String: v}), nil
	case bool:
		s.valueDone()
		return s.token(eng.Token{Kind: eng.KindBool, Bool: v}), nil
	case json.Number:
		s.valueDone()
		return s.token(eng.Token{Kind: eng.KindNumber, Number: string(v)}), nil
	case float64:
		s.valueDone()
		return s.token(eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64)}), nil
	}
	s.valueDone()
	return s.token(eng.Token{Kind: eng.KindNull}), nil
}

// explain adds the context encoding/json omits when the first member of an
// object does not start with a quote, as in {'a': 1} or {a: 1}.
func (s *source) explain(err error) error {
	var se *json.SyntaxError
	n := len(s.stack)
	if !errors.As(err, &se) || n == 0 || !s.stack[n-1].fresh || !strings.HasSuffix(se.Error(), "'") {
		return err
	}
	return &eng.DecodeError{Msg: se.Error() + " looking for beginning of object key string", Offset: se.Offset}
}

func (s *source) token(t eng.Token) eng.Token {
	t.Offset = s.lastOffset
	return t
}

func (s *source) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.valueDone()
}

// valueDone marks the enclosing object as waiting for its next key.
func (s *source) valueDone() {
	if n := len(s.stack); n > 0 && s.stack[n-1].object {
		s.stack[n-1].expectingKey = true
	}
}

func (s *source) Location() int64 { return s.lastOffset }
