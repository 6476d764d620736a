package literal

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// atStringPrefix reports a string prefix (r, u, b, br, rb in any case)
// immediately followed by a quote.
func (p *parser) atStringPrefix() bool {
	n := 0
	for n < 2 && p.i+n < len(p.s) && strings.IndexByte("rRuUbB", p.s[p.i+n]) >= 0 {
		n++
	}
	if n == 0 || p.i+n >= len(p.s) {
		return false
	}
	if q := p.s[p.i+n]; q != '\'' && q != '"' {
		return false
	}
	switch strings.ToLower(p.s[p.i : p.i+n]) {
	case "r", "u", "b", "br", "rb":
		return true
	}
	return false
}

// stringLit parses one or more adjacent string literals and concatenates them.
func (p *parser) stringLit() (val, error) {
	var b strings.Builder
	for {
		if err := p.str(&b); err != nil {
			return val{}, err
		}
		save := p.i
		p.space()
		if p.i < len(p.s) && (p.s[p.i] == '\'' || p.s[p.i] == '"' || p.atStringPrefix()) {
			continue
		}
		p.i = save
		s := b.String()
		return val{v: s, kind: kindStr, key: s}, nil
	}
}

func (p *parser) str(b *strings.Builder) error {
	raw := false
	for p.s[p.i] != '\'' && p.s[p.i] != '"' {
		if p.s[p.i]|0x20 == 'r' {
			raw = true
		}
		p.i++
	}
	delim := p.s[p.i : p.i+1]
	if strings.HasPrefix(p.s[p.i:], strings.Repeat(delim, 3)) {
		delim = strings.Repeat(delim, 3)
	}
	p.i += len(delim)
	for {
		if p.i >= len(p.s) {
			return p.fail("unterminated string")
		}
		c := p.s[p.i]
		switch {
		case strings.HasPrefix(p.s[p.i:], delim):
			p.i += len(delim)
			return nil
		case c == '\n' && len(delim) == 1:
			return p.fail("newline in single-quoted string")
		case c == '\\' && raw:
			// the backslash stays but still shields the next byte
			b.WriteByte(c)
			p.i++
			if p.i < len(p.s) {
				b.WriteByte(p.s[p.i])
				p.i++
			}
		case c == '\\':
			if err := p.escape(b); err != nil {
				return err
			}
		default:
			b.WriteByte(c)
			p.i++
		}
	}
}

var simpleEscapes = map[byte]string{
	'\\': "\\", '\'': "'", '"': "\"",
	'a': "\a", 'b': "\b", 'f': "\f", 'n': "\n", 'r': "\r", 't': "\t", 'v': "\v",
	'\n': "",
}

// escape decodes the escape sequence at p.i. Unknown escapes are kept
// verbatim, backslash included.
func (p *parser) escape(b *strings.Builder) error {
	p.i++ // '\\'
	if p.i >= len(p.s) {
		return p.fail("unterminated string")
	}
	c := p.s[p.i]
	if s, ok := simpleEscapes[c]; ok {
		b.WriteString(s)
		p.i++
		return nil
	}
	switch c {
	case '\r':
		p.i++
		if p.i < len(p.s) && p.s[p.i] == '\n' {
			p.i++
		}
		return nil
	case '0', '1', '2', '3', '4', '5', '6', '7':
		end := p.i
		for end < len(p.s) && end-p.i < 3 && '0' <= p.s[end] && p.s[end] <= '7' {
			end++
		}
		n, _ := strconv.ParseUint(p.s[p.i:end], 8, 32)
		b.WriteRune(rune(n))
		p.i = end
		return nil
	case 'x', 'u', 'U':
		width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[c]
		if p.i+1+width > len(p.s) {
			return p.fail("truncated \\%c escape", c)
		}
		n, err := strconv.ParseUint(p.s[p.i+1:p.i+1+width], 16, 32)
		if err != nil || n > utf8.MaxRune {
			return p.fail("invalid \\%c escape", c)
		}
		b.WriteRune(rune(n))
		p.i += 1 + width
		return nil
	case 'N':
		return p.fail("named unicode escapes are not supported")
	}
	b.WriteByte('\\')
	return nil
}
