package engine

import (
	"strconv"
	"strings"
)

// Limits configures the strictness applied on top of a tokenizer.
type Limits struct {
	// RejectDuplicateKeys fails on the second occurrence of a key within one object.
	RejectDuplicateKeys bool
	// MaxNesting caps container nesting; 0 disables the check.
	MaxNesting int
	// MaxBytes caps consumed input; 0 disables the check.
	MaxBytes int64
}

// Enabled reports whether any limit is active.
func (l Limits) Enabled() bool {
	return l.RejectDuplicateKeys || l.MaxNesting > 0 || l.MaxBytes > 0
}

// LimitError reports a strictness violation. It is not a syntax error; the
// repairer stops on it instead of classifying its message.
type LimitError struct {
	Code    string // duplicate_key, too_deep, too_large
	Path    string // JSON Pointer of the offending location
	Message string
	Offset  int64
}

func (e *LimitError) Error() string {
	return e.Message + " at " + e.Path
}

type frame struct {
	object    bool
	keys      map[string]struct{}
	path      string
	nextIndex int
	key       string
}

// Enforce wraps inner so that every token is checked against l.
func Enforce(inner TokenSource, l Limits) TokenSource {
	if !l.Enabled() {
		return inner
	}
	return &enforcer{inner: inner, limits: l}
}

type enforcer struct {
	inner  TokenSource
	limits Limits
	stack  []frame
}

func (e *enforcer) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	var p string
	switch tok.Kind {
	case KindBeginObject, KindBeginArray, KindString, KindNumber, KindBool, KindNull:
		p = e.valuePath()
	}
	if e.limits.MaxBytes > 0 && tok.Offset > e.limits.MaxBytes {
		return Token{}, e.fail("too_large", p, "max bytes exceeded", tok.Offset)
	}

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		f := frame{object: tok.Kind == KindBeginObject, path: p}
		if f.object {
			f.keys = make(map[string]struct{})
		}
		e.stack = append(e.stack, f)
		if e.limits.MaxNesting > 0 && len(e.stack) > e.limits.MaxNesting {
			return Token{}, e.fail("too_deep", p, "max nesting exceeded", tok.Offset)
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if _, dup := top.keys[tok.String]; dup && e.limits.RejectDuplicateKeys {
				return Token{}, e.fail("duplicate_key", Pointer(top.path, tok.String), "key '"+tok.String+"' duplicated", tok.Offset)
			}
			top.keys[tok.String] = struct{}{}
			top.key = tok.String
		}
	}
	return tok, nil
}

// valuePath returns the pointer of the value about to be produced and
// advances array indexes.
func (e *enforcer) valuePath() string {
	n := len(e.stack)
	if n == 0 {
		return ""
	}
	top := &e.stack[n-1]
	if top.object {
		return Pointer(top.path, top.key)
	}
	p := Pointer(top.path, strconv.Itoa(top.nextIndex))
	top.nextIndex++
	return p
}

func (e *enforcer) fail(code, path, msg string, off int64) error {
	if path == "" {
		path = "/"
	}
	return &LimitError{Code: code, Path: path, Message: msg, Offset: off}
}

func (e *enforcer) Location() int64 { return e.inner.Location() }

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// Pointer appends token to the JSON Pointer base, escaping it.
func Pointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}
