package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// DecodeError is the structured failure of a strict parse. Msg keeps the
// decoder's own wording because classification depends on it.
type DecodeError struct {
	Msg    string
	Offset int64 // byte offset, -1 when unknown
}

func (e *DecodeError) Error() string {
	if e.Offset < 0 {
		return "parse error: " + e.Msg
	}
	return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Msg)
}

// MsgUnexpectedEnd is reported when the input ends inside a value.
const MsgUnexpectedEnd = "unexpected end of JSON input"

// AsDecodeError normalizes tokenizer failures into *DecodeError. Limit
// violations and already normalized errors pass through unchanged.
func AsDecodeError(err error, offset int64) error {
	if err == nil {
		return nil
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return de
	}
	var le *LimitError
	if errors.As(err, &le) {
		return le
	}
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return &DecodeError{Msg: se.Error(), Offset: se.Offset}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &DecodeError{Msg: MsgUnexpectedEnd, Offset: offset}
	}
	return &DecodeError{Msg: err.Error(), Offset: offset}
}
