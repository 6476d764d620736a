package jsonmend

import (
	"errors"
	"fmt"
	"strings"

	eng "github.com/reoring/jsonmend/internal/engine"
)

// Issue codes. Parse failures use the code of their Kind; limit violations
// use the limit's code.
const (
	CodeMissingMemberName          = "missing_member_name"
	CodeInvalidValue               = "invalid_value"
	CodeMissingCommaOrBrace        = "missing_comma_or_brace"
	CodeUnexpectedControlCharacter = "unexpected_control_character"
	CodeParseError                 = "parse_error" // unrecognized category
	CodeDuplicateKey               = "duplicate_key"
	CodeTooDeep                    = "too_deep"
	CodeTooLarge                   = "too_large"
)

// ErrNilCause is reported when a repair is requested without the error of
// the failed parse.
var ErrNilCause = errors.New("jsonmend: nil cause")

// DecodeError is the failure of the built-in strict parsers: the decoder's
// message and the byte offset (-1 when unknown).
type DecodeError = eng.DecodeError

// LimitError is a strictness violation (duplicate key, nesting, size).
type LimitError = eng.LimitError

// Issue describes input that could not be repaired.
type Issue struct {
	Path    string `json:"path,omitempty"` // JSON Pointer, set for limit violations.
	Code    string `json:"code"`           // One of the codes listed above.
	Message string `json:"message"`        // Decoder message.
	Hint    string `json:"hint,omitempty"` // Localized description of Code.
	Cause   error  `json:"-"`
	Offset  int64  `json:"offset"` // Byte offset in the input (-1 when unknown).
	// InputFragment is the text around Offset, at most 10 bytes on each side.
	InputFragment string `json:"fragment,omitempty"`
	// Params carries structured parameters (e.g., {"status":"exhausted",
	// "attempts":20}) for i18n and observability.
	Params map[string]any `json:"params,omitempty"`
}

// Issues is a collection of Issue that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_value at offset 9
		switch {
		case it.Path != "":
			fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		case it.Offset >= 0:
			fmt.Fprintf(b, "%s at offset %d", it.Code, it.Offset)
		default:
			b.WriteString(it.Code)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
