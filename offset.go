package jsonmend

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/reoring/jsonmend/i18n"
)

var offsetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`offset (\d+):`),
	regexp.MustCompile(`\(char (\d+)\)`),
}

// ExtractOffset pulls the offset out of a decoder message of the form
// "... offset N: ..." or "... (char N)". The first form is tried first.
func ExtractOffset(msg string) (int, bool) {
	for _, re := range offsetPatterns {
		m := re.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// windowRadius is how many bytes of input Diagnose keeps on each side of the
// offset.
const windowRadius = 10

// Diagnose describes err against text: its code, offset and the input around
// the offset. The result is informational only; repair decisions never read
// it.
func Diagnose(text string, err error) Issue {
	iss := Issue{Code: CodeParseError, Offset: -1, Cause: err}
	if err == nil {
		return iss
	}
	iss.Message = err.Error()

	var le *LimitError
	if errors.As(err, &le) {
		iss.Code, iss.Path, iss.Offset = le.Code, le.Path, le.Offset
	} else {
		iss.Code = Classify(iss.Message).Code()
		iss.Offset = offsetOf(err)
	}
	iss.Hint = i18n.T(iss.Code, nil)
	if iss.Offset >= 0 {
		iss.InputFragment = window(text, int(min(iss.Offset, int64(len(text)))))
	}
	return iss
}

// offsetOf prefers the offset written in the message and falls back to the
// structured one.
func offsetOf(err error) int64 {
	if n, ok := ExtractOffset(err.Error()); ok {
		return int64(n)
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Offset
	}
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return se.Offset
	}
	return -1
}

// window returns text[off-10 : off+10] clamped to the text and shrunk to
// whole UTF-8 sequences.
func window(text string, off int) string {
	lo := max(off-windowRadius, 0)
	hi := min(off+windowRadius, len(text))
	for lo < hi && !utf8.RuneStart(text[lo]) {
		lo++
	}
	for hi > lo && hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi--
	}
	return text[lo:hi]
}
