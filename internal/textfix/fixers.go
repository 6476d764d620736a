package textfix

import "strings"

// FixUnquotedKeys wraps every unquoted or single-quoted key in double quotes.
func FixUnquotedKeys(text string) string {
	return unquotedKey.replaceAll(text, func(s string, loc []int) string {
		key := group(s, loc, 2)
		if key == "" {
			key = group(s, loc, 3)
		}
		return `"` + key + `"`
	})
}

// FixSingleQuotedValues turns 'v' into "v", escaping bare double quotes
// inside v.
func FixSingleQuotedValues(text string) string {
	return singleQuotedValue.replaceAll(text, func(s string, loc []int) string {
		return `"` + escapeBareQuotes(group(s, loc, 2)) + `"`
	})
}

// FixDoubleDoubleQuotes collapses every "" into ".
func FixDoubleDoubleQuotes(text string) string {
	return strings.ReplaceAll(text, `""`, `"`)
}

// FixNonEscapedDoubleQuote escapes the quote splitting one string in two.
func FixNonEscapedDoubleQuote(text string) string {
	return nonEscapedQuote.replaceAll(text, func(s string, loc []int) string {
		return group(s, loc, 2) + `\"` + group(s, loc, 3)
	})
}

var controlChars = strings.NewReplacer(
	"\n", " ",
	"\r", " ",
	"\t", " ",
	"\f", " ",
	"\v", " ",
	"\a", " ",
)

// FixControlCharacters replaces raw newline, carriage return, tab, form feed,
// vertical tab and bell characters with a space.
func FixControlCharacters(text string) string { return controlChars.Replace(text) }

// escapeBareQuotes prefixes every double quote not already escaped with a
// backslash.
func escapeBareQuotes(s string) string {
	if !strings.Contains(s, `"`) {
		return s
	}
	var b strings.Builder
	backslashes := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' && backslashes%2 == 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
		if c == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
	}
	return b.String()
}
