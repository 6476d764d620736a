package textfix

import (
	"regexp"
	"strings"
)

var (
	// A key after '{', ',' or a space and before ':' plus space or quote.
	// Bare keys stop at whitespace and structural characters so a greedy run
	// never swallows preceding members. Text inside string values is skipped.
	unquotedKey = contextPattern{
		left:           afterAny("{, "),
		body:           regexp.MustCompile(`^('([^'"]+)'|([^'"{}\[\],:\s]+)):[ "']`),
		outsideStrings: true,
	}

	// A single-quoted value after ':' (optionally spaced) or '[' and before
	// ',', '}', ']' or a space.
	singleQuotedValue = contextPattern{
		left: afterSuffix(": ", ":", "["),
		body: regexp.MustCompile(`^('([^']*)')[,} \]]`),
	}

	// Two quoted fragments glued by a bare quote: "ab"cd" where "abcd" was
	// meant. Group 2 is the head, group 3 the tail. Escaped characters belong
	// to the fragments, so a quote escaped earlier is never escaped twice.
	nonEscapedQuote = contextPattern{
		left: afterAny("{: ,"),
		body: regexp.MustCompile(`^(("(?:[^'"\\]|\\.)*)"((?:[^'"\\]|\\.)*"))[,}: ]`),
	}
)

// HasUnquotedKeys reports an object key without surrounding double quotes.
func HasUnquotedKeys(text string) bool { return unquotedKey.matches(text) }

// HasSingleQuotedValues reports a value delimited by single quotes.
func HasSingleQuotedValues(text string) bool { return singleQuotedValue.matches(text) }

// HasDoubleDoubleQuotes reports two adjacent double quotes anywhere.
func HasDoubleDoubleQuotes(text string) bool { return strings.Contains(text, `""`) }

// HasNonEscapedDoubleQuote reports a string split in two by a bare quote.
func HasNonEscapedDoubleQuote(text string) bool { return nonEscapedQuote.matches(text) }
