package jsonmend

import "github.com/reoring/jsonmend/internal/textfix"

// step is one evaluator/fixer pair. A nil detect always applies.
type step struct {
	fix    Fix
	detect func(string) bool
	apply  func(string) string
}

// repairCase is what a Kind tries, in order: the literal fallback when
// literalFirst, then the first step whose detector matches.
type repairCase struct {
	kind         Kind
	literalFirst bool
	steps        []step
}

var cases = map[Kind]repairCase{
	KindMissingMemberName: {
		kind:         KindMissingMemberName,
		literalFirst: true,
		steps: []step{
			{FixUnquotedKeys, textfix.HasUnquotedKeys, textfix.FixUnquotedKeys},
		},
	},
	KindInvalidValue: {
		kind:         KindInvalidValue,
		literalFirst: true,
		steps: []step{
			{FixSingleQuotedValues, textfix.HasSingleQuotedValues, textfix.FixSingleQuotedValues},
		},
	},
	KindMissingCommaOrBrace: {
		kind: KindMissingCommaOrBrace,
		steps: []step{
			{FixDoubleDoubleQuotes, textfix.HasDoubleDoubleQuotes, textfix.FixDoubleDoubleQuotes},
			{FixNonEscapedDoubleQuote, textfix.HasNonEscapedDoubleQuote, textfix.FixNonEscapedDoubleQuote},
		},
	},
	KindUnexpectedControlCharacter: {
		kind: KindUnexpectedControlCharacter,
		steps: []step{
			{FixControlCharacters, nil, textfix.FixControlCharacters},
		},
	},
}

// pick returns the first step whose detector matches text.
func (c repairCase) pick(text string) (step, bool) {
	for _, s := range c.steps {
		if s.detect == nil || s.detect(text) {
			return s, true
		}
	}
	return step{}, false
}
