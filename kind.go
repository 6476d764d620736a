package jsonmend

import "strings"

// Kind is the category of a strict parse failure.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindMissingMemberName
	KindInvalidValue
	KindMissingCommaOrBrace
	KindUnexpectedControlCharacter
)

// Code returns the Issue code of k.
func (k Kind) Code() string {
	switch k {
	case KindMissingMemberName:
		return CodeMissingMemberName
	case KindInvalidValue:
		return CodeInvalidValue
	case KindMissingCommaOrBrace:
		return CodeMissingCommaOrBrace
	case KindUnexpectedControlCharacter:
		return CodeUnexpectedControlCharacter
	}
	return CodeParseError
}

func (k Kind) String() string {
	if k == KindUnrecognized {
		return "unrecognized"
	}
	return k.Code()
}

// phrases maps decoder wording to a Kind; the first contained phrase wins.
// The first four are the canonical rapidjson/orjson phrasings, the rest the
// encoding/json ones produced by source/json. "after object key" must stay
// behind "after object key:value pair".
var phrases = []struct {
	phrase string
	kind   Kind
}{
	{"Missing a name for object member", KindMissingMemberName},
	{"Invalid value", KindInvalidValue},
	{"Missing a comma or '}' after an object member", KindMissingCommaOrBrace},
	{"unexpected control character in string", KindUnexpectedControlCharacter},

	{"looking for beginning of object key string", KindMissingMemberName},
	{"looking for beginning of value", KindInvalidValue},
	{"after object key:value pair", KindMissingCommaOrBrace},
	{"after object key", KindMissingCommaOrBrace},
	{"in string literal", KindUnexpectedControlCharacter},
}

// Classify maps a decoder error message to its Kind by substring
// containment. Unknown wording yields KindUnrecognized.
func Classify(msg string) Kind {
	for _, p := range phrases {
		if strings.Contains(msg, p.phrase) {
			return p.kind
		}
	}
	return KindUnrecognized
}
