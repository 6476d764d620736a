package jsonmend

import (
	"errors"
	"fmt"
	"sync"

	"github.com/reoring/jsonmend/source/gojson"
	jsonsrc "github.com/reoring/jsonmend/source/json"
	"github.com/reoring/jsonmend/source/jsonv2"
)

// Parser is the strict parse collaborator. Parse decodes exactly one JSON
// value; on malformed input the error message carries the decoder's category
// phrase, which Classify depends on.
type Parser interface {
	Parse(text string) (any, error)
	Name() string
}

// Built-in parser names.
const (
	ParserEncodingJSON = "encoding/json"
	ParserGoJSON       = "go-json"
	// ParserJSONv2 uses encoding/json/v2 when built with -tags jsonv2 and
	// GOEXPERIMENT=jsonv2, and the encoding/json tokenizer otherwise.
	ParserJSONv2 = "encoding/json/v2"
)

// ErrUnknownParser is returned by NewParser and SetDefaultParser for names
// other than the built-in ones.
var ErrUnknownParser = errors.New("jsonmend: unknown parser")

// NewParser builds a built-in strict parser by name. An empty name selects
// the current default.
func NewParser(name string, opt ParseOptions) (Parser, error) {
	if name == "" {
		name = DefaultParserName()
	}
	so := jsonsrc.Options{NumberMode: opt.NumberMode, Limits: opt.limits()}
	switch name {
	case ParserEncodingJSON:
		return jsonsrc.New(so), nil
	case ParserGoJSON:
		return gojson.New(so), nil
	case ParserJSONv2:
		return jsonv2.New(so), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownParser, name)
}

var (
	parserMu          sync.RWMutex
	defaultParserName = ParserEncodingJSON
)

// SetDefaultParser selects the built-in parser New uses when no WithParser
// option is given. Repairers already built keep their parser.
func SetDefaultParser(name string) error {
	switch name {
	case ParserEncodingJSON, ParserGoJSON, ParserJSONv2:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParser, name)
	}
	parserMu.Lock()
	defaultParserName = name
	parserMu.Unlock()
	return nil
}

// UseDefaultParser restores the encoding/json-backed parser.
func UseDefaultParser() {
	parserMu.Lock()
	defaultParserName = ParserEncodingJSON
	parserMu.Unlock()
}

// DefaultParserName reports the parser New falls back to.
func DefaultParserName() string {
	parserMu.RLock()
	defer parserMu.RUnlock()
	return defaultParserName
}
