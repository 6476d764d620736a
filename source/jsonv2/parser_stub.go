//go:build !jsonv2

package jsonv2

import (
	jsonsrc "github.com/reoring/jsonmend/source/json"
)

// Parser is a fallback when the jsonv2 build tag is not enabled.
// It delegates to the encoding/json tokenizer.
type Parser struct {
	strict *jsonsrc.Parser
}

// New returns the fallback parser.
func New(opt jsonsrc.Options) *Parser { return &Parser{strict: jsonsrc.New(opt)} }

func (p *Parser) Name() string { return "encoding/json (jsonv2 stub)" }

// Available reports whether the encoding/json/v2 backend is compiled in.
func Available() bool { return false }

func (p *Parser) Parse(text string) (any, error) { return p.strict.Parse(text) }
