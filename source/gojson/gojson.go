// Package gojson is a strict parser backed by goccy/go-json. Valid input takes
// the fast path; failures are re-diagnosed through the encoding/json
// tokenizer so error wording stays the one the repair classifier knows.
package gojson

import (
	j "github.com/goccy/go-json"

	eng "github.com/reoring/jsonmend/internal/engine"
	jsonsrc "github.com/reoring/jsonmend/source/json"
)

// Parser decodes with go-json and falls back to the encoding/json tokenizer
// for diagnostics, number-preserving mode and strictness limits.
type Parser struct {
	opt    jsonsrc.Options
	strict *jsonsrc.Parser
}

// New returns a go-json backed strict parser.
func New(opt jsonsrc.Options) *Parser {
	return &Parser{opt: opt, strict: jsonsrc.New(opt)}
}

func (p *Parser) Name() string { return "go-json" }

func (p *Parser) Parse(text string) (any, error) {
	if p.opt.NumberMode != eng.NumberFloat64 || p.opt.Limits.Enabled() {
		return p.strict.Parse(text)
	}
	var v any
	if err := j.Unmarshal([]byte(text), &v); err == nil {
		return v, nil
	}
	return p.strict.Parse(text)
}
