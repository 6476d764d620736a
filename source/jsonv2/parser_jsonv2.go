//go:build jsonv2

package jsonv2

import (
	v2json "encoding/json/v2"

	eng "github.com/reoring/jsonmend/internal/engine"
	jsonsrc "github.com/reoring/jsonmend/source/json"
)

// Parser decodes with encoding/json/v2 and re-diagnoses failures through the
// encoding/json tokenizer, whose wording the repair classifier knows.
// Note: Requires building with -tags jsonv2 and GOEXPERIMENT=jsonv2.
type Parser struct {
	opt    jsonsrc.Options
	strict *jsonsrc.Parser
}

// New returns a parser backed by encoding/json/v2.
func New(opt jsonsrc.Options) *Parser {
	return &Parser{opt: opt, strict: jsonsrc.New(opt)}
}

func (p *Parser) Name() string { return "encoding/json/v2" }

// Available reports whether the encoding/json/v2 backend is compiled in.
func Available() bool { return true }

func (p *Parser) Parse(text string) (any, error) {
	if p.opt.NumberMode != eng.NumberFloat64 || p.opt.Limits.Enabled() {
		return p.strict.Parse(text)
	}
	var v any
	// v2 also rejects duplicate names and invalid UTF-8; the strict parser
	// decides those.
	if err := v2json.Unmarshal([]byte(text), &v); err == nil {
		return v, nil
	}
	return p.strict.Parse(text)
}
