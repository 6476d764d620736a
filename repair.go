package jsonmend

import (
	"context"
	"errors"

	"github.com/reoring/jsonmend/literal"
)

// MaxDepth is the default bound on fix attempts per repair.
const MaxDepth = 20

// Status is how a Run ended.
type Status int

const (
	StatusRecovered Status = iota // a fix (or the literal fallback) produced a value
	StatusUnhandled               // unrecognized Kind, or no fixer matched
	StatusExhausted               // the depth bound was reached
)

func (s Status) String() string {
	switch s {
	case StatusRecovered:
		return "recovered"
	case StatusUnhandled:
		return "unhandled"
	case StatusExhausted:
		return "exhausted"
	}
	return "unknown"
}

// Outcome is the structured result of a Run.
type Outcome struct {
	Status Status
	Kind   Kind // category of the last failure classified
	Fix    Fix  // fix that produced Value when recovered
	Value  any
	// Depth is the depth of the last attempt made (the start depth when
	// none was made).
	Depth int
	// Attempts counts fixed texts handed to the parser.
	Attempts int
	// Err is the cause the Run started with, unmodified, unless recovered.
	Err error
	// Violation is set when a strictness limit stopped the repair, either on
	// a reparse or in the literal fallback.
	Violation *LimitError
}

// Repairer runs the classify, fix, reparse loop. It is immutable after New
// and safe for concurrent use.
type Repairer struct {
	parser   Parser
	observer Observer
	maxDepth int
	literal  bool
	parseOpt ParseOptions
}

type config struct {
	parser   Parser
	observer Observer
	maxDepth int
	literal  bool
	parseOpt ParseOptions
}

// Option configures a Repairer. Later options win.
type Option func(*config)

// WithParser replaces the strict parser used for reparses and by Loads.
// ParseOptions then only affect the literal fallback.
func WithParser(p Parser) Option { return func(c *config) { c.parser = p } }

// WithObserver installs an event observer (no-op by default).
func WithObserver(o Observer) Option { return func(c *config) { c.observer = o } }

// WithMaxDepth changes the attempt bound; values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithNumberMode selects how numbers are materialized.
func WithNumberMode(m NumberMode) Option { return func(c *config) { c.parseOpt.NumberMode = m } }

// WithLiteralFallback toggles the Python-literal fallback (on by default).
func WithLiteralFallback(on bool) Option { return func(c *config) { c.literal = on } }

// WithParseOptions sets all strict parsing options, NumberMode included.
func WithParseOptions(po ParseOptions) Option { return func(c *config) { c.parseOpt = po } }

// New builds a Repairer. Without WithParser it uses the built-in parser
// selected by SetDefaultParser.
func New(opts ...Option) *Repairer {
	c := config{maxDepth: MaxDepth, literal: true}
	for _, o := range opts {
		if o != nil {
			o(&c)
		}
	}
	if c.parser == nil {
		// built-in names never fail
		c.parser, _ = NewParser(DefaultParserName(), c.parseOpt)
	}
	if c.observer == nil {
		c.observer = nopObserver{}
	}
	return &Repairer{
		parser:   c.parser,
		observer: c.observer,
		maxDepth: c.maxDepth,
		literal:  c.literal,
		parseOpt: c.parseOpt,
	}
}

// Parser returns the strict parser in use.
func (r *Repairer) Parser() Parser { return r.parser }

// Repair recovers the value of text, whose strict parse failed with cause.
// When recovery is impossible the returned error is cause itself.
func (r *Repairer) Repair(ctx context.Context, text string, cause error) (any, error) {
	return r.RepairFrom(ctx, text, cause, 0)
}

// RepairFrom is Repair starting at the given depth, leaving MaxDepth-depth
// attempts. Negative depths count as 0.
func (r *Repairer) RepairFrom(ctx context.Context, text string, cause error, depth int) (any, error) {
	out := r.Run(ctx, text, cause, depth)
	if out.Status != StatusRecovered {
		return nil, out.Err
	}
	return out.Value, nil
}

// Loads strictly parses text and repairs it on failure.
func (r *Repairer) Loads(ctx context.Context, text string) (any, error) {
	v, err := r.parser.Parse(text)
	if err == nil {
		return v, nil
	}
	return r.Repair(ctx, text, err)
}

// Run repairs text and reports how. Exactly one terminal event reaches the
// observer.
func (r *Repairer) Run(ctx context.Context, text string, cause error, depth int) Outcome {
	depth = max(depth, 0)
	var out Outcome
	if cause == nil {
		out = Outcome{Status: StatusUnhandled, Depth: depth, Err: ErrNilCause}
	} else {
		var attempts int
		out = r.attempt(ctx, text, cause, cause, depth, &attempts)
	}
	stage := StageFailing
	if out.Status == StatusRecovered {
		stage = StageSuccess
	}
	r.observer.Observe(ctx, Event{
		Stage: stage, Depth: out.Depth, Kind: out.Kind, Fix: out.Fix, Offset: -1,
		Err: out.Err, Status: out.Status, Attempts: out.Attempts,
	})
	return out
}

// attempt is one pass of the state machine over text, which failed with
// cause. origin is the cause of the whole Run.
func (r *Repairer) attempt(ctx context.Context, text string, cause, origin error, depth int, attempts *int) Outcome {
	if depth >= r.maxDepth {
		return Outcome{Status: StatusExhausted, Depth: depth, Attempts: *attempts, Err: origin}
	}

	iss := Diagnose(text, cause)
	r.observer.Observe(ctx, Event{Stage: StageDiagnosing, Depth: depth, Offset: iss.Offset, Window: iss.InputFragment, Err: cause})

	// limit messages quote input text, so they are never classified
	var le *LimitError
	if errors.As(cause, &le) {
		return Outcome{Status: StatusUnhandled, Depth: depth, Attempts: *attempts, Err: origin, Violation: le}
	}

	kind := Classify(cause.Error())
	r.observer.Observe(ctx, Event{Stage: StageDispatching, Depth: depth, Kind: kind, Offset: iss.Offset, Err: cause})
	c, ok := cases[kind]
	if !ok {
		return Outcome{Status: StatusUnhandled, Kind: kind, Depth: depth, Attempts: *attempts, Err: origin}
	}

	if c.literalFirst && r.literal {
		v, err := literal.Eval(text, literal.Options{NumberMode: r.parseOpt.NumberMode, Limits: r.parseOpt.limits()})
		if err == nil {
			r.observer.Observe(ctx, Event{Stage: StageFixing, Depth: depth, Kind: kind, Fix: FixLiteral, Offset: iss.Offset})
			return Outcome{Status: StatusRecovered, Kind: kind, Fix: FixLiteral, Value: v, Depth: depth, Attempts: *attempts}
		}
		if errors.As(err, &le) {
			r.observer.Observe(ctx, Event{Stage: StageFixing, Depth: depth, Kind: kind, Fix: FixLiteral, Offset: le.Offset, Err: le})
			return Outcome{Status: StatusUnhandled, Kind: kind, Depth: depth, Attempts: *attempts, Err: origin, Violation: le}
		}
	}

	s, ok := c.pick(text)
	if !ok {
		return Outcome{Status: StatusUnhandled, Kind: kind, Depth: depth, Attempts: *attempts, Err: origin}
	}
	fixed := s.apply(text)
	r.observer.Observe(ctx, Event{Stage: StageFixing, Depth: depth, Kind: kind, Fix: s.fix, Offset: iss.Offset})

	*attempts++
	v, err := r.parser.Parse(fixed)
	r.observer.Observe(ctx, Event{Stage: StageReparsing, Depth: depth, Kind: kind, Fix: s.fix, Offset: -1, Err: err})
	if err == nil {
		return Outcome{Status: StatusRecovered, Kind: kind, Fix: s.fix, Value: v, Depth: depth, Attempts: *attempts}
	}
	if depth+1 >= r.maxDepth {
		return Outcome{Status: StatusExhausted, Kind: kind, Depth: depth, Attempts: *attempts, Err: origin}
	}
	r.observer.Observe(ctx, Event{Stage: StageRecursing, Depth: depth, Kind: kind, Fix: s.fix, Offset: -1, Err: err})
	return r.attempt(ctx, fixed, err, origin, depth+1, attempts)
}

// Repair repairs text with a Repairer built from the current defaults.
func Repair(ctx context.Context, text string, cause error) (any, error) {
	return New().Repair(ctx, text, cause)
}

// Loads strictly parses text and repairs it on failure, using a Repairer
// built from the current defaults.
func Loads(ctx context.Context, text string) (any, error) {
	return New().Loads(ctx, text)
}
