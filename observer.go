package jsonmend

import "context"

// Stage is a step of the repair state machine.
type Stage int

const (
	StageDiagnosing  Stage = iota // offset and window computed
	StageDispatching              // Kind selected
	StageFixing                   // a fixer (or the literal fallback) ran
	StageReparsing                // fixed text handed to the parser
	StageRecursing                // reparse failed, retrying one level deeper
	StageSuccess                  // terminal: value recovered
	StageFailing                  // terminal: unhandled or exhausted
)

func (s Stage) String() string {
	switch s {
	case StageDiagnosing:
		return "diagnosing"
	case StageDispatching:
		return "dispatching"
	case StageFixing:
		return "fixing"
	case StageReparsing:
		return "reparsing"
	case StageRecursing:
		return "recursing"
	case StageSuccess:
		return "success"
	case StageFailing:
		return "failing"
	}
	return "unknown"
}

// Terminal reports whether s ends a Run.
func (s Stage) Terminal() bool { return s == StageSuccess || s == StageFailing }

// Fix names a transformation.
type Fix string

const (
	FixNone                  Fix = ""
	FixLiteral               Fix = "literal"
	FixUnquotedKeys          Fix = "unquoted_keys"
	FixSingleQuotedValues    Fix = "single_quoted_values"
	FixDoubleDoubleQuotes    Fix = "double_double_quotes"
	FixNonEscapedDoubleQuote Fix = "non_escaped_double_quote"
	FixControlCharacters     Fix = "control_characters"
)

// Event is one observation of a Run. Fields not meaningful for a stage are
// zero; Offset is -1 when unknown.
type Event struct {
	Stage  Stage
	Depth  int
	Kind   Kind
	Fix    Fix
	Offset int64
	Window string
	Err    error // the error under repair, or the reparse error at StageReparsing

	// Terminal stages only.
	Status   Status
	Attempts int
}

// Observer receives repair events. Implementations shared between Repairers
// must be safe for concurrent use.
type Observer interface {
	Observe(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) Observe(ctx context.Context, ev Event) { f(ctx, ev) }

type nopObserver struct{}

func (nopObserver) Observe(context.Context, Event) {}

// MultiObserver fans events out to every non-nil observer in order.
func MultiObserver(obs ...Observer) Observer {
	out := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	switch len(out) {
	case 0:
		return nopObserver{}
	case 1:
		return out[0]
	}
	return out
}

type multiObserver []Observer

func (m multiObserver) Observe(ctx context.Context, ev Event) {
	for _, o := range m {
		o.Observe(ctx, ev)
	}
}
