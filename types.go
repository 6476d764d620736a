package jsonmend

import eng "github.com/reoring/jsonmend/internal/engine"

// NumberMode dictates how numbers are materialized in repaired values.
type NumberMode = eng.NumberMode

const (
	NumberFloat64    = eng.NumberFloat64    // float64, like encoding/json into any.
	NumberJSONNumber = eng.NumberJSONNumber // Preserve json.Number.
)

// ParseOptions bundles strict parsing options.
type ParseOptions struct {
	NumberMode          NumberMode
	RejectDuplicateKeys bool  // Fail on a repeated key within one object.
	MaxNesting          int   // Maximum container nesting (0 = unlimited).
	MaxBytes            int64 // Maximum input bytes consumed (0 = unlimited).
}

func (o ParseOptions) limits() eng.Limits {
	return eng.Limits{
		RejectDuplicateKeys: o.RejectDuplicateKeys,
		MaxNesting:          o.MaxNesting,
		MaxBytes:            o.MaxBytes,
	}
}
