// Package flatten turns nested JSON values into a single-level map.
//
// Object keys are joined with KeySep. Array elements get a subscript built
// from IndexFormat: a format containing %d is applied around the index
// ("a[0]"), any other string is used as a separator on both sides of it
// ("a_0_").
package flatten

import (
	"strconv"
	"strings"
)

// Options configures a flattener. Use DefaultOptions for the usual shape.
type Options struct {
	// Root prefixes every produced key.
	Root string
	// KeySep joins object keys; empty means ".".
	KeySep string
	// IndexFormat builds array subscripts; empty means "[%d]".
	IndexFormat string
	// FlattenArrays descends into arrays. When false arrays are leaves.
	FlattenArrays bool
	// NoIndex drops the index from array subscripts, so elements of the same
	// array share (and overwrite) one key.
	NoIndex bool
}

// DefaultOptions returns {KeySep: ".", IndexFormat: "[%d]", FlattenArrays: true}.
func DefaultOptions() Options {
	return Options{KeySep: ".", IndexFormat: "[%d]", FlattenArrays: true}
}

// New returns a function flattening maps (and arrays, when enabled) per opt.
// Other values are returned unchanged.
func New(opt Options) func(any) any {
	if opt.KeySep == "" {
		opt.KeySep = "."
	}
	if opt.IndexFormat == "" {
		opt.IndexFormat = "[%d]"
	}
	f := &flattener{opt: opt, last: opt.IndexFormat[len(opt.IndexFormat)-1]}
	return func(v any) any {
		switch t := v.(type) {
		case map[string]any:
			out := map[string]any{}
			f.object(out, t, opt.Root)
			return out
		case []any:
			if !opt.FlattenArrays {
				return v
			}
			out := map[string]any{}
			f.array(out, t, opt.Root)
			return out
		}
		return v
	}
}

// Flatten flattens v with DefaultOptions.
func Flatten(v any) any { return defaultFlattener(v) }

var defaultFlattener = New(DefaultOptions())

type flattener struct {
	opt  Options
	last byte // final byte of IndexFormat
}

func (f *flattener) object(out map[string]any, m map[string]any, prefix string) {
	for k, v := range m {
		f.put(out, f.key(prefix, k), v)
	}
}

func (f *flattener) array(out map[string]any, a []any, prefix string) {
	for i, v := range a {
		switch v.(type) {
		case map[string]any, []any:
			f.put(out, f.index(prefix, i, false), v)
		default:
			f.put(out, f.index(prefix, i, true), v)
		}
	}
}

func (f *flattener) put(out map[string]any, key string, v any) {
	switch t := v.(type) {
	case map[string]any:
		f.object(out, t, key)
	case []any:
		if f.opt.FlattenArrays {
			f.array(out, t, key)
			return
		}
		out[key] = v
	default:
		out[key] = v
	}
}

// key appends an object key. A prefix that already ends in a subscript is
// not followed by KeySep.
func (f *flattener) key(prefix, k string) string {
	switch {
	case prefix == "":
		return k
	case prefix[len(prefix)-1] == f.last:
		return prefix + k
	default:
		return prefix + f.opt.KeySep + k
	}
}

func (f *flattener) index(prefix string, i int, leaf bool) string {
	format := f.opt.IndexFormat
	if f.opt.NoIndex {
		return prefix + strings.ReplaceAll(format, "%d", "")
	}
	n := strconv.Itoa(i)
	switch {
	case strings.Contains(format, "%d"):
		return prefix + strings.ReplaceAll(format, "%d", n)
	case prefix != "":
		return prefix + format + n + format
	case leaf:
		return n
	default:
		return n + format
	}
}
