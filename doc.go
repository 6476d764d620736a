// Package jsonmend repairs malformed JSON text after a strict parse failed.
//
//   - Classification of the decoder's error message into a closed set of Kinds
//   - Targeted whole-text fixes (unquoted keys, single-quoted values, doubled or
//     unescaped quotes, raw control characters) followed by a strict reparse
//   - A Python-literal fallback for repr()-style input (see package literal)
//   - A bounded retry loop: every failed reparse recurses once with the fixed
//     text, up to MaxDepth attempts, then the first error is returned unchanged
//
// Design policy:
//
//   - Keep only public APIs in the root package; put detailed implementations under internal/.
//   - Strict parsers live under source/ (encoding/json by default, go-json optional).
//   - Decisions never log; stages are reported to an Observer (see observe/).
//
// Typical usage:
//
//	v, err := jsonmend.Loads(ctx, text)
//
//	r := jsonmend.New(jsonmend.WithObserver(obs), jsonmend.WithNumberMode(jsonmend.NumberJSONNumber))
//	if _, err := parse(text); err != nil {
//		v, err = r.Repair(ctx, text, err)
//	}
//
//	out := r.Run(ctx, text, cause, 0) // structured: Status, Kind, Depth, Attempts
package jsonmend
