// Package middleware repairs malformed JSON request bodies before they reach
// a handler. The net/http middleware lives here; Echo and Gin adapters are
// separate modules under this directory.
package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	jsonmend "github.com/reoring/jsonmend"
)

// HeaderRepaired is set to "true" on responses whose request body was
// rewritten.
const HeaderRepaired = "X-JSON-Repaired"

// DefaultMaxBytes bounds request bodies under DefaultParseOptions.
const DefaultMaxBytes = 1 << 20

// Result is what the middleware learned about a request body.
type Result struct {
	Value any
	// Repaired reports that the body failed strict parsing and was fixed.
	Repaired bool
	// Outcome is the repair outcome; zero unless Repaired.
	Outcome jsonmend.Outcome
}

type ctxKeyResult struct{}

// ContextWithResult attaches a Result to the context.
func ContextWithResult(ctx context.Context, res Result) context.Context {
	return context.WithValue(ctx, ctxKeyResult{}, res)
}

// ResultFromContext retrieves a Result from context.
func ResultFromContext(ctx context.Context) (Result, bool) {
	v, ok := ctx.Value(ctxKeyResult{}).(Result)
	return v, ok
}

// ValueFromContext retrieves the decoded (possibly repaired) body.
func ValueFromContext(ctx context.Context) (any, bool) {
	res, ok := ResultFromContext(ctx)
	return res.Value, ok
}

// DefaultParseOptions returns a recommended default for HTTP JSON boundaries.
//   - Duplicate keys are errors
//   - Bodies are bounded by DefaultMaxBytes
func DefaultParseOptions() jsonmend.ParseOptions {
	return jsonmend.ParseOptions{RejectDuplicateKeys: true, MaxBytes: DefaultMaxBytes}
}

// DefaultRepairer is used when a nil Repairer is passed to RepairJSON.
func DefaultRepairer() *jsonmend.Repairer {
	return jsonmend.New(jsonmend.WithParseOptions(DefaultParseOptions()))
}

// Blank reports whether body has no JSON text at all. Blank bodies are passed
// through untouched.
func Blank(body []byte) bool {
	return len(bytes.TrimSpace(body)) == 0
}

// Process strict-parses body and repairs it on failure. It returns the result,
// the body to forward (canonical JSON when repaired, body itself otherwise),
// and the issues when the body could not be repaired.
func Process(ctx context.Context, r *jsonmend.Repairer, body []byte) (Result, []byte, jsonmend.Issues) {
	text := string(body)
	v, err := r.Parser().Parse(text)
	if err == nil {
		return Result{Value: v}, body, nil
	}
	out := r.Run(ctx, text, err, 0)
	if out.Status != jsonmend.StatusRecovered {
		cause := out.Err
		if out.Violation != nil {
			cause = out.Violation
		}
		iss := jsonmend.Diagnose(text, cause)
		iss.Params = map[string]any{"status": out.Status.String(), "attempts": out.Attempts}
		return Result{}, nil, jsonmend.Issues{iss}
	}
	canonical, err := json.Marshal(out.Value)
	if err != nil {
		iss := jsonmend.Diagnose(text, err)
		return Result{}, nil, jsonmend.Issues{iss}
	}
	return Result{Value: out.Value, Repaired: true, Outcome: out}, canonical, nil
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues jsonmend.Issues) map[string]any {
	return map[string]any{"issues": issues}
}

// RepairJSON reads the request body, repairs it when it is malformed and
// forwards canonical JSON to next with the decoded value in the request
// context. Unrecoverable bodies get 400 with an Issues payload.
func RepairJSON(r *jsonmend.Repairer) func(http.Handler) http.Handler {
	if r == nil {
		r = DefaultRepairer()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			body, err := io.ReadAll(req.Body)
			_ = req.Body.Close()
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			if Blank(body) {
				req.Body = io.NopCloser(bytes.NewReader(body))
				next.ServeHTTP(w, req)
				return
			}
			res, fwd, iss := Process(req.Context(), r, body)
			if iss != nil {
				writeJSON(w, http.StatusBadRequest, ErrorPayload(iss))
				return
			}
			if res.Repaired {
				w.Header().Set(HeaderRepaired, "true")
			}
			req = req.WithContext(ContextWithResult(req.Context(), res))
			req.Body = io.NopCloser(bytes.NewReader(fwd))
			req.ContentLength = int64(len(fwd))
			next.ServeHTTP(w, req)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
