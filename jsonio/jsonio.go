// Package jsonio reads and writes JSON and NDJSON files, repairing malformed
// input on the way in.
package jsonio

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	json "github.com/goccy/go-json"

	jsonmend "github.com/reoring/jsonmend"
)

// maxLine bounds a single NDJSON line.
const maxLine = 64 << 20

// WriteOptions controls how values are written.
type WriteOptions struct {
	// Pretty indents output with two spaces. NDJSON records are then spread
	// over several lines each.
	Pretty bool
	// Append opens files for appending instead of truncating them.
	Append bool
}

// ReadFile reads the whole file at path and parses it, repairing it with r
// when strict parsing fails. A nil r uses jsonmend.New().
func ReadFile(ctx context.Context, path string, r *jsonmend.Repairer) (any, error) {
	if r == nil {
		r = jsonmend.New()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v, err := r.Loads(ctx, string(b))
	if err != nil {
		return nil, fmt.Errorf("jsonio: cannot load JSON from file %s: %w", path, err)
	}
	return v, nil
}

// ReadNDJSONFile parses every line of the file at path, repairing lines that
// fail strict parsing. Blank lines are skipped. It stops at the first line
// that cannot be repaired and returns the records read before it together
// with an error naming the line (1-based).
func ReadNDJSONFile(ctx context.Context, path string, r *jsonmend.Repairer) ([]any, error) {
	if r == nil {
		r = jsonmend.New()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := []any{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if len(bytes.TrimSpace(sc.Bytes())) == 0 {
			continue
		}
		v, err := r.Loads(ctx, text)
		if err != nil {
			return out, fmt.Errorf("jsonio: cannot load JSON at line %d from file %s: %w", line, path, err)
		}
		out = append(out, v)
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("jsonio: reading %s: %w", path, err)
	}
	return out, nil
}

// WriteFile writes v as a single JSON document.
func WriteFile(path string, v any, opt WriteOptions) error {
	b, err := marshal(v, opt.Pretty)
	if err != nil {
		return fmt.Errorf("jsonio: encoding %s: %w", path, err)
	}
	f, err := create(path, opt.Append)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(b, '\n')); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteNDJSONFile writes records to path, one per line.
func WriteNDJSONFile(path string, records []any, opt WriteOptions) error {
	f, err := create(path, opt.Append)
	if err != nil {
		return err
	}
	if err := WriteNDJSON(f, records, opt); err != nil {
		_ = f.Close()
		return fmt.Errorf("jsonio: writing %s: %w", path, err)
	}
	return f.Close()
}

// WriteNDJSON writes records to w, each followed by a newline.
func WriteNDJSON(w io.Writer, records []any, opt WriteOptions) error {
	bw := bufio.NewWriter(w)
	for i, rec := range records {
		b, err := marshal(rec, opt.Pretty)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if _, err := bw.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteAuto writes slices as NDJSON and anything else as plain JSON.
// Append is ignored; the file is always truncated.
func WriteAuto(path string, v any, opt WriteOptions) error {
	opt.Append = false
	if records, ok := asRecords(v); ok {
		return WriteNDJSONFile(path, records, opt)
	}
	return WriteFile(path, v, opt)
}

func asRecords(v any) ([]any, bool) {
	if a, ok := v.([]any); ok {
		return a, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func marshal(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

func create(path string, appending bool) (*os.File, error) {
	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appending {
		flag = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	return os.OpenFile(path, flag, 0o644)
}

// ErrBatchSize is yielded by Batches for a size below 1.
var ErrBatchSize = errors.New("jsonio: batch size must be positive")
