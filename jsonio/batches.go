package jsonio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"
)

// Kind is a batch source format.
type Kind int

const (
	KindNDJSON Kind = iota + 1
	KindCSV
	KindExcel
)

func (k Kind) String() string {
	switch k {
	case KindNDJSON:
		return "ndjson"
	case KindCSV:
		return "csv"
	case KindExcel:
		return "excel"
	}
	return "unknown"
}

// ErrUnknownKind is returned for unsupported extensions and kind names.
var ErrUnknownKind = errors.New("jsonio: unknown file kind")

var kindsByExt = map[string]Kind{
	"ndjson": KindNDJSON,
	"nl":     KindNDJSON,
	"jsonl":  KindNDJSON,
	"csv":    KindCSV,
	"xlsx":   KindExcel,
	"xls":    KindExcel,
}

// KindForPath picks the Kind from the file extension (case-insensitive).
func KindForPath(path string) (Kind, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if k, ok := kindsByExt[ext]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, path)
}

// ParseKind parses "ndjson", "csv" or "excel".
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "ndjson":
		return KindNDJSON, nil
	case "csv":
		return KindCSV, nil
	case "excel":
		return KindExcel, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Batches yields the records of the file at path in slices of at most size
// elements. Each record is a map[string]any for CSV and Excel sources.
//
// NDJSON lines are parsed strictly; blank lines are skipped and invalid lines
// are reported as a (nil, err) pair before reading continues. Other errors
// (open, read, size) end the sequence after being yielded.
func Batches(path string, kind Kind, size int) iter.Seq2[[]any, error] {
	return func(yield func([]any, error) bool) {
		if size < 1 {
			yield(nil, ErrBatchSize)
			return
		}
		b := &batcher{size: size, yield: yield}
		var err error
		switch kind {
		case KindNDJSON:
			err = b.ndjson(path)
		case KindCSV:
			err = b.csv(path)
		case KindExcel:
			err = b.excel(path)
		default:
			err = fmt.Errorf("%w: %v", ErrUnknownKind, kind)
		}
		if errors.Is(err, errStopped) {
			return
		}
		if err != nil {
			if len(b.buf) > 0 && !yield(b.buf, nil) {
				return
			}
			yield(nil, err)
			return
		}
		b.flush()
	}
}

var errStopped = errors.New("stopped")

type batcher struct {
	size  int
	buf   []any
	yield func([]any, error) bool
}

// add buffers rec and yields a full batch. It returns errStopped when the
// consumer stopped iterating.
func (b *batcher) add(rec any) error {
	b.buf = append(b.buf, rec)
	if len(b.buf) < b.size {
		return nil
	}
	out := b.buf
	b.buf = nil
	if !b.yield(out, nil) {
		return errStopped
	}
	return nil
}

func (b *batcher) flush() {
	if len(b.buf) > 0 {
		b.yield(b.buf, nil)
		b.buf = nil
	}
}

func (b *batcher) ndjson(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			if !b.yield(nil, fmt.Errorf("jsonio: %s line %d: %w", path, line, err)) {
				return errStopped
			}
			continue
		}
		if err := b.add(v); err != nil {
			return err
		}
	}
	return sc.Err()
}

func (b *batcher) csv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("jsonio: %s header: %w", path, err)
	}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("jsonio: %s: %w", path, err)
		}
		rec := make(map[string]any, len(header))
		for i, name := range header {
			if i < len(row) && row[i] != "" {
				rec[name] = row[i]
			} else {
				rec[name] = nil
			}
		}
		if err := b.add(rec); err != nil {
			return err
		}
	}
}

// excel reads the first sheet. The first row names the fields; columns with
// an empty header are ignored and blank rows are skipped.
func (b *batcher) excel(path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil
	}
	sheet := sheets[0]
	rows, err := f.Rows(sheet)
	if err != nil {
		return err
	}
	defer rows.Close()

	var header []string
	rowNum := 0
	for rows.Next() {
		rowNum++
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return fmt.Errorf("jsonio: %s row %d: %w", path, rowNum, err)
		}
		if rowNum == 1 {
			header = cols
			continue
		}
		if blankRow(cols) {
			continue
		}
		rec := map[string]any{}
		for i, name := range header {
			if name == "" {
				continue
			}
			if i >= len(cols) || cols[i] == "" {
				rec[name] = nil
				continue
			}
			cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
			if err != nil {
				return err
			}
			typ, err := f.GetCellType(sheet, cell)
			if err != nil {
				return err
			}
			rec[name] = excelValue(cols[i], typ)
		}
		if err := b.add(rec); err != nil {
			return err
		}
	}
	return rows.Error()
}

func blankRow(cols []string) bool {
	for _, c := range cols {
		if c != "" {
			return false
		}
	}
	return true
}

// excelValue converts a raw cell: numbers become float64, booleans and the
// strings "true"/"false" become bool, and text that looks like a JSON array
// or object is decoded (kept as text when it does not decode).
func excelValue(raw string, typ excelize.CellType) any {
	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	}
	if strings.EqualFold(raw, "true") || strings.EqualFold(raw, "false") {
		return strings.EqualFold(raw, "true")
	}
	first, last := raw[0], raw[len(raw)-1]
	if (first == '[' || first == '{') && (last == ']' || last == '}') {
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v
		}
	}
	return raw
}
