package jsonio_test

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/reoring/jsonmend/jsonio"
)

func collect(t *testing.T, path string, kind jsonio.Kind, size int) ([][]any, []error) {
	t.Helper()
	var batches [][]any
	var errs []error
	for batch, err := range jsonio.Batches(path, kind, size) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		batches = append(batches, batch)
	}
	return batches, errs
}

func TestBatches_NDJSON(t *testing.T) {
	p := writeTemp(t, "in.jsonl", "{\"i\": 1}\n{\"i\": 2}\n\nnot json\n{\"i\": 3}\n")
	batches, errs := collect(t, p, jsonio.KindNDJSON, 2)
	if len(errs) != 1 {
		t.Fatalf("expected one error for the invalid line, got: %v", errs)
	}
	if len(batches) != 2 || len(batches[0]) != 2 || len(batches[1]) != 1 {
		t.Fatalf("expected batches of 2 and 1, got: %v", batches)
	}
	if !reflect.DeepEqual(batches[1][0], map[string]any{"i": 3.0}) {
		t.Fatalf("unexpected last record: %v", batches[1][0])
	}
}

func TestBatches_StopEarly(t *testing.T) {
	p := writeTemp(t, "in.ndjson", "1\n2\n3\n4\n")
	n := 0
	for batch, err := range jsonio.Batches(p, jsonio.KindNDJSON, 1) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		n += len(batch)
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Fatalf("expected to stop after 2 records, got: %d", n)
	}
}

func TestBatches_CSV(t *testing.T) {
	p := writeTemp(t, "in.csv", "name,age,city\nAnn,30,\nBob,,Paris\nCyd\n")
	batches, errs := collect(t, p, jsonio.KindCSV, 10)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := [][]any{{
		map[string]any{"name": "Ann", "age": "30", "city": nil},
		map[string]any{"name": "Bob", "age": nil, "city": "Paris"},
		map[string]any{"name": "Cyd", "age": nil, "city": nil},
	}}
	if !reflect.DeepEqual(batches, want) {
		t.Fatalf("expected %v, got: %v", want, batches)
	}
}

func TestBatches_Excel(t *testing.T) {
	p := filepath.Join(t.TempDir(), "in.xlsx")
	f := excelize.NewFile()
	rows := [][]any{
		{"name", "age", "active", "tags", ""},
		{"Ann", 30, "TRUE", `["a","b"]`, "ignored"},
		{},
		{"Bob", nil, true, `{broken]`},
		{"Cyd"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := f.SaveAs(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = f.Close()

	batches, errs := collect(t, p, jsonio.KindExcel, 2)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := [][]any{
		{
			map[string]any{"name": "Ann", "age": 30.0, "active": true, "tags": []any{"a", "b"}},
			map[string]any{"name": "Bob", "age": nil, "active": true, "tags": "{broken]"},
		},
		{
			map[string]any{"name": "Cyd", "age": nil, "active": nil, "tags": nil},
		},
	}
	if !reflect.DeepEqual(batches, want) {
		t.Fatalf("expected %v, got: %v", want, batches)
	}
}

func TestBatches_BadSize(t *testing.T) {
	p := writeTemp(t, "in.ndjson", "1\n")
	_, errs := collect(t, p, jsonio.KindNDJSON, 0)
	if len(errs) != 1 || errs[0] != jsonio.ErrBatchSize {
		t.Fatalf("expected ErrBatchSize, got: %v", errs)
	}
}
