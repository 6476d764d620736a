package gojson_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	eng "github.com/reoring/jsonmend/internal/engine"
	"github.com/reoring/jsonmend/source/gojson"
	jsonsrc "github.com/reoring/jsonmend/source/json"
)

func TestParse_FastPathMatchesStrictParser(t *testing.T) {
	in := `{"a": [1, 2.5, "x"], "b": {"c": null, "d": true}, "e": []}`
	fast, err := gojson.New(jsonsrc.Options{}).Parse(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	strict, err := jsonsrc.New(jsonsrc.Options{}).Parse(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(fast, strict) {
		t.Fatalf("expected identical values, got: %v vs %v", fast, strict)
	}
}

func TestParse_FailureUsesStrictWording(t *testing.T) {
	_, err := gojson.New(jsonsrc.Options{}).Parse(`{name: 1}`)
	var de *eng.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got: %v", err)
	}
	if !strings.Contains(de.Msg, "looking for beginning of object key string") {
		t.Fatalf("expected encoding/json wording, got: %q", de.Msg)
	}
}

func TestParse_LimitsDelegate(t *testing.T) {
	p := gojson.New(jsonsrc.Options{Limits: eng.Limits{RejectDuplicateKeys: true}})
	_, err := p.Parse(`{"a": 1, "a": 2}`)
	var le *eng.LimitError
	if !errors.As(err, &le) {
		t.Fatalf("expected LimitError, got: %v", err)
	}
	if p.Name() != "go-json" {
		t.Fatalf("expected go-json, got: %s", p.Name())
	}
}
