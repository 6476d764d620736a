package jsonv2_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	eng "github.com/reoring/jsonmend/internal/engine"
	jsonsrc "github.com/reoring/jsonmend/source/json"
	"github.com/reoring/jsonmend/source/jsonv2"
)

func TestParse_MatchesStrictParser(t *testing.T) {
	in := `{"a": [1, 2.5, "x"], "b": {"c": null, "d": true}}`
	got, err := jsonv2.New(jsonsrc.Options{}).Parse(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := jsonsrc.New(jsonsrc.Options{}).Parse(in)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got: %v", want, got)
	}
}

func TestParse_DuplicateKeysFollowLimits(t *testing.T) {
	v, err := jsonv2.New(jsonsrc.Options{}).Parse(`{"a": 1, "a": 2}`)
	if err != nil || v.(map[string]any)["a"] != 2.0 {
		t.Fatalf("expected last value to win, got: %v, %v", v, err)
	}
	_, err = jsonv2.New(jsonsrc.Options{Limits: eng.Limits{RejectDuplicateKeys: true}}).Parse(`{"a": 1, "a": 2}`)
	var le *eng.LimitError
	if !errors.As(err, &le) {
		t.Fatalf("expected LimitError, got: %v", err)
	}
}

func TestParse_FailureUsesStrictWording(t *testing.T) {
	_, err := jsonv2.New(jsonsrc.Options{}).Parse(`{"a": 'x'}`)
	if err == nil || !strings.Contains(err.Error(), "looking for beginning of value") {
		t.Fatalf("expected encoding/json wording, got: %v", err)
	}
	if jsonv2.Available() != strings.HasSuffix(jsonv2.New(jsonsrc.Options{}).Name(), "/v2") {
		t.Fatalf("name and availability disagree")
	}
}
