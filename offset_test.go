package jsonmend_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	jsonmend "github.com/reoring/jsonmend"
)

func TestExtractOffset(t *testing.T) {
	cases := []struct {
		msg  string
		want int
		ok   bool
	}{
		{"Parse error at offset 12: Invalid value.", 12, true},
		{"Expecting ',' delimiter: line 1 column 8 (char 7)", 7, true},
		{"offset 3: and also (char 9)", 3, true},
		{"(char 9) before offset 3:", 3, true},
		{"offset 5 without colon", 0, false},
		{"nothing here", 0, false},
		{"offset 99999999999999999999999999: overflow", 0, false},
	}
	for _, tc := range cases {
		n, ok := jsonmend.ExtractOffset(tc.msg)
		if n != tc.want || ok != tc.ok {
			t.Fatalf("ExtractOffset(%q): expected (%d, %v), got: (%d, %v)", tc.msg, tc.want, tc.ok, n, ok)
		}
	}
}

func TestDiagnose_Window(t *testing.T) {
	text := strings.Repeat("a", 20) + "X" + strings.Repeat("b", 20)
	iss := jsonmend.Diagnose(text, errors.New("Parse error at offset 20: Invalid value."))
	if iss.Offset != 20 || iss.Code != jsonmend.CodeInvalidValue {
		t.Fatalf("expected invalid_value at 20, got: %s at %d", iss.Code, iss.Offset)
	}
	if want := strings.Repeat("a", 10) + "X" + strings.Repeat("b", 9); iss.InputFragment != want {
		t.Fatalf("expected %q, got: %q", want, iss.InputFragment)
	}
	if iss.Hint == "" || iss.Hint == iss.Code {
		t.Fatalf("expected a translated hint, got: %q", iss.Hint)
	}

	// clamped at both ends
	iss = jsonmend.Diagnose("{x}", errors.New("Parse error at offset 1: Missing a name for object member."))
	if iss.InputFragment != "{x}" {
		t.Fatalf("expected whole text, got: %q", iss.InputFragment)
	}
	iss = jsonmend.Diagnose("{x}", errors.New("offset 500: Invalid value."))
	if iss.InputFragment != "{x}" {
		t.Fatalf("expected a clamped fragment, got: %q", iss.InputFragment)
	}
}

func TestDiagnose_WindowKeepsWholeRunes(t *testing.T) {
	text := strings.Repeat("é", 20) // 2 bytes each
	iss := jsonmend.Diagnose(text, errors.New("offset 11: Invalid value."))
	for _, r := range iss.InputFragment {
		if r != 'é' {
			t.Fatalf("expected whole runes only, got: %q", iss.InputFragment)
		}
	}
	if iss.InputFragment == "" {
		t.Fatalf("expected a non-empty fragment")
	}
}

func TestDiagnose_StructuredOffsetAndLimits(t *testing.T) {
	iss := jsonmend.Diagnose("{'a'}", &jsonmend.DecodeError{Msg: "Missing a name for object member", Offset: -1})
	if iss.Offset != -1 || iss.InputFragment != "" {
		t.Fatalf("expected unknown offset, got: %d %q", iss.Offset, iss.InputFragment)
	}

	p, err := jsonmend.NewParser(jsonmend.ParserEncodingJSON, jsonmend.ParseOptions{RejectDuplicateKeys: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = p.Parse(`{"a": 1, "a": 2}`)
	iss = jsonmend.Diagnose(`{"a": 1, "a": 2}`, err)
	if iss.Code != jsonmend.CodeDuplicateKey || iss.Path != "/a" {
		t.Fatalf("expected duplicate_key at /a, got: %s at %s", iss.Code, iss.Path)
	}

	// limit violations are not repairable
	if _, rerr := jsonmend.New(jsonmend.WithParser(p)).Repair(context.Background(), `{"a": 1, "a": 2}`, err); rerr != err {
		t.Fatalf("expected the limit error back, got: %v", rerr)
	}
}

func TestIssues_Error(t *testing.T) {
	iss := jsonmend.Issues{
		{Code: jsonmend.CodeInvalidValue, Offset: 4},
		{Code: jsonmend.CodeDuplicateKey, Path: "/a", Offset: 9},
		{Code: jsonmend.CodeParseError, Offset: -1},
		{Code: jsonmend.CodeTooDeep, Offset: -1},
	}
	want := "invalid_value at offset 4; duplicate_key at /a; parse_error; ... (total 4)"
	if got := iss.Error(); got != want {
		t.Fatalf("expected %q, got: %q", want, got)
	}
	got, ok := jsonmend.AsIssues(iss)
	if !ok || len(got) != 4 {
		t.Fatalf("expected AsIssues to extract 4 issues, got: %v", got)
	}
}
