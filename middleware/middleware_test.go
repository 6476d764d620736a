package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	jsonmend "github.com/reoring/jsonmend"
	"github.com/reoring/jsonmend/middleware"
)

type seen struct {
	body   string
	value  any
	ok     bool
	result middleware.Result
}

func serve(t *testing.T, body string) (*httptest.ResponseRecorder, *seen) {
	t.Helper()
	s := &seen{}
	h := middleware.RepairJSON(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s.body = string(b)
		s.value, s.ok = middleware.ValueFromContext(r.Context())
		s.result, _ = middleware.ResultFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	h.ServeHTTP(rec, req)
	return rec, s
}

func TestRepairJSON_RewritesMalformedBody(t *testing.T) {
	rec, s := serve(t, `{'name': 'Yann'}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected handler to run, got status: %d", rec.Code)
	}
	if rec.Header().Get(middleware.HeaderRepaired) != "true" {
		t.Fatalf("expected %s header", middleware.HeaderRepaired)
	}
	if s.body != `{"name":"Yann"}` {
		t.Fatalf("expected canonical body, got: %s", s.body)
	}
	m, _ := s.value.(map[string]any)
	if !s.ok || m["name"] != "Yann" {
		t.Fatalf("expected value in context, got: %#v", s.value)
	}
	if !s.result.Repaired || s.result.Outcome.Status != jsonmend.StatusRecovered {
		t.Fatalf("expected a recovered outcome, got: %+v", s.result)
	}
}

func TestRepairJSON_PassesStrictBodyThrough(t *testing.T) {
	body := `{"b": [1, 2], "a": true}`
	rec, s := serve(t, body)
	if rec.Header().Get(middleware.HeaderRepaired) != "" {
		t.Fatalf("expected no repair header")
	}
	if s.body != body {
		t.Fatalf("expected body unchanged, got: %s", s.body)
	}
	if !s.ok || s.result.Repaired {
		t.Fatalf("expected strict value in context, got: %+v", s.result)
	}
}

func TestRepairJSON_BlankBody(t *testing.T) {
	rec, s := serve(t, "  \n")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected handler to run, got status: %d", rec.Code)
	}
	if s.ok {
		t.Fatalf("expected no value for a blank body")
	}
}

func TestRepairJSON_RejectsUnrepairable(t *testing.T) {
	cases := map[string]string{
		`{"a": 1 "b": 2}`:  jsonmend.CodeMissingCommaOrBrace,
		`{"a": 1, "a": 2}`: jsonmend.CodeDuplicateKey,
		`{'a': 1, 'a': 2}`: jsonmend.CodeDuplicateKey,
	}
	for body, code := range cases {
		rec, s := serve(t, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got: %d", body, rec.Code)
		}
		if s.body != "" {
			t.Fatalf("%s: handler must not run", body)
		}
		var payload struct {
			Issues []jsonmend.Issue `json:"issues"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(payload.Issues) != 1 || payload.Issues[0].Code != code {
			t.Fatalf("%s: expected %s, got: %s", body, code, rec.Body.String())
		}
		if payload.Issues[0].Params["status"] != "unhandled" {
			t.Fatalf("%s: expected status param, got: %v", body, payload.Issues[0].Params)
		}
	}
}

func TestProcess_CanonicalizesDoubleDoubleQuotes(t *testing.T) {
	r := jsonmend.New()
	res, fwd, iss := middleware.Process(t.Context(), r, []byte(`{""a"": ""b""}`))
	if iss != nil {
		t.Fatalf("unexpected issues: %v", iss)
	}
	if string(fwd) != `{"a":"b"}` || res.Outcome.Fix != jsonmend.FixDoubleDoubleQuotes {
		t.Fatalf("expected double_double_quotes repair, got: %s %+v", fwd, res.Outcome)
	}
}

func TestProcess_LiteralFallbackKeepsLimits(t *testing.T) {
	r := middleware.DefaultRepairer()
	_, fwd, iss := middleware.Process(t.Context(), r, []byte(`{'a': {'b': 1, 'b': 2}}`))
	if fwd != nil || len(iss) != 1 {
		t.Fatalf("expected one issue, got: %s %v", fwd, iss)
	}
	if iss[0].Code != jsonmend.CodeDuplicateKey || iss[0].Path != "/a/b" {
		t.Fatalf("expected duplicate_key at /a/b, got: %+v", iss[0])
	}

	r = jsonmend.New(jsonmend.WithParseOptions(jsonmend.ParseOptions{MaxNesting: 2}))
	_, _, iss = middleware.Process(t.Context(), r, []byte(`{'a': [[1]]}`))
	if len(iss) != 1 || iss[0].Code != jsonmend.CodeTooDeep {
		t.Fatalf("expected too_deep, got: %v", iss)
	}
}
