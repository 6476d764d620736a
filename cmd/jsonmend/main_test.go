package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	jsonmend "github.com/reoring/jsonmend"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Repair.MaxDepth != jsonmend.MaxDepth || cfg.Batch.Size != 100 || cfg.Flatten.KeySep != "." {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfig_ExpandsEnv(t *testing.T) {
	t.Setenv("JSONMEND_TEST_PARSER", "go-json")
	p := writeFile(t, "cfg.yaml", `
log:
  level: debug
  lang: ja
repair:
  parser: ${JSONMEND_TEST_PARSER}
  max_depth: 5
  number_mode: json.Number
  literal_fallback: false
batch:
  size: 7
`)
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Repair.Parser != jsonmend.ParserGoJSON || cfg.Repair.MaxDepth != 5 || cfg.Batch.Size != 7 {
		t.Fatalf("unexpected config: %+v", cfg.Repair)
	}
	if cfg.Repair.LiteralFallback == nil || *cfg.Repair.LiteralFallback {
		t.Fatalf("expected literal_fallback=false")
	}
	if cfg.Flatten.IndexFormat != "[%d]" {
		t.Fatalf("expected defaults to survive, got: %+v", cfg.Flatten)
	}
	r, err := cfg.Repairer(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Parser().Name() != jsonmend.ParserGoJSON {
		t.Fatalf("expected go-json parser, got: %s", r.Parser().Name())
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"parser":      "repair:\n  parser: simdjson\n",
		"number mode": "repair:\n  number_mode: decimal\n",
		"batch size":  "batch:\n  size: 0\n",
		"log level":   "log:\n  level: loud\n",
		"yaml":        "repair: [",
	}
	for name, body := range cases {
		if _, err := LoadConfig(writeFile(t, "cfg.yaml", body)); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}

func TestRun_RepairStdin(t *testing.T) {
	var out, errb bytes.Buffer
	code := run([]string{"repair", "-"}, strings.NewReader(`{'a': 1, 'b': [True, None]}`), &out, &errb)
	if code != 0 {
		t.Fatalf("expected exit 0, got: %d (%s)", code, errb.String())
	}
	if out.String() != "{\"a\":1,\"b\":[true,null]}\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRun_RepairFailure(t *testing.T) {
	var out, errb bytes.Buffer
	code := run([]string{"repair"}, strings.NewReader(`{"a": 1 "b": 2}`), &out, &errb)
	if code != 1 {
		t.Fatalf("expected exit 1, got: %d", code)
	}
	if !strings.Contains(errb.String(), "missing_comma_or_brace") {
		t.Fatalf("expected the issue code in logs, got: %s", errb.String())
	}
}

func TestRun_Metrics(t *testing.T) {
	var out, errb bytes.Buffer
	code := run([]string{"-metrics", "-parser", "go-json", "repair", "-"}, strings.NewReader(`{a: 1}`), &out, &errb)
	if code != 0 {
		t.Fatalf("expected exit 0, got: %d (%s)", code, errb.String())
	}
	if !strings.Contains(errb.String(), `jsonmend_repairs_total{kind="missing_member_name",status="recovered"} 1`) {
		t.Fatalf("expected metrics on stderr, got: %s", errb.String())
	}
}

func TestRun_NDJSONFlatten(t *testing.T) {
	in := writeFile(t, "in.ndjson", "{'a': {'b': 1}}\n{\"c\": [1, 2]}\n")
	outPath := filepath.Join(t.TempDir(), "out.ndjson")
	var out, errb bytes.Buffer
	if code := run([]string{"ndjson", "-flatten", in, outPath}, nil, &out, &errb); code != 0 {
		t.Fatalf("expected exit 0, got: %d (%s)", code, errb.String())
	}
	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != "{\"a.b\":1}\n{\"c[0]\":1,\"c[1]\":2}\n" {
		t.Fatalf("unexpected output: %q", b)
	}
}

func TestRun_Batch(t *testing.T) {
	in := writeFile(t, "in.csv", "k,v\na,1\nb,2\nc,3\n")
	var out, errb bytes.Buffer
	if code := run([]string{"batch", "-size", "2", in}, nil, &out, &errb); code != 0 {
		t.Fatalf("expected exit 0, got: %d (%s)", code, errb.String())
	}
	if got := strings.Count(out.String(), "\n"); got != 3 {
		t.Fatalf("expected 3 records, got: %q", out.String())
	}
	if strings.Count(errb.String(), "Batch") != 2 {
		t.Fatalf("expected 2 batches logged, got: %s", errb.String())
	}
}

func TestRun_VersionAndUsage(t *testing.T) {
	var out, errb bytes.Buffer
	if code := run([]string{"version"}, nil, &out, &errb); code != 0 || !strings.HasPrefix(out.String(), "jsonmend ") {
		t.Fatalf("unexpected version output: %d %q", code, out.String())
	}
	if code := run(nil, nil, &out, &errb); code != 2 {
		t.Fatalf("expected usage exit 2, got: %d", code)
	}
}
