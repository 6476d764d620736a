package promobs_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	jsonmend "github.com/reoring/jsonmend"
	"github.com/reoring/jsonmend/observe/promobs"
)

func TestObserver_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := promobs.New(reg)
	r := jsonmend.New(jsonmend.WithObserver(obs), jsonmend.WithLiteralFallback(false))
	ctx := context.Background()

	if _, err := r.Loads(ctx, `{'name': 'Yann'}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Loads(ctx, `{""a"": ""b""}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Repair(ctx, "x", errors.New("nope")); err == nil {
		t.Fatalf("expected an error")
	}

	if got := testutil.ToFloat64(obs.Repairs.WithLabelValues("invalid_value", "recovered")); got != 1 {
		t.Fatalf("expected 1 invalid_value recovery, got: %v", got)
	}
	if got := testutil.ToFloat64(obs.Repairs.WithLabelValues("unrecognized", "unhandled")); got != 1 {
		t.Fatalf("expected 1 unrecognized failure, got: %v", got)
	}
	if got := testutil.ToFloat64(obs.Fixes.WithLabelValues("unquoted_keys")); got != 1 {
		t.Fatalf("expected 1 unquoted_keys fix, got: %v", got)
	}
	if n := testutil.CollectAndCount(obs.Repairs); n != 3 {
		t.Fatalf("expected 3 kind/status series, got: %d", n)
	}

	want := `
# HELP jsonmend_repair_attempts Reparses performed per repair
# TYPE jsonmend_repair_attempts histogram
jsonmend_repair_attempts_bucket{le="0"} 1
jsonmend_repair_attempts_bucket{le="2"} 3
jsonmend_repair_attempts_bucket{le="4"} 3
jsonmend_repair_attempts_bucket{le="6"} 3
jsonmend_repair_attempts_bucket{le="8"} 3
jsonmend_repair_attempts_bucket{le="10"} 3
jsonmend_repair_attempts_bucket{le="12"} 3
jsonmend_repair_attempts_bucket{le="14"} 3
jsonmend_repair_attempts_bucket{le="16"} 3
jsonmend_repair_attempts_bucket{le="18"} 3
jsonmend_repair_attempts_bucket{le="20"} 3
jsonmend_repair_attempts_bucket{le="+Inf"} 3
jsonmend_repair_attempts_sum 3
jsonmend_repair_attempts_count 3
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "jsonmend_repair_attempts"); err != nil {
		t.Fatalf("unexpected histogram: %v", err)
	}
}
