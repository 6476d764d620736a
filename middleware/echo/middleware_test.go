package echomw_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/reoring/jsonmend/middleware"
	echomw "github.com/reoring/jsonmend/middleware/echo"
)

func newServer(t *testing.T, got *string) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.Use(echomw.RepairJSON(nil))
	e.POST("/", func(c echo.Context) error {
		b, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return err
		}
		*got = string(b)
		if _, ok := echomw.GetValue(c); !ok {
			t.Fatalf("expected a value in context")
		}
		return c.NoContent(http.StatusNoContent)
	})
	return e
}

func TestRepairJSON_Echo(t *testing.T) {
	var got string
	e := newServer(t, &got)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{name: "Yann"}`))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got: %d %s", rec.Code, rec.Body.String())
	}
	if got != `{"name":"Yann"}` || rec.Header().Get(middleware.HeaderRepaired) != "true" {
		t.Fatalf("expected repaired body, got: %s", got)
	}
}

func TestRepairJSON_EchoRejects(t *testing.T) {
	var got string
	e := newServer(t, &got)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a": 1 "b": 2}`))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"code":"missing_comma_or_brace"`) {
		t.Fatalf("expected issues payload, got: %s", rec.Body.String())
	}
}
