package echomw

import (
	"bytes"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	jsonmend "github.com/reoring/jsonmend"
	"github.com/reoring/jsonmend/middleware"
)

// RepairJSON repairs malformed request JSON with r (or middleware.DefaultRepairer
// when nil), forwards canonical JSON and stores the decoded value in context,
// or returns 400 with Issues when the body cannot be repaired.
func RepairJSON(r *jsonmend.Repairer) echo.MiddlewareFunc {
	if r == nil {
		r = middleware.DefaultRepairer()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			body, err := io.ReadAll(req.Body)
			_ = req.Body.Close()
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
			}
			if middleware.Blank(body) {
				req.Body = io.NopCloser(bytes.NewReader(body))
				return next(c)
			}
			res, fwd, iss := middleware.Process(req.Context(), r, body)
			if iss != nil {
				return c.JSON(http.StatusBadRequest, middleware.ErrorPayload(iss))
			}
			if res.Repaired {
				c.Response().Header().Set(middleware.HeaderRepaired, "true")
			}
			req = req.WithContext(middleware.ContextWithResult(req.Context(), res))
			req.Body = io.NopCloser(bytes.NewReader(fwd))
			req.ContentLength = int64(len(fwd))
			c.SetRequest(req)
			return next(c)
		}
	}
}

// GetValue fetches the decoded body from echo.Context.
func GetValue(c echo.Context) (any, bool) {
	return middleware.ValueFromContext(c.Request().Context())
}
