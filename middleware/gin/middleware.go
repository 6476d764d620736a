package ginmw

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	jsonmend "github.com/reoring/jsonmend"
	"github.com/reoring/jsonmend/middleware"
)

// RepairJSON repairs malformed request JSON with r (or middleware.DefaultRepairer
// when nil), forwards canonical JSON and stores the decoded value in the
// request context. Unrepairable bodies abort with 400 and an Issues payload.
func RepairJSON(r *jsonmend.Repairer) gin.HandlerFunc {
	if r == nil {
		r = middleware.DefaultRepairer()
	}
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		_ = c.Request.Body.Close()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if middleware.Blank(body) {
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
			c.Next()
			return
		}
		res, fwd, iss := middleware.Process(c.Request.Context(), r, body)
		if iss != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, middleware.ErrorPayload(iss))
			return
		}
		if res.Repaired {
			c.Header(middleware.HeaderRepaired, "true")
		}
		// forward the canonical body with the value in the request context
		c.Request = c.Request.WithContext(middleware.ContextWithResult(c.Request.Context(), res))
		c.Request.Body = io.NopCloser(bytes.NewReader(fwd))
		c.Request.ContentLength = int64(len(fwd))
		c.Next()
	}
}

// GetValue fetches the decoded body from gin.Context.
func GetValue(c *gin.Context) (any, bool) {
	return middleware.ValueFromContext(c.Request.Context())
}
