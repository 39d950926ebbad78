package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "datasets/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

// Trace middleware adds request tracing context.
// Extracts or generates trace IDs for distributed tracing.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		trace := appctx.NewTraceContext()
		if id := c.GetHeader(HeaderRequestID); id != "" {
			trace.RequestID = id
		}
		if id := c.GetHeader(HeaderTraceID); id != "" {
			trace.TraceID = id
		}
		requestID, traceID := trace.RequestID, trace.TraceID

		ctx := appctx.WithTrace(c.Request.Context(), trace)
		c.Request = c.Request.WithContext(ctx)

		c.Set("trace_id", traceID)
		c.Set("request_id", requestID)

		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)

		c.Next()
	}
}
