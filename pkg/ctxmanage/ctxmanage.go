package ctxmanage

import (
	"context"

	"github.com/gin-gonic/gin"
)

type traceIdKey string

// TraceIdKey is the context key under which the middleware stores the
// request's trace id.
const TraceIdKey traceIdKey = "traceId"

func WithTraceId(ctx context.Context, traceId string) context.Context {
	return context.WithValue(ctx, TraceIdKey, traceId)
}

func GetTraceId(ctx context.Context) string {
	traceId, ok := ctx.Value(TraceIdKey).(string)
	if !ok {
		return "unknown"
	}
	return traceId
}

// GetTraceIdOfRequest fetches the trace id set by the logging middleware.
func GetTraceIdOfRequest(c *gin.Context) string {
	return GetTraceId(c.Request.Context())
}
