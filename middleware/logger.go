package middleware

import (
	"catalog-service/pkg/ctxmanage"
	"catalog-service/pkg/logkey"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Logger assigns every request a trace id, stores it in the request context
// and logs one line per request once the handler chain finishes.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := uuid.NewString()
		ctx := ctxmanage.WithTraceId(c.Request.Context(), traceId)
		c.Request = c.Request.WithContext(ctx)

		startTime := time.Now()
		c.Next()

		slog.Info("request processed",
			slog.String(logkey.TraceID, traceId),
			slog.String("Method", c.Request.Method),
			slog.String("Path", c.Request.URL.Path),
			slog.Int("Status Code", c.Writer.Status()),
			slog.String("Duration", time.Since(startTime).String()),
		)
	}
}
