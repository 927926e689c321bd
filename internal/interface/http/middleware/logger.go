package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiebiao/autoparts/pkg/logger"
	"github.com/xiebiao/autoparts/pkg/tracing"
)

// RequestIDHeader 请求ID头,客户端未传时生成
const RequestIDHeader = "X-Request-ID"

// RequestLogger 访问日志
// 1. 生成/透传请求ID,写入响应头
// 2. 把带request_id的logger放进request context,后续logger.FromContext都能带上
// 3. 超过slow阈值的请求记Warn
func RequestLogger(log *zap.Logger, slow time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		fields := []zap.Field{zap.String("request_id", requestID)}
		if traceID := tracing.ExtractTraceID(c.Request.Context()); traceID != "" {
			fields = append(fields, zap.String("trace_id", traceID))
		}
		reqLog := log.With(fields...)
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), reqLog))

		c.Next()

		latency := time.Since(start)
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		entry := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		if uid := GetUserID(c); uid != 0 {
			entry = append(entry, zap.Uint("user_id", uid))
		}

		switch {
		case c.Writer.Status() >= 500:
			reqLog.Error("http request", entry...)
		case slow > 0 && latency > slow:
			reqLog.Warn("slow http request", entry...)
		default:
			reqLog.Info("http request", entry...)
		}
	}
}
