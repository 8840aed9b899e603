package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aigc-platform/detect_gateway/internal/moderation"
)

// requestLogger 用 zap 记录每个请求的方法、路径、状态码与耗时。
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("HTTP 请求完成",
			zap.String("方法(method)", c.Request.Method),
			zap.String("路径(path)", c.Request.URL.Path),
			zap.Int("状态码(status)", c.Writer.Status()),
			zap.Duration("耗时(latency)", time.Since(start)),
			zap.String("来源(client_ip)", c.ClientIP()),
		)
	}
}

// recovery 捕获 handler 中的 panic，记录日志并返回统一错误信封。
func recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("HTTP 处理发生 panic",
					zap.String("路径(path)", c.Request.URL.Path),
					zap.Any("panic", r),
				)
				writeError(c, moderation.NewInternalError("服务内部错误", nil))
				c.Abort()
			}
		}()
		c.Next()
	}
}

// cors 处理跨域：允许配置的来源，空列表表示全放开（开发环境）。
func cors(allowOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowOrigins))
	for _, origin := range allowOrigins {
		allowed[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if len(allowed) == 0 {
				c.Header("Access-Control-Allow-Origin", "*")
			} else if _, ok := allowed[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
