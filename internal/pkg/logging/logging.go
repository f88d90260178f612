package logging

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"valsia/pkg/config"
)

// Setup 配置全局 logrus：开发模式输出文本，其余输出 JSON
func Setup(conf config.Server) {
	if conf.IsDev() {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&log.JSONFormatter{})
	}
	log.SetOutput(os.Stdout)

	level, err := log.ParseLevel(conf.LogLevel)
	if err != nil {
		log.Warnf("invalid log level %q, fallback to info", conf.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// Middleware 请求日志
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"request_id": c.GetString(RequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"client_ip":  c.ClientIP(),
		})
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("request failed")
		case c.Writer.Status() >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}

// RequestIDKey gin 上下文中保存请求 ID 的键
const RequestIDKey = "request_id"

// WithContext 带请求 ID 的日志条目
func WithContext(c *gin.Context) *log.Entry {
	return log.WithField("request_id", c.GetString(RequestIDKey))
}
