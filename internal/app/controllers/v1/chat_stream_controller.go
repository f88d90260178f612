package v1

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"valsia/internal/app/controllers"
	"valsia/internal/app/models"
	"valsia/internal/app/services"
	"valsia/internal/pkg/logging"
	"valsia/pkg/util"
)

var heartbeatInterval = 15 * time.Second

// sseWriter 心跳与文本来自不同 goroutine，写入需要串行；close 之后的写入被丢弃
type sseWriter struct {
	mu     sync.Mutex
	w      http.ResponseWriter
	closed bool
}

func (s *sseWriter) do(fn func(w http.ResponseWriter) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return fn(s.w)
}

func (s *sseWriter) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// ChatStream 聊天机器人，增量文本以 SSE 转发
func (c *LearningController) ChatStream(ctx *gin.Context) {
	var req models.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}
	if req.Message == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	// 设置响应头支持流式输出
	ctx.Header("Content-Type", "text/event-stream; charset=utf-8")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")
	ctx.Status(http.StatusOK)

	out := &sseWriter{w: ctx.Writer}
	entry := logging.WithContext(ctx)

	done := make(chan struct{})
	defer func() {
		close(done)
		out.close()
	}()
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = out.do(util.WriteHeartbeat)
			}
		}
	}()

	response, err := c.service.Chat(ctx.Request.Context(), req, caller(ctx), func(text string) {
		if err := out.do(func(w http.ResponseWriter) error { return util.WriteAppendText(w, text) }); err != nil {
			entry.Debugf("write append-text: %v", err)
		}
	})

	switch {
	case errors.Is(err, services.ErrEmptyResponse):
		response = msgChatEmpty
	case err != nil:
		status, message := controllers.ErrorStatus(err, msgChatUpstream, msgChatFailed)
		if status == controllers.StatusClientClosedRequest {
			entry.Info("client disconnected during chat stream")
			return
		}
		entry.Warnf("chat stream failed: %v", err)
		_ = out.do(func(w http.ResponseWriter) error { return util.WriteError(w, message, status) })
		_ = out.do(func(w http.ResponseWriter) error { util.WriteDone(w); return nil })
		return
	}

	_ = out.do(func(w http.ResponseWriter) error { return util.WriteMessageEnd(w, response) })
	_ = out.do(func(w http.ResponseWriter) error { util.WriteDone(w); return nil })
}
