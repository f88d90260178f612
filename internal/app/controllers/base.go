package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"valsia/internal/app/models"
	"valsia/internal/app/services"
	"valsia/internal/pkg/code"
	"valsia/pkg/sse"
)

// StatusClientClosedRequest 客户端在生成完成前断开
const StatusClientClosedRequest = 499

func Response(c *gin.Context, code int, message string, data interface{}) {
	if nil == data {
		data = struct {
		}{}
	}
	resp := &models.RespValue{
		Code: code,
		Msg:  message,
		Data: data,
	}
	c.JSON(http.StatusOK, resp)
}

func ResponseWithErr(c *gin.Context, code int, message string, err string, data interface{}) {
	if nil == data {
		data = struct {
		}{}
	}
	resp := &models.RespValue{
		Code: code,
		Msg:  message,
		Err:  err,
		Data: data,
	}
	c.JSON(http.StatusOK, resp)
}

func Health(c *gin.Context) {
	Response(c, code.Success, code.MsgSuccess, "")
}

// ErrorStatus 错误对应的 HTTP 状态码与对外提示。
// upstreamFallback 用于上游错误体没有 message 的情况，fallback 用于无法归类的错误
func ErrorStatus(err error, upstreamFallback, fallback string) (int, string) {
	var validation *services.ValidationError
	var upstream *services.UpstreamError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Message
	case errors.As(err, &upstream):
		if upstream.Message != "" {
			return upstream.Status, upstream.Message
		}
		return upstream.Status, upstreamFallback
	case errors.Is(err, services.ErrNoResponseBody):
		return http.StatusInternalServerError, "No response body"
	case errors.Is(err, sse.ErrStreamTimeout):
		return http.StatusGatewayTimeout, "Upstream timed out"
	case errors.Is(err, sse.ErrResponseTooLarge):
		return http.StatusBadGateway, "Upstream response too large"
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "Request canceled"
	}
	return http.StatusInternalServerError, fallback
}
