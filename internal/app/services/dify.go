package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/imroc/req/v3"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"valsia/internal/app/models"
	"valsia/internal/pkg/metrics"
	"valsia/pkg/config"
	"valsia/pkg/sse"
)

// 错误响应体最多读取的字节数
const maxErrorBody = 64 << 10

// 聊天机器人会把文本放在 answer/text/message 任意字段中，其余应用只读 answer
var appFields = map[string][]string{
	config.AppChat:    sse.DefaultFields,
	config.AppRoadmap: {"answer"},
	config.AppProject: {"answer"},
	config.AppSkill:   {"answer"},
}

// DifyClient Dify /chat-messages 客户端
type DifyClient struct {
	client *req.Client
	conf   config.Dify
}

func NewDifyClient(conf config.Dify) *DifyClient {
	client := req.C().
		SetBaseURL(strings.TrimRight(conf.BaseURL, "/")).
		SetCommonContentType("application/json").
		DisableAutoDecode().
		SetTimeout(0) // 流的总时长由 StreamTimeout 通过 context 控制
	return &DifyClient{client: client, conf: conf}
}

func (d *DifyClient) Stream(ctx context.Context, app string, r models.ChatMessageRequest, onText func(string)) (string, error) {
	r.ResponseMode = models.ResponseModeStreaming
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	resp, err := d.post(ctx, app, r)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", upstreamError(resp.StatusCode, resp.Body)
	}
	if resp.Body == http.NoBody || resp.ContentLength == 0 {
		return "", ErrNoResponseBody
	}

	fields, ok := appFields[app]
	if !ok {
		fields = sse.DefaultFields
	}
	return sse.Aggregate(ctx, resp.Body, sse.Options{
		Fields:   fields,
		MaxBytes: d.conf.MaxResponseBytes,
		OnText:   onText,
		OnSkip: func(line string, err error) {
			metrics.SkippedLinesTotal.WithLabelValues(app).Inc()
		},
	})
}

func (d *DifyClient) Block(ctx context.Context, app string, r models.ChatMessageRequest) (*models.BlockingResult, error) {
	r.ResponseMode = models.ResponseModeBlocking
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	resp, err := d.post(ctx, app, r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := readLimited(resp.Body, d.conf.MaxResponseBytes)
	if err != nil {
		return nil, streamError(ctx, err)
	}
	return &models.BlockingResult{Status: resp.StatusCode, Body: body}, nil
}

func (d *DifyClient) post(ctx context.Context, app string, r models.ChatMessageRequest) (*req.Response, error) {
	if r.User == "" {
		r.User = d.conf.User
	}
	if r.Inputs == nil {
		r.Inputs = map[string]string{}
	}
	log.WithFields(log.Fields{"app": app, "mode": r.ResponseMode}).Debugf("sending to dify: %s", r.Query)

	resp, err := d.client.R().
		SetContext(ctx).
		SetBearerAuthToken(d.conf.Key(app)).
		SetBody(&r).
		DisableAutoReadResponse().
		Post("/chat-messages")
	if err != nil {
		return nil, streamError(ctx, fmt.Errorf("request dify %s: %w", app, err))
	}
	if resp.Response == nil || resp.Body == nil {
		return nil, ErrNoResponseBody
	}
	return resp, nil
}

func (d *DifyClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.conf.StreamTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.conf.StreamTimeout)
}

// upstreamError 读取错误体中的 message 字段
func upstreamError(status int, body io.Reader) error {
	var raw []byte
	if body != nil {
		raw, _ = io.ReadAll(io.LimitReader(body, maxErrorBody))
	}
	e := &UpstreamError{Status: status, Body: raw}
	if gjson.ValidBytes(raw) {
		e.Message = gjson.GetBytes(raw, "message").String()
	}
	return e
}

// streamError 将超时统一成 sse.ErrStreamTimeout
func streamError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", sse.ErrStreamTimeout, err)
	}
	return err
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, sse.ErrResponseTooLarge
	}
	return body, nil
}
