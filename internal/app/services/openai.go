package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	log "github.com/sirupsen/logrus"

	"valsia/internal/app/models"
	"valsia/pkg/config"
	"valsia/pkg/sse"
)

// OpenaiClient OpenAI 兼容接口的生成服务（例如 DashScope compatible-mode）
type OpenaiClient struct {
	client  openai.Client
	conf    config.Openai
	timeout time.Duration
	limit   int64
}

// NewOpenaiClient 创建新的 OpenAI 兼容客户端，超时与大小限制沿用 dify 配置
func NewOpenaiClient(conf config.Openai, limits config.Dify) *OpenaiClient {
	return &OpenaiClient{
		client: openai.NewClient(
			option.WithAPIKey(conf.ApiKey),
			option.WithBaseURL(conf.BaseURL),
		),
		conf:    conf,
		timeout: limits.StreamTimeout,
		limit:   limits.MaxResponseBytes,
	}
}

func (p *OpenaiClient) params(app string, r models.ChatMessageRequest) openai.ChatCompletionNewParams {
	msg := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	msg = append(msg, openai.SystemMessage(p.conf.Prompt(app)))
	msg = append(msg, openai.UserMessage(userPrompt(r)))
	return openai.ChatCompletionNewParams{
		Messages: msg,
		Model:    p.conf.Model,
	}
}

func (p *OpenaiClient) Stream(ctx context.Context, app string, r models.ChatMessageRequest, onText func(string)) (string, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	// 创建流式请求
	stream := p.client.Chat.Completions.NewStreaming(ctx, p.params(app, r))
	defer stream.Close()

	var full strings.Builder
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}
		if p.limit > 0 && int64(full.Len()+len(content)) > p.limit {
			return full.String(), sse.ErrResponseTooLarge
		}
		full.WriteString(content)
		if onText != nil {
			onText(content)
		}
	}
	if err := stream.Err(); err != nil {
		return full.String(), p.wrapError(ctx, app, err)
	}
	return full.String(), nil
}

// Block 返回 {"answer": "..."}，与 dify 阻塞响应的读取方式一致
func (p *OpenaiClient) Block(ctx context.Context, app string, r models.ChatMessageRequest) (*models.BlockingResult, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	completion, err := p.client.Chat.Completions.New(ctx, p.params(app, r))
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			body, _ := json.Marshal(map[string]string{"message": apiErr.Message})
			return &models.BlockingResult{Status: apiErr.StatusCode, Body: body}, nil
		}
		return nil, p.wrapError(ctx, app, err)
	}

	var answer string
	if len(completion.Choices) > 0 {
		answer = completion.Choices[0].Message.Content
	}
	body, err := json.Marshal(map[string]string{"answer": answer})
	if err != nil {
		return nil, fmt.Errorf("encode answer: %w", err)
	}
	return &models.BlockingResult{Status: http.StatusOK, Body: body}, nil
}

func (p *OpenaiClient) wrapError(ctx context.Context, app string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		log.WithField("app", app).Warnf("openai api error: %s", apiErr.Message)
		return &UpstreamError{Status: apiErr.StatusCode, Message: apiErr.Message}
	}
	return streamError(ctx, fmt.Errorf("request openai %s: %w", app, err))
}

func (p *OpenaiClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

// userPrompt 将 inputs 按键名排序后附在 query 之后
func userPrompt(r models.ChatMessageRequest) string {
	keys := make([]string, 0, len(r.Inputs))
	for k, v := range r.Inputs {
		if v != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return r.Query
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(r.Query)
	b.WriteString("\n\n")
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(r.Inputs[k])
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
