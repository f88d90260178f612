package services

import (
	"context"

	"valsia/internal/app/models"
)

// Generator 上游生成服务
type Generator interface {
	// Stream 流式调用并聚合全部文本，onText 可为 nil
	Stream(ctx context.Context, app string, req models.ChatMessageRequest, onText func(string)) (string, error)
	// Block 阻塞调用，原样返回上游响应体
	Block(ctx context.Context, app string, req models.ChatMessageRequest) (*models.BlockingResult, error)
}
