package services

import (
	"context"

	"valsia/internal/app/models"
)

// HistoryStore 生成记录存储
type HistoryStore interface {
	Create(ctx context.Context, generation *models.Generation) error
	List(ctx context.Context, query models.GenerationQuery) ([]models.Generation, error)
}

// NoopHistory 未配置 mysql 时使用，写入直接丢弃
type NoopHistory struct{}

func (NoopHistory) Create(context.Context, *models.Generation) error {
	return nil
}

func (NoopHistory) List(context.Context, models.GenerationQuery) ([]models.Generation, error) {
	return nil, ErrHistoryDisabled
}
