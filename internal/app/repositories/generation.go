package repositories

import (
	"context"

	"gorm.io/gorm"

	"valsia/internal/app/models"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type GenerationRepository struct {
	db *gorm.DB
}

func NewGenerationRepository(db *gorm.DB) *GenerationRepository {
	return &GenerationRepository{db: db}
}

// Create 写入一条生成记录
func (r *GenerationRepository) Create(ctx context.Context, generation *models.Generation) error {
	return r.db.WithContext(ctx).Create(generation).Error
}

// List 按创建时间倒序查询，kind 为空时不过滤
func (r *GenerationRepository) List(ctx context.Context, query models.GenerationQuery) ([]models.Generation, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	db := r.db.WithContext(ctx).Model(&models.Generation{})
	if query.Kind != "" {
		db = db.Where("kind = ?", query.Kind)
	}

	var generations []models.Generation
	if err := db.Order("created_at DESC").Limit(limit).Find(&generations).Error; err != nil {
		return nil, err
	}
	return generations, nil
}
