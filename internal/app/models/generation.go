package models

import "time"

// GenerationStatus 生成结果状态
type GenerationStatus string

const (
	GenerationOK            GenerationStatus = "ok"
	GenerationEmpty         GenerationStatus = "empty"
	GenerationUpstreamError GenerationStatus = "upstream_error"
	GenerationFailed        GenerationStatus = "failed"
)

// Generation 一次上游生成的记录
type Generation struct {
	ID             string           `gorm:"primaryKey;size:36;comment:记录ID" json:"id"`
	Kind           string           `gorm:"size:20;not null;index;comment:应用类型 chat/roadmap/project/skill" json:"kind"`
	Skill          string           `gorm:"size:200;default:null;comment:技能名称" json:"skill"`
	Query          string           `gorm:"type:text;comment:发送给上游的query" json:"query"`
	Response       string           `gorm:"type:mediumtext;comment:聚合后的上游文本" json:"response"`
	Status         GenerationStatus `gorm:"size:20;not null;comment:结果状态" json:"status"`
	UpstreamStatus int              `gorm:"default:0;comment:上游HTTP状态码" json:"upstream_status"`
	DurationMs     int64            `gorm:"default:0;comment:耗时毫秒" json:"duration_ms"`
	ClientIP       string           `gorm:"size:64;default:null;comment:客户端IP" json:"client_ip"`
	CreatedAt      time.Time        `gorm:"type:datetime;not null;default:CURRENT_TIMESTAMP;comment:记录创建时间" json:"created_at"`
}

// TableName 指定表名
func (Generation) TableName() string {
	return "generation"
}

// GenerationQuery 列表查询条件
type GenerationQuery struct {
	Kind  string `form:"kind"`
	Limit int    `form:"limit"`
}
