package service

import (
	"context"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// BlobStore 存储网关能力（storage.Client 实现）。
// service 层只依赖接口，方便测试注入假实现。
type BlobStore interface {
	Store(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error)
	MediaBucket() string
	ThumbBucket() string
}

// Service 基础服务，包含数据库和配置
type Service struct {
	DB          *gorm.DB
	RDB         *redis.Client
	TablePrefix string

	// Store 存储网关（由 engine 注入）
	Store BlobStore
}

// Table 获取带前缀的表名
func (s *Service) Table(name string) *gorm.DB {
	return s.DB.Table(name)
}
