package vault_sdk

import (
	"github.com/go-redis/redis/v8"
	"github.com/roomvault/vault-sdk/storage"
	"github.com/roomvault/vault-sdk/transform"
	"github.com/roomvault/vault-sdk/vibe"
	"gorm.io/gorm"
)

type ServiceConfig struct {
	Debug bool
}

type Config struct {
	DB          *gorm.DB
	RDB         *redis.Client
	TablePrefix string
	Service     ServiceConfig

	// Storage 存储网关配置（桶名、接口地址、密钥）
	Storage storage.Config

	// Transform 媒体归一化配置；Extractor 不配时视频没有缩略图（仍可上传）
	Transform transform.Config

	// Analyzer 外部分析服务；不配时照片分析/氛围摘要一律走固定兜底值
	Analyzer vibe.Analyzer
}

type Option func(*Config)

func WithDB(db *gorm.DB) Option {
	return func(c *Config) {
		c.DB = db
	}
}

func WithRDB(rdb *redis.Client) Option {
	return func(c *Config) {
		c.RDB = rdb
	}
}

func WithTablePrefix(prefix string) Option {
	return func(c *Config) {
		c.TablePrefix = prefix
	}
}

func WithServiceDebug(debug bool) Option {
	return func(c *Config) {
		c.Service.Debug = debug
	}
}

// WithStorage 配置存储网关。
func WithStorage(cfg storage.Config) Option {
	return func(c *Config) {
		c.Storage = cfg
	}
}

// WithTransform 配置媒体归一化参数。
func WithTransform(cfg transform.Config) Option {
	return func(c *Config) {
		c.Transform = cfg
	}
}

// WithAnalyzer 注入外部分析服务实现。
func WithAnalyzer(a vibe.Analyzer) Option {
	return func(c *Config) {
		c.Analyzer = a
	}
}
