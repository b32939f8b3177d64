package vault_sdk

import (
	"log"
	"sync"

	"github.com/roomvault/vault-sdk/service"
	"github.com/roomvault/vault-sdk/storage"
	"github.com/roomvault/vault-sdk/transform"
)

type VaultEngine struct {
	config *Config

	UserService   *service.UserService
	RoomService   *service.RoomService
	InviteService *service.InviteService
	MediaService  *service.MediaService
	UploadService *service.UploadService
	FeedService   *service.FeedService
	AccessService *service.AccessService
	AuthService   *service.AuthService // 鉴权服务
}

var (
	Instance *VaultEngine
	once     sync.Once
)

// NewEngine 创建实例
// 使用选项模式传入配置，Option回调
func NewEngine(opts ...Option) *VaultEngine {
	once.Do(func() {
		c := &Config{
			TablePrefix: "pv_", // Default
		}
		for _, opt := range opts {
			opt(c)
		}

		Instance = &VaultEngine{config: c}

		// 存储网关与归一化引擎
		store := storage.New(c.Storage)
		normalizer := transform.New(c.Transform)

		// 初始化基础 Service
		baseService := &service.Service{
			DB:          c.DB,
			RDB:         c.RDB,
			TablePrefix: c.TablePrefix,
			Store:       store,
		}

		// 初始化各个 Service
		Instance.AccessService = service.NewAccessService(baseService)
		Instance.UserService = service.NewUserService(baseService)
		Instance.RoomService = service.NewRoomService(baseService, Instance.AccessService)
		Instance.InviteService = service.NewInviteService(baseService, Instance.AccessService)
		Instance.MediaService = service.NewMediaService(baseService, Instance.AccessService)
		Instance.UploadService = service.NewUploadService(
			baseService, Instance.AccessService, Instance.MediaService,
			Instance.RoomService, normalizer, c.Analyzer)
		Instance.FeedService = service.NewFeedService(baseService, Instance.AccessService, c.Analyzer)
		Instance.AuthService = service.NewAuthService(c.RDB) // 初始化鉴权服务

		// 迁移表
		if err := Instance.AutoMigrate(); err != nil {
			log.Printf("AutoMigrate failed: %v", err)
		}
	})
	return Instance
}

// GetConfig 获取配置（只读用途）
func (c *VaultEngine) GetConfig() *Config {
	return c.config
}
