package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	vault_sdk "github.com/roomvault/vault-sdk"
	"github.com/roomvault/vault-sdk/middleware"
	"github.com/roomvault/vault-sdk/storage"
	"github.com/roomvault/vault-sdk/transform"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	// 0. 环境变量（.env 可选）
	_ = godotenv.Load()

	// 1. 初始化数据库连接
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "root:password@tcp(127.0.0.1:3306)/vault_db?charset=utf8mb4&parseTime=True&loc=Local"
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("数据库连接失败:", err)
	}

	// 2. Redis（token 鉴权需要）
	rdb := redis.NewClient(&redis.Options{
		Addr: getenv("REDIS_ADDR", "127.0.0.1:6379"),
	})

	// 3. 初始化 Vault Engine（单例模式，全局只需调用一次）
	engine := vault_sdk.NewEngine(
		vault_sdk.WithDB(db),
		vault_sdk.WithRDB(rdb),
		vault_sdk.WithTablePrefix("pv_"),
		vault_sdk.WithStorage(storage.Config{
			BaseURL: os.Getenv("STORAGE_URL"),     // 例 https://xxx.supabase.co/storage/v1
			APIKey:  os.Getenv("STORAGE_ANON_KEY"), // 匿名访问密钥
		}),
		// 质量与尺寸是固定配置，保证同样输入产出可预测
		vault_sdk.WithTransform(transform.Config{
			PhotoMaxEdge: 1440,
			PhotoQuality: 72,
			MaxVideoMs:   120000,
			ThumbAtMs:    1500,
		}),
	)

	// 4. 创建 Gin 路由
	r := gin.Default()

	// 设置 CORS（如果需要）
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// 注册 Swagger UI
	vault_sdk.RegisterSwagger(r, "/swagger/*any")

	// 5. API 路由组
	api := r.Group("/api/v1")

	// 用户模块（登录注册不走鉴权）
	userAPI := api.Group("/user")
	{
		userAPI.POST("/register", engine.GinHandleUserRegister)
		userAPI.POST("/login", engine.GinHandleUserLogin)
	}

	// 其余接口统一走 token 鉴权
	authed := api.Group("")
	authed.Use(middleware.GinAuthMiddleware(engine.AuthService, nil))
	{
		authed.GET("/user/info", engine.GinHandleGetUserInfo)

		// 房间模块
		authed.POST("/room", engine.GinHandleCreateRoom)
		authed.GET("/room/list", engine.GinHandleListUserRooms)
		authed.POST("/room/group", engine.GinHandleCreateGroup)
		authed.GET("/room/settings", engine.GinHandleGetRoomSettings)
		authed.POST("/room/settings", engine.GinHandleUpdateRoomSettings)

		// 邀请模块
		authed.POST("/invite", engine.GinHandleCreateInvite)
		authed.POST("/invite/accept", engine.GinHandleAcceptInvite)
		authed.POST("/invite/revoke", engine.GinHandleRevokeInvite)

		// 媒体模块
		authed.POST("/media/upload", engine.GinHandleUploadMedia)
		authed.GET("/media/feed", engine.GinHandleRoomFeed)
		authed.GET("/media/vibe", engine.GinHandleRoomVibe)
		authed.GET("/media/download", engine.GinHandleMediaDownload)
		authed.POST("/media/comment", engine.GinHandleAddComment)
		authed.POST("/media/reaction", engine.GinHandleAddReaction)
	}

	// 6. 启动服务器
	log.Println("Vault Server 启动在 :8080")
	log.Println("Swagger UI: http://localhost:8080/swagger/index.html")
	if err := r.Run(":8080"); err != nil {
		log.Fatal("服务器启动失败:", err)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
