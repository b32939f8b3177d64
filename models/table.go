package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	prefix = "pv_"
)

// User 用户表
type User struct {
	ID          uint64 `gorm:"primarykey"`
	UID         string `gorm:"size:36;uniqueIndex;not null"` // 对外用户 ID
	Username    string `gorm:"size:50;uniqueIndex;not null"` // 用户名
	Nickname    string `gorm:"size:100;not null"`            // 昵称
	Password    string `gorm:"size:255;not null"`            // 密码
	Avatar      string `gorm:"size:500"`                     // 头像
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return prefix + "user"
}

// Room 房间表（私密分享空间）
// 本核心不做物理删除：归档走 RoomSettings.IsArchived 标记。
type Room struct {
	ID          uint64 `gorm:"primarykey"`
	Name        string `gorm:"size:100;not null"` // 房间名称
	Description string `gorm:"size:500"`          // 描述
	CreatorID   uint64 `gorm:"index"`             // 创建者 ID
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// 关联关系
	Creator  User          `gorm:"foreignKey:CreatorID"`
	Groups   []Group       `gorm:"foreignKey:RoomID;references:ID"`
	Settings *RoomSettings `gorm:"foreignKey:RoomID;references:ID"`
	Media    []Media       `gorm:"foreignKey:RoomID;references:ID"`
}

func (Room) TableName() string {
	return prefix + "room"
}

// Group 分组表：房间成员的分区，一个分组只属于一个房间。
// (id, room_id) 建唯一索引，子表用复合键 (group_id, room_id) 引用，
// 保证任何携带 group_id 的行同时携带正确的 room_id，授权只看本行、不需要 join。
type Group struct {
	ID        uint64 `gorm:"primarykey;uniqueIndex:idx_group_room"`
	RoomID    uint64 `gorm:"uniqueIndex:idx_group_room;index;not null"` // 所属房间 ID
	Name      string `gorm:"size:100;not null"`                         // 分组名称
	CreatorID uint64 `gorm:"index"`                                     // 创建者 ID
	CreatedAt time.Time

	// 关联关系
	Room    Room          `gorm:"foreignKey:RoomID;references:ID"`
	Members []GroupMember `gorm:"foreignKey:GroupID;references:ID"`
}

func (Group) TableName() string {
	return prefix + "group"
}

// GroupMember 分组成员表
// room_id 冗余存储且必须与分组自身的 room_id 一致（写入前由 service 校验），
// 防止猜测 group_id 跨房间泄露。
type GroupMember struct {
	ID        uint64 `gorm:"primarykey"`
	GroupID   uint64 `gorm:"index:idx_group_user,unique;not null"` // 分组 ID
	UserID    uint64 `gorm:"index:idx_group_user,unique;not null"` // 用户 ID
	RoomID    uint64 `gorm:"index:idx_room_user;not null"`         // 所属房间 ID（冗余）
	CreatedAt time.Time

	// 关联关系
	Group Group `gorm:"foreignKey:GroupID;references:ID"`
	User  User  `gorm:"foreignKey:UserID"`
}

func (GroupMember) TableName() string {
	return prefix + "group_member"
}

// RoomAdmin 房间管理员表：独立于分组成员的提升能力。
type RoomAdmin struct {
	ID        uint64 `gorm:"primarykey"`
	RoomID    uint64 `gorm:"index:idx_room_admin,unique;not null"` // 房间 ID
	UserID    uint64 `gorm:"index:idx_room_admin,unique;not null"` // 用户 ID
	CreatedAt time.Time

	// 关联关系
	Room Room `gorm:"foreignKey:RoomID;references:ID"`
	User User `gorm:"foreignKey:UserID"`
}

func (RoomAdmin) TableName() string {
	return prefix + "room_admin"
}

// RoomSettings 房间设置表（与房间一对一）
type RoomSettings struct {
	RoomID         uint64 `gorm:"primarykey"`    // 房间 ID
	AllowDownloads bool   `gorm:"default:true"`  // 是否允许下载原图
	IsArchived     bool   `gorm:"default:false"` // 是否归档（归档后拒绝新上传）
	UpdatedAt      time.Time
}

func (RoomSettings) TableName() string {
	return prefix + "room_settings"
}

// Invite 邀请表：一次性、可过期的入组令牌。
// 状态机：Active ->（Redeemed | Revoked | Expired），三个终态。
// Expired 是派生态（now > expires_at），不落库。
type Invite struct {
	ID         uint64     `gorm:"primarykey"`
	Token      string     `gorm:"size:64;uniqueIndex;not null"` // 令牌（不可枚举）
	GroupID    uint64     `gorm:"index;not null"`               // 目标分组 ID
	RoomID     uint64     `gorm:"index;not null"`               // 所属房间 ID（冗余，必须与分组一致）
	CreatorID  uint64     `gorm:"index"`                        // 创建者 ID
	ExpiresAt  *time.Time // 过期时间，nil 为不过期
	IsRevoked  bool       `gorm:"default:false"` // 是否已撤销
	RedeemedBy *uint64    `gorm:"index"`         // 兑换者 ID，nil 为未兑换
	RedeemedAt *time.Time // 兑换时间
	CreatedAt  time.Time

	// 关联关系
	Group Group `gorm:"foreignKey:GroupID;references:ID"`
	Room  Room  `gorm:"foreignKey:RoomID;references:ID"`
}

func (Invite) TableName() string {
	return prefix + "invite"
}

// 媒体类型
const (
	MediaTypePhoto = 1 // 照片
	MediaTypeVideo = 2 // 视频
)

// Media 媒体表：房间级可见，不直接引用分组。
// 行创建后不可变，例外：
// - ThumbnailURL 允许 null -> 有值 的一次性迁移
// - Caption/Mood/AiTags 为分析服务回填的软字段
// (id, room_id) 建唯一索引供 comment/reaction 复合键引用。
type Media struct {
	ID           uint64         `gorm:"primarykey;uniqueIndex:idx_media_room"`
	RoomID       uint64         `gorm:"uniqueIndex:idx_media_room;index;not null"` // 房间 ID
	UploaderID   uint64         `gorm:"index;not null"`                            // 上传者 ID
	Type         uint8          `gorm:"type:tinyint;not null"`                     // 类型: 1-照片 2-视频
	URL          string         `gorm:"size:1000;not null"`                        // 存储公开地址
	ThumbnailURL *string        `gorm:"size:1000"`                                 // 视频缩略图地址，可为 null
	Caption      string         `gorm:"size:500"`                                  // AI 生成描述
	Mood         string         `gorm:"size:20"`                                   // AI 情绪标签
	AiTags       datatypes.JSON `gorm:"column:ai_tags;type:json"`                  // AI 标签列表
	CreatedAt    time.Time

	// 关联关系
	Room     Room `gorm:"foreignKey:RoomID;references:ID"`
	Uploader User `gorm:"foreignKey:UploaderID"`
}

func (Media) TableName() string {
	return prefix + "media"
}

// Comment 评论表
// 冗余携带 room_id，且必须同时匹配分组与媒体的 room_id。
type Comment struct {
	ID        uint64 `gorm:"primarykey"`
	MediaID   uint64 `gorm:"index;not null"`     // 媒体 ID
	GroupID   uint64 `gorm:"index;not null"`     // 分组 ID（评论可见范围）
	RoomID    uint64 `gorm:"index;not null"`     // 房间 ID（冗余）
	UserID    uint64 `gorm:"index;not null"`     // 评论者 ID
	Body      string `gorm:"type:text;not null"` // 评论内容
	CreatedAt time.Time

	// 关联关系
	Media Media `gorm:"foreignKey:MediaID;references:ID"`
	User  User  `gorm:"foreignKey:UserID"`
}

func (Comment) TableName() string {
	return prefix + "comment"
}

// Reaction 表态表：同一用户对同一媒体同一类型只保留一条。
type Reaction struct {
	ID        uint64 `gorm:"primarykey"`
	MediaID   uint64 `gorm:"index:idx_media_user_type,unique;not null"`         // 媒体 ID
	GroupID   uint64 `gorm:"index;not null"`                                    // 分组 ID
	RoomID    uint64 `gorm:"index;not null"`                                    // 房间 ID（冗余）
	UserID    uint64 `gorm:"index:idx_media_user_type,unique;not null"`         // 用户 ID
	Type      string `gorm:"size:20;index:idx_media_user_type,unique;not null"` // 表态类型
	CreatedAt time.Time

	// 关联关系
	Media Media `gorm:"foreignKey:MediaID;references:ID"`
	User  User  `gorm:"foreignKey:UserID"`
}

func (Reaction) TableName() string {
	return prefix + "reaction"
}
