package vault_sdk

import (
	"fmt"

	"github.com/roomvault/vault-sdk/models"
)

// AutoMigrate 迁移全部业务表。
// 注意 Group/GroupMember/Media 上的复合唯一索引承担“子行 room_id 必须与父行一致”
// 的数据库侧兜底，应用层再怎么出错也插不进配对错误的行。
func (c *VaultEngine) AutoMigrate() error {
	if c.config.DB == nil {
		return fmt.Errorf("db is nil")
	}
	return c.config.DB.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.Group{},
		&models.GroupMember{},
		&models.RoomAdmin{},
		&models.RoomSettings{},
		&models.Invite{},
		&models.Media{},
		&models.Comment{},
		&models.Reaction{},
	)
}
