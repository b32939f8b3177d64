package service

import (
	"errors"
	"log"
	"time"

	"github.com/roomvault/vault-sdk/models"
	"gorm.io/gorm"
)

type RoomService struct {
	*Service
	Access *AccessService
}

func NewRoomService(s *Service, access *AccessService) *RoomService {
	log.Println("NewRoomService")
	return &RoomService{Service: s, Access: access}
}

// DefaultGroupName 建房时自动创建的默认分组名。
const DefaultGroupName = "general"

// RoomDTO 房间对外视图
type RoomDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatorID   uint64    `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoomSettingsDTO 房间设置视图
type RoomSettingsDTO struct {
	RoomID         uint64 `json:"room_id"`
	AllowDownloads bool   `json:"allow_downloads"`
	IsArchived     bool   `json:"is_archived"`
}

// UpdateSettingsReq 设置更新请求；nil 字段不改。
type UpdateSettingsReq struct {
	AllowDownloads *bool `json:"allow_downloads"`
	IsArchived     *bool `json:"is_archived"`
}

func toRoomDTO(r models.Room) RoomDTO {
	return RoomDTO{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatorID:   r.CreatorID,
		CreatedAt:   r.CreatedAt,
	}
}

// CreateRoom 创建房间。一个事务内完成：
// 房间行 + 默认设置行 + 默认分组 + 创建者管理员行 + 创建者成员行。
// 建完即满足“创建者既是管理员也是成员”的不变式。
func (s *RoomService) CreateRoom(creatorID uint64, name, description string) (*RoomDTO, error) {
	if name == "" {
		return nil, errors.New("房间名不能为空")
	}

	var room models.Room
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		room = models.Room{
			Name:        name,
			Description: description,
			CreatorID:   creatorID,
		}
		if err := tx.Create(&room).Error; err != nil {
			return err
		}

		settings := models.RoomSettings{
			RoomID:         room.ID,
			AllowDownloads: true,
		}
		if err := tx.Create(&settings).Error; err != nil {
			return err
		}

		group := models.Group{
			RoomID:    room.ID,
			Name:      DefaultGroupName,
			CreatorID: creatorID,
		}
		if err := tx.Create(&group).Error; err != nil {
			return err
		}

		admin := models.RoomAdmin{RoomID: room.ID, UserID: creatorID}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}

		member := models.GroupMember{
			GroupID: group.ID,
			UserID:  creatorID,
			RoomID:  room.ID,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}

	dto := toRoomDTO(room)
	return &dto, nil
}

// CreateGroup 在房间下新建分组（管理员能力）。
func (s *RoomService) CreateGroup(adminID, roomID uint64, name string) (*models.Group, error) {
	if name == "" {
		return nil, errors.New("分组名不能为空")
	}
	if err := s.Access.RequireRoomAdmin(adminID, roomID); err != nil {
		return nil, err
	}

	group := models.Group{
		RoomID:    roomID,
		Name:      name,
		CreatorID: adminID,
	}
	if err := s.DB.Create(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// ListUserRooms 用户参与的房间列表（按成员行聚合，去重）。
func (s *RoomService) ListUserRooms(userID uint64) ([]RoomDTO, error) {
	var rooms []models.Room
	err := s.DB.Model(&models.Room{}).
		Distinct("pv_room.*").
		Joins("JOIN pv_group_member ON pv_group_member.room_id = pv_room.id").
		Where("pv_group_member.user_id = ?", userID).
		Order("pv_room.id DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}

	out := make([]RoomDTO, len(rooms))
	for i, r := range rooms {
		out[i] = toRoomDTO(r)
	}
	return out, nil
}

// GetSettings 读取房间设置（成员可读）。
func (s *RoomService) GetSettings(userID, roomID uint64) (*RoomSettingsDTO, error) {
	if err := s.Access.RequireRoomMember(userID, roomID); err != nil {
		return nil, err
	}

	var settings models.RoomSettings
	if err := s.DB.Where("room_id = ?", roomID).First(&settings).Error; err != nil {
		return nil, err
	}
	return &RoomSettingsDTO{
		RoomID:         settings.RoomID,
		AllowDownloads: settings.AllowDownloads,
		IsArchived:     settings.IsArchived,
	}, nil
}

// UpdateSettings 修改房间设置（管理员能力）。归档在这里打标记，房间永不物理删除。
func (s *RoomService) UpdateSettings(adminID, roomID uint64, req UpdateSettingsReq) error {
	if err := s.Access.RequireRoomAdmin(adminID, roomID); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if req.AllowDownloads != nil {
		updates["allow_downloads"] = *req.AllowDownloads
	}
	if req.IsArchived != nil {
		updates["is_archived"] = *req.IsArchived
	}
	if len(updates) == 0 {
		return nil
	}

	return s.DB.Model(&models.RoomSettings{}).
		Where("room_id = ?", roomID).
		Updates(updates).Error
}

// IsArchived 房间是否已归档（设置行缺失按未归档处理）。
func (s *RoomService) IsArchived(roomID uint64) (bool, error) {
	var settings models.RoomSettings
	err := s.DB.Where("room_id = ?", roomID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return settings.IsArchived, nil
}
