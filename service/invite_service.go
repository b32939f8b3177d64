package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/roomvault/vault-sdk/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InviteService 邀请协议：创建/撤销/兑换。
// 兑换是状态机里唯一暴露给最终用户的可写迁移（Active -> Redeemed）。
type InviteService struct {
	*Service
	Access *AccessService
}

func NewInviteService(s *Service, access *AccessService) *InviteService {
	return &InviteService{Service: s, Access: access}
}

// InviteDTO 邀请对外视图
type InviteDTO struct {
	Token     string     `json:"token"`
	GroupID   uint64     `json:"group_id"`
	RoomID    uint64     `json:"room_id"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// CreateInvite 创建邀请（房间管理员能力）。ttl 为 0 表示不过期。
func (s *InviteService) CreateInvite(creatorID, groupID uint64, ttl time.Duration) (*InviteDTO, error) {
	var group models.Group
	if err := s.DB.Where("id = ?", groupID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthorizationDenied
		}
		return nil, err
	}

	if err := s.Access.RequireRoomAdmin(creatorID, group.RoomID); err != nil {
		return nil, err
	}

	inv := models.Invite{
		Token:     uuid.New().String(),
		GroupID:   group.ID,
		RoomID:    group.RoomID, // 冗余 room_id 必须取分组自身的，不信调用方
		CreatorID: creatorID,
	}
	if ttl > 0 {
		t := time.Now().Add(ttl)
		inv.ExpiresAt = &t
	}

	if err := s.DB.Create(&inv).Error; err != nil {
		return nil, err
	}

	return &InviteDTO{
		Token:     inv.Token,
		GroupID:   inv.GroupID,
		RoomID:    inv.RoomID,
		ExpiresAt: inv.ExpiresAt,
		CreatedAt: inv.CreatedAt,
	}, nil
}

// RevokeInvite 撤销邀请：创建者本人或房间管理员可撤销。
// 已兑换的邀请不可再撤销（终态）。
func (s *InviteService) RevokeInvite(userID uint64, token string) error {
	var inv models.Invite
	if err := s.DB.Where("token = ?", token).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteInvalid
		}
		return err
	}

	if inv.CreatorID != userID {
		if err := s.Access.RequireRoomAdmin(userID, inv.RoomID); err != nil {
			return err
		}
	}

	res := s.DB.Model(&models.Invite{}).
		Where("id = ? AND redeemed_by IS NULL", inv.ID).
		Update("is_revoked", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInviteInvalid
	}
	return nil
}

// AcceptInvite 兑换邀请，成功后获得分组成员身份，返回 (groupID, roomID)。
//
// 校验邀请状态 + 写成员行 + 标记 Redeemed 必须是一个原子单元；
// 迁移用条件 UPDATE（行仍为 Active 才生效）做 CAS，两个并发兑换者恰好一个成功，
// 输掉的一方得到确定的 ErrInviteInvalid，不会出现半套用的兑换。
func (s *InviteService) AcceptInvite(ctx context.Context, token string, userID uint64) (groupID, roomID uint64, err error) {
	if token == "" || userID == 0 {
		return 0, 0, ErrInviteInvalid
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Invite
		if e := tx.Where("token = ?", token).First(&inv).Error; e != nil {
			if errors.Is(e, gorm.ErrRecordNotFound) {
				return ErrInviteInvalid
			}
			return e
		}

		now := time.Now()

		// CAS：写时仍须是 Active（未撤销、未兑换、未过期）
		res := tx.Model(&models.Invite{}).
			Where("id = ? AND is_revoked = ? AND redeemed_by IS NULL AND (expires_at IS NULL OR expires_at > ?)",
				inv.ID, false, now).
			Updates(map[string]interface{}{
				"redeemed_by": userID,
				"redeemed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInviteInvalid
		}

		// 已是成员时静默幂等（唯一键 (group_id, user_id) 冲突不报错）
		member := models.GroupMember{
			GroupID: inv.GroupID,
			UserID:  userID,
			RoomID:  inv.RoomID,
		}
		if e := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error; e != nil {
			return e
		}

		groupID, roomID = inv.GroupID, inv.RoomID
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrInviteInvalid) {
			log.Printf("AcceptInvite failed: %v", err)
		}
		return 0, 0, err
	}
	return groupID, roomID, nil
}
