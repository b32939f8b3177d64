package service

import "github.com/roomvault/vault-sdk/models"

// AccessService 访问控制层：三个纯读布尔谓词。
// 身份一律显式传参（不依赖会话里的隐式身份），所有写路径调用前必须先过谓词。
type AccessService struct {
	*Service
}

func NewAccessService(s *Service) *AccessService {
	return &AccessService{Service: s}
}

// IsRoomMember 用户是否为房间成员：该房间任意分组下存在成员行即为真。
// 成员行冗余携带 room_id，单表即可判定。
func (s *AccessService) IsRoomMember(userID, roomID uint64) (bool, error) {
	if userID == 0 || roomID == 0 {
		return false, nil
	}
	var count int64
	err := s.DB.Model(&models.GroupMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsRoomAdmin 用户是否为房间管理员。
func (s *AccessService) IsRoomAdmin(userID, roomID uint64) (bool, error) {
	if userID == 0 || roomID == 0 {
		return false, nil
	}
	var count int64
	err := s.DB.Model(&models.RoomAdmin{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsGroupMember 用户是否为指定分组成员。
// 刻意用更窄的分组级判定（room_id 由分组自带，不再与调用方传入值比对），
// 供评论/表态授权使用。
func (s *AccessService) IsGroupMember(userID, groupID uint64) (bool, error) {
	if userID == 0 || groupID == 0 {
		return false, nil
	}
	var count int64
	err := s.DB.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RequireRoomMember 写路径守卫：非成员返回 ErrAuthorizationDenied。
func (s *AccessService) RequireRoomMember(userID, roomID uint64) error {
	ok, err := s.IsRoomMember(userID, roomID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAuthorizationDenied
	}
	return nil
}

// RequireRoomAdmin 写路径守卫：非管理员返回 ErrAuthorizationDenied。
func (s *AccessService) RequireRoomAdmin(userID, roomID uint64) error {
	ok, err := s.IsRoomAdmin(userID, roomID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAuthorizationDenied
	}
	return nil
}

// RequireGroupMember 写路径守卫：非分组成员返回 ErrAuthorizationDenied。
func (s *AccessService) RequireGroupMember(userID, groupID uint64) error {
	ok, err := s.IsGroupMember(userID, groupID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAuthorizationDenied
	}
	return nil
}
