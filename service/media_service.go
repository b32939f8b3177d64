package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/roomvault/vault-sdk/models"
	"github.com/roomvault/vault-sdk/vibe"
	"gorm.io/gorm"
)

// MediaService 媒体登记与附属写入（评论/表态）。
// 登记的前置条件：URL 已经真实存在（存储网关写成功），本服务只写行、不碰字节。
type MediaService struct {
	*Service
	Access *AccessService
}

func NewMediaService(s *Service, access *AccessService) *MediaService {
	log.Println("NewMediaService")
	return &MediaService{Service: s, Access: access}
}

// MediaDTO 媒体对外视图
type MediaDTO struct {
	ID           uint64    `json:"id"`
	RoomID       uint64    `json:"room_id"`
	UploaderID   uint64    `json:"uploader_id"`
	Type         uint8     `json:"type"`
	URL          string    `json:"url"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	Caption      string    `json:"caption"`
	Mood         string    `json:"mood"`
	AiTags       []string  `json:"ai_tags"`
	CreatedAt    time.Time `json:"created_at"`
}

func toMediaDTO(m models.Media) MediaDTO {
	dto := MediaDTO{
		ID:           m.ID,
		RoomID:       m.RoomID,
		UploaderID:   m.UploaderID,
		Type:         m.Type,
		URL:          m.URL,
		ThumbnailURL: m.ThumbnailURL,
		Caption:      m.Caption,
		Mood:         m.Mood,
		CreatedAt:    m.CreatedAt,
	}
	if len(m.AiTags) > 0 {
		_ = json.Unmarshal(m.AiTags, &dto.AiTags)
	}
	return dto
}

// Register 登记一条已上传的媒体：恰好一次行插入，返回生成的记录。
// 数据库拒绝（约束冲突等）包装为 ErrRegistrationFailed，不重试；
// 此时已上传的对象成为孤儿，是接受的风险。
func (s *MediaService) Register(roomID, uploaderID uint64, mediaType uint8, url string, thumbnailURL *string) (*models.Media, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty url", ErrRegistrationFailed)
	}
	if mediaType != models.MediaTypePhoto && mediaType != models.MediaTypeVideo {
		return nil, fmt.Errorf("%w: unknown media type %d", ErrRegistrationFailed, mediaType)
	}

	m := models.Media{
		RoomID:       roomID,
		UploaderID:   uploaderID,
		Type:         mediaType,
		URL:          url,
		ThumbnailURL: thumbnailURL,
	}
	if err := s.DB.Create(&m).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}
	return &m, nil
}

// SetThumbnail 缩略图地址的一次性迁移：只允许 null -> 有值。
// 已有缩略图的行不会被覆盖（条件更新命中 0 行时静默返回）。
func (s *MediaService) SetThumbnail(mediaID uint64, thumbnailURL string) error {
	if thumbnailURL == "" {
		return errors.New("缩略图地址不能为空")
	}
	return s.DB.Model(&models.Media{}).
		Where("id = ? AND thumbnail_url IS NULL", mediaID).
		Update("thumbnail_url", thumbnailURL).Error
}

// UpdateAnalysis 回填分析软字段（caption/mood/ai_tags）。
// 属于媒体行允许的软字段变更，不触碰 url/room_id 等不可变字段。
func (s *MediaService) UpdateAnalysis(mediaID uint64, a vibe.Analysis) error {
	tags, err := json.Marshal(a.Tags)
	if err != nil {
		return err
	}
	return s.DB.Model(&models.Media{}).
		Where("id = ?", mediaID).
		Updates(map[string]interface{}{
			"caption": a.Caption,
			"mood":    a.Mood,
			"ai_tags": tags,
		}).Error
}

// AddComment 评论（分组成员能力）。
// 校验分组与媒体属于同一房间：任何 (group, room) 配对不上的请求一律拒绝，不报技术错误。
func (s *MediaService) AddComment(userID, mediaID, groupID uint64, body string) (*models.Comment, error) {
	if body == "" {
		return nil, errors.New("评论内容不能为空")
	}

	media, group, err := s.loadMediaAndGroup(mediaID, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.RequireGroupMember(userID, groupID); err != nil {
		return nil, err
	}

	c := models.Comment{
		MediaID: media.ID,
		GroupID: group.ID,
		RoomID:  group.RoomID, // 冗余 room_id 取分组自身的
		UserID:  userID,
		Body:    body,
	}
	if err := s.DB.Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// AddReaction 表态（分组成员能力），约束同 AddComment。
func (s *MediaService) AddReaction(userID, mediaID, groupID uint64, reactionType string) (*models.Reaction, error) {
	if reactionType == "" {
		return nil, errors.New("表态类型不能为空")
	}

	media, group, err := s.loadMediaAndGroup(mediaID, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.RequireGroupMember(userID, groupID); err != nil {
		return nil, err
	}

	r := models.Reaction{
		MediaID: media.ID,
		GroupID: group.ID,
		RoomID:  group.RoomID,
		UserID:  userID,
		Type:    reactionType,
	}
	if err := s.DB.Create(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// loadMediaAndGroup 取媒体与分组并校验二者同房间。
// 配对不上（含记录不存在）一律按授权拒绝处理（fail closed）。
func (s *MediaService) loadMediaAndGroup(mediaID, groupID uint64) (*models.Media, *models.Group, error) {
	var media models.Media
	if err := s.DB.Where("id = ?", mediaID).First(&media).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrAuthorizationDenied
		}
		return nil, nil, err
	}

	var group models.Group
	if err := s.DB.Where("id = ?", groupID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrAuthorizationDenied
		}
		return nil, nil, err
	}

	if group.RoomID != media.RoomID {
		return nil, nil, ErrAuthorizationDenied
	}
	return &media, &group, nil
}

// DownloadURL 下载原图地址：房间成员 + 房间开了 allow_downloads 才放行。
func (s *MediaService) DownloadURL(userID, mediaID uint64) (string, error) {
	var media models.Media
	if err := s.DB.Where("id = ?", mediaID).First(&media).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrAuthorizationDenied
		}
		return "", err
	}

	if err := s.Access.RequireRoomMember(userID, media.RoomID); err != nil {
		return "", err
	}

	var settings models.RoomSettings
	if err := s.DB.Where("room_id = ?", media.RoomID).First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrAuthorizationDenied
		}
		return "", err
	}
	if !settings.AllowDownloads {
		return "", ErrAuthorizationDenied
	}
	return media.URL, nil
}
