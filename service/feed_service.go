package service

import (
	"context"
	"log"

	"github.com/roomvault/vault-sdk/models"
	"github.com/roomvault/vault-sdk/vibe"
)

// FeedService 房间的按日聚合信息流与氛围摘要。
type FeedService struct {
	*Service
	Access   *AccessService
	Analyzer vibe.Analyzer // 可选；nil 或失败时用固定兜底文案
}

func NewFeedService(s *Service, access *AccessService, analyzer vibe.Analyzer) *FeedService {
	return &FeedService{Service: s, Access: access, Analyzer: analyzer}
}

// DayFeedDTO 一天的媒体聚合。
type DayFeedDTO struct {
	Date  string     `json:"date"` // YYYY-MM-DD
	Items []MediaDTO `json:"items"`
}

// RoomFeed 房间信息流：按天分组，最新的天在前，天内按时间倒序（成员可读）。
func (s *FeedService) RoomFeed(userID, roomID uint64) ([]DayFeedDTO, error) {
	if err := s.Access.RequireRoomMember(userID, roomID); err != nil {
		return nil, err
	}

	var media []models.Media
	err := s.DB.Where("room_id = ?", roomID).
		Order("created_at DESC").
		Find(&media).Error
	if err != nil {
		return nil, err
	}

	// 查询已按时间倒序，顺序扫即可保持“最新的天在前”
	var out []DayFeedDTO
	for _, m := range media {
		day := m.CreatedAt.Format("2006-01-02")
		if len(out) == 0 || out[len(out)-1].Date != day {
			out = append(out, DayFeedDTO{Date: day})
		}
		out[len(out)-1].Items = append(out[len(out)-1].Items, toMediaDTO(m))
	}
	return out, nil
}

// vibeSummaryLimit 参与摘要的最近媒体条数
const vibeSummaryLimit = 20

// VibeSummary 房间氛围摘要（成员可读）。
// 取最近若干条媒体的 caption/tags 喂给分析服务；服务失败或未注入时
// 显式换成固定兜底文案，永不把分析错误暴露给调用方。
func (s *FeedService) VibeSummary(ctx context.Context, userID, roomID uint64) (string, error) {
	if err := s.Access.RequireRoomMember(userID, roomID); err != nil {
		return "", err
	}

	var media []models.Media
	err := s.DB.Where("room_id = ?", roomID).
		Order("created_at DESC").
		Limit(vibeSummaryLimit).
		Find(&media).Error
	if err != nil {
		return "", err
	}

	if s.Analyzer == nil || len(media) == 0 {
		return vibe.FallbackSummary, nil
	}

	items := make([]vibe.SummaryItem, 0, len(media))
	for _, m := range media {
		dto := toMediaDTO(m)
		items = append(items, vibe.SummaryItem{Caption: dto.Caption, Tags: dto.AiTags})
	}

	summary, err := s.Analyzer.Summarize(ctx, items)
	if err != nil || summary == "" {
		log.Printf("vibe summarize failed, using fallback: %v", err)
		return vibe.FallbackSummary, nil
	}
	return summary, nil
}
