package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/roomvault/vault-sdk/models"
	"github.com/roomvault/vault-sdk/transform"
	"github.com/roomvault/vault-sdk/vibe"
)

// Normalizer 媒体归一化能力（transform.Engine 实现）。
type Normalizer interface {
	Normalize(a transform.Asset) (*transform.Normalized, error)
}

// UploadService 上传流水线：授权 -> 归一化 -> 存储 -> 登记 ->（尽力）分析。
// 单次用户动作驱动的顺序管线；存储提交前取消则登记绝不发生。
type UploadService struct {
	*Service
	Access    *AccessService
	Media     *MediaService
	Rooms     *RoomService
	Normalize Normalizer
	Analyzer  vibe.Analyzer // 可选；nil 时照片直接写兜底分析值
}

func NewUploadService(s *Service, access *AccessService, media *MediaService, rooms *RoomService, n Normalizer, analyzer vibe.Analyzer) *UploadService {
	log.Println("NewUploadService")
	return &UploadService{
		Service:   s,
		Access:    access,
		Media:     media,
		Rooms:     rooms,
		Normalize: n,
		Analyzer:  analyzer,
	}
}

// UploadResult 流水线产出。
type UploadResult struct {
	MediaID      uint64  `json:"media_id"`
	URL          string  `json:"url"`
	ThumbnailURL *string `json:"thumbnail_url"`
	Type         uint8   `json:"type"`
}

// Upload 执行整条上传流水线。
//
// 失败语义：
//   - 授权不过 / 房间归档 / 归一化失败：流水线在任何外部写之前终止，零存储调用；
//   - 存储失败（storage.ErrWriteFailed）：中止，数据库无任何写入，整条可安全重跑；
//   - 登记失败（ErrRegistrationFailed）：对象已写成存储，留下孤儿，不补偿、不重试；
//   - 视频缩略图（提取或上传）失败：吞掉，thumbnail_url 保持 null，视频本体照常成功。
func (s *UploadService) Upload(ctx context.Context, userID, roomID uint64, asset transform.Asset) (*UploadResult, error) {
	if err := s.Access.RequireRoomMember(userID, roomID); err != nil {
		return nil, err
	}

	archived, err := s.Rooms.IsArchived(roomID)
	if err != nil {
		return nil, err
	}
	if archived {
		return nil, ErrRoomArchived
	}

	normalized, err := s.Normalize.Normalize(asset)
	if err != nil {
		return nil, err
	}

	// 取消检查：存储提交前被取消就不再往下走
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ts := time.Now().UnixMilli()
	path := fmt.Sprintf("%d/%d/%d.%s", roomID, userID, ts, normalized.Ext)

	url, err := s.Store.Store(ctx, s.Store.MediaBucket(), path, normalized.Data, normalized.ContentType)
	if err != nil {
		return nil, err
	}

	// 缩略图上传尽力而为：失败只记日志，thumbnail_url 置 null
	var thumbURL *string
	if len(normalized.Thumb) > 0 {
		thumbPath := fmt.Sprintf("%d/%d/%d-thumb.jpg", roomID, userID, ts)
		if u, e := s.Store.Store(ctx, s.Store.ThumbBucket(), thumbPath, normalized.Thumb, "image/jpeg"); e == nil {
			thumbURL = &u
		} else {
			log.Printf("thumbnail upload failed, continue without: %v", e)
		}
	}

	mediaType := uint8(models.MediaTypePhoto)
	if asset.Kind == transform.KindVideo {
		mediaType = models.MediaTypeVideo
	}

	m, err := s.Media.Register(roomID, userID, mediaType, url, thumbURL)
	if err != nil {
		return nil, err
	}

	// 照片分析尽力而为：分析服务失败用固定兜底值，绝不让上传失败
	if mediaType == models.MediaTypePhoto {
		s.analyzeBestEffort(ctx, m.ID, url)
	}

	return &UploadResult{
		MediaID:      m.ID,
		URL:          url,
		ThumbnailURL: thumbURL,
		Type:         mediaType,
	}, nil
}

func (s *UploadService) analyzeBestEffort(ctx context.Context, mediaID uint64, url string) {
	analysis := vibe.FallbackAnalysis()
	if s.Analyzer != nil {
		if a, err := s.Analyzer.AnalyzePhoto(ctx, url); err == nil {
			analysis = a
		}
	}
	if err := s.Media.UpdateAnalysis(mediaID, analysis); err != nil {
		log.Printf("update media analysis failed: %v", err)
	}
}
