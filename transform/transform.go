// Package transform 媒体归一化：上传前的纯转换阶段（无重试、无外部 I/O）。
package transform

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/nfnt/resize"
)

// ErrDurationExceeded 视频超出时长上限（硬性前置校验，不做任何转换）。
var ErrDurationExceeded = errors.New("video duration exceeded")

// 媒体类型判别
type Kind uint8

const (
	KindPhoto Kind = 1 // 照片
	KindVideo Kind = 2 // 视频
)

// Asset 待归一化的媒体描述。
type Asset struct {
	Data       []byte // 源字节
	Kind       Kind   // 类型判别
	Filename   string // 源文件名（用于推断扩展名）
	DurationMs int64  // 视频时长（毫秒），照片为 0
}

// Normalized 归一化结果。
// 照片：单个 JPEG 输出；视频：源字节透传 + 尽力而为的缩略帧（可能为 nil）。
type Normalized struct {
	Data        []byte
	ContentType string
	Ext         string
	Thumb       []byte // 视频缩略帧（JPEG），提取失败时为 nil
}

// FrameExtractor 从视频字节中提取指定时间点的一帧（JPEG）。
// 提取失败不影响视频本身的上传，由调用方吞掉错误。
type FrameExtractor interface {
	ExtractFrame(data []byte, atMs int64) ([]byte, error)
}

// Config 转换参数。质量/宽度是固定配置而非每次调用的参数，保证输出可预测。
type Config struct {
	PhotoMaxEdge int            // 照片最长边上限，默认 1440
	PhotoQuality int            // JPEG 质量，默认 72
	MaxVideoMs   int64          // 视频时长上限（毫秒），默认 120000
	ThumbAtMs    int64          // 缩略帧时间点（毫秒），默认 1500
	Extractor    FrameExtractor // 可选；为 nil 时视频不产缩略图
}

func (c Config) withDefaults() Config {
	out := c
	if out.PhotoMaxEdge <= 0 {
		out.PhotoMaxEdge = 1440
	}
	if out.PhotoQuality <= 0 || out.PhotoQuality > 100 {
		out.PhotoQuality = 72
	}
	if out.MaxVideoMs <= 0 {
		out.MaxVideoMs = 2 * 60 * 1000
	}
	if out.ThumbAtMs <= 0 {
		out.ThumbAtMs = 1500
	}
	return out
}

// Engine 媒体归一化引擎。同样的输入与配置产出确定的结果。
type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// Normalize 归一化一个媒体资产。
// 照片：最长边缩到 PhotoMaxEdge 以内，重编码为 JPEG。
// 视频：先做时长校验（超限立即 ErrDurationExceeded），字节透传，缩略帧尽力而为。
func (e *Engine) Normalize(a Asset) (*Normalized, error) {
	switch a.Kind {
	case KindPhoto:
		return e.normalizePhoto(a)
	case KindVideo:
		return e.normalizeVideo(a)
	default:
		return nil, fmt.Errorf("unknown media kind: %d", a.Kind)
	}
}

func (e *Engine) normalizePhoto(a Asset) (*Normalized, error) {
	if len(a.Data) == 0 {
		return nil, errors.New("empty photo data")
	}

	img, _, err := image.Decode(bytes.NewReader(a.Data))
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	max := e.cfg.PhotoMaxEdge
	if w > max || h > max {
		// 按最长边等比缩放
		if w >= h {
			img = resize.Resize(uint(max), 0, img, resize.Lanczos3)
		} else {
			img = resize.Resize(0, uint(max), img, resize.Lanczos3)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: e.cfg.PhotoQuality}); err != nil {
		return nil, fmt.Errorf("encode photo: %w", err)
	}

	return &Normalized{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
		Ext:         "jpg",
	}, nil
}

func (e *Engine) normalizeVideo(a Asset) (*Normalized, error) {
	if a.DurationMs > e.cfg.MaxVideoMs {
		return nil, ErrDurationExceeded
	}
	if len(a.Data) == 0 {
		return nil, errors.New("empty video data")
	}

	ext := extOf(a.Filename, "mp4")
	contentType := "video/mp4"
	if ext == "mov" {
		contentType = "video/quicktime"
	}

	out := &Normalized{
		Data:        a.Data,
		ContentType: contentType,
		Ext:         ext,
	}

	// 缩略帧：失败只丢缩略图，绝不拦住视频本体
	if e.cfg.Extractor != nil {
		if frame, err := e.cfg.Extractor.ExtractFrame(a.Data, e.cfg.ThumbAtMs); err == nil && len(frame) > 0 {
			out.Thumb = frame
		}
	}

	return out, nil
}

// extOf 取文件扩展名（小写、去 query），取不到用 fallback。
func extOf(filename, fallback string) string {
	name := filename
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return fallback
	}
	return strings.ToLower(name[i+1:])
}
