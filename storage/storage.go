// Package storage 对象存储网关：往命名桶写二进制并拿到稳定公开 URL。
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrWriteFailed 传输或服务端写入失败。上层据此中止整条上传流水线，
// 数据库不会留下任何半截状态，整条流水线可安全重跑。
var ErrWriteFailed = errors.New("storage write failed")

// 逻辑桶默认名：主媒体与缩略图分开，后续可给不同的生命周期策略。
const (
	DefaultMediaBucket = "media"
	DefaultThumbBucket = "media-thumbs"
)

// Config 存储网关配置。
type Config struct {
	BaseURL     string        // 对象接口根地址，例 https://xxx.supabase.co/storage/v1
	APIKey      string        // 匿名访问密钥
	MediaBucket string        // 主媒体桶，默认 media
	ThumbBucket string        // 缩略图桶，默认 media-thumbs
	Timeout     time.Duration // HTTP 超时，默认不设（由调用方 ctx 控制）
}

func (c Config) withDefaults() Config {
	out := c
	out.BaseURL = strings.TrimSuffix(strings.TrimSpace(out.BaseURL), "/")
	if out.MediaBucket == "" {
		out.MediaBucket = DefaultMediaBucket
	}
	if out.ThumbBucket == "" {
		out.ThumbBucket = DefaultThumbBucket
	}
	return out
}

// Client 存储网关客户端。
type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) MediaBucket() string { return c.cfg.MediaBucket }
func (c *Client) ThumbBucket() string { return c.cfg.ThumbBucket }

// Store 以 upsert 语义写入对象（同路径重传覆盖旧内容，不报已存在），
// 成功返回公开访问 URL。路径命名由调用方负责（{roomID}/{uploaderID}/{时间戳}.{ext}）。
func (c *Client) Store(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error) {
	if c.cfg.BaseURL == "" {
		return "", fmt.Errorf("%w: base url not configured", ErrWriteFailed)
	}
	bucket = strings.Trim(bucket, "/")
	path = strings.TrimPrefix(path, "/")

	endpoint := fmt.Sprintf("%s/object/%s/%s", c.cfg.BaseURL, bucket, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")
	if c.cfg.APIKey != "" {
		req.Header.Set("apikey", c.cfg.APIKey)
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 错误体只取一小段用于日志定位
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: %s %s", ErrWriteFailed, resp.Status, strings.TrimSpace(string(msg)))
	}

	return c.PublicURL(bucket, path), nil
}

// PublicURL 对象的稳定公开地址。
func (c *Client) PublicURL(bucket, path string) string {
	bucket = strings.Trim(bucket, "/")
	path = strings.TrimPrefix(path, "/")
	return fmt.Sprintf("%s/object/public/%s/%s", c.cfg.BaseURL, bucket, path)
}
