// Package vibe 外部图像/文本分析服务的边界。
// 单发请求/响应，尽力而为：失败时由调用方显式选用固定兜底值，不向上抛错。
package vibe

import "context"

// Analysis 单张照片的分析结果。
type Analysis struct {
	Tags    []string `json:"tags"`
	Mood    string   `json:"mood"`
	Caption string   `json:"caption"`
}

// SummaryItem 氛围摘要的输入条目。
type SummaryItem struct {
	Caption string   `json:"caption"`
	Tags    []string `json:"tags"`
}

// Analyzer 分析服务接口，由调用方注入具体实现（未注入时一律走兜底值）。
type Analyzer interface {
	AnalyzePhoto(ctx context.Context, imageURL string) (Analysis, error)
	Summarize(ctx context.Context, items []SummaryItem) (string, error)
}

// FallbackSummary 摘要兜底文案。
const FallbackSummary = "The room is full of warmth and shared moments."

// FallbackAnalysis 照片分析兜底值。
func FallbackAnalysis() Analysis {
	return Analysis{
		Tags:    []string{"Photo"},
		Mood:    "Peaceful",
		Caption: "A captured moment.",
	}
}
