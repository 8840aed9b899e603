package models

import "github.com/aigc-platform/detect_gateway/internal/moderation"

// ContentRef 描述一次检测针对的内容来源，供下游事件消费方追溯。
type ContentRef struct {
	Kind   string `json:"kind"`              // "image" / "video"
	Vendor string `json:"vendor"`            // "tencent" / "volc"
	URL    string `json:"url,omitempty"`     // 内容的可访问地址（如有）
	DataID string `json:"data_id,omitempty"` // 调用方传入的业务数据ID（如有）
}

// ContentFlaggedEvent 是检出风险内容时发布的事件。
type ContentFlaggedEvent struct {
	EventID   string             `json:"event_id"`  // 事件唯一ID (由发送方生成)
	Timestamp int64              `json:"timestamp"` // 事件发生的时间戳 (Unix Milliseconds)
	Source    string             `json:"source"`    // 发布事件的服务名称
	Content   ContentRef         `json:"content"`   // 被检测的内容
	Verdict   moderation.Verdict `json:"verdict"`   // 归一化后的检测结论
}

// ContentPassedEvent 是内容审核通过时发布的事件。
type ContentPassedEvent struct {
	EventID   string             `json:"event_id"`
	Timestamp int64              `json:"timestamp"`
	Source    string             `json:"source"`
	Content   ContentRef         `json:"content"`
	Verdict   moderation.Verdict `json:"verdict"`
}

// RelayFailureEvent 是转发调用失败（厂商错误、超时等）时发布的事件，
// 用于下游监控告警。
type RelayFailureEvent struct {
	EventID      string `json:"event_id"`
	Timestamp    int64  `json:"timestamp"`
	Source       string `json:"source"`
	Route        string `json:"route"`         // 失败发生的接口路径
	ErrorCode    string `json:"error_code"`    // 错误码（含厂商透传码）
	ErrorMessage string `json:"error_message"` // 错误描述
}
