package moderation

// Suggestion 是审核平台给出的总体处置建议。
// 各家云厂商的取值大小写不一（腾讯返回 "Block"，火山返回 "block"），
// 对比时统一走 IsRisky / NormalizeSuggestion，不要直接比较字符串。
const (
	SuggestionPass   = "Pass"   // 内容审核通过，无风险或风险可接受
	SuggestionReview = "Review" // 内容存在潜在风险，建议人工复审
	SuggestionBlock  = "Block"  // 内容存在明确风险，建议直接拒绝或屏蔽
)

// Verdict 是平台无关的统一审核结论。
// 所有厂商客户端（腾讯 IMS/VM、火山方舟）的响应最终都归一化为此结构，
// 上层处理与事件发布只依赖它，不感知原始响应形状。
type Verdict struct {
	// IsFlagged 表示内容被判定为有风险。
	// 约定：命中标志 == 1、建议为 Review/Block、或视频命中片段占比 >= 0.5，
	// 三个条件任意一个成立即为 true。
	IsFlagged bool `json:"isFlagged"`

	// Score 是置信度得分，取值 [0, 1]。
	// 腾讯云原始返回为 0~100，归一化时除以 100。
	Score float64 `json:"score"`

	// Label 是主要风险类别，例如 "Porn"、"violence"。
	Label string `json:"label,omitempty"`

	// SubLabels 是按出现顺序去重后的细分风险标签列表。
	SubLabels []string `json:"subLabels,omitempty"`

	// Suggestion 是处置建议，取值见上方常量。
	Suggestion string `json:"suggestion"`

	// Reason 是厂商给出的人类可读说明（火山方舟的自由文本响应会带）。
	Reason string `json:"reason,omitempty"`
}

// SafeVerdict 返回安全兜底结论。
// 当厂商返回的自由文本无法解析时使用，绝不因格式问题让请求失败。
func SafeVerdict() Verdict {
	return Verdict{
		IsFlagged:  false,
		Score:      0,
		SubLabels:  []string{},
		Suggestion: SuggestionPass,
	}
}

// IsRisky 判断处置建议是否属于风险建议（Review 或 Block），大小写不敏感。
func IsRisky(suggestion string) bool {
	switch suggestion {
	case "Review", "review", "REVIEW", "Block", "block", "BLOCK":
		return true
	}
	return false
}

// NormalizeSuggestion 把厂商返回的建议统一为本包常量形式。
// 无法识别的取值按 Pass 处理（未知即不拦截，风险判断依赖其他信号兜底）。
func NormalizeSuggestion(raw string) string {
	switch raw {
	case "Block", "block", "BLOCK":
		return SuggestionBlock
	case "Review", "review", "REVIEW":
		return SuggestionReview
	default:
		return SuggestionPass
	}
}

// AppendLabel 向有序去重的标签序列追加一个标签。
// 空串与 "Normal"（腾讯的无风险占位标签）会被忽略。
func AppendLabel(labels []string, label string) []string {
	if label == "" || label == "Normal" || label == "normal" {
		return labels
	}
	for _, existing := range labels {
		if existing == label {
			return labels
		}
	}
	return append(labels, label)
}
