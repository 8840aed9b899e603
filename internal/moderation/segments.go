package moderation

// 视频片段命中占比的分级阈值。
// 占比 < RatioFlagged 视为未发现生成痕迹；
// [RatioFlagged, RatioSynthetic] 建议人工复核；
// > RatioSynthetic 视为极可能整段为 AI 合成。
const (
	RatioFlagged   = 0.5
	RatioSynthetic = 0.9
)

// 视频检测结论文案，随接口返回给前端展示。
const (
	ConclusionClean     = "未发现 AI 生成痕迹"
	ConclusionSuspected = "包含 AI 生成内容，建议人工复核"
	ConclusionSynthetic = "极可能为完全 AI 合成"
)

// SegmentSummary 是分段视频审核的聚合结果。
type SegmentSummary struct {
	// Total 是被独立判定的片段总数。
	Total int `json:"total"`
	// Hits 是命中风险规则的片段数。
	Hits int `json:"hits"`
	// Ratio 是命中占比 Hits/Total，片段为空时为 0。
	Ratio float64 `json:"ratio"`
	// Conclusion 是按占比分级得出的结论文案。
	Conclusion string `json:"conclusion"`
}

// SummarizeSegments 按片段命中序列计算聚合结果。
// hits 的顺序即片段顺序，每个元素表示该片段是否命中。
func SummarizeSegments(hits []bool) SegmentSummary {
	summary := SegmentSummary{Total: len(hits)}
	for _, hit := range hits {
		if hit {
			summary.Hits++
		}
	}
	if summary.Total > 0 {
		summary.Ratio = float64(summary.Hits) / float64(summary.Total)
	}

	switch {
	case summary.Ratio > RatioSynthetic:
		summary.Conclusion = ConclusionSynthetic
	case summary.Ratio >= RatioFlagged:
		summary.Conclusion = ConclusionSuspected
	default:
		summary.Conclusion = ConclusionClean
	}
	return summary
}

// Flagged 判断片段占比信号是否触发拦截（占比 >= 0.5）。
// 注意：视频的最终 IsFlagged 还会 OR 上顶层建议信号，见各厂商客户端的归一化逻辑。
func (s SegmentSummary) Flagged() bool {
	return s.Total > 0 && s.Ratio >= RatioFlagged
}
