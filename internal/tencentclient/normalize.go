package tencentclient

import (
	"github.com/aigc-platform/detect_gateway/internal/moderation"
)

// NormalizeImage 把图片审核响应归一化为统一结论。
// 判定规则：HitFlag == 1 或建议为 Review/Block 即视为有风险；
// 得分从 0~100 归一化到 0~1；标签收集跳过 "Normal" 并保持出现顺序去重。
func NormalizeImage(resp *ImageModerationResponse) moderation.Verdict {
	suggestion := moderation.NormalizeSuggestion(resp.Suggestion)
	verdict := moderation.Verdict{
		IsFlagged:  resp.HitFlag == 1 || moderation.IsRisky(resp.Suggestion),
		Score:      float64(resp.Score) / 100,
		Label:      resp.Label,
		Suggestion: suggestion,
	}
	if verdict.Label == "Normal" || verdict.Label == "normal" {
		verdict.Label = ""
	}

	labels := []string{}
	labels = moderation.AppendLabel(labels, resp.Label)
	labels = moderation.AppendLabel(labels, resp.SubLabel)
	for _, item := range resp.LabelResults {
		labels = moderation.AppendLabel(labels, item.Label)
		labels = moderation.AppendLabel(labels, item.SubLabel)
	}
	verdict.SubLabels = labels
	return verdict
}

// segmentHit 判断单个视频片段是否命中。
// 片段自身的 HitFlag/建议、或任意嵌套子结果命中，任一成立即命中。
func segmentHit(segment ImageSegment) bool {
	result := segment.Result
	if result.HitFlag == 1 || moderation.IsRisky(result.Suggestion) {
		return true
	}
	for _, sub := range result.Results {
		if sub.HitFlag == 1 || moderation.IsRisky(sub.Suggestion) {
			return true
		}
	}
	return false
}

// NormalizeVideo 把视频任务详情归一化为片段汇总与统一结论。
// 最终 IsFlagged 由两个等权信号 OR 得出：顶层建议为 Review/Block，或命中占比 >= 0.5。
func NormalizeVideo(detail *TaskDetail) (moderation.SegmentSummary, moderation.Verdict) {
	hits := make([]bool, len(detail.ImageSegments))
	for i, segment := range detail.ImageSegments {
		hits[i] = segmentHit(segment)
	}
	summary := moderation.SummarizeSegments(hits)

	labels := []string{}
	for _, label := range detail.Labels {
		labels = moderation.AppendLabel(labels, label)
	}
	for _, segment := range detail.ImageSegments {
		labels = moderation.AppendLabel(labels, segment.Result.Label)
		labels = moderation.AppendLabel(labels, segment.Result.SubLabel)
		for _, sub := range segment.Result.Results {
			labels = moderation.AppendLabel(labels, sub.Label)
			labels = moderation.AppendLabel(labels, sub.SubLabel)
		}
	}

	verdict := moderation.Verdict{
		IsFlagged:  moderation.IsRisky(detail.Suggestion) || summary.Flagged(),
		Score:      summary.Ratio,
		Suggestion: moderation.NormalizeSuggestion(detail.Suggestion),
		SubLabels:  labels,
		Reason:     summary.Conclusion,
	}
	if len(labels) > 0 {
		verdict.Label = labels[0]
	}
	return summary, verdict
}
