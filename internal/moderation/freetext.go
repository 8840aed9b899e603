package moderation

import (
	"encoding/json"
	"strings"
)

// freeTextVerdict 是火山方舟多模态审核约定的回答格式。
// 模型回答是自然语言，中间嵌着一段这个形状的 JSON；格式并无合同保证，
// 解析策略是尽力提取、失败兜底，绝不报错。
type freeTextVerdict struct {
	Safe       bool     `json:"safe"`
	Suggestion string   `json:"suggestion"`
	Labels     []string `json:"labels"`
	Reason     string   `json:"reason"`
}

// ParseFreeText 从模型的自由文本回答中提取审核结论。
// 提取规则：取第一个花括号配平的 {...} 子串尝试按 JSON 解析；
// 找不到 {...} 或解析失败时返回安全兜底结论，错误永远为 nil 语义（不返回 error）。
func ParseFreeText(text string) Verdict {
	raw, ok := extractJSONObject(text)
	if !ok {
		return SafeVerdict()
	}

	var parsed freeTextVerdict
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return SafeVerdict()
	}

	suggestion := NormalizeSuggestion(parsed.Suggestion)
	labels := []string{}
	for _, label := range parsed.Labels {
		labels = AppendLabel(labels, strings.TrimSpace(label))
	}

	verdict := Verdict{
		IsFlagged:  !parsed.Safe || IsRisky(suggestion),
		Suggestion: suggestion,
		SubLabels:  labels,
		Reason:     parsed.Reason,
	}
	if len(labels) > 0 {
		verdict.Label = labels[0]
	}
	switch suggestion {
	case SuggestionBlock:
		verdict.Score = 0.9
	case SuggestionReview:
		verdict.Score = 0.6
	}
	return verdict
}

// extractJSONObject 用贪心的括号配平扫描找出第一个完整的 {...} 子串。
// 字符串字面量内的花括号与转义引号都会被跳过，嵌套对象取最外层。
func extractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
