package constants

import (
	"time"

	"github.com/aigc-platform/detect_gateway/internal/polling"
)

// 火山引擎方舟（Ark）与智能视觉（Visual）的接入点。
const (
	ArkDefaultBaseURL = "https://ark.cn-beijing.volces.com/api/v3"

	VisualHost    = "visual.volcengineapi.com"
	VisualRegion  = "cn-north-1"
	VisualService = "cv"
	VisualVersion = "2022-08-31"

	VisualActionCVProcess = "CVProcess"
)

// 方舟默认模型。可在配置中覆盖，这里是原平台使用的版本。
const (
	ArkDefaultVisionModel    = "doubao-1-5-vision-pro-32k-250115"
	ArkDefaultImageModel     = "doubao-seedream-4-0-250828"
	ArkDefaultImageEditModel = "doubao-seededit-3-0-i2i-250628"
	ArkDefaultT2VModel       = "doubao-seedance-1-0-lite-t2v-250428"
	ArkDefaultI2VModel       = "doubao-seedance-1-0-lite-i2v-250428"
)

// 智能视觉的请求键（req_key），标识具体的视觉能力。
const (
	VisualReqKeyFaceSwap = "faceswap"
	VisualReqKeySeedEdit = "seededit_v3.0"
)

// 方舟视频生成任务的状态取值。
const (
	ArkTaskStatusSucceeded = "succeeded"
	ArkTaskStatusFailed    = "failed"
)

// ArkModerationPrompt 是多模态审核的固定指令。
// 要求模型在回答中嵌入约定形状的 JSON；回答仍是自由文本，解析走兜底策略。
const ArkModerationPrompt = "你是内容安全审核员。请判断这段内容是否包含色情、暴力、血腥、毒品、赌博、仇恨符号等违规元素。" +
	`请在回答中给出如下 JSON：{"safe": true/false, "suggestion": "pass"/"review"/"block", "labels": ["命中的违规类型"], "reason": "简要说明"}`

// ArkVideoPollPolicy 是视频生成任务的轮询策略：3 秒间隔，最多 120 次，约 6 分钟。
var ArkVideoPollPolicy = polling.Policy{
	Interval:    3 * time.Second,
	MaxAttempts: 120,
}

// 火山引擎 HTTP 调用超时。生成类接口响应较慢，放宽到 60 秒。
const (
	ArkAPITimeout    = 60 * time.Second
	VisualAPITimeout = 60 * time.Second
)
