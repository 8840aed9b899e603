package tencentclient

import "encoding/json"

// 本文件是腾讯云 IMS / VM 接口的线上契约，字段名必须与厂商一致。

// ImageModerationRequest 是图片同步审核（IMS ImageModeration）的请求参数。
// FileContent 与 FileUrl 二选一。
type ImageModerationRequest struct {
	FileContent string `json:"FileContent,omitempty"` // 图片文件的 Base64 编码
	FileUrl     string `json:"FileUrl,omitempty"`     // 图片的公网 URL
	BizType     string `json:"BizType,omitempty"`     // 审核策略标识
	DataId      string `json:"DataId,omitempty"`      // 调用方自定义的数据标识
}

// ImageLabelResult 是图片审核响应里单个场景的细分结果。
type ImageLabelResult struct {
	Scene      string `json:"Scene,omitempty"`
	Label      string `json:"Label,omitempty"`
	SubLabel   string `json:"SubLabel,omitempty"`
	Score      int64  `json:"Score,omitempty"` // 0~100
	Suggestion string `json:"Suggestion,omitempty"`
}

// ImageModerationResponse 是图片同步审核的响应体（Response 内层）。
type ImageModerationResponse struct {
	RequestId    string             `json:"RequestId,omitempty"`
	HitFlag      int64              `json:"HitFlag,omitempty"` // 1 表示命中审核规则
	Score        int64              `json:"Score,omitempty"`   // 0~100
	Suggestion   string             `json:"Suggestion,omitempty"`
	Label        string             `json:"Label,omitempty"`
	SubLabel     string             `json:"SubLabel,omitempty"`
	LabelResults []ImageLabelResult `json:"LabelResults,omitempty"`
}

// BucketInfo 描述一个 COS 对象。
type BucketInfo struct {
	Bucket string `json:"Bucket"`
	Region string `json:"Region"`
	Object string `json:"Object"`
}

// VideoTaskInput 是视频任务的输入，URL 与 COS 二选一。
type VideoTaskInput struct {
	Type       string      `json:"Type"` // "URL" 或 "COS"
	Url        string      `json:"Url,omitempty"`
	BucketInfo *BucketInfo `json:"BucketInfo,omitempty"`
}

// VideoTask 是创建任务请求里的单个任务项。
type VideoTask struct {
	Input VideoTaskInput `json:"Input"`
}

// CreateVideoModerationTaskRequest 创建视频审核任务。
type CreateVideoModerationTaskRequest struct {
	Type    string      `json:"Type"` // 任务类型，本服务固定 "VIDEO_AIGC"
	BizType string      `json:"BizType"`
	Tasks   []VideoTask `json:"Tasks"`
}

// VideoTaskCreateResult 是创建响应里单个任务的结果。
type VideoTaskCreateResult struct {
	TaskId  string `json:"TaskId,omitempty"`
	Code    string `json:"Code,omitempty"`
	Message string `json:"Message,omitempty"`
}

// CreateVideoModerationTaskResponse 是创建任务的响应体。
type CreateVideoModerationTaskResponse struct {
	RequestId string                  `json:"RequestId,omitempty"`
	Results   []VideoTaskCreateResult `json:"Results,omitempty"`
}

// DescribeTaskDetailRequest 按任务 ID 查询任务详情。
type DescribeTaskDetailRequest struct {
	TaskId string `json:"TaskId"`
}

// SegmentSubResult 是片段内更细一级的命中结果。
type SegmentSubResult struct {
	HitFlag    int64  `json:"HitFlag,omitempty"`
	Suggestion string `json:"Suggestion,omitempty"`
	Label      string `json:"Label,omitempty"`
	SubLabel   string `json:"SubLabel,omitempty"`
	Score      int64  `json:"Score,omitempty"`
}

// SegmentResult 是单个视频片段的判定结果。
type SegmentResult struct {
	HitFlag    int64              `json:"HitFlag,omitempty"`
	Suggestion string             `json:"Suggestion,omitempty"`
	Label      string             `json:"Label,omitempty"`
	SubLabel   string             `json:"SubLabel,omitempty"`
	Score      int64              `json:"Score,omitempty"`
	Results    []SegmentSubResult `json:"Results,omitempty"`
}

// ImageSegment 是视频抽帧片段及其判定。
type ImageSegment struct {
	OffsetTime string        `json:"OffsetTime,omitempty"` // 片段在视频中的偏移（秒）
	Result     SegmentResult `json:"Result"`
}

// TaskDetail 是视频任务详情（DescribeTaskDetail 的响应体）。
type TaskDetail struct {
	RequestId        string         `json:"RequestId,omitempty"`
	TaskId           string         `json:"TaskId,omitempty"`
	Status           string         `json:"Status,omitempty"` // PENDING / FINISH / ERROR / CANCELLED
	Suggestion       string         `json:"Suggestion,omitempty"`
	Labels           []string       `json:"Labels,omitempty"`
	ImageSegments    []ImageSegment `json:"ImageSegments,omitempty"`
	ErrorType        string         `json:"ErrorType,omitempty"`
	ErrorDescription string         `json:"ErrorDescription,omitempty"`
}

// apiError 是腾讯云错误信封里的 Error 对象。
type apiError struct {
	Code    string `json:"Code,omitempty"`
	Message string `json:"Message,omitempty"`
}

// apiEnvelope 是腾讯云统一的 {"Response": {...}} 信封。
type apiEnvelope struct {
	Response json.RawMessage `json:"Response"`
}

// apiErrorProbe 用于在解码业务响应前探测错误信封。
type apiErrorProbe struct {
	Error *apiError `json:"Error,omitempty"`
}
