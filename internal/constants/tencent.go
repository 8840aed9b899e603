package constants

import (
	"time"

	"github.com/aigc-platform/detect_gateway/internal/polling"
)

// 腾讯云 API 的接入点与版本。
// IMS 是图片同步审核，VM 是视频异步审核任务。
const (
	TencentIMSHost    = "ims.tencentcloudapi.com"
	TencentIMSService = "ims"
	TencentIMSVersion = "2020-07-13"
	TencentIMSAction  = "ImageModeration"

	TencentVMHost    = "vm.tencentcloudapi.com"
	TencentVMService = "vm"
	TencentVMVersion = "2021-09-22"

	TencentVMActionCreateTask     = "CreateVideoModerationTask"
	TencentVMActionDescribeDetail = "DescribeTaskDetail"

	TencentDefaultRegion = "ap-guangzhou"

	// TencentVideoAIGCType 是视频 AI 生成检测的任务类型。
	TencentVideoAIGCType = "VIDEO_AIGC"
)

// 腾讯云视频任务的状态取值。
const (
	TencentTaskStatusPending   = "PENDING"
	TencentTaskStatusFinish    = "FINISH"
	TencentTaskStatusError     = "ERROR"
	TencentTaskStatusCancelled = "CANCELLED"
)

// TencentVideoPollPolicy 是视频审核任务的轮询策略：3 秒间隔，最多 100 次，约 5 分钟。
var TencentVideoPollPolicy = polling.Policy{
	Interval:    3 * time.Second,
	MaxAttempts: 100,
}

// TencentAPITimeout 是单次腾讯云 HTTP 调用的网络超时。
// 与轮询预算相互独立：单次调用挂死不应吃掉整个轮询预算。
const TencentAPITimeout = 30 * time.Second
