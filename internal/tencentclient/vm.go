package tencentclient

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/aigc-platform/detect_gateway/internal/constants"
	"github.com/aigc-platform/detect_gateway/internal/moderation"
	"github.com/aigc-platform/detect_gateway/internal/polling"
)

// VideoInput 是视频检测的输入，URL 与 COS 二选一。
type VideoInput struct {
	URL string
	COS *BucketInfo
}

// VideoModerationOutcome 是视频 AI 生成检测的完整结果。
type VideoModerationOutcome struct {
	TaskId  string                    `json:"TaskId"`
	Detail  *TaskDetail               `json:"Detail"`
	Summary moderation.SegmentSummary `json:"Summary"`
	Verdict moderation.Verdict        `json:"Verdict"`
}

// DetectVideo 发起视频 AI 生成检测：创建任务并轮询直到终态。
// 任务状态由厂商驱动，客户端只查询；轮询预算见 VideoPollPolicy（默认约 5 分钟）。
func (c *Client) DetectVideo(ctx context.Context, input VideoInput) (*VideoModerationOutcome, error) {
	if err := c.requireCredentials(); err != nil {
		return nil, err
	}

	var taskInput VideoTaskInput
	switch {
	case input.COS != nil && input.COS.Bucket != "" && input.COS.Region != "" && input.COS.Object != "":
		taskInput = VideoTaskInput{Type: "COS", BucketInfo: input.COS}
	case input.URL != "":
		taskInput = VideoTaskInput{Type: "URL", Url: input.URL}
	default:
		return nil, moderation.NewInvalidParameter("需要 videoUrl 或 cosInfo（Bucket、Region、Object）")
	}
	if c.cfg.VideoBizType == "" {
		return nil, moderation.NewMissingCredential("请配置 tencent.video_biz_type（视频 AI 生成检测的 BizType）")
	}

	var taskID string
	payload, err := c.poller.Run(ctx, c.VideoPollPolicy,
		func(ctx context.Context) (string, error) {
			createdID, submitErr := c.createVideoTask(ctx, taskInput)
			taskID = createdID
			return createdID, submitErr
		},
		c.fetchVideoTask,
	)
	if err != nil {
		return nil, mapPollError(err)
	}

	detail, ok := payload.(*TaskDetail)
	if !ok {
		return nil, moderation.NewInternalError("轮询返回了意外的载荷类型", nil)
	}

	summary, verdict := NormalizeVideo(detail)
	c.logger.Info("视频 AI 生成检测完成",
		zap.String("任务ID(task_id)", taskID),
		zap.Int("片段总数(segments)", summary.Total),
		zap.Int("命中片段数(hits)", summary.Hits),
		zap.Float64("命中占比(ratio)", summary.Ratio),
		zap.Bool("是否命中(flagged)", verdict.IsFlagged),
	)

	return &VideoModerationOutcome{
		TaskId:  taskID,
		Detail:  detail,
		Summary: summary,
		Verdict: verdict,
	}, nil
}

// createVideoTask 创建视频审核任务并返回任务 ID。
func (c *Client) createVideoTask(ctx context.Context, input VideoTaskInput) (string, error) {
	req := CreateVideoModerationTaskRequest{
		Type:    constants.TencentVideoAIGCType,
		BizType: c.cfg.VideoBizType,
		Tasks:   []VideoTask{{Input: input}},
	}

	var resp CreateVideoModerationTaskResponse
	if err := c.call(ctx,
		constants.TencentVMHost, constants.TencentVMService,
		constants.TencentVMActionCreateTask, constants.TencentVMVersion,
		req, &resp,
	); err != nil {
		return "", err
	}

	if len(resp.Results) == 0 || resp.Results[0].TaskId == "" {
		message := "创建视频任务失败，未返回 TaskId"
		if len(resp.Results) > 0 && resp.Results[0].Message != "" {
			message = resp.Results[0].Message
		}
		return "", moderation.NewInternalError(message, nil)
	}
	return resp.Results[0].TaskId, nil
}

// fetchVideoTask 查询任务详情并映射到轮询结果。
func (c *Client) fetchVideoTask(ctx context.Context, taskID string) (polling.Result, error) {
	var detail TaskDetail
	if err := c.call(ctx,
		constants.TencentVMHost, constants.TencentVMService,
		constants.TencentVMActionDescribeDetail, constants.TencentVMVersion,
		DescribeTaskDetailRequest{TaskId: taskID}, &detail,
	); err != nil {
		// 厂商错误码表示查询被明确拒绝（如任务 ID 无效），立即终止轮询透传；
		// 只有传输层失败才按"仍在处理"重试。
		if relayErr := moderation.AsRelayError(err); relayErr.IsVendor() {
			return polling.Result{Failed: true, Code: relayErr.Code, Message: relayErr.Message}, nil
		}
		return polling.Result{}, err
	}

	switch detail.Status {
	case constants.TencentTaskStatusFinish:
		return polling.Result{Done: true, Payload: &detail}, nil
	case constants.TencentTaskStatusError, constants.TencentTaskStatusCancelled:
		message := detail.ErrorDescription
		if message == "" {
			message = detail.ErrorType
		}
		if message == "" {
			message = detail.Status
		}
		return polling.Result{Failed: true, Code: detail.Status, Message: message}, nil
	default:
		// PENDING 或未知状态都视为仍在处理
		return polling.Result{}, nil
	}
}

// mapPollError 把轮询错误映射到对外错误码。
// 提交失败透传底层错误（含 MissingCredential、厂商错误码）；
// 失败终态透传厂商状态码；预算耗尽用 Timeout。
func mapPollError(err error) error {
	var pollErr *polling.Error
	if !errors.As(err, &pollErr) {
		return moderation.NewInternalError("视频检测失败", err)
	}
	switch pollErr.Kind {
	case polling.TaskCreationFailed:
		if pollErr.Err != nil {
			return moderation.AsRelayError(pollErr.Err)
		}
		return moderation.NewInternalError(pollErr.Message, nil)
	case polling.TaskFailed:
		return moderation.NewVendorError(pollErr.Code, pollErr.Message)
	default:
		return moderation.NewTimeout("视频检测超时，请稍后重试")
	}
}
