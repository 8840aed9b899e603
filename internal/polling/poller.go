// Package polling 实现"提交后轮询"式异步任务的驱动逻辑。
// 腾讯云视频审核任务与火山方舟视频生成任务都走这里：提交一次拿到任务 ID，
// 随后按固定间隔查询状态，直到终态或尝试预算耗尽。
package polling

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// FailureKind 区分轮询流程的失败类别，调用方据此选择错误码。
type FailureKind string

const (
	// TaskCreationFailed 表示提交调用失败或未返回任务 ID，未进入轮询。
	TaskCreationFailed FailureKind = "TaskCreationFailed"
	// TaskFailed 表示任务到达失败终态（厂商侧 ERROR/CANCELLED/failed）。
	TaskFailed FailureKind = "TaskFailed"
	// TaskTimeout 表示尝试预算耗尽时任务仍未到达终态。
	TaskTimeout FailureKind = "TaskTimeout"
)

// Error 携带轮询失败的类别与厂商侧的错误描述。
type Error struct {
	Kind    FailureKind
	Code    string // 厂商错误码（失败终态时原样保留，如 "ERROR"、"CANCELLED"）
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Policy 是一次轮询的节奏配置：查询间隔与最大尝试次数。
// 各调用点使用常量包里预定义的策略，不在调用处散落字面量。
type Policy struct {
	Interval    time.Duration
	MaxAttempts int
}

// Result 是单次状态查询的归一化结果。
// Done 与 Failed 互斥；两者都为 false 表示任务仍在处理中。
type Result struct {
	Done    bool
	Failed  bool
	Code    string
	Message string
	Payload any
}

// SubmitFunc 提交任务并返回厂商分配的任务 ID。
type SubmitFunc func(ctx context.Context) (taskID string, err error)

// FetchFunc 查询任务状态。
// 返回 error 表示本次查询的传输层失败；该失败消耗一次尝试后继续轮询，
// 不会立刻终止流程（单次网络抖动不应废掉整个任务）。
type FetchFunc func(ctx context.Context, taskID string) (Result, error)

// Poller 驱动提交加轮询的完整流程。
// 每次 Run 调用相互独立，无共享状态，多个任务可并发轮询。
type Poller struct {
	logger *zap.Logger
}

// NewPoller 创建轮询器。logger 为 nil 时使用 zap.NewNop()。
func NewPoller(logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{logger: logger}
}

// Run 执行一次完整的提交加轮询流程。
// 成功时返回终态查询携带的 Payload。失败路径：
//   - 提交失败 / 无任务 ID -> Error{TaskCreationFailed}
//   - 失败终态            -> Error{TaskFailed}（携带厂商错误描述）
//   - 预算耗尽            -> Error{TaskTimeout}
//
// ctx 取消是尽力而为的客户端放弃：不向厂商发出取消，仅停止等待。
func (p *Poller) Run(ctx context.Context, policy Policy, submit SubmitFunc, fetch FetchFunc) (any, error) {
	taskID, err := submit(ctx)
	if err != nil {
		return nil, &Error{Kind: TaskCreationFailed, Message: "提交任务失败", Err: err}
	}
	if taskID == "" {
		return nil, &Error{Kind: TaskCreationFailed, Message: "提交成功但未返回任务 ID"}
	}

	p.logger.Info("任务已提交，进入轮询",
		zap.String("任务ID(task_id)", taskID),
		zap.Duration("轮询间隔(interval)", policy.Interval),
		zap.Int("最大尝试次数(max_attempts)", policy.MaxAttempts),
	)

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		result, fetchErr := fetch(ctx, taskID)
		if fetchErr != nil {
			// 传输层失败按"仍在处理"对待，消耗一次尝试后继续。
			p.logger.Warn("查询任务状态失败，消耗一次尝试后继续",
				zap.String("任务ID(task_id)", taskID),
				zap.Int("尝试次数(attempt)", attempt),
				zap.Error(fetchErr),
			)
		} else {
			if result.Failed {
				p.logger.Warn("任务到达失败终态",
					zap.String("任务ID(task_id)", taskID),
					zap.String("厂商错误码(vendor_code)", result.Code),
					zap.String("错误描述(message)", result.Message),
				)
				return nil, &Error{Kind: TaskFailed, Code: result.Code, Message: result.Message}
			}
			if result.Done {
				p.logger.Info("任务完成",
					zap.String("任务ID(task_id)", taskID),
					zap.Int("总查询次数(fetch_count)", attempt),
				)
				return result.Payload, nil
			}
		}

		if attempt == policy.MaxAttempts {
			break
		}
		select {
		case <-time.After(policy.Interval):
		case <-ctx.Done():
			return nil, &Error{Kind: TaskTimeout, Message: "轮询等待期间上下文被取消", Err: ctx.Err()}
		}
	}

	return nil, &Error{
		Kind:    TaskTimeout,
		Message: fmt.Sprintf("任务在 %d 次查询后仍未完成", policy.MaxAttempts),
	}
}
