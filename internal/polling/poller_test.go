package polling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedSubmit(taskID string, err error) SubmitFunc {
	return func(ctx context.Context) (string, error) {
		return taskID, err
	}
}

func TestRunSucceedsAfterPending(t *testing.T) {
	poller := NewPoller(nil)
	policy := Policy{Interval: 10 * time.Millisecond, MaxAttempts: 10}

	fetchCount := 0
	start := time.Now()
	payload, err := poller.Run(context.Background(), policy,
		fixedSubmit("task-1", nil),
		func(ctx context.Context, taskID string) (Result, error) {
			assert.Equal(t, "task-1", taskID)
			fetchCount++
			if fetchCount < 3 {
				return Result{}, nil // 仍在处理
			}
			return Result{Done: true, Payload: "完成"}, nil
		},
	)

	require.NoError(t, err)
	assert.Equal(t, "完成", payload)
	assert.Equal(t, 3, fetchCount)
	// 前两次查询后各等待一个间隔，终态查询后不再等待
	assert.GreaterOrEqual(t, time.Since(start), 2*policy.Interval)
}

func TestRunSubmitFailure(t *testing.T) {
	poller := NewPoller(nil)
	submitErr := errors.New("网络错误")

	_, err := poller.Run(context.Background(), Policy{Interval: time.Millisecond, MaxAttempts: 3},
		fixedSubmit("", submitErr),
		func(ctx context.Context, taskID string) (Result, error) {
			t.Fatal("提交失败后不应进入轮询")
			return Result{}, nil
		},
	)

	var pollErr *Error
	require.ErrorAs(t, err, &pollErr)
	assert.Equal(t, TaskCreationFailed, pollErr.Kind)
	assert.ErrorIs(t, err, submitErr)
}

func TestRunEmptyTaskID(t *testing.T) {
	poller := NewPoller(nil)

	_, err := poller.Run(context.Background(), Policy{Interval: time.Millisecond, MaxAttempts: 3},
		fixedSubmit("", nil),
		func(ctx context.Context, taskID string) (Result, error) {
			t.Fatal("无任务 ID 时不应进入轮询")
			return Result{}, nil
		},
	)

	var pollErr *Error
	require.ErrorAs(t, err, &pollErr)
	assert.Equal(t, TaskCreationFailed, pollErr.Kind)
}

func TestRunTerminalFailure(t *testing.T) {
	poller := NewPoller(nil)

	_, err := poller.Run(context.Background(), Policy{Interval: time.Millisecond, MaxAttempts: 5},
		fixedSubmit("task-1", nil),
		func(ctx context.Context, taskID string) (Result, error) {
			return Result{Failed: true, Code: "ERROR", Message: "视频下载失败"}, nil
		},
	)

	var pollErr *Error
	require.ErrorAs(t, err, &pollErr)
	assert.Equal(t, TaskFailed, pollErr.Kind)
	assert.Equal(t, "ERROR", pollErr.Code)
	assert.Equal(t, "视频下载失败", pollErr.Message)
}

func TestRunBudgetExhausted(t *testing.T) {
	poller := NewPoller(nil)
	policy := Policy{Interval: time.Millisecond, MaxAttempts: 4}

	fetchCount := 0
	_, err := poller.Run(context.Background(), policy,
		fixedSubmit("task-1", nil),
		func(ctx context.Context, taskID string) (Result, error) {
			fetchCount++
			return Result{}, nil // 永远处理中
		},
	)

	var pollErr *Error
	require.ErrorAs(t, err, &pollErr)
	assert.Equal(t, TaskTimeout, pollErr.Kind)
	assert.Equal(t, policy.MaxAttempts, fetchCount)
}

func TestRunFetchErrorConsumesAttempt(t *testing.T) {
	poller := NewPoller(nil)

	fetchCount := 0
	payload, err := poller.Run(context.Background(), Policy{Interval: time.Millisecond, MaxAttempts: 5},
		fixedSubmit("task-1", nil),
		func(ctx context.Context, taskID string) (Result, error) {
			fetchCount++
			if fetchCount == 1 {
				// 单次网络抖动不应废掉整个任务
				return Result{}, errors.New("connection reset")
			}
			return Result{Done: true, Payload: 42}, nil
		},
	)

	require.NoError(t, err)
	assert.Equal(t, 42, payload)
	assert.Equal(t, 2, fetchCount)
}

func TestRunContextCancelled(t *testing.T) {
	poller := NewPoller(nil)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := poller.Run(ctx, Policy{Interval: time.Minute, MaxAttempts: 10},
		fixedSubmit("task-1", nil),
		func(ctx context.Context, taskID string) (Result, error) {
			cancel() // 首次查询后取消，Run 应在等待间隔时立即返回
			return Result{}, nil
		},
	)

	var pollErr *Error
	require.ErrorAs(t, err, &pollErr)
	assert.Equal(t, TaskTimeout, pollErr.Kind)
	assert.ErrorIs(t, err, context.Canceled)
}
