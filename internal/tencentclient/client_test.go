package tencentclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aigc-platform/detect_gateway/internal/config"
	"github.com/aigc-platform/detect_gateway/internal/moderation"
	"github.com/aigc-platform/detect_gateway/internal/polling"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client := NewClient(config.TencentConfig{
		SecretID:     "test-secret-id",
		SecretKey:    "test-secret-key",
		Region:       "ap-guangzhou",
		VideoBizType: "aigc-video",
		APIBaseURL:   baseURL,
	}, zap.NewNop())
	client.VideoPollPolicy = polling.Policy{Interval: time.Millisecond, MaxAttempts: 10}
	return client
}

func writeAPIResponse(w http.ResponseWriter, inner any) {
	payload, _ := json.Marshal(map[string]any{"Response": inner})
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
}

func TestImageModeration(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ImageModeration", r.Header.Get("X-TC-Action"))
		assert.Equal(t, "2020-07-13", r.Header.Get("X-TC-Version"))
		assert.NotEmpty(t, r.Header.Get("Authorization"))

		var req ImageModerationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://example.com/a.jpg", req.FileUrl)

		writeAPIResponse(w, ImageModerationResponse{
			RequestId:  "req-1",
			HitFlag:    1,
			Score:      92,
			Suggestion: "Block",
			Label:      "Porn",
		})
	}))
	defer ts.Close()

	client := testClient(t, ts.URL)
	outcome, err := client.ImageModeration(context.Background(), ImageModerationRequest{
		FileUrl: "https://example.com/a.jpg",
	})

	require.NoError(t, err)
	assert.True(t, outcome.Verdict.IsFlagged)
	assert.InDelta(t, 0.92, outcome.Verdict.Score, 1e-9)
	assert.Equal(t, "req-1", outcome.Response.RequestId)
}

func TestImageModerationMissingInput(t *testing.T) {
	client := testClient(t, "")
	_, err := client.ImageModeration(context.Background(), ImageModerationRequest{})

	relayErr := moderation.AsRelayError(err)
	assert.Equal(t, moderation.CodeInvalidParameter, relayErr.Code)
}

func TestImageModerationMissingCredentials(t *testing.T) {
	client := NewClient(config.TencentConfig{}, zap.NewNop())
	_, err := client.ImageModeration(context.Background(), ImageModerationRequest{
		FileUrl: "https://example.com/a.jpg",
	})

	relayErr := moderation.AsRelayError(err)
	assert.Equal(t, moderation.CodeMissingCredential, relayErr.Code)
}

func TestImageModerationVendorErrorPassthrough(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIResponse(w, map[string]any{
			"Error": map[string]string{
				"Code":    "InvalidParameter.ImageSizeTooLarge",
				"Message": "图片尺寸超出限制",
			},
		})
	}))
	defer ts.Close()

	client := testClient(t, ts.URL)
	_, err := client.ImageModeration(context.Background(), ImageModerationRequest{FileContent: "aGVsbG8="})

	// 厂商错误码原样透传，不改写
	relayErr := moderation.AsRelayError(err)
	assert.Equal(t, "InvalidParameter.ImageSizeTooLarge", relayErr.Code)
	assert.Equal(t, "图片尺寸超出限制", relayErr.Message)
}

func TestDetectVideoPollsUntilFinish(t *testing.T) {
	var describeCalls atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("X-TC-Action") {
		case "CreateVideoModerationTask":
			var req CreateVideoModerationTaskRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "VIDEO_AIGC", req.Type)
			assert.Equal(t, "aigc-video", req.BizType)
			writeAPIResponse(w, CreateVideoModerationTaskResponse{
				Results: []VideoTaskCreateResult{{TaskId: "task-42"}},
			})
		case "DescribeTaskDetail":
			if describeCalls.Add(1) < 3 {
				writeAPIResponse(w, TaskDetail{TaskId: "task-42", Status: "PENDING"})
				return
			}
			writeAPIResponse(w, TaskDetail{
				TaskId:     "task-42",
				Status:     "FINISH",
				Suggestion: "Pass",
				ImageSegments: []ImageSegment{
					{Result: SegmentResult{HitFlag: 0, Suggestion: "Pass"}},
					{Result: SegmentResult{HitFlag: 1, Suggestion: "Block", Label: "AIGC"}},
				},
			})
		default:
			t.Errorf("未预期的接口调用: %s", r.Header.Get("X-TC-Action"))
		}
	}))
	defer ts.Close()

	client := testClient(t, ts.URL)
	outcome, err := client.DetectVideo(context.Background(), VideoInput{URL: "https://example.com/v.mp4"})

	require.NoError(t, err)
	assert.Equal(t, "task-42", outcome.TaskId)
	assert.Equal(t, int64(3), describeCalls.Load())
	assert.Equal(t, 2, outcome.Summary.Total)
	assert.InDelta(t, 0.5, outcome.Summary.Ratio, 1e-9)
	assert.True(t, outcome.Verdict.IsFlagged)
}

func TestDetectVideoTaskFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("X-TC-Action") {
		case "CreateVideoModerationTask":
			writeAPIResponse(w, CreateVideoModerationTaskResponse{
				Results: []VideoTaskCreateResult{{TaskId: "task-err"}},
			})
		case "DescribeTaskDetail":
			writeAPIResponse(w, TaskDetail{
				TaskId:           "task-err",
				Status:           "ERROR",
				ErrorType:        "DownloadError",
				ErrorDescription: "无法下载视频文件",
			})
		}
	}))
	defer ts.Close()

	client := testClient(t, ts.URL)
	_, err := client.DetectVideo(context.Background(), VideoInput{URL: "https://example.com/v.mp4"})

	// 失败终态携带厂商的错误描述
	relayErr := moderation.AsRelayError(err)
	assert.Equal(t, "ERROR", relayErr.Code)
	assert.Equal(t, "无法下载视频文件", relayErr.Message)
}

func TestDetectVideoDescribeVendorErrorStopsPolling(t *testing.T) {
	var describeCalls atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("X-TC-Action") {
		case "CreateVideoModerationTask":
			writeAPIResponse(w, CreateVideoModerationTaskResponse{
				Results: []VideoTaskCreateResult{{TaskId: "task-gone"}},
			})
		case "DescribeTaskDetail":
			describeCalls.Add(1)
			writeAPIResponse(w, map[string]any{
				"Error": map[string]string{
					"Code":    "ResourceUnavailable.InvalidTaskId",
					"Message": "任务不存在或已过期",
				},
			})
		}
	}))
	defer ts.Close()

	client := testClient(t, ts.URL)
	_, err := client.DetectVideo(context.Background(), VideoInput{URL: "https://example.com/v.mp4"})

	// 查询被厂商明确拒绝时不重试，错误码原样透传而不是耗尽预算报超时
	relayErr := moderation.AsRelayError(err)
	assert.Equal(t, "ResourceUnavailable.InvalidTaskId", relayErr.Code)
	assert.Equal(t, "任务不存在或已过期", relayErr.Message)
	assert.Equal(t, int64(1), describeCalls.Load())
}

func TestDetectVideoTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("X-TC-Action") {
		case "CreateVideoModerationTask":
			writeAPIResponse(w, CreateVideoModerationTaskResponse{
				Results: []VideoTaskCreateResult{{TaskId: "task-slow"}},
			})
		case "DescribeTaskDetail":
			writeAPIResponse(w, TaskDetail{TaskId: "task-slow", Status: "PENDING"})
		}
	}))
	defer ts.Close()

	client := testClient(t, ts.URL)
	client.VideoPollPolicy = polling.Policy{Interval: time.Millisecond, MaxAttempts: 3}
	_, err := client.DetectVideo(context.Background(), VideoInput{URL: "https://example.com/v.mp4"})

	relayErr := moderation.AsRelayError(err)
	assert.Equal(t, moderation.CodeTimeout, relayErr.Code)
}

func TestDetectVideoCreationNoTaskID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIResponse(w, CreateVideoModerationTaskResponse{
			Results: []VideoTaskCreateResult{{Code: "InvalidParameter", Message: "视频地址不可访问"}},
		})
	}))
	defer ts.Close()

	client := testClient(t, ts.URL)
	_, err := client.DetectVideo(context.Background(), VideoInput{URL: "https://example.com/v.mp4"})

	relayErr := moderation.AsRelayError(err)
	assert.Equal(t, moderation.CodeInternalError, relayErr.Code)
	assert.Contains(t, relayErr.Message, "视频地址不可访问")
}

func TestDetectVideoMissingInput(t *testing.T) {
	client := testClient(t, "")
	_, err := client.DetectVideo(context.Background(), VideoInput{})

	relayErr := moderation.AsRelayError(err)
	assert.Equal(t, moderation.CodeInvalidParameter, relayErr.Code)
}
