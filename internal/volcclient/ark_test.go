package volcclient

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

func testArkClient(baseURL string) *ArkClient {
	client := NewArkClient(config.VolcConfig{
		ArkAPIKey:  "test-ark-key",
		ArkBaseURL: baseURL,
	}, zap.NewNop())
	client.VideoPollPolicy = polling.Policy{Interval: time.Millisecond, MaxAttempts: 10}
	return client
}

func TestModerateImage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-ark-key", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		require.Len(t, req.Messages[0].Content, 2)
		assert.Equal(t, "text", req.Messages[0].Content[0].Type)
		assert.Equal(t, "image_url", req.Messages[0].Content[1].Type)
		assert.Equal(t, "https://example.com/a.jpg", req.Messages[0].Content[1].ImageURL.URL)

		answer := `分析完成。{"safe": false, "suggestion": "block", "labels": ["色情"], "reason": "包含裸露"}`
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": answer}},
			},
		})
	}))
	defer ts.Close()

	outcome, err := testArkClient(ts.URL).ModerateImage(context.Background(), "https://example.com/a.jpg")

	require.NoError(t, err)
	assert.True(t, outcome.Verdict.IsFlagged)
	assert.Equal(t, moderation.SuggestionBlock, outcome.Verdict.Suggestion)
	assert.Equal(t, []string{"色情"}, outcome.Verdict.SubLabels)
	assert.Contains(t, outcome.RawText, "分析完成")
}

func TestModerateImageUnparseableAnswer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "这张图片没有任何问题。"}},
			},
		})
	}))
	defer ts.Close()

	// 模型没按约定格式回答时走安全兜底，不报错
	outcome, err := testArkClient(ts.URL).ModerateImage(context.Background(), "https://example.com/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, moderation.SafeVerdict(), outcome.Verdict)
}

func TestModerateVideoMissingKey(t *testing.T) {
	client := NewArkClient(config.VolcConfig{}, zap.NewNop())
	_, err := client.ModerateVideo(context.Background(), "https://example.com/v.mp4")

	relayErr := moderation.AsRelayError(err)
	assert.Equal(t, moderation.CodeMissingCredential, relayErr.Code)
}

func TestGenerateImage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)

		var req imageGenerationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "一只在月球上的猫", req.Prompt)
		require.NotNil(t, req.Watermark)
		assert.False(t, *req.Watermark)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"url": "https://cdn.example.com/img.png"}},
		})
	}))
	defer ts.Close()

	imageURL, err := testArkClient(ts.URL).GenerateImage(context.Background(), "一只在月球上的猫", "1024x1024", false)

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/img.png", imageURL)
}

func TestEditImage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)

		var req imageGenerationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "把背景换成星空", req.Prompt)
		assert.Equal(t, "data:image/jpeg;base64,AAAA", req.Image)
		assert.Equal(t, "url", req.ResponseFormat)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"url": "https://cdn.example.com/edited.png"}},
		})
	}))
	defer ts.Close()

	imageURL, err := testArkClient(ts.URL).EditImage(context.Background(),
		"把背景换成星空", "data:image/jpeg;base64,AAAA")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/edited.png", imageURL)
}

func TestGenerateVideoPollsUntilSucceeded(t *testing.T) {
	var fetchCalls atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/contents/generations/tasks":
			var req videoTaskCreateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.NotEmpty(t, req.Content)
			assert.Equal(t, "text", req.Content[0].Type)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "cgt-123"})
		case r.Method == http.MethodGet && r.URL.Path == "/contents/generations/tasks/cgt-123":
			if fetchCalls.Add(1) < 3 {
				_ = json.NewEncoder(w).Encode(map[string]string{"id": "cgt-123", "status": "running"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":      "cgt-123",
				"status":  "succeeded",
				"content": map[string]string{"video_url": "https://cdn.example.com/v.mp4"},
			})
		default:
			t.Errorf("未预期的请求: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer ts.Close()

	videoURL, err := testArkClient(ts.URL).GenerateVideo(context.Background(), VideoGenerationInput{
		Prompt: "落日下的海浪",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/v.mp4", videoURL)
	assert.Equal(t, int64(3), fetchCalls.Load())
}

func TestGenerateVideoI2VUsesReferenceImage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/contents/generations/tasks":
			var req videoTaskCreateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Len(t, req.Content, 2)
			assert.Equal(t, "image_url", req.Content[1].Type)
			assert.Equal(t, "reference_image", req.Content[1].Role)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "cgt-i2v"})
		case r.Method == http.MethodGet:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":     "cgt-i2v",
				"status": "succeeded",
				"output": map[string]string{"video_url": "https://cdn.example.com/i2v.mp4"},
			})
		}
	}))
	defer ts.Close()

	// video_url 也可能出现在 output 下，两个位置都要认
	videoURL, err := testArkClient(ts.URL).GenerateVideo(context.Background(), VideoGenerationInput{
		Prompt:   "让画面动起来",
		ImageRef: "https://example.com/ref.jpg",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/i2v.mp4", videoURL)
}

func TestGenerateVideoTaskFailed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "cgt-bad"})
		case r.Method == http.MethodGet:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":     "cgt-bad",
				"status": "failed",
				"error":  map[string]string{"code": "SensitiveContent", "message": "提示词包含敏感内容"},
			})
		}
	}))
	defer ts.Close()

	_, err := testArkClient(ts.URL).GenerateVideo(context.Background(), VideoGenerationInput{Prompt: "x"})

	relayErr := moderation.AsRelayError(err)
	assert.Equal(t, "SensitiveContent", relayErr.Code)
	assert.Equal(t, "提示词包含敏感内容", relayErr.Message)
}

func TestGenerateVideoFetchVendorErrorStopsPolling(t *testing.T) {
	var fetchCalls atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "cgt-gone"})
		case r.Method == http.MethodGet:
			fetchCalls.Add(1)
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"code": "NotFound", "message": "任务不存在"},
			})
		}
	}))
	defer ts.Close()

	_, err := testArkClient(ts.URL).GenerateVideo(context.Background(), VideoGenerationInput{Prompt: "x"})

	// 查询被厂商明确拒绝时不重试，错误码原样透传而不是耗尽预算报超时
	relayErr := moderation.AsRelayError(err)
	assert.Equal(t, "NotFound", relayErr.Code)
	assert.Equal(t, "任务不存在", relayErr.Message)
	assert.Equal(t, int64(1), fetchCalls.Load())
}

func TestArkErrorPassthrough(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "AuthenticationError", "message": "API key 无效"},
		})
	}))
	defer ts.Close()

	_, err := testArkClient(ts.URL).GenerateImage(context.Background(), "prompt", "", true)

	relayErr := moderation.AsRelayError(err)
	assert.Equal(t, "AuthenticationError", relayErr.Code)
	assert.Equal(t, "API key 无效", relayErr.Message)
}
