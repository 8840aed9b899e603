package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aigc-platform/detect_gateway/internal/config"
	"github.com/aigc-platform/detect_gateway/internal/moderation"
	"github.com/aigc-platform/detect_gateway/internal/storage"
	"github.com/aigc-platform/detect_gateway/internal/tencentclient"
	"github.com/aigc-platform/detect_gateway/internal/volcclient"
)

// newTestServer 构造一个无密钥配置的服务：
// 不发起任何真实网络调用，检测接口应返回 MissingCredential。
func newTestServer(t *testing.T) *Server {
	return newTestServerWith(t, config.VolcConfig{}, "")
}

// newTestServerWith 按给定的火山配置与公网中转地址构造服务，供桩测试定制。
func newTestServerWith(t *testing.T, volcCfg config.VolcConfig, publicBaseURL string) *Server {
	t.Helper()
	logger := zap.NewNop()
	localStore, err := storage.NewLocalRelayStore(t.TempDir(), publicBaseURL, logger)
	require.NoError(t, err)

	srv, err := NewServer(config.ServerConfig{Port: 0}, Dependencies{
		Tencent:    tencentclient.NewClient(config.TencentConfig{}, logger),
		Ark:        volcclient.NewArkClient(volcCfg, logger),
		Visual:     volcclient.NewVisualClient(volcCfg, logger),
		LocalStore: localStore,
	}, logger)
	require.NoError(t, err)
	return srv
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Response.Error.Code, body.Response.Error.Message
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestInvalidJSONReturns400Envelope(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/detect/tencent-ims", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, _ := decodeErrorBody(t, rec)
	assert.Equal(t, moderation.CodeInvalidParameter, code)
}

func TestMissingImageInputReturns400(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/detect/volc-ims", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, message := decodeErrorBody(t, rec)
	assert.Equal(t, moderation.CodeInvalidParameter, code)
	assert.Contains(t, message, "imageUrl")
}

func TestMissingCredentialEnvelope(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/detect/tencent-ims",
		strings.NewReader(`{"fileUrl": "https://example.com/a.jpg"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)

	// 密钥未配置时在发起网络调用前检出，并附带修复指引
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	code, message := decodeErrorBody(t, rec)
	assert.Equal(t, moderation.CodeMissingCredential, code)
	assert.Contains(t, message, "tencent.secret_id")
}

func TestGenerateImageMissingPrompt(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate/image", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, message := decodeErrorBody(t, rec)
	assert.Equal(t, moderation.CodeInvalidParameter, code)
	assert.Contains(t, message, "prompt")
}

func TestTempVideoNotFound(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/detect/tencent-video-ims/temp/no-such-id", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	code, _ := decodeErrorBody(t, rec)
	assert.Equal(t, moderation.CodeInvalidParameter, code)
}

func videoUploadRequest(t *testing.T) *http.Request {
	t.Helper()
	var buf strings.Builder
	buf.WriteString("--testboundary\r\n")
	buf.WriteString("Content-Disposition: form-data; name=\"file\"; filename=\"a.mp4\"\r\n")
	buf.WriteString("Content-Type: video/mp4\r\n\r\n")
	buf.WriteString("fake video bytes\r\n")
	buf.WriteString("--testboundary--\r\n")

	req := httptest.NewRequest(http.MethodPost, "/api/detect/tencent-video-ims/upload",
		strings.NewReader(buf.String()))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=testboundary")
	return req
}

func TestUploadWithoutRelayPathRejected(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, videoUploadRequest(t))

	// 既没配 COS 也没配公网地址，本地上传路径不可用
	code, message := decodeErrorBody(t, rec)
	assert.Equal(t, moderation.CodeMissingCredential, code)
	assert.Contains(t, message, "cos.bucket")
	assert.Contains(t, message, "public_base_url")
}

func TestUploadLocalRelayReturnsURLThenServes(t *testing.T) {
	srv := newTestServerWith(t, config.VolcConfig{}, "https://abc.ngrok.io")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, videoUploadRequest(t))
	require.Equal(t, http.StatusOK, rec.Code)

	// 上传只做中转登记，检测是独立的第二步
	var resp struct {
		URL string `json:"url"`
		ID  string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	assert.Equal(t, "https://abc.ngrok.io/api/detect/tencent-video-ims/temp/"+resp.ID, resp.URL)

	// 回源接口在后续请求里仍能取到文件
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/detect/tencent-video-ims/temp/"+resp.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fake video bytes", rec.Body.String())
}

func TestVolcImageResponseShape(t *testing.T) {
	ark := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		answer := `{"safe": false, "suggestion": "block", "labels": ["暴力"], "reason": "包含血腥画面"}`
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": answer}},
			},
		})
	}))
	defer ark.Close()

	srv := newTestServerWith(t, config.VolcConfig{ArkAPIKey: "test-key", ArkBaseURL: ark.URL}, "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/detect/volc-ims",
		strings.NewReader(`{"imageUrl": "https://example.com/a.jpg"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Safe       bool     `json:"safe"`
		Suggestion string   `json:"suggestion"`
		Labels     []string `json:"labels"`
		Reason     string   `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Safe)
	assert.Equal(t, "block", resp.Suggestion)
	assert.Equal(t, []string{"暴力"}, resp.Labels)
	assert.Equal(t, "包含血腥画面", resp.Reason)
}

func TestVolcVideoBase64Accepted(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/detect/volc-video-ims",
		strings.NewReader(`{"videoBase64": "AAAA"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)

	// base64 入参通过参数校验，走到密钥检查
	code, _ := decodeErrorBody(t, rec)
	assert.Equal(t, moderation.CodeMissingCredential, code)
}

func TestMissingVideoInputReturns400(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/detect/volc-video-ims", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, message := decodeErrorBody(t, rec)
	assert.Equal(t, moderation.CodeInvalidParameter, code)
	assert.Contains(t, message, "videoBase64")
}

func TestGenerateImageResponseShape(t *testing.T) {
	ark := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"url": "https://cdn.example.com/img.png"}},
		})
	}))
	defer ark.Close()

	srv := newTestServerWith(t, config.VolcConfig{ArkAPIKey: "test-key", ArkBaseURL: ark.URL}, "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate/image",
		strings.NewReader(`{"prompt": "一只猫"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"imageUrl":"https://cdn.example.com/img.png"`)
}

func TestSeedEditDefaultsToArkProvider(t *testing.T) {
	var gotEditRequest bool
	ark := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/images/generations", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "data:image/jpeg;base64,AAAA", body["image"])
		gotEditRequest = true
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"url": "https://cdn.example.com/edited.png"}},
		})
	}))
	defer ark.Close()

	srv := newTestServerWith(t, config.VolcConfig{ArkAPIKey: "test-key", ArkBaseURL: ark.URL}, "")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate/seededit",
		strings.NewReader(`{"prompt": "换个背景", "imageBase64": "AAAA"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotEditRequest)
	assert.Contains(t, rec.Body.String(), `"imageUrl":"https://cdn.example.com/edited.png"`)
}

func TestSeedEditMissingInputs(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate/seededit",
		strings.NewReader(`{"provider": "visual"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, message := decodeErrorBody(t, rec)
	assert.Equal(t, moderation.CodeInvalidParameter, code)
	assert.Contains(t, message, "imageBase64")
}

func TestFaceSwapMissingInputs(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate/faceswap",
		strings.NewReader(`{"imageBase64": "AAAA"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, message := decodeErrorBody(t, rec)
	assert.Equal(t, moderation.CodeInvalidParameter, code)
	assert.Contains(t, message, "templateBase64")
}

func TestCORSPreflights(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/detect/tencent-ims", nil)
	req.Header.Set("Origin", "https://console.example.com")
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
