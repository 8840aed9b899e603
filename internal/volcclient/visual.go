package volcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/aigc-platform/detect_gateway/internal/config"
	"github.com/aigc-platform/detect_gateway/internal/constants"
	"github.com/aigc-platform/detect_gateway/internal/moderation"
	"github.com/aigc-platform/detect_gateway/internal/volcsign"
)

// VisualClient 封装火山引擎智能视觉 API（AK/SK 签名鉴权）。
type VisualClient struct {
	cfg        config.VolcConfig
	httpClient *http.Client
	logger     *zap.Logger

	// now 允许测试固定签名时间。
	now func() time.Time
}

// NewVisualClient 创建智能视觉客户端。密钥检查推迟到每次调用前。
func NewVisualClient(cfg config.VolcConfig, logger *zap.Logger) *VisualClient {
	return &VisualClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: constants.VisualAPITimeout},
		logger:     logger,
		now:        time.Now,
	}
}

// FaceSwap 把 sourceB64 中的人脸换到 templateB64 模板图上，返回结果图的 base64。
func (c *VisualClient) FaceSwap(ctx context.Context, sourceB64, templateB64 string) (string, error) {
	if sourceB64 == "" || templateB64 == "" {
		return "", moderation.NewInvalidParameter("需要 imageBase64 与 templateBase64")
	}
	req := visualRequest{
		ReqKey:           constants.VisualReqKeyFaceSwap,
		BinaryDataBase64: []string{sourceB64, templateB64},
	}
	return c.cvProcess(ctx, req)
}

// SeedEdit 按文字指令编辑一张图片，返回结果图的 base64。
func (c *VisualClient) SeedEdit(ctx context.Context, prompt, imageB64 string) (string, error) {
	if prompt == "" || imageB64 == "" {
		return "", moderation.NewInvalidParameter("需要 prompt 与 imageBase64")
	}
	req := visualRequest{
		ReqKey:           constants.VisualReqKeySeedEdit,
		BinaryDataBase64: []string{imageB64},
		Prompt:           prompt,
	}
	return c.cvProcess(ctx, req)
}

// cvProcess 发起一次签名的 CVProcess 调用并取回首张结果图。
func (c *VisualClient) cvProcess(ctx context.Context, req visualRequest) (string, error) {
	if !c.cfg.HasVisualKeys() {
		return "", moderation.NewMissingCredential(
			"请配置 volc.visual_access_key 与 volc.visual_secret_key（或对应的 DETECT_GATEWAY_VOLC_* 环境变量）")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", moderation.NewInternalError("序列化智能视觉请求失败", err)
	}

	endpoint := "https://" + constants.VisualHost
	if c.cfg.VisualBaseURL != "" {
		endpoint = c.cfg.VisualBaseURL
	}
	query := url.Values{}
	query.Set("Action", constants.VisualActionCVProcess)
	query.Set("Version", constants.VisualVersion)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		endpoint+"/?"+query.Encode(), bytes.NewReader(body))
	if err != nil {
		return "", moderation.NewInternalError("构造智能视觉请求失败", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	volcsign.SignHTTP(httpReq, body,
		c.cfg.VisualAccessKey, c.cfg.VisualSecretKey,
		constants.VisualRegion, constants.VisualService, c.now())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", moderation.NewInternalError("调用智能视觉失败", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", moderation.NewInternalError("读取智能视觉响应失败", err)
	}

	var visualResp visualResponse
	if err := json.Unmarshal(respBody, &visualResp); err != nil {
		return "", moderation.NewInternalError(
			fmt.Sprintf("解码智能视觉响应失败（HTTP %d）", resp.StatusCode), err)
	}

	// code=10000 表示成功，其余一律视作厂商错误透传。
	if visualResp.Code != 10000 {
		message := visualResp.Message
		if message == "" {
			message = fmt.Sprintf("智能视觉返回错误码 %d", visualResp.Code)
		}
		return "", moderation.NewVendorError(strconv.Itoa(visualResp.Code), message)
	}
	if visualResp.Data == nil || len(visualResp.Data.BinaryDataBase64) == 0 {
		return "", moderation.NewInternalError("智能视觉未返回结果图", nil)
	}

	c.logger.Info("智能视觉调用完成",
		zap.String("能力(req_key)", req.ReqKey),
		zap.Int("结果图数量(images)", len(visualResp.Data.BinaryDataBase64)),
	)
	return visualResp.Data.BinaryDataBase64[0], nil
}
