// Package tencentclient 封装与腾讯云内容安全服务（IMS 图片同步审核、
// VM 视频异步审核）的交互逻辑：TC3 请求签名、错误信封解析、结果归一化。
package tencentclient

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
	"github.com/aigc-platform/detect_gateway/internal/polling"
)

// Client 封装腾讯云内容安全接口的调用。
// 密钥检查在每次调用前进行而不是构造时：网关允许在密钥未配置的情况下启动，
// 对应接口返回 MissingCredential，与原平台行为一致。
type Client struct {
	cfg        config.TencentConfig
	httpClient *http.Client
	logger     *zap.Logger
	poller     *polling.Poller

	// VideoPollPolicy 是视频任务的轮询策略，默认取常量包的 100×3s，测试可覆盖。
	VideoPollPolicy polling.Policy
}

// NewClient 创建腾讯云客户端。
func NewClient(cfg config.TencentConfig, logger *zap.Logger) *Client {
	if cfg.Region == "" {
		cfg.Region = constants.TencentDefaultRegion
	}
	return &Client{
		cfg:             cfg,
		httpClient:      &http.Client{Timeout: constants.TencentAPITimeout},
		logger:          logger,
		poller:          polling.NewPoller(logger),
		VideoPollPolicy: constants.TencentVideoPollPolicy,
	}
}

// call 发起一次 TC3 签名的 API 调用，并把 Response 内层解码到 out。
// 厂商错误信封（Response.Error）转换为 RelayError 透传，非 2xx 同理。
func (c *Client) call(ctx context.Context, host, service, action, version string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return moderation.NewInternalError("序列化请求体失败", err)
	}

	endpoint := "https://" + host
	signHost := host
	if c.cfg.APIBaseURL != "" {
		endpoint = c.cfg.APIBaseURL
		if parsed, parseErr := url.Parse(endpoint); parseErr == nil {
			signHost = parsed.Host
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return moderation.NewInternalError("构造 HTTP 请求失败", err)
	}

	authorization, timestamp := buildAuthorization(c.cfg.SecretID, c.cfg.SecretKey, signHost, service, string(body), time.Now())
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", authorization)
	httpReq.Header.Set("X-TC-Action", action)
	httpReq.Header.Set("X-TC-Version", version)
	httpReq.Header.Set("X-TC-Timestamp", strconv.FormatInt(timestamp, 10))
	httpReq.Header.Set("X-TC-Region", c.cfg.Region)

	c.logger.Debug("调用腾讯云 API",
		zap.String("接口(action)", action),
		zap.String("host", signHost),
		zap.Int("请求体长度(body_length)", len(body)),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return moderation.NewInternalError(fmt.Sprintf("调用腾讯云 %s 失败", action), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return moderation.NewInternalError("读取腾讯云响应失败", err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil || len(envelope.Response) == 0 {
		return moderation.NewInternalError(
			fmt.Sprintf("腾讯云 %s 返回了无法解析的响应 (HTTP %d)", action, resp.StatusCode), err)
	}

	var probe apiErrorProbe
	if err := json.Unmarshal(envelope.Response, &probe); err == nil && probe.Error != nil {
		c.logger.Warn("腾讯云返回错误信封",
			zap.String("接口(action)", action),
			zap.String("厂商错误码(vendor_code)", probe.Error.Code),
			zap.String("错误描述(message)", probe.Error.Message),
		)
		return moderation.NewVendorError(probe.Error.Code, probe.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return moderation.NewInternalError(
			fmt.Sprintf("腾讯云 %s 返回非 200 状态: %d", action, resp.StatusCode), nil)
	}

	if err := json.Unmarshal(envelope.Response, out); err != nil {
		return moderation.NewInternalError(fmt.Sprintf("解码腾讯云 %s 响应失败", action), err)
	}
	return nil
}

// requireCredentials 在发起网络调用前检查密钥配置。
func (c *Client) requireCredentials() error {
	if !c.cfg.HasCredentials() {
		return moderation.NewMissingCredential(
			"请配置 tencent.secret_id 和 tencent.secret_key（或环境变量 DETECT_GATEWAY_TENCENT_SECRET_ID / DETECT_GATEWAY_TENCENT_SECRET_KEY）")
	}
	return nil
}
