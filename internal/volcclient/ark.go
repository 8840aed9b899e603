// Package volcclient 封装与火山引擎的交互逻辑：
// 方舟（Ark）的多模态审核与图像/视频生成，智能视觉（Visual）的签名调用。
package volcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/aigc-platform/detect_gateway/internal/config"
	"github.com/aigc-platform/detect_gateway/internal/constants"
	"github.com/aigc-platform/detect_gateway/internal/moderation"
	"github.com/aigc-platform/detect_gateway/internal/polling"
)

// ArkClient 封装方舟 API（Bearer 鉴权）。
type ArkClient struct {
	cfg        config.VolcConfig
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	poller     *polling.Poller

	// VideoPollPolicy 是视频生成任务的轮询策略，默认 120×3s，测试可覆盖。
	VideoPollPolicy polling.Policy
}

// NewArkClient 创建方舟客户端。密钥检查推迟到每次调用前。
func NewArkClient(cfg config.VolcConfig, logger *zap.Logger) *ArkClient {
	baseURL := cfg.ArkBaseURL
	if baseURL == "" {
		baseURL = constants.ArkDefaultBaseURL
	}
	return &ArkClient{
		cfg:             cfg,
		baseURL:         baseURL,
		httpClient:      &http.Client{Timeout: constants.ArkAPITimeout},
		logger:          logger,
		poller:          polling.NewPoller(logger),
		VideoPollPolicy: constants.ArkVideoPollPolicy,
	}
}

// ModerationOutcome 是多模态审核的结果：模型原始回答加解析出的结论。
type ModerationOutcome struct {
	RawText string             `json:"rawText"`
	Verdict moderation.Verdict `json:"verdict"`
}

// ModerateImage 用多模态模型审核一张图片。
// mediaRef 是公网 URL 或 data URL（data:image/...;base64,...）。
// 模型的回答是自由文本，解析失败时降级为安全兜底结论，不报错。
func (c *ArkClient) ModerateImage(ctx context.Context, mediaRef string) (*ModerationOutcome, error) {
	return c.moderate(ctx, chatContentPart{Type: "image_url", ImageURL: &mediaURL{URL: mediaRef}})
}

// ModerateVideo 用多模态模型审核一段视频，mediaRef 同上。
func (c *ArkClient) ModerateVideo(ctx context.Context, mediaRef string) (*ModerationOutcome, error) {
	return c.moderate(ctx, chatContentPart{Type: "video_url", VideoURL: &mediaURL{URL: mediaRef}})
}

func (c *ArkClient) moderate(ctx context.Context, media chatContentPart) (*ModerationOutcome, error) {
	if err := c.requireArkKey(); err != nil {
		return nil, err
	}
	model := c.cfg.VisionModel
	if model == "" {
		model = constants.ArkDefaultVisionModel
	}

	req := chatCompletionRequest{
		Model: model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []chatContentPart{
				{Type: "text", Text: constants.ArkModerationPrompt},
				media,
			},
		}},
	}

	var resp chatCompletionResponse
	if err := c.post(ctx, "/chat/completions", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, moderation.NewInternalError("方舟未返回任何回答", nil)
	}

	rawText := resp.Choices[0].Message.Content
	verdict := moderation.ParseFreeText(rawText)
	c.logger.Info("方舟多模态审核完成",
		zap.Bool("是否命中(flagged)", verdict.IsFlagged),
		zap.String("建议(suggestion)", verdict.Suggestion),
		zap.Strings("标签(labels)", verdict.SubLabels),
	)
	return &ModerationOutcome{RawText: rawText, Verdict: verdict}, nil
}

// GenerateImage 发起文生图，返回生成图片的 URL。
func (c *ArkClient) GenerateImage(ctx context.Context, prompt, size string, watermark bool) (string, error) {
	if err := c.requireArkKey(); err != nil {
		return "", err
	}
	model := c.cfg.ImageModel
	if model == "" {
		model = constants.ArkDefaultImageModel
	}

	req := imageGenerationRequest{
		Model:          model,
		Prompt:         prompt,
		Size:           size,
		N:              1,
		ResponseFormat: "url",
		Watermark:      &watermark,
	}
	var resp imageGenerationResponse
	if err := c.post(ctx, "/images/generations", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", moderation.NewInternalError("方舟未返回图片地址", nil)
	}
	return resp.Data[0].URL, nil
}

// EditImage 按文字指令编辑一张图片，返回结果图的 URL。
// imageRef 是公网 URL 或 data URL（data:image/...;base64,...）。
func (c *ArkClient) EditImage(ctx context.Context, prompt, imageRef string) (string, error) {
	if err := c.requireArkKey(); err != nil {
		return "", err
	}
	model := c.cfg.ImageEditModel
	if model == "" {
		model = constants.ArkDefaultImageEditModel
	}

	req := imageGenerationRequest{
		Model:          model,
		Prompt:         prompt,
		Image:          imageRef,
		ResponseFormat: "url",
	}
	var resp imageGenerationResponse
	if err := c.post(ctx, "/images/generations", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", moderation.NewInternalError("方舟未返回图片地址", nil)
	}
	return resp.Data[0].URL, nil
}

// VideoGenerationInput 是视频生成任务的输入。
// Prompt 必填；ImageRef 非空时走图生视频（I2V），否则文生视频（T2V）。
type VideoGenerationInput struct {
	Prompt   string
	ImageRef string
	Ratio    string
	Duration int
}

// GenerateVideo 创建视频生成任务并轮询直到完成，返回视频 URL。
// 轮询预算约 6 分钟（120×3s）。
func (c *ArkClient) GenerateVideo(ctx context.Context, input VideoGenerationInput) (string, error) {
	if err := c.requireArkKey(); err != nil {
		return "", err
	}

	model := c.cfg.T2VModel
	if model == "" {
		model = constants.ArkDefaultT2VModel
	}
	content := []videoContentPart{{Type: "text", Text: input.Prompt}}
	if input.ImageRef != "" {
		model = c.cfg.I2VModel
		if model == "" {
			model = constants.ArkDefaultI2VModel
		}
		content = append(content, videoContentPart{
			Type:     "image_url",
			ImageURL: &mediaURL{URL: input.ImageRef},
			Role:     "reference_image",
		})
	}

	createReq := videoTaskCreateRequest{
		Model:    model,
		Content:  content,
		Ratio:    input.Ratio,
		Duration: input.Duration,
	}

	payload, err := c.poller.Run(ctx, c.VideoPollPolicy,
		func(ctx context.Context) (string, error) {
			var createResp videoTaskCreateResponse
			if postErr := c.post(ctx, "/contents/generations/tasks", createReq, &createResp); postErr != nil {
				return "", postErr
			}
			return createResp.ID, nil
		},
		c.fetchVideoTask,
	)
	if err != nil {
		return "", mapArkPollError(err)
	}

	videoURL, ok := payload.(string)
	if !ok || videoURL == "" {
		return "", moderation.NewInternalError("方舟未返回视频地址", nil)
	}
	return videoURL, nil
}

// fetchVideoTask 查询视频生成任务状态并映射到轮询结果。
func (c *ArkClient) fetchVideoTask(ctx context.Context, taskID string) (polling.Result, error) {
	var detail videoTaskDetail
	if err := c.get(ctx, "/contents/generations/tasks/"+taskID, &detail); err != nil {
		// 厂商错误码表示查询被明确拒绝，立即终止轮询透传；传输层失败才重试。
		if relayErr := moderation.AsRelayError(err); relayErr.IsVendor() {
			return polling.Result{Failed: true, Code: relayErr.Code, Message: relayErr.Message}, nil
		}
		return polling.Result{}, err
	}

	switch detail.Status {
	case constants.ArkTaskStatusSucceeded:
		videoURL := ""
		if detail.Content != nil {
			videoURL = detail.Content.VideoURL
		}
		if videoURL == "" && detail.Output != nil {
			videoURL = detail.Output.VideoURL
		}
		return polling.Result{Done: true, Payload: videoURL}, nil
	case constants.ArkTaskStatusFailed:
		message := "生成失败"
		code := "failed"
		if detail.Error != nil {
			if detail.Error.Message != "" {
				message = detail.Error.Message
			}
			if detail.Error.Code != "" {
				code = detail.Error.Code
			}
		}
		return polling.Result{Failed: true, Code: code, Message: message}, nil
	default:
		return polling.Result{}, nil
	}
}

// post 向方舟发起 JSON POST 并解码响应。
func (c *ArkClient) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return moderation.NewInternalError("序列化方舟请求失败", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return moderation.NewInternalError("构造方舟请求失败", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return c.do(httpReq, path, out)
}

// get 向方舟发起 GET 并解码响应。
func (c *ArkClient) get(ctx context.Context, path string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return moderation.NewInternalError("构造方舟请求失败", err)
	}
	return c.do(httpReq, path, out)
}

func (c *ArkClient) do(httpReq *http.Request, path string, out any) error {
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.ArkAPIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return moderation.NewInternalError(fmt.Sprintf("调用方舟 %s 失败", path), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return moderation.NewInternalError("读取方舟响应失败", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope arkErrorEnvelope
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Error != nil && envelope.Error.Message != "" {
			return moderation.NewVendorError(envelope.Error.Code, envelope.Error.Message)
		}
		return moderation.NewInternalError(fmt.Sprintf("方舟 %s 返回 %d", path, resp.StatusCode), nil)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return moderation.NewInternalError(fmt.Sprintf("解码方舟 %s 响应失败", path), err)
	}
	return nil
}

func (c *ArkClient) requireArkKey() error {
	if !c.cfg.HasArkKey() {
		return moderation.NewMissingCredential(
			"请配置 volc.ark_api_key（或环境变量 DETECT_GATEWAY_VOLC_ARK_API_KEY）")
	}
	return nil
}

// mapArkPollError 把轮询错误映射到对外错误码。
func mapArkPollError(err error) error {
	var pollErr *polling.Error
	if !errors.As(err, &pollErr) {
		return moderation.NewInternalError("视频生成失败", err)
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
		return moderation.NewTimeout("生成超时，请稍后重试")
	}
}
