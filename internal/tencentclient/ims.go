package tencentclient

import (
	"context"

	"go.uber.org/zap"

	"github.com/aigc-platform/detect_gateway/internal/constants"
	"github.com/aigc-platform/detect_gateway/internal/moderation"
)

// ImageModerationOutcome 是图片审核的完整结果：厂商原始响应加统一结论。
type ImageModerationOutcome struct {
	Response *ImageModerationResponse `json:"Response"`
	Verdict  moderation.Verdict       `json:"Verdict"`
}

// ImageModeration 发起一次图片同步审核。
// FileContent 与 FileUrl 必须提供其一；BizType 为空时回落到配置的默认策略。
func (c *Client) ImageModeration(ctx context.Context, req ImageModerationRequest) (*ImageModerationOutcome, error) {
	if err := c.requireCredentials(); err != nil {
		return nil, err
	}
	if req.FileContent == "" && req.FileUrl == "" {
		return nil, moderation.NewInvalidParameter("需要 fileContent 或 fileUrl")
	}
	if req.BizType == "" {
		req.BizType = c.cfg.IMSBizType
	}

	var resp ImageModerationResponse
	if err := c.call(ctx,
		constants.TencentIMSHost, constants.TencentIMSService,
		constants.TencentIMSAction, constants.TencentIMSVersion,
		req, &resp,
	); err != nil {
		return nil, err
	}

	verdict := NormalizeImage(&resp)
	c.logger.Info("图片审核完成",
		zap.String("request_id", resp.RequestId),
		zap.Bool("是否命中(flagged)", verdict.IsFlagged),
		zap.String("建议(suggestion)", verdict.Suggestion),
		zap.Float64("得分(score)", verdict.Score),
	)

	return &ImageModerationOutcome{Response: &resp, Verdict: verdict}, nil
}
