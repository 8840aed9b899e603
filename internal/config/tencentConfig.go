package config

// TencentConfig 包含腾讯云内容安全（IMS 图片 / VM 视频）的配置。
type TencentConfig struct {
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"` // 例如 "ap-guangzhou"

	// IMSBizType 是图片审核的策略标识（控制台配置的 BizType），可为空。
	IMSBizType string `mapstructure:"ims_biz_type"`

	// VideoBizType 是视频 AI 生成检测使用的 BizType，必填才能发起视频检测。
	VideoBizType string `mapstructure:"video_biz_type"`

	// APIBaseURL 覆盖 API 接入点，仅供测试桩使用；为空时按官方域名拼接。
	APIBaseURL string `mapstructure:"api_base_url"`
}

// HasCredentials 报告密钥是否配置齐全。
// 所有腾讯云调用在发起网络请求前都先做此检查。
func (c TencentConfig) HasCredentials() bool {
	return c.SecretID != "" && c.SecretKey != ""
}
