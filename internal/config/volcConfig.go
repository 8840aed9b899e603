package config

// VolcConfig 包含火山引擎方舟（Ark）与智能视觉（Visual）的配置。
// 两套服务的鉴权方式不同：方舟用 Bearer API Key，智能视觉用 AK/SK 请求签名。
type VolcConfig struct {
	// ArkAPIKey 是方舟的 API Key（Bearer 鉴权）。
	ArkAPIKey string `mapstructure:"ark_api_key"`

	// ArkBaseURL 覆盖方舟接入点，为空时使用默认的 cn-beijing 域名。
	ArkBaseURL string `mapstructure:"ark_base_url"`

	// 模型 ID，为空时使用常量包里的默认版本。
	VisionModel    string `mapstructure:"vision_model"`     // 多模态审核
	ImageModel     string `mapstructure:"image_model"`      // 文生图
	ImageEditModel string `mapstructure:"image_edit_model"` // 指令图编辑（图生图）
	T2VModel       string `mapstructure:"t2v_model"`        // 文生视频
	I2VModel       string `mapstructure:"i2v_model"`        // 图生视频

	// 智能视觉的签名密钥对。
	VisualAccessKey string `mapstructure:"visual_access_key"`
	VisualSecretKey string `mapstructure:"visual_secret_key"`

	// VisualBaseURL 覆盖智能视觉接入点，仅供测试桩使用。
	VisualBaseURL string `mapstructure:"visual_base_url"`
}

// HasArkKey 报告方舟 API Key 是否已配置。
func (c VolcConfig) HasArkKey() bool {
	return c.ArkAPIKey != ""
}

// HasVisualKeys 报告智能视觉的 AK/SK 是否配置齐全。
func (c VolcConfig) HasVisualKeys() bool {
	return c.VisualAccessKey != "" && c.VisualSecretKey != ""
}
