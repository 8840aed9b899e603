package config

// COSConfig 包含腾讯云对象存储（COS）的配置。
// 大视频本地上传时先传到 COS，再让审核服务从 COS 拉取（推荐路径）。
// COS 提供 S3 兼容接口，客户端用 minio-go 访问。
type COSConfig struct {
	Bucket string `mapstructure:"bucket"` // 形如 "mybucket-125000000"；为空表示未启用 COS
	Region string `mapstructure:"region"` // 例如 "ap-guangzhou"

	// Endpoint 覆盖接入点，为空时按 cos.{region}.myqcloud.com 拼接。
	Endpoint string `mapstructure:"endpoint"`

	// 访问密钥。为空时回落到腾讯云主密钥（SecretID/SecretKey），与原平台一致。
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`

	UseSSL bool `mapstructure:"use_ssl"`
}

// Enabled 报告是否启用 COS 上传路径。
func (c COSConfig) Enabled() bool {
	return c.Bucket != ""
}
