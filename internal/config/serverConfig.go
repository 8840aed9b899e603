package config

import "time"

// ServerConfig 包含 HTTP 服务自身的配置。
type ServerConfig struct {
	Host         string        `mapstructure:"host"`          // 监听地址，默认 0.0.0.0
	Port         int           `mapstructure:"port"`          // 监听端口，默认 3001
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`  // 读超时
	WriteTimeout time.Duration `mapstructure:"write_timeout"` // 写超时；注意视频检测会同步等待轮询完成，不要设得太小
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`  // 空闲连接超时

	// PublicBaseURL 是代理暴露到公网的地址（如 ngrok 域名）。
	// 未配置 COS 时，本地上传的视频通过 {PublicBaseURL}/api/detect/tencent-video-ims/temp/{id}
	// 提供给腾讯云拉取。localhost 地址无效，腾讯云无法访问。
	PublicBaseURL string `mapstructure:"public_base_url"`

	// UploadDir 是本地中转文件的存放目录，默认 ./uploads。
	UploadDir string `mapstructure:"upload_dir"`

	// MaxUploadBytes 是视频上传的大小上限，默认 500MB。
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`

	// AllowCORSOrigins 是允许跨域的来源列表，空表示允许所有（开发环境）。
	AllowCORSOrigins []string `mapstructure:"allow_cors_origins"`
}

// LogConfig 控制 zap 日志的行为。
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug / info / warn / error
	Format string `mapstructure:"format"` // json / console
}
