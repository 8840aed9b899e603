package config

// AppConfig 是整个网关的配置结构体。
type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Tencent TencentConfig `mapstructure:"tencent"`
	Volc    VolcConfig    `mapstructure:"volc"`
	COS     COSConfig     `mapstructure:"cos"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
}
