package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Load 从指定的 YAML 文件加载配置，并允许环境变量覆盖。
// 环境变量前缀 DETECT_GATEWAY，层级用下划线分隔，
// 例如 DETECT_GATEWAY_TENCENT_SECRET_ID 覆盖 tencent.secret_id。
func Load(configFile string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType(strings.TrimPrefix(filepath.Ext(configFile), "."))

	v.SetEnvPrefix("DETECT_GATEWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 配置文件缺失不是致命错误：密钥可以全部来自环境变量。
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("读取配置文件 %s 失败: %w", configFile, err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.read_timeout", "30s")
	// 视频检测同步等待轮询完成，写超时要容下整个轮询预算。
	v.SetDefault("server.write_timeout", "10m")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.upload_dir", "./uploads")
	v.SetDefault("server.max_upload_bytes", int64(500*1024*1024))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("tencent.region", "ap-guangzhou")
	v.SetDefault("cos.region", "ap-guangzhou")
	v.SetDefault("cos.use_ssl", true)

	v.SetDefault("kafka.topics.flagged", "aigc_detect_flagged")
	v.SetDefault("kafka.topics.passed", "aigc_detect_passed")
	v.SetDefault("kafka.topics.relay_failures", "aigc_detect_relay_failures")
	v.SetDefault("kafka.producer.required_acks", "wait_for_all")
	v.SetDefault("kafka.producer.timeout_ms", 10000)
	v.SetDefault("kafka.producer.return_successes", true)
	v.SetDefault("kafka.producer.return_errors", true)
}
