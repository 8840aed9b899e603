// Package logger 构建本服务统一使用的 zap 日志器。
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aigc-platform/detect_gateway/internal/config"
)

// New 按配置创建 *zap.Logger。
// format 为 "json" 时输出生产格式，否则输出便于人读的 console 格式。
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 '%s': %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("构建 zap 日志器失败: %w", err)
	}
	return logger, nil
}
