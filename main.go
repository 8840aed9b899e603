// File: main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/aigc-platform/detect_gateway/internal/config"
	"github.com/aigc-platform/detect_gateway/internal/kafka"
	"github.com/aigc-platform/detect_gateway/internal/logger"
	"github.com/aigc-platform/detect_gateway/internal/server"
	"github.com/aigc-platform/detect_gateway/internal/storage"
	"github.com/aigc-platform/detect_gateway/internal/tencentclient"
	"github.com/aigc-platform/detect_gateway/internal/volcclient"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config", "internal/config/config.development.yaml", "指定配置文件的路径")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("致命错误: 加载配置文件 '%s' 失败: %v", configFile, err)
	}

	zapLogger, loggerErr := logger.New(cfg.Log)
	if loggerErr != nil {
		log.Fatalf("致命错误: 初始化 ZapLogger 失败: %v", loggerErr)
	}
	defer func() {
		zapLogger.Info("正在同步所有日志条目...")
		if err := zapLogger.Sync(); err != nil {
			log.Printf("警告: ZapLogger Sync 操作失败: %v\n", err)
		}
	}()
	zapLogger.Info("Logger 初始化成功。")

	// --- 厂商客户端初始化 ---
	// 密钥缺失不阻止启动：对应接口在调用时返回 MissingCredential，
	// 其余接口不受影响（例如只配了火山密钥的部署仍能用生成接口）。
	tencentClient := tencentclient.NewClient(cfg.Tencent, zapLogger)
	arkClient := volcclient.NewArkClient(cfg.Volc, zapLogger)
	visualClient := volcclient.NewVisualClient(cfg.Volc, zapLogger)
	zapLogger.Info("厂商客户端初始化完成",
		zap.Bool("腾讯云密钥(tencent_keys)", cfg.Tencent.HasCredentials()),
		zap.Bool("方舟密钥(ark_key)", cfg.Volc.HasArkKey()),
		zap.Bool("智能视觉密钥(visual_keys)", cfg.Volc.HasVisualKeys()),
	)

	// --- 上传中转存储初始化 ---
	cosStore, err := storage.NewCOSStore(cfg.COS, cfg.Tencent, zapLogger)
	if err != nil {
		zapLogger.Fatal("初始化 COS 存储失败", zap.Error(err))
	}
	localStore, err := storage.NewLocalRelayStore(cfg.Server.UploadDir, cfg.Server.PublicBaseURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("初始化本地中转存储失败", zap.Error(err))
	}

	// --- Kafka 相关初始化 (可选) ---
	producer := kafka.NewNoopProducer()
	if cfg.Kafka.Enabled() {
		saramaCfg, err := kafka.GetSaramaConfig(cfg.Kafka, zapLogger)
		if err != nil {
			zapLogger.Fatal("创建 Kafka Sarama 配置失败", zap.Error(err))
		}
		zapLogger.Info("Kafka Sarama 配置创建成功。")

		producer, err = kafka.NewKafkaProducer(cfg.Kafka.Brokers, saramaCfg, cfg.Kafka.Topics, zapLogger)
		if err != nil {
			zapLogger.Fatal("初始化 Kafka 生产者失败", zap.Error(err))
		}
		zapLogger.Info("Kafka 生产者初始化成功。")
	} else {
		zapLogger.Info("未配置 Kafka Broker，事件发布已禁用。")
	}
	defer func() {
		zapLogger.Info("正在关闭 Kafka 生产者...")
		if err := producer.Close(); err != nil {
			zapLogger.Error("关闭 Kafka 生产者失败", zap.Error(err))
		} else {
			zapLogger.Info("Kafka 生产者已成功关闭。")
		}
	}()

	// --- HTTP 服务初始化与启动 ---
	srv, err := server.NewServer(cfg.Server, server.Dependencies{
		Tencent:    tencentClient,
		Ark:        arkClient,
		Visual:     visualClient,
		COSStore:   cosStore,
		LocalStore: localStore,
		Producer:   producer,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("初始化 HTTP 服务失败", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Error("HTTP 服务运行出错或已停止", zap.Error(err))
			sigChan <- syscall.SIGTERM
		}
	}()

	receivedSignal := <-sigChan
	zapLogger.Info("收到关闭信号，开始优雅关闭服务...", zap.String("信号", receivedSignal.String()))

	// 视频检测请求可能正在同步等待轮询，给足在途请求的处理时间。
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP 服务优雅关闭失败", zap.Error(err))
	}
	zapLogger.Info("服务已成功关闭。")
}
