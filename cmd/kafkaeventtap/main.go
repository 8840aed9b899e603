// kafkaeventtap 是一个调试用的消费者：订阅网关发布的三个事件主题，
// 把收到的事件原样打印出来，用于联调时确认事件确实发出去了。
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/aigc-platform/detect_gateway/internal/config"
	"github.com/aigc-platform/detect_gateway/internal/kafka"
	"github.com/aigc-platform/detect_gateway/internal/logger"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config", "internal/config/config.development.yaml", "指定配置文件的路径")
	flag.Parse()

	// 1. 加载配置
	appCfg, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("致命错误: 加载配置文件 '%s' 失败: %v", configFile, err)
	}
	if !appCfg.Kafka.Enabled() {
		log.Fatalf("致命错误: 未配置 kafka.brokers，无事件可订阅")
	}

	// 2. 初始化 Logger
	zapLogger, loggerErr := logger.New(appCfg.Log)
	if loggerErr != nil {
		log.Fatalf("致命错误: 初始化 ZapLogger 失败: %v", loggerErr)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()
	zapLogger.Info("事件订阅器启动，配置文件加载成功。")

	// 3. 初始化 Kafka Sarama 配置
	saramaCfg, err := kafka.GetSaramaConfig(appCfg.Kafka, zapLogger)
	if err != nil {
		zapLogger.Fatal("创建 Kafka Sarama 配置失败", zap.Error(err))
	}
	// 调试工具从最早的消息看起，便于回看历史事件。
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	// 4. 创建消费者
	consumer, err := sarama.NewConsumer(appCfg.Kafka.Brokers, saramaCfg)
	if err != nil {
		zapLogger.Fatal("创建 Kafka 消费者失败",
			zap.Strings("brokers", appCfg.Kafka.Brokers),
			zap.Error(err),
		)
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			zapLogger.Error("关闭 Kafka 消费者失败", zap.Error(err))
		}
	}()

	topics := []string{
		appCfg.Kafka.Topics.Flagged,
		appCfg.Kafka.Topics.Passed,
		appCfg.Kafka.Topics.RelayFailures,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for _, topic := range topics {
		if topic == "" {
			continue
		}
		partitions, err := consumer.Partitions(topic)
		if err != nil {
			zapLogger.Error("获取主题分区失败", zap.String("主题(topic)", topic), zap.Error(err))
			continue
		}
		for _, partition := range partitions {
			pc, err := consumer.ConsumePartition(topic, partition, sarama.OffsetOldest)
			if err != nil {
				zapLogger.Error("订阅分区失败",
					zap.String("主题(topic)", topic),
					zap.Int32("分区(partition)", partition),
					zap.Error(err),
				)
				continue
			}
			wg.Add(1)
			go func(topic string, pc sarama.PartitionConsumer) {
				defer wg.Done()
				defer pc.Close()
				for {
					select {
					case msg, ok := <-pc.Messages():
						if !ok {
							return
						}
						zapLogger.Info("收到事件",
							zap.String("主题(topic)", msg.Topic),
							zap.Int32("分区(partition)", msg.Partition),
							zap.Int64("偏移量(offset)", msg.Offset),
							zap.ByteString("消息键(key)", msg.Key),
							zap.ByteString("消息体(value)", msg.Value),
						)
					case <-ctx.Done():
						return
					}
				}
			}(topic, pc)
		}
	}
	zapLogger.Info("已订阅事件主题，按 Ctrl+C 退出。", zap.Strings("topics", topics))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	cancel()
	wg.Wait()
	zapLogger.Info("事件订阅器已退出。")
}
