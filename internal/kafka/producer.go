package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/aigc-platform/detect_gateway/internal/config"
	"github.com/aigc-platform/detect_gateway/internal/constants"
	"github.com/aigc-platform/detect_gateway/internal/models"
)

// EventProducer 定义了发布检测结果事件到 Kafka 的接口。
// 事件发布是尽力而为的：失败只影响下游消费方，不影响本次 HTTP 响应。
type EventProducer interface {
	// SendFlagged 发布检出风险内容的事件。
	SendFlagged(ctx context.Context, event *models.ContentFlaggedEvent) error

	// SendPassed 发布审核通过的事件。
	SendPassed(ctx context.Context, event *models.ContentPassedEvent) error

	// SendRelayFailure 发布转发失败（厂商错误、超时等）的事件。
	SendRelayFailure(ctx context.Context, event *models.RelayFailureEvent) error

	// Close 关闭生产者并释放资源。
	Close() error
}

// kafkaProducer 实现了 EventProducer 接口，使用 Sarama 同步生产者。
type kafkaProducer struct {
	producer sarama.SyncProducer
	topics   config.KafkaTopics
	logger   *zap.Logger
}

// NewKafkaProducer 创建一个新的 kafkaProducer 实例。
// brokers: Kafka broker 地址列表。
// saramaCfg: Sarama 客户端配置 (通常由 GetSaramaConfig 生成)。
// appTopics: 应用的 Kafka 主题配置。
// logger: 日志记录器。
func NewKafkaProducer(brokers []string, saramaCfg *sarama.Config, appTopics config.KafkaTopics, logger *zap.Logger) (EventProducer, error) {
	// 对于同步生产者，Return.Successes 和 Return.Errors 必须都设置为 true。
	// GetSaramaConfig 中应该已经处理了这一点。
	if !saramaCfg.Producer.Return.Successes || !saramaCfg.Producer.Return.Errors {
		logger.Error("Kafka生产者配置错误: 对于同步生产者, Return.Successes 和 Return.Errors 必须都为 true")
		return nil, fmt.Errorf("kafka生产者配置错误: 同步生产者需要 Return.Successes=true 和 Return.Errors=true")
	}

	producer, err := sarama.NewSyncProducer(brokers, saramaCfg)
	if err != nil {
		logger.Error("创建 Kafka 同步生产者失败",
			zap.Strings("brokers", brokers),
			zap.Error(err),
		)
		return nil, fmt.Errorf("创建 Kafka 同步生产者失败: %w", err)
	}
	logger.Info("Kafka 同步生产者创建成功", zap.Strings("brokers", brokers))

	return &kafkaProducer{
		producer: producer,
		topics:   appTopics,
		logger:   logger,
	}, nil
}

// SendFlagged 实现 EventProducer 接口。
func (p *kafkaProducer) SendFlagged(ctx context.Context, event *models.ContentFlaggedEvent) error {
	if event == nil {
		p.logger.Warn("SendFlagged: 尝试发送空的风险内容事件")
		return fmt.Errorf("风险内容事件不能为空")
	}
	if p.topics.Flagged == "" {
		p.logger.Error("SendFlagged: 'flagged' (风险内容) 主题未在配置中定义")
		return fmt.Errorf("'flagged' (风险内容) 主题未配置")
	}
	return p.send(p.topics.Flagged, event.EventID, event, "风险内容")
}

// SendPassed 实现 EventProducer 接口。
func (p *kafkaProducer) SendPassed(ctx context.Context, event *models.ContentPassedEvent) error {
	if event == nil {
		p.logger.Warn("SendPassed: 尝试发送空的审核通过事件")
		return fmt.Errorf("审核通过事件不能为空")
	}
	if p.topics.Passed == "" {
		p.logger.Error("SendPassed: 'passed' (审核通过) 主题未在配置中定义")
		return fmt.Errorf("'passed' (审核通过) 主题未配置")
	}
	return p.send(p.topics.Passed, event.EventID, event, "审核通过")
}

// SendRelayFailure 实现 EventProducer 接口。
func (p *kafkaProducer) SendRelayFailure(ctx context.Context, event *models.RelayFailureEvent) error {
	if event == nil {
		p.logger.Warn("SendRelayFailure: 尝试发送空的转发失败事件")
		return fmt.Errorf("转发失败事件不能为空")
	}
	if p.topics.RelayFailures == "" {
		p.logger.Error("SendRelayFailure: 'relay_failures' (转发失败) 主题未在配置中定义")
		return fmt.Errorf("'relay_failures' (转发失败) 主题未配置")
	}
	return p.send(p.topics.RelayFailures, event.EventID, event, "转发失败")
}

// send 序列化事件并带重试地发送到指定主题。
// 瞬时的 broker 抖动通过少量重试吸收，重试耗尽后把最后一次错误返回给调用方。
func (p *kafkaProducer) send(topic, eventID string, event any, kind string) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("序列化事件失败",
			zap.String("事件类型(kind)", kind),
			zap.String("事件ID(event_id)", eventID),
			zap.Error(err),
		)
		return fmt.Errorf("序列化%s事件失败: %w", kind, err)
	}

	// 使用事件ID作为消息的Key，有助于Kafka进行分区和日志压缩（如果启用）。
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(eventID),
		Value: sarama.ByteEncoder(eventJSON),
	}

	p.logger.Debug("准备发送事件到 Kafka",
		zap.String("主题(topic)", topic),
		zap.String("消息键(key)", eventID),
	)

	var lastErr error
	for attempt := 1; attempt <= constants.KafkaProducerMaxSendRetries; attempt++ {
		partition, offset, sendErr := p.producer.SendMessage(msg)
		if sendErr == nil {
			p.logger.Info("成功发送事件到 Kafka",
				zap.String("主题(topic)", topic),
				zap.String("事件类型(kind)", kind),
				zap.String("事件ID(event_id)", eventID),
				zap.Int32("分区(partition)", partition),
				zap.Int64("偏移量(offset)", offset),
			)
			return nil
		}
		lastErr = sendErr
		p.logger.Warn("发送事件到 Kafka 失败，准备重试",
			zap.String("主题(topic)", topic),
			zap.String("事件ID(event_id)", eventID),
			zap.Int("尝试次数(attempt)", attempt),
			zap.Error(sendErr),
		)
		if attempt < constants.KafkaProducerMaxSendRetries {
			time.Sleep(constants.KafkaProducerSendRetryDelay)
		}
	}

	p.logger.Error("发送事件到 Kafka 重试耗尽",
		zap.String("主题(topic)", topic),
		zap.String("事件ID(event_id)", eventID),
		zap.Error(lastErr),
	)
	return fmt.Errorf("发送消息到 Kafka '%s' 主题失败: %w", topic, lastErr)
}

// Close 实现 EventProducer 接口，关闭同步生产者。
func (p *kafkaProducer) Close() error {
	if p.producer != nil {
		p.logger.Info("正在关闭 Kafka 同步生产者...")
		if err := p.producer.Close(); err != nil {
			p.logger.Error("关闭 Kafka 同步生产者失败", zap.Error(err))
			return err
		}
		p.logger.Info("Kafka 同步生产者已成功关闭。")
	}
	return nil
}

// noopProducer 是 Kafka 未启用时的空实现：丢弃所有事件。
type noopProducer struct{}

// NewNoopProducer 返回一个什么都不做的 EventProducer，
// 供未配置 Kafka 的部署使用，调用方无需在每处发布点判空。
func NewNoopProducer() EventProducer {
	return noopProducer{}
}

func (noopProducer) SendFlagged(context.Context, *models.ContentFlaggedEvent) error    { return nil }
func (noopProducer) SendPassed(context.Context, *models.ContentPassedEvent) error      { return nil }
func (noopProducer) SendRelayFailure(context.Context, *models.RelayFailureEvent) error { return nil }
func (noopProducer) Close() error                                                      { return nil }
