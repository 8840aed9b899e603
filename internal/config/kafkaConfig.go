package config

import "time"

// KafkaConfig 包含了 Kafka 相关的配置。
// 本服务只做生产者（发布审核结果事件）；Brokers 为空表示禁用 Kafka。
type KafkaConfig struct {
	Brokers               []string       `mapstructure:"brokers"`                  // Kafka Broker 地址列表，为空时不初始化生产者
	Version               string         `mapstructure:"version"`                  // Kafka 版本，例如 "2.8.1" (Sarama 需要)
	Topics                KafkaTopics    `mapstructure:"topics"`                   // 主题配置
	Producer              ProducerConfig `mapstructure:"producer"`                 // 生产者特定配置
	EnableSASL            bool           `mapstructure:"enable_sasl"`              // 是否启用 SASL 认证
	SASLUser              string         `mapstructure:"sasl_user"`                // SASL 用户名
	SASLPassword          string         `mapstructure:"sasl_password"`            // SASL 密码
	SASLMechanism         string         `mapstructure:"sasl_mechanism"`           // SASL 机制, 例如 "PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512"
	EnableTLS             bool           `mapstructure:"enable_tls"`               // 是否启用 TLS 加密
	TLSCaFile             string         `mapstructure:"tls_ca_file"`              // CA 证书文件路径 (可选)
	TLSCertFile           string         `mapstructure:"tls_cert_file"`            // 客户端证书文件路径 (可选, 用于双向TLS)
	TLSKeyFile            string         `mapstructure:"tls_key_file"`             // 客户端私钥文件路径 (可选, 用于双向TLS)
	TLSInsecureSkipVerify bool           `mapstructure:"tls_insecure_skip_verify"` // 是否跳过服务器证书链和主机名验证 (不推荐用于生产)
}

// Enabled 报告是否启用 Kafka 事件发布。
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// KafkaTopics 定义了服务发布事件用到的 Kafka 主题名称。
type KafkaTopics struct {
	Flagged       string `mapstructure:"flagged"`        // 检出风险内容的事件主题
	Passed        string `mapstructure:"passed"`         // 审核通过的事件主题
	RelayFailures string `mapstructure:"relay_failures"` // 转发失败（厂商错误/超时）的事件主题
}

// ProducerConfig 包含生产者的特定配置。
type ProducerConfig struct {
	RequiredAcks    string        `mapstructure:"required_acks"`     // "no_response", "wait_for_local", "wait_for_all"
	TimeoutMs       time.Duration `mapstructure:"timeout_ms"`        // 生产者请求超时 (毫秒)
	ReturnSuccesses bool          `mapstructure:"return_successes"`  // (对于 SyncProducer) 是否返回成功
	ReturnErrors    bool          `mapstructure:"return_errors"`     // (对于 SyncProducer) 是否返回错误
	MaxMessageBytes int           `mapstructure:"max_message_bytes"` // 生产者能发送的最大消息大小
}
