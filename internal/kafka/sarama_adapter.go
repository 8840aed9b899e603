package kafka

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/aigc-platform/detect_gateway/internal/config"
	"github.com/aigc-platform/detect_gateway/internal/constants"
)

// zapToSaramaAdapter 将 zap.Logger 适配为 sarama.StdLogger 接口
type zapToSaramaAdapter struct {
	logger *zap.Logger
}

// NewZapToSaramaAdapter 创建一个新的适配器实例
func NewZapToSaramaAdapter(logger *zap.Logger) sarama.StdLogger {
	if logger == nil {
		// 不传入 logger 时保持 sarama.Logger 未设置，
		// Sarama 会使用其默认的 stderr logger。
		return nil
	}
	return &zapToSaramaAdapter{logger: logger}
}

// Print 实现 sarama.StdLogger 接口 (通常对应 Info 级别)
func (a *zapToSaramaAdapter) Print(v ...interface{}) {
	if a.logger != nil {
		a.logger.Info("Sarama", zap.String("internal_log", fmt.Sprint(v...)))
	}
}

// Printf 实现 sarama.StdLogger 接口 (通常对应 Info 级别)
func (a *zapToSaramaAdapter) Printf(format string, v ...interface{}) {
	if a.logger != nil {
		a.logger.Info("Sarama", zap.String("internal_log", fmt.Sprintf(format, v...)))
	}
}

// Println 实现 sarama.StdLogger 接口 (通常对应 Info 级别)
func (a *zapToSaramaAdapter) Println(v ...interface{}) {
	if a.logger != nil {
		a.logger.Info("Sarama", zap.String("internal_log", fmt.Sprintln(v...)))
	}
}

// GetSaramaConfig 是一个辅助函数，用于将我们定义的 config.KafkaConfig 转换为 sarama.Config。
// 本服务只做生产者，因此这里不设置任何消费者相关的选项。
// cfg: 应用的 Kafka 配置
// zapLogger: 日志记录器，用于记录此函数内的消息以及桥接 Sarama 内部日志
func GetSaramaConfig(cfg config.KafkaConfig, zapLogger *zap.Logger) (*sarama.Config, error) {
	saramaLogAdapter := NewZapToSaramaAdapter(zapLogger)
	if saramaLogAdapter != nil {
		sarama.Logger = saramaLogAdapter // 设置 Sarama 内部日志记录器
	}

	saramaCfg := sarama.NewConfig()

	// --- Kafka 版本设置 ---
	if cfg.Version == "" {
		if zapLogger != nil {
			zapLogger.Error("Kafka配置错误: kafka.version 未指定", zap.String("advice", "Sarama 需要明确的版本以确保兼容性"))
		}
		return nil, fmt.Errorf("kafka.version 未在配置中指定，Sarama 需要明确的版本以确保兼容性")
	}
	version, err := sarama.ParseKafkaVersion(cfg.Version)
	if err != nil {
		if zapLogger != nil {
			zapLogger.Error("Kafka配置错误: 无效的 kafka.version", zap.String("configured_version", cfg.Version), zap.Error(err))
		}
		return nil, fmt.Errorf("无效的 Kafka 版本配置 '%s': %w", cfg.Version, err)
	}
	saramaCfg.Version = version
	if zapLogger != nil {
		zapLogger.Info("Sarama Kafka 客户端协议版本已设置", zap.String("version", version.String()))
	}

	// --- 生产者配置 ---
	currentRequiredAcks := sarama.WaitForAll // 用于后续幂等性检查的默认值
	switch cfg.Producer.RequiredAcks {
	case "no_response":
		saramaCfg.Producer.RequiredAcks = sarama.NoResponse
		currentRequiredAcks = sarama.NoResponse
	case "wait_for_local":
		saramaCfg.Producer.RequiredAcks = sarama.WaitForLocal
		currentRequiredAcks = sarama.WaitForLocal
	case "wait_for_all":
		saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
		currentRequiredAcks = sarama.WaitForAll
	default:
		saramaCfg.Producer.RequiredAcks = sarama.WaitForAll // 默认 WaitForAll
		currentRequiredAcks = sarama.WaitForAll
		if zapLogger != nil {
			zapLogger.Warn("生产者 RequiredAcks 配置无效或未提供",
				zap.String("configured_acks", cfg.Producer.RequiredAcks),
				zap.String("using_default", "WaitForAll"))
		}
	}
	saramaCfg.Producer.Timeout = cfg.Producer.TimeoutMs * time.Millisecond
	saramaCfg.Producer.Return.Successes = cfg.Producer.ReturnSuccesses
	saramaCfg.Producer.Return.Errors = cfg.Producer.ReturnErrors
	if cfg.Producer.MaxMessageBytes > 0 {
		saramaCfg.Producer.MaxMessageBytes = cfg.Producer.MaxMessageBytes
	}

	// --- 幂等生产者 (Idempotent Producer) ---
	// 检测结果事件会触发下游处置动作，启用幂等性以确保消息在 Broker 端精确写入一次。
	// 要求:
	//   1. Producer.RequiredAcks 必须设置为 sarama.WaitForAll (acks=-1)。
	//   2. Kafka Broker 版本 >= 0.11.0.0。
	//   3. 为确保幂等性，Sarama 的 Net.MaxOpenRequests (每个连接的最大未完成请求数) 应设置为 1。
	if currentRequiredAcks == sarama.WaitForAll {
		if !saramaCfg.Version.IsAtLeast(sarama.V0_11_0_0) { // 检查 Kafka 版本是否支持幂等性
			if zapLogger != nil {
				zapLogger.Warn("幂等生产者启用条件检查: Kafka 版本过低",
					zap.String("configured_version", saramaCfg.Version.String()),
					zap.String("required_version", ">= 0.11.0.0"),
					zap.String("advice", "幂等生产者将不会启用"))
			}
		} else {
			saramaCfg.Producer.Idempotent = true
			// 当 Producer.Idempotent 设置为 true 时，Sarama 会自动将 Producer.Retry.Max 设置为 math.MaxInt32 (如果用户未设置)。
			// 同时，为了完全符合 Kafka 协议对幂等生产者的要求 (保证消息顺序和精确一次)，
			// 每个连接的未完成请求数 (MaxInFlightRequests) 应为1。
			saramaCfg.Net.MaxOpenRequests = 1 // Sarama 中等效于 MaxInFlightRequestsPerConnection
			if zapLogger != nil {
				zapLogger.Info("幂等生产者已启用",
					zap.Bool("idempotent", true),
					zap.Int("net.max_open_requests", saramaCfg.Net.MaxOpenRequests))
			}
		}
	} else {
		if zapLogger != nil {
			zapLogger.Info("幂等生产者未启用 (原因: Producer.RequiredAcks 未设置为 'all')",
				zap.String("current_acks_setting", fmt.Sprintf("%d", currentRequiredAcks)))
		}
	}

	// --- 网络与安全配置 (SASL/TLS) ---
	if cfg.EnableSASL {
		saramaCfg.Net.SASL.Enable = true
		saramaCfg.Net.SASL.User = cfg.SASLUser
		saramaCfg.Net.SASL.Password = cfg.SASLPassword
		switch cfg.SASLMechanism {
		case "PLAIN":
			saramaCfg.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		case "SCRAM-SHA-256":
			saramaCfg.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		case "SCRAM-SHA-512":
			saramaCfg.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA512
		default:
			if cfg.SASLMechanism == "" && cfg.SASLUser != "" {
				saramaCfg.Net.SASL.Mechanism = sarama.SASLTypePlaintext
				if zapLogger != nil {
					zapLogger.Info("SASL 已启用但未指定机制，将默认使用 PLAIN (基于用户名存在)")
				}
			} else if cfg.SASLMechanism != "" {
				if zapLogger != nil {
					zapLogger.Error("不支持的 SASL 机制", zap.String("configured_mechanism", cfg.SASLMechanism))
				}
				return nil, fmt.Errorf("不支持的 SASL 机制: '%s'", cfg.SASLMechanism)
			} else {
				if zapLogger != nil {
					zapLogger.Warn("SASL 已启用，但 SASLUser 和 SASLMechanism 均未配置。SASL 可能无法正常工作。")
				}
			}
		}
		if zapLogger != nil && saramaCfg.Net.SASL.Mechanism != "" {
			zapLogger.Info("SASL 已配置", zap.String("mechanism", string(saramaCfg.Net.SASL.Mechanism)))
		}
	}

	if cfg.EnableTLS {
		saramaCfg.Net.TLS.Enable = true
		tlsConfig := &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
		if cfg.TLSInsecureSkipVerify {
			tlsConfig.InsecureSkipVerify = true
			if zapLogger != nil {
				zapLogger.Warn("TLS InsecureSkipVerify 已启用。存在安全风险，不应在生产环境中使用。")
			}
		}
		if cfg.TLSCaFile != "" {
			caCert, err := os.ReadFile(cfg.TLSCaFile)
			if err != nil {
				if zapLogger != nil {
					zapLogger.Error("读取 CA 证书文件失败", zap.String("ca_file", cfg.TLSCaFile), zap.Error(err))
				}
				return nil, fmt.Errorf("读取 CA 证书文件失败 %s: %w", cfg.TLSCaFile, err)
			}
			caCertPool := x509.NewCertPool()
			if !caCertPool.AppendCertsFromPEM(caCert) {
				if zapLogger != nil {
					zapLogger.Error("无法将 CA 证书添加到证书池", zap.String("ca_file", cfg.TLSCaFile), zap.String("advice", "请检查文件内容是否为有效的 PEM 格式。"))
				}
				return nil, fmt.Errorf("无法将 CA 证书添加到证书池 (文件: %s)", cfg.TLSCaFile)
			}
			tlsConfig.RootCAs = caCertPool
		}
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			clientCert, err := tls.LoadX509KeyPair(cfg.TLSCertFile, cfg.TLSKeyFile)
			if err != nil {
				if zapLogger != nil {
					zapLogger.Error("加载客户端 TLS 证书和密钥失败", zap.String("cert_file", cfg.TLSCertFile), zap.String("key_file", cfg.TLSKeyFile), zap.Error(err))
				}
				return nil, fmt.Errorf("加载客户端证书和密钥失败: %w", err)
			}
			tlsConfig.Certificates = []tls.Certificate{clientCert}
		} else if (cfg.TLSCertFile != "" && cfg.TLSKeyFile == "") || (cfg.TLSCertFile == "" && cfg.TLSKeyFile != "") {
			if zapLogger != nil {
				zapLogger.Error("TLS 客户端认证配置错误", zap.String("advice", "TLSCertFile 和 TLSKeyFile 必须同时提供或同时不提供"))
			}
			return nil, fmt.Errorf("TLS 客户端认证配置错误: TLSCertFile 和 TLSKeyFile 必须同时提供或同时不提供")
		}
		saramaCfg.Net.TLS.Config = tlsConfig
		if zapLogger != nil {
			zapLogger.Info("TLS 已启用和配置")
		}
	}

	// --- ClientID ---
	saramaCfg.ClientID = constants.ServiceName
	if zapLogger != nil {
		zapLogger.Info("Sarama ClientID 已设置", zap.String("client_id", saramaCfg.ClientID))
	}

	return saramaCfg, nil
}
