package constants

// ServiceName 是本服务的标识，用于 Kafka ClientID、事件来源字段与日志。
const ServiceName = "aigc-detect-gateway"
