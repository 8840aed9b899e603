package moderation

import (
	"errors"
	"fmt"
)

// 错误码常量，对外接口的错误信封使用这些取值。
// 厂商透传错误（如腾讯返回的 "InvalidParameter.ImageSizeTooLarge"）不在此列，
// 原样带回给调用方。
const (
	CodeMissingCredential = "MissingCredential" // 必需的密钥/模型 ID 未配置，发起网络调用前检出
	CodeInvalidParameter  = "InvalidParameter"  // 必需参数缺失或互斥参数都未提供
	CodeInternalError     = "InternalError"     // 网关内部错误或厂商调用的未分类失败
	CodeTimeout           = "Timeout"           // 轮询预算耗尽，任务仍未到达终态
)

// RelayError 是网关面向调用方的统一错误对象。
// 所有错误类别（配置错误、输入错误、厂商错误、超时）在边界处都收敛为它，
// 不会让任何请求级错误导致进程退出。
type RelayError struct {
	// Code 是错误码，取本包常量或厂商透传的原始错误码。
	Code string
	// Message 是人类可读的错误描述，配置类错误会附带修复指引。
	Message string
	// Err 是底层错误（可选），用于 errors.Is / errors.As 链式判断。
	Err error
}

func (e *RelayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RelayError) Unwrap() error {
	return e.Err
}

// IsVendor 报告错误码是否为厂商透传码（而非本包定义的网关错误码）。
// 轮询场景用它区分"查询被厂商明确拒绝"与"传输层抖动"：前者重试不会改变结果。
func (e *RelayError) IsVendor() bool {
	switch e.Code {
	case CodeMissingCredential, CodeInvalidParameter, CodeInternalError, CodeTimeout:
		return false
	}
	return e.Code != ""
}

// NewMissingCredential 构造配置缺失错误，message 应说明需要配置哪些项。
func NewMissingCredential(message string) *RelayError {
	return &RelayError{Code: CodeMissingCredential, Message: message}
}

// NewInvalidParameter 构造输入参数错误。
func NewInvalidParameter(message string) *RelayError {
	return &RelayError{Code: CodeInvalidParameter, Message: message}
}

// NewInternalError 构造内部错误，底层错误会保留在链上。
func NewInternalError(message string, err error) *RelayError {
	return &RelayError{Code: CodeInternalError, Message: message, Err: err}
}

// NewTimeout 构造轮询超时错误。
func NewTimeout(message string) *RelayError {
	return &RelayError{Code: CodeTimeout, Message: message}
}

// NewVendorError 透传厂商错误码与描述，不做任何改写。
func NewVendorError(code, message string) *RelayError {
	return &RelayError{Code: code, Message: message}
}

// AsRelayError 从错误链中提取 RelayError。
// 提取失败时返回一个包装原错误的 InternalError，保证边界处总能拿到错误码。
func AsRelayError(err error) *RelayError {
	var relayErr *RelayError
	if errors.As(err, &relayErr) {
		return relayErr
	}
	return NewInternalError(err.Error(), err)
}
