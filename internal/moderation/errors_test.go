package moderation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsRelayError(t *testing.T) {
	t.Run("直接的RelayError", func(t *testing.T) {
		err := NewInvalidParameter("缺少参数")
		relayErr := AsRelayError(err)
		assert.Equal(t, CodeInvalidParameter, relayErr.Code)
		assert.Equal(t, "缺少参数", relayErr.Message)
	})

	t.Run("包装在链上的RelayError", func(t *testing.T) {
		inner := NewVendorError("InvalidParameter.ImageSizeTooLarge", "图片过大")
		wrapped := fmt.Errorf("调用失败: %w", inner)
		relayErr := AsRelayError(wrapped)
		assert.Equal(t, "InvalidParameter.ImageSizeTooLarge", relayErr.Code)
	})

	t.Run("普通错误收敛为InternalError", func(t *testing.T) {
		plain := errors.New("connection refused")
		relayErr := AsRelayError(plain)
		assert.Equal(t, CodeInternalError, relayErr.Code)
		assert.ErrorIs(t, relayErr, plain)
	})
}

func TestRelayErrorIsVendor(t *testing.T) {
	assert.True(t, NewVendorError("ResourceUnavailable.InvalidTaskId", "任务不存在").IsVendor())
	assert.True(t, NewVendorError("ERROR", "下载失败").IsVendor())

	assert.False(t, NewMissingCredential("缺少密钥").IsVendor())
	assert.False(t, NewInvalidParameter("缺少参数").IsVendor())
	assert.False(t, NewInternalError("内部错误", nil).IsVendor())
	assert.False(t, NewTimeout("超时").IsVendor())
	assert.False(t, (&RelayError{}).IsVendor())
}

func TestRelayErrorUnwrap(t *testing.T) {
	inner := errors.New("底层错误")
	err := NewInternalError("外层描述", inner)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "InternalError")
	assert.Contains(t, err.Error(), "外层描述")
}
