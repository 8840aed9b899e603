// Package server 提供网关的 HTTP 层：路由、参数校验、错误信封与事件发布。
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aigc-platform/detect_gateway/internal/moderation"
)

// errorBody 是对外的错误信封，与腾讯云风格保持一致，
// 前端只需认一种错误形状。
type errorBody struct {
	Response struct {
		Error struct {
			Code    string `json:"Code"`
			Message string `json:"Message"`
		} `json:"Error"`
	} `json:"Response"`
}

// writeError 把任意错误归一化为 RelayError 并按信封格式输出。
// 参数类错误返回 400，其余（含厂商透传、超时）一律 500。
func writeError(c *gin.Context, err error) {
	relayErr := moderation.AsRelayError(err)

	status := http.StatusInternalServerError
	if relayErr.Code == moderation.CodeInvalidParameter {
		status = http.StatusBadRequest
	}

	writeErrorStatus(c, status, relayErr.Code, relayErr.Message)
}

// writeErrorStatus 按指定状态码输出错误信封，少数场景（如 404）直接用。
func writeErrorStatus(c *gin.Context, status int, code, message string) {
	var body errorBody
	body.Response.Error.Code = code
	body.Response.Error.Message = message
	c.JSON(status, body)
}
