package volcsign

import (
	"net/http"
	"time"
)

// XDateFormat 是 X-Date 头的时间格式（UTC）。
const XDateFormat = "20060102T150405Z"

// SignHTTP 对一个已组装的 http.Request 补齐签名相关头并计算 Authorization。
// body 是将随请求发送的原始字节；now 决定签名时间戳（传入以保证可测定性）。
func SignHTTP(httpReq *http.Request, body []byte, accessKeyID, secretAccessKey, region, service string, now time.Time) {
	datetime := now.UTC().Format(XDateFormat)
	bodyHash := HashPayload(body)

	httpReq.Header.Set("X-Date", datetime)
	httpReq.Header.Set("X-Content-Sha256", bodyHash)

	query := make(map[string]string)
	for key, values := range httpReq.URL.Query() {
		if len(values) > 0 {
			query[key] = values[0]
		}
	}

	headers := map[string]string{
		"X-Date":           datetime,
		"X-Content-Sha256": bodyHash,
		"Host":             httpReq.URL.Host,
	}
	if contentType := httpReq.Header.Get("Content-Type"); contentType != "" {
		headers["Content-Type"] = contentType
	}

	authorization := Sign(Request{
		Method:          httpReq.Method,
		Path:            httpReq.URL.Path,
		Query:           query,
		Headers:         headers,
		Host:            httpReq.URL.Host,
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secretAccessKey,
		BodyHash:        bodyHash,
	}, region, service)
	httpReq.Header.Set("Authorization", authorization)
}
