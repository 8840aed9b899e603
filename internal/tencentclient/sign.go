package tencentclient

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// tc3Algorithm 是腾讯云 API 3.0 的签名算法标识。
const tc3Algorithm = "TC3-HMAC-SHA256"

// buildAuthorization 计算腾讯云 TC3-HMAC-SHA256 签名，返回 Authorization 头的值。
// 签名头固定为 content-type 与 host；now 决定签名日期与时间戳，传入以保证可测定性。
func buildAuthorization(secretID, secretKey, host, service, payload string, now time.Time) (authorization string, timestamp int64) {
	timestamp = now.Unix()
	date := now.UTC().Format("2006-01-02")

	// 1. 拼接规范请求串
	canonicalHeaders := fmt.Sprintf("content-type:application/json\nhost:%s\n", host)
	signedHeaders := "content-type;host"
	hashedRequestPayload := hexSHA256([]byte(payload))
	canonicalRequest := fmt.Sprintf("POST\n/\n\n%s\n%s\n%s",
		canonicalHeaders,
		signedHeaders,
		hashedRequestPayload,
	)

	// 2. 拼接待签名字符串
	credentialScope := fmt.Sprintf("%s/%s/tc3_request", date, service)
	stringToSign := fmt.Sprintf("%s\n%d\n%s\n%s",
		tc3Algorithm,
		timestamp,
		credentialScope,
		hexSHA256([]byte(canonicalRequest)),
	)

	// 3. 计算签名：TC3{secretKey} -> date -> service -> tc3_request
	secretDate := hmacSHA256([]byte("TC3"+secretKey), date)
	secretService := hmacSHA256(secretDate, service)
	secretSigning := hmacSHA256(secretService, "tc3_request")
	signature := hex.EncodeToString(hmacSHA256(secretSigning, stringToSign))

	// 4. 拼接 Authorization
	authorization = fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		tc3Algorithm,
		secretID,
		credentialScope,
		signedHeaders,
		signature,
	)
	return authorization, timestamp
}

func hexSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key []byte, data string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}
