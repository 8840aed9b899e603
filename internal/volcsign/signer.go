// Package volcsign 实现火山引擎智能视觉（Visual）API 的请求签名。
// 签名方案是 AWS SigV4 风格的 HMAC-SHA256 规范请求签名，
// 派生链与凭证范围按火山引擎的约定（终端字面量为 "request"）。
package volcsign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Algorithm 是签名算法标识，出现在 Authorization 头与待签字符串中。
const Algorithm = "HMAC-SHA256"

// Request 描述一次待签名的 HTTP 请求。
// BodyHash 必须是将要实际发送的请求体字节的 SHA-256 十六进制摘要；
// Headers 必须包含 X-Date 头（格式 20060102T150405Z），签名日期由它决定。
type Request struct {
	Method          string
	Path            string
	Query           map[string]string
	Headers         map[string]string
	Host            string
	AccessKeyID     string
	SecretAccessKey string
	BodyHash        string
}

// Sign 计算 Authorization 头的值。
// 纯函数：输入（含 X-Date）固定时输出逐字节一致。
// 密钥缺失不在本地检出，会产出一个厂商必然拒绝的签名。
func Sign(req Request, region, service string) string {
	datetime := req.Headers["X-Date"]
	if datetime == "" {
		datetime = req.Headers["x-date"]
	}
	date8 := datetime
	if len(date8) > 8 {
		date8 = date8[:8]
	}

	canonicalRequest, signedHeaders := canonicalize(req)
	credentialScope := date8 + "/" + region + "/" + service + "/request"
	stringToSign := Algorithm + "\n" +
		datetime + "\n" +
		credentialScope + "\n" +
		hexSHA256([]byte(canonicalRequest))

	// 派生签名密钥：kDate -> kRegion -> kService -> kSigning
	kDate := hmacSHA256([]byte(req.SecretAccessKey), date8)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, service)
	kSigning := hmacSHA256(kService, "request")
	signature := hex.EncodeToString(hmacSHA256(kSigning, stringToSign))

	return Algorithm +
		" Credential=" + req.AccessKeyID + "/" + credentialScope +
		", SignedHeaders=" + signedHeaders +
		", Signature=" + signature
}

// canonicalize 构造规范请求串与签名头名列表。
// 形状：METHOD\nPATH\nSORTED_QUERY\nheader:value\n...\n\nSIGNED_HEADERS\nBODY_HASH。
func canonicalize(req Request) (canonicalRequest, signedHeaders string) {
	path := req.Path
	if path == "" {
		path = "/"
	}

	headerNames := make([]string, 0, len(req.Headers)+1)
	headerValues := make(map[string]string, len(req.Headers)+1)
	for name, value := range req.Headers {
		lower := strings.ToLower(name)
		headerNames = append(headerNames, lower)
		headerValues[lower] = strings.TrimSpace(value)
	}
	if _, ok := headerValues["host"]; !ok && req.Host != "" {
		headerNames = append(headerNames, "host")
		headerValues["host"] = req.Host
	}
	sort.Strings(headerNames)

	var canonicalHeaders strings.Builder
	for _, name := range headerNames {
		canonicalHeaders.WriteString(name)
		canonicalHeaders.WriteByte(':')
		canonicalHeaders.WriteString(headerValues[name])
		canonicalHeaders.WriteByte('\n')
	}
	signedHeaders = strings.Join(headerNames, ";")

	canonicalRequest = strings.ToUpper(req.Method) + "\n" +
		path + "\n" +
		CanonicalQueryString(req.Query) + "\n" +
		canonicalHeaders.String() + "\n" +
		signedHeaders + "\n" +
		req.BodyHash
	return canonicalRequest, signedHeaders
}

// CanonicalQueryString 按键名字典序排序并逐项转义查询参数。
func CanonicalQueryString(query map[string]string) string {
	if len(query) == 0 {
		return ""
	}
	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, URIEscape(key)+"="+URIEscape(query[key]))
	}
	return strings.Join(pairs, "&")
}

// URIEscape 按火山引擎的保留字符集做百分号转义。
// 仅 A-Za-z0-9 与 _ . ~ - 不转义；特别地 '*' 必须转义为 %2A，
// 空格转义为 %20 —— 与默认的 URL 编码规则不同，必须逐字节复刻。
func URIEscape(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if isUnreserved(ch) {
			out.WriteByte(ch)
			continue
		}
		out.WriteByte('%')
		out.WriteByte(hexUpper[ch>>4])
		out.WriteByte(hexUpper[ch&0x0f])
	}
	return out.String()
}

const hexUpper = "0123456789ABCDEF"

func isUnreserved(ch byte) bool {
	switch {
	case ch >= 'A' && ch <= 'Z':
		return true
	case ch >= 'a' && ch <= 'z':
		return true
	case ch >= '0' && ch <= '9':
		return true
	case ch == '_' || ch == '.' || ch == '~' || ch == '-':
		return true
	}
	return false
}

// HashPayload 计算请求体的十六进制 SHA-256 摘要，供 BodyHash 与 X-Content-Sha256 使用。
func HashPayload(body []byte) string {
	return hexSHA256(body)
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
