package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aigc-platform/detect_gateway/internal/models"
	"github.com/aigc-platform/detect_gateway/internal/moderation"
)

// moderationView 是多模态检测结果在接口上的形状。
// suggestion 统一小写（pass/review/block），labels 永远给数组而非 null。
func moderationView(v moderation.Verdict) gin.H {
	labels := v.SubLabels
	if labels == nil {
		labels = []string{}
	}
	return gin.H{
		"safe":       !v.IsFlagged,
		"suggestion": strings.ToLower(v.Suggestion),
		"labels":     labels,
		"reason":     v.Reason,
	}
}

// asDataURL 把裸 base64 包成 data URL；已是 data URL 或普通 URL 时原样返回。
func asDataURL(b64, mime string) string {
	if strings.HasPrefix(b64, "data:") {
		return b64
	}
	return "data:" + mime + ";base64," + b64
}

// rawBase64 剥掉 data URL 前缀，智能视觉的 binary_data_base64 只收裸 base64。
func rawBase64(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[i+1:]
	}
	return s
}

// volcImageRequest 是火山图片检测的入参。
// imageUrl 与 imageBase64 二选一；base64 会包成 data URL 传给多模态模型。
type volcImageRequest struct {
	ImageURL    string `json:"imageUrl"`
	ImageBase64 string `json:"imageBase64"`
}

func (s *Server) handleVolcImage(c *gin.Context) {
	var req volcImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, moderation.NewInvalidParameter("请求体不是合法的 JSON"))
		return
	}

	mediaRef := req.ImageURL
	if mediaRef == "" && req.ImageBase64 != "" {
		mediaRef = asDataURL(req.ImageBase64, "image/jpeg")
	}
	if mediaRef == "" {
		writeError(c, moderation.NewInvalidParameter("需要 imageUrl 或 imageBase64"))
		return
	}

	outcome, err := s.ark.ModerateImage(c.Request.Context(), mediaRef)
	if err != nil {
		s.publishRelayFailure(c.FullPath(), err)
		writeError(c, err)
		return
	}

	s.publishVerdict(models.ContentRef{
		Kind:   "image",
		Vendor: "volc",
		URL:    req.ImageURL,
	}, outcome.Verdict)
	c.JSON(http.StatusOK, moderationView(outcome.Verdict))
}

// volcVideoRequest 是火山视频检测的入参，videoUrl 与 videoBase64 二选一。
// 小视频可直接走 base64，免去 COS 或公网中转。
type volcVideoRequest struct {
	VideoURL    string `json:"videoUrl"`
	VideoBase64 string `json:"videoBase64"`
}

func (s *Server) handleVolcVideo(c *gin.Context) {
	var req volcVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, moderation.NewInvalidParameter("请求体不是合法的 JSON"))
		return
	}

	mediaRef := req.VideoURL
	if mediaRef == "" && req.VideoBase64 != "" {
		mediaRef = asDataURL(req.VideoBase64, "video/mp4")
	}
	if mediaRef == "" {
		writeError(c, moderation.NewInvalidParameter("需要 videoUrl 或 videoBase64"))
		return
	}

	outcome, err := s.ark.ModerateVideo(c.Request.Context(), mediaRef)
	if err != nil {
		s.publishRelayFailure(c.FullPath(), err)
		writeError(c, err)
		return
	}

	s.publishVerdict(models.ContentRef{
		Kind:   "video",
		Vendor: "volc",
		URL:    req.VideoURL,
	}, outcome.Verdict)
	c.JSON(http.StatusOK, moderationView(outcome.Verdict))
}
